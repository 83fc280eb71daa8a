package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v4/pgxpool"

	"edu-subscription-platform/internal/domain/model"
	"edu-subscription-platform/internal/domain/ports/repository"
)

var _ repository.CourseRepository = (*courseRepo)(nil)

type courseRepo struct{ pool *pgxpool.Pool }

func NewCourseRepo(pool *pgxpool.Pool) *courseRepo {
	return &courseRepo{pool: pool}
}

const courseColumns = `id, title, description, learning_level, skill_areas, age_group, is_premium, is_published, difficulty_level, created_by, created_at`

// Save upserts the course and replaces its video list.
func (r *courseRepo) Save(ctx context.Context, tx repository.Tx, c *model.Course) error {
	const q = `
INSERT INTO courses (` + courseColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
ON CONFLICT (id) DO UPDATE SET
  title=$2, description=$3, learning_level=$4, skill_areas=$5, age_group=$6,
  is_premium=$7, is_published=$8, difficulty_level=$9;`

	skills := make([]string, len(c.SkillAreas))
	for i, s := range c.SkillAreas {
		skills[i] = string(s)
	}
	if _, err := execSQL(ctx, r.pool, tx, q, c.ID, c.Title, c.Description, string(c.LearningLevel), skills,
		string(c.AgeGroup), c.IsPremium, c.IsPublished, c.DifficultyLevel, c.CreatedBy, c.CreatedAt); err != nil {
		return mapErr(err)
	}
	if _, err := execSQL(ctx, r.pool, tx, `DELETE FROM course_videos WHERE course_id=$1;`, c.ID); err != nil {
		return mapErr(err)
	}
	const vq = `INSERT INTO course_videos (id, course_id, title, storage_key, duration_seconds, position) VALUES ($1,$2,$3,$4,$5,$6);`
	for _, v := range c.Videos {
		if _, err := execSQL(ctx, r.pool, tx, vq, v.ID, c.ID, v.Title, v.StorageKey, v.DurationSeconds, v.Position); err != nil {
			return mapErr(err)
		}
	}
	return nil
}

func (r *courseRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Course, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT `+courseColumns+` FROM courses WHERE id=$1;`, id)
	if err != nil {
		return nil, err
	}
	c, err := scanCourse(row)
	if err != nil {
		return nil, err
	}
	if err := r.attachVideos(ctx, tx, []*model.Course{c}); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *courseRepo) List(ctx context.Context, tx repository.Tx, f model.CourseFilter) ([]*model.Course, error) {
	var (
		where []string
		args  []interface{}
	)
	add := func(cond string, v interface{}) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.LearningLevel != "" {
		add("learning_level = $%d", string(f.LearningLevel))
	}
	if f.AgeGroup != "" {
		add("age_group = $%d", string(f.AgeGroup))
	}
	if f.SkillArea != "" {
		add("$%d = ANY(skill_areas)", string(f.SkillArea))
	}
	if f.PublishedOnly {
		where = append(where, "is_published")
	}
	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	q := `SELECT ` + courseColumns + ` FROM courses`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, limit)
	q += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d;", len(args))

	rows, err := queryRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	var out []*model.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, mapErr(err)
	}
	if err := r.attachVideos(ctx, tx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountVideos reads the live count; progress is always computed against it.
func (r *courseRepo) CountVideos(ctx context.Context, tx repository.Tx, courseID string) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM course_videos WHERE course_id=$1;`, courseID)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, scanErr(err)
	}
	return n, nil
}

func (r *courseRepo) attachVideos(ctx context.Context, tx repository.Tx, courses []*model.Course) error {
	if len(courses) == 0 {
		return nil
	}
	ids := make([]string, len(courses))
	byID := make(map[string]*model.Course, len(courses))
	for i, c := range courses {
		ids[i] = c.ID
		byID[c.ID] = c
		c.Videos = []model.Video{}
	}
	const q = `
SELECT id, course_id, title, storage_key, duration_seconds, position
  FROM course_videos WHERE course_id = ANY($1) ORDER BY course_id, position;`
	rows, err := queryRows(ctx, r.pool, tx, q, ids)
	if err != nil {
		return mapErr(err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			v        model.Video
			courseID string
		)
		if err := rows.Scan(&v.ID, &courseID, &v.Title, &v.StorageKey, &v.DurationSeconds, &v.Position); err != nil {
			return scanErr(err)
		}
		if c, ok := byID[courseID]; ok {
			c.Videos = append(c.Videos, v)
		}
	}
	return mapErr(rows.Err())
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanCourse(row scanner) (*model.Course, error) {
	var (
		c               model.Course
		level, ageGroup string
		skills          []string
	)
	if err := row.Scan(&c.ID, &c.Title, &c.Description, &level, &skills, &ageGroup, &c.IsPremium, &c.IsPublished,
		&c.DifficultyLevel, &c.CreatedBy, &c.CreatedAt); err != nil {
		return nil, scanErr(err)
	}
	c.LearningLevel = model.LearningLevel(level)
	c.AgeGroup = model.AgeTier(ageGroup)
	c.SkillAreas = make([]model.SkillArea, len(skills))
	for i, s := range skills {
		c.SkillAreas[i] = model.SkillArea(s)
	}
	return &c, nil
}
