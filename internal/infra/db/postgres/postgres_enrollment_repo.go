package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"edu-subscription-platform/internal/domain"
	"edu-subscription-platform/internal/domain/model"
	"edu-subscription-platform/internal/domain/ports/repository"
)

var _ repository.EnrollmentRepository = (*enrollmentRepo)(nil)

type enrollmentRepo struct{ pool *pgxpool.Pool }

func NewEnrollmentRepo(pool *pgxpool.Pool) *enrollmentRepo {
	return &enrollmentRepo{pool: pool}
}

func (r *enrollmentRepo) Create(ctx context.Context, tx repository.Tx, e *model.Enrollment) error {
	const q = `
INSERT INTO enrollments (id, student_id, course_id, completed_video_ids, watch_time_seconds, progress_percentage, enrolled_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (student_id, course_id) DO NOTHING;`
	completed := e.CompletedVideos
	if completed == nil {
		completed = []string{}
	}
	cmd, err := execSQL(ctx, r.pool, tx, q, e.ID, e.StudentID, e.CourseID, completed, e.WatchTimeSeconds, e.ProgressPercentage, e.EnrolledAt, e.UpdatedAt)
	if err != nil {
		return mapErr(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrAlreadyExists
	}
	return nil
}

const enrollmentColumns = `id, student_id, course_id, completed_video_ids, watch_time_seconds, progress_percentage, enrolled_at, updated_at`

func (r *enrollmentRepo) Find(ctx context.Context, tx repository.Tx, studentID, courseID string) (*model.Enrollment, error) {
	q := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE student_id=$1 AND course_id=$2;`
	row, err := pickRow(ctx, r.pool, tx, q, studentID, courseID)
	if err != nil {
		return nil, err
	}
	e, err := scanEnrollment(row)
	if err != nil {
		return nil, scanErr(err)
	}
	return e, nil
}

func (r *enrollmentRepo) ListByStudent(ctx context.Context, tx repository.Tx, studentID string) ([]*model.Enrollment, error) {
	q := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE student_id=$1 ORDER BY enrolled_at DESC, id DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q, studentID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var out []*model.Enrollment
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, scanErr(err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}

func scanEnrollment(row scanner) (*model.Enrollment, error) {
	var e model.Enrollment
	if err := row.Scan(&e.ID, &e.StudentID, &e.CourseID, &e.CompletedVideos, &e.WatchTimeSeconds, &e.ProgressPercentage, &e.EnrolledAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

// AddCompletedVideo is one statement: the array gets videoID only if absent,
// while watch time grows on every call.
func (r *enrollmentRepo) AddCompletedVideo(ctx context.Context, tx repository.Tx, studentID, courseID, videoID string, watchedSeconds int64) (int, error) {
	const q = `
UPDATE enrollments
   SET completed_video_ids = CASE
         WHEN $3::text = ANY(completed_video_ids) THEN completed_video_ids
         ELSE array_append(completed_video_ids, $3::text)
       END,
       watch_time_seconds = watch_time_seconds + $4,
       updated_at = NOW()
 WHERE student_id = $1 AND course_id = $2
RETURNING cardinality(completed_video_ids);`
	row, err := pickRow(ctx, r.pool, tx, q, studentID, courseID, videoID, watchedSeconds)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, mapErr(err)
	}
	return n, nil
}

func (r *enrollmentRepo) SetProgress(ctx context.Context, tx repository.Tx, studentID, courseID string, pct float64) error {
	const q = `UPDATE enrollments SET progress_percentage=$3, updated_at=NOW() WHERE student_id=$1 AND course_id=$2;`
	cmd, err := execSQL(ctx, r.pool, tx, q, studentID, courseID, pct)
	if err != nil {
		return mapErr(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
