package usecase

import (
	"context"
	"errors"
	"math"

	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"

	"edu-subscription-platform/internal/catalog"
	"edu-subscription-platform/internal/domain"
	"edu-subscription-platform/internal/domain/model"
	"edu-subscription-platform/internal/domain/ports/repository"
)

var _ EnrollmentUseCase = (*enrollmentUC)(nil)

type EnrollmentUseCase interface {
	// Enroll is idempotent; a second call returns the existing record.
	Enroll(ctx context.Context, student *model.User, courseID string) (*model.Enrollment, error)
	// RecordCompletion never creates an enrollment implicitly.
	RecordCompletion(ctx context.Context, studentID, courseID, videoID string, watchedSeconds int64) (*model.Enrollment, error)
	Get(ctx context.Context, studentID, courseID string) (*model.Enrollment, error)
	ListMine(ctx context.Context, studentID string) ([]*model.Enrollment, error)
	// LearningPath summarises the student's enrollments against their level.
	LearningPath(ctx context.Context, student *model.User) (*LearningPath, error)
}

// FrameworkSource is the curriculum side of the catalog.
type FrameworkSource interface {
	Framework() map[model.LearningLevel]catalog.LevelDescriptor
}

// LearningPath is derived from enrollments on every read; nothing is stored.
// SkillProgress is the mean progress, capped at 100, of the enrolled courses
// that train each skill.
type LearningPath struct {
	StudentID        string                  `json:"student_id"`
	Level            model.LearningLevel     `json:"learning_level"`
	SkillProgress    map[model.SkillArea]int `json:"skill_progress"`
	CompletedCourses []string                `json:"completed_courses"`
	WatchTimeSeconds int64                   `json:"total_learning_time_seconds"`
	LevelCompletion  float64                 `json:"level_completion_percentage"`
	Framework        catalog.LevelDescriptor `json:"framework"`
}

type enrollmentUC struct {
	enrollments repository.EnrollmentRepository
	courses     repository.CourseRepository
	catalog     CourseUseCase
	framework   FrameworkSource
	tm          repository.TransactionManager
}

func NewEnrollmentUseCase(
	enrollments repository.EnrollmentRepository,
	courses repository.CourseRepository,
	catalog CourseUseCase,
	framework FrameworkSource,
	tm repository.TransactionManager,
) *enrollmentUC {
	return &enrollmentUC{enrollments: enrollments, courses: courses, catalog: catalog, framework: framework, tm: tm}
}

func (u *enrollmentUC) Enroll(ctx context.Context, student *model.User, courseID string) (*model.Enrollment, error) {
	if student.IsZero() {
		return nil, domain.ErrUnauthorized
	}
	// Premium courses need an active subscription to enroll.
	if _, err := u.catalog.Get(ctx, student, courseID); err != nil {
		return nil, err
	}
	e, err := model.NewEnrollment(ulid.Make().String(), student.ID, courseID)
	if err != nil {
		return nil, err
	}
	err = u.enrollments.Create(ctx, repository.NoTX, e)
	if errors.Is(err, domain.ErrAlreadyExists) {
		return u.enrollments.Find(ctx, repository.NoTX, student.ID, courseID)
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// RecordCompletion set-adds the video, adds the watch time and recomputes
// progress against the course's current video count.
func (u *enrollmentUC) RecordCompletion(ctx context.Context, studentID, courseID, videoID string, watchedSeconds int64) (*model.Enrollment, error) {
	if videoID == "" || watchedSeconds < 0 {
		return nil, domain.ErrInvalidArgument
	}
	var out *model.Enrollment
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		completed, err := u.enrollments.AddCompletedVideo(ctx, tx, studentID, courseID, videoID, watchedSeconds)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotEnrolled
		}
		if err != nil {
			return err
		}
		total, err := u.courses.CountVideos(ctx, tx, courseID)
		if err != nil {
			return err
		}
		pct := model.ProgressPercentage(completed, total)
		if err := u.enrollments.SetProgress(ctx, tx, studentID, courseID, pct); err != nil {
			return err
		}
		out, err = u.enrollments.Find(ctx, tx, studentID, courseID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (u *enrollmentUC) Get(ctx context.Context, studentID, courseID string) (*model.Enrollment, error) {
	e, err := u.enrollments.Find(ctx, repository.NoTX, studentID, courseID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNotEnrolled
	}
	return e, err
}

func (u *enrollmentUC) ListMine(ctx context.Context, studentID string) ([]*model.Enrollment, error) {
	if studentID == "" {
		return nil, domain.ErrUnauthorized
	}
	return u.enrollments.ListByStudent(ctx, repository.NoTX, studentID)
}

func (u *enrollmentUC) LearningPath(ctx context.Context, student *model.User) (*LearningPath, error) {
	if student.IsZero() {
		return nil, domain.ErrUnauthorized
	}
	if student.Role != model.RoleStudent {
		return nil, domain.ErrNotStudent
	}
	level := model.LevelFoundation
	if student.AgeGroup != nil {
		if l, ok := student.AgeGroup.Level(); ok {
			level = l
		}
	}

	enrollments, err := u.enrollments.ListByStudent(ctx, repository.NoTX, student.ID)
	if err != nil {
		return nil, err
	}

	type acc struct {
		sum float64
		n   int
	}
	skills := make(map[model.SkillArea]*acc)
	var atLevel acc
	out := &LearningPath{
		StudentID:        student.ID,
		Level:            level,
		SkillProgress:    make(map[model.SkillArea]int, len(model.SkillAreas())),
		CompletedCourses: []string{},
	}
	for _, e := range enrollments {
		out.WatchTimeSeconds += e.WatchTimeSeconds
		pct := math.Min(e.ProgressPercentage, 100)
		if pct >= 100 {
			out.CompletedCourses = append(out.CompletedCourses, e.CourseID)
		}

		c, err := u.courses.FindByID(ctx, repository.NoTX, e.CourseID)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if c.LearningLevel == level {
			atLevel.sum += pct
			atLevel.n++
		}
		for _, sk := range c.SkillAreas {
			a := skills[sk]
			if a == nil {
				a = &acc{}
				skills[sk] = a
			}
			a.sum += pct
			a.n++
		}
	}

	for _, sk := range model.SkillAreas() {
		out.SkillProgress[sk] = 0
		if a := skills[sk]; a != nil && a.n > 0 {
			out.SkillProgress[sk] = int(math.Round(a.sum / float64(a.n)))
		}
	}
	if atLevel.n > 0 {
		out.LevelCompletion = atLevel.sum / float64(atLevel.n)
	}
	if u.framework != nil {
		fw := u.framework.Framework()
		d, ok := fw[level]
		if !ok {
			d = fw[model.LevelFoundation]
		}
		out.Framework = d
	}
	return out, nil
}
