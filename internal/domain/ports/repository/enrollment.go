package repository

import (
	"context"

	"edu-subscription-platform/internal/domain/model"
)

type EnrollmentRepository interface {
	// Create inserts e; an existing (student, course) pair yields ErrAlreadyExists.
	Create(ctx context.Context, tx Tx, e *model.Enrollment) error
	Find(ctx context.Context, tx Tx, studentID, courseID string) (*model.Enrollment, error)
	// ListByStudent returns the student's enrollments, most recent first.
	ListByStudent(ctx context.Context, tx Tx, studentID string) ([]*model.Enrollment, error)
	// AddCompletedVideo set-adds videoID and increments watch time in one
	// statement, returning the size of the completed set afterwards.
	// ErrNotFound when the pair is not enrolled.
	AddCompletedVideo(ctx context.Context, tx Tx, studentID, courseID, videoID string, watchedSeconds int64) (int, error)
	SetProgress(ctx context.Context, tx Tx, studentID, courseID string, pct float64) error
}
