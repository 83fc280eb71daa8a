package repository

import (
	"context"

	"edu-subscription-platform/internal/domain/model"
)

type CourseRepository interface {
	Save(ctx context.Context, tx Tx, c *model.Course) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Course, error)
	List(ctx context.Context, tx Tx, f model.CourseFilter) ([]*model.Course, error)
	CountVideos(ctx context.Context, tx Tx, courseID string) (int, error)
}
