//go:build !integration

package postgres

import (
	"context"

	"edu-subscription-platform/internal/domain/model"
	"edu-subscription-platform/internal/domain/ports/repository"
)

// mockInnerCourseRepo stands in for the Postgres repository behind the cache.
type mockInnerCourseRepo struct {
	SaveFunc        func(ctx context.Context, tx repository.Tx, c *model.Course) error
	FindByIDFunc    func(ctx context.Context, tx repository.Tx, id string) (*model.Course, error)
	ListFunc        func(ctx context.Context, tx repository.Tx, f model.CourseFilter) ([]*model.Course, error)
	CountVideosFunc func(ctx context.Context, tx repository.Tx, courseID string) (int, error)

	findCalls int
}

func (m *mockInnerCourseRepo) Save(ctx context.Context, tx repository.Tx, c *model.Course) error {
	return m.SaveFunc(ctx, tx, c)
}
func (m *mockInnerCourseRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Course, error) {
	m.findCalls++
	return m.FindByIDFunc(ctx, tx, id)
}
func (m *mockInnerCourseRepo) List(ctx context.Context, tx repository.Tx, f model.CourseFilter) ([]*model.Course, error) {
	return m.ListFunc(ctx, tx, f)
}
func (m *mockInnerCourseRepo) CountVideos(ctx context.Context, tx repository.Tx, courseID string) (int, error) {
	return m.CountVideosFunc(ctx, tx, courseID)
}
