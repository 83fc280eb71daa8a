//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edu-subscription-platform/internal/domain"
	"edu-subscription-platform/internal/domain/model"
)

func TestEnrollmentRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}
	ctx := context.Background()
	repo := NewEnrollmentRepo(testPool)

	setup := func(t *testing.T) *model.User {
		cleanup(t)
		u := seedUser(t, ctx)
		seedCourse(t, ctx, u.ID, "c1", false, 4)
		return u
	}

	t.Run("create twice", func(t *testing.T) {
		u := setup(t)
		e, _ := model.NewEnrollment("e1", u.ID, "c1")
		require.NoError(t, repo.Create(ctx, nil, e))

		e2, _ := model.NewEnrollment("e2", u.ID, "c1")
		assert.ErrorIs(t, repo.Create(ctx, nil, e2), domain.ErrAlreadyExists)
	})

	t.Run("completion is a set add and watch time accumulates", func(t *testing.T) {
		u := setup(t)
		e, _ := model.NewEnrollment("e1", u.ID, "c1")
		require.NoError(t, repo.Create(ctx, nil, e))

		n, err := repo.AddCompletedVideo(ctx, nil, u.ID, "c1", "c1-va", 60)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		n, err = repo.AddCompletedVideo(ctx, nil, u.ID, "c1", "c1-va", 60)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		n, err = repo.AddCompletedVideo(ctx, nil, u.ID, "c1", "c1-vb", 30)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		require.NoError(t, repo.SetProgress(ctx, nil, u.ID, "c1", 50))

		got, err := repo.Find(ctx, nil, u.ID, "c1")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"c1-va", "c1-vb"}, got.CompletedVideos)
		assert.Equal(t, int64(150), got.WatchTimeSeconds)
		assert.InDelta(t, 50.0, got.ProgressPercentage, 0.001)
	})

	t.Run("list by student, newest first", func(t *testing.T) {
		u := setup(t)
		seedCourse(t, ctx, u.ID, "c2", false, 2)

		older, _ := model.NewEnrollment("e1", u.ID, "c1")
		older.EnrolledAt = time.Now().Add(-time.Hour)
		require.NoError(t, repo.Create(ctx, nil, older))
		newer, _ := model.NewEnrollment("e2", u.ID, "c2")
		require.NoError(t, repo.Create(ctx, nil, newer))

		got, err := repo.ListByStudent(ctx, nil, u.ID)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "c2", got[0].CourseID)
		assert.Equal(t, "c1", got[1].CourseID)

		none, err := repo.ListByStudent(ctx, nil, "nobody")
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("not enrolled", func(t *testing.T) {
		u := setup(t)
		_, err := repo.AddCompletedVideo(ctx, nil, u.ID, "c1", "c1-va", 10)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.ErrorIs(t, repo.SetProgress(ctx, nil, u.ID, "c1", 10), domain.ErrNotFound)
		_, err = repo.Find(ctx, nil, u.ID, "c1")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
