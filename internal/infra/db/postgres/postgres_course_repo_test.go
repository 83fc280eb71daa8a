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

func seedCourse(t *testing.T, ctx context.Context, ownerID, id string, premium bool, videos int) *model.Course {
	t.Helper()
	c := &model.Course{
		ID:            id,
		Title:         "Course " + id,
		LearningLevel: model.LevelFoundation,
		SkillAreas:    []model.SkillArea{model.SkillAILiteracy},
		AgeGroup:      model.AgeTierFoundation,
		IsPremium:     premium,
		IsPublished:   true,
		CreatedBy:     ownerID,
		CreatedAt:     time.Now().UTC(),
	}
	for i := 0; i < videos; i++ {
		c.Videos = append(c.Videos, model.Video{
			ID:         id + "-v" + string(rune('a'+i)),
			Title:      "Video",
			StorageKey: "videos/" + id + "/" + string(rune('a'+i)) + ".mp4",
			Position:   i,
		})
	}
	require.NoError(t, NewCourseRepo(testPool).Save(ctx, nil, c))
	return c
}

func TestCourseRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}
	ctx := context.Background()
	repo := NewCourseRepo(testPool)

	t.Run("find with videos in order", func(t *testing.T) {
		cleanup(t)
		u := seedUser(t, ctx)
		seedCourse(t, ctx, u.ID, "c1", true, 3)

		got, err := repo.FindByID(ctx, nil, "c1")
		require.NoError(t, err)
		assert.True(t, got.IsPremium)
		require.Len(t, got.Videos, 3)
		assert.Equal(t, "c1-va", got.Videos[0].ID)
		assert.Equal(t, "videos/c1/a.mp4", got.Videos[0].StorageKey)

		n, err := repo.CountVideos(ctx, nil, "c1")
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	})

	t.Run("list filters", func(t *testing.T) {
		cleanup(t)
		u := seedUser(t, ctx)
		seedCourse(t, ctx, u.ID, "c1", false, 1)
		draft := seedCourse(t, ctx, u.ID, "c2", false, 0)
		draft.IsPublished = false
		require.NoError(t, repo.Save(ctx, nil, draft))

		all, err := repo.List(ctx, nil, model.CourseFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 2)

		published, err := repo.List(ctx, nil, model.CourseFilter{PublishedOnly: true, SkillArea: model.SkillAILiteracy})
		require.NoError(t, err)
		require.Len(t, published, 1)
		assert.Equal(t, "c1", published[0].ID)
		assert.Len(t, published[0].Videos, 1)

		none, err := repo.List(ctx, nil, model.CourseFilter{AgeGroup: model.AgeTierMastery})
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("missing course", func(t *testing.T) {
		cleanup(t)
		_, err := repo.FindByID(ctx, nil, "nope")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
