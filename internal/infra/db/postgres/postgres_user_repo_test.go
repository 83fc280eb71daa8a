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

func TestUserRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}
	ctx := context.Background()
	repo := NewUserRepo(testPool)

	t.Run("save and find", func(t *testing.T) {
		cleanup(t)
		u, err := model.NewUser("", "kid@example.com", "Kid", model.RoleStudent)
		require.NoError(t, err)
		tier := model.AgeTierDevelopment
		u.AgeGroup = &tier
		require.NoError(t, repo.Save(ctx, nil, u))

		got, err := repo.FindByID(ctx, nil, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "kid@example.com", got.Email)
		require.NotNil(t, got.AgeGroup)
		assert.Equal(t, model.AgeTierDevelopment, *got.AgeGroup)
		assert.Nil(t, got.Subscription.Type)
	})

	t.Run("profile save keeps the subscription", func(t *testing.T) {
		cleanup(t)
		u, _ := model.NewUser("", "sub@example.com", "Sub", model.RoleStudent)
		require.NoError(t, repo.Save(ctx, nil, u))

		exp := time.Now().Add(30 * 24 * time.Hour).UTC().Truncate(time.Microsecond)
		require.NoError(t, repo.SetSubscription(ctx, nil, u.ID, model.CycleMonthly, &exp))

		u.FullName = "Renamed"
		require.NoError(t, repo.Save(ctx, nil, u))

		got, err := repo.FindByID(ctx, nil, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.FullName)
		require.NotNil(t, got.Subscription.Type)
		assert.Equal(t, model.CycleMonthly, *got.Subscription.Type)
		require.NotNil(t, got.Subscription.Expires)
		assert.WithinDuration(t, exp, *got.Subscription.Expires, time.Second)
	})

	t.Run("missing user", func(t *testing.T) {
		cleanup(t)
		_, err := repo.FindByID(ctx, nil, "nope")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		err = repo.SetSubscription(ctx, nil, "nope", model.CycleMonthly, nil)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
