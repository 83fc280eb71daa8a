package repository

import (
	"context"
	"time"

	"edu-subscription-platform/internal/domain/model"
)

type UserRepository interface {
	Save(ctx context.Context, tx Tx, u *model.User) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.User, error)
	// SetSubscription is a field-level write of the subscription state.
	SetSubscription(ctx context.Context, tx Tx, userID string, subType model.BillingCycle, expires *time.Time) error
}
