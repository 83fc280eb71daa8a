package usecase

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"edu-subscription-platform/internal/domain/access"
	"edu-subscription-platform/internal/domain/model"
	"edu-subscription-platform/internal/domain/ports/repository"
	"edu-subscription-platform/internal/infra/logging"
)

// Compile-time check
var _ UserUseCase = (*userUC)(nil)

// UserUseCase covers the account reads the API needs. Registration and login
// live in the identity service; Upsert exists for seeding and provisioning.
type UserUseCase interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	Upsert(ctx context.Context, u *model.User) error
	Subscription(ctx context.Context, id string) (*SubscriptionView, error)
}

// SubscriptionView is the caller's entitlement as of now.
type SubscriptionView struct {
	Type     *model.BillingCycle `json:"subscription_type"`
	Expires  *time.Time          `json:"subscription_expires"`
	Active   bool                `json:"active"`
	AgeGroup *model.AgeTier      `json:"age_group,omitempty"`
}

type userUC struct {
	users repository.UserRepository
	tm    repository.TransactionManager
	now   func() time.Time
	log   *zerolog.Logger
}

func NewUserUseCase(users repository.UserRepository, tm repository.TransactionManager, logger *zerolog.Logger) *userUC {
	if logger == nil {
		logger = logging.Nop()
	}
	return &userUC{
		users: users,
		tm:    tm,
		now:   time.Now,
		log:   logger,
	}
}

func (u *userUC) GetByID(ctx context.Context, id string) (*model.User, error) {
	return u.users.FindByID(ctx, repository.NoTX, id)
}

// Upsert writes the profile. Subscription state of an existing user is left
// untouched.
func (u *userUC) Upsert(ctx context.Context, usr *model.User) error {
	defer logging.TraceDuration(u.log, "UserUC.Upsert")()

	return u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := u.users.Save(ctx, tx, usr); err != nil {
			u.log.Error().Err(err).Str("user_id", usr.ID).Msg("failed to save user")
			return err
		}
		return nil
	})
}

func (u *userUC) Subscription(ctx context.Context, id string) (*SubscriptionView, error) {
	usr, err := u.users.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		return nil, err
	}
	return &SubscriptionView{
		Type:     usr.Subscription.Type,
		Expires:  usr.Subscription.Expires,
		Active:   access.HasPremiumAccess(usr, u.now()),
		AgeGroup: usr.AgeGroup,
	}, nil
}
