package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"edu-subscription-platform/internal/domain"
	"edu-subscription-platform/internal/domain/model"
	"edu-subscription-platform/internal/domain/ports/repository"
)

var _ repository.UserRepository = (*userRepo)(nil)

type userRepo struct{ pool *pgxpool.Pool }

func NewUserRepo(pool *pgxpool.Pool) *userRepo {
	return &userRepo{pool: pool}
}

// Save upserts the profile. Subscription columns are written on insert only;
// afterwards they change through SetSubscription.
func (r *userRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	const q = `
INSERT INTO users (id, email, full_name, role, age_group, subscription_type, subscription_expires, is_active, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (id) DO UPDATE SET
  email=$2, full_name=$3, role=$4, age_group=$5, is_active=$8;`

	var ageGroup, subType *string
	if u.AgeGroup != nil {
		s := string(*u.AgeGroup)
		ageGroup = &s
	}
	if u.Subscription.Type != nil {
		s := string(*u.Subscription.Type)
		subType = &s
	}
	_, err := execSQL(ctx, r.pool, tx, q, u.ID, u.Email, u.FullName, string(u.Role), ageGroup, subType, u.Subscription.Expires, u.IsActive, u.CreatedAt)
	return mapErr(err)
}

func (r *userRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	const q = `
SELECT id, email, full_name, role, age_group, subscription_type, subscription_expires, is_active, created_at
  FROM users WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	var (
		u                 model.User
		role              string
		ageGroup, subType *string
	)
	if err := row.Scan(&u.ID, &u.Email, &u.FullName, &role, &ageGroup, &subType, &u.Subscription.Expires, &u.IsActive, &u.CreatedAt); err != nil {
		return nil, scanErr(err)
	}
	u.Role = model.Role(role)
	if ageGroup != nil {
		t := model.AgeTier(*ageGroup)
		u.AgeGroup = &t
	}
	if subType != nil {
		c := model.BillingCycle(*subType)
		u.Subscription.Type = &c
	}
	return &u, nil
}

func (r *userRepo) SetSubscription(ctx context.Context, tx repository.Tx, userID string, subType model.BillingCycle, expires *time.Time) error {
	const q = `UPDATE users SET subscription_type=$2, subscription_expires=$3 WHERE id=$1;`
	cmd, err := execSQL(ctx, r.pool, tx, q, userID, string(subType), expires)
	if err != nil {
		return mapErr(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
