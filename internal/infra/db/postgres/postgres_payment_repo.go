package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"edu-subscription-platform/internal/domain/model"
	"edu-subscription-platform/internal/domain/ports/repository"
)

var _ repository.PaymentRepository = (*paymentRepo)(nil)

type paymentRepo struct{ pool *pgxpool.Pool }

func NewPaymentRepo(pool *pgxpool.Pool) *paymentRepo {
	return &paymentRepo{pool: pool}
}

const paymentColumns = `id, user_id, session_id, amount, currency, tier, cycle, status, created_at, updated_at, completed_at, external_ref, meta`

func (r *paymentRepo) Insert(ctx context.Context, tx repository.Tx, p *model.PaymentTransaction) (bool, error) {
	const q = `
INSERT INTO payment_transactions (` + paymentColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
ON CONFLICT (session_id) DO NOTHING;`

	meta, err := json.Marshal(p.Meta)
	if err != nil {
		return false, err
	}
	if p.Meta == nil {
		meta = []byte(`{}`)
	}
	cmd, err := execSQL(ctx, r.pool, tx, q,
		p.ID, p.UserID, p.SessionID, p.Amount, p.Currency, string(p.Tier), string(p.Cycle), string(p.Status),
		p.CreatedAt, p.UpdatedAt, p.CompletedAt, p.ExternalRef, meta)
	if err != nil {
		return false, mapErr(err)
	}
	return cmd.RowsAffected() == 1, nil
}

// FindBySessionID takes a row lock when called inside a transaction.
func (r *paymentRepo) FindBySessionID(ctx context.Context, tx repository.Tx, sessionID string) (*model.PaymentTransaction, error) {
	q := `SELECT ` + paymentColumns + ` FROM payment_transactions WHERE session_id=$1`
	if inTx(tx) {
		q += " FOR UPDATE"
	}
	row, err := pickRow(ctx, r.pool, tx, q, sessionID)
	if err != nil {
		return nil, err
	}
	return scanPayment(row)
}

// UpdateStatusIfOpen is the compare-and-set on the ledger: only a row still in
// pending/initiated moves, and RowsAffected says whether this caller moved it.
func (r *paymentRepo) UpdateStatusIfOpen(
	ctx context.Context, tx repository.Tx, id string, status model.PaymentStatus, externalRef *string, completedAt *time.Time,
) (bool, error) {
	const q = `
UPDATE payment_transactions
   SET status = $2,
       external_ref = COALESCE($3, external_ref),
       completed_at = $4,
       updated_at = NOW()
 WHERE id = $1
   AND status IN ('pending','initiated');`

	cmd, err := execSQL(ctx, r.pool, tx, q, id, string(status), externalRef, completedAt)
	if err != nil {
		return false, mapErr(err)
	}
	return cmd.RowsAffected() >= 1, nil
}

func (r *paymentRepo) SetExternalRef(ctx context.Context, tx repository.Tx, id string, ref string) error {
	const q = `UPDATE payment_transactions SET external_ref=$2, updated_at=NOW() WHERE id=$1 AND external_ref IS NULL;`
	_, err := execSQL(ctx, r.pool, tx, q, id, ref)
	return mapErr(err)
}

func (r *paymentRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, limit int) ([]*model.PaymentTransaction, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `SELECT ` + paymentColumns + ` FROM payment_transactions WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, userID, limit)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var out []*model.PaymentTransaction
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, mapErr(rows.Err())
}

func scanPayment(row pgx.Row) (*model.PaymentTransaction, error) {
	var (
		p                   model.PaymentTransaction
		tier, cycle, status string
		meta                []byte
	)
	if err := row.Scan(&p.ID, &p.UserID, &p.SessionID, &p.Amount, &p.Currency, &tier, &cycle, &status,
		&p.CreatedAt, &p.UpdatedAt, &p.CompletedAt, &p.ExternalRef, &meta); err != nil {
		return nil, scanErr(err)
	}
	p.Tier = model.AgeTier(tier)
	p.Cycle = model.BillingCycle(cycle)
	p.Status = model.PaymentStatus(status)
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &p.Meta); err != nil {
			return nil, scanErr(err)
		}
	}
	return &p, nil
}
