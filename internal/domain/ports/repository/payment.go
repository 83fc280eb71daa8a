package repository

import (
	"context"
	"time"

	"edu-subscription-platform/internal/domain/model"
)

// PaymentRepository is the transaction ledger.
type PaymentRepository interface {
	// Insert appends p. It reports false without error when a row with the same
	// session id already exists.
	Insert(ctx context.Context, tx Tx, p *model.PaymentTransaction) (bool, error)
	FindBySessionID(ctx context.Context, tx Tx, sessionID string) (*model.PaymentTransaction, error)
	// UpdateStatusIfOpen moves the transaction out of pending/initiated. It
	// reports false when another caller already did.
	UpdateStatusIfOpen(ctx context.Context, tx Tx, id string, status model.PaymentStatus, externalRef *string, completedAt *time.Time) (bool, error)
	// SetExternalRef fills the processor reference if it is still empty.
	SetExternalRef(ctx context.Context, tx Tx, id string, ref string) error
	ListByUser(ctx context.Context, tx Tx, userID string, limit int) ([]*model.PaymentTransaction, error)
}
