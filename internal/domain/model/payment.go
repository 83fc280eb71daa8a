package model

import "time"

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"   // customer is on the processor's page
	PaymentStatusInitiated PaymentStatus = "initiated" // session created, ledger row written
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusCancelled PaymentStatus = "cancelled"
	PaymentStatusExpired   PaymentStatus = "expired"
)

// Terminal reports whether no further transition is allowed out of s.
func (s PaymentStatus) Terminal() bool {
	switch s {
	case PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusCancelled, PaymentStatusExpired:
		return true
	}
	return false
}

// PaymentTransaction is one checkout attempt in the ledger.
type PaymentTransaction struct {
	ID          string            `json:"id"`
	UserID      string            `json:"user_id"`
	SessionID   string            `json:"session_id"` // external checkout session id, unique
	Amount      int64             `json:"amount"`     // minor units
	Currency    string            `json:"currency"`
	Tier        AgeTier           `json:"age_group"`
	Cycle       BillingCycle      `json:"subscription_type"`
	Status      PaymentStatus     `json:"payment_status"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
	ExternalRef *string           `json:"external_ref,omitempty"` // processor payment reference, e.g. a payment intent id
	Meta        map[string]string `json:"metadata,omitempty"`
}

// Checkout metadata keys. They travel with the external session so a webhook
// alone is enough to rebuild the purchase context.
const (
	MetaUserID    = "user_id"
	MetaUserEmail = "user_email"
	MetaTier      = "age_group"
	MetaCycle     = "subscription_type"
	MetaPlanName  = "plan_name"
)
