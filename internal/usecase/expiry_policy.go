package usecase

import (
	"fmt"
	"time"

	"edu-subscription-platform/internal/domain"
	"edu-subscription-platform/internal/domain/model"
)

// ExpiryPolicy computes the subscription expiry granted by a completed
// payment, given the user's current state.
type ExpiryPolicy func(current model.SubscriptionState, now time.Time, durationDays int) time.Time

const (
	ExpiryOverwrite = "overwrite"
	ExpiryExtend    = "extend"
)

// OverwriteExpiry restarts the clock at now. Remaining time on an active
// subscription is discarded.
func OverwriteExpiry(_ model.SubscriptionState, now time.Time, durationDays int) time.Time {
	return now.Add(days(durationDays))
}

// ExtendExpiry stacks the new period on top of a still-running one.
func ExtendExpiry(current model.SubscriptionState, now time.Time, durationDays int) time.Time {
	base := now
	if current.Type != nil && current.Expires != nil && current.Expires.After(now) {
		base = *current.Expires
	}
	return base.Add(days(durationDays))
}

func ExpiryPolicyByName(name string) (ExpiryPolicy, error) {
	switch name {
	case "", ExpiryOverwrite:
		return OverwriteExpiry, nil
	case ExpiryExtend:
		return ExtendExpiry, nil
	}
	return nil, fmt.Errorf("%w: expiry policy %q", domain.ErrInvalidArgument, name)
}

func days(n int) time.Duration { return time.Duration(n) * 24 * time.Hour }
