// Package access decides premium entitlement. Every content checkpoint goes
// through HasPremiumAccess so the rule lives in exactly one place.
package access

import (
	"time"

	"edu-subscription-platform/internal/domain/model"
)

// HasPremiumAccess reports whether u may see premium content at now.
// A subscription without an expiry never lapses.
func HasPremiumAccess(u *model.User, now time.Time) bool {
	if u == nil || u.Subscription.Type == nil {
		return false
	}
	if exp := u.Subscription.Expires; exp != nil && exp.Before(now) {
		return false
	}
	return true
}

// CanView applies the gate to a course. Free courses are open to everyone,
// including anonymous viewers (nil u).
func CanView(u *model.User, c *model.Course, now time.Time) bool {
	if c == nil {
		return false
	}
	return !c.IsPremium || HasPremiumAccess(u, now)
}
