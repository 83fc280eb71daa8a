//go:build !integration

package model

import (
	"errors"
	"testing"

	"edu-subscription-platform/internal/domain"
)

// --- User Model Tests ---

func TestNewUser(t *testing.T) {
	t.Run("should create a new user successfully", func(t *testing.T) {
		user, err := NewUser("", "a@example.com", "Ada", RoleStudent)
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if user.ID == "" {
			t.Error("expected a generated user ID")
		}
		if !user.IsActive {
			t.Error("expected new users to be active")
		}
		if user.Subscription.Type != nil || user.Subscription.Expires != nil {
			t.Error("expected no subscription on a new user")
		}
	})

	t.Run("should reject missing fields and unknown roles", func(t *testing.T) {
		cases := []struct {
			email, name string
			role        Role
		}{
			{"", "Ada", RoleStudent},
			{"a@example.com", "", RoleStudent},
			{"a@example.com", "Ada", Role("parent")},
		}
		for _, c := range cases {
			if _, err := NewUser("u1", c.email, c.name, c.role); !errors.Is(err, domain.ErrInvalidArgument) {
				t.Errorf("NewUser(%q, %q, %q): expected ErrInvalidArgument, got %v", c.email, c.name, c.role, err)
			}
		}
	})
}

// --- Plan Vocabulary Tests ---

func TestAgeTierLevel(t *testing.T) {
	want := map[AgeTier]LearningLevel{
		AgeTierFoundation:  LevelFoundation,
		AgeTierDevelopment: LevelDevelopment,
		AgeTierMastery:     LevelMastery,
	}
	for tier, level := range want {
		got, ok := tier.Level()
		if !ok || got != level {
			t.Errorf("%s.Level() = %q, %v; want %q", tier, got, ok, level)
		}
	}
	if AgeTier("17-20").Valid() {
		t.Error("expected unknown tier to be invalid")
	}
}

func TestParseCycle(t *testing.T) {
	if c, ok := ParseCycle(" Quarterly "); !ok || c != CycleQuarterly {
		t.Errorf("expected quarterly, got %q %v", c, ok)
	}
	if _, ok := ParseCycle("weekly"); ok {
		t.Error("expected weekly to be rejected")
	}
}

// --- Payment Status Tests ---

func TestPaymentStatusTerminal(t *testing.T) {
	open := []PaymentStatus{PaymentStatusPending, PaymentStatusInitiated}
	closed := []PaymentStatus{PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusCancelled, PaymentStatusExpired}
	for _, s := range open {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
	for _, s := range closed {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
}

// --- Enrollment Tests ---

func TestNewEnrollment(t *testing.T) {
	e, err := NewEnrollment("e1", "s1", "c1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if e.CompletedVideos == nil || len(e.CompletedVideos) != 0 {
		t.Errorf("expected an empty, non-nil completed set, got %v", e.CompletedVideos)
	}
	if _, err := NewEnrollment("e1", "", "c1"); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestProgressPercentage(t *testing.T) {
	cases := []struct {
		completed, total int
		want             float64
	}{
		{0, 4, 0},
		{2, 4, 50},
		{4, 4, 100},
		{3, 0, 0},
		{5, 4, 125},
	}
	for _, c := range cases {
		if got := ProgressPercentage(c.completed, c.total); got != c.want {
			t.Errorf("ProgressPercentage(%d, %d) = %v; want %v", c.completed, c.total, got, c.want)
		}
	}
}

// --- Course Tests ---

func TestCourseVideo(t *testing.T) {
	c := &Course{Videos: []Video{{ID: "v1"}, {ID: "v2"}}}
	if v, ok := c.Video("v2"); !ok || v.ID != "v2" {
		t.Errorf("expected to find v2, got %v %v", v, ok)
	}
	if _, ok := c.Video("v9"); ok {
		t.Error("expected v9 to be missing")
	}
}
