package model

import "strings"

// AgeTier is the age cohort a learner belongs to. It drives both pricing and
// catalog segmentation.
type AgeTier string

const (
	AgeTierFoundation  AgeTier = "5-8"
	AgeTierDevelopment AgeTier = "9-12"
	AgeTierMastery     AgeTier = "13-16"
)

// BillingCycle doubles as the subscription type stored on the user.
type BillingCycle string

const (
	CycleMonthly   BillingCycle = "monthly"
	CycleQuarterly BillingCycle = "quarterly"
	CycleAnnual    BillingCycle = "annual"
)

type LearningLevel string

const (
	LevelFoundation  LearningLevel = "foundation"
	LevelDevelopment LearningLevel = "development"
	LevelMastery     LearningLevel = "mastery"
)

// Level maps an age tier onto its learning level, which is also the pricing key.
func (t AgeTier) Level() (LearningLevel, bool) {
	switch t {
	case AgeTierFoundation:
		return LevelFoundation, true
	case AgeTierDevelopment:
		return LevelDevelopment, true
	case AgeTierMastery:
		return LevelMastery, true
	}
	return "", false
}

func (t AgeTier) Valid() bool {
	_, ok := t.Level()
	return ok
}

func ParseCycle(s string) (BillingCycle, bool) {
	c := BillingCycle(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case CycleMonthly, CycleQuarterly, CycleAnnual:
		return c, true
	}
	return "", false
}

// PricingPlan is an immutable catalog entry. Amounts are in minor currency units.
type PricingPlan struct {
	Tier           AgeTier      `json:"tier" yaml:"-"`
	Cycle          BillingCycle `json:"cycle" yaml:"-"`
	DigitalPrice   int64        `json:"digital_price" yaml:"digital_price"`
	MaterialsPrice *int64       `json:"materials_price,omitempty" yaml:"materials_price"`
	TotalPrice     int64        `json:"total_price" yaml:"total_price"`
	Currency       string       `json:"currency" yaml:"currency"`
	DurationDays   int          `json:"duration_days" yaml:"duration_days"`
	Name           string       `json:"name" yaml:"name"`
	Description    string       `json:"description" yaml:"description"`
	Features       []string     `json:"features" yaml:"features"`
}

// ChargeAmount is what a checkout for this plan bills.
func (p PricingPlan) ChargeAmount() int64 {
	if p.TotalPrice > 0 {
		return p.TotalPrice
	}
	return p.DigitalPrice
}

// ExpectedTotal is the total implied by the component prices.
func (p PricingPlan) ExpectedTotal() int64 {
	if p.MaterialsPrice != nil {
		return p.DigitalPrice + *p.MaterialsPrice
	}
	return p.DigitalPrice
}
