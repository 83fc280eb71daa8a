// Package catalog holds the pricing plans and learning-framework descriptors.
// A Catalog is built once at start-up and never mutated afterwards.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"

	"edu-subscription-platform/internal/domain"
	"edu-subscription-platform/internal/domain/model"

	"gopkg.in/yaml.v3"
)

// QuarterlyDiscountPercent is the advertised discount of a quarterly plan's
// digital price against three monthly payments.
const QuarterlyDiscountPercent = 15

//go:embed plans.yaml
var defaultPlans []byte

// LevelDescriptor describes one learning level of the curriculum.
type LevelDescriptor struct {
	LevelName       string   `json:"level_name" yaml:"level_name"`
	AgeRange        string   `json:"age_range" yaml:"age_range"`
	Description     string   `json:"description" yaml:"description"`
	CoreSkills      []string `json:"core_skills" yaml:"core_skills"`
	FutureReadiness []string `json:"future_readiness" yaml:"future_readiness"`
}

type file struct {
	Plans     map[model.LearningLevel]map[model.BillingCycle]model.PricingPlan `yaml:"plans"`
	Framework map[model.LearningLevel]LevelDescriptor                         `yaml:"framework"`
}

type Catalog struct {
	plans     map[model.LearningLevel]map[model.BillingCycle]model.PricingPlan
	framework map[model.LearningLevel]LevelDescriptor
}

// Load reads the catalog from path, or the built-in catalog when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Parse(defaultPlans)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(b)
}

// Default returns the built-in catalog. It panics if the embedded file is broken.
func Default() *Catalog {
	c, err := Parse(defaultPlans)
	if err != nil {
		panic(err)
	}
	return c
}

func Parse(b []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(f.Plans) == 0 {
		return nil, errors.New("catalog: no plans defined")
	}
	tiers := map[model.LearningLevel]model.AgeTier{
		model.LevelFoundation:  model.AgeTierFoundation,
		model.LevelDevelopment: model.AgeTierDevelopment,
		model.LevelMastery:     model.AgeTierMastery,
	}
	c := &Catalog{
		plans:     make(map[model.LearningLevel]map[model.BillingCycle]model.PricingPlan, len(f.Plans)),
		framework: f.Framework,
	}
	for level, cycles := range f.Plans {
		tier, ok := tiers[level]
		if !ok {
			return nil, fmt.Errorf("catalog: unknown level %q", level)
		}
		c.plans[level] = make(map[model.BillingCycle]model.PricingPlan, len(cycles))
		for cycle, p := range cycles {
			if _, ok := model.ParseCycle(string(cycle)); !ok {
				return nil, fmt.Errorf("catalog: unknown cycle %q for %s", cycle, level)
			}
			p.Tier = tier
			p.Cycle = cycle
			c.plans[level][cycle] = p
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Resolve looks up the plan for a tier and cycle.
func (c *Catalog) Resolve(tier model.AgeTier, cycle model.BillingCycle) (model.PricingPlan, error) {
	level, ok := tier.Level()
	if !ok {
		return model.PricingPlan{}, domain.ErrInvalidPlan
	}
	p, ok := c.plans[level][cycle]
	if !ok {
		return model.PricingPlan{}, domain.ErrInvalidPlan
	}
	return p, nil
}

// Plans returns a copy of the plan table keyed by level and cycle.
func (c *Catalog) Plans() map[model.LearningLevel]map[model.BillingCycle]model.PricingPlan {
	out := make(map[model.LearningLevel]map[model.BillingCycle]model.PricingPlan, len(c.plans))
	for level, cycles := range c.plans {
		out[level] = make(map[model.BillingCycle]model.PricingPlan, len(cycles))
		for cycle, p := range cycles {
			out[level][cycle] = p
		}
	}
	return out
}

func (c *Catalog) Framework() map[model.LearningLevel]LevelDescriptor {
	out := make(map[model.LearningLevel]LevelDescriptor, len(c.framework))
	for k, v := range c.framework {
		out[k] = v
	}
	return out
}

// Validate checks the pricing invariants: positive prices, totals matching
// their components, and the quarterly discount within one minor unit.
func (c *Catalog) Validate() error {
	for level, cycles := range c.plans {
		for cycle, p := range cycles {
			if p.DigitalPrice < 0 || p.TotalPrice < p.DigitalPrice {
				return fmt.Errorf("catalog: %s/%s: total %d below digital %d", level, cycle, p.TotalPrice, p.DigitalPrice)
			}
			if p.TotalPrice != p.ExpectedTotal() {
				return fmt.Errorf("catalog: %s/%s: total %d != expected %d", level, cycle, p.TotalPrice, p.ExpectedTotal())
			}
			if p.DurationDays <= 0 || p.Currency == "" {
				return fmt.Errorf("catalog: %s/%s: duration and currency are required", level, cycle)
			}
		}
		monthly, hasMonthly := cycles[model.CycleMonthly]
		if hasMonthly && monthly.ChargeAmount() <= 0 {
			return fmt.Errorf("catalog: %s monthly price must be positive", level)
		}
		quarterly, hasQuarterly := cycles[model.CycleQuarterly]
		if !hasQuarterly {
			continue
		}
		if quarterly.TotalPrice <= 0 {
			return fmt.Errorf("catalog: %s quarterly total must be positive", level)
		}
		if hasMonthly {
			want := DiscountedQuarterly(monthly.DigitalPrice)
			if diff := quarterly.DigitalPrice - want; diff > 1 || diff < -1 {
				return fmt.Errorf("catalog: %s quarterly digital price %d, want %d", level, quarterly.DigitalPrice, want)
			}
		}
	}
	return nil
}

// DiscountedQuarterly is three monthly payments less QuarterlyDiscountPercent,
// rounded to the nearest minor unit.
func DiscountedQuarterly(monthly int64) int64 {
	return int64(math.Round(float64(3*monthly) * float64(100-QuarterlyDiscountPercent) / 100))
}
