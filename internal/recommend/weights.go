package recommend

import (
	"fmt"
	"math"

	"github.com/priyadarshini/finadvisor/internal/domain"
)

// Weights is the multi-factor scoring configuration. The five factors must
// sum to 1.0. Weights is passed by value into the pure scoring functions;
// the engine holds no mutable scoring state.
type Weights struct {
	Cost        float64 `koanf:"cost"`
	Features    float64 `koanf:"features"`
	Popularity  float64 `koanf:"popularity"`
	Eligibility float64 `koanf:"eligibility"`
	Rating      float64 `koanf:"rating"`
}

// DefaultWeights returns the production weighting.
func DefaultWeights() Weights {
	return Weights{
		Cost:        0.30,
		Features:    0.25,
		Popularity:  0.20,
		Eligibility: 0.15,
		Rating:      0.10,
	}
}

// Validate rejects weight sets that do not sum to 1.0.
func (w Weights) Validate() error {
	sum := w.Cost + w.Features + w.Popularity + w.Eligibility + w.Rating
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("scoring weights sum to %.4f, want 1.0", sum)
	}
	return nil
}

// Preferences is the per-request preference input for scoring. Callers may
// supply these ad hoc or derive them from a stored UserPreference profile.
type Preferences struct {
	CreditScore  *int
	Income       *float64
	BudgetMin    *float64
	BudgetMax    *float64
	RiskAppetite *int
}

// PreferencesFromProfile converts a stored profile into scoring input.
func PreferencesFromProfile(pref domain.UserPreference) Preferences {
	return Preferences{
		CreditScore:  pref.CreditScore,
		Income:       pref.Income,
		BudgetMin:    pref.BudgetMin,
		BudgetMax:    pref.BudgetMax,
		RiskAppetite: pref.RiskAppetite,
	}
}

// Score computes the additive recommendation score for one product.
//
// The cost term rewards low interest rates relative to a 15% pivot and goes
// negative beyond it. The eligibility term rewards headroom between the
// user's credit score and the product's minimum, and contributes nothing
// when either side is unknown.
func Score(p domain.Product, prefs Preferences, w Weights) float64 {
	score := 0.0
	if p.InterestRate != nil {
		score += (15 - *p.InterestRate) * 10 * w.Cost
	}
	score += float64(len(p.Features)) * 5 * w.Features
	score += p.PopularityScore * w.Popularity
	if prefs.CreditScore != nil && p.Eligibility.MinCreditScore != nil {
		headroom := float64(*prefs.CreditScore - *p.Eligibility.MinCreditScore)
		if headroom > 0 {
			score += headroom * w.Eligibility
		}
	}
	score += p.AverageRating() * 20 * w.Rating
	return score
}
