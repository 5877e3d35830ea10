package domain

import "time"

// UserPreference is the durable per-user profile consumed by the scoring
// engine. One document per user, keyed by UserID.
type UserPreference struct {
	UserID                string    `bson:"userId" json:"userId"`
	PreferredProductTypes []string  `bson:"preferredProductTypes,omitempty" json:"preferredProductTypes,omitempty"`
	BudgetMin             *float64  `bson:"budgetMin,omitempty" json:"budgetMin,omitempty"`
	BudgetMax             *float64  `bson:"budgetMax,omitempty" json:"budgetMax,omitempty"`
	RiskAppetite          *int      `bson:"riskAppetite,omitempty" json:"riskAppetite,omitempty"`
	FinancialGoals        []string  `bson:"financialGoals,omitempty" json:"financialGoals,omitempty"`
	CreditScore           *int      `bson:"creditScore,omitempty" json:"creditScore,omitempty"`
	Income                *float64  `bson:"income,omitempty" json:"income,omitempty"`
	LastUpdated           time.Time `bson:"lastUpdated" json:"lastUpdated"`
}

// PreferenceUpdate is a partial preference write. Only non-nil fields are
// applied; each submitted field fully replaces its stored counterpart
// (field-level set, no merge).
type PreferenceUpdate struct {
	PreferredProductTypes *[]string `json:"preferredProductTypes,omitempty"`
	BudgetMin             *float64  `json:"budgetMin,omitempty"`
	BudgetMax             *float64  `json:"budgetMax,omitempty"`
	RiskAppetite          *int      `json:"riskAppetite,omitempty"`
	FinancialGoals        *[]string `json:"financialGoals,omitempty"`
	CreditScore           *int      `json:"creditScore,omitempty"`
	Income                *float64  `json:"income,omitempty"`
}

// Empty reports whether the update carries no fields at all.
func (u PreferenceUpdate) Empty() bool {
	return u.PreferredProductTypes == nil && u.BudgetMin == nil && u.BudgetMax == nil &&
		u.RiskAppetite == nil && u.FinancialGoals == nil && u.CreditScore == nil && u.Income == nil
}
