package domain

import (
	"errors"
	"fmt"
	"time"
)

// Product types understood by the catalog.
const (
	ProductTypeCreditCard   = "credit_card"
	ProductTypeInsurance    = "insurance"
	ProductTypePersonalLoan = "personal_loan"
)

// Product is one financial offering in the unified catalog. The common header
// applies to every type; the per-type terms structs are nil for types they do
// not apply to. An absent optional field means "not applicable", never zero.
type Product struct {
	ID              string               `bson:"_id,omitempty" json:"id,omitempty"`
	Type            string               `bson:"type" json:"type"`
	Name            string               `bson:"name" json:"name"`
	Provider        string               `bson:"provider" json:"provider"`
	InterestRate    *float64             `bson:"interestRate,omitempty" json:"interestRate,omitempty"`
	ProcessingFees  *float64             `bson:"processingFees,omitempty" json:"processingFees,omitempty"`
	AnnualFee       *float64             `bson:"annualFee,omitempty" json:"annualFee,omitempty"`
	Features        []string             `bson:"features,omitempty" json:"features,omitempty"`
	Eligibility     EligibilityCriteria  `bson:"eligibilityCriteria" json:"eligibilityCriteria"`
	Loan            *LoanTerms           `bson:"loanTerms,omitempty" json:"loanTerms,omitempty"`
	Card            *CardTerms           `bson:"cardTerms,omitempty" json:"cardTerms,omitempty"`
	Insurance       *InsuranceCoverage   `bson:"insuranceCoverage,omitempty" json:"insuranceCoverage,omitempty"`
	PopularityScore float64              `bson:"popularityScore" json:"popularityScore"`
	UserRatings     []UserRating         `bson:"userRatings,omitempty" json:"userRatings,omitempty"`
	UpdatedAt       time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// EligibilityCriteria gates who may apply for a product. Nil means the
// product imposes no such requirement.
type EligibilityCriteria struct {
	MinIncome      *float64 `bson:"minIncome,omitempty" json:"minIncome,omitempty"`
	MinCreditScore *int     `bson:"minCreditScore,omitempty" json:"minCreditScore,omitempty"`
}

// LoanTerms carries the fields specific to personal loans.
type LoanTerms struct {
	MinAmount float64 `bson:"minAmount" json:"minAmount"`
	MaxAmount float64 `bson:"maxAmount" json:"maxAmount"`
	MinTenure int     `bson:"minTenure" json:"minTenure"`
	MaxTenure int     `bson:"maxTenure" json:"maxTenure"`
}

// CardTerms carries the fields specific to credit cards.
type CardTerms struct {
	MinCreditLimit float64 `bson:"minCreditLimit" json:"minCreditLimit"`
	MaxCreditLimit float64 `bson:"maxCreditLimit" json:"maxCreditLimit"`
	RewardRate     float64 `bson:"rewardRate,omitempty" json:"rewardRate,omitempty"`
}

// InsuranceCoverage carries the fields specific to insurance policies.
type InsuranceCoverage struct {
	SumAssured      float64  `bson:"sumAssured" json:"sumAssured"`
	Premium         float64  `bson:"premium" json:"premium"`
	CoverageDetails string   `bson:"coverageDetails" json:"coverageDetails"`
	Exclusions      []string `bson:"exclusions,omitempty" json:"exclusions,omitempty"`
}

// UserRating is a single 1-5 star rating left by a user.
type UserRating struct {
	Rating int `bson:"rating" json:"rating"`
}

// Key identifies a product for upsert purposes. Two catalog entries with the
// same key are the same product regardless of which source supplied them.
type Key struct {
	Name     string
	Provider string
	Type     string
}

// Key returns the product's uniqueness key.
func (p Product) Key() Key {
	return Key{Name: p.Name, Provider: p.Provider, Type: p.Type}
}

// AverageRating returns the mean of all user ratings, or 0 when unrated.
func (p Product) AverageRating() float64 {
	if len(p.UserRatings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range p.UserRatings {
		sum += r.Rating
	}
	return float64(sum) / float64(len(p.UserRatings))
}

// Validate checks the header fields and rejects field combinations that do
// not belong to the product's type.
func (p Product) Validate() error {
	if p.Name == "" || p.Provider == "" {
		return errors.New("product name and provider are required")
	}
	switch p.Type {
	case ProductTypePersonalLoan:
		if p.Insurance != nil || p.Card != nil {
			return fmt.Errorf("loan product %q carries non-loan terms", p.Name)
		}
		if p.Loan != nil && (p.Loan.MinAmount < 0 || p.Loan.MaxAmount < p.Loan.MinAmount) {
			return fmt.Errorf("loan product %q has invalid amount bounds", p.Name)
		}
	case ProductTypeCreditCard:
		if p.Insurance != nil || p.Loan != nil {
			return fmt.Errorf("card product %q carries non-card terms", p.Name)
		}
	case ProductTypeInsurance:
		if p.Loan != nil || p.Card != nil {
			return fmt.Errorf("insurance product %q carries non-insurance terms", p.Name)
		}
		if p.Insurance != nil && (p.Insurance.SumAssured < 0 || p.Insurance.Premium < 0) {
			return fmt.Errorf("insurance product %q has negative coverage values", p.Name)
		}
	case "":
		return fmt.Errorf("product %q has no type", p.Name)
	default:
		return fmt.Errorf("product %q has unknown type %q", p.Name, p.Type)
	}
	if p.InterestRate != nil && *p.InterestRate < 0 {
		return fmt.Errorf("product %q has negative interest rate", p.Name)
	}
	if p.ProcessingFees != nil && *p.ProcessingFees < 0 {
		return fmt.Errorf("product %q has negative processing fees", p.Name)
	}
	if p.AnnualFee != nil && *p.AnnualFee < 0 {
		return fmt.Errorf("product %q has negative annual fee", p.Name)
	}
	return nil
}
