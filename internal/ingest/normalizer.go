package ingest

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/priyadarshini/finadvisor/internal/domain"
)

// cardPayload is the raw schema exposed by credit-card sources.
type cardPayload struct {
	Name           string   `json:"name"`
	Issuer         string   `json:"issuer"`
	APR            *float64 `json:"apr"`
	AnnualFee      *float64 `json:"annualFee"`
	Features       []string `json:"features"`
	MinIncome      *float64 `json:"minIncome"`
	MinCreditScore *int     `json:"minCreditScore"`
	MinCreditLimit *float64 `json:"minCreditLimit"`
	MaxCreditLimit *float64 `json:"maxCreditLimit"`
	RewardRate     *float64 `json:"rewardRate"`
}

// insurancePayload is the raw schema exposed by insurance sources.
type insurancePayload struct {
	PolicyName     string   `json:"policyName"`
	Provider       string   `json:"provider"`
	SumAssured     float64  `json:"sumAssured"`
	Premium        float64  `json:"premium"`
	Coverage       string   `json:"coverage"`
	Exclusions     []string `json:"exclusions"`
	Features       []string `json:"features"`
	MinIncome      *float64 `json:"minIncome"`
	MinCreditScore *int     `json:"minCreditScore"`
}

// loanPayload is the raw schema exposed by loan sources.
type loanPayload struct {
	Name           string   `json:"name"`
	Lender         string   `json:"lender"`
	InterestRate   *float64 `json:"interestRate"`
	ProcessingFees *float64 `json:"processingFees"`
	MinAmount      float64  `json:"minAmount"`
	MaxAmount      float64  `json:"maxAmount"`
	MinTenure      int      `json:"minTenure"`
	MaxTenure      int      `json:"maxTenure"`
	Features       []string `json:"features"`
	MinIncome      *float64 `json:"minIncome"`
	MinCreditScore *int     `json:"minCreditScore"`
}

// Normalize maps a raw source payload into unified catalog products
// according to the source kind. Entries missing their identity fields are
// skipped rather than failing the whole payload.
func Normalize(kind string, payload []byte) ([]domain.Product, error) {
	switch kind {
	case KindCreditCards:
		var cards []cardPayload
		if err := json.Unmarshal(payload, &cards); err != nil {
			return nil, fmt.Errorf("decode credit-card payload: %w", err)
		}
		return normalizeCards(cards), nil
	case KindInsurance:
		var policies []insurancePayload
		if err := json.Unmarshal(payload, &policies); err != nil {
			return nil, fmt.Errorf("decode insurance payload: %w", err)
		}
		return normalizePolicies(policies), nil
	case KindLoans:
		var loans []loanPayload
		if err := json.Unmarshal(payload, &loans); err != nil {
			return nil, fmt.Errorf("decode loan payload: %w", err)
		}
		return normalizeLoans(loans), nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", kind)
	}
}

func normalizeCards(cards []cardPayload) []domain.Product {
	products := make([]domain.Product, 0, len(cards))
	for _, c := range cards {
		name := sanitize(c.Name)
		issuer := sanitize(c.Issuer)
		if name == "" || issuer == "" {
			continue
		}
		p := domain.Product{
			Type:         domain.ProductTypeCreditCard,
			Name:         name,
			Provider:     issuer,
			InterestRate: c.APR,
			AnnualFee:    c.AnnualFee,
			Features:     c.Features,
			Eligibility: domain.EligibilityCriteria{
				MinIncome:      c.MinIncome,
				MinCreditScore: c.MinCreditScore,
			},
		}
		if c.MinCreditLimit != nil || c.MaxCreditLimit != nil {
			terms := domain.CardTerms{}
			if c.MinCreditLimit != nil {
				terms.MinCreditLimit = *c.MinCreditLimit
			}
			if c.MaxCreditLimit != nil {
				terms.MaxCreditLimit = *c.MaxCreditLimit
			}
			if c.RewardRate != nil {
				terms.RewardRate = *c.RewardRate
			}
			p.Card = &terms
		}
		products = append(products, p)
	}
	return products
}

func normalizePolicies(policies []insurancePayload) []domain.Product {
	products := make([]domain.Product, 0, len(policies))
	for _, pol := range policies {
		name := sanitize(pol.PolicyName)
		provider := sanitize(pol.Provider)
		if name == "" || provider == "" {
			continue
		}
		products = append(products, domain.Product{
			Type:     domain.ProductTypeInsurance,
			Name:     name,
			Provider: provider,
			Features: pol.Features,
			Eligibility: domain.EligibilityCriteria{
				MinIncome:      pol.MinIncome,
				MinCreditScore: pol.MinCreditScore,
			},
			Insurance: &domain.InsuranceCoverage{
				SumAssured:      pol.SumAssured,
				Premium:         pol.Premium,
				CoverageDetails: pol.Coverage,
				Exclusions:      pol.Exclusions,
			},
		})
	}
	return products
}

func normalizeLoans(loans []loanPayload) []domain.Product {
	products := make([]domain.Product, 0, len(loans))
	for _, l := range loans {
		name := sanitize(l.Name)
		lender := sanitize(l.Lender)
		if name == "" || lender == "" {
			continue
		}
		products = append(products, domain.Product{
			Type:           domain.ProductTypePersonalLoan,
			Name:           name,
			Provider:       lender,
			InterestRate:   l.InterestRate,
			ProcessingFees: l.ProcessingFees,
			Features:       l.Features,
			Eligibility: domain.EligibilityCriteria{
				MinIncome:      l.MinIncome,
				MinCreditScore: l.MinCreditScore,
			},
			Loan: &domain.LoanTerms{
				MinAmount: l.MinAmount,
				MaxAmount: l.MaxAmount,
				MinTenure: l.MinTenure,
				MaxTenure: l.MaxTenure,
			},
		})
	}
	return products
}

func sanitize(value string) string {
	return strings.Join(strings.Fields(value), " ")
}
