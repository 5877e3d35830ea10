package generator

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// CardPayload mirrors the raw schema of credit-card sources.
type CardPayload struct {
	Name           string   `json:"name"`
	Issuer         string   `json:"issuer"`
	APR            float64  `json:"apr"`
	AnnualFee      float64  `json:"annualFee"`
	Features       []string `json:"features"`
	MinIncome      float64  `json:"minIncome"`
	MinCreditScore int      `json:"minCreditScore"`
	MinCreditLimit float64  `json:"minCreditLimit"`
	MaxCreditLimit float64  `json:"maxCreditLimit"`
	RewardRate     float64  `json:"rewardRate"`
}

// PolicyPayload mirrors the raw schema of insurance sources.
type PolicyPayload struct {
	PolicyName string   `json:"policyName"`
	Provider   string   `json:"provider"`
	SumAssured float64  `json:"sumAssured"`
	Premium    float64  `json:"premium"`
	Coverage   string   `json:"coverage"`
	Exclusions []string `json:"exclusions"`
	Features   []string `json:"features"`
	MinIncome  float64  `json:"minIncome"`
}

// LoanPayload mirrors the raw schema of loan sources.
type LoanPayload struct {
	Name           string   `json:"name"`
	Lender         string   `json:"lender"`
	InterestRate   float64  `json:"interestRate"`
	ProcessingFees float64  `json:"processingFees"`
	MinAmount      float64  `json:"minAmount"`
	MaxAmount      float64  `json:"maxAmount"`
	MinTenure      int      `json:"minTenure"`
	MaxTenure      int      `json:"maxTenure"`
	Features       []string `json:"features"`
	MinIncome      float64  `json:"minIncome"`
	MinCreditScore int      `json:"minCreditScore"`
}

// Dataset contains the generated per-source payloads.
type Dataset struct {
	Cards    []CardPayload   `json:"cards"`
	Policies []PolicyPayload `json:"policies"`
	Loans    []LoanPayload   `json:"loans"`
}

// Generator produces synthetic source payloads aligned with the ingestion
// normalizer schemas.
type Generator struct {
	cfg       Config
	rand      *rand.Rand
	fragments nameFragments
}

// New returns a configured Generator instance.
func New(cfg Config) *Generator {
	defaults := DefaultConfig()
	if cfg.NumCards <= 0 {
		cfg.NumCards = defaults.NumCards
	}
	if cfg.NumPolicies <= 0 {
		cfg.NumPolicies = defaults.NumPolicies
	}
	if cfg.NumLoans <= 0 {
		cfg.NumLoans = defaults.NumLoans
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	return &Generator{
		cfg:       cfg,
		rand:      rand.New(rand.NewSource(cfg.Seed)),
		fragments: defaultNameFragments(),
	}
}

// Generate synthesises the three source payloads. It respects context
// cancellation.
func (g *Generator) Generate(ctx context.Context) (Dataset, error) {
	cards := make([]CardPayload, g.cfg.NumCards)
	for i := range cards {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}
		issuer := g.pick(g.fragments.banks)
		tier := g.pick(g.fragments.cardTiers)
		minLimit := float64(g.rand.Intn(40)+10) * 1000
		cards[i] = CardPayload{
			Name:           fmt.Sprintf("%s %s Card", issuer, tier),
			Issuer:         issuer,
			APR:            round2(10 + g.rand.Float64()*26),
			AnnualFee:      float64(g.rand.Intn(20)) * 25,
			Features:       g.pickSome(g.fragments.cardFeatures, 2+g.rand.Intn(4)),
			MinIncome:      float64(g.rand.Intn(60)+20) * 1000,
			MinCreditScore: 600 + g.rand.Intn(200),
			MinCreditLimit: minLimit,
			MaxCreditLimit: minLimit * float64(2+g.rand.Intn(8)),
			RewardRate:     round2(g.rand.Float64() * 5),
		}
	}

	policies := make([]PolicyPayload, g.cfg.NumPolicies)
	for i := range policies {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}
		provider := g.pick(g.fragments.insurers)
		line := g.pick(g.fragments.policyLines)
		premium := float64(g.rand.Intn(90)+10) * 100
		// A fraction of policies get weak cover terms so loophole analysis
		// has something to flag in dev environments.
		ratio := float64(120 + g.rand.Intn(400))
		exclusionCount := g.rand.Intn(8)
		if g.rand.Float64() < 0.2 {
			ratio = float64(20 + g.rand.Intn(70))
			exclusionCount = 11 + g.rand.Intn(5)
		}
		policies[i] = PolicyPayload{
			PolicyName: fmt.Sprintf("%s %s", provider, line),
			Provider:   provider,
			SumAssured: premium * ratio,
			Premium:    premium,
			Coverage:   g.pick(g.fragments.coverageDetails),
			Exclusions: g.pickSome(g.fragments.exclusions, exclusionCount),
			Features:   g.pickSome(g.fragments.policyFeatures, 1+g.rand.Intn(3)),
			MinIncome:  float64(g.rand.Intn(40)+10) * 1000,
		}
	}

	loans := make([]LoanPayload, g.cfg.NumLoans)
	for i := range loans {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}
		lender := g.pick(g.fragments.banks)
		minAmount := float64(g.rand.Intn(9)+1) * 25000
		loans[i] = LoanPayload{
			Name:           fmt.Sprintf("%s %s Loan", lender, g.pick(g.fragments.loanLines)),
			Lender:         lender,
			InterestRate:   round2(8 + g.rand.Float64()*12),
			ProcessingFees: float64(g.rand.Intn(40)+10) * 50,
			MinAmount:      minAmount,
			MaxAmount:      minAmount * float64(4+g.rand.Intn(16)),
			MinTenure:      6 + 6*g.rand.Intn(3),
			MaxTenure:      36 + 12*g.rand.Intn(7),
			Features:       g.pickSome(g.fragments.loanFeatures, 1+g.rand.Intn(4)),
			MinIncome:      float64(g.rand.Intn(50)+25) * 1000,
			MinCreditScore: 580 + g.rand.Intn(200),
		}
	}

	return Dataset{Cards: cards, Policies: policies, Loans: loans}, nil
}

func (g *Generator) pick(values []string) string {
	return values[g.rand.Intn(len(values))]
}

func (g *Generator) pickSome(values []string, n int) []string {
	if n > len(values) {
		n = len(values)
	}
	picked := make([]string, 0, n)
	for _, idx := range g.rand.Perm(len(values))[:n] {
		picked = append(picked, values[idx])
	}
	return picked
}

func round2(v float64) float64 {
	return float64(int(v*100)) / 100
}

type nameFragments struct {
	banks           []string
	insurers        []string
	cardTiers       []string
	cardFeatures    []string
	policyLines     []string
	policyFeatures  []string
	coverageDetails []string
	exclusions      []string
	loanLines       []string
	loanFeatures    []string
}

func defaultNameFragments() nameFragments {
	return nameFragments{
		banks:     []string{"Meridian Bank", "Harborstone", "Vertex Capital", "Northgate Financial", "Crestline", "Solstice Bank", "Pinewood Trust"},
		insurers:  []string{"Aegis Life", "Bluepeak Assurance", "Crestline Insurance", "Halcyon Mutual", "Summit Shield"},
		cardTiers: []string{"Platinum", "Everyday", "Travel Elite", "Cashback Plus", "Signature", "Student"},
		cardFeatures: []string{
			"airport lounge access", "fuel surcharge waiver", "zero liability protection",
			"1% cashback on groceries", "complimentary travel insurance", "no foreign transaction fees",
			"milestone bonus points", "contactless payments",
		},
		policyLines:    []string{"Term Shield", "Family Health Plan", "Secure Life", "Critical Cover", "Wellness Plus"},
		policyFeatures: []string{"cashless claims", "no-claim bonus", "free annual checkup", "worldwide coverage"},
		coverageDetails: []string{
			"hospitalization, surgery and day-care procedures",
			"death benefit with optional accidental rider",
			"critical illness lump sum across 32 conditions",
			"in-patient treatment and pre/post hospitalization",
		},
		exclusions: []string{
			"pre-existing conditions for 36 months", "cosmetic procedures", "self-inflicted injuries",
			"hazardous sports", "war and nuclear risks", "substance abuse treatment",
			"experimental therapies", "dental treatment", "maternity within first year",
			"outpatient consultations", "alternative medicine", "overseas treatment",
			"congenital conditions", "mental health outpatient care", "weight management programs",
			"routine eye examinations",
		},
		loanLines: []string{"Personal", "Flexi", "Express", "Consolidation", "Home Improvement"},
		loanFeatures: []string{
			"no prepayment penalty", "same-day disbursal", "flexible tenure",
			"top-up facility", "balance transfer option", "minimal documentation",
		},
	}
}
