package domain

// CostAnalysis is the amortization breakdown for a loan-style product.
type CostAnalysis struct {
	EMI          float64 `json:"emi"`
	TotalPayment float64 `json:"totalPayment"`
	TotalCost    float64 `json:"totalCost"`
	CostPerMonth float64 `json:"costPerMonth"`
}

// Loophole is one heuristic-flagged unfavorable policy term.
type Loophole struct {
	Category    string `json:"category"`
	Description string `json:"description"`
	Severity    int    `json:"severity"`
}

// LoopholeAnalysis aggregates the triggered loophole rules for a policy.
// OverallSeverity is the mean severity across triggered rules, 0 when none.
type LoopholeAnalysis struct {
	Loopholes       []Loophole `json:"loopholes"`
	OverallSeverity float64    `json:"overallSeverity"`
}

// ScoredProduct is one ranked recommendation candidate. It is computed per
// request and never persisted.
type ScoredProduct struct {
	Product   Product           `json:"product"`
	Score     float64           `json:"score"`
	Cost      *CostAnalysis     `json:"costAnalysis,omitempty"`
	Loopholes *LoopholeAnalysis `json:"loopholeAnalysis,omitempty"`
}

// ComparisonEntry pairs a product with the analysis relevant to its type.
type ComparisonEntry struct {
	Product   Product           `json:"product"`
	Cost      *CostAnalysis     `json:"costAnalysis,omitempty"`
	Loopholes *LoopholeAnalysis `json:"loopholeAnalysis,omitempty"`
}
