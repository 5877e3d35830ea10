package recommend

import (
	"math"

	"github.com/priyadarshini/finadvisor/internal/domain"
)

// Reference amortization point used when comparing products: scoring a
// catalog requires a common principal and tenure, not the user's actual
// loan request.
const (
	ReferencePrincipal    = 100000.0
	ReferenceTenureMonths = 60
)

// LoanCost computes the EMI amortization for a loan. The zero-rate case is
// handled explicitly: the general formula divides by (1+r)^n - 1, which is
// zero when r is.
func LoanCost(principal, annualRatePercent float64, tenureMonths int, fees float64) domain.CostAnalysis {
	monthlyRate := annualRatePercent / 12 / 100

	var emi float64
	if monthlyRate == 0 {
		emi = principal / float64(tenureMonths)
	} else {
		factor := math.Pow(1+monthlyRate, float64(tenureMonths))
		emi = principal * monthlyRate * factor / (factor - 1)
	}

	totalPayment := emi * float64(tenureMonths)
	totalCost := totalPayment + fees - principal
	return domain.CostAnalysis{
		EMI:          emi,
		TotalPayment: totalPayment,
		TotalCost:    totalCost,
		CostPerMonth: totalCost / float64(tenureMonths),
	}
}
