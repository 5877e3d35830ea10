package recommend

import (
	"fmt"

	"github.com/priyadarshini/finadvisor/internal/domain"
)

// LoopholeRules holds the heuristic thresholds for insurance policy
// analysis. The defaults are undocumented industry heuristics, so they are
// configurable rather than hard-coded.
type LoopholeRules struct {
	MaxExclusions     int     `koanf:"max_exclusions"`
	ExclusionSeverity int     `koanf:"exclusion_severity"`
	MinCoverageRatio  float64 `koanf:"min_coverage_ratio"`
	PoorValueSeverity int     `koanf:"poor_value_severity"`
}

// DefaultLoopholeRules returns the production thresholds.
func DefaultLoopholeRules() LoopholeRules {
	return LoopholeRules{
		MaxExclusions:     10,
		ExclusionSeverity: 8,
		MinCoverageRatio:  100,
		PoorValueSeverity: 7,
	}
}

// AnalyzeLoopholes evaluates the fixed rule set against a policy's coverage
// terms. OverallSeverity is the mean severity over triggered rules, 0 when
// nothing triggers.
func AnalyzeLoopholes(cov domain.InsuranceCoverage, rules LoopholeRules) domain.LoopholeAnalysis {
	var loopholes []domain.Loophole

	if len(cov.Exclusions) > rules.MaxExclusions {
		loopholes = append(loopholes, domain.Loophole{
			Category: "Excessive Exclusions",
			Description: fmt.Sprintf("policy lists %d exclusions, more than the %d typically seen in comparable cover",
				len(cov.Exclusions), rules.MaxExclusions),
			Severity: rules.ExclusionSeverity,
		})
	}

	if cov.Premium > 0 && cov.SumAssured/cov.Premium < rules.MinCoverageRatio {
		loopholes = append(loopholes, domain.Loophole{
			Category: "Poor Value",
			Description: fmt.Sprintf("sum assured is only %.1fx the premium, below the %.0fx value threshold",
				cov.SumAssured/cov.Premium, rules.MinCoverageRatio),
			Severity: rules.PoorValueSeverity,
		})
	}

	analysis := domain.LoopholeAnalysis{Loopholes: loopholes}
	if len(loopholes) > 0 {
		total := 0
		for _, l := range loopholes {
			total += l.Severity
		}
		analysis.OverallSeverity = float64(total) / float64(len(loopholes))
	}
	return analysis
}
