package recommend

import (
	"fmt"
	"testing"

	"github.com/priyadarshini/finadvisor/internal/domain"
)

func manyExclusions(n int) []string {
	exclusions := make([]string, n)
	for i := range exclusions {
		exclusions[i] = fmt.Sprintf("exclusion %d", i+1)
	}
	return exclusions
}

func TestAnalyzeLoopholesCleanPolicy(t *testing.T) {
	analysis := AnalyzeLoopholes(domain.InsuranceCoverage{
		SumAssured: 5000000,
		Premium:    10000,
		Exclusions: manyExclusions(3),
	}, DefaultLoopholeRules())

	if len(analysis.Loopholes) != 0 {
		t.Fatalf("expected no loopholes, got %d", len(analysis.Loopholes))
	}
	if analysis.OverallSeverity != 0 {
		t.Fatalf("expected zero severity, got %.2f", analysis.OverallSeverity)
	}
}

func TestAnalyzeLoopholesExclusionBoundary(t *testing.T) {
	rules := DefaultLoopholeRules()
	coverage := domain.InsuranceCoverage{SumAssured: 5000000, Premium: 10000}

	coverage.Exclusions = manyExclusions(10)
	atLimit := AnalyzeLoopholes(coverage, rules)
	if len(atLimit.Loopholes) != 0 {
		t.Fatalf("10 exclusions should not trigger, got %d loopholes", len(atLimit.Loopholes))
	}

	coverage.Exclusions = manyExclusions(11)
	overLimit := AnalyzeLoopholes(coverage, rules)
	if len(overLimit.Loopholes) != 1 {
		t.Fatalf("11 exclusions should trigger exactly one rule, got %d", len(overLimit.Loopholes))
	}
	if overLimit.Loopholes[0].Category != "Excessive Exclusions" {
		t.Fatalf("unexpected category %q", overLimit.Loopholes[0].Category)
	}
	if overLimit.Loopholes[0].Severity != rules.ExclusionSeverity {
		t.Fatalf("expected severity %d, got %d", rules.ExclusionSeverity, overLimit.Loopholes[0].Severity)
	}
	if overLimit.OverallSeverity <= atLimit.OverallSeverity {
		t.Fatalf("severity must strictly increase past the boundary: %.2f -> %.2f",
			atLimit.OverallSeverity, overLimit.OverallSeverity)
	}
}

func TestAnalyzeLoopholesPoorValue(t *testing.T) {
	analysis := AnalyzeLoopholes(domain.InsuranceCoverage{
		SumAssured: 500000,
		Premium:    10000, // 50x, below the 100x threshold
	}, DefaultLoopholeRules())

	if len(analysis.Loopholes) != 1 {
		t.Fatalf("expected one loophole, got %d", len(analysis.Loopholes))
	}
	if analysis.Loopholes[0].Category != "Poor Value" {
		t.Fatalf("unexpected category %q", analysis.Loopholes[0].Category)
	}
	if analysis.OverallSeverity != 7 {
		t.Fatalf("expected overall severity 7, got %.2f", analysis.OverallSeverity)
	}
}

func TestAnalyzeLoopholesBothRulesAverage(t *testing.T) {
	analysis := AnalyzeLoopholes(domain.InsuranceCoverage{
		SumAssured: 500000,
		Premium:    10000,
		Exclusions: manyExclusions(12),
	}, DefaultLoopholeRules())

	if len(analysis.Loopholes) != 2 {
		t.Fatalf("expected both rules to trigger, got %d", len(analysis.Loopholes))
	}
	if got, want := analysis.OverallSeverity, 7.5; got != want {
		t.Fatalf("expected mean severity %.1f, got %.2f", want, got)
	}
}
