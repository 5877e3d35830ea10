package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/priyadarshini/finadvisor/internal/domain"
	"github.com/priyadarshini/finadvisor/internal/repository"
)

// DefaultLimit caps recommendation lists when the caller does not ask for a
// specific size.
const DefaultLimit = 10

// CatalogReader is the storage contract required by the scoring engine. All
// engine operations are pure reads plus in-memory computation.
type CatalogReader interface {
	QueryProducts(ctx context.Context, f repository.ProductFilter) ([]domain.Product, error)
	ProductsByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
	ProductByID(ctx context.Context, id string) (domain.Product, error)
}

// Options bundles the scoring configuration. Zero values fall back to the
// production defaults.
type Options struct {
	Weights Weights
	Rules   LoopholeRules
}

// Engine turns catalog queries plus user preferences into ranked,
// explainable recommendation lists. It is stateless and safe for
// concurrent use, including concurrently with an ingestion refresh.
type Engine struct {
	catalog CatalogReader
	weights Weights
	rules   LoopholeRules
	logger  *slog.Logger
}

// NewEngine constructs a scoring engine over the catalog.
func NewEngine(catalog CatalogReader, opts Options, logger *slog.Logger) (*Engine, error) {
	if opts.Weights == (Weights{}) {
		opts.Weights = DefaultWeights()
	}
	if err := opts.Weights.Validate(); err != nil {
		return nil, err
	}
	if opts.Rules == (LoopholeRules{}) {
		opts.Rules = DefaultLoopholeRules()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		catalog: catalog,
		weights: opts.Weights,
		rules:   opts.Rules,
		logger:  logger,
	}, nil
}

// Recommend returns the top products of the given type for the supplied
// preferences, scored and sorted descending. A type with no matching
// products yields an empty list, not an error.
func (e *Engine) Recommend(ctx context.Context, prefs Preferences, productType string, limit int) ([]domain.ScoredProduct, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	filter := repository.ProductFilter{
		Type:        productType,
		CreditScore: prefs.CreditScore,
		BudgetMin:   prefs.BudgetMin,
		BudgetMax:   prefs.BudgetMax,
	}
	products, err := e.catalog.QueryProducts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("recommend %s: %w", productType, err)
	}

	candidates := make([]domain.ScoredProduct, 0, len(products))
	for _, p := range products {
		candidate := domain.ScoredProduct{
			Product: p,
			Score:   Score(p, prefs, e.weights),
		}
		if p.InterestRate != nil {
			fees := 0.0
			if p.ProcessingFees != nil {
				fees = *p.ProcessingFees
			}
			cost := LoanCost(ReferencePrincipal, *p.InterestRate, ReferenceTenureMonths, fees)
			candidate.Cost = &cost
		}
		if p.Type == domain.ProductTypeInsurance && p.Insurance != nil {
			analysis := AnalyzeLoopholes(*p.Insurance, e.rules)
			candidate.Loopholes = &analysis
		}
		candidates = append(candidates, candidate)
	}

	// Stable: ties keep catalog order.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	e.logger.Debug("recommendations computed", "productType", productType, "candidates", len(candidates))
	return candidates, nil
}

// Compare fetches the named products and attaches the analysis relevant to
// each type. Unknown ids are silently omitted. When every resolved product
// is a personal loan the result is sorted ascending by total cost;
// otherwise it keeps fetch order.
func (e *Engine) Compare(ctx context.Context, productIDs []string) ([]domain.ComparisonEntry, error) {
	ids := make([]string, 0, len(productIDs))
	for _, id := range productIDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no product ids supplied", domain.ErrInvalidInput)
	}

	products, err := e.catalog.ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("compare products: %w", err)
	}

	entries := make([]domain.ComparisonEntry, 0, len(products))
	allLoans := len(products) > 0
	for _, p := range products {
		entry := domain.ComparisonEntry{Product: p}
		if p.Type != domain.ProductTypePersonalLoan {
			allLoans = false
		}
		if p.InterestRate != nil {
			fees := 0.0
			if p.ProcessingFees != nil {
				fees = *p.ProcessingFees
			}
			cost := LoanCost(ReferencePrincipal, *p.InterestRate, ReferenceTenureMonths, fees)
			entry.Cost = &cost
		}
		if p.Type == domain.ProductTypeInsurance && p.Insurance != nil {
			analysis := AnalyzeLoopholes(*p.Insurance, e.rules)
			entry.Loopholes = &analysis
		}
		entries = append(entries, entry)
	}

	if allLoans {
		sort.SliceStable(entries, func(i, j int) bool {
			var ci, cj float64
			if entries[i].Cost != nil {
				ci = entries[i].Cost.TotalCost
			}
			if entries[j].Cost != nil {
				cj = entries[j].Cost.TotalCost
			}
			return ci < cj
		})
	}
	return entries, nil
}

// PolicyLoopholes resolves a policy id and analyzes its coverage terms.
// Ids that resolve to a non-insurance product are reported as not found.
func (e *Engine) PolicyLoopholes(ctx context.Context, policyID string) (domain.Product, domain.LoopholeAnalysis, error) {
	if strings.TrimSpace(policyID) == "" {
		return domain.Product{}, domain.LoopholeAnalysis{}, fmt.Errorf("%w: policy id is required", domain.ErrInvalidInput)
	}

	p, err := e.catalog.ProductByID(ctx, policyID)
	if err != nil {
		return domain.Product{}, domain.LoopholeAnalysis{}, err
	}
	if p.Type != domain.ProductTypeInsurance || p.Insurance == nil {
		return domain.Product{}, domain.LoopholeAnalysis{}, fmt.Errorf("%w: %s is not an insurance policy", domain.ErrNotFound, policyID)
	}
	return p, AnalyzeLoopholes(*p.Insurance, e.rules), nil
}
