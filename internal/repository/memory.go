package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/priyadarshini/finadvisor/internal/domain"
)

// Memory is an in-memory implementation of the repository operations, used
// for unit tests and for running the server without a MongoDB instance.
// Query results preserve catalog insertion order, which makes ranking ties
// deterministic in tests.
type Memory struct {
	mu       sync.Mutex
	order    []domain.Key
	products map[domain.Key]*domain.Product
	records  []domain.AnalyticsRecord
	prefs    map[string]domain.UserPreference

	upsertErr error
	queryErr  error
	writeErr  error
}

// NewMemory instantiates an empty in-memory repository.
func NewMemory() *Memory {
	return &Memory{
		products: make(map[domain.Key]*domain.Product),
		prefs:    make(map[string]domain.UserPreference),
	}
}

// WithUpsertError forces subsequent product upserts to fail.
func (m *Memory) WithUpsertError(err error) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upsertErr = err
	return m
}

// WithQueryError forces subsequent reads to fail.
func (m *Memory) WithQueryError(err error) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryErr = err
	return m
}

// WithWriteError forces subsequent analytics/preference writes to fail.
func (m *Memory) WithWriteError(err error) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
	return m
}

func (m *Memory) UpsertProduct(_ context.Context, p domain.Product) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return fmt.Errorf("%w: product %s/%s: %w", domain.ErrUpsertFailed, p.Provider, p.Name, m.upsertErr)
	}

	key := p.Key()
	existing, ok := m.products[key]
	if !ok {
		p.ID = uuid.NewString()
		p.PopularityScore = 0
		p.UserRatings = nil
		p.UpdatedAt = time.Now().UTC()
		m.products[key] = &p
		m.order = append(m.order, key)
		return nil
	}

	// Refresh catalog fields only; analytics-owned fields survive.
	p.ID = existing.ID
	p.PopularityScore = existing.PopularityScore
	p.UserRatings = existing.UserRatings
	p.UpdatedAt = time.Now().UTC()
	*existing = p
	return nil
}

func (m *Memory) QueryProducts(_ context.Context, f ProductFilter) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.queryErr != nil {
		return nil, fmt.Errorf("%w: query products: %w", domain.ErrQueryFailed, m.queryErr)
	}

	var out []domain.Product
	for _, key := range m.order {
		p := m.products[key]
		if f.Type != "" && p.Type != f.Type {
			continue
		}
		if f.CreditScore != nil && p.Eligibility.MinCreditScore != nil && *p.Eligibility.MinCreditScore > *f.CreditScore {
			continue
		}
		if !matchesBudget(*p, f) {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (m *Memory) ProductsByIDs(_ context.Context, ids []string) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.queryErr != nil {
		return nil, fmt.Errorf("%w: query products by id: %w", domain.ErrQueryFailed, m.queryErr)
	}

	byID := make(map[string]domain.Product, len(m.products))
	for _, p := range m.products {
		byID[p.ID] = *p
	}
	var out []domain.Product
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *Memory) ProductByID(_ context.Context, id string) (domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.queryErr != nil {
		return domain.Product{}, fmt.Errorf("%w: find product %s: %w", domain.ErrQueryFailed, id, m.queryErr)
	}
	for _, p := range m.products {
		if p.ID == id {
			return *p, nil
		}
	}
	return domain.Product{}, fmt.Errorf("%w: product %s", domain.ErrNotFound, id)
}

func (m *Memory) AddProductRating(_ context.Context, productID string, rating int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return fmt.Errorf("%w: rate product %s: %w", domain.ErrWriteFailed, productID, m.writeErr)
	}
	for _, p := range m.products {
		if p.ID == productID {
			p.UserRatings = append(p.UserRatings, domain.UserRating{Rating: rating})
			return nil
		}
	}
	return fmt.Errorf("%w: product %s", domain.ErrNotFound, productID)
}

func (m *Memory) SetProductPopularity(_ context.Context, productID string, score float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return fmt.Errorf("%w: set popularity for %s: %w", domain.ErrWriteFailed, productID, m.writeErr)
	}
	for _, p := range m.products {
		if p.ID == productID {
			p.PopularityScore = score
			return nil
		}
	}
	return nil
}

func (m *Memory) InsertAnalyticsRecord(_ context.Context, rec domain.AnalyticsRecord) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return "", fmt.Errorf("%w: insert analytics record: %w", domain.ErrWriteFailed, m.writeErr)
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	m.records = append(m.records, rec)
	return rec.ID, nil
}

func (m *Memory) ViewStats(_ context.Context, productType string) ([]domain.ProductPopularity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.queryErr != nil {
		return nil, fmt.Errorf("%w: aggregate view stats: %w", domain.ErrQueryFailed, m.queryErr)
	}

	type group struct {
		views int
		users map[string]struct{}
	}
	groups := make(map[string]*group)
	var order []string
	for _, rec := range m.records {
		if rec.Action != domain.ActionView {
			continue
		}
		if productType != "" && rec.ProductType != productType {
			continue
		}
		for _, productID := range rec.ProductsViewed {
			g, ok := groups[productID]
			if !ok {
				g = &group{users: make(map[string]struct{})}
				groups[productID] = g
				order = append(order, productID)
			}
			g.views++
			g.users[rec.UserID] = struct{}{}
		}
	}

	stats := make([]domain.ProductPopularity, 0, len(order))
	for _, productID := range order {
		g := groups[productID]
		stats = append(stats, domain.ProductPopularity{
			ProductID:   productID,
			ViewCount:   g.views,
			UniqueUsers: len(g.users),
		})
	}
	return stats, nil
}

func (m *Memory) UpsertUserPreference(_ context.Context, userID string, upd domain.PreferenceUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return fmt.Errorf("%w: upsert preferences for %s: %w", domain.ErrWriteFailed, userID, m.writeErr)
	}

	pref := m.prefs[userID]
	pref.UserID = userID
	if upd.PreferredProductTypes != nil {
		pref.PreferredProductTypes = *upd.PreferredProductTypes
	}
	if upd.BudgetMin != nil {
		pref.BudgetMin = upd.BudgetMin
	}
	if upd.BudgetMax != nil {
		pref.BudgetMax = upd.BudgetMax
	}
	if upd.RiskAppetite != nil {
		pref.RiskAppetite = upd.RiskAppetite
	}
	if upd.FinancialGoals != nil {
		pref.FinancialGoals = *upd.FinancialGoals
	}
	if upd.CreditScore != nil {
		pref.CreditScore = upd.CreditScore
	}
	if upd.Income != nil {
		pref.Income = upd.Income
	}
	pref.LastUpdated = time.Now().UTC()
	m.prefs[userID] = pref
	return nil
}

func (m *Memory) UserPreference(_ context.Context, userID string) (domain.UserPreference, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.queryErr != nil {
		return domain.UserPreference{}, fmt.Errorf("%w: find preferences for %s: %w", domain.ErrQueryFailed, userID, m.queryErr)
	}
	pref, ok := m.prefs[userID]
	if !ok {
		return domain.UserPreference{}, fmt.Errorf("%w: preferences for %s", domain.ErrNotFound, userID)
	}
	return pref, nil
}

// ProductCount reports how many distinct catalog entries exist.
func (m *Memory) ProductCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.products)
}

// Records returns a snapshot of the appended analytics records.
func (m *Memory) Records() []domain.AnalyticsRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.AnalyticsRecord(nil), m.records...)
}

func matchesBudget(p domain.Product, f ProductFilter) bool {
	if f.BudgetMin == nil && f.BudgetMax == nil {
		return true
	}
	switch p.Type {
	case domain.ProductTypePersonalLoan:
		if p.Loan == nil {
			return true
		}
		if f.BudgetMax != nil && p.Loan.MinAmount > *f.BudgetMax {
			return false
		}
		if f.BudgetMin != nil && p.Loan.MaxAmount < *f.BudgetMin {
			return false
		}
	case domain.ProductTypeCreditCard:
		if p.Card == nil {
			return true
		}
		if f.BudgetMax != nil && p.Card.MinCreditLimit > *f.BudgetMax {
			return false
		}
		if f.BudgetMin != nil && p.Card.MaxCreditLimit < *f.BudgetMin {
			return false
		}
	case domain.ProductTypeInsurance:
		if p.Insurance == nil {
			return true
		}
		if f.BudgetMax != nil && p.Insurance.Premium > *f.BudgetMax {
			return false
		}
	}
	return true
}
