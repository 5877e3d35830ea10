package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/priyadarshini/finadvisor/internal/domain"
)

// DefaultLimit caps popularity listings when the caller does not ask for a
// specific size.
const DefaultLimit = 10

// Store is the persistence contract required by the tracker.
type Store interface {
	InsertAnalyticsRecord(ctx context.Context, rec domain.AnalyticsRecord) (string, error)
	ViewStats(ctx context.Context, productType string) ([]domain.ProductPopularity, error)
	UpsertUserPreference(ctx context.Context, userID string, upd domain.PreferenceUpdate) error
	UserPreference(ctx context.Context, userID string) (domain.UserPreference, error)
	AddProductRating(ctx context.Context, productID string, rating int) error
	SetProductPopularity(ctx context.Context, productID string, score float64) error
}

// PopularityWeights configures the popularity formula
// score = viewCount*View + uniqueUsers*UniqueUser. The defaults are fixed
// heuristics with no documented derivation, hence configurable.
type PopularityWeights struct {
	View       float64 `koanf:"view"`
	UniqueUser float64 `koanf:"unique_user"`
}

// DefaultPopularityWeights returns the production formula weights.
func DefaultPopularityWeights() PopularityWeights {
	return PopularityWeights{View: 1, UniqueUser: 2}
}

// ActionData carries the event payload accompanying a tracked action.
type ActionData struct {
	ProductType     string         `json:"productType,omitempty"`
	ProductsViewed  []string       `json:"productsViewed,omitempty"`
	SearchFilters   map[string]any `json:"searchFilters,omitempty"`
	SessionDuration *int           `json:"sessionDuration,omitempty"`
	Outcome         *string        `json:"outcome,omitempty"`
	Rating          *int           `json:"rating,omitempty"`
}

// Tracker records interaction events and derives the popularity signal and
// per-user preference profiles.
type Tracker struct {
	store   Store
	weights PopularityWeights
	nowFn   func() time.Time
	logger  *slog.Logger
}

// NewTracker constructs a Tracker with the given popularity weights.
func NewTracker(store Store, weights PopularityWeights, logger *slog.Logger) *Tracker {
	if weights == (PopularityWeights{}) {
		weights = DefaultPopularityWeights()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		store:   store,
		weights: weights,
		nowFn:   time.Now,
		logger:  logger,
	}
}

// WithClock overrides the time provider (used primarily in tests).
func (t *Tracker) WithClock(nowFn func() time.Time) {
	if nowFn != nil {
		t.nowFn = nowFn
	}
}

// TrackAction appends one immutable analytics record and returns its id.
// A rating action additionally pushes the rating onto each listed product;
// a failure there is logged but does not undo the appended record.
func (t *Tracker) TrackAction(ctx context.Context, userID, action string, data ActionData) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	if !domain.KnownAction(action) {
		return "", fmt.Errorf("%w: unknown action %q", domain.ErrInvalidInput, action)
	}
	if action == domain.ActionRating {
		if data.Rating == nil || *data.Rating < 1 || *data.Rating > 5 {
			return "", fmt.Errorf("%w: rating action requires a rating between 1 and 5", domain.ErrInvalidInput)
		}
		if len(data.ProductsViewed) == 0 {
			return "", fmt.Errorf("%w: rating action requires a product id", domain.ErrInvalidInput)
		}
	}

	record := domain.AnalyticsRecord{
		UserID:          userID,
		Action:          action,
		ProductType:     data.ProductType,
		ProductsViewed:  data.ProductsViewed,
		SearchFilters:   data.SearchFilters,
		Timestamp:       t.nowFn().UTC(),
		SessionDuration: data.SessionDuration,
		Outcome:         data.Outcome,
	}
	id, err := t.store.InsertAnalyticsRecord(ctx, record)
	if err != nil {
		return "", err
	}

	if action == domain.ActionRating {
		for _, productID := range data.ProductsViewed {
			if err := t.store.AddProductRating(ctx, productID, *data.Rating); err != nil {
				t.logger.Warn("rating not applied to product", "productId", productID, "error", err)
			}
		}
	}
	return id, nil
}

// UpdateUserPreferences upserts the profile keyed by userId. Submitted
// fields fully replace their stored values; omitted fields are untouched.
func (t *Tracker) UpdateUserPreferences(ctx context.Context, userID string, upd domain.PreferenceUpdate) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	if upd.Empty() {
		return fmt.Errorf("%w: no preference fields supplied", domain.ErrInvalidInput)
	}
	if upd.RiskAppetite != nil && (*upd.RiskAppetite < 1 || *upd.RiskAppetite > 10) {
		return fmt.Errorf("%w: risk appetite must be between 1 and 10", domain.ErrInvalidInput)
	}
	return t.store.UpsertUserPreference(ctx, userID, upd)
}

// PreferenceFor fetches the stored profile for a user.
func (t *Tracker) PreferenceFor(ctx context.Context, userID string) (domain.UserPreference, error) {
	return t.store.UserPreference(ctx, userID)
}

// PopularProducts aggregates view events of the given type into a ranked
// popularity list, truncated to limit.
func (t *Tracker) PopularProducts(ctx context.Context, productType string, limit int) ([]domain.ProductPopularity, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	stats, err := t.store.ViewStats(ctx, productType)
	if err != nil {
		return nil, err
	}
	for i := range stats {
		stats[i].Score = float64(stats[i].ViewCount)*t.weights.View + float64(stats[i].UniqueUsers)*t.weights.UniqueUser
	}
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Score > stats[j].Score
	})
	if len(stats) > limit {
		stats = stats[:limit]
	}
	return stats, nil
}

// SyncPopularity copies the derived popularity scores onto the catalog
// products so the scoring engine's popularity term reflects recent views.
// Intended to be invoked by an external scheduler.
func (t *Tracker) SyncPopularity(ctx context.Context, productType string) (int, error) {
	stats, err := t.store.ViewStats(ctx, productType)
	if err != nil {
		return 0, err
	}
	updated := 0
	for _, stat := range stats {
		score := float64(stat.ViewCount)*t.weights.View + float64(stat.UniqueUsers)*t.weights.UniqueUser
		if err := t.store.SetProductPopularity(ctx, stat.ProductID, score); err != nil {
			t.logger.Warn("popularity sync skipped product", "productId", stat.ProductID, "error", err)
			continue
		}
		updated++
	}
	return updated, nil
}
