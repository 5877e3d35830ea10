package domain

import "time"

// Actions recorded by the analytics tracker.
const (
	ActionSearch  = "search"
	ActionView    = "view"
	ActionCompare = "compare"
	ActionApply   = "apply"
	ActionRating  = "rating"
)

// KnownAction reports whether the action name is one the tracker accepts.
func KnownAction(action string) bool {
	switch action {
	case ActionSearch, ActionView, ActionCompare, ActionApply, ActionRating:
		return true
	}
	return false
}

// AnalyticsRecord is one immutable user-interaction event. Records are
// append-only; nothing in the system mutates them after the initial write.
type AnalyticsRecord struct {
	ID              string         `bson:"_id,omitempty" json:"id,omitempty"`
	UserID          string         `bson:"userId" json:"userId"`
	Action          string         `bson:"action" json:"action"`
	ProductType     string         `bson:"productType,omitempty" json:"productType,omitempty"`
	ProductsViewed  []string       `bson:"productsViewed,omitempty" json:"productsViewed,omitempty"`
	SearchFilters   map[string]any `bson:"searchFilters,omitempty" json:"searchFilters,omitempty"`
	Timestamp       time.Time      `bson:"timestamp" json:"timestamp"`
	SessionDuration *int           `bson:"sessionDuration,omitempty" json:"sessionDuration,omitempty"`
	Outcome         *string        `bson:"outcome,omitempty" json:"outcome,omitempty"`
}

// ProductPopularity is the per-product view aggregate derived from the
// analytics log. Score is viewCount + uniqueUsers * uniqueUserWeight.
type ProductPopularity struct {
	ProductID   string  `bson:"productId" json:"productId"`
	ViewCount   int     `bson:"viewCount" json:"viewCount"`
	UniqueUsers int     `bson:"uniqueUsers" json:"uniqueUsers"`
	Score       float64 `bson:"popularityScore" json:"popularityScore"`
}
