package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/priyadarshini/finadvisor/internal/domain"
	"github.com/priyadarshini/finadvisor/internal/store"
)

// ProductFilter narrows catalog queries. Nil members are not applied.
// Budget bounds are interpreted per product type: loan amount range for
// personal loans, credit limit range for cards, premium for insurance.
type ProductFilter struct {
	Type        string
	CreditScore *int
	BudgetMin   *float64
	BudgetMax   *float64
}

// Repository implements the persistence operations over MongoDB.
type Repository struct {
	store *store.Store
}

// New instantiates a Repository backed by the supplied store.
func New(s *store.Store) *Repository {
	return &Repository{store: s}
}

// UpsertProduct writes the catalog fields of one product keyed by
// (name, provider, type). Analytics-owned fields (popularityScore,
// userRatings) are only seeded on insert and never overwritten here.
func (r *Repository) UpsertProduct(ctx context.Context, p domain.Product) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	filter := bson.M{"name": p.Name, "provider": p.Provider, "type": p.Type}
	set := bson.M{
		"name":                p.Name,
		"provider":            p.Provider,
		"type":                p.Type,
		"features":            p.Features,
		"eligibilityCriteria": p.Eligibility,
		"updatedAt":           time.Now().UTC(),
	}
	unset := bson.M{}
	setOptional(set, unset, "interestRate", p.InterestRate)
	setOptional(set, unset, "processingFees", p.ProcessingFees)
	setOptional(set, unset, "annualFee", p.AnnualFee)
	setOptional(set, unset, "loanTerms", p.Loan)
	setOptional(set, unset, "cardTerms", p.Card)
	setOptional(set, unset, "insuranceCoverage", p.Insurance)

	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"_id": primitive.NewObjectID().Hex(), "popularityScore": 0.0},
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	_, err := r.store.Products().UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("%w: product %s/%s: %w", domain.ErrUpsertFailed, p.Provider, p.Name, err)
	}
	return nil
}

// QueryProducts returns catalog entries matching the filter.
func (r *Repository) QueryProducts(ctx context.Context, f ProductFilter) ([]domain.Product, error) {
	filter := bson.M{}
	if f.Type != "" {
		filter["type"] = f.Type
	}

	var conds []bson.M
	if f.CreditScore != nil {
		conds = append(conds, bson.M{"$or": []bson.M{
			{"eligibilityCriteria.minCreditScore": bson.M{"$exists": false}},
			{"eligibilityCriteria.minCreditScore": bson.M{"$lte": *f.CreditScore}},
		}})
	}
	conds = append(conds, budgetConditions(f)...)
	if len(conds) > 0 {
		filter["$and"] = conds
	}

	cur, err := r.store.Products().Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: query products: %w", domain.ErrQueryFailed, err)
	}
	var products []domain.Product
	if err := cur.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("%w: decode products: %w", domain.ErrQueryFailed, err)
	}
	return products, nil
}

// ProductsByIDs fetches the named products, returned in the order the ids
// were requested. Unknown ids are omitted.
func (r *Repository) ProductsByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := r.store.Products().Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("%w: query products by id: %w", domain.ErrQueryFailed, err)
	}
	var found []domain.Product
	if err := cur.All(ctx, &found); err != nil {
		return nil, fmt.Errorf("%w: decode products: %w", domain.ErrQueryFailed, err)
	}

	byID := make(map[string]domain.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	ordered := make([]domain.Product, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered, nil
}

// ProductByID fetches a single product, or domain.ErrNotFound.
func (r *Repository) ProductByID(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	err := r.store.Products().FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Product{}, fmt.Errorf("%w: product %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("%w: find product %s: %w", domain.ErrQueryFailed, id, err)
	}
	return p, nil
}

// AddProductRating appends one 1-5 rating to the product's rating list.
func (r *Repository) AddProductRating(ctx context.Context, productID string, rating int) error {
	res, err := r.store.Products().UpdateOne(ctx,
		bson.M{"_id": productID},
		bson.M{"$push": bson.M{"userRatings": domain.UserRating{Rating: rating}}},
	)
	if err != nil {
		return fmt.Errorf("%w: rate product %s: %w", domain.ErrWriteFailed, productID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: product %s", domain.ErrNotFound, productID)
	}
	return nil
}

// SetProductPopularity writes the derived popularity score onto a product.
func (r *Repository) SetProductPopularity(ctx context.Context, productID string, score float64) error {
	_, err := r.store.Products().UpdateOne(ctx,
		bson.M{"_id": productID},
		bson.M{"$set": bson.M{"popularityScore": score}},
	)
	if err != nil {
		return fmt.Errorf("%w: set popularity for %s: %w", domain.ErrWriteFailed, productID, err)
	}
	return nil
}

// InsertAnalyticsRecord appends one immutable event and returns its id.
func (r *Repository) InsertAnalyticsRecord(ctx context.Context, rec domain.AnalyticsRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = primitive.NewObjectID().Hex()
	}
	if _, err := r.store.AnalyticsRecords().InsertOne(ctx, rec); err != nil {
		return "", fmt.Errorf("%w: insert analytics record: %w", domain.ErrWriteFailed, err)
	}
	return rec.ID, nil
}

// ViewStats groups view events of the given product type by viewed product,
// counting total views and distinct users per product.
func (r *Repository) ViewStats(ctx context.Context, productType string) ([]domain.ProductPopularity, error) {
	match := bson.M{"action": domain.ActionView}
	if productType != "" {
		match["productType"] = productType
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$unwind", Value: "$productsViewed"}},
		{{Key: "$group", Value: bson.M{
			"_id":       "$productsViewed",
			"viewCount": bson.M{"$sum": 1},
			"users":     bson.M{"$addToSet": "$userId"},
		}}},
		{{Key: "$project", Value: bson.M{
			"viewCount":   1,
			"uniqueUsers": bson.M{"$size": "$users"},
		}}},
	}

	cur, err := r.store.AnalyticsRecords().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("%w: aggregate view stats: %w", domain.ErrQueryFailed, err)
	}
	var rows []struct {
		ProductID   string `bson:"_id"`
		ViewCount   int    `bson:"viewCount"`
		UniqueUsers int    `bson:"uniqueUsers"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("%w: decode view stats: %w", domain.ErrQueryFailed, err)
	}

	stats := make([]domain.ProductPopularity, 0, len(rows))
	for _, row := range rows {
		stats = append(stats, domain.ProductPopularity{
			ProductID:   row.ProductID,
			ViewCount:   row.ViewCount,
			UniqueUsers: row.UniqueUsers,
		})
	}
	return stats, nil
}

// UpsertUserPreference applies a field-level set of the submitted preference
// fields, keyed by userId. Last write wins per field; omitted fields keep
// their stored values.
func (r *Repository) UpsertUserPreference(ctx context.Context, userID string, upd domain.PreferenceUpdate) error {
	set := bson.M{"lastUpdated": time.Now().UTC()}
	if upd.PreferredProductTypes != nil {
		set["preferredProductTypes"] = *upd.PreferredProductTypes
	}
	if upd.BudgetMin != nil {
		set["budgetMin"] = *upd.BudgetMin
	}
	if upd.BudgetMax != nil {
		set["budgetMax"] = *upd.BudgetMax
	}
	if upd.RiskAppetite != nil {
		set["riskAppetite"] = *upd.RiskAppetite
	}
	if upd.FinancialGoals != nil {
		set["financialGoals"] = *upd.FinancialGoals
	}
	if upd.CreditScore != nil {
		set["creditScore"] = *upd.CreditScore
	}
	if upd.Income != nil {
		set["income"] = *upd.Income
	}

	_, err := r.store.UserPreferences().UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{"$set": set, "$setOnInsert": bson.M{"userId": userID}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("%w: upsert preferences for %s: %w", domain.ErrWriteFailed, userID, err)
	}
	return nil
}

// UserPreference fetches the stored profile for a user, or domain.ErrNotFound.
func (r *Repository) UserPreference(ctx context.Context, userID string) (domain.UserPreference, error) {
	var pref domain.UserPreference
	err := r.store.UserPreferences().FindOne(ctx, bson.M{"userId": userID}).Decode(&pref)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.UserPreference{}, fmt.Errorf("%w: preferences for %s", domain.ErrNotFound, userID)
	}
	if err != nil {
		return domain.UserPreference{}, fmt.Errorf("%w: find preferences for %s: %w", domain.ErrQueryFailed, userID, err)
	}
	return pref, nil
}

func setOptional[T any](set, unset bson.M, key string, value *T) {
	if value != nil {
		set[key] = *value
		return
	}
	unset[key] = ""
}

func budgetConditions(f ProductFilter) []bson.M {
	if f.BudgetMin == nil && f.BudgetMax == nil {
		return nil
	}

	var conds []bson.M
	switch f.Type {
	case domain.ProductTypePersonalLoan:
		conds = rangeOverlap("loanTerms", "minAmount", "maxAmount", f.BudgetMin, f.BudgetMax)
	case domain.ProductTypeCreditCard:
		conds = rangeOverlap("cardTerms", "minCreditLimit", "maxCreditLimit", f.BudgetMin, f.BudgetMax)
	case domain.ProductTypeInsurance:
		if f.BudgetMax != nil {
			conds = append(conds, bson.M{"$or": []bson.M{
				{"insuranceCoverage": bson.M{"$exists": false}},
				{"insuranceCoverage.premium": bson.M{"$lte": *f.BudgetMax}},
			}})
		}
	}
	return conds
}

// rangeOverlap builds conditions requiring the product's [min,max] range to
// overlap the user's budget range. Products without the terms struct pass.
func rangeOverlap(terms, minField, maxField string, budgetMin, budgetMax *float64) []bson.M {
	var conds []bson.M
	if budgetMax != nil {
		conds = append(conds, bson.M{"$or": []bson.M{
			{terms: bson.M{"$exists": false}},
			{terms + "." + minField: bson.M{"$lte": *budgetMax}},
		}})
	}
	if budgetMin != nil {
		conds = append(conds, bson.M{"$or": []bson.M{
			{terms: bson.M{"$exists": false}},
			{terms + "." + maxField: bson.M{"$gte": *budgetMin}},
		}})
	}
	return conds
}
