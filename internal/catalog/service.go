package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/keepsakehq/backend-souvenir/internal/common"
	"github.com/keepsakehq/backend-souvenir/internal/pricing"
	"github.com/keepsakehq/backend-souvenir/internal/store"
)

type queryProvider interface {
	ListProducts(ctx context.Context, f store.ProductFilter) ([]store.Product, error)
	CountProducts(ctx context.Context, f store.ProductFilter) (int64, error)
	GetProductBySlug(ctx context.Context, slug string) (store.Product, error)
	GetProductByID(ctx context.Context, id string) (store.Product, error)
	ListTiersByProduct(ctx context.Context, productID string) ([]store.PriceTier, error)
	ListCategories(ctx context.Context) ([]store.Category, error)
}

// Service orchestrates catalog queries, DTO assembly, and caching.
type Service struct {
	queries      queryProvider
	cache        *Cache
	defaultLimit int
	maxLimit     int
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Queries      queryProvider
	Cache        *Cache
	DefaultLimit int
	MaxLimit     int
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Queries == nil {
		return nil, errors.New("catalog: queries provider is required")
	}
	defaultLimit := cfg.DefaultLimit
	if defaultLimit < 1 {
		defaultLimit = 20
	}
	maxLimit := cfg.MaxLimit
	if maxLimit < 1 {
		maxLimit = 100
	}
	if defaultLimit > maxLimit {
		defaultLimit = maxLimit
	}
	return &Service{
		queries:      cfg.Queries,
		cache:        cfg.Cache,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}, nil
}

// ListParams captures filters for product listing.
type ListParams struct {
	Query    string
	Category string
	Sort     string
	Page     int
	Limit    int
}

// ProductListItem represents an entry in list responses.
type ProductListItem struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Slug           string  `json:"slug"`
	Price          int64   `json:"price"`
	InStock        bool    `json:"inStock"`
	PrintAvailable bool    `json:"printAvailable"`
	Thumbnail      *string `json:"thumbnail,omitempty"`
}

// TierView is the public shape of a price tier.
type TierView struct {
	MinQty int    `json:"minQuantity"`
	Kind   string `json:"kind"`
	Value  int64  `json:"value"`
}

// CategoryView represents the public category payload.
type CategoryView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// ProductDetail aggregates the full detail payload.
type ProductDetail struct {
	ID             string        `json:"id"`
	Title          string        `json:"title"`
	Slug           string        `json:"slug"`
	Description    string        `json:"description"`
	Price          int64         `json:"price"`
	Stock          int           `json:"stock"`
	InStock        bool          `json:"inStock"`
	PrintAvailable bool          `json:"printAvailable"`
	PrintSurcharge int64         `json:"printSurcharge"`
	Thumbnail      *string       `json:"thumbnail,omitempty"`
	Tiers          []TierView    `json:"tiers"`
	Category       *CategoryView `json:"category,omitempty"`
}

// ProductListResult contains list data and pagination metadata.
type ProductListResult struct {
	Items []ProductListItem
	Total int64
	Page  int
	Limit int
}

// ParseListParams normalises raw query values into strongly typed filters.
func (s *Service) ParseListParams(values url.Values) (ListParams, error) {
	params := ListParams{Page: 1, Limit: s.defaultLimit}
	params.Query = strings.TrimSpace(values.Get("q"))
	params.Category = strings.TrimSpace(values.Get("category"))
	params.Sort = normalizeSort(values.Get("sort"))

	if v := strings.TrimSpace(values.Get("page")); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			return params, badRequest("page", "page must be a positive integer")
		}
		params.Page = page
	}
	if v := strings.TrimSpace(values.Get("limit")); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			return params, badRequest("limit", "limit must be a positive integer")
		}
		params.Limit = limit
	}
	if params.Limit > s.maxLimit {
		params.Limit = s.maxLimit
	}
	return params, nil
}

func normalizeSort(raw string) string {
	switch strings.TrimSpace(raw) {
	case "price_asc", "price_desc", "oldest", "newest":
		return strings.TrimSpace(raw)
	default:
		return "newest"
	}
}

func badRequest(field, message string) error {
	return &common.AppError{
		Code:       "VALIDATION_ERROR",
		Message:    message,
		HTTPStatus: 400,
		Details:    map[string]string{"field": field},
	}
}

// ListProducts returns a product page plus pagination metadata, served from
// cache when the filter is cacheable.
func (s *Service) ListProducts(ctx context.Context, params ListParams) (ProductListResult, error) {
	key := listCacheKey(params)
	var cached ProductListResult
	if ok, err := s.cache.GetJSON(ctx, key, &cached); err == nil && ok {
		return cached, nil
	}

	filter := store.ProductFilter{
		Query:        params.Query,
		CategorySlug: params.Category,
		Sort:         params.Sort,
		Limit:        params.Limit,
		Offset:       (params.Page - 1) * params.Limit,
	}
	rows, err := s.queries.ListProducts(ctx, filter)
	if err != nil {
		return ProductListResult{}, fmt.Errorf("list products: %w", err)
	}
	total, err := s.queries.CountProducts(ctx, filter)
	if err != nil {
		return ProductListResult{}, fmt.Errorf("count products: %w", err)
	}

	result := ProductListResult{
		Items: make([]ProductListItem, 0, len(rows)),
		Total: total,
		Page:  params.Page,
		Limit: params.Limit,
	}
	for _, row := range rows {
		result.Items = append(result.Items, ProductListItem{
			ID:             row.ID,
			Title:          row.Title,
			Slug:           row.Slug,
			Price:          row.Price,
			InStock:        row.Stock > 0,
			PrintAvailable: row.PrintAvailable,
			Thumbnail:      row.ImageURL,
		})
	}
	_ = s.cache.SetJSON(ctx, key, result)
	return result, nil
}

func listCacheKey(params ListParams) string {
	if params.Query != "" {
		// search results churn too much to be worth caching
		return ""
	}
	return fmt.Sprintf("souvenir:catalog:list:%s:%s:%d:%d", params.Category, params.Sort, params.Page, params.Limit)
}

// GetProduct returns the detail payload for one product slug.
func (s *Service) GetProduct(ctx context.Context, slug string) (ProductDetail, error) {
	key := "souvenir:catalog:product:" + slug
	var cached ProductDetail
	if ok, err := s.cache.GetJSON(ctx, key, &cached); err == nil && ok {
		return cached, nil
	}

	row, err := s.queries.GetProductBySlug(ctx, slug)
	if err != nil {
		return ProductDetail{}, fmt.Errorf("get product: %w", err)
	}
	tiers, err := s.queries.ListTiersByProduct(ctx, row.ID)
	if err != nil {
		return ProductDetail{}, fmt.Errorf("list tiers: %w", err)
	}

	detail := ProductDetail{
		ID:             row.ID,
		Title:          row.Title,
		Slug:           row.Slug,
		Description:    row.Description,
		Price:          row.Price,
		Stock:          row.Stock,
		InStock:        row.Stock > 0,
		PrintAvailable: row.PrintAvailable,
		PrintSurcharge: row.PrintSurcharge,
		Thumbnail:      row.ImageURL,
		Tiers:          make([]TierView, 0, len(tiers)),
	}
	for _, t := range tiers {
		detail.Tiers = append(detail.Tiers, TierView{MinQty: t.MinQty, Kind: t.Kind, Value: t.Value})
	}
	_ = s.cache.SetJSON(ctx, key, detail)
	return detail, nil
}

// ListCategories returns all categories sorted by name.
func (s *Service) ListCategories(ctx context.Context) ([]CategoryView, error) {
	key := "souvenir:catalog:categories"
	var cached []CategoryView
	if ok, err := s.cache.GetJSON(ctx, key, &cached); err == nil && ok {
		return cached, nil
	}
	rows, err := s.queries.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	result := make([]CategoryView, 0, len(rows))
	for _, row := range rows {
		result = append(result, CategoryView{ID: row.ID, Name: row.Name, Slug: row.Slug})
	}
	_ = s.cache.SetJSON(ctx, key, result)
	return result, nil
}

// QuoteResult is the unit price and line total for a quantity of one product.
type QuoteResult struct {
	ProductID string    `json:"productId"`
	Qty       int       `json:"quantity"`
	BasePrice int64     `json:"basePrice"`
	UnitPrice int64     `json:"unitPrice"`
	LineTotal int64     `json:"lineTotal"`
	Tier      *TierView `json:"appliedTier,omitempty"`
}

// QuoteProduct evaluates the product's price tiers for the given quantity.
func (s *Service) QuoteProduct(ctx context.Context, slug string, qty int) (QuoteResult, error) {
	if qty < 0 {
		return QuoteResult{}, badRequest("quantity", "quantity cannot be negative")
	}
	row, err := s.queries.GetProductBySlug(ctx, slug)
	if err != nil {
		return QuoteResult{}, fmt.Errorf("get product: %w", err)
	}
	rows, err := s.queries.ListTiersByProduct(ctx, row.ID)
	if err != nil {
		return QuoteResult{}, fmt.Errorf("list tiers: %w", err)
	}
	quote := pricing.Evaluate(row.Price, convertTiers(rows), qty)
	result := QuoteResult{
		ProductID: row.ID,
		Qty:       qty,
		BasePrice: row.Price,
		UnitPrice: quote.UnitPrice,
		LineTotal: quote.LineTotal,
	}
	if quote.Tier != nil {
		result.Tier = &TierView{
			MinQty: quote.Tier.MinQty,
			Kind:   quote.Tier.Kind.String(),
			Value:  quote.Tier.Value,
		}
	}
	return result, nil
}

func convertTiers(rows []store.PriceTier) []pricing.Tier {
	tiers := make([]pricing.Tier, 0, len(rows))
	for _, row := range rows {
		kind := pricing.KindPercent
		if row.Kind == "amount" {
			kind = pricing.KindAmount
		}
		tiers = append(tiers, pricing.Tier{MinQty: row.MinQty, Kind: kind, Value: row.Value})
	}
	return tiers
}
