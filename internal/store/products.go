package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

// Product is a catalog row.
type Product struct {
	ID             string
	Title          string
	Slug           string
	Description    string
	CategoryID     *string
	Price          int64
	Stock          int
	PrintAvailable bool
	PrintSurcharge int64
	ImageURL       *string
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PriceTier is a quantity discount threshold belonging to a product. Value is
// basis points for kind "percent" and minor units for kind "amount". Rows
// carry an explicit sort order so duplicate thresholds resolve to the last
// defined tier of an admin replace.
type PriceTier struct {
	ID        string
	ProductID string
	MinQty    int
	Kind      string
	Value     int64
}

const productColumns = `id::text, title, slug, description, category_id::text, price, stock,
	print_available, print_surcharge, image_url, active, created_at, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Description, &p.CategoryID, &p.Price, &p.Stock,
		&p.PrintAvailable, &p.PrintSurcharge, &p.ImageURL, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Product{}, notFound(err)
	}
	return p, nil
}

// ProductFilter restricts and orders product listings.
type ProductFilter struct {
	Query        string
	CategorySlug string
	Sort         string
	Limit        int
	Offset       int
}

func (f ProductFilter) orderBy() string {
	switch f.Sort {
	case "price_asc":
		return "price ASC, created_at DESC"
	case "price_desc":
		return "price DESC, created_at DESC"
	case "oldest":
		return "created_at ASC"
	default:
		return "created_at DESC"
	}
}

func (f ProductFilter) where() (string, []any) {
	clauses := []string{"p.active"}
	args := []any{}
	if q := strings.TrimSpace(f.Query); q != "" {
		args = append(args, "%"+q+"%")
		clauses = append(clauses, fmt.Sprintf("(p.title ILIKE $%d OR p.description ILIKE $%d)", len(args), len(args)))
	}
	if c := strings.TrimSpace(f.CategorySlug); c != "" {
		args = append(args, c)
		clauses = append(clauses, fmt.Sprintf("p.category_id = (SELECT id FROM categories WHERE slug = $%d)", len(args)))
	}
	return strings.Join(clauses, " AND "), args
}

// ListProducts returns active products matching the filter.
func (s *Store) ListProducts(ctx context.Context, f ProductFilter) ([]Product, error) {
	where, args := f.where()
	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit, f.Offset)
	sql := fmt.Sprintf(`SELECT p.id::text, p.title, p.slug, p.description, p.category_id::text, p.price, p.stock,
			p.print_available, p.print_surcharge, p.image_url, p.active, p.created_at, p.updated_at
		FROM products p WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		where, f.orderBy(), len(args)-1, len(args))
	rows, err := s.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// CountProducts returns the number of active products matching the filter.
func (s *Store) CountProducts(ctx context.Context, f ProductFilter) (int64, error) {
	where, args := f.where()
	var total int64
	err := s.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM products p WHERE "+where, args...).Scan(&total)
	return total, err
}

// GetProductBySlug fetches a single active product by slug.
func (s *Store) GetProductBySlug(ctx context.Context, slug string) (Product, error) {
	return scanProduct(s.Pool.QueryRow(ctx,
		"SELECT "+productColumns+" FROM products WHERE slug = $1 AND active", slug))
}

// GetProductByID fetches a single product by id.
func (s *Store) GetProductByID(ctx context.Context, id string) (Product, error) {
	return scanProduct(s.Pool.QueryRow(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = $1::uuid", id))
}

// ListTiersByProduct returns the product's price tiers in definition order.
func (s *Store) ListTiersByProduct(ctx context.Context, productID string) ([]PriceTier, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT id::text, product_id::text, min_qty, kind, value
		 FROM price_tiers WHERE product_id = $1::uuid ORDER BY sort_order, created_at, id`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tiers []PriceTier
	for rows.Next() {
		var t PriceTier
		if err := rows.Scan(&t.ID, &t.ProductID, &t.MinQty, &t.Kind, &t.Value); err != nil {
			return nil, err
		}
		tiers = append(tiers, t)
	}
	return tiers, rows.Err()
}

// ProductInput carries the writable product fields.
type ProductInput struct {
	Title          string
	Slug           string
	Description    string
	CategoryID     *string
	Price          int64
	Stock          int
	PrintAvailable bool
	PrintSurcharge int64
	ImageURL       *string
	Active         bool
}

// CreateProduct inserts a product and returns the stored row.
func (s *Store) CreateProduct(ctx context.Context, in ProductInput) (Product, error) {
	return scanProduct(s.Pool.QueryRow(ctx,
		`INSERT INTO products (title, slug, description, category_id, price, stock,
			print_available, print_surcharge, image_url, active)
		 VALUES ($1, $2, $3, $4::uuid, $5, $6, $7, $8, $9, $10)
		 RETURNING `+productColumns,
		in.Title, in.Slug, in.Description, in.CategoryID, in.Price, in.Stock,
		in.PrintAvailable, in.PrintSurcharge, in.ImageURL, in.Active))
}

// UpdateProduct replaces the writable fields of a product.
func (s *Store) UpdateProduct(ctx context.Context, id string, in ProductInput) (Product, error) {
	return scanProduct(s.Pool.QueryRow(ctx,
		`UPDATE products SET title = $2, slug = $3, description = $4, category_id = $5::uuid,
			price = $6, stock = $7, print_available = $8, print_surcharge = $9,
			image_url = $10, active = $11, updated_at = now()
		 WHERE id = $1::uuid
		 RETURNING `+productColumns,
		id, in.Title, in.Slug, in.Description, in.CategoryID, in.Price, in.Stock,
		in.PrintAvailable, in.PrintSurcharge, in.ImageURL, in.Active))
}

// DeleteProduct removes a product and its tiers.
func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	tag, err := s.Pool.Exec(ctx, "DELETE FROM products WHERE id = $1::uuid", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// TierInput carries the writable tier fields.
type TierInput struct {
	MinQty int
	Kind   string
	Value  int64
}

// ReplaceTiers swaps a product's tier list atomically. The request index
// becomes sort_order, so reads replay the tiers exactly as submitted.
func (s *Store) ReplaceTiers(ctx context.Context, productID string, tiers []TierInput) error {
	return s.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "DELETE FROM price_tiers WHERE product_id = $1::uuid", productID); err != nil {
			return err
		}
		for i, t := range tiers {
			if _, err := tx.Exec(ctx,
				"INSERT INTO price_tiers (product_id, min_qty, kind, value, sort_order) VALUES ($1::uuid, $2, $3, $4, $5)",
				productID, t.MinQty, t.Kind, t.Value, i); err != nil {
				return err
			}
		}
		return nil
	})
}

// DecrementStock reduces a product's stock inside a checkout transaction,
// flooring at zero.
func (s *Store) DecrementStock(ctx context.Context, tx pgx.Tx, productID string, qty int) error {
	_, err := tx.Exec(ctx,
		"UPDATE products SET stock = GREATEST(stock - $2, 0), updated_at = now() WHERE id = $1::uuid",
		productID, qty)
	return err
}
