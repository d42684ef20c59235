package store

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Category groups products for storefront browsing.
type Category struct {
	ID   string
	Name string
	Slug string
}

func scanCategory(row pgx.Row) (Category, error) {
	var c Category
	if err := row.Scan(&c.ID, &c.Name, &c.Slug); err != nil {
		return Category{}, notFound(err)
	}
	return c, nil
}

// ListCategories returns all categories ordered by name.
func (s *Store) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := s.Pool.Query(ctx, "SELECT id::text, name, slug FROM categories ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var categories []Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// GetCategoryBySlug fetches a category by slug.
func (s *Store) GetCategoryBySlug(ctx context.Context, slug string) (Category, error) {
	return scanCategory(s.Pool.QueryRow(ctx,
		"SELECT id::text, name, slug FROM categories WHERE slug = $1", slug))
}

// CreateCategory inserts a category.
func (s *Store) CreateCategory(ctx context.Context, name, slug string) (Category, error) {
	return scanCategory(s.Pool.QueryRow(ctx,
		"INSERT INTO categories (name, slug) VALUES ($1, $2) RETURNING id::text, name, slug",
		name, slug))
}

// UpdateCategory replaces a category's name and slug.
func (s *Store) UpdateCategory(ctx context.Context, id, name, slug string) (Category, error) {
	return scanCategory(s.Pool.QueryRow(ctx,
		"UPDATE categories SET name = $2, slug = $3 WHERE id = $1::uuid RETURNING id::text, name, slug",
		id, name, slug))
}

// DeleteCategory removes a category. Products keep a null category.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	tag, err := s.Pool.Exec(ctx, "DELETE FROM categories WHERE id = $1::uuid", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
