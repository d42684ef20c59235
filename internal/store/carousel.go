package store

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Slide is a homepage carousel entry.
type Slide struct {
	ID       string
	Title    string
	Subtitle string
	ImageURL string
	LinkURL  string
	Position int
	Active   bool
}

const slideColumns = "id::text, title, subtitle, image_url, link_url, position, active"

func scanSlide(row pgx.Row) (Slide, error) {
	var sl Slide
	if err := row.Scan(&sl.ID, &sl.Title, &sl.Subtitle, &sl.ImageURL, &sl.LinkURL, &sl.Position, &sl.Active); err != nil {
		return Slide{}, notFound(err)
	}
	return sl, nil
}

// ListSlides returns slides in display order, optionally active only.
func (s *Store) ListSlides(ctx context.Context, activeOnly bool) ([]Slide, error) {
	sql := "SELECT " + slideColumns + " FROM carousel_slides"
	if activeOnly {
		sql += " WHERE active"
	}
	sql += " ORDER BY position, created_at"
	rows, err := s.Pool.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var slides []Slide
	for rows.Next() {
		sl, err := scanSlide(rows)
		if err != nil {
			return nil, err
		}
		slides = append(slides, sl)
	}
	return slides, rows.Err()
}

// SlideInput carries the writable slide fields.
type SlideInput struct {
	Title    string
	Subtitle string
	ImageURL string
	LinkURL  string
	Position int
	Active   bool
}

// CreateSlide inserts a slide.
func (s *Store) CreateSlide(ctx context.Context, in SlideInput) (Slide, error) {
	return scanSlide(s.Pool.QueryRow(ctx,
		`INSERT INTO carousel_slides (title, subtitle, image_url, link_url, position, active)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING `+slideColumns,
		in.Title, in.Subtitle, in.ImageURL, in.LinkURL, in.Position, in.Active))
}

// UpdateSlide replaces a slide's fields.
func (s *Store) UpdateSlide(ctx context.Context, id string, in SlideInput) (Slide, error) {
	return scanSlide(s.Pool.QueryRow(ctx,
		`UPDATE carousel_slides SET title = $2, subtitle = $3, image_url = $4,
			link_url = $5, position = $6, active = $7
		 WHERE id = $1::uuid RETURNING `+slideColumns,
		id, in.Title, in.Subtitle, in.ImageURL, in.LinkURL, in.Position, in.Active))
}

// DeleteSlide removes a slide.
func (s *Store) DeleteSlide(ctx context.Context, id string) error {
	tag, err := s.Pool.Exec(ctx, "DELETE FROM carousel_slides WHERE id = $1::uuid", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
