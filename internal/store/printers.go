package store

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Printer is a partner shop that fulfils custom print jobs.
type Printer struct {
	ID        string
	Name      string
	Contact   string
	Surcharge int64
	Active    bool
}

func scanPrinter(row pgx.Row) (Printer, error) {
	var p Printer
	if err := row.Scan(&p.ID, &p.Name, &p.Contact, &p.Surcharge, &p.Active); err != nil {
		return Printer{}, notFound(err)
	}
	return p, nil
}

// ListPrinters returns printers, optionally restricted to active ones.
func (s *Store) ListPrinters(ctx context.Context, activeOnly bool) ([]Printer, error) {
	sql := "SELECT id::text, name, contact, surcharge, active FROM printers"
	if activeOnly {
		sql += " WHERE active"
	}
	sql += " ORDER BY name"
	rows, err := s.Pool.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var printers []Printer
	for rows.Next() {
		p, err := scanPrinter(rows)
		if err != nil {
			return nil, err
		}
		printers = append(printers, p)
	}
	return printers, rows.Err()
}

// CreatePrinter inserts a printer.
func (s *Store) CreatePrinter(ctx context.Context, name, contact string, surcharge int64, active bool) (Printer, error) {
	return scanPrinter(s.Pool.QueryRow(ctx,
		`INSERT INTO printers (name, contact, surcharge, active) VALUES ($1, $2, $3, $4)
		 RETURNING id::text, name, contact, surcharge, active`, name, contact, surcharge, active))
}

// UpdatePrinter replaces a printer's fields.
func (s *Store) UpdatePrinter(ctx context.Context, id, name, contact string, surcharge int64, active bool) (Printer, error) {
	return scanPrinter(s.Pool.QueryRow(ctx,
		`UPDATE printers SET name = $2, contact = $3, surcharge = $4, active = $5 WHERE id = $1::uuid
		 RETURNING id::text, name, contact, surcharge, active`, id, name, contact, surcharge, active))
}

// DeletePrinter removes a printer.
func (s *Store) DeletePrinter(ctx context.Context, id string) error {
	tag, err := s.Pool.Exec(ctx, "DELETE FROM printers WHERE id = $1::uuid", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
