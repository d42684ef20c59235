package store

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// State is a top-level delivery region.
type State struct {
	ID   string
	Name string
}

// Location is a deliverable area within a state. A null Fee means delivery
// there is free regardless of order size.
type Location struct {
	ID      string
	Name    string
	StateID string
	Fee     *int64
}

func scanLocation(row pgx.Row) (Location, error) {
	var l Location
	if err := row.Scan(&l.ID, &l.Name, &l.StateID, &l.Fee); err != nil {
		return Location{}, notFound(err)
	}
	return l, nil
}

// ListStates returns all states ordered by name.
func (s *Store) ListStates(ctx context.Context) ([]State, error) {
	rows, err := s.Pool.Query(ctx, "SELECT id::text, name FROM states ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var states []State
	for rows.Next() {
		var st State
		if err := rows.Scan(&st.ID, &st.Name); err != nil {
			return nil, err
		}
		states = append(states, st)
	}
	return states, rows.Err()
}

// CreateState inserts a state.
func (s *Store) CreateState(ctx context.Context, name string) (State, error) {
	var st State
	err := s.Pool.QueryRow(ctx,
		"INSERT INTO states (name) VALUES ($1) RETURNING id::text, name", name).
		Scan(&st.ID, &st.Name)
	return st, err
}

// DeleteState removes a state and its locations.
func (s *Store) DeleteState(ctx context.Context, id string) error {
	tag, err := s.Pool.Exec(ctx, "DELETE FROM states WHERE id = $1::uuid", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListLocationsByState returns the locations of one state ordered by name.
func (s *Store) ListLocationsByState(ctx context.Context, stateID string) ([]Location, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT id::text, name, state_id::text, fee FROM locations
		 WHERE state_id = $1::uuid ORDER BY name`, stateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var locations []Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		locations = append(locations, l)
	}
	return locations, rows.Err()
}

// GetLocation fetches a single location by id.
func (s *Store) GetLocation(ctx context.Context, id string) (Location, error) {
	return scanLocation(s.Pool.QueryRow(ctx,
		"SELECT id::text, name, state_id::text, fee FROM locations WHERE id = $1::uuid", id))
}

// CreateLocation inserts a location under a state.
func (s *Store) CreateLocation(ctx context.Context, stateID, name string, fee *int64) (Location, error) {
	return scanLocation(s.Pool.QueryRow(ctx,
		`INSERT INTO locations (state_id, name, fee) VALUES ($1::uuid, $2, $3)
		 RETURNING id::text, name, state_id::text, fee`, stateID, name, fee))
}

// UpdateLocation replaces a location's name and fee.
func (s *Store) UpdateLocation(ctx context.Context, id, name string, fee *int64) (Location, error) {
	return scanLocation(s.Pool.QueryRow(ctx,
		`UPDATE locations SET name = $2, fee = $3 WHERE id = $1::uuid
		 RETURNING id::text, name, state_id::text, fee`, id, name, fee))
}

// DeleteLocation removes a location.
func (s *Store) DeleteLocation(ctx context.Context, id string) error {
	tag, err := s.Pool.Exec(ctx, "DELETE FROM locations WHERE id = $1::uuid", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
