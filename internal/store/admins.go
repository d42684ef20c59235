package store

import (
	"context"
	"time"
)

// Admin is a back-office account.
type Admin struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}

// GetAdminByEmail fetches an admin account for login.
func (s *Store) GetAdminByEmail(ctx context.Context, email string) (Admin, error) {
	var a Admin
	err := s.Pool.QueryRow(ctx,
		`SELECT id::text, email, name, password_hash, created_at
		 FROM admins WHERE lower(email) = lower($1)`, email).
		Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		return Admin{}, notFound(err)
	}
	return a, nil
}

// CreateAdmin inserts a back-office account.
func (s *Store) CreateAdmin(ctx context.Context, email, name, passwordHash string) (Admin, error) {
	var a Admin
	err := s.Pool.QueryRow(ctx,
		`INSERT INTO admins (email, name, password_hash) VALUES ($1, $2, $3)
		 RETURNING id::text, email, name, password_hash, created_at`,
		email, name, passwordHash).
		Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, &a.CreatedAt)
	return a, err
}
