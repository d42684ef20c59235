package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

// FAQ is a published question and answer pair.
type FAQ struct {
	ID       string
	Question string
	Answer   string
	Position int
}

// Contact message statuses.
const (
	ContactStatusNew      = "new"
	ContactStatusResolved = "resolved"
)

// ContactMessage is an inbound customer enquiry.
type ContactMessage struct {
	ID        string
	Name      string
	Email     string
	Subject   string
	Message   string
	Status    string
	CreatedAt time.Time
}

func scanFAQ(row pgx.Row) (FAQ, error) {
	var f FAQ
	if err := row.Scan(&f.ID, &f.Question, &f.Answer, &f.Position); err != nil {
		return FAQ{}, notFound(err)
	}
	return f, nil
}

// ListFAQs returns FAQs in display order.
func (s *Store) ListFAQs(ctx context.Context) ([]FAQ, error) {
	rows, err := s.Pool.Query(ctx,
		"SELECT id::text, question, answer, position FROM faqs ORDER BY position, created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var faqs []FAQ
	for rows.Next() {
		f, err := scanFAQ(rows)
		if err != nil {
			return nil, err
		}
		faqs = append(faqs, f)
	}
	return faqs, rows.Err()
}

// CreateFAQ inserts an FAQ.
func (s *Store) CreateFAQ(ctx context.Context, question, answer string, position int) (FAQ, error) {
	return scanFAQ(s.Pool.QueryRow(ctx,
		`INSERT INTO faqs (question, answer, position) VALUES ($1, $2, $3)
		 RETURNING id::text, question, answer, position`, question, answer, position))
}

// UpdateFAQ replaces an FAQ's fields.
func (s *Store) UpdateFAQ(ctx context.Context, id, question, answer string, position int) (FAQ, error) {
	return scanFAQ(s.Pool.QueryRow(ctx,
		`UPDATE faqs SET question = $2, answer = $3, position = $4 WHERE id = $1::uuid
		 RETURNING id::text, question, answer, position`, id, question, answer, position))
}

// DeleteFAQ removes an FAQ.
func (s *Store) DeleteFAQ(ctx context.Context, id string) error {
	tag, err := s.Pool.Exec(ctx, "DELETE FROM faqs WHERE id = $1::uuid", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const contactColumns = "id::text, name, email, subject, message, status, created_at"

func scanContact(row pgx.Row) (ContactMessage, error) {
	var m ContactMessage
	if err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &m.Status, &m.CreatedAt); err != nil {
		return ContactMessage{}, notFound(err)
	}
	return m, nil
}

// InsertContactMessage stores an inbound enquiry with status "new".
func (s *Store) InsertContactMessage(ctx context.Context, name, email, subject, message string) (ContactMessage, error) {
	return scanContact(s.Pool.QueryRow(ctx,
		`INSERT INTO contact_messages (name, email, subject, message, status)
		 VALUES ($1, $2, $3, $4, $5) RETURNING `+contactColumns,
		name, email, subject, message, ContactStatusNew))
}

// ListContactMessages returns enquiries newest first.
func (s *Store) ListContactMessages(ctx context.Context, limit, offset int) ([]ContactMessage, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.Pool.Query(ctx,
		"SELECT "+contactColumns+" FROM contact_messages ORDER BY created_at DESC LIMIT $1 OFFSET $2",
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var messages []ContactMessage
	for rows.Next() {
		m, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// ResolveContactMessage marks an enquiry handled.
func (s *Store) ResolveContactMessage(ctx context.Context, id string) (ContactMessage, error) {
	return scanContact(s.Pool.QueryRow(ctx,
		`UPDATE contact_messages SET status = $2 WHERE id = $1::uuid RETURNING `+contactColumns,
		id, ContactStatusResolved))
}
