package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// Order statuses follow the fulfilment flow.
const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Order is a placed order header. Monetary fields are minor units.
type Order struct {
	ID           string
	Reference    string
	CustomerName string
	Email        string
	Phone        string
	Address      string
	LocationID   *string
	LocationName string
	Status       string
	Subtotal     int64
	ShippingFee  int64
	Total        int64
	CreatedAt    time.Time
}

// OrderItem is a priced order line frozen at checkout time.
type OrderItem struct {
	ID             string
	OrderID        string
	ProductID      string
	Title          string
	Qty            int
	UnitPrice      int64
	CustomPrint    bool
	PrintText      string
	PrintSurcharge int64
	LineTotal      int64
}

const orderColumns = `o.id::text, o.reference, o.customer_name, o.email, o.phone, o.address,
	o.location_id::text, COALESCE(l.name, ''), o.status, o.subtotal, o.shipping_fee, o.total, o.created_at`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.Reference, &o.CustomerName, &o.Email, &o.Phone, &o.Address,
		&o.LocationID, &o.LocationName, &o.Status, &o.Subtotal, &o.ShippingFee, &o.Total, &o.CreatedAt)
	if err != nil {
		return Order{}, notFound(err)
	}
	return o, nil
}

// OrderInput carries the fields persisted when an order is placed.
type OrderInput struct {
	Reference    string
	CustomerName string
	Email        string
	Phone        string
	Address      string
	LocationID   *string
	Subtotal     int64
	ShippingFee  int64
	Total        int64
}

// InsertOrder writes an order header inside a checkout transaction.
func (s *Store) InsertOrder(ctx context.Context, tx pgx.Tx, in OrderInput) (string, error) {
	var id string
	err := tx.QueryRow(ctx,
		`INSERT INTO orders (reference, customer_name, email, phone, address, location_id,
			status, subtotal, shipping_fee, total)
		 VALUES ($1, $2, $3, $4, $5, $6::uuid, $7, $8, $9, $10)
		 RETURNING id::text`,
		in.Reference, in.CustomerName, in.Email, in.Phone, in.Address, in.LocationID,
		OrderStatusPending, in.Subtotal, in.ShippingFee, in.Total).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert order: %w", err)
	}
	return id, nil
}

// OrderItemInput carries one checkout line.
type OrderItemInput struct {
	ProductID      string
	Title          string
	Qty            int
	UnitPrice      int64
	CustomPrint    bool
	PrintText      string
	PrintSurcharge int64
	LineTotal      int64
}

// InsertOrderItem writes one line of an order inside the checkout transaction.
func (s *Store) InsertOrderItem(ctx context.Context, tx pgx.Tx, orderID string, in OrderItemInput) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO order_items (order_id, product_id, title, qty, unit_price,
			custom_print, print_text, print_surcharge, line_total)
		 VALUES ($1::uuid, $2::uuid, $3, $4, $5, $6, $7, $8, $9)`,
		orderID, in.ProductID, in.Title, in.Qty, in.UnitPrice,
		in.CustomPrint, in.PrintText, in.PrintSurcharge, in.LineTotal)
	if err != nil {
		return fmt.Errorf("insert order item: %w", err)
	}
	return nil
}

// GetOrderByReference fetches an order header by its public reference.
func (s *Store) GetOrderByReference(ctx context.Context, reference string) (Order, error) {
	return scanOrder(s.Pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders o
		 LEFT JOIN locations l ON l.id = o.location_id
		 WHERE o.reference = $1`, reference))
}

// GetOrderByID fetches an order header by id.
func (s *Store) GetOrderByID(ctx context.Context, id string) (Order, error) {
	return scanOrder(s.Pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders o
		 LEFT JOIN locations l ON l.id = o.location_id
		 WHERE o.id = $1::uuid`, id))
}

// ListOrderItems returns the lines of one order.
func (s *Store) ListOrderItems(ctx context.Context, orderID string) ([]OrderItem, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT id::text, order_id::text, product_id::text, title, qty, unit_price,
			custom_print, print_text, print_surcharge, line_total
		 FROM order_items WHERE order_id = $1::uuid ORDER BY created_at, id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Title, &it.Qty, &it.UnitPrice,
			&it.CustomPrint, &it.PrintText, &it.PrintSurcharge, &it.LineTotal); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// OrderFilter restricts admin order listings.
type OrderFilter struct {
	Status string
	Limit  int
	Offset int
}

// ListOrders returns orders newest first, optionally filtered by status.
func (s *Store) ListOrders(ctx context.Context, f OrderFilter) ([]Order, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	sql := `SELECT ` + orderColumns + ` FROM orders o
		LEFT JOIN locations l ON l.id = o.location_id`
	args := []any{}
	if f.Status != "" {
		args = append(args, f.Status)
		sql += fmt.Sprintf(" WHERE o.status = $%d", len(args))
	}
	args = append(args, limit, f.Offset)
	sql += fmt.Sprintf(" ORDER BY o.created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	rows, err := s.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// CountOrders returns the number of orders matching the filter.
func (s *Store) CountOrders(ctx context.Context, f OrderFilter) (int64, error) {
	sql := "SELECT COUNT(*) FROM orders o"
	args := []any{}
	if f.Status != "" {
		args = append(args, f.Status)
		sql += " WHERE o.status = $1"
	}
	var total int64
	err := s.Pool.QueryRow(ctx, sql, args...).Scan(&total)
	return total, err
}

// UpdateOrderStatus transitions an order to the given status.
func (s *Store) UpdateOrderStatus(ctx context.Context, id, status string) (Order, error) {
	var orderID string
	err := s.Pool.QueryRow(ctx,
		"UPDATE orders SET status = $2, updated_at = now() WHERE id = $1::uuid RETURNING id::text",
		id, status).Scan(&orderID)
	if err != nil {
		return Order{}, notFound(err)
	}
	return s.GetOrderByID(ctx, orderID)
}
