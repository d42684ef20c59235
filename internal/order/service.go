// Package order implements checkout and order lookup. Checkout snapshots the
// cart into immutable order rows: quantities are re-clamped against live
// stock, unit prices are re-evaluated against the current tier table, and the
// shipping fee is resolved at the moment the order is placed.
package order

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/keepsakehq/backend-souvenir/internal/cart"
	"github.com/keepsakehq/backend-souvenir/internal/common"
	"github.com/keepsakehq/backend-souvenir/internal/lock"
	"github.com/keepsakehq/backend-souvenir/internal/obs"
	"github.com/keepsakehq/backend-souvenir/internal/pricing"
	"github.com/keepsakehq/backend-souvenir/internal/shipping"
	"github.com/keepsakehq/backend-souvenir/internal/store"
	"github.com/keepsakehq/backend-souvenir/internal/tasks"
)

// Checkout failure modes surfaced to the client.
var (
	ErrEmptyCart  = &common.AppError{Code: "EMPTY_CART", Message: "cart is empty", HTTPStatus: http.StatusBadRequest}
	ErrOutOfStock = &common.AppError{Code: "OUT_OF_STOCK", Message: "no cart item is currently in stock", HTTPStatus: http.StatusConflict}
)

type orderStore interface {
	GetProductByID(ctx context.Context, id string) (store.Product, error)
	ListTiersByProduct(ctx context.Context, productID string) ([]store.PriceTier, error)
	WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error
	InsertOrder(ctx context.Context, tx pgx.Tx, in store.OrderInput) (string, error)
	InsertOrderItem(ctx context.Context, tx pgx.Tx, orderID string, in store.OrderItemInput) error
	DecrementStock(ctx context.Context, tx pgx.Tx, productID string, qty int) error
	GetOrderByReference(ctx context.Context, reference string) (store.Order, error)
	ListOrderItems(ctx context.Context, orderID string) ([]store.OrderItem, error)
}

// Service places and looks up orders.
type Service struct {
	Carts    *cart.Store
	Orders   orderStore
	Shipping *shipping.Service
	Enqueuer tasks.Enqueuer
	Lock     *lock.Locker
	Log      zerolog.Logger
}

// CheckoutInput carries the customer details required to place an order.
type CheckoutInput struct {
	CartID       string
	CustomerName string
	Email        string
	Phone        string
	Address      string
	LocationID   string
}

// Placed summarises a freshly created order.
type Placed struct {
	OrderID     string        `json:"orderId"`
	Reference   string        `json:"reference"`
	Subtotal    pricing.Money `json:"subtotal"`
	ShippingFee pricing.Money `json:"shippingFee"`
	Total       pricing.Money `json:"total"`
	Status      string        `json:"status"`
}

type pricedLine struct {
	item store.OrderItemInput
}

// Checkout converts a cart into an order. Concurrent submissions of the same
// cart serialize on a Redis lock; the loser finds the cart already emptied.
func (s *Service) Checkout(ctx context.Context, in CheckoutInput) (Placed, error) {
	if s.Lock == nil {
		return s.checkout(ctx, in)
	}
	var placed Placed
	err := s.Lock.WithLock(ctx, "souvenir:lock:checkout:"+in.CartID, 30*time.Second, func(ctx context.Context) error {
		var err error
		placed, err = s.checkout(ctx, in)
		return err
	})
	return placed, err
}

func (s *Service) checkout(ctx context.Context, in CheckoutInput) (Placed, error) {
	agg, err := s.Carts.Load(ctx, in.CartID)
	if err != nil {
		return Placed{}, err
	}
	if len(agg.Items) == 0 {
		countOrder("empty_cart")
		return Placed{}, ErrEmptyCart
	}

	lines, subtotal, err := s.priceLines(ctx, agg.Items)
	if err != nil {
		return Placed{}, err
	}
	if len(lines) == 0 {
		countOrder("out_of_stock")
		return Placed{}, ErrOutOfStock
	}

	var (
		fee        pricing.Money
		locationID *string
	)
	if strings.TrimSpace(in.LocationID) != "" {
		quote, err := s.Shipping.QuoteFee(ctx, in.LocationID, subtotal)
		if err != nil {
			return Placed{}, err
		}
		fee = quote.Fee
		locationID = &quote.LocationID
	}
	summary := pricing.Summary{Subtotal: subtotal, Shipping: fee, Total: subtotal + fee}

	reference := newReference()
	var orderID string
	err = s.Orders.WithTx(ctx, func(tx pgx.Tx) error {
		id, err := s.Orders.InsertOrder(ctx, tx, store.OrderInput{
			Reference:    reference,
			CustomerName: in.CustomerName,
			Email:        in.Email,
			Phone:        in.Phone,
			Address:      in.Address,
			LocationID:   locationID,
			Subtotal:     summary.Subtotal,
			ShippingFee:  summary.Shipping,
			Total:        summary.Total,
		})
		if err != nil {
			return err
		}
		orderID = id
		for _, line := range lines {
			if err := s.Orders.InsertOrderItem(ctx, tx, id, line.item); err != nil {
				return err
			}
			if err := s.Orders.DecrementStock(ctx, tx, line.item.ProductID, line.item.Qty); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		countOrder("error")
		return Placed{}, fmt.Errorf("place order: %w", err)
	}

	if err := s.Carts.Save(ctx, in.CartID, cart.NewAggregate()); err != nil {
		s.Log.Warn().Err(err).Str("cart_id", in.CartID).Msg("clear cart after checkout failed")
	}

	countOrder("placed")
	if obs.OrderValue != nil {
		obs.OrderValue.Observe(float64(summary.Total))
	}
	s.enqueueCreated(orderID, reference, in.Email, summary.Total)

	return Placed{
		OrderID:     orderID,
		Reference:   reference,
		Subtotal:    summary.Subtotal,
		ShippingFee: summary.Shipping,
		Total:       summary.Total,
		Status:      store.OrderStatusPending,
	}, nil
}

// priceLines re-validates each cart line against the live product row and
// re-prices it from the current tier table. Lines whose product vanished or
// sold out are dropped rather than failing the whole checkout.
func (s *Service) priceLines(ctx context.Context, items []cart.Line) ([]pricedLine, pricing.Money, error) {
	var (
		lines    []pricedLine
		subtotal pricing.Money
	)
	for _, item := range items {
		product, err := s.Orders.GetProductByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return nil, 0, fmt.Errorf("load product %s: %w", item.ProductID, err)
		}
		if !product.Active || product.Stock <= 0 {
			continue
		}
		qty := item.Qty
		if qty > product.Stock {
			qty = product.Stock
		}
		tiers, err := s.Orders.ListTiersByProduct(ctx, product.ID)
		if err != nil {
			return nil, 0, fmt.Errorf("load tiers %s: %w", product.ID, err)
		}
		quote := pricing.Evaluate(product.Price, convertTiers(tiers), qty)

		unit := quote.UnitPrice
		var surcharge pricing.Money
		if item.CustomPrint && product.PrintAvailable {
			surcharge = product.PrintSurcharge
			unit += surcharge
		}
		lineTotal := unit * pricing.Money(qty)
		subtotal += lineTotal

		lines = append(lines, pricedLine{item: store.OrderItemInput{
			ProductID:      product.ID,
			Title:          product.Title,
			Qty:            qty,
			UnitPrice:      unit,
			CustomPrint:    item.CustomPrint && product.PrintAvailable,
			PrintText:      item.PrintText,
			PrintSurcharge: surcharge,
			LineTotal:      lineTotal,
		}})
	}
	return lines, subtotal, nil
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

func (s *Service) enqueueCreated(orderID, reference, email string, total pricing.Money) {
	if s.Enqueuer == nil {
		return
	}
	task, err := tasks.NewOrderCreatedTask(tasks.OrderCreatedPayload{
		OrderID:   orderID,
		Reference: reference,
		Email:     email,
		Total:     total,
	})
	if err != nil {
		return
	}
	if _, err := s.Enqueuer.Enqueue(task); err != nil {
		s.Log.Warn().Err(err).Str("order_id", orderID).Msg("enqueue order task failed")
	}
}

func countOrder(result string) {
	if obs.OrdersPlacedTotal != nil {
		obs.OrdersPlacedTotal.WithLabelValues(result).Inc()
	}
}

func newReference() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:6]
	return fmt.Sprintf("KS-%s-%s", time.Now().UTC().Format("20060102"), suffix)
}

// Detail is the public order lookup payload.
type Detail struct {
	Reference   string        `json:"reference"`
	Status      string        `json:"status"`
	Subtotal    pricing.Money `json:"subtotal"`
	ShippingFee pricing.Money `json:"shippingFee"`
	Total       pricing.Money `json:"total"`
	Location    string        `json:"location,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	Items       []DetailItem  `json:"items"`
}

// DetailItem is one frozen order line.
type DetailItem struct {
	Title          string        `json:"title"`
	Qty            int           `json:"qty"`
	UnitPrice      pricing.Money `json:"unitPrice"`
	CustomPrint    bool          `json:"customPrint"`
	PrintText      string        `json:"printText,omitempty"`
	PrintSurcharge pricing.Money `json:"printSurcharge,omitempty"`
	LineTotal      pricing.Money `json:"lineTotal"`
}

// Lookup returns the order with the given public reference.
func (s *Service) Lookup(ctx context.Context, reference string) (Detail, error) {
	order, err := s.Orders.GetOrderByReference(ctx, reference)
	if err != nil {
		return Detail{}, err
	}
	items, err := s.Orders.ListOrderItems(ctx, order.ID)
	if err != nil {
		return Detail{}, fmt.Errorf("load order items: %w", err)
	}
	detail := Detail{
		Reference:   order.Reference,
		Status:      order.Status,
		Subtotal:    order.Subtotal,
		ShippingFee: order.ShippingFee,
		Total:       order.Total,
		Location:    order.LocationName,
		CreatedAt:   order.CreatedAt,
		Items:       make([]DetailItem, 0, len(items)),
	}
	for _, it := range items {
		detail.Items = append(detail.Items, DetailItem{
			Title:          it.Title,
			Qty:            it.Qty,
			UnitPrice:      it.UnitPrice,
			CustomPrint:    it.CustomPrint,
			PrintText:      it.PrintText,
			PrintSurcharge: it.PrintSurcharge,
			LineTotal:      it.LineTotal,
		})
	}
	return detail, nil
}
