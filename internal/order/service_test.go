package order_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/keepsakehq/backend-souvenir/internal/cart"
	"github.com/keepsakehq/backend-souvenir/internal/lock"
	"github.com/keepsakehq/backend-souvenir/internal/order"
	"github.com/keepsakehq/backend-souvenir/internal/pricing"
	"github.com/keepsakehq/backend-souvenir/internal/shipping"
	"github.com/keepsakehq/backend-souvenir/internal/store"
	"github.com/keepsakehq/backend-souvenir/internal/tasks"
)

type fakeOrderStore struct {
	products map[string]store.Product
	tiers    map[string][]store.PriceTier

	orders     map[string]store.Order
	itemsByRef map[string][]store.OrderItem
	lastOrder  store.OrderInput
	lastItems  []store.OrderItemInput
	decremented map[string]int
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{
		products:   map[string]store.Product{},
		tiers:      map[string][]store.PriceTier{},
		orders:     map[string]store.Order{},
		itemsByRef: map[string][]store.OrderItem{},
		decremented: map[string]int{},
	}
}

func (f *fakeOrderStore) GetProductByID(_ context.Context, id string) (store.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return store.Product{}, store.ErrNotFound
	}
	return p, nil
}

func (f *fakeOrderStore) ListTiersByProduct(_ context.Context, id string) ([]store.PriceTier, error) {
	return f.tiers[id], nil
}

func (f *fakeOrderStore) WithTx(_ context.Context, fn func(tx pgx.Tx) error) error {
	return fn(nil)
}

func (f *fakeOrderStore) InsertOrder(_ context.Context, _ pgx.Tx, in store.OrderInput) (string, error) {
	f.lastOrder = in
	id := "order-" + in.Reference
	f.orders[id] = store.Order{
		ID:          id,
		Reference:   in.Reference,
		Status:      store.OrderStatusPending,
		Subtotal:    in.Subtotal,
		ShippingFee: in.ShippingFee,
		Total:       in.Total,
		CreatedAt:   time.Now(),
	}
	return id, nil
}

func (f *fakeOrderStore) InsertOrderItem(_ context.Context, _ pgx.Tx, orderID string, in store.OrderItemInput) error {
	f.lastItems = append(f.lastItems, in)
	f.itemsByRef[orderID] = append(f.itemsByRef[orderID], store.OrderItem{
		OrderID:   orderID,
		ProductID: in.ProductID,
		Title:     in.Title,
		Qty:       in.Qty,
		UnitPrice: in.UnitPrice,
		LineTotal: in.LineTotal,
		PrintText: in.PrintText,
	})
	return nil
}

func (f *fakeOrderStore) DecrementStock(_ context.Context, _ pgx.Tx, productID string, qty int) error {
	f.decremented[productID] += qty
	return nil
}

func (f *fakeOrderStore) GetOrderByReference(_ context.Context, reference string) (store.Order, error) {
	for _, o := range f.orders {
		if o.Reference == reference {
			return o, nil
		}
	}
	return store.Order{}, store.ErrNotFound
}

func (f *fakeOrderStore) ListOrderItems(_ context.Context, orderID string) ([]store.OrderItem, error) {
	return f.itemsByRef[orderID], nil
}

type fakeDirectory struct {
	locations map[string]shipping.Location
}

func (f *fakeDirectory) ListStates(context.Context) ([]shipping.State, error) { return nil, nil }

func (f *fakeDirectory) ListLocationsByState(context.Context, string) ([]shipping.Location, error) {
	return nil, nil
}

func (f *fakeDirectory) GetLocation(_ context.Context, id string) (shipping.Location, error) {
	loc, ok := f.locations[id]
	if !ok {
		return shipping.Location{}, shipping.ErrNotFound
	}
	return loc, nil
}

type fixedThreshold struct{ v pricing.Money }

func (f fixedThreshold) FreeShippingThreshold(context.Context) (pricing.Money, error) {
	return f.v, nil
}

type fakeEnqueuer struct {
	enqueued []*asynq.Task
}

func (f *fakeEnqueuer) Enqueue(task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	f.enqueued = append(f.enqueued, task)
	return &asynq.TaskInfo{}, nil
}

const locLagos = "3e6f5a52-14a4-4f0c-8d6f-111111111111"

func newCheckoutFixture(t *testing.T, threshold pricing.Money) (*order.Service, *fakeOrderStore, *cart.Store, *fakeEnqueuer) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	carts := &cart.Store{R: client}

	fs := newFakeOrderStore()
	fs.products["p1"] = store.Product{ID: "p1", Title: "City Mug", Price: 10000, Stock: 8, PrintAvailable: true, PrintSurcharge: 500, Active: true}
	fs.products["p2"] = store.Product{ID: "p2", Title: "Keychain", Price: 2500, Stock: 0, Active: true}
	fs.tiers["p1"] = []store.PriceTier{{ProductID: "p1", MinQty: 5, Kind: "percent", Value: 1000}}

	fee := pricing.Money(2000)
	dir := &fakeDirectory{locations: map[string]shipping.Location{
		locLagos: {ID: locLagos, Name: "Yaba", Fee: &fee},
	}}

	enq := &fakeEnqueuer{}
	svc := &order.Service{
		Carts:    carts,
		Orders:   fs,
		Shipping: &shipping.Service{Dir: dir, Threshold: fixedThreshold{threshold}},
		Enqueuer: enq,
		Lock:     &lock.Locker{R: client},
		Log:      zerolog.Nop(),
	}
	return svc, fs, carts, enq
}

func seedCart(t *testing.T, carts *cart.Store, lines ...cart.NewLine) string {
	t.Helper()
	ctx := context.Background()
	id, err := carts.Create(ctx)
	require.NoError(t, err)
	_, err = carts.Mutate(ctx, id, func(a *cart.Aggregate) {
		for _, l := range lines {
			a.Add(l)
		}
	})
	require.NoError(t, err)
	return id
}

func TestCheckoutRepricesAndClampsStock(t *testing.T) {
	svc, fs, carts, enq := newCheckoutFixture(t, 1_000_000)
	ctx := context.Background()

	// 10 requested but only 8 in stock; tier at qty>=5 drops the unit to 9000
	cartID := seedCart(t, carts, cart.NewLine{ProductID: "p1", Title: "City Mug", UnitPrice: 10000, Qty: 10, MaxQty: 20})

	placed, err := svc.Checkout(ctx, order.CheckoutInput{
		CartID:       cartID,
		CustomerName: "Ada",
		Email:        "ada@example.com",
		Phone:        "08012345678",
		Address:      "1 Marina Road, Lagos",
		LocationID:   locLagos,
	})
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(placed.Reference, "KS-"))
	require.Len(t, fs.lastItems, 1)
	require.Equal(t, 8, fs.lastItems[0].Qty)
	require.EqualValues(t, 9000, fs.lastItems[0].UnitPrice)
	require.EqualValues(t, 72000, placed.Subtotal)
	require.EqualValues(t, 2000, placed.ShippingFee)
	require.EqualValues(t, 74000, placed.Total)
	require.Equal(t, 8, fs.decremented["p1"])

	// cart is cleared after a successful checkout
	agg, err := carts.Load(ctx, cartID)
	require.NoError(t, err)
	require.Empty(t, agg.Items)

	require.Len(t, enq.enqueued, 1)
	require.Equal(t, tasks.TypeOrderCreated, enq.enqueued[0].Type())
}

func TestCheckoutFreeShippingAboveThreshold(t *testing.T) {
	svc, _, carts, _ := newCheckoutFixture(t, 50000)
	ctx := context.Background()

	cartID := seedCart(t, carts, cart.NewLine{ProductID: "p1", Title: "City Mug", UnitPrice: 10000, Qty: 8, MaxQty: 20})

	placed, err := svc.Checkout(ctx, order.CheckoutInput{
		CartID:       cartID,
		CustomerName: "Ada",
		Email:        "ada@example.com",
		Phone:        "08012345678",
		Address:      "1 Marina Road, Lagos",
		LocationID:   locLagos,
	})
	require.NoError(t, err)
	require.EqualValues(t, 72000, placed.Subtotal)
	require.EqualValues(t, 0, placed.ShippingFee)
	require.EqualValues(t, 72000, placed.Total)
}

func TestCheckoutWithoutLocationHasNoFee(t *testing.T) {
	svc, _, carts, _ := newCheckoutFixture(t, 1_000_000)
	ctx := context.Background()

	cartID := seedCart(t, carts, cart.NewLine{ProductID: "p1", Title: "City Mug", UnitPrice: 10000, Qty: 2, MaxQty: 20})

	placed, err := svc.Checkout(ctx, order.CheckoutInput{
		CartID:       cartID,
		CustomerName: "Ada",
		Email:        "ada@example.com",
		Phone:        "08012345678",
		Address:      "pickup at store",
	})
	require.NoError(t, err)
	require.EqualValues(t, 0, placed.ShippingFee)
}

func TestCheckoutAddsPrintSurcharge(t *testing.T) {
	svc, fs, carts, _ := newCheckoutFixture(t, 1_000_000)
	ctx := context.Background()

	cartID := seedCart(t, carts, cart.NewLine{
		ProductID: "p1", Title: "City Mug", UnitPrice: 10000, Qty: 2, MaxQty: 20,
		CustomPrint: true, PrintText: "Lagos 2026", PrintSurcharge: 500,
	})

	placed, err := svc.Checkout(ctx, order.CheckoutInput{
		CartID:       cartID,
		CustomerName: "Ada",
		Email:        "ada@example.com",
		Phone:        "08012345678",
		Address:      "1 Marina Road, Lagos",
	})
	require.NoError(t, err)
	// no tier at qty 2, so unit is base 10000 plus the 500 surcharge
	require.EqualValues(t, 21000, placed.Subtotal)
	require.Equal(t, "Lagos 2026", fs.lastItems[0].PrintText)
	require.True(t, fs.lastItems[0].CustomPrint)
}

func TestCheckoutEmptyCart(t *testing.T) {
	svc, _, carts, _ := newCheckoutFixture(t, 0)
	ctx := context.Background()

	cartID, err := carts.Create(ctx)
	require.NoError(t, err)

	_, err = svc.Checkout(ctx, order.CheckoutInput{CartID: cartID, CustomerName: "Ada", Email: "a@b.co", Phone: "08012345678", Address: "somewhere"})
	require.ErrorIs(t, err, order.ErrEmptyCart)
}

func TestCheckoutAllOutOfStock(t *testing.T) {
	svc, _, carts, _ := newCheckoutFixture(t, 0)
	ctx := context.Background()

	cartID := seedCart(t, carts, cart.NewLine{ProductID: "p2", Title: "Keychain", UnitPrice: 2500, Qty: 3, MaxQty: 5})

	_, err := svc.Checkout(ctx, order.CheckoutInput{CartID: cartID, CustomerName: "Ada", Email: "a@b.co", Phone: "08012345678", Address: "somewhere"})
	require.ErrorIs(t, err, order.ErrOutOfStock)
}

func TestLookupReturnsItems(t *testing.T) {
	svc, _, carts, _ := newCheckoutFixture(t, 1_000_000)
	ctx := context.Background()

	cartID := seedCart(t, carts, cart.NewLine{ProductID: "p1", Title: "City Mug", UnitPrice: 10000, Qty: 2, MaxQty: 20})
	placed, err := svc.Checkout(ctx, order.CheckoutInput{
		CartID: cartID, CustomerName: "Ada", Email: "a@b.co", Phone: "08012345678", Address: "somewhere",
	})
	require.NoError(t, err)

	detail, err := svc.Lookup(ctx, placed.Reference)
	require.NoError(t, err)
	require.Equal(t, store.OrderStatusPending, detail.Status)
	require.Len(t, detail.Items, 1)
	require.Equal(t, "City Mug", detail.Items[0].Title)

	_, err = svc.Lookup(ctx, "KS-00000000-XXXXXX")
	require.ErrorIs(t, err, store.ErrNotFound)
}
