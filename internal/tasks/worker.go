package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/keepsakehq/backend-souvenir/internal/store"
)

// Worker handles background tasks dequeued from the broker.
type Worker struct {
	Store *store.Store
	Log   zerolog.Logger
}

// Register attaches the worker's handlers to an asynq mux.
func (w *Worker) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeOrderCreated, w.HandleOrderCreated)
	mux.HandleFunc(TypeContactReceived, w.HandleContactReceived)
}

// HandleOrderCreated confirms a freshly placed order. Notification channels
// (email, WhatsApp) hook in here once wired up.
func (w *Worker) HandleOrderCreated(ctx context.Context, t *asynq.Task) error {
	var p OrderCreatedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("unmarshal %s: %w", TypeOrderCreated, err)
	}
	order, err := w.Store.GetOrderByID(ctx, p.OrderID)
	if err != nil {
		return fmt.Errorf("load order %s: %w", p.OrderID, err)
	}
	if order.Status == store.OrderStatusPending {
		if _, err := w.Store.UpdateOrderStatus(ctx, order.ID, store.OrderStatusConfirmed); err != nil {
			return fmt.Errorf("confirm order %s: %w", order.ID, err)
		}
	}
	w.Log.Info().
		Str("order_id", order.ID).
		Str("reference", order.Reference).
		Int64("total", order.Total).
		Msg("order confirmed")
	return nil
}

// HandleContactReceived acknowledges an inbound enquiry.
func (w *Worker) HandleContactReceived(ctx context.Context, t *asynq.Task) error {
	var p ContactReceivedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("unmarshal %s: %w", TypeContactReceived, err)
	}
	w.Log.Info().
		Str("message_id", p.MessageID).
		Str("email", p.Email).
		Msg("contact message received")
	return nil
}
