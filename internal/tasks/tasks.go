package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// Task type names routed through the asynq broker.
const (
	TypeOrderCreated    = "order:created"
	TypeContactReceived = "contact:received"
)

// Queue names by priority.
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// OrderCreatedPayload notifies workers that a checkout completed.
type OrderCreatedPayload struct {
	OrderID   string `json:"orderId"`
	Reference string `json:"reference"`
	Email     string `json:"email"`
	Total     int64  `json:"total"`
}

// NewOrderCreatedTask builds the order:created task.
func NewOrderCreatedTask(p OrderCreatedPayload) (*asynq.Task, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal order payload: %w", err)
	}
	return asynq.NewTask(TypeOrderCreated, data, asynq.Queue(QueueCritical), asynq.MaxRetry(5)), nil
}

// ContactReceivedPayload notifies workers that a contact enquiry arrived.
type ContactReceivedPayload struct {
	MessageID string `json:"messageId"`
	Email     string `json:"email"`
}

// NewContactReceivedTask builds the contact:received task.
func NewContactReceivedTask(p ContactReceivedPayload) (*asynq.Task, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal contact payload: %w", err)
	}
	return asynq.NewTask(TypeContactReceived, data, asynq.Queue(QueueDefault), asynq.MaxRetry(3)), nil
}

// Enqueuer is the subset of asynq.Client used by HTTP handlers.
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}
