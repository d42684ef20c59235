package tasks

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewOrderCreatedTask(t *testing.T) {
	task, err := NewOrderCreatedTask(OrderCreatedPayload{
		OrderID:   "o1",
		Reference: "KS-20260828-0001",
		Email:     "buyer@example.com",
		Total:     125000,
	})
	require.NoError(t, err)
	require.Equal(t, TypeOrderCreated, task.Type())

	var p OrderCreatedPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &p))
	require.Equal(t, "KS-20260828-0001", p.Reference)
	require.EqualValues(t, 125000, p.Total)
}

func TestNewContactReceivedTask(t *testing.T) {
	task, err := NewContactReceivedTask(ContactReceivedPayload{MessageID: "m1", Email: "x@example.com"})
	require.NoError(t, err)
	require.Equal(t, TypeContactReceived, task.Type())
}
