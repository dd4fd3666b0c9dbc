package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishJSON(t *testing.T) {
	bus := NewEventBus()

	var received *Event
	bus.Subscribe(EventBookingCreated, func(e *Event) error {
		received = e
		return nil
	})

	payload := BookingEventPayload{
		BookingID: 1,
		BookerID:  2,
		ItemID:    3,
		ItemName:  "дрель",
		Status:    "waiting",
		Start:     time.Date(2026, 6, 16, 12, 0, 0, 0, time.UTC),
		End:       time.Date(2026, 6, 17, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, bus.PublishJSON(EventBookingCreated, payload))

	require.NotNil(t, received)
	assert.NotEmpty(t, received.ID)
	assert.False(t, received.CreatedAt.IsZero())
	assert.Equal(t, EventBookingCreated, received.Type)

	var got BookingEventPayload
	require.NoError(t, json.Unmarshal(received.Payload, &got))
	assert.Equal(t, payload.BookingID, got.BookingID)
	assert.Equal(t, payload.ItemName, got.ItemName)
}

func TestSubscribeByType(t *testing.T) {
	bus := NewEventBus()

	var created, approved int
	bus.Subscribe(EventBookingCreated, func(*Event) error { created++; return nil })
	bus.Subscribe(EventBookingApproved, func(*Event) error { approved++; return nil })

	require.NoError(t, bus.PublishJSON(EventBookingCreated, nil))
	require.NoError(t, bus.PublishJSON(EventBookingCreated, nil))
	require.NoError(t, bus.PublishJSON(EventBookingRejected, nil))

	assert.Equal(t, 2, created)
	assert.Equal(t, 0, approved, "чужие типы событий не доставляются")
}

func TestNilBusIsSafe(t *testing.T) {
	var bus *EventBus
	assert.NoError(t, bus.PublishJSON(EventBookingCreated, nil))
}
