package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "babybliss.booking.created", Subject(BookingCreated))
}

func TestEventJSON(t *testing.T) {
	e := New(MessageReceived, map[string]any{"id": 3})
	raw, err := json.Marshal(e)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "message.received", decoded["type"])
	assert.Equal(t, float64(3), decoded["data"].(map[string]any)["id"])
	assert.NotEmpty(t, decoded["occurred_at"])
}

func TestNoop(t *testing.T) {
	var p Publisher = Noop{}
	assert.NoError(t, p.Publish(context.Background(), New(BookingCreated, nil)))
	p.Close()
}
