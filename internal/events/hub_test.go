package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEncodeRoundTrips(t *testing.T) {
	raw := New(TypeMailSent, map[string]string{"post_id": "p1"}).Encode()

	var e Event
	require.NoError(t, json.Unmarshal([]byte(raw), &e))
	assert.Equal(t, TypeMailSent, e.Type)
	assert.False(t, e.At.IsZero())
	assert.JSONEq(t, `{"post_id":"p1"}`, string(e.Data))
}

func TestNewNilData(t *testing.T) {
	e := New(TypeCycleDone, nil)
	assert.Nil(t, e.Data)
	assert.NotContains(t, e.Encode(), `"data"`)
}

func TestHubFanOut(t *testing.T) {
	h := NewHub()
	a := h.Subscribe()
	b := h.Subscribe()

	h.Publish(New(TypePostAccepted, nil))
	assert.Equal(t, TypePostAccepted, (<-a).Type)
	assert.Equal(t, TypePostAccepted, (<-b).Type)

	h.Unsubscribe(b)
	h.Publish(New(TypeMailSent, nil))
	assert.Equal(t, TypeMailSent, (<-a).Type)
}

func TestHubDropsWhenSubscriberIsFull(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()

	for i := 0; i < 50; i++ {
		h.Publish(New(TypeCycleDone, nil))
	}

	// Buffer holds some, the rest were dropped, publisher never blocked.
	n := 0
	for {
		select {
		case <-ch:
			n++
		default:
			assert.Equal(t, cap(ch), n)
			return
		}
	}
}
