package alerts

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitterDeliversToSubscribers(t *testing.T) {
	e := NewEmitter()
	ch, cancel := e.Subscribe()
	defer cancel()

	cause := errors.New("denied")
	pe := NewPermissionError("activities", OpCreate, map[string]string{"kind": "Health Talk"}, cause)
	e.Emit(pe)

	select {
	case got := <-ch:
		assert.Equal(t, pe, got)
		assert.True(t, errors.Is(got, cause))
		assert.Contains(t, got.Error(), "create activities")
	default:
		t.Fatal("expected an emission")
	}
}

func TestEmitterDropsWhenSubscriberFull(t *testing.T) {
	e := NewEmitter()
	ch, cancel := e.Subscribe()
	defer cancel()

	// Fill the buffer and then some; Emit must never block.
	for i := 0; i < 40; i++ {
		e.Emit(NewPermissionError("users", OpList, nil, errors.New("denied")))
	}

	received := 0
	for {
		select {
		case <-ch:
			received++
			continue
		default:
		}
		break
	}
	require.LessOrEqual(t, received, 16)
	require.Greater(t, received, 0)
}

func TestCancelStopsDelivery(t *testing.T) {
	e := NewEmitter()
	ch, cancel := e.Subscribe()
	cancel()

	_, open := <-ch
	assert.False(t, open)

	// Emitting after cancel must not panic.
	e.Emit(NewPermissionError("users", OpGet, nil, errors.New("denied")))
}
