package eventbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDelivers(t *testing.T) {
	bus := NewEventBus(2)
	require.NoError(t, bus.Publish(TransitionEvent{From: "AWAIT_MODEL", To: "AWAIT_TOOL"}))

	event := <-bus.Events()
	transition, ok := event.(TransitionEvent)
	require.True(t, ok)
	assert.Equal(t, "AWAIT_TOOL", transition.To)
}

func TestPublishNeverBlocks(t *testing.T) {
	bus := NewEventBus(1)
	var reported []EventBusError
	bus.SetErrorCallback(func(err EventBusError) { reported = append(reported, err) })

	require.NoError(t, bus.Publish(TransitionEvent{}))
	assert.ErrorIs(t, bus.Publish(TransitionEvent{}), ErrBusFull)
	require.Len(t, reported, 1)
	assert.Equal(t, "Publish", reported[0].Operation)
}

func TestCircuitOpensAfterRepeatedDrops(t *testing.T) {
	bus := NewEventBus(1)
	require.NoError(t, bus.Publish(TransitionEvent{}))

	for i := 0; i < 5; i++ {
		assert.ErrorIs(t, bus.Publish(TransitionEvent{}), ErrBusFull)
	}
	assert.Equal(t, CircuitOpen, bus.GetCircuitBreakerState())
	assert.ErrorIs(t, bus.Publish(RunFinishedEvent{}), ErrCircuitOpen)
}

func TestPublishAfterClose(t *testing.T) {
	bus := NewEventBus(1)
	bus.Close()
	bus.Close()

	assert.ErrorIs(t, bus.Publish(RunFinishedEvent{}), ErrBusClosed)
	_, open := <-bus.Events()
	assert.False(t, open)
}
