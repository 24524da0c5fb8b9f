package eventbus

import (
	"errors"
	"sync"
	"time"

	"github.com/Rorical/RoriAtlas/internal/schema"
)

// RunEvent represents progress reported by a running control loop
type RunEvent interface {
	RunEvent()
}

// TransitionEvent - the loop moved from one state to another
type TransitionEvent struct {
	RunID   string
	From    string
	To      string
	Trigger string // Guard that fired, e.g. "tool_call"
	Detail  string // Tool query or short reason, may be empty
	At      time.Time
}

func (e TransitionEvent) RunEvent() {}

// RunFinishedEvent - the loop reached a terminal state
type RunFinishedEvent struct {
	RunID  string
	Record *schema.CityDetails // nil when Err is set
	Err    error
}

func (e RunFinishedEvent) RunEvent() {}

// EventBusError represents errors in event processing
type EventBusError struct {
	Operation string
	Err       error
	Timestamp time.Time
}

func (e EventBusError) Error() string {
	return e.Operation + ": " + e.Err.Error()
}

// CircuitBreakerState represents the state of circuit breaker
type CircuitBreakerState int

const (
	CircuitClosed CircuitBreakerState = iota
	CircuitOpen
	CircuitHalfOpen
)

// CircuitBreaker stops publishing to a consumer that keeps falling behind
type CircuitBreaker struct {
	maxFailures     int
	resetTimeout    time.Duration
	failureCount    int
	lastFailureTime time.Time
	state           CircuitBreakerState
}

func NewCircuitBreaker(maxFailures int, resetTimeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
		state:        CircuitClosed,
	}
}

func (cb *CircuitBreaker) IsOpen() bool {
	if cb.state == CircuitOpen {
		// Check if we should transition to half-open
		if time.Since(cb.lastFailureTime) > cb.resetTimeout {
			cb.state = CircuitHalfOpen
		}
	}
	return cb.state == CircuitOpen
}

func (cb *CircuitBreaker) RecordSuccess() {
	cb.failureCount = 0
	cb.state = CircuitClosed
}

func (cb *CircuitBreaker) RecordFailure() {
	cb.failureCount++
	cb.lastFailureTime = time.Now()

	if cb.failureCount >= cb.maxFailures {
		cb.state = CircuitOpen
	}
}

var (
	ErrCircuitOpen = errors.New("circuit breaker is open")
	ErrBusFull     = errors.New("event channel is full")
	ErrBusClosed   = errors.New("event bus is closed")
)

// EventBus carries run events to a single consumer without ever blocking
// the publisher
type EventBus struct {
	mu             sync.Mutex
	events         chan RunEvent
	closed         bool
	errorCallback  func(EventBusError)
	circuitBreaker *CircuitBreaker
}

func NewEventBus(buffer int) *EventBus {
	if buffer <= 0 {
		buffer = 100
	}
	return &EventBus{
		events:         make(chan RunEvent, buffer),
		circuitBreaker: NewCircuitBreaker(5, 30*time.Second),
	}
}

func (eb *EventBus) SetErrorCallback(callback func(EventBusError)) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.errorCallback = callback
}

func (eb *EventBus) reportError(operation string, err error) {
	busError := EventBusError{
		Operation: operation,
		Err:       err,
		Timestamp: time.Now(),
	}

	eb.circuitBreaker.RecordFailure()

	if eb.errorCallback != nil {
		eb.errorCallback(busError)
	}
}

// Publish delivers event if there is room; otherwise it reports and drops it
func (eb *EventBus) Publish(event RunEvent) error {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return ErrBusClosed
	}

	if eb.circuitBreaker.IsOpen() {
		eb.reportError("Publish", ErrCircuitOpen)
		return ErrCircuitOpen
	}

	select {
	case eb.events <- event:
		eb.circuitBreaker.RecordSuccess()
		return nil
	default:
		eb.reportError("Publish", ErrBusFull)
		return ErrBusFull
	}
}

func (eb *EventBus) Events() <-chan RunEvent {
	return eb.events
}

func (eb *EventBus) GetCircuitBreakerState() CircuitBreakerState {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	return eb.circuitBreaker.state
}

func (eb *EventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	if eb.closed {
		return
	}
	eb.closed = true
	close(eb.events)
}
