package rfcgrid

import "sync/atomic"

// Metrics tracks call-level statistics for a Communicator: atomic
// counters paired with Increment*/Get* accessors, cheap enough to
// leave enabled by default.
type Metrics interface {
	IncrementCallsSent()
	IncrementCallsCompleted()
	IncrementCallsRejected()
	IncrementCallsReceived()
	SetInFlight(n int64)

	GetCallsSent() int64
	GetCallsCompleted() int64
	GetCallsRejected() int64
	GetCallsReceived() int64
	GetInFlight() int64
}

// DefaultMetrics implements Metrics with atomic counters.
type DefaultMetrics struct {
	callsSent      int64
	callsCompleted int64
	callsRejected  int64
	callsReceived  int64
	inFlight       int64
}

// NewDefaultMetrics creates a new DefaultMetrics instance.
func NewDefaultMetrics() *DefaultMetrics { return &DefaultMetrics{} }

func (m *DefaultMetrics) IncrementCallsSent()      { atomic.AddInt64(&m.callsSent, 1) }
func (m *DefaultMetrics) IncrementCallsCompleted()  { atomic.AddInt64(&m.callsCompleted, 1) }
func (m *DefaultMetrics) IncrementCallsRejected()   { atomic.AddInt64(&m.callsRejected, 1) }
func (m *DefaultMetrics) IncrementCallsReceived()   { atomic.AddInt64(&m.callsReceived, 1) }
func (m *DefaultMetrics) SetInFlight(n int64)       { atomic.StoreInt64(&m.inFlight, n) }

func (m *DefaultMetrics) GetCallsSent() int64      { return atomic.LoadInt64(&m.callsSent) }
func (m *DefaultMetrics) GetCallsCompleted() int64 { return atomic.LoadInt64(&m.callsCompleted) }
func (m *DefaultMetrics) GetCallsRejected() int64  { return atomic.LoadInt64(&m.callsRejected) }
func (m *DefaultMetrics) GetCallsReceived() int64  { return atomic.LoadInt64(&m.callsReceived) }
func (m *DefaultMetrics) GetInFlight() int64       { return atomic.LoadInt64(&m.inFlight) }
