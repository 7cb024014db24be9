package rfcgrid

import (
	"context"
	"fmt"
	"time"
)

// Sender emits a frame on the transport. Serialization is the
// transport's responsibility — the core only ever hands it a
// structured Frame.
type Sender func(Frame) error

// Communicator is the transport-agnostic engine that multiplexes
// bidirectional asynchronous calls over whatever channel an
// acceptor/connector provides. It owns the pending-call table, the
// join condition, and the current provider reference; it does not
// know how frames reach the peer — that is supplied via bindSender by
// whatever Acceptor or Connector constructs it.
type Communicator struct {
	stateHolder

	cfg     *Config
	pending *pendingTable
	join    *joinCondition

	provider any
	sender   Sender
}

// NewCommunicator builds a Communicator in state None. It is not yet
// usable for Invoke or Join until an Acceptor or Connector moves it
// into Open via MarkAccepting and MarkOpen.
func NewCommunicator(opts ...Option) *Communicator {
	c := &Communicator{
		cfg:     applyConfig(opts),
		pending: newPendingTable(),
		join:    newJoinCondition(),
	}
	c.store(None)
	return c
}

// Provider returns the current provider reference, or nil if absent.
func (c *Communicator) Provider() any { return c.provider }

// bindProvider assigns the provider the communicator resolves inbound
// listeners against. Called by MarkOpen.
func (c *Communicator) bindProvider(p any) { c.provider = p }

// bindSender installs the transport's frame-emission callback. It does
// not change the state; MarkOpen calls it once, after the owning
// acceptor/connector's handshake completes, before moving to Open.
func (c *Communicator) bindSender(s Sender) {
	c.sender = s
}

// State reports the communicator's current lifecycle state.
func (c *Communicator) State() State { return c.load() }

// MarkAccepting transitions None -> Accepting. It is the first step an
// Acceptor or Connector takes while its handshake is in flight.
func (c *Communicator) MarkAccepting() bool {
	ok := c.transition(None, Accepting)
	if ok {
		c.cfg.logger.StateChange(None, Accepting)
	}
	return ok
}

// MarkRejecting transitions None -> Rejecting, the alternative path
// taken when a transport decides to refuse the incoming connection
// instead of accepting it.
func (c *Communicator) MarkRejecting() bool {
	ok := c.transition(None, Rejecting)
	if ok {
		c.cfg.logger.StateChange(None, Rejecting)
	}
	return ok
}

// MarkOpen transitions Accepting -> Open, binding the provider and the
// transport's send callback in the same step so the communicator is
// never observably Open without both set.
func (c *Communicator) MarkOpen(provider any, sender Sender) bool {
	if c.load() != Accepting {
		return false
	}
	c.bindProvider(provider)
	c.bindSender(sender)
	if !c.transition(Accepting, Open) {
		return false
	}
	c.cfg.logger.StateChange(Accepting, Open)
	return true
}

// MarkClosing transitions Open -> Closing, the first step of a
// graceful close.
func (c *Communicator) MarkClosing() bool {
	ok := c.transition(Open, Closing)
	if ok {
		c.cfg.logger.StateChange(Open, Closing)
	}
	return ok
}

// MarkClosed transitions Closing or Rejecting into the terminal Closed
// state.
func (c *Communicator) MarkClosed() bool {
	if c.transition(Closing, Closed) {
		c.cfg.logger.StateChange(Closing, Closed)
		return true
	}
	if c.transition(Rejecting, Closed) {
		c.cfg.logger.StateChange(Rejecting, Closed)
		return true
	}
	return false
}

// Teardown is the exported entry point a transport acceptor/connector
// uses to run the bulk-rejection/join-release sequence, e.g. when the
// underlying channel fails or is closed.
func (c *Communicator) Teardown(cause error) { c.destructor(cause) }

// Replier is the exported entry point a transport invokes for each
// inbound frame, after whatever framing/deserialization it applies.
func (c *Communicator) Replier(f Frame) { c.replier(f) }

// Invoke dispatches an outbound call and returns its eventual result.
// It implements the core's invocation algorithm: consult the
// inspector, allocate a uid, record the pending completion, then send.
// If sender fails synchronously the entry is left pending — it will be
// settled by a later destructor, matching the spec's stated behavior
// that eager failure is a transport's own choice (call destructor
// directly from the send path if that's wanted).
func (c *Communicator) Invoke(ctx context.Context, listener string, params ...Value) (Value, error) {
	if err := inspect(c.load(), "sender"); err != nil {
		return nil, err
	}

	uid := nextUID()
	comp := newCompletion()
	c.pending.insert(uid, comp)
	c.cfg.metrics.IncrementCallsSent()
	c.cfg.metrics.SetInFlight(int64(c.pending.size()))
	c.cfg.logger.Invoke(uid, listener)

	if err := c.sender(RequestFrame(uid, listener, params)); err != nil {
		return nil, err
	}

	select {
	case <-comp.done:
		v, err := comp.value, comp.err
		c.cfg.metrics.IncrementCallsCompleted()
		c.cfg.logger.Settled(uid, err == nil)
		return v, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Join suspends until the communicator reaches Closed. It fails
// immediately with ErrStateViolation unless the state is Open, Closing
// or Closed, the states the join inspector allows.
func (c *Communicator) Join() error {
	if err := inspect(c.load(), "join"); err != nil {
		return err
	}
	c.join.wait(nil)
	return nil
}

// JoinTimeout suspends until Closed or d elapses, whichever comes
// first. It returns true if released by teardown, false on timeout.
func (c *Communicator) JoinTimeout(d time.Duration) (bool, error) {
	if err := inspect(c.load(), "join"); err != nil {
		return false, err
	}
	deadline := time.Now().Add(d)
	return c.join.wait(&deadline), nil
}

// JoinDeadline suspends until Closed or the absolute deadline passes.
func (c *Communicator) JoinDeadline(deadline time.Time) (bool, error) {
	if err := inspect(c.load(), "join"); err != nil {
		return false, err
	}
	return c.join.wait(&deadline), nil
}

// destructor is the internal teardown: every pending call is rejected
// with cause (or ErrDisconnected if nil), the table is cleared, and all
// join waiters are released. It is the single fan-out point for bulk
// rejection — request/response handling never iterates the table
// directly. A second call is a safe no-op: drain returns nothing and
// release no-ops via its sync.Once.
func (c *Communicator) destructor(cause error) {
	if cause == nil {
		cause = ErrDisconnected
	}
	for _, comp := range c.pending.drain() {
		comp.reject(cause)
		c.cfg.metrics.IncrementCallsRejected()
	}
	c.cfg.metrics.SetInFlight(0)
	c.join.release()
}

// replier is the entry point a transport invokes for each inbound
// frame, after whatever deserialization it applies. It classifies the
// frame and dispatches to request or response handling.
func (c *Communicator) replier(f Frame) {
	if f.IsRequest() {
		c.handleRequest(f)
		return
	}
	c.handleResponse(f)
}

// handleResponse looks up the uid and settles the matching completion.
// A uid absent from the table (teardown race, or a stale duplicate) is
// silently dropped, per the spec's invariant that response handling
// never errors on an unknown uid.
func (c *Communicator) handleResponse(f Frame) {
	comp, ok := c.pending.take(f.UID)
	if !ok {
		return
	}
	c.cfg.metrics.SetInFlight(int64(c.pending.size()))
	if f.Success != nil && *f.Success {
		comp.resolve(f.Value)
		return
	}
	comp.reject(&RemoteFailure{Value: f.Value})
}

// handleRequest resolves f.Listener against the provider and emits a
// matching response frame. It never returns an error to its caller —
// every failure mode (no provider, resolution failure, handler panic
// or error) is reported to the peer as a response frame instead.
func (c *Communicator) handleRequest(f Frame) {
	c.cfg.metrics.IncrementCallsReceived()

	if c.provider == nil {
		c.reply(f.UID, false, errorToRemoteError(ErrNotReady))
		return
	}

	fn, err := resolveListener(c.provider, f.Listener)
	if err != nil {
		c.reply(f.UID, false, errorToRemoteError(fmt.Errorf("%w: %s", ErrResolutionFailure, f.Listener)))
		return
	}

	// The handler runs on its own goroutine so a slow call does not hold
	// up the frames that arrive after it.
	go func() {
		ctx := context.Background()
		if c.cfg.dispatchTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.cfg.dispatchTimeout)
			defer cancel()
		}
		defer func() {
			if r := recover(); r != nil {
				c.reply(f.UID, false, errorToRemoteError(fmt.Errorf("rfcgrid: handler panicked: %v", r)))
			}
		}()

		result, callErr := callListener(ctx, fn, f.Parameters)
		if callErr != nil {
			c.reply(f.UID, false, errorToRemoteError(callErr))
			return
		}
		c.reply(f.UID, true, result)
	}()
}

func (c *Communicator) reply(uid uint64, success bool, value Value) {
	if c.sender == nil {
		return
	}
	_ = c.sender(ResponseFrame(uid, success, value))
}
