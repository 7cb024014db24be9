// Package transport provides the Acceptor/Connector reference shape
// described by the core: a server-side registry of live acceptors, and
// a client-side Connector, both driving an *rfcgrid.Communicator over
// any net.Conn. The registry runs a background janitor that closes
// acceptors that have gone idle.
package transport

import (
	"bufio"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/atsika/rfcgrid"
	"github.com/atsika/rfcgrid/wire"
)

// DefaultIdleTimeout is how long an acceptor may see no frame traffic
// before the registry's janitor presumes it dead and closes it.
const DefaultIdleTimeout = 5 * time.Minute

// Acceptor is the transport-facing reference shape for one inbound
// connection: it holds the channel handle, the connector-supplied
// arguments carried from the handshake, an eraser callback that
// removes it from its parent registry, and the communicator whose
// lifecycle it drives.
type Acceptor struct {
	id     string
	conn   net.Conn
	args   []string
	eraser func(string)

	comm *rfcgrid.Communicator

	lastActive atomic.Int64
	eraseOnce  sync.Once
}

// Args returns the connector-supplied arguments carried from the
// handshake (e.g. a requested provider name or protocol version).
func (a *Acceptor) Args() []string { return a.args }

// Communicator returns the communicator this acceptor drives.
func (a *Acceptor) Communicator() *rfcgrid.Communicator { return a.comm }

// Accept binds provider and transitions None -> Accepting -> Open,
// informing the peer via the ACCEPT control literal before starting
// the inbound read loop.
func (a *Acceptor) Accept(provider any) error {
	if !a.comm.MarkAccepting() {
		return rfcgrid.ErrStateViolation
	}
	if err := wire.WriteMessage(a.conn, wire.EncodeControl(wire.ControlAccept)); err != nil {
		a.comm.Teardown(rfcgrid.NewTransportFailure(err))
		return err
	}
	if !a.comm.MarkOpen(provider, a.send) {
		return rfcgrid.ErrStateViolation
	}
	go a.readLoop()
	return nil
}

// Reject transitions None -> Rejecting -> Closed, informing the peer
// via the REJECT control literal and tearing down the communicator
// without ever having bound a provider.
func (a *Acceptor) Reject() error {
	if !a.comm.MarkRejecting() {
		return rfcgrid.ErrStateViolation
	}
	_ = wire.WriteMessage(a.conn, wire.EncodeControl(wire.ControlReject))
	a.comm.Teardown(nil)
	a.comm.MarkClosed()
	_ = a.conn.Close()
	a.erase()
	return nil
}

// Close transitions Open -> Closing -> Closed, informing the peer via
// the CLOSE control literal.
func (a *Acceptor) Close() error {
	if !a.comm.MarkClosing() {
		return rfcgrid.ErrStateViolation
	}
	_ = wire.WriteMessage(a.conn, wire.EncodeControl(wire.ControlClose))
	a.comm.Teardown(nil)
	a.comm.MarkClosed()
	_ = a.conn.Close()
	a.erase()
	return nil
}

func (a *Acceptor) send(f rfcgrid.Frame) error {
	payload, err := wire.EncodeFrame(f)
	if err != nil {
		return err
	}
	return wire.WriteMessage(a.conn, payload)
}

func (a *Acceptor) erase() {
	a.eraseOnce.Do(func() {
		if a.eraser != nil {
			a.eraser(a.id)
		}
	})
}

// readLoop delivers inbound control and data messages until the
// channel fails or a CLOSE control literal arrives, per §4.5: inbound
// CLOSE triggers a local close(), inbound data is routed to replier.
func (a *Acceptor) readLoop() {
	r := bufio.NewReader(a.conn)
	for {
		payload, err := wire.ReadMessage(r)
		if err != nil {
			a.comm.Teardown(rfcgrid.NewTransportFailure(err))
			a.comm.MarkClosing()
			a.comm.MarkClosed()
			_ = a.conn.Close()
			a.erase()
			return
		}
		a.lastActive.Store(time.Now().UnixNano())

		control, frame, derr := wire.Decode(payload)
		if derr != nil {
			continue
		}
		switch control {
		case wire.ControlClose:
			_ = a.Close()
			return
		case wire.ControlAccept, wire.ControlReject:
			// Not expected inbound to an already-open acceptor; ignore.
			continue
		default:
			a.comm.Replier(frame)
		}
	}
}

// Registry is the parent server holding every live Acceptor, keyed by
// connection id. A background janitor closes acceptors that have seen
// no frame traffic within idleTimeout.
type Registry struct {
	acceptors   sync.Map // id -> *Acceptor
	idleTimeout time.Duration
	stop        chan struct{}
}

// NewRegistry builds a Registry and starts its idle-reaping janitor.
// idleTimeout <= 0 uses DefaultIdleTimeout.
func NewRegistry(idleTimeout time.Duration) *Registry {
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	r := &Registry{idleTimeout: idleTimeout, stop: make(chan struct{})}
	go r.janitor()
	return r
}

// NewAcceptor wraps conn in an Acceptor registered under a fresh id,
// carrying args from the connector's handshake. The acceptor starts in
// rfcgrid.None; the caller must call Accept or Reject.
func (r *Registry) NewAcceptor(conn net.Conn, args []string, opts ...rfcgrid.Option) *Acceptor {
	id := uuid.New().String()
	a := &Acceptor{
		id:     id,
		conn:   conn,
		args:   args,
		eraser: r.erase,
		comm:   rfcgrid.NewCommunicator(opts...),
	}
	a.lastActive.Store(time.Now().UnixNano())
	r.acceptors.Store(id, a)
	return a
}

func (r *Registry) erase(id string) { r.acceptors.Delete(id) }

// Close stops the janitor and closes every open acceptor.
func (r *Registry) Close() error {
	close(r.stop)
	r.acceptors.Range(func(_, v any) bool {
		a := v.(*Acceptor)
		if a.comm.State() == rfcgrid.Open {
			_ = a.Close()
		}
		return true
	})
	return nil
}

func (r *Registry) janitor() {
	ticker := time.NewTicker(r.idleTimeout / 2)
	defer ticker.Stop()
	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			now := time.Now()
			r.acceptors.Range(func(_, v any) bool {
				a := v.(*Acceptor)
				if a.comm.State() != rfcgrid.Open {
					return true
				}
				last := time.Unix(0, a.lastActive.Load())
				if now.Sub(last) > r.idleTimeout {
					_ = a.Close()
				}
				return true
			})
		}
	}
}
