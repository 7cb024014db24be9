package transport

import (
	"bufio"
	"net"

	"github.com/atsika/rfcgrid"
	"github.com/atsika/rfcgrid/wire"
)

// Connector is the client-side counterpart of Acceptor: it dials a
// transport, performs the ACCEPT/REJECT handshake read, and on
// acceptance drives an open *rfcgrid.Communicator over the same
// conn for the rest of its life.
type Connector struct {
	conn net.Conn
	comm *rfcgrid.Communicator
}

// Dial waits for the peer acceptor's ACCEPT or REJECT control literal
// on conn, then, if accepted, binds provider and starts the
// communicator's inbound read loop. Args are not sent by Dial itself —
// callers that need to carry connector arguments to the peer's Accept
// should write them on conn before calling Dial, matching the source's
// "string arguments carried from the connector handshake" contract.
func Dial(conn net.Conn, provider any, opts ...rfcgrid.Option) (*Connector, error) {
	comm := rfcgrid.NewCommunicator(opts...)
	comm.MarkAccepting()

	r := bufio.NewReader(conn)
	payload, err := wire.ReadMessage(r)
	if err != nil {
		return nil, err
	}

	control, _, err := wire.Decode(payload)
	if err != nil {
		return nil, err
	}

	switch control {
	case wire.ControlReject:
		comm.MarkRejecting()
		comm.Teardown(rfcgrid.ErrRejected)
		comm.MarkClosed()
		_ = conn.Close()
		return nil, rfcgrid.ErrRejected
	case wire.ControlAccept:
		c := &Connector{conn: conn, comm: comm}
		if !comm.MarkOpen(provider, c.send) {
			_ = conn.Close()
			return nil, rfcgrid.ErrStateViolation
		}
		go c.readLoop(r)
		return c, nil
	default:
		_ = conn.Close()
		return nil, wire.ErrMalformedFrame
	}
}

// Communicator returns the communicator this connector drives.
func (c *Connector) Communicator() *rfcgrid.Communicator { return c.comm }

// Close transitions Open -> Closing -> Closed, informing the peer via
// the CLOSE control literal.
func (c *Connector) Close() error {
	if !c.comm.MarkClosing() {
		return rfcgrid.ErrStateViolation
	}
	_ = wire.WriteMessage(c.conn, wire.EncodeControl(wire.ControlClose))
	c.comm.Teardown(nil)
	c.comm.MarkClosed()
	return c.conn.Close()
}

func (c *Connector) send(f rfcgrid.Frame) error {
	payload, err := wire.EncodeFrame(f)
	if err != nil {
		return err
	}
	return wire.WriteMessage(c.conn, payload)
}

func (c *Connector) readLoop(r *bufio.Reader) {
	for {
		payload, err := wire.ReadMessage(r)
		if err != nil {
			c.comm.Teardown(rfcgrid.NewTransportFailure(err))
			c.comm.MarkClosing()
			c.comm.MarkClosed()
			_ = c.conn.Close()
			return
		}

		control, frame, derr := wire.Decode(payload)
		if derr != nil {
			continue
		}
		switch control {
		case wire.ControlClose:
			c.comm.MarkClosing()
			c.comm.Teardown(nil)
			c.comm.MarkClosed()
			_ = c.conn.Close()
			return
		case wire.ControlAccept, wire.ControlReject:
			continue
		default:
			c.comm.Replier(frame)
		}
	}
}
