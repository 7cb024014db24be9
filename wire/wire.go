// Package wire encodes and decodes rfcgrid frames for transports that
// carry them as length-prefixed byte streams: a 4-byte big-endian
// length prefix followed by either a JSON-encoded frame or a raw
// control literal, the receiver disambiguating by content rather than
// a reserved header byte.
package wire

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/atsika/rfcgrid"
)

// Control-plane literals shared with data frames on the same channel.
// A receiver disambiguates by attempting these exact literal matches
// before falling back to structured JSON decode.
const (
	ControlAccept = "ACCEPT"
	ControlReject = "REJECT"
	ControlClose  = "CLOSE"
)

var (
	// ErrNotControl is returned by DecodeControl when payload is not
	// one of the three recognized control literals.
	ErrNotControl = errors.New("wire: not a control literal")
	// ErrMalformedFrame is returned when a data payload cannot be
	// decoded as either a request or response frame shape.
	ErrMalformedFrame = errors.New("wire: malformed frame")
)

// DecodeControl reports the control literal payload carries, or
// ErrNotControl if it is not one of ACCEPT/REJECT/CLOSE.
func DecodeControl(payload []byte) (string, error) {
	switch s := string(payload); s {
	case ControlAccept, ControlReject, ControlClose:
		return s, nil
	default:
		return "", ErrNotControl
	}
}

// EncodeFrame marshals a data frame to JSON.
func EncodeFrame(f rfcgrid.Frame) ([]byte, error) {
	b, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	return b, nil
}

// DecodeFrame unmarshals a data frame from JSON. Callers should first
// attempt DecodeControl and only fall through to DecodeFrame once that
// returns ErrNotControl, per the core's disambiguation rule.
func DecodeFrame(payload []byte) (rfcgrid.Frame, error) {
	var f rfcgrid.Frame
	if err := json.Unmarshal(payload, &f); err != nil {
		return rfcgrid.Frame{}, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	return f, nil
}

// WriteMessage writes a single length-prefixed message (control
// literal or encoded frame) to w.
func WriteMessage(w io.Writer, payload []byte) error {
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(payload)))
	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// ReadMessage reads a single length-prefixed message from r.
func ReadMessage(r *bufio.Reader) ([]byte, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(header[:])
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// Decode disambiguates a raw length-prefixed message payload: it first
// tries the known control literals, then falls back to a structured
// frame decode, returning whichever matched. Exactly one of control
// (non-empty) or frame (zero UID permitted) is meaningful on success.
func Decode(payload []byte) (control string, frame rfcgrid.Frame, err error) {
	if c, cerr := DecodeControl(payload); cerr == nil {
		return c, rfcgrid.Frame{}, nil
	}
	f, ferr := DecodeFrame(payload)
	if ferr != nil {
		return "", rfcgrid.Frame{}, ferr
	}
	return "", f, nil
}

// EncodeControl renders a control literal as a raw payload.
func EncodeControl(literal string) []byte { return []byte(literal) }
