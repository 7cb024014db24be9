package rfcgrid

import (
	"errors"
	"fmt"
)

// Sentinel error kinds returned by the communicator and its extension
// points. They are deliberately coarse — callers match with errors.Is,
// not by inspecting message text.
var (
	// ErrStateViolation is returned when an operation is illegal for the
	// current lifecycle state (e.g. close before open, accept twice).
	ErrStateViolation = errors.New("rfcgrid: operation illegal in current state")
	// ErrNotReady is returned to a remote caller when an inbound request
	// arrives before a provider has been set.
	ErrNotReady = errors.New("rfcgrid: provider is not specified yet")
	// ErrDisconnected is the generic teardown cause used when destructor
	// is invoked without an explicit error.
	ErrDisconnected = errors.New("rfcgrid: connection has been closed")
	// ErrResolutionFailure is returned when a dotted listener name does
	// not resolve to a callable on the provider.
	ErrResolutionFailure = errors.New("rfcgrid: listener did not resolve to a callable")
	// ErrRejected is returned to a connector when the peer acceptor
	// declined the connection via the REJECT control literal.
	ErrRejected = errors.New("rfcgrid: peer rejected the connection")
)

// TransportFailure wraps an error reported by the transport layer
// (the acceptor/connector) as the cause of a teardown.
type TransportFailure struct {
	Cause error
}

func (e *TransportFailure) Error() string {
	return fmt.Sprintf("rfcgrid: transport failure: %v", e.Cause)
}

func (e *TransportFailure) Unwrap() error { return e.Cause }

// NewTransportFailure wraps cause as a TransportFailure. A nil cause is
// replaced with ErrDisconnected so destructor always has something to
// report to pending calls.
func NewTransportFailure(cause error) error {
	if cause == nil {
		cause = ErrDisconnected
	}
	return &TransportFailure{Cause: cause}
}

// RemoteFailure is the rejection value for an outbound call whose peer
// reported success=false. Value carries whatever the peer's response
// frame supplied — typically a *RemoteError, but any opaque value the
// wire codec decoded is acceptable.
type RemoteFailure struct {
	Value any
}

func (e *RemoteFailure) Error() string {
	if re, ok := e.Value.(*RemoteError); ok {
		return fmt.Sprintf("rfcgrid: remote failure: %s", re.Message)
	}
	return fmt.Sprintf("rfcgrid: remote failure: %v", e.Value)
}

// RemoteError is the plain-data description of an error as carried on
// the wire: name and message are always populated; Data holds any
// additional enumerable fields the origin chose to include.
type RemoteError struct {
	Name    string         `json:"name"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

func (e *RemoteError) Error() string {
	if e.Name != "" {
		return e.Name + ": " + e.Message
	}
	return e.Message
}

// errorToRemoteError converts a local Go error into the wire's plain
// error-data shape, so that JSON or any other structured serialization
// does not drop the name/message pair. A *RemoteError is passed through
// unchanged — this matters when a handler error originated from a prior
// remote call and is being relayed.
func errorToRemoteError(err error) *RemoteError {
	if err == nil {
		return &RemoteError{Name: "Error", Message: ""}
	}
	var re *RemoteError
	if errors.As(err, &re) {
		return re
	}
	return &RemoteError{Name: "Error", Message: err.Error()}
}
