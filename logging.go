package rfcgrid

import (
	"io"

	"github.com/rs/zerolog"
)

// Logger receives structured events from a Communicator's dispatch and
// lifecycle transitions, backed by zerolog so call tracing and state
// transitions show up as structured fields rather than free-form text.
type Logger interface {
	Invoke(uid uint64, listener string)
	Settled(uid uint64, ok bool)
	StateChange(from, to State)
}

// NewNopLogger returns a Logger that discards every event. It is the
// Config default so a Communicator never pays logging cost unless a
// caller opts in via WithLogger.
func NewNopLogger() Logger { return nopLogger{} }

type nopLogger struct{}

func (nopLogger) Invoke(uint64, string)  {}
func (nopLogger) Settled(uint64, bool)   {}
func (nopLogger) StateChange(State, State) {}

// ZerologLogger adapts a zerolog.Logger to the Logger interface.
type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger builds a Logger writing structured events to w. A
// nil w defaults to io.Discard rather than os.Stdout, so embedding a
// Communicator in a library never surprises a caller with stray stdout
// writes unless they ask for it via WithLogger.
func NewZerologLogger(w io.Writer) *ZerologLogger {
	if w == nil {
		w = io.Discard
	}
	return &ZerologLogger{log: zerolog.New(w).With().Timestamp().Logger()}
}

func (l *ZerologLogger) Invoke(uid uint64, listener string) {
	l.log.Debug().Uint64("uid", uid).Str("listener", listener).Msg("invoke")
}

func (l *ZerologLogger) Settled(uid uint64, ok bool) {
	l.log.Debug().Uint64("uid", uid).Bool("ok", ok).Msg("settled")
}

func (l *ZerologLogger) StateChange(from, to State) {
	l.log.Info().Str("from", from.String()).Str("to", to.String()).Msg("state change")
}
