package rfcgrid

import "time"

const (
	// DefaultDispatchTimeout is the deadline of the context handed to an
	// inbound request handler whose first parameter is a
	// context.Context. The executor does not interrupt a handler: one
	// that ignores its context runs to completion.
	DefaultDispatchTimeout = 30 * time.Second

	// DefaultJoinPollGranularity is not read anywhere in this package;
	// the channel-based join primitive does not poll.
	DefaultJoinPollGranularity = 10 * time.Millisecond
)

// Option configures a Communicator at construction time, following the
// functional-options pattern the transport layer also uses.
type Option func(*Config)

// Config holds the tunables of a Communicator. The zero value is never
// used directly; applyConfig seeds it with the defaults below before
// options are applied.
type Config struct {
	dispatchTimeout time.Duration
	metrics         Metrics
	logger          Logger
}

func defaultConfig() *Config {
	return &Config{
		dispatchTimeout: DefaultDispatchTimeout,
		metrics:         NewDefaultMetrics(),
		logger:          NewNopLogger(),
	}
}

func applyConfig(opts []Option) *Config {
	cfg := defaultConfig()
	for _, o := range opts {
		o(cfg)
	}
	return cfg
}

// WithDispatchTimeout sets the deadline of the context handed to
// inbound request handlers that take one (see DefaultDispatchTimeout).
// Zero or negative disables the bound.
func WithDispatchTimeout(d time.Duration) Option {
	return func(c *Config) {
		if d < 0 {
			d = 0
		}
		c.dispatchTimeout = d
	}
}

// WithMetrics sets a custom metrics implementation. If not provided, a
// default implementation backed by atomic counters is used.
func WithMetrics(m Metrics) Option {
	return func(c *Config) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithLogger attaches structured event logging to dispatch and
// lifecycle transitions. If not provided, logging is a no-op.
func WithLogger(l Logger) Option {
	return func(c *Config) {
		if l != nil {
			c.logger = l
		}
	}
}
