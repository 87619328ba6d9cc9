package sdk

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver   string // "valkey", "redis" or "memory"
	addrs    []string
	password string

	keyPrefix   string
	views       map[string]ViewDefinition
	settle      time.Duration
	maxSessions int
	sessionTTL  time.Duration

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithValkey configures the client to connect to a Valkey instance.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "valkey"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedis configures the client to connect to a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithMemory keeps everything in process memory. Useful for tests.
func WithMemory() Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "memory"
	})
}

// WithKeyPrefix sets the storage key prefix. Default: "itemfilter:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithView registers a named view sessions can run with.
func WithView(name string, def ViewDefinition) Option {
	return optionFunc(func(c *clientConfig) {
		if c.views == nil {
			c.views = make(map[string]ViewDefinition)
		}
		c.views[name] = def
	})
}

// WithSettle sets the debounce delay before a transition settles.
// Default: 0 (settle synchronously).
func WithSettle(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.settle = d
	})
}

// WithMaxSessions caps the number of live sessions. Default: 0 (unlimited).
func WithMaxSessions(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxSessions = n
	})
}

// WithSessionTTL sets how long an untouched session is kept. Default: 30m.
func WithSessionTTL(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.sessionTTL = d
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
