package live

import (
	"net/http"
	"time"

	"github.com/okian/polo/pkg/logger"
)

type hubConfig struct {
	writeTimeout    time.Duration
	pingInterval    time.Duration
	maxMessageSize  int64
	readBufferSize  int
	writeBufferSize int
	sendBuffer      int
	broadcastBuffer int
	checkOrigin     func(r *http.Request) bool
	log             logger.Logger
}

func defaultConfig() hubConfig {
	return hubConfig{
		writeTimeout:    10 * time.Second,
		pingInterval:    30 * time.Second,
		maxMessageSize:  512,
		readBufferSize:  1024,
		writeBufferSize: 4096,
		sendBuffer:      16,
		broadcastBuffer: 64,
		checkOrigin:     func(*http.Request) bool { return true },
	}
}

// readTimeout allows two missed pongs.
func (c hubConfig) readTimeout() time.Duration {
	return 2*c.pingInterval + c.writeTimeout
}

// Option configures a Hub.
type Option func(*hubConfig)

// WithPingInterval sets the keepalive ping interval.
func WithPingInterval(d time.Duration) Option {
	return func(c *hubConfig) {
		if d > 0 {
			c.pingInterval = d
		}
	}
}

// WithSendBuffer bounds queued messages per viewer. A viewer that falls
// further behind is disconnected.
func WithSendBuffer(n int) Option {
	return func(c *hubConfig) {
		if n > 0 {
			c.sendBuffer = n
		}
	}
}

// WithCheckOrigin sets the upgrade origin check.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(c *hubConfig) {
		if fn != nil {
			c.checkOrigin = fn
		}
	}
}

// WithLogger sets the hub logger.
func WithLogger(l logger.Logger) Option {
	return func(c *hubConfig) {
		if l != nil {
			c.log = l
		}
	}
}
