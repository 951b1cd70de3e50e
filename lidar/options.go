package lidar

import (
	"time"

	"github.com/moffa90/go-hokuyolx/protocol"
)

// DefaultAddress is the factory address of UST-10LX/20LX/30LX sensors.
const DefaultAddress = "192.168.0.10:10940"

// Config holds the client configuration.
type Config struct {
	// Logger receives protocol activity; defaults to GlogLogger
	Logger Logger

	// TimeTolerance is the largest difference between a converted sensor
	// timestamp and the local clock accepted by Clock.Time
	TimeTolerance time.Duration

	// TimeSyncSamples is the number of TM1 requests averaged by TimeSync
	TimeSyncSamples int

	// TimeSyncInterval is the pause between two TM1 requests
	TimeSyncInterval time.Duration

	// DialTimeout bounds connection setup in Dial
	DialTimeout time.Duration

	// Encoding is the sample encoding used when a request leaves it unset
	Encoding protocol.Encoding
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Logger:           GlogLogger{},
		TimeTolerance:    300 * time.Millisecond,
		TimeSyncSamples:  10,
		TimeSyncInterval: 100 * time.Millisecond,
		DialTimeout:      5 * time.Second,
		Encoding:         protocol.ThreeCharEncoding,
	}
}

// Option is a functional option for configuring the Client.
type Option func(*Config)

// WithLogger sets the logger for client operations. A nil logger is
// ignored; use NopLogger to silence the client.
//
// Example:
//
//	c := lidar.New(conn, lidar.WithLogger(myLogger))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// WithTimeTolerance sets the accepted drift between sensor and local time.
//
// Example:
//
//	c := lidar.New(conn, lidar.WithTimeTolerance(500*time.Millisecond))
func WithTimeTolerance(tolerance time.Duration) Option {
	return func(c *Config) {
		if tolerance > 0 {
			c.TimeTolerance = tolerance
		}
	}
}

// WithTimeSyncSamples sets how many sensor timestamps TimeSync averages.
func WithTimeSyncSamples(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.TimeSyncSamples = n
		}
	}
}

// WithTimeSyncInterval sets the pause between two time sync samples.
func WithTimeSyncInterval(interval time.Duration) Option {
	return func(c *Config) {
		if interval >= 0 {
			c.TimeSyncInterval = interval
		}
	}
}

// WithDialTimeout sets the connection timeout used by Dial.
func WithDialTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout > 0 {
			c.DialTimeout = timeout
		}
	}
}

// WithEncoding sets the default sample encoding for single-shot and
// continuous measurements. Only 2- and 3-character encodings are accepted.
//
// Example:
//
//	c := lidar.New(conn, lidar.WithEncoding(protocol.TwoCharEncoding))
func WithEncoding(enc protocol.Encoding) Option {
	return func(c *Config) {
		if enc == protocol.TwoCharEncoding || enc == protocol.ThreeCharEncoding {
			c.Encoding = enc
		}
	}
}
