package lidar

import (
	"context"
	"net"

	"github.com/moffa90/go-hokuyolx/protocol"
)

// Dial connects to the sensor at address over TCP and returns a client
// owning the connection. Close the client to close the connection.
//
// Example:
//
//	c, err := lidar.Dial(ctx, lidar.DefaultAddress, lidar.WithDialTimeout(2*time.Second))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Close()
func Dial(ctx context.Context, address string, opts ...Option) (*Client, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	cfg.Logger.Info("connecting to sensor", "address", address)
	d := net.Dialer{Timeout: cfg.DialTimeout}
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, &protocol.TransportError{Op: "dial", Err: err}
	}
	return New(conn, opts...), nil
}
