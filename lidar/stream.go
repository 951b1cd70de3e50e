package lidar

import (
	"context"
	"fmt"
	"io"

	"github.com/moffa90/go-hokuyolx/protocol"
)

// Stream is an armed continuous measurement (MD, ME or MS).
//
// While a stream is armed the client refuses every other command with
// ErrStreamActive. A bounded stream disarms itself after its last scan;
// an unbounded one runs until Stop.
type Stream struct {
	client *Client
	req    protocol.ScanRequest
	echo   protocol.Echo
	err    error

	// scanning is closed when the Scans goroutine exits
	scanning chan struct{}
}

// ScanResult is one item delivered by Stream.Scans.
type ScanResult struct {
	Scan *protocol.Scan
	Err  error
}

// StartStream starts a continuous measurement. req.Count is the number of
// scans to deliver, 0 for unbounded; req.Skips is the number of scans
// skipped between two delivered ones.
//
// Example:
//
//	req := c.FullScan()
//	req.Count = 10
//	s, err := c.StartStream(ctx, req)
//	for {
//	    scan, err := s.Next(ctx)
//	    if err == io.EOF {
//	        break
//	    }
//	    ...
//	}
func (c *Client) StartStream(ctx context.Context, req protocol.ScanRequest) (*Stream, error) {
	if c.stream != nil {
		return nil, ErrStreamActive
	}
	if req.Encoding == 0 {
		req.Encoding = c.config.Encoding
	}

	cmd, err := protocol.MultiScanCmd(req)
	if err != nil {
		return nil, err
	}

	c.logInfo("starting continuous measurement", "command", cmd.String())
	f, err := c.exchange(ctx, "start stream", cmd)
	if err != nil {
		return nil, err
	}
	if f.Status != protocol.StatusOK {
		return nil, &protocol.StatusError{Operation: "start stream", Command: cmd.Name(), Code: f.Status}
	}

	s := &Stream{
		client: c,
		req:    req,
		echo:   protocol.StreamEchoFor(req),
	}
	c.stream = s
	return s, nil
}

// Active reports whether the stream is still armed.
func (s *Stream) Active() bool {
	return s.client.stream == s
}

// Next returns the next scan. It returns io.EOF once a bounded stream has
// delivered its last scan or the stream has been stopped.
//
// Frames reporting an unstable sensor (0M) are skipped. Any other
// non-success status ends the session: it is returned as a
// *protocol.StatusError by this and every later call, and the stream
// still has to be stopped.
func (s *Stream) Next(ctx context.Context) (*protocol.Scan, error) {
	c := s.client
	for {
		if !s.Active() {
			return nil, io.EOF
		}
		if s.err != nil {
			return nil, s.err
		}

		f, err := s.readFrame(ctx)
		if err != nil {
			return nil, c.wrap(ctx, "stream", err)
		}

		remaining, err := s.echo.Match(f.Echo)
		if err != nil {
			return nil, c.wrap(ctx, "stream", err)
		}
		last := s.req.Count != 0 && remaining == 0

		switch f.Status {
		case protocol.StatusScanData:
		case protocol.StatusUnstable:
			c.logInfo("sensor unstable, scan skipped", "remaining", remaining)
			if last {
				c.stream = nil
			}
			continue
		default:
			s.err = &protocol.StatusError{Operation: "stream", Command: s.req.MultiScanName(), Code: f.Status}
			c.logError("continuous measurement failed", "status", f.Status, "error", s.err)
			return nil, s.err
		}

		scan, err := protocol.ParseScan(f, s.req)
		if err != nil {
			return nil, fmt.Errorf("stream: %w", err)
		}
		scan.Remaining = remaining

		if last {
			c.logInfo("last scan received")
			c.stream = nil
		}
		return scan, nil
	}
}

func (s *Stream) readFrame(ctx context.Context) (*protocol.Frame, error) {
	release, err := s.client.bind(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	return s.client.reader.ReadFrame(&s.echo)
}

// Stop ends the measurement with QT. Frames the sensor queued before
// seeing QT are read and discarded up to the QT reply, so the client is
// ready for the next command when Stop returns. Stop on a stream that is
// no longer armed does nothing.
//
// While the goroutine started by Scans is still running Stop returns
// ErrScansRunning and leaves the stream armed.
func (s *Stream) Stop(ctx context.Context) error {
	c := s.client
	if s.scanning != nil {
		select {
		case <-s.scanning:
		default:
			return ErrScansRunning
		}
	}
	if !s.Active() {
		return nil
	}
	defer func() { c.stream = nil }()

	release, err := c.bind(ctx)
	if err != nil {
		return fmt.Errorf("stop stream: %w", err)
	}
	defer release()

	cmd := protocol.LaserOffCmd()
	c.logInfo("stopping continuous measurement")
	if err := c.send(cmd); err != nil {
		return c.wrap(ctx, "stop stream", err)
	}

	discarded := 0
	for {
		f, err := c.reader.ReadFrame(nil)
		if err != nil {
			if protocol.IsTransportError(err) {
				return c.wrap(ctx, "stop stream", err)
			}
			c.logDebug("discarding malformed frame", "error", err)
			continue
		}
		if f.Echo != cmd.Line() {
			discarded++
			continue
		}

		c.logDebug("continuous measurement stopped", "discarded", discarded)
		if !protocol.IsSuccess(cmd.Name(), f.Status) {
			return &protocol.StatusError{Operation: "stop stream", Command: cmd.Name(), Code: f.Status}
		}
		return nil
	}
}

// Scans delivers the stream on a channel. The channel is closed when the
// stream ends, after an error has been delivered, or when ctx is done.
// A consumer that stops receiving early must cancel ctx; the goroutine
// owns the connection until the channel is closed, and Stop fails with
// ErrScansRunning until then.
//
// Example:
//
//	ctx, cancel := context.WithCancel(ctx)
//	defer cancel()
//	for r := range s.Scans(ctx) {
//	    if r.Err != nil || done(r.Scan) {
//	        cancel()
//	    }
//	}
//	s.Stop(context.Background())
func (s *Stream) Scans(ctx context.Context) <-chan ScanResult {
	out := make(chan ScanResult)
	scanning := make(chan struct{})
	s.scanning = scanning
	go func() {
		defer close(out)
		defer close(scanning)
		for {
			scan, err := s.Next(ctx)
			if err == io.EOF {
				return
			}
			select {
			case out <- ScanResult{Scan: scan, Err: err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()
	return out
}
