package lidar

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/moffa90/go-hokuyolx/protocol"
)

//go:generate mockgen -destination=mocks/mock_transport.go -package=mocks github.com/moffa90/go-hokuyolx/lidar Transport

// Transport is the byte stream to the sensor, typically a net.Conn.
type Transport interface {
	io.Reader
	io.Writer
}

// deadliner is implemented by transports that support I/O deadlines.
type deadliner interface {
	SetDeadline(t time.Time) error
}

// Client talks SCIP 2.0 to one sensor.
//
// It performs one command exchange at a time and never pipelines. Client
// is not safe for concurrent use.
type Client struct {
	device Transport
	reader *protocol.Reader
	config Config
	clock  *Clock
	params protocol.Parameters
	stream *Stream
}

// New creates a new Client speaking over device.
//
// Example:
//
//	conn, _ := net.Dial("tcp", lidar.DefaultAddress)
//	c := lidar.New(conn,
//	    lidar.WithLogger(myLogger),
//	    lidar.WithTimeTolerance(500*time.Millisecond),
//	)
func New(device Transport, opts ...Option) *Client {
	if device == nil {
		panic("device cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Client{
		device: device,
		reader: protocol.NewReader(device),
		config: cfg,
		clock:  NewClock(cfg.TimeTolerance),
		params: protocol.DefaultParameters(),
	}
}

// Clock returns the clock converting sensor timestamps to local time.
// It is synchronized by TimeSync.
func (c *Client) Clock() *Clock {
	return c.clock
}

// Params returns the sensor parameters stored by the last UpdateInfo,
// or the UST-10LX defaults.
func (c *Client) Params() protocol.Parameters {
	return c.params
}

// FullScan returns a request covering the whole scanning area.
func (c *Client) FullScan() protocol.ScanRequest {
	return protocol.ScanRequest{
		Start:    c.params.MinStep,
		End:      c.params.MaxStep,
		Encoding: c.config.Encoding,
	}
}

// Activate lights the laser and switches the sensor to the measurement
// state. The returned status tells whether the laser was already on.
func (c *Client) Activate(ctx context.Context) (protocol.StatusInfo, error) {
	c.logInfo("activating sensor")
	cmd := protocol.LaserOnCmd()
	f, err := c.exchange(ctx, "activate", cmd)
	if err != nil {
		return protocol.StatusInfo{}, err
	}
	return protocol.LookupStatus(cmd.Name(), f.Status), nil
}

// Standby stops measuring and switches the laser off.
func (c *Client) Standby(ctx context.Context) error {
	c.logInfo("switching sensor to standby")
	_, err := c.exchange(ctx, "standby", protocol.LaserOffCmd())
	return err
}

// Sleep stops the motor and the laser. The sensor is first brought to the
// standby state.
func (c *Client) Sleep(ctx context.Context) error {
	c.logInfo("switching sensor to sleep")
	if err := c.forceStandby(ctx, "sleep"); err != nil {
		return err
	}
	_, err := c.exchange(ctx, "sleep", protocol.SleepCmd())
	return err
}

// Distances takes one distance measurement of steps start to end.
func (c *Client) Distances(ctx context.Context, start, end, grouping int) (*protocol.Scan, error) {
	return c.Measure(ctx, protocol.ScanRequest{Start: start, End: end, Grouping: grouping})
}

// Intensities takes one distance and intensity measurement of steps
// start to end.
func (c *Client) Intensities(ctx context.Context, start, end, grouping int) (*protocol.Scan, error) {
	return c.Measure(ctx, protocol.ScanRequest{
		Start:     start,
		End:       end,
		Grouping:  grouping,
		Intensity: true,
		Encoding:  protocol.ThreeCharEncoding,
	})
}

// Measure takes one measurement with GD, GE or GS. Skips and Count are
// ignored. The laser must be on.
//
// Example:
//
//	scan, err := c.Measure(ctx, c.FullScan())
func (c *Client) Measure(ctx context.Context, req protocol.ScanRequest) (*protocol.Scan, error) {
	req.Skips, req.Count = 0, 0
	if req.Encoding == 0 {
		req.Encoding = c.config.Encoding
	}

	cmd, err := protocol.SingleScanCmd(req)
	if err != nil {
		return nil, err
	}

	f, err := c.exchange(ctx, "measure", cmd)
	if err != nil {
		return nil, err
	}

	scan, err := protocol.ParseScan(f, req)
	if err != nil {
		return nil, fmt.Errorf("measure: %w", err)
	}

	c.logDebug("scan received",
		"command", cmd.Name(),
		"timestamp", scan.Timestamp,
		"readings", scan.Len(),
	)
	return scan, nil
}

// LaserState returns the current sensor state (%ST).
func (c *Client) LaserState(ctx context.Context) (protocol.LaserState, error) {
	f, err := c.exchange(ctx, "laser state", protocol.LaserStateCmd())
	if err != nil {
		return protocol.LaserState{}, err
	}
	state, err := protocol.ParseLaserState(f)
	if err != nil {
		return protocol.LaserState{}, fmt.Errorf("laser state: %w", err)
	}
	return state, nil
}

// forceStandby brings the sensor to the standby state from any of the
// measuring, sleep or time adjustment states.
func (c *Client) forceStandby(ctx context.Context, op string) error {
	state, err := c.LaserState(ctx)
	if err != nil {
		return err
	}

	switch state.Code {
	case protocol.StateStandby:
		return nil
	case protocol.StateSingleScan, protocol.StateMultiScan, protocol.StateSleep:
		return c.Standby(ctx)
	case protocol.StateTimeAdjust:
		_, err := c.timeSyncCommand(ctx, protocol.TimeSyncExit)
		return err
	}
	return &StateError{Operation: op, Code: state.Code, State: state.Description}
}

// Reset switches the laser off and restores the default motor speed,
// bit rate, timer and sensitivity (RS).
func (c *Client) Reset(ctx context.Context) error {
	c.logInfo("resetting sensor")
	_, err := c.exchange(ctx, "reset", protocol.ResetCmd())
	return err
}

// PartialReset is Reset without touching motor speed and bit rate (RT).
func (c *Client) PartialReset(ctx context.Context) error {
	c.logInfo("partially resetting sensor")
	_, err := c.exchange(ctx, "partial reset", protocol.PartialResetCmd())
	return err
}

// Reboot restarts the sensor. RB has to be sent twice: the first reply
// arms the reboot (01), the second confirms it (00). The connection is
// dropped by the sensor shortly afterwards.
func (c *Client) Reboot(ctx context.Context) error {
	steps := []string{protocol.StatusRebootPending, protocol.StatusOK}
	for i, want := range steps {
		c.logInfo("sending reboot command", "step", i+1)
		f, err := c.exchange(ctx, "reboot", protocol.RebootCmd())
		if err != nil {
			return err
		}
		if f.Status != want {
			return &RebootError{Step: i + 1, Expected: want, Actual: f.Status}
		}
	}
	return nil
}

// Close closes the transport if it implements io.Closer. An armed stream
// is abandoned.
func (c *Client) Close() error {
	c.stream = nil
	if closer, ok := c.device.(io.Closer); ok {
		c.logInfo("closing connection")
		return closer.Close()
	}
	return nil
}

// exchange writes cmd, reads the one frame answering it and checks the
// status against the status table.
func (c *Client) exchange(ctx context.Context, op string, cmd protocol.Command) (*protocol.Frame, error) {
	if c.stream != nil {
		return nil, ErrStreamActive
	}

	release, err := c.bind(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer release()

	if err := c.send(cmd); err != nil {
		return nil, c.wrap(ctx, op, err)
	}

	echo := protocol.ExactEcho(cmd)
	f, err := c.reader.ReadFrame(&echo)
	if err != nil {
		return nil, c.wrap(ctx, op, err)
	}

	if !protocol.IsSuccess(cmd.Name(), f.Status) {
		statusErr := &protocol.StatusError{Operation: op, Command: cmd.Name(), Code: f.Status}
		c.logError("command failed",
			"command", cmd.String(),
			"status", f.Status,
			"description", statusErr.Description(),
		)
		return f, statusErr
	}
	return f, nil
}

// send writes one command line.
func (c *Client) send(cmd protocol.Command) error {
	c.logDebug("sending command", "command", cmd.String())
	if _, err := c.device.Write(cmd.Bytes()); err != nil {
		return &protocol.TransportError{Op: "write", Err: err}
	}
	return nil
}

// bind applies ctx to the transport for the duration of one exchange.
// Deadlines are forwarded when the transport supports them, and
// cancellation unblocks pending reads by expiring the deadline.
func (c *Client) bind(ctx context.Context) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d, ok := c.device.(deadliner)
	if !ok {
		return func() {}, nil
	}

	if deadline, ok := ctx.Deadline(); ok {
		if err := d.SetDeadline(deadline); err != nil {
			return nil, &protocol.TransportError{Op: "set deadline", Err: err}
		}
	}
	fired := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		_ = d.SetDeadline(time.Unix(1, 0))
		close(fired)
	})

	return func() {
		if !stop() {
			<-fired
		}
		_ = d.SetDeadline(time.Time{})
	}, nil
}

// wrap adds op context to err, reporting the context error when the
// exchange was interrupted by ctx.
func (c *Client) wrap(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil && protocol.IsTransportError(err) {
		err = fmt.Errorf("%w: %w", ctxErr, err)
	}
	if protocol.IsDesyncError(err) || protocol.IsTransportError(err) {
		c.logError("exchange failed", "operation", op, "error", err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// sleep pauses for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// logDebug logs a debug message if a logger is configured.
func (c *Client) logDebug(msg string, keysAndValues ...interface{}) {
	if c.config.Logger != nil {
		c.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logInfo logs an info message if a logger is configured.
func (c *Client) logInfo(msg string, keysAndValues ...interface{}) {
	if c.config.Logger != nil {
		c.config.Logger.Info(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (c *Client) logError(msg string, keysAndValues ...interface{}) {
	if c.config.Logger != nil {
		c.config.Logger.Error(msg, keysAndValues...)
	}
}
