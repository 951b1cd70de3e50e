package lidar

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/moffa90/go-hokuyolx/protocol"
)

// Clock converts 24-bit sensor timestamps into local wall-clock time.
//
// The sensor counts milliseconds since power-up and wraps every
// 2^24 ms (about 4.66 hours). Clock keeps the local time of sensor tick
// zero, measured by Client.TimeSync, and counts the wraps it observes.
// Clock is safe for concurrent use.
type Clock struct {
	mu        sync.Mutex
	tolerance time.Duration
	origin    time.Time
	wraps     int64
	synced    bool
	now       func() time.Time
}

// NewClock returns an unsynchronized clock accepting tolerance between
// converted and local time.
func NewClock(tolerance time.Duration) *Clock {
	return &Clock{tolerance: tolerance, now: time.Now}
}

// SetOrigin sets the local time of sensor tick zero and clears the wrap
// counter.
func (c *Clock) SetOrigin(origin time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.origin = origin
	c.wraps = 0
	c.synced = true
}

// Origin returns the local time of sensor tick zero and whether the
// clock has been synchronized.
func (c *Clock) Origin() (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.origin, c.synced
}

// Wraps returns the number of timestamp wrap-arounds seen since the
// last synchronization.
func (c *Clock) Wraps() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.wraps
}

// Time converts a sensor timestamp to local time.
//
// When the result lags the local clock by nearly a full timestamp period
// the sensor counter has wrapped, and the wrap counter is advanced. Any
// other difference beyond the tolerance returns the converted time
// together with ErrClockDrift; callers usually respond with TimeSync.
func (c *Clock) Time(ts uint32) (time.Time, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.synced {
		return time.Time{}, ErrNotSynchronized
	}

	period := time.Duration(protocol.TimestampModulus) * time.Millisecond
	now := c.now()
	for {
		ticks := int64(ts%protocol.TimestampModulus) + c.wraps*protocol.TimestampModulus
		t := c.origin.Add(time.Duration(ticks) * time.Millisecond)
		dt := now.Sub(t)
		if dt.Abs() <= c.tolerance {
			return t, nil
		}
		if dt > period-c.tolerance {
			c.wraps++
			continue
		}
		return t, fmt.Errorf("%w: timestamp %d is %v away from local time", ErrClockDrift, ts, dt)
	}
}

// TimeSync measures the offset between the sensor clock and the local
// clock and stores it in Clock.
//
// The sensor is brought to standby and switched to the time adjustment
// state (TM0). TimeSyncSamples sensor timestamps are read with TM1,
// TimeSyncInterval apart, and the mean of local minus sensor time becomes
// the clock origin. TM2 then returns the sensor to standby.
func (c *Client) TimeSync(ctx context.Context) error {
	c.logInfo("starting time synchronization")
	if err := c.forceStandby(ctx, "time sync"); err != nil {
		return err
	}

	if _, err := c.timeSyncCommand(ctx, protocol.TimeSyncEnter); err != nil {
		if !protocol.IsStatusError(err) {
			return err
		}
		c.logError("failed to enter time sync mode", "error", err)
	}

	n := c.config.TimeSyncSamples
	var sum int64
	for i := 0; i < n; i++ {
		local := c.clock.now()
		ts, err := c.sensorTime(ctx)
		if err != nil {
			return err
		}
		sum += local.UnixMilli() - int64(ts)

		if i < n-1 {
			if err := sleep(ctx, c.config.TimeSyncInterval); err != nil {
				return fmt.Errorf("time sync: %w", err)
			}
		}
	}

	origin := time.UnixMilli(int64(math.Round(float64(sum) / float64(n))))
	c.clock.SetOrigin(origin)

	if _, err := c.timeSyncCommand(ctx, protocol.TimeSyncExit); err != nil {
		if !protocol.IsStatusError(err) {
			return err
		}
		c.logError("failed to exit time sync mode", "error", err)
	}

	c.logInfo("time sync done", "origin", origin.Format(time.RFC3339Nano), "samples", n)
	return nil
}

// sensorTime reads the sensor clock with TM1.
func (c *Client) sensorTime(ctx context.Context) (uint32, error) {
	f, err := c.timeSyncCommand(ctx, protocol.TimeSyncRead)
	if err != nil {
		return 0, err
	}
	ts, err := protocol.ParseTimeSyncResponse(f)
	if err != nil {
		return 0, fmt.Errorf("time sync: %w", err)
	}
	c.logDebug("sensor time", "timestamp", ts)
	return ts, nil
}

func (c *Client) timeSyncCommand(ctx context.Context, code int) (*protocol.Frame, error) {
	cmd, err := protocol.TimeSyncCmd(code)
	if err != nil {
		return nil, err
	}
	return c.exchange(ctx, "time sync", cmd)
}
