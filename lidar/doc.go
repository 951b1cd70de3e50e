// Package lidar provides a high-level client for Hokuyo UST-10LX/20LX/30LX
// laser rangefinders.
//
// # Overview
//
// The client drives the SCIP 2.0 command exchange over any byte stream:
//   - Single-shot measurements (GD, GE, GS)
//   - Continuous measurements with explicit stop (MD, ME, MS)
//   - Sensor state, version and parameter queries (%ST, II, VV, PP)
//   - Laser and power control (BM, QT, %SL, RS, RT, RB)
//   - Time synchronization with timestamp wrap detection (TM)
//
// # Basic Usage
//
//	c, err := lidar.Dial(ctx, lidar.DefaultAddress)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Close()
//
//	if _, err := c.Activate(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	scan, err := c.Measure(ctx, c.FullScan())
//
// Any io.ReadWriter works as transport; net.Conn additionally gets
// context deadlines and cancellation applied to its reads and writes.
//
// # Continuous Measurement
//
//	req := c.FullScan()
//	s, err := c.StartStream(ctx, req)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for i := 0; i < 100; i++ {
//	    scan, err := s.Next(ctx)
//	    ...
//	}
//	err = s.Stop(ctx)
//
// While a stream is armed every other command fails with ErrStreamActive.
// Stop discards the frames the sensor had already queued, so the next
// command can be sent as soon as it returns. A stream started with a
// non-zero Count ends by itself and Next returns io.EOF.
//
// # Configuration Options
//
//	c := lidar.New(conn,
//	    lidar.WithLogger(myLogger),
//	    lidar.WithTimeTolerance(500*time.Millisecond),
//	    lidar.WithTimeSyncSamples(20),
//	    lidar.WithEncoding(protocol.TwoCharEncoding),
//	)
//
// The same settings can be loaded from YAML with LoadSettings, and
// Settings.Open connects and runs the usual startup sequence.
//
// # Logging
//
// Without WithLogger the client logs through glog; debug output needs -v=2.
// Pass NopLogger{} to silence it.
//
// # Error Handling
//
// Protocol failures are the typed errors of package protocol
// (ChecksumError, DesyncError, StatusError, TransportError), wrapped with
// the failing operation:
//
//	scan, err := c.Measure(ctx, req)
//	if protocol.IsStatusError(err) {
//	    // the sensor rejected the request
//	}
//	if protocol.IsDesyncError(err) {
//	    // reconnect
//	}
//
// # Thread Safety
//
// Client is not safe for concurrent use. Stream.Scans runs Next in its own
// goroutine; do not use the client until its channel is closed.
package lidar
