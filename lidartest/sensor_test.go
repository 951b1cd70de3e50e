package lidartest

import (
	"bufio"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moffa90/go-hokuyolx/protocol"
)

// roundTrip sends line and reads one frame from r.
func roundTrip(t *testing.T, conn net.Conn, r *protocol.Reader, line string) *protocol.Frame {
	t.Helper()
	require.NoError(t, conn.SetDeadline(time.Now().Add(5*time.Second)))
	_, err := conn.Write([]byte(line + "\n"))
	require.NoError(t, err)
	f, err := r.ReadFrame(nil)
	require.NoError(t, err)
	return f
}

func TestSensorCommands(t *testing.T) {
	s := NewSensor(WithClock(func() uint32 { return 42 }))
	conn := Pipe(s)
	defer conn.Close()
	r := protocol.NewReader(bufio.NewReader(conn))

	tests := []struct {
		line       string
		wantStatus string
		wantState  string
	}{
		{"GD0000108000", "10", protocol.StateStandby},
		{"BM", "00", protocol.StateSingleScan},
		{"BM", "02", protocol.StateSingleScan},
		{"GD0000001000", "00", protocol.StateSingleScan},
		{"GD00000010", "0H", protocol.StateSingleScan},
		{"QT", "00", protocol.StateStandby},
		{"TM1", "04", protocol.StateStandby},
		{"TM0", "00", protocol.StateTimeAdjust},
		{"TM0", "02", protocol.StateTimeAdjust},
		{"TM1", "00", protocol.StateTimeAdjust},
		{"TM2", "00", protocol.StateStandby},
		{"TM2", "03", protocol.StateStandby},
		{"XX", "0E", protocol.StateStandby},
		{"%SL", "00", protocol.StateSleep},
		{"RS", "00", protocol.StateStandby},
	}

	for _, tt := range tests {
		f := roundTrip(t, conn, r, tt.line)
		assert.Equal(t, tt.line, f.Echo)
		assert.Equal(t, tt.wantStatus, f.Status, tt.line)
		assert.Equal(t, tt.wantState, s.State(), tt.line)
	}
	assert.Len(t, s.Received(), len(tests))
}

func TestSensorScanPayload(t *testing.T) {
	s := NewSensor(
		WithState(protocol.StateSingleScan),
		WithClock(func() uint32 { return 777 }),
		WithDistances(func(step int) uint32 { return 70000 }),
	)
	conn := Pipe(s)
	defer conn.Close()
	r := protocol.NewReader(conn)

	req := protocol.ScanRequest{Start: 0, End: 9, Encoding: protocol.TwoCharEncoding}
	f := roundTrip(t, conn, r, "GS0000000900")
	scan, err := protocol.ParseScan(f, req)
	require.NoError(t, err)
	assert.Equal(t, uint32(777), scan.Timestamp)
	for _, d := range scan.Distances {
		assert.Equal(t, protocol.TwoCharEncoding.MaxValue(), d, "values are clamped to the encoding")
	}
}

func TestSensorOneShotFailureAndReboot(t *testing.T) {
	s := NewSensor()
	conn := Pipe(s)
	defer conn.Close()
	r := protocol.NewReader(conn)

	s.FailNext(protocol.CmdLaserOn, "01")
	assert.Equal(t, "01", roundTrip(t, conn, r, "BM").Status)
	assert.Equal(t, "00", roundTrip(t, conn, r, "BM").Status)

	assert.Equal(t, protocol.StatusRebootPending, roundTrip(t, conn, r, "RB").Status)
	assert.Equal(t, "00", roundTrip(t, conn, r, "VV").Status)
	assert.Equal(t, protocol.StatusRebootPending, roundTrip(t, conn, r, "RB").Status, "another command disarms the reboot")
	assert.Equal(t, "00", roundTrip(t, conn, r, "RB").Status)
}

func TestSensorServe(t *testing.T) {
	s := NewSensor()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- s.Serve(l) }()

	conn, err := net.Dial("tcp", l.Addr().String())
	require.NoError(t, err)
	r := protocol.NewReader(conn)
	f := roundTrip(t, conn, r, "%ST")
	assert.Equal(t, "00", f.Status)
	conn.Close()

	l.Close()
	assert.NoError(t, <-done)
}
