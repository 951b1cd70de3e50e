package lidar

import (
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moffa90/go-hokuyolx/lidartest"
	"github.com/moffa90/go-hokuyolx/protocol"
)

func TestLoadSettings(t *testing.T) {
	doc := `
address: 10.0.0.7:10940
dial_timeout: 2s
time_tolerance: 500ms
encoding: 2
time_sync:
  samples: 4
  interval: 20ms
startup:
  activate: false
`
	s, err := LoadSettings(strings.NewReader(doc))
	require.NoError(t, err)

	want := DefaultSettings()
	want.Address = "10.0.0.7:10940"
	want.DialTimeout = 2 * time.Second
	want.TimeTolerance = 500 * time.Millisecond
	want.Encoding = protocol.TwoCharEncoding
	want.TimeSync = TimeSyncSettings{Samples: 4, Interval: 20 * time.Millisecond}
	want.Startup.Activate = false
	assert.Equal(t, &want, s)
}

func TestLoadSettingsEmpty(t *testing.T) {
	s, err := LoadSettings(strings.NewReader(""))
	require.NoError(t, err)
	want := DefaultSettings()
	assert.Equal(t, &want, s)
}

func TestLoadSettingsErrors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{"unknown key", "adress: 10.0.0.7:10940\n", "parse settings"},
		{"bad duration", "dial_timeout: soon\n", "parse settings"},
		{"empty address", "address: \"\"\n", "address is required"},
		{"zero dial timeout", "dial_timeout: 0s\n", "dial_timeout must be positive"},
		{"negative tolerance", "time_tolerance: -1s\n", "time_tolerance must be positive"},
		{"four char encoding", "encoding: 4\n", "encoding must be 2 or 3"},
		{"no samples", "time_sync:\n  samples: 0\n", "time_sync.samples must be positive"},
		{"negative interval", "time_sync:\n  interval: -5ms\n", "time_sync.interval must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSettings(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadSettingsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lidar.yaml")
	require.NoError(t, os.WriteFile(path, []byte("address: 127.0.0.1:10940\n"), 0o644))

	s, err := LoadSettingsFile(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:10940", s.Address)

	_, err = LoadSettingsFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSettingsOptions(t *testing.T) {
	s := DefaultSettings()
	s.TimeTolerance = time.Second
	s.Encoding = protocol.TwoCharEncoding
	s.TimeSync.Samples = 7

	c := New(lidartest.Pipe(lidartest.NewSensor()), s.Options()...)
	defer c.Close()

	assert.Equal(t, time.Second, c.config.TimeTolerance)
	assert.Equal(t, protocol.TwoCharEncoding, c.config.Encoding)
	assert.Equal(t, 7, c.config.TimeSyncSamples)
	assert.Equal(t, s.DialTimeout, c.config.DialTimeout)
	assert.Equal(t, time.Second, c.Clock().tolerance)
}

// listen serves sensor on a loopback TCP port and returns its address.
func listen(t *testing.T, sensor *lidartest.Sensor) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	go sensor.Serve(l)
	return l.Addr().String()
}

func TestDial(t *testing.T) {
	sensor := lidartest.NewSensor()
	addr := listen(t, sensor)
	ctx := testContext(t)

	c, err := Dial(ctx, addr, WithLogger(NopLogger{}))
	require.NoError(t, err)
	defer c.Close()

	state, err := c.LaserState(ctx)
	require.NoError(t, err)
	assert.Equal(t, protocol.StateStandby, state.Code)
}

func TestDialRefused(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	l.Close()

	_, err = Dial(testContext(t), addr, WithLogger(NopLogger{}))
	var transportErr *protocol.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, "dial", transportErr.Op)
}

func TestSettingsOpen(t *testing.T) {
	sensor := lidartest.NewSensor(lidartest.WithModel("UST-20LX"))
	ctx := testContext(t)

	s := DefaultSettings()
	s.Address = listen(t, sensor)
	s.TimeSync.Samples = 2
	s.TimeSync.Interval = 0

	c, err := s.Open(ctx, WithLogger(NopLogger{}))
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, []string{"%ST", "TM0", "TM1", "TM1", "TM2", "PP", "BM"}, sensor.Received())
	assert.Equal(t, "UST-20LX", c.Params().Model)
	assert.Equal(t, protocol.StateSingleScan, sensor.State())

	_, synced := c.Clock().Origin()
	assert.True(t, synced)
}

func TestSettingsOpenStartupFailure(t *testing.T) {
	sensor := lidartest.NewSensor()
	sensor.FailNext(protocol.CmdParameters, "0L")
	ctx := testContext(t)

	s := DefaultSettings()
	s.Address = listen(t, sensor)
	s.Startup.TimeSync = false

	_, err := s.Open(ctx, WithLogger(NopLogger{}))
	var statusErr *protocol.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, protocol.CmdParameters, statusErr.Command)
	assert.Equal(t, []string{"PP"}, sensor.Received())
}
