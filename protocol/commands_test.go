package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCommand(t *testing.T) {
	tests := []struct {
		name     string
		cmdName  string
		params   []Param
		str      string
		wantLine string
		wantErr  bool
		errMsg   string
	}{
		{
			name:     "bare two-char command",
			cmdName:  "BM",
			wantLine: "BM",
		},
		{
			name:     "percent command",
			cmdName:  "%ST",
			wantLine: "%ST",
		},
		{
			name:     "zero padded params",
			cmdName:  "GD",
			params:   []Param{{Value: 0, Width: 4}, {Value: 1080, Width: 4}, {Value: 1, Width: 2}},
			wantLine: "GD0000108001",
		},
		{
			name:     "string parameter",
			cmdName:  "BM",
			str:      "host1",
			wantLine: "BM;host1",
		},
		{
			name:    "one char name",
			cmdName: "B",
			wantErr: true,
			errMsg:  "two chars",
		},
		{
			name:    "three chars without percent",
			cmdName: "BMX",
			wantErr: true,
			errMsg:  "two chars",
		},
		{
			name:    "param overflows width",
			cmdName: "GD",
			params:  []Param{{Value: 10000, Width: 4}},
			wantErr: true,
			errMsg:  "does not fit",
		},
		{
			name:    "negative param",
			cmdName: "GD",
			params:  []Param{{Value: -1, Width: 4}},
			wantErr: true,
			errMsg:  "does not fit",
		},
		{
			name:    "string too long",
			cmdName: "BM",
			str:     "0123456789abcdefg",
			wantErr: true,
			errMsg:  "exceeds",
		},
		{
			name:    "string with separator",
			cmdName: "BM",
			str:     "a;b",
			wantErr: true,
			errMsg:  "invalid character",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := NewCommand(tt.cmdName, tt.params, tt.str)
			if tt.wantErr {
				assert.ErrorContains(t, err, tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLine, cmd.Line())
			assert.Equal(t, tt.wantLine+"\n", string(cmd.Bytes()))
			assert.Equal(t, tt.cmdName, cmd.Name())
		})
	}
}

func TestCommandIsImmutable(t *testing.T) {
	params := []Param{{Value: 1, Width: 2}}
	cmd, err := NewCommand("GD", params, "")
	require.NoError(t, err)

	params[0].Value = 2
	assert.Equal(t, "GD01", cmd.Line())
}

func TestSimpleCommands(t *testing.T) {
	tests := []struct {
		cmd  Command
		want string
	}{
		{LaserOnCmd(), "BM\n"},
		{LaserOffCmd(), "QT\n"},
		{SleepCmd(), "%SL\n"},
		{LaserStateCmd(), "%ST\n"},
		{ResetCmd(), "RS\n"},
		{PartialResetCmd(), "RT\n"},
		{RebootCmd(), "RB\n"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, string(tt.cmd.Bytes()))
	}
}

func TestInfoAndTimeSyncCmd(t *testing.T) {
	for _, name := range []string{CmdSensorState, CmdVersion, CmdParameters} {
		cmd, err := InfoCmd(name)
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Line())
	}
	_, err := InfoCmd("GD")
	assert.Error(t, err)

	cmd, err := TimeSyncCmd(TimeSyncRead)
	require.NoError(t, err)
	assert.Equal(t, "TM1", cmd.Line())

	_, err = TimeSyncCmd(3)
	assert.Error(t, err)
}

func TestSingleScanCmd(t *testing.T) {
	tests := []struct {
		name    string
		req     ScanRequest
		want    string
		wantErr string
	}{
		{
			name: "distance",
			req:  ScanRequest{Start: 0, End: 1080},
			want: "GD0000108000",
		},
		{
			name: "distance and intensity",
			req:  ScanRequest{Start: 44, End: 725, Grouping: 1, Intensity: true},
			want: "GE0044072501",
		},
		{
			name: "two-char distance",
			req:  ScanRequest{Start: 0, End: 1080, Grouping: 3, Encoding: TwoCharEncoding},
			want: "GS0000108003",
		},
		{
			name: "tagged",
			req:  ScanRequest{Start: 10, End: 20, Tag: "t1"},
			want: "GD0010002000;t1",
		},
		{
			name:    "end before start",
			req:     ScanRequest{Start: 100, End: 10},
			wantErr: "smaller than start",
		},
		{
			name:    "intensity with two-char encoding",
			req:     ScanRequest{End: 10, Intensity: true, Encoding: TwoCharEncoding},
			wantErr: "intensity requires",
		},
		{
			name:    "grouping out of range",
			req:     ScanRequest{End: 10, Grouping: 100},
			wantErr: "grouping",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := SingleScanCmd(tt.req)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cmd.Line())
		})
	}
}

func TestMultiScanCmd(t *testing.T) {
	tests := []struct {
		name string
		req  ScanRequest
		want string
	}{
		{
			name: "unbounded distance",
			req:  ScanRequest{Start: 0, End: 1080},
			want: "MD0000108000000",
		},
		{
			name: "bounded intensity with skips",
			req:  ScanRequest{Start: 0, End: 1080, Grouping: 1, Skips: 2, Count: 10, Intensity: true},
			want: "ME0000108001210",
		},
		{
			name: "two-char bounded",
			req:  ScanRequest{Start: 0, End: 100, Count: 3, Encoding: TwoCharEncoding},
			want: "MS0000010000003",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := MultiScanCmd(tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cmd.Line())
		})
	}

	_, err := MultiScanCmd(ScanRequest{End: 10, Count: 100})
	assert.ErrorContains(t, err, "count")
}

func TestStreamEchoFor(t *testing.T) {
	req := ScanRequest{Start: 0, End: 1080, Count: 3, Tag: "x"}
	echo := StreamEchoFor(req)

	n, err := echo.Match("MD0000108000002;x")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	for _, bad := range []string{
		"MD0000108000002",
		"MD0000108001002;x",
		"MD00001080000AB;x",
		"GD0000108000;x",
	} {
		_, err := echo.Match(bad)
		assert.True(t, IsDesyncError(err), "Match(%q) = %v", bad, err)
	}
}

func TestExpectedSamples(t *testing.T) {
	assert.Equal(t, 1081, ScanRequest{Start: 0, End: 1080}.ExpectedSamples())
	assert.Equal(t, 1081, ScanRequest{Start: 0, End: 1080, Grouping: 1}.ExpectedSamples())
	assert.Equal(t, 361, ScanRequest{Start: 0, End: 1080, Grouping: 3}.ExpectedSamples())
	assert.Equal(t, 2, ScanRequest{Start: 0, End: 2, Grouping: 2}.ExpectedSamples())
}
