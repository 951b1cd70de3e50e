package lidar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moffa90/go-hokuyolx/lidartest"
	"github.com/moffa90/go-hokuyolx/protocol"
)

func TestVersion(t *testing.T) {
	c, _ := newTestClient(t)

	info, err := c.Version(testContext(t))
	require.NoError(t, err)
	assert.Equal(t, "SCIP 2.0", info["PROT"])
	assert.Equal(t, "SOKUIKI Sensor UST-10LX", info["PROD"])
	assert.Equal(t, "Hokuyo Automatic Co., Ltd.", info["VEND"])
}

func TestSensorState(t *testing.T) {
	c, _ := newTestClient(t, lidartest.WithState(protocol.StateSingleScan))

	info, err := c.SensorState(testContext(t))
	require.NoError(t, err)
	assert.Equal(t, "ON", info["LASR"])
	assert.Equal(t, "Stable 000 no error.", info["STAT"])
	assert.Len(t, info["TIME"], 4)
}

func TestUpdateInfo(t *testing.T) {
	c, sensor := newTestClient(t, lidartest.WithModel("UST-30LX"))
	ctx := testContext(t)

	assert.Equal(t, protocol.DefaultParameters(), c.Params())

	require.NoError(t, c.UpdateInfo(ctx))
	p := c.Params()
	assert.Equal(t, "UST-30LX", p.Model)
	assert.Equal(t, protocol.DefaultMaxStep, p.MaxStep)
	assert.InDelta(t, 40.0, p.ScanFrequency(), 1e-9)

	req := c.FullScan()
	assert.Equal(t, p.MinStep, req.Start)
	assert.Equal(t, p.MaxStep, req.End)
	assert.Equal(t, protocol.ThreeCharEncoding, req.Encoding)
	assert.Equal(t, []string{"PP"}, sensor.Received())
}

func TestUpdateInfoFailureKeepsParameters(t *testing.T) {
	c, sensor := newTestClient(t, lidartest.WithModel("UST-30LX"))
	sensor.FailNext(protocol.CmdParameters, "0L")

	err := c.UpdateInfo(testContext(t))
	assert.True(t, protocol.IsStatusError(err))
	assert.Equal(t, protocol.DefaultParameters(), c.Params())
}
