package lidar

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"testing/iotest"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moffa90/go-hokuyolx/lidar/mocks"
	"github.com/moffa90/go-hokuyolx/protocol"
)

func newMockClient(t *testing.T) (*Client, *mocks.MockTransport) {
	t.Helper()
	ctrl := gomock.NewController(t)
	dev := mocks.NewMockTransport(ctrl)
	return New(dev, WithLogger(NopLogger{})), dev
}

// respond makes dev answer reads from data, one byte per call.
func respond(dev *mocks.MockTransport, data []byte) {
	r := iotest.OneByteReader(bytes.NewReader(data))
	dev.EXPECT().Read(gomock.Any()).DoAndReturn(r.Read).AnyTimes()
}

func TestMockWriteError(t *testing.T) {
	c, dev := newMockClient(t)
	cause := errors.New("broken pipe")
	dev.EXPECT().Write([]byte("BM\n")).Return(0, cause)

	_, err := c.Activate(testContext(t))
	require.Error(t, err)
	assert.True(t, protocol.IsTransportError(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "activate")
}

func TestMockReadError(t *testing.T) {
	c, dev := newMockClient(t)
	dev.EXPECT().Write([]byte("%ST\n")).Return(4, nil)
	dev.EXPECT().Read(gomock.Any()).Return(0, io.ErrClosedPipe)

	_, err := c.LaserState(testContext(t))
	var transportErr *protocol.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, "read", transportErr.Op)
	assert.ErrorIs(t, err, io.ErrClosedPipe)
}

func TestMockEchoMismatch(t *testing.T) {
	c, dev := newMockClient(t)
	dev.EXPECT().Write([]byte("BM\n")).Return(3, nil)
	respond(dev, protocol.EncodeFrame("QT", protocol.StatusOK))

	_, err := c.Activate(testContext(t))
	assert.True(t, protocol.IsDesyncError(err))
}

func TestMockFragmentedReply(t *testing.T) {
	c, dev := newMockClient(t)
	dev.EXPECT().Write([]byte("%ST\n")).Return(4, nil)
	respond(dev, protocol.EncodeFrame("%ST", protocol.StatusOK,
		protocol.AppendChecksum([]byte(protocol.StateSingleScan))))

	state, err := c.LaserState(testContext(t))
	require.NoError(t, err)
	assert.Equal(t, protocol.StateSingleScan, state.Code)
}

func TestMockChecksumError(t *testing.T) {
	c, dev := newMockClient(t)
	dev.EXPECT().Write([]byte("BM\n")).Return(3, nil)
	respond(dev, []byte("BM\n00Q\n\n"))

	_, err := c.Activate(testContext(t))
	assert.True(t, protocol.IsChecksumError(err))
}

func TestMockCloseWithoutCloser(t *testing.T) {
	c, _ := newMockClient(t)
	assert.NoError(t, c.Close())
}
