package protocol

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeValue(t *testing.T) {
	tests := []struct {
		name     string
		chars    string
		expected uint32
	}{
		{name: "two-char zero", chars: "00", expected: 0},
		{name: "two-char max", chars: "oo", expected: 4095},
		{name: "two-char 1000", chars: "?X", expected: 1000},
		{name: "three-char 1234", chars: "0CB", expected: 1234},
		{name: "four-char timestamp", chars: "0005", expected: 5},
		{name: "four-char large", chars: "0m2@", expected: 250000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeValue([]byte(tt.chars))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestDecodeValueRejectsInvalidCharacters(t *testing.T) {
	for _, chars := range []string{"0/", "p0", "\n0", "0 "} {
		_, err := DecodeValue([]byte(chars))
		assert.True(t, IsDesyncError(err), "DecodeValue(%q) = %v, want desync", chars, err)
	}
}

func TestDecodeValues(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		enc     Encoding
		want    []uint32
		wantErr bool
	}{
		{
			name: "two-char group",
			data: "00?Xoo",
			enc:  TwoCharEncoding,
			want: []uint32{0, 1000, 4095},
		},
		{
			name: "three-char group",
			data: "0CB000",
			enc:  ThreeCharEncoding,
			want: []uint32{1234, 0},
		},
		{
			name: "empty payload",
			data: "",
			enc:  ThreeCharEncoding,
			want: []uint32{},
		},
		{
			name:    "length not a multiple of width",
			data:    "0CB00",
			enc:     ThreeCharEncoding,
			wantErr: true,
		},
		{
			name:    "odd length two-char",
			data:    "00?",
			enc:     TwoCharEncoding,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeValues([]byte(tt.data), tt.enc)
			if tt.wantErr {
				assert.True(t, IsDesyncError(err), "want framing error, got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeValuesPassesSentinelsThrough(t *testing.T) {
	data, err := EncodeValues([]uint32{0, 1, 65533, 262143}, ThreeCharEncoding)
	require.NoError(t, err)

	got, err := DecodeValues(data, ThreeCharEncoding)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1, 65533, 262143}, got)
}

func TestEncodeValue(t *testing.T) {
	got, err := EncodeValue(1234, ThreeCharEncoding)
	require.NoError(t, err)
	assert.Equal(t, "0CB", string(got))

	_, err = EncodeValue(4096, TwoCharEncoding)
	assert.ErrorContains(t, err, "exceeds")

	_, err = EncodeValue(1, Encoding(5))
	assert.ErrorContains(t, err, "unsupported encoding")
}

func TestSampleCodecIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for _, enc := range []Encoding{TwoCharEncoding, ThreeCharEncoding, FourCharEncoding} {
		for i := 0; i < 200; i++ {
			data := make([]byte, enc.Width()*rng.Intn(40))
			for j := range data {
				data[j] = byte(EncodingOffset + rng.Intn(EncodingMask+1))
			}

			values, err := DecodeValues(data, enc)
			require.NoError(t, err)

			encoded, err := EncodeValues(values, enc)
			require.NoError(t, err)
			require.Equal(t, data, encoded, "%s round trip", enc)
		}
	}
}

func TestSplitLines(t *testing.T) {
	data := make([]byte, 2*MaxDataLineLength+10)
	for i := range data {
		data[i] = byte('0' + i%64)
	}

	lines := SplitLines(data)
	require.Len(t, lines, 3)
	assert.Len(t, lines[0], MaxDataLineLength+1)
	assert.Len(t, lines[1], MaxDataLineLength+1)
	assert.Len(t, lines[2], 11)

	joined, err := joinLines(lines)
	require.NoError(t, err)
	assert.Equal(t, data, joined)
}

func TestDecodeTimestamp(t *testing.T) {
	ts, err := DecodeTimestamp(AppendChecksum([]byte("0m2@")))
	require.NoError(t, err)
	assert.Equal(t, uint32(250000), ts)

	_, err = DecodeTimestamp(AppendChecksum([]byte("0m2")))
	assert.True(t, IsDesyncError(err))

	_, err = DecodeTimestamp([]byte("0m2@0"))
	assert.True(t, IsChecksumError(err))
}
