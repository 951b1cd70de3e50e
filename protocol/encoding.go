package protocol

import "fmt"

// Encoding is the number of characters used to encode one value.
type Encoding int

// Character encodings used by SCIP.
const (
	// TwoCharEncoding packs 12-bit values, used by GS/MS
	TwoCharEncoding Encoding = 2

	// ThreeCharEncoding packs 18-bit values, used by GD/GE/MD/ME
	ThreeCharEncoding Encoding = 3

	// FourCharEncoding packs 24-bit values, used by timestamps
	FourCharEncoding Encoding = 4
)

// Character range of the 6-bit encoding.
const (
	// EncodingOffset is subtracted from every encoded character
	EncodingOffset = 0x30

	// EncodingBits is the number of value bits carried by one character
	EncodingBits = 6

	// EncodingMask keeps the value bits of one character
	EncodingMask = 0x3F
)

// Width returns the number of characters per encoded value.
func (e Encoding) Width() int {
	return int(e)
}

// MaxValue returns the largest value representable in this encoding.
func (e Encoding) MaxValue() uint32 {
	return 1<<(EncodingBits*uint(e)) - 1
}

// Valid reports whether e is one of the known encodings.
func (e Encoding) Valid() bool {
	switch e {
	case TwoCharEncoding, ThreeCharEncoding, FourCharEncoding:
		return true
	}
	return false
}

func (e Encoding) String() string {
	return fmt.Sprintf("%d-char", int(e))
}

// DecodeValue decodes one group of encoded characters, most significant
// character first. Characters outside 0x30..0x6F cannot come from the
// sensor and are reported as a *DesyncError.
func DecodeValue(chars []byte) (uint32, error) {
	var v uint32
	for i, c := range chars {
		if c < EncodingOffset || c > EncodingOffset+EncodingMask {
			return 0, &DesyncError{
				Got:    string(chars),
				Reason: fmt.Sprintf("invalid encoded character 0x%02X at offset %d", c, i),
			}
		}
		v = v<<EncodingBits | uint32(c-EncodingOffset)&EncodingMask
	}
	return v, nil
}

// DecodeValues splits data into groups of enc.Width() characters and decodes
// each group. A length that is not a multiple of the width is a framing
// error; the data is never truncated.
func DecodeValues(data []byte, enc Encoding) ([]uint32, error) {
	if !enc.Valid() {
		return nil, fmt.Errorf("unsupported encoding %d", int(enc))
	}

	width := enc.Width()
	if len(data)%width != 0 {
		return nil, &DesyncError{
			Reason: fmt.Sprintf("payload length %d is not a multiple of %d", len(data), width),
		}
	}

	values := make([]uint32, 0, len(data)/width)
	for i := 0; i < len(data); i += width {
		v, err := DecodeValue(data[i : i+width])
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}

	return values, nil
}

// EncodeValue encodes v with the given encoding.
func EncodeValue(v uint32, enc Encoding) ([]byte, error) {
	if !enc.Valid() {
		return nil, fmt.Errorf("unsupported encoding %d", int(enc))
	}
	if v > enc.MaxValue() {
		return nil, fmt.Errorf("value %d exceeds %s maximum %d", v, enc, enc.MaxValue())
	}

	width := enc.Width()
	out := make([]byte, width)
	for i := width - 1; i >= 0; i-- {
		out[i] = byte(v&EncodingMask) + EncodingOffset
		v >>= EncodingBits
	}

	return out, nil
}

// EncodeValues encodes values back to back with the given encoding.
func EncodeValues(values []uint32, enc Encoding) ([]byte, error) {
	out := make([]byte, 0, len(values)*enc.Width())
	for i, v := range values {
		chars, err := EncodeValue(v, enc)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
		out = append(out, chars...)
	}
	return out, nil
}

// DecodeTimestamp verifies and decodes a timestamp line (4 characters plus
// checksum).
func DecodeTimestamp(line []byte) (uint32, error) {
	data, err := VerifyLine(line)
	if err != nil {
		return 0, err
	}
	if len(data) != FourCharEncoding.Width() {
		return 0, &DesyncError{
			Got:    string(line),
			Reason: fmt.Sprintf("timestamp must be %d characters, got %d", FourCharEncoding.Width(), len(data)),
		}
	}
	return DecodeValue(data)
}

// SplitLines cuts an encoded payload into checksummed lines of at most
// MaxDataLineLength data characters, the way the sensor transmits it.
func SplitLines(data []byte) [][]byte {
	var lines [][]byte
	for len(data) > 0 {
		n := MaxDataLineLength
		if len(data) < n {
			n = len(data)
		}
		lines = append(lines, AppendChecksum(data[:n]))
		data = data[n:]
	}
	return lines
}
