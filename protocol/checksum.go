package protocol

import "bytes"

// Checksum algorithm constants.
const (
	// ChecksumMask keeps the low 6 bits of the byte sum
	ChecksumMask = 0x3F

	// ChecksumOffset shifts the masked sum into the printable range
	ChecksumOffset = 0x30
)

// Checksum computes the SCIP checksum character for a line.
// The line must not include the checksum character or the line feed.
//
// The checksum is the sum of all bytes, masked to 6 bits, plus 0x30.
func Checksum(line []byte) byte {
	var sum int
	for _, b := range line {
		sum += int(b)
	}
	return byte(sum&ChecksumMask) + ChecksumOffset
}

// AppendChecksum returns a copy of line with its checksum character appended.
func AppendChecksum(line []byte) []byte {
	out := make([]byte, 0, len(line)+1)
	out = append(out, line...)
	return append(out, Checksum(line))
}

// VerifyLine checks the trailing checksum character of a payload or status
// line and returns the line without it. A mismatch is reported as a
// *ChecksumError; the data is never corrected.
func VerifyLine(line []byte) ([]byte, error) {
	if len(line) < 2 {
		return nil, &ChecksumError{Line: string(line)}
	}

	data := line[:len(line)-1]
	got := line[len(line)-1]
	want := Checksum(data)
	if got != want {
		return nil, &ChecksumError{
			Line:     string(line),
			Expected: want,
			Actual:   got,
		}
	}

	return data, nil
}

// VerifyInfoLine checks an information line of the form "KEY:value;c"
// returned by the II, VV and PP commands. The checksum covers "KEY:value";
// the separator is excluded. It returns the line without separator and
// checksum.
func VerifyInfoLine(line []byte) ([]byte, error) {
	if len(line) < 3 || line[len(line)-2] != StringSeparator {
		return nil, &DesyncError{
			Got:    string(line),
			Reason: "malformed information line",
		}
	}

	data := line[:len(line)-2]
	got := line[len(line)-1]
	want := Checksum(data)
	if got != want {
		return nil, &ChecksumError{
			Line:     string(line),
			Expected: want,
			Actual:   got,
		}
	}

	return bytes.Clone(data), nil
}
