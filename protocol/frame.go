package protocol

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// MaxFrameLines bounds the number of lines accepted in one frame. A full
// 1081-step GE scan needs just over 100 lines.
const MaxFrameLines = 512

// Echo describes the echoed command line expected at the top of a frame.
//
// For single-shot exchanges the echo equals the command line (Prefix only).
// For streamed frames the echo carries a CounterWidth-digit count of scans
// still to come between Prefix and Suffix.
type Echo struct {
	Prefix       string
	CounterWidth int
	Suffix       string
}

// ExactEcho matches the echo of cmd.
func ExactEcho(cmd Command) Echo {
	return Echo{Prefix: cmd.Line()}
}

// Match checks line against the echo. For counted echoes it returns the
// counter value.
func (e Echo) Match(line string) (int, error) {
	mismatch := &DesyncError{
		Expected: e.String(),
		Got:      line,
		Reason:   "echoed command mismatch",
	}

	if e.CounterWidth == 0 {
		if line != e.Prefix+e.Suffix {
			return 0, mismatch
		}
		return 0, nil
	}

	if len(line) != len(e.Prefix)+e.CounterWidth+len(e.Suffix) ||
		!strings.HasPrefix(line, e.Prefix) ||
		!strings.HasSuffix(line, e.Suffix) {
		return 0, mismatch
	}

	counter := line[len(e.Prefix) : len(e.Prefix)+e.CounterWidth]
	n, err := strconv.Atoi(counter)
	if err != nil || n < 0 {
		return 0, mismatch
	}
	return n, nil
}

// resembles reports whether line looks like another echo of the same
// command rather than a checksummed payload line. A line matching the
// echo counts even when its last character happens to verify.
func (e Echo) resembles(line []byte) bool {
	if e.Prefix == "" || !bytes.HasPrefix(line, []byte(e.Prefix)) {
		return false
	}
	if _, err := e.Match(string(line)); err == nil {
		return true
	}
	_, err := VerifyLine(line)
	return err != nil
}

func (e Echo) String() string {
	if e.CounterWidth == 0 {
		return e.Prefix + e.Suffix
	}
	return e.Prefix + strings.Repeat("#", e.CounterWidth) + e.Suffix
}

// Frame is one response unit: echoed command, status and payload lines,
// terminated on the wire by an empty line.
type Frame struct {
	// Echo is the echoed command line
	Echo string

	// Status is the two-character status, checksum already verified
	Status string

	// Lines are the raw payload lines, each still carrying its checksum
	Lines [][]byte
}

// Payload verifies every payload line, strips the checksums and
// concatenates the data in order with no separators.
func (f *Frame) Payload() ([]byte, error) {
	return joinLines(f.Lines)
}

func joinLines(lines [][]byte) ([]byte, error) {
	var out []byte
	for _, line := range lines {
		data, err := VerifyLine(line)
		if err != nil {
			return nil, err
		}
		out = append(out, data...)
	}
	return out, nil
}

// Reader reads frames from a byte stream.
type Reader struct {
	r *bufio.Reader
}

// NewReader returns a Reader reading from r.
func NewReader(r io.Reader) *Reader {
	if br, ok := r.(*bufio.Reader); ok {
		return &Reader{r: br}
	}
	return &Reader{r: bufio.NewReader(r)}
}

// Buffered returns the number of bytes already read from the transport but
// not yet consumed.
func (r *Reader) Buffered() int {
	return r.r.Buffered()
}

// readLine reads up to and including the next line feed and returns the
// line without it. Transport errors are returned as *TransportError.
func (r *Reader) readLine() ([]byte, error) {
	line, err := r.r.ReadBytes(LineFeed)
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			err = io.ErrUnexpectedEOF
		}
		return nil, &TransportError{Op: "read", Err: err}
	}
	return line[:len(line)-1], nil
}

// ReadFrame reads one complete frame. When echo is non-nil the first line
// must match it; a payload line that looks like a new echo of the same
// command means the previous frame lost its terminator and is reported as
// a *DesyncError instead of being merged.
//
// On checksum or echo errors the rest of the frame is still consumed so
// that the stream stays aligned on frame boundaries.
func (r *Reader) ReadFrame(echo *Echo) (*Frame, error) {
	first, err := r.readLine()
	if err != nil {
		return nil, err
	}
	if len(first) == 0 {
		return nil, &DesyncError{Reason: "empty line where a frame was expected"}
	}

	var lines [][]byte
	for {
		line, err := r.readLine()
		if err != nil {
			return nil, err
		}
		if len(line) == 0 {
			break
		}
		if echo != nil && echo.resembles(line) {
			return nil, &DesyncError{
				Expected: "frame terminator",
				Got:      string(line),
				Reason:   "new frame started before the previous one ended",
			}
		}
		if len(lines) >= MaxFrameLines {
			return nil, &DesyncError{Reason: fmt.Sprintf("frame exceeds %d lines", MaxFrameLines)}
		}
		lines = append(lines, line)
	}

	return decodeFrame(first, lines, echo)
}

func decodeFrame(first []byte, lines [][]byte, echo *Echo) (*Frame, error) {
	if echo != nil {
		if _, err := echo.Match(string(first)); err != nil {
			return nil, err
		}
	}

	if len(lines) == 0 {
		return nil, &DesyncError{Got: string(first), Reason: "frame has no status line"}
	}

	status, err := VerifyLine(lines[0])
	if err != nil {
		return nil, err
	}
	if len(status) != StatusLength {
		return nil, &DesyncError{
			Got:    string(lines[0]),
			Reason: fmt.Sprintf("status must be %d characters", StatusLength),
		}
	}

	return &Frame{
		Echo:   string(first),
		Status: string(status),
		Lines:  lines[1:],
	}, nil
}

// ParseFrame parses a raw frame held in memory. The data must contain
// exactly one frame ending with an empty line.
func ParseFrame(raw []byte, echo *Echo) (*Frame, error) {
	if !bytes.HasSuffix(raw, []byte{LineFeed, LineFeed}) {
		return nil, &DesyncError{Reason: "missing frame terminator"}
	}

	src := bytes.NewReader(raw)
	r := NewReader(src)
	f, err := r.ReadFrame(echo)
	if err != nil {
		return nil, err
	}
	if r.Buffered()+src.Len() != 0 {
		return nil, &DesyncError{Reason: "trailing data after frame terminator"}
	}
	return f, nil
}

// EncodeFrame renders a frame the way the sensor transmits it: echo line,
// status with checksum, the payload lines as given, and an empty line.
// It is used to build fixtures and by the fake sensor.
func EncodeFrame(echo, status string, lines ...[]byte) []byte {
	var b bytes.Buffer
	b.WriteString(echo)
	b.WriteByte(LineFeed)
	b.Write(AppendChecksum([]byte(status)))
	b.WriteByte(LineFeed)
	for _, line := range lines {
		b.Write(line)
		b.WriteByte(LineFeed)
	}
	b.WriteByte(LineFeed)
	return b.Bytes()
}
