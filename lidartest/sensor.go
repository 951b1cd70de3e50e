// Package lidartest provides a fake UST sensor speaking SCIP 2.0, for
// testing code built on package lidar without hardware.
package lidartest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/moffa90/go-hokuyolx/protocol"
)

// Sensor simulates one sensor. The state is shared by all connections.
//
// Supported commands: BM, QT, %SL, %ST, GD/GE/GS, MD/ME/MS, TM0/1/2,
// II, VV, PP, RS, RT and RB. Anything else is answered with status 0E.
type Sensor struct {
	mu          sync.Mutex
	state       string
	start       time.Time
	clock       func() uint32
	distance    func(step int) uint32
	intensity   func(step int) uint32
	interval    time.Duration
	injected    []string
	failures    map[string]string
	rebootArmed bool
	received    []string
	params      []field
	version     []field
}

type field struct {
	key   string
	value string
}

// Option configures a Sensor.
type Option func(*Sensor)

// WithClock replaces the sensor clock. The default counts milliseconds
// since the sensor was created or last reset.
func WithClock(fn func() uint32) Option {
	return func(s *Sensor) {
		s.clock = fn
	}
}

// WithDistances sets the distance reported for each step.
func WithDistances(fn func(step int) uint32) Option {
	return func(s *Sensor) {
		s.distance = fn
	}
}

// WithIntensities sets the intensity reported for each step.
func WithIntensities(fn func(step int) uint32) Option {
	return func(s *Sensor) {
		s.intensity = fn
	}
}

// WithScanInterval sets the pause between two streamed scans.
func WithScanInterval(d time.Duration) Option {
	return func(s *Sensor) {
		s.interval = d
	}
}

// WithState sets the initial laser state code.
func WithState(code string) Option {
	return func(s *Sensor) {
		s.state = code
	}
}

// WithModel sets the model reported by PP and VV.
func WithModel(model string) Option {
	return func(s *Sensor) {
		s.params[0].value = model
		s.version[1].value = "SOKUIKI Sensor " + model
	}
}

// NewSensor returns a fake sensor in the standby state with UST-10LX
// parameters. Distances default to 1000+step mm.
func NewSensor(opts ...Option) *Sensor {
	s := &Sensor{
		state:     protocol.StateStandby,
		start:     time.Now(),
		distance:  func(step int) uint32 { return uint32(1000 + step) },
		intensity: func(step int) uint32 { return uint32(2000 + step%500) },
		failures:  make(map[string]string),
		params: []field{
			{"MODL", "UST-10LX"},
			{"DMIN", strconv.Itoa(protocol.DefaultMinDistance)},
			{"DMAX", strconv.Itoa(protocol.DefaultMaxDistance)},
			{"ARES", strconv.Itoa(protocol.DefaultAngularResolution)},
			{"AMIN", strconv.Itoa(protocol.DefaultMinStep)},
			{"AMAX", strconv.Itoa(protocol.DefaultMaxStep)},
			{"AFRT", strconv.Itoa(protocol.DefaultFrontStep)},
			{"SCAN", "2400"},
		},
		version: []field{
			{"VEND", "Hokuyo Automatic Co., Ltd."},
			{"PROD", "SOKUIKI Sensor UST-10LX"},
			{"FIRM", "4.02"},
			{"PROT", "SCIP 2.0"},
			{"SERI", "H0000001"},
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current laser state code.
func (s *Sensor) State() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Received returns the command lines received so far.
func (s *Sensor) Received() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.received...)
}

// FailNext makes the next command named cmd fail with status.
func (s *Sensor) FailNext(cmd, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[cmd] = status
}

// InjectStatus makes the next n streamed frames carry status instead of
// scan data, e.g. 0M for an unstable sensor. Injected frames do not count
// towards the scans of a bounded stream.
func (s *Sensor) InjectStatus(status string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < n; i++ {
		s.injected = append(s.injected, status)
	}
}

// Pipe starts serving s over an in-memory connection and returns the
// client end.
func Pipe(s *Sensor) net.Conn {
	client, server := net.Pipe()
	go s.ServeConn(server)
	return client
}

// Serve accepts connections on l until it is closed.
func (s *Sensor) Serve(l net.Listener) error {
	for {
		conn, err := l.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		go s.ServeConn(conn)
	}
}

// ServeConn answers commands on conn until the peer disconnects.
func (s *Sensor) ServeConn(conn net.Conn) error {
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)

	lines := make(chan string, 16)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		r := bufio.NewReader(conn)
		for {
			line, err := r.ReadString(protocol.LineFeed)
			if err != nil {
				readErr <- err
				return
			}
			select {
			case lines <- strings.TrimRight(line, "\r\n"):
			case <-done:
				return
			}
		}
	}()

	var st *stream
	for {
		var tick <-chan time.Time
		if st != nil {
			tick = time.After(s.interval)
		}

		select {
		case line, ok := <-lines:
			if !ok {
				if err := <-readErr; !errors.Is(err, io.EOF) {
					return err
				}
				return nil
			}
			frame, next := s.handle(line, st)
			st = next
			if _, err := conn.Write(frame); err != nil {
				return err
			}

		case <-tick:
			frame, last := s.streamFrame(st)
			if last {
				st = nil
			}
			if _, err := conn.Write(frame); err != nil {
				return err
			}
		}
	}
}

// stream is an active MD/ME/MS measurement.
type stream struct {
	req       protocol.ScanRequest
	echo      protocol.Echo
	remaining int
}

func (e *stream) echoLine(counter int) string {
	return fmt.Sprintf("%s%0*d%s", e.echo.Prefix, e.echo.CounterWidth, counter, e.echo.Suffix)
}

// streamFrame renders the next streamed frame and reports whether it is
// the last one of a bounded stream.
func (s *Sensor) streamFrame(st *stream) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.injected) > 0 {
		status := s.injected[0]
		s.injected = s.injected[1:]
		return protocol.EncodeFrame(st.echoLine(st.remaining), status), false
	}

	last := false
	if st.req.Count > 0 {
		st.remaining--
		last = st.remaining == 0
	}
	lines := s.scanLines(st.req)
	return protocol.EncodeFrame(st.echoLine(st.remaining), protocol.StatusScanData, lines...), last
}

// handle answers one command line. It returns the reply frame and the
// stream that is active afterwards.
func (s *Sensor) handle(line string, st *stream) ([]byte, *stream) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.received = append(s.received, line)

	name, params, tag := splitCommand(line)
	reply := func(status string, lines ...[]byte) []byte {
		return protocol.EncodeFrame(line, status, lines...)
	}

	if status, ok := s.failures[name]; ok {
		delete(s.failures, name)
		return reply(status), st
	}
	if name != protocol.CmdReboot {
		s.rebootArmed = false
	}

	switch name {
	case protocol.CmdLaserOn:
		if s.measuring() {
			return reply("02"), st
		}
		s.state = protocol.StateSingleScan
		return reply(protocol.StatusOK), st

	case protocol.CmdLaserOff:
		s.state = protocol.StateStandby
		return reply(protocol.StatusOK), nil

	case protocol.CmdSleep:
		s.state = protocol.StateSleep
		return reply(protocol.StatusOK), nil

	case protocol.CmdLaserState:
		return reply(protocol.StatusOK, protocol.AppendChecksum([]byte(s.state))), st

	case protocol.CmdGetDistance, protocol.CmdGetDistanceIntensity, protocol.CmdGetDistanceShort:
		req, ok := parseScanRequest(name, params, tag)
		if !ok {
			return reply("0H"), st
		}
		if !s.measuring() {
			return reply("10"), st
		}
		return reply(protocol.StatusOK, s.scanLines(req)...), st

	case protocol.CmdMultiDistance, protocol.CmdMultiDistanceIntensity, protocol.CmdMultiDistanceShort:
		req, ok := parseScanRequest(name, params, tag)
		if !ok {
			return reply("0H"), st
		}
		s.state = protocol.StateMultiScan
		return reply(protocol.StatusOK), &stream{
			req:       req,
			echo:      protocol.StreamEchoFor(req),
			remaining: req.Count,
		}

	case protocol.CmdTimeSync:
		return s.timeSync(params, reply), st

	case protocol.CmdSensorState:
		laser := "OFF"
		if s.measuring() {
			laser = "ON"
		}
		ts, _ := protocol.EncodeValue(s.now(), protocol.FourCharEncoding)
		return reply(protocol.StatusOK, infoLines([]field{
			{"MODL", s.params[0].value},
			{"LASR", laser},
			{"SCSP", "Initial(2400[rpm])"},
			{"MESM", "Measuring by Normal Mode"},
			{"SBPS", "Ethernet 100 [Mbps]"},
			{"TIME", string(ts)},
			{"STAT", "Stable 000 no error."},
		})...), st

	case protocol.CmdVersion:
		return reply(protocol.StatusOK, infoLines(s.version)...), st

	case protocol.CmdParameters:
		return reply(protocol.StatusOK, infoLines(s.params)...), st

	case protocol.CmdReset:
		s.state = protocol.StateStandby
		s.start = time.Now()
		return reply(protocol.StatusOK), nil

	case protocol.CmdPartialReset:
		s.state = protocol.StateStandby
		s.start = time.Now()
		return reply(protocol.StatusOK), nil

	case protocol.CmdReboot:
		if !s.rebootArmed {
			s.rebootArmed = true
			return reply(protocol.StatusRebootPending), st
		}
		s.rebootArmed = false
		s.state = protocol.StateStandby
		return reply(protocol.StatusOK), nil
	}

	return reply("0E"), st
}

func (s *Sensor) timeSync(params string, reply func(string, ...[]byte) []byte) []byte {
	switch params {
	case "0":
		if s.state == protocol.StateTimeAdjust {
			return reply("02")
		}
		s.state = protocol.StateTimeAdjust
		return reply(protocol.StatusOK)
	case "1":
		if s.state != protocol.StateTimeAdjust {
			return reply("04")
		}
		ts, _ := protocol.EncodeValue(s.now(), protocol.FourCharEncoding)
		return reply(protocol.StatusOK, protocol.AppendChecksum(ts))
	case "2":
		if s.state != protocol.StateTimeAdjust {
			return reply("03")
		}
		s.state = protocol.StateStandby
		return reply(protocol.StatusOK)
	}
	return reply("01")
}

func (s *Sensor) measuring() bool {
	return s.state == protocol.StateSingleScan || s.state == protocol.StateMultiScan
}

func (s *Sensor) now() uint32 {
	if s.clock != nil {
		return s.clock() % protocol.TimestampModulus
	}
	return uint32(time.Since(s.start).Milliseconds() % protocol.TimestampModulus)
}

// scanLines renders the payload of a scan for req: timestamp line then
// data lines. Values too large for the encoding are clamped.
func (s *Sensor) scanLines(req protocol.ScanRequest) [][]byte {
	enc := req.SampleEncoding()
	clamp := func(v uint32) uint32 {
		if v > enc.MaxValue() {
			return enc.MaxValue()
		}
		return v
	}

	scan := &protocol.Scan{
		Timestamp: s.now(),
		Start:     req.Start,
		End:       req.End,
		Grouping:  req.Grouping,
	}
	for i := 0; i < req.ExpectedSamples(); i++ {
		step := scan.Step(i)
		scan.Distances = append(scan.Distances, clamp(s.distance(step)))
		if req.Intensity {
			scan.Intensities = append(scan.Intensities, clamp(s.intensity(step)))
		}
	}

	lines, err := protocol.EncodeScanLines(scan, enc)
	if err != nil {
		panic(fmt.Sprintf("lidartest: encode scan: %v", err))
	}
	return lines
}

func infoLines(fields []field) [][]byte {
	lines := make([][]byte, 0, len(fields))
	for _, f := range fields {
		body := f.key + string(protocol.InfoSeparator) + f.value
		line := append([]byte(body), protocol.StringSeparator, protocol.Checksum([]byte(body)))
		lines = append(lines, line)
	}
	return lines
}

// splitCommand splits a command line into mnemonic, numeric parameters
// and string parameter.
func splitCommand(line string) (name, params, tag string) {
	body, tag, _ := strings.Cut(line, string(protocol.StringSeparator))
	n := 2
	if strings.HasPrefix(body, "%") {
		n = 3
	}
	if len(body) < n {
		return body, "", tag
	}
	return body[:n], body[n:], tag
}

func parseScanRequest(name, params, tag string) (protocol.ScanRequest, bool) {
	multi := name[0] == 'M'
	want := protocol.StepWidth*2 + protocol.GroupingWidth
	if multi {
		want += protocol.SkipWidth + protocol.CountWidth
	}
	if len(params) != want {
		return protocol.ScanRequest{}, false
	}

	widths := []int{protocol.StepWidth, protocol.StepWidth, protocol.GroupingWidth}
	if multi {
		widths = append(widths, protocol.SkipWidth, protocol.CountWidth)
	}
	values := make([]int, len(widths))
	for i, w := range widths {
		v, err := strconv.Atoi(params[:w])
		if err != nil {
			return protocol.ScanRequest{}, false
		}
		values[i] = v
		params = params[w:]
	}

	req := protocol.ScanRequest{
		Start:     values[0],
		End:       values[1],
		Grouping:  values[2],
		Intensity: name[1] == 'E',
		Encoding:  protocol.ThreeCharEncoding,
		Tag:       tag,
	}
	if name[1] == 'S' {
		req.Encoding = protocol.TwoCharEncoding
	}
	if multi {
		req.Skips = values[3]
		req.Count = values[4]
	}
	return req, req.Validate() == nil
}
