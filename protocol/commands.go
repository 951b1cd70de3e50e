package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// Param is one fixed-width numeric command parameter.
type Param struct {
	Value int
	Width int
}

// Command is an immutable SCIP request: a mnemonic, zero-padded numeric
// parameters and an optional string parameter.
type Command struct {
	name   string
	params []Param
	str    string
}

// NewCommand validates and builds a command.
//
// The name must be two characters, or three characters starting with '%'.
// Each parameter must be non-negative and fit its width. The optional
// string parameter is limited to MaxStringLength printable characters.
//
// Wire format:
//
//	NAME[PARAM...][;STRING]\n
func NewCommand(name string, params []Param, str string) (Command, error) {
	if !(len(name) == 2 || (len(name) == 3 && name[0] == '%')) {
		return Command{}, fmt.Errorf("command must be two chars or three chars starting with %%, got %q", name)
	}

	for i, p := range params {
		if p.Width <= 0 {
			return Command{}, fmt.Errorf("%s parameter %d: invalid width %d", name, i, p.Width)
		}
		if p.Value < 0 || len(strconv.Itoa(p.Value)) > p.Width {
			return Command{}, fmt.Errorf("%s parameter %d: value %d does not fit %d digits", name, i, p.Value, p.Width)
		}
	}

	if len(str) > MaxStringLength {
		return Command{}, fmt.Errorf("%s string parameter exceeds %d characters", name, MaxStringLength)
	}
	for _, c := range str {
		if c < 0x20 || c > 0x7E || c == StringSeparator {
			return Command{}, fmt.Errorf("%s string parameter contains invalid character %q", name, c)
		}
	}

	return Command{
		name:   name,
		params: append([]Param(nil), params...),
		str:    str,
	}, nil
}

func mustCommand(name string, params ...Param) Command {
	cmd, err := NewCommand(name, params, "")
	if err != nil {
		panic(err)
	}
	return cmd
}

// Name returns the command mnemonic.
func (c Command) Name() string {
	return c.name
}

// StringParam returns the optional string parameter.
func (c Command) StringParam() string {
	return c.str
}

// Line returns the command line without the terminating line feed. The
// sensor echoes exactly this line.
func (c Command) Line() string {
	var b strings.Builder
	b.WriteString(c.name)
	for _, p := range c.params {
		fmt.Fprintf(&b, "%0*d", p.Width, p.Value)
	}
	if c.str != "" {
		b.WriteByte(StringSeparator)
		b.WriteString(c.str)
	}
	return b.String()
}

// Bytes returns the command ready to be written to the transport.
func (c Command) Bytes() []byte {
	return append([]byte(c.Line()), LineFeed)
}

func (c Command) String() string {
	return c.Line()
}

// LaserOnCmd builds BM, which lights the laser.
func LaserOnCmd() Command { return mustCommand(CmdLaserOn) }

// LaserOffCmd builds QT, which turns the laser off and stops streaming.
func LaserOffCmd() Command { return mustCommand(CmdLaserOff) }

// SleepCmd builds %SL.
func SleepCmd() Command { return mustCommand(CmdSleep) }

// LaserStateCmd builds %ST.
func LaserStateCmd() Command { return mustCommand(CmdLaserState) }

// ResetCmd builds RS.
func ResetCmd() Command { return mustCommand(CmdReset) }

// PartialResetCmd builds RT.
func PartialResetCmd() Command { return mustCommand(CmdPartialReset) }

// RebootCmd builds RB.
func RebootCmd() Command { return mustCommand(CmdReboot) }

// InfoCmd builds one of the information commands II, VV or PP.
func InfoCmd(name string) (Command, error) {
	switch name {
	case CmdSensorState, CmdVersion, CmdParameters:
		return NewCommand(name, nil, "")
	}
	return Command{}, fmt.Errorf("%q is not an information command", name)
}

// TimeSyncCmd builds TM with the given control code.
func TimeSyncCmd(code int) (Command, error) {
	if code < TimeSyncEnter || code > TimeSyncExit {
		return Command{}, fmt.Errorf("invalid time sync control code %d", code)
	}
	return NewCommand(CmdTimeSync, []Param{{Value: code, Width: 1}}, "")
}

// ScanRequest describes a single-shot or continuous measurement.
type ScanRequest struct {
	// Start is the first step to measure
	Start int

	// End is the last step to measure (inclusive)
	End int

	// Grouping is the number of adjacent steps merged into one value;
	// 0 and 1 both mean no grouping
	Grouping int

	// Skips is the number of scans skipped between two transmitted
	// scans (continuous mode only)
	Skips int

	// Count is the number of scans to transmit, 0 for unbounded
	// (continuous mode only)
	Count int

	// Intensity requests intensity values alongside distances
	Intensity bool

	// Encoding selects 2- or 3-character sample encoding;
	// zero means ThreeCharEncoding
	Encoding Encoding

	// Tag is an optional string parameter echoed by the sensor
	Tag string
}

// SampleEncoding returns the encoding used for the request's samples.
func (r ScanRequest) SampleEncoding() Encoding {
	if r.Encoding == 0 {
		return ThreeCharEncoding
	}
	return r.Encoding
}

// ExpectedSamples returns the number of values per channel the sensor
// reports for this request.
func (r ScanRequest) ExpectedSamples() int {
	g := r.Grouping
	if g <= 1 {
		g = 1
	}
	steps := r.End - r.Start + 1
	return (steps + g - 1) / g
}

// Validate checks the request against the parameter ranges of the protocol.
func (r ScanRequest) Validate() error {
	switch {
	case r.Start < 0 || r.Start > MaxStep:
		return fmt.Errorf("start step %d out of range 0-%d", r.Start, MaxStep)
	case r.End < 0 || r.End > MaxStep:
		return fmt.Errorf("end step %d out of range 0-%d", r.End, MaxStep)
	case r.End < r.Start:
		return fmt.Errorf("end step %d is smaller than start step %d", r.End, r.Start)
	case r.Grouping < 0 || r.Grouping > MaxGrouping:
		return fmt.Errorf("grouping %d out of range 0-%d", r.Grouping, MaxGrouping)
	case r.Skips < 0 || r.Skips > MaxSkips:
		return fmt.Errorf("skips %d out of range 0-%d", r.Skips, MaxSkips)
	case r.Count < 0 || r.Count > MaxCount:
		return fmt.Errorf("count %d out of range 0-%d", r.Count, MaxCount)
	}

	switch r.SampleEncoding() {
	case ThreeCharEncoding:
	case TwoCharEncoding:
		if r.Intensity {
			return fmt.Errorf("intensity requires %s", ThreeCharEncoding)
		}
	default:
		return fmt.Errorf("unsupported sample encoding %s", r.SampleEncoding())
	}

	return nil
}

func (r ScanRequest) rangeParams() []Param {
	return []Param{
		{Value: r.Start, Width: StepWidth},
		{Value: r.End, Width: StepWidth},
		{Value: r.Grouping, Width: GroupingWidth},
	}
}

// SingleScanName returns GD, GE or GS for the request.
func (r ScanRequest) SingleScanName() string {
	switch {
	case r.Intensity:
		return CmdGetDistanceIntensity
	case r.SampleEncoding() == TwoCharEncoding:
		return CmdGetDistanceShort
	}
	return CmdGetDistance
}

// MultiScanName returns MD, ME or MS for the request.
func (r ScanRequest) MultiScanName() string {
	switch {
	case r.Intensity:
		return CmdMultiDistanceIntensity
	case r.SampleEncoding() == TwoCharEncoding:
		return CmdMultiDistanceShort
	}
	return CmdMultiDistance
}

// SingleScanCmd builds a GD, GE or GS command.
//
// Wire format:
//
//	GD[START(4)][END(4)][GROUPING(2)][;TAG]
func SingleScanCmd(r ScanRequest) (Command, error) {
	if err := r.Validate(); err != nil {
		return Command{}, err
	}
	return NewCommand(r.SingleScanName(), r.rangeParams(), r.Tag)
}

// MultiScanCmd builds an MD, ME or MS command.
//
// Wire format:
//
//	MD[START(4)][END(4)][GROUPING(2)][SKIPS(1)][COUNT(2)][;TAG]
func MultiScanCmd(r ScanRequest) (Command, error) {
	if err := r.Validate(); err != nil {
		return Command{}, err
	}
	params := append(r.rangeParams(),
		Param{Value: r.Skips, Width: SkipWidth},
		Param{Value: r.Count, Width: CountWidth},
	)
	return NewCommand(r.MultiScanName(), params, r.Tag)
}

// StreamEchoFor returns the echo pattern of frames streamed in response to
// the continuous command built from r. Streamed frames repeat the command
// with the count field replaced by the number of scans still to come.
func StreamEchoFor(r ScanRequest) Echo {
	var b strings.Builder
	b.WriteString(r.MultiScanName())
	for _, p := range r.rangeParams() {
		fmt.Fprintf(&b, "%0*d", p.Width, p.Value)
	}
	fmt.Fprintf(&b, "%0*d", SkipWidth, r.Skips)

	e := Echo{Prefix: b.String(), CounterWidth: CountWidth}
	if r.Tag != "" {
		e.Suffix = string(StringSeparator) + r.Tag
	}
	return e
}
