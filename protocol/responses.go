package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseScan decodes a scan frame answering r.
//
// Payload format:
//
//	[TIMESTAMP(4)][SUM]
//	[DATA(<=64)][SUM]
//	...
//
// With intensity the data alternates distance and intensity values.
// Nothing is returned unless every line verifies and the sample count
// matches the request.
func ParseScan(f *Frame, r ScanRequest) (*Scan, error) {
	if len(f.Lines) == 0 {
		return nil, &DesyncError{Got: f.Echo, Reason: "scan frame has no timestamp"}
	}

	ts, err := DecodeTimestamp(f.Lines[0])
	if err != nil {
		return nil, err
	}

	data, err := joinLines(f.Lines[1:])
	if err != nil {
		return nil, err
	}

	values, err := DecodeValues(data, r.SampleEncoding())
	if err != nil {
		return nil, err
	}

	perStep := 1
	if r.Intensity {
		perStep = 2
	}
	want := r.ExpectedSamples()
	if len(values) != want*perStep {
		return nil, &DesyncError{
			Got:    f.Echo,
			Reason: fmt.Sprintf("scan carries %d values, expected %d", len(values), want*perStep),
		}
	}

	scan := &Scan{
		Timestamp: ts,
		Start:     r.Start,
		End:       r.End,
		Grouping:  r.Grouping,
	}

	if !r.Intensity {
		scan.Distances = values
		return scan, nil
	}

	scan.Distances = make([]uint32, want)
	scan.Intensities = make([]uint32, want)
	for i := 0; i < want; i++ {
		scan.Distances[i] = values[2*i]
		scan.Intensities[i] = values[2*i+1]
	}
	return scan, nil
}

// EncodeScanLines renders the payload lines of a scan frame: the
// timestamp line followed by the sample data split into checksummed lines.
// It is the inverse of ParseScan and is used to build fixtures.
func EncodeScanLines(s *Scan, enc Encoding) ([][]byte, error) {
	ts, err := EncodeValue(s.Timestamp%TimestampModulus, FourCharEncoding)
	if err != nil {
		return nil, err
	}

	values := s.Distances
	if s.Intensities != nil {
		if len(s.Intensities) != len(s.Distances) {
			return nil, fmt.Errorf("scan has %d distances but %d intensities", len(s.Distances), len(s.Intensities))
		}
		values = make([]uint32, 0, 2*len(s.Distances))
		for i := range s.Distances {
			values = append(values, s.Distances[i], s.Intensities[i])
		}
	}

	data, err := EncodeValues(values, enc)
	if err != nil {
		return nil, err
	}

	lines := [][]byte{AppendChecksum(ts)}
	return append(lines, SplitLines(data)...), nil
}

// ParseInfo decodes the "KEY:value;c" lines of an II, VV or PP response.
func ParseInfo(f *Frame) (map[string]string, error) {
	info := make(map[string]string, len(f.Lines))
	for _, line := range f.Lines {
		data, err := VerifyInfoLine(line)
		if err != nil {
			return nil, err
		}
		key, value, ok := strings.Cut(string(data), string(InfoSeparator))
		if !ok {
			return nil, &DesyncError{Got: string(line), Reason: "information line has no key separator"}
		}
		info[key] = value
	}
	return info, nil
}

// ParseParameters extracts the sensor parameters from a PP response.
// Keys missing from the response keep their default values.
func ParseParameters(info map[string]string) (*Parameters, error) {
	p := DefaultParameters()

	if v, ok := info["MODL"]; ok {
		p.Model = v
	}

	fields := []struct {
		key string
		dst *int
	}{
		{"DMIN", &p.MinDistance},
		{"DMAX", &p.MaxDistance},
		{"ARES", &p.AngularResolution},
		{"AMIN", &p.MinStep},
		{"AMAX", &p.MaxStep},
		{"AFRT", &p.FrontStep},
		{"SCAN", &p.ScanRPM},
	}
	for _, field := range fields {
		v, ok := info[field.key]
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: invalid value %q", field.key, v)
		}
		*field.dst = n
	}

	return &p, nil
}

// ParseLaserState decodes a %ST response. The state line is normally
// checksummed; a bare 3-character code is accepted as well.
func ParseLaserState(f *Frame) (LaserState, error) {
	if len(f.Lines) == 0 {
		return LaserState{}, &DesyncError{Got: f.Echo, Reason: "laser state frame has no payload"}
	}

	line := f.Lines[0]
	if len(line) > 3 {
		data, err := VerifyLine(line)
		if err != nil {
			return LaserState{}, err
		}
		line = data
	}
	if len(line) < 3 {
		return LaserState{}, &DesyncError{Got: string(f.Lines[0]), Reason: "laser state code too short"}
	}

	state, ok := LookupLaserState(string(line[:3]))
	if !ok {
		return LaserState{}, fmt.Errorf("unknown laser state code %q", line[:3])
	}
	return state, nil
}

// ParseTimeSyncResponse decodes the sensor clock from a TM1 response.
func ParseTimeSyncResponse(f *Frame) (uint32, error) {
	if len(f.Lines) == 0 {
		return 0, &DesyncError{Got: f.Echo, Reason: "time response has no timestamp"}
	}
	return DecodeTimestamp(f.Lines[0])
}
