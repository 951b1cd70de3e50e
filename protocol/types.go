package protocol

// Scan is one decoded measurement.
type Scan struct {
	// Timestamp is the sensor clock in milliseconds; it wraps at
	// TimestampModulus
	Timestamp uint32

	// Distances are in millimeters, one per (grouped) step. Values below
	// the sensor's minimum distance are error codes and are passed through
	Distances []uint32

	// Intensities are raw device units; nil unless intensity was requested
	Intensities []uint32

	// Start, End and Grouping are the step range the scan covers
	Start    int
	End      int
	Grouping int

	// Remaining is the number of scans the sensor still has to send in a
	// bounded stream; always 0 for single-shot and unbounded scans
	Remaining int
}

// Len returns the number of readings in the scan.
func (s *Scan) Len() int {
	return len(s.Distances)
}

// Step returns the step number of the i-th reading.
func (s *Scan) Step(i int) int {
	g := s.Grouping
	if g <= 1 {
		g = 1
	}
	return s.Start + i*g
}

// Reading is one filtered measurement point.
type Reading struct {
	Step      int
	Distance  uint32
	Intensity uint32
}

// Filter bounds the readings returned by Scan.Readings. Zero bounds are
// ignored; intensity bounds only apply to scans carrying intensities.
type Filter struct {
	MinDistance  uint32
	MaxDistance  uint32
	MinIntensity uint32
	MaxIntensity uint32
}

// Readings returns the scan's readings that pass f, with their step numbers.
func (s *Scan) Readings(f Filter) []Reading {
	out := make([]Reading, 0, len(s.Distances))
	for i, d := range s.Distances {
		if f.MinDistance != 0 && d < f.MinDistance {
			continue
		}
		if f.MaxDistance != 0 && d > f.MaxDistance {
			continue
		}

		r := Reading{Step: s.Step(i), Distance: d}
		if s.Intensities != nil {
			r.Intensity = s.Intensities[i]
			if f.MinIntensity != 0 && r.Intensity < f.MinIntensity {
				continue
			}
			if f.MaxIntensity != 0 && r.Intensity > f.MaxIntensity {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

// Parameters contains the sensor internal parameters reported by PP.
type Parameters struct {
	// Model is the sensor model, e.g. "UST-10LX"
	Model string

	// MinDistance and MaxDistance are the measurable range in millimeters
	MinDistance int
	MaxDistance int

	// AngularResolution is the number of steps in 360 degrees
	AngularResolution int

	// MinStep and MaxStep bound the scanning area
	MinStep int
	MaxStep int

	// FrontStep is the step facing forward
	FrontStep int

	// ScanRPM is the motor speed in revolutions per minute
	ScanRPM int
}

// ScanFrequency returns the scan rate in Hz.
func (p *Parameters) ScanFrequency() float64 {
	return float64(p.ScanRPM) / 60
}

// DefaultParameters returns the UST-10LX parameters used before PP is read.
func DefaultParameters() Parameters {
	return Parameters{
		Model:             "UST-10LX",
		MinDistance:       DefaultMinDistance,
		MaxDistance:       DefaultMaxDistance,
		AngularResolution: DefaultAngularResolution,
		MinStep:           DefaultMinStep,
		MaxStep:           DefaultMaxStep,
		FrontStep:         DefaultFrontStep,
		ScanRPM:           2400,
	}
}
