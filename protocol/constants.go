package protocol

// ProtocolVersion is the SCIP protocol revision implemented by this library.
const ProtocolVersion = "2.0"

// Wire framing constants.
const (
	// LineFeed terminates every line on the wire
	LineFeed = '\n'

	// StringSeparator separates the numeric parameters from the string parameter
	StringSeparator = ';'

	// InfoSeparator separates key and value in II/VV/PP info lines
	InfoSeparator = ':'

	// MaxDataLineLength is the maximum number of data characters in one
	// payload line, excluding the checksum character
	MaxDataLineLength = 64

	// MaxStringLength is the maximum length of the optional string parameter
	MaxStringLength = 16

	// StatusLength is the number of status characters in a status line
	StatusLength = 2
)

// Command mnemonics for the UST-10LX/20LX/30LX.
const (
	// CmdLaserOn lights the laser and enters the measurement state
	CmdLaserOn = "BM"

	// CmdLaserOff stops measurement, turns the laser off and stops any stream
	CmdLaserOff = "QT"

	// CmdSleep switches the sensor to the sleep state
	CmdSleep = "%SL"

	// CmdGetDistance requests a single scan of distances (3-char encoding)
	CmdGetDistance = "GD"

	// CmdGetDistanceIntensity requests a single scan of distances and intensities
	CmdGetDistanceIntensity = "GE"

	// CmdGetDistanceShort requests a single scan of distances (2-char encoding)
	CmdGetDistanceShort = "GS"

	// CmdMultiDistance starts continuous distance scans (3-char encoding)
	CmdMultiDistance = "MD"

	// CmdMultiDistanceIntensity starts continuous distance and intensity scans
	CmdMultiDistanceIntensity = "ME"

	// CmdMultiDistanceShort starts continuous distance scans (2-char encoding)
	CmdMultiDistanceShort = "MS"

	// CmdTimeSync controls the time synchronization mode
	CmdTimeSync = "TM"

	// CmdSensorState reports sensor status information
	CmdSensorState = "II"

	// CmdVersion reports manufacturing information
	CmdVersion = "VV"

	// CmdParameters reports sensor internal parameters
	CmdParameters = "PP"

	// CmdLaserState reports the current sensor state
	CmdLaserState = "%ST"

	// CmdReset resets the sensor to its initialization values
	CmdReset = "RS"

	// CmdPartialReset resets the sensor, keeping motor and bit rate settings
	CmdPartialReset = "RT"

	// CmdReboot reboots the sensor; it must be sent twice
	CmdReboot = "RB"
)

// Time synchronization control codes for CmdTimeSync.
const (
	// TimeSyncEnter moves the sensor from standby to time adjustment state
	TimeSyncEnter = 0

	// TimeSyncRead reads the sensor clock
	TimeSyncRead = 1

	// TimeSyncExit returns the sensor to standby
	TimeSyncExit = 2
)

// Status codes shared by all commands.
const (
	// StatusOK indicates the command was accepted
	StatusOK = "00"

	// StatusScanData marks a frame carrying streamed scan data
	StatusScanData = "99"

	// StatusRebootPending is returned by the first of the two reboot commands
	StatusRebootPending = "01"

	// StatusUnstable indicates the sensor is in an unstable condition
	StatusUnstable = "0M"
)

// Parameter widths and ranges for scan commands.
const (
	// StepWidth is the width of the start and end step parameters
	StepWidth = 4

	// GroupingWidth is the width of the cluster count parameter
	GroupingWidth = 2

	// SkipWidth is the width of the scan interval parameter
	SkipWidth = 1

	// CountWidth is the width of the number-of-scans parameter
	CountWidth = 2

	// MaxStep is the largest step number that fits the step parameter
	MaxStep = 9999

	// MaxGrouping is the largest cluster count
	MaxGrouping = 99

	// MaxSkips is the largest scan interval
	MaxSkips = 9

	// MaxCount is the largest bounded number of scans
	MaxCount = 99
)

// TimestampModulus is the wrap-around of the 24-bit sensor clock in milliseconds.
const TimestampModulus = 1 << 24

// Default sensor geometry for the UST series, used until PP is queried.
const (
	DefaultMinDistance       = 20
	DefaultMaxDistance       = 30000
	DefaultAngularResolution = 1440
	DefaultMinStep           = 0
	DefaultMaxStep           = 1080
	DefaultFrontStep         = 540
)
