package protocol

import "strings"

// StatusInfo describes one status code: its human-readable description
// and whether it counts as success for the command it answers.
type StatusInfo struct {
	Code        string
	Description string
	Success     bool
}

// genericStatuses apply to every command unless a command table overrides them.
var genericStatuses = map[string]StatusInfo{
	"00": {Code: "00", Description: "normal", Success: true},
	"0D": {Code: "0D", Description: "command too long"},
	"0E": {Code: "0E", Description: "command not defined"},
	"0F": {Code: "0F", Description: "command not supported"},
	"0G": {Code: "0G", Description: "user string too long"},
	"0H": {Code: "0H", Description: "command too short"},
	"0L": {Code: "0L", Description: "sensor is in abnormal state"},
	"0M": {Code: "0M", Description: "sensor is unstable"},
	"10": {Code: "10", Description: "denied"},
}

// scanStatuses apply to the GD/GE/GS and MD/ME/MS scan commands.
var scanStatuses = map[string]StatusInfo{
	"01": {Code: "01", Description: "start step has a non-numeric value"},
	"02": {Code: "02", Description: "end step has a non-numeric value"},
	"03": {Code: "03", Description: "cluster count has a non-numeric value"},
	"04": {Code: "04", Description: "end step is out of range"},
	"05": {Code: "05", Description: "end step is smaller than start step"},
	"06": {Code: "06", Description: "scan interval has a non-numeric value"},
	"07": {Code: "07", Description: "number of scans has a non-numeric value"},
	"10": {Code: "10", Description: "laser is off"},
	"99": {Code: "99", Description: "scan data", Success: true},
}

// commandStatuses holds the command-specific tables.
var commandStatuses = map[string]map[string]StatusInfo{
	CmdLaserOn: {
		"00": {Code: "00", Description: "measurement state, laser lighted", Success: true},
		"01": {Code: "01", Description: "laser was not lighted due to unstable or abnormal condition"},
		"02": {Code: "02", Description: "already in measurement state, laser already lighted", Success: true},
	},
	CmdTimeSync: {
		"00": {Code: "00", Description: "normal", Success: true},
		"01": {Code: "01", Description: "invalid control code"},
		"02": {Code: "02", Description: "already in time synchronization state"},
		"03": {Code: "03", Description: "already left time synchronization state"},
		"04": {Code: "04", Description: "not in time synchronization state"},
	},
	CmdReboot: {
		"00": {Code: "00", Description: "rebooting", Success: true},
		"01": {Code: "01", Description: "reboot armed, send the command again", Success: true},
	},
	CmdGetDistance:            scanStatuses,
	CmdGetDistanceIntensity:   scanStatuses,
	CmdGetDistanceShort:       scanStatuses,
	CmdMultiDistance:          scanStatuses,
	CmdMultiDistanceIntensity: scanStatuses,
	CmdMultiDistanceShort:     scanStatuses,
}

// LaserState describes the state reported by the %ST command.
type LaserState struct {
	Code        string
	Description string
}

// Measuring reports whether the sensor is in single or multi scan state.
func (s LaserState) Measuring() bool {
	return strings.HasSuffix(s.Code, "03") || strings.HasSuffix(s.Code, "04")
}

// laserStates maps %ST state codes to descriptions.
var laserStates = map[string]string{
	"000": "standby state",
	"100": "from standby to unstable state",
	"001": "booting state",
	"002": "time adjustment state",
	"102": "from time adjustment to unstable state",
	"003": "single scan state",
	"103": "from single scan to unstable state",
	"004": "multi scan state",
	"104": "from multi scan to unstable state",
	"005": "sleep state",
	"006": "waking-up state",
	"900": "error detected state",
}

// Laser state codes the client acts on.
const (
	StateStandby    = "000"
	StateTimeAdjust = "002"
	StateSingleScan = "003"
	StateMultiScan  = "004"
	StateSleep      = "005"
)

// LookupStatus returns the status information for code in reply to the
// given command. Unknown codes are reported as failures.
func LookupStatus(command, code string) StatusInfo {
	if table, ok := commandStatuses[command]; ok {
		if info, ok := table[code]; ok {
			return info
		}
	}
	if info, ok := genericStatuses[code]; ok {
		return info
	}
	if code >= "50" && code <= "97" {
		return StatusInfo{Code: code, Description: "hardware trouble"}
	}
	return StatusInfo{Code: code, Description: "unknown status"}
}

// IsSuccess reports whether code is a success status for command.
func IsSuccess(command, code string) bool {
	return LookupStatus(command, code).Success
}

// LookupLaserState returns the description of a %ST state code.
func LookupLaserState(code string) (LaserState, bool) {
	desc, ok := laserStates[code]
	return LaserState{Code: code, Description: desc}, ok
}
