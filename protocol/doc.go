// Package protocol implements the SCIP 2.0 communication protocol used by
// Hokuyo UST-10LX/20LX/30LX laser rangefinders.
//
// This package builds command lines, reads and validates response frames
// and decodes the packed sample data they carry. It performs no I/O of its
// own beyond reading from the io.Reader handed to a Reader.
//
// # Protocol Overview
//
// Every command is one ASCII line. The sensor answers with a frame:
//
//	Command:  NAME[PARAMS][;STRING]\n
//	Response: NAME[PARAMS][;STRING]\n   echoed command
//	          SS[SUM]\n                  status + checksum
//	          DATA[SUM]\n                zero or more payload lines
//	          \n                         empty line ends the frame
//
// The checksum character of a line is (sum of the preceding bytes & 0x3F) + 0x30.
// Sample values are packed 6 bits per character, offset by 0x30, in groups
// of 2 (GS/MS), 3 (GD/GE/MD/ME) or 4 (timestamps) characters. Payload lines
// carry at most 64 data characters, so long scans span several lines that
// are joined back together without separators.
//
// # Command Builders
//
//	cmd, err := protocol.SingleScanCmd(protocol.ScanRequest{Start: 0, End: 1080})
//	cmd, err := protocol.MultiScanCmd(protocol.ScanRequest{Start: 0, End: 1080, Count: 10})
//	cmd := protocol.LaserOnCmd()
//
// # Frame Parsing
//
//	r := protocol.NewReader(conn)
//	echo := protocol.ExactEcho(cmd)
//	frame, err := r.ReadFrame(&echo)
//	if !protocol.IsSuccess(cmd.Name(), frame.Status) {
//	    return &protocol.StatusError{Command: cmd.Name(), Code: frame.Status}
//	}
//	scan, err := protocol.ParseScan(frame, req)
//
// # Error Handling
//
// Failures are reported as distinct types:
//   - ChecksumError: a line's checksum does not verify
//   - DesyncError: echo mismatch, lost frame terminator, malformed payload
//   - StatusError: the sensor answered with a non-success status
//   - TransportError: the underlying reader failed (wrapped unchanged)
//
// # Reference
//
// For complete protocol details, see Hokuyo's SCIP 2.0 communication
// protocol manual for the UST series.
package protocol
