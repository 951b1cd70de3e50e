package lidar

import (
	"fmt"
	"strings"

	"github.com/golang/glog"
)

// Logger is an optional logging interface that can be provided to the client.
// This allows integration with any logging framework.
//
// Example with standard log package:
//
//	type StdLogger struct{}
//	func (l *StdLogger) Debug(msg string, kv ...interface{}) { log.Println(msg, kv) }
//	func (l *StdLogger) Info(msg string, kv ...interface{})  { log.Println(msg, kv) }
//	func (l *StdLogger) Error(msg string, kv ...interface{}) { log.Println(msg, kv) }
//
//	c := lidar.New(conn, lidar.WithLogger(&StdLogger{}))
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}

// GlogLogger writes to glog. Debug messages are emitted at verbosity 2,
// so they show up with -v=2.
type GlogLogger struct{}

// Debug logs msg at glog verbosity 2.
func (GlogLogger) Debug(msg string, keysAndValues ...interface{}) {
	if glog.V(2) {
		glog.InfoDepth(1, formatKV(msg, keysAndValues))
	}
}

// Info logs msg to the glog INFO log.
func (GlogLogger) Info(msg string, keysAndValues ...interface{}) {
	glog.InfoDepth(1, formatKV(msg, keysAndValues))
}

// Error logs msg to the glog ERROR log.
func (GlogLogger) Error(msg string, keysAndValues ...interface{}) {
	glog.ErrorDepth(1, formatKV(msg, keysAndValues))
}

// NopLogger discards everything.
type NopLogger struct{}

// Debug discards the message.
func (NopLogger) Debug(string, ...interface{}) {}

// Info discards the message.
func (NopLogger) Info(string, ...interface{}) {}

// Error discards the message.
func (NopLogger) Error(string, ...interface{}) {}

// formatKV renders msg followed by key=value pairs. A trailing key
// without value is printed as key=?.
func formatKV(msg string, keysAndValues []interface{}) string {
	if len(keysAndValues) == 0 {
		return msg
	}

	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i < len(keysAndValues); i += 2 {
		b.WriteByte(' ')
		fmt.Fprint(&b, keysAndValues[i])
		b.WriteByte('=')
		if i+1 < len(keysAndValues) {
			fmt.Fprintf(&b, "%v", keysAndValues[i+1])
		} else {
			b.WriteByte('?')
		}
	}
	return b.String()
}
