// Package logging provides colored, leveled log output for the ball-routing
// control core and the ballroute simulator.
//
// All output functions write a prefixed, color-coded line. Debug output is
// suppressed unless verbose mode is enabled via SetVerbose(true). Errors go to
// the error writer, everything else to the standard writer.
package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
)

var (
	mu      sync.Mutex
	verbose bool
	out     io.Writer = os.Stdout
	errOut  io.Writer = os.Stderr
)

// Color printers for each log level.
var (
	infoPrefix    = color.New(color.FgBlue).SprintFunc()
	successPrefix = color.New(color.FgGreen).SprintFunc()
	warnPrefix    = color.New(color.FgYellow).SprintFunc()
	errorPrefix   = color.New(color.FgRed).SprintFunc()
	sectionPrefix = color.New(color.FgCyan).SprintFunc()
	debugPrefix   = color.New(color.FgMagenta).SprintFunc()
)

// SetVerbose enables or disables Debug output.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// Verbose reports whether Debug output is enabled.
func Verbose() bool {
	mu.Lock()
	defer mu.Unlock()
	return verbose
}

// SetOutput redirects log output. A nil writer leaves that stream unchanged.
func SetOutput(stdout, stderr io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if stdout != nil {
		out = stdout
	}
	if stderr != nil {
		errOut = stderr
	}
}

// Info prints an informational message in blue.
func Info(msg string) {
	write(false, infoPrefix("[INFO]")+" "+msg)
}

// Infof formats and prints an informational message.
func Infof(format string, args ...any) {
	Info(fmt.Sprintf(format, args...))
}

// Success prints a success message in green.
func Success(msg string) {
	write(false, successPrefix("[OK]")+" "+msg)
}

// Successf formats and prints a success message.
func Successf(format string, args ...any) {
	Success(fmt.Sprintf(format, args...))
}

// Warn prints a warning message in yellow.
func Warn(msg string) {
	write(false, warnPrefix("[WARN]")+" "+msg)
}

// Warnf formats and prints a warning message.
func Warnf(format string, args ...any) {
	Warn(fmt.Sprintf(format, args...))
}

// Error prints an error message to the error writer in red.
func Error(msg string) {
	write(true, errorPrefix("[ERROR]")+" "+msg)
}

// Errorf formats and prints an error message.
func Errorf(format string, args ...any) {
	Error(fmt.Sprintf(format, args...))
}

// Section prints a header surrounded by separator lines in cyan.
func Section(msg string) {
	sep := sectionPrefix("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	write(false, sep)
	write(false, sectionPrefix("[RUN]")+" "+msg)
	write(false, sep)
}

// Debug prints a debug message, only when verbose mode is enabled.
func Debug(msg string) {
	if !Verbose() {
		return
	}
	write(false, debugPrefix("[DEBUG]")+" "+msg)
}

// Debugf formats and prints a debug message when verbose mode is enabled.
// Arguments are not formatted when verbose mode is off.
func Debugf(format string, args ...any) {
	if !Verbose() {
		return
	}
	Debug(fmt.Sprintf(format, args...))
}

func write(toErr bool, line string) {
	mu.Lock()
	w := out
	if toErr {
		w = errOut
	}
	mu.Unlock()
	fmt.Fprintln(w, line)
}

// FormatMillis renders a duration the way the controller screen shows it.
//
// Examples:
//
//	FormatMillis(0)                       => "0ms"
//	FormatMillis(450 * time.Millisecond)  => "450ms"
//	FormatMillis(2100 * time.Millisecond) => "2.1s"
//	FormatMillis(95 * time.Second)        => "1m 35s"
func FormatMillis(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		m := int(d / time.Minute)
		s := int((d % time.Minute) / time.Second)
		return fmt.Sprintf("%dm %ds", m, s)
	}
}
