// Package banner provides colored banner display functions for the ballroute CLI.
//
// All banner functions write formatted output with color-coded headers and
// separators. They mark the start and end of a run and the conditions that
// end one early.
package banner

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/CodexForgeBR/ballroute/internal/logging"
	"github.com/CodexForgeBR/ballroute/internal/scoring"
	"github.com/fatih/color"
)

var (
	headerColor  = color.New(color.FgCyan, color.Bold).SprintFunc()
	successColor = color.New(color.FgGreen, color.Bold).SprintFunc()
	errorColor   = color.New(color.FgRed, color.Bold).SprintFunc()
	warnColor    = color.New(color.FgYellow, color.Bold).SprintFunc()
)

const rule = "═══════════════════════════════════════════════════"

var (
	mu  sync.Mutex
	out io.Writer = os.Stdout
)

// SetOutput redirects banner output. Nil restores stdout.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		w = os.Stdout
	}
	out = w
}

func printf(format string, args ...any) {
	mu.Lock()
	w := out
	mu.Unlock()
	fmt.Fprintf(w, format, args...)
}

// Startup describes the run about to begin.
type Startup struct {
	Scenario      string
	Tick          time.Duration
	Duration      time.Duration
	Policy        string
	EjectDuration time.Duration
	Realtime      bool
}

// PrintStartupBanner displays the startup banner with run settings.
//
// Example output:
//
//	═══════════════════════════════════════════════════
//	  ballroute - Ball-Routing Control Core
//	═══════════════════════════════════════════════════
//	  Scenario:   sort blue out
//	  Tick:       20ms (simulated)
//	  Duration:   2.0s
//	  Sorting:    COLLECT_RED
//	  Eject:      300ms
//	═══════════════════════════════════════════════════
func PrintStartupBanner(s Startup) {
	pacing := "simulated"
	if s.Realtime {
		pacing = "realtime"
	}
	sep := headerColor(rule)
	printf("%s\n", sep)
	printf("%s\n", headerColor("  ballroute - Ball-Routing Control Core"))
	printf("%s\n", sep)
	printf("  Scenario:   %s\n", s.Scenario)
	printf("  Tick:       %s (%s)\n", logging.FormatMillis(s.Tick), pacing)
	printf("  Duration:   %s\n", logging.FormatMillis(s.Duration))
	printf("  Sorting:    %s\n", s.Policy)
	printf("  Eject:      %s\n", logging.FormatMillis(s.EjectDuration))
	printf("%s\n", sep)
}

// Summary is what a finished run reports.
type Summary struct {
	Ticks     int
	Elapsed   time.Duration
	Flow      string
	Storage   int
	Red       int
	Blue      int
	Ejected   int
	Conflicts int
}

// PrintSummaryBanner displays the completion banner with run statistics.
//
// Example output:
//
//	═══════════════════════════════════════════════════
//	  ✓ Scenario complete
//	  Ticks:      100 (2.0s)
//	  Final:      IDLE - Mode: MID GOAL
//	  Storage:    2/3
//	  Seen:       3 red, 1 blue
//	  Ejected:    1 (0 conflicts)
//	═══════════════════════════════════════════════════
func PrintSummaryBanner(s Summary) {
	sep := successColor(rule)
	printf("%s\n", sep)
	printf("%s\n", successColor("  ✓ Scenario complete"))
	printf("  Ticks:      %d (%s)\n", s.Ticks, logging.FormatMillis(s.Elapsed))
	printf("  Final:      %s\n", s.Flow)
	printf("  Storage:    %d/%d\n", s.Storage, scoring.MaxStorage)
	printf("  Seen:       %d red, %d blue\n", s.Red, s.Blue)
	printf("  Ejected:    %d (%d conflicts)\n", s.Ejected, s.Conflicts)
	printf("%s\n", sep)
}

// PrintInterruptedBanner displays when a run is stopped by a signal.
//
// Example output:
//
//	═══════════════════════════════════════════════════
//	  ⚠ Run interrupted
//	  Ticks:      42
//	  All motors commanded to zero
//	═══════════════════════════════════════════════════
func PrintInterruptedBanner(ticks int) {
	sep := warnColor(rule)
	printf("%s\n", sep)
	printf("%s\n", warnColor("  ⚠ Run interrupted"))
	printf("  Ticks:      %d\n", ticks)
	printf("  All motors commanded to zero\n")
	printf("%s\n", sep)
}

// PrintHardwareErrorBanner displays when a device could not be initialized.
//
// Example output:
//
//	═══════════════════════════════════════════════════
//	  ✗ HARDWARE UNAVAILABLE
//	═══════════════════════════════════════════════════
//	  color sensor 2 not responding
//	═══════════════════════════════════════════════════
func PrintHardwareErrorBanner(err error) {
	sep := errorColor(rule)
	printf("%s\n", sep)
	printf("%s\n", errorColor("  ✗ HARDWARE UNAVAILABLE"))
	printf("%s\n", sep)
	printf("  %v\n", err)
	printf("%s\n", sep)
}
