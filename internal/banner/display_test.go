package banner

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func init() {
	color.NoColor = true
}

// capture redirects banner output for the duration of fn.
func capture(t *testing.T, fn func()) string {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(nil)
	fn()
	return buf.String()
}

func TestPrintStartupBanner(t *testing.T) {
	tests := []struct {
		name     string
		startup  Startup
		expected []string
	}{
		{
			name: "simulated",
			startup: Startup{
				Scenario:      "sort blue out",
				Tick:          20 * time.Millisecond,
				Duration:      2 * time.Second,
				Policy:        "COLLECT_RED",
				EjectDuration: 300 * time.Millisecond,
			},
			expected: []string{
				"ballroute - Ball-Routing Control Core",
				"Scenario:   sort blue out",
				"Tick:       20ms (simulated)",
				"Duration:   2.0s",
				"Sorting:    COLLECT_RED",
				"Eject:      300ms",
			},
		},
		{
			name:     "realtime",
			startup:  Startup{Scenario: "drive", Tick: 10 * time.Millisecond, Realtime: true},
			expected: []string{"Tick:       10ms (realtime)", "Duration:   0ms"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := capture(t, func() { PrintStartupBanner(tt.startup) })
			for _, want := range tt.expected {
				assert.Contains(t, output, want)
			}
			assert.Equal(t, 3, bytes.Count([]byte(output), []byte(rule)), "three separator lines")
		})
	}
}

func TestPrintSummaryBanner(t *testing.T) {
	output := capture(t, func() {
		PrintSummaryBanner(Summary{
			Ticks:     100,
			Elapsed:   2 * time.Second,
			Flow:      "IDLE - Mode: MID GOAL",
			Storage:   2,
			Red:       3,
			Blue:      1,
			Ejected:   1,
			Conflicts: 0,
		})
	})

	for _, want := range []string{
		"✓ Scenario complete",
		"Ticks:      100 (2.0s)",
		"Final:      IDLE - Mode: MID GOAL",
		"Storage:    2/3",
		"Seen:       3 red, 1 blue",
		"Ejected:    1 (0 conflicts)",
	} {
		assert.Contains(t, output, want)
	}
}

func TestPrintInterruptedBanner(t *testing.T) {
	output := capture(t, func() { PrintInterruptedBanner(42) })
	assert.Contains(t, output, "⚠ Run interrupted")
	assert.Contains(t, output, "Ticks:      42")
	assert.Contains(t, output, "All motors commanded to zero")
}

func TestPrintHardwareErrorBanner(t *testing.T) {
	output := capture(t, func() { PrintHardwareErrorBanner(errors.New("color sensor 2 not responding")) })
	assert.Contains(t, output, "✗ HARDWARE UNAVAILABLE")
	assert.Contains(t, output, "color sensor 2 not responding")
}
