// Package cli provides flag binding and validation for the ballroute CLI.
package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/CodexForgeBR/ballroute/internal/config"
	"github.com/CodexForgeBR/ballroute/internal/ejection"
)

// BindFlags registers the CLI flags on the given cobra command.
// The flags directly modify fields in the provided config pointer.
// Call ValidateFlags after parsing to check flag values.
func BindFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()

	// Input & Output
	flags.StringVar(&cfg.ScenarioFile, "scenario", "", "Path to a scenario YAML file")
	flags.StringVar(&cfg.ReportFile, "report", "", "Write a JSON run report to this path")
	flags.StringVar(&cfg.ConfigFile, "config", "", "Path to additional config file")

	// Control
	flags.IntVar(&cfg.TickMS, "tick-ms", cfg.TickMS, "Control period in milliseconds")
	flags.BoolVar(&cfg.Realtime, "realtime", false, "Pace ticks on the wall clock and draw the controller screen")

	// Sorting
	flags.StringVar(&cfg.SortingPolicy, "sorting", cfg.SortingPolicy, "Sorting policy: red, blue, all or eject_all")
	flags.IntVar(&cfg.EjectDurationMS, "eject-ms", cfg.EjectDurationMS, "Ejection duration in milliseconds (clamped to 100-2000)")

	// Feature Toggles
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Print debug output")
}

// ValidateFlags checks flag values after parsing.
// Must be called after cmd.Execute() or cmd.ParseFlags().
func ValidateFlags(cmd *cobra.Command, cfg *config.Config) error {
	for flag, path := range map[string]string{"scenario": cfg.ScenarioFile, "config": cfg.ConfigFile} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("--%s: %w", flag, err)
		}
	}

	if cmd.Flags().Changed("tick-ms") && cfg.TickMS <= 0 {
		return fmt.Errorf("--tick-ms must be positive, got: %d", cfg.TickMS)
	}
	if cmd.Flags().Changed("eject-ms") && cfg.EjectDurationMS <= 0 {
		return fmt.Errorf("--eject-ms must be positive, got: %d", cfg.EjectDurationMS)
	}
	if cmd.Flags().Changed("sorting") {
		if _, err := ejection.ParsePolicy(cfg.SortingPolicy); err != nil {
			return fmt.Errorf("--sorting: %w", err)
		}
	}

	return nil
}

// BuildOverrides creates a map of CLI flag overrides from the config.
// Uses cmd.Flags().Changed() to only include flags explicitly set by the user,
// ensuring config file values are not accidentally overridden by default values.
func BuildOverrides(cmd *cobra.Command, cfg *config.Config) map[string]string {
	overrides := make(map[string]string)

	stringFlags := map[string]struct {
		key string
		val string
	}{
		"scenario": {"SCENARIO_FILE", cfg.ScenarioFile},
		"report":   {"REPORT_FILE", cfg.ReportFile},
		"sorting":  {"SORTING_POLICY", cfg.SortingPolicy},
	}
	for flag, mapping := range stringFlags {
		if cmd.Flags().Changed(flag) {
			overrides[mapping.key] = mapping.val
		}
	}

	intFlags := map[string]struct {
		key string
		val int
	}{
		"tick-ms":  {"TICK_MS", cfg.TickMS},
		"eject-ms": {"EJECT_DURATION_MS", cfg.EjectDurationMS},
	}
	for flag, mapping := range intFlags {
		if cmd.Flags().Changed(flag) {
			overrides[mapping.key] = strconv.Itoa(mapping.val)
		}
	}

	boolFlags := map[string]struct {
		key string
		val bool
	}{
		"verbose":  {"VERBOSE", cfg.Verbose},
		"realtime": {"REALTIME", cfg.Realtime},
	}
	for flag, mapping := range boolFlags {
		if cmd.Flags().Changed(flag) {
			overrides[mapping.key] = strconv.FormatBool(mapping.val)
		}
	}

	return overrides
}
