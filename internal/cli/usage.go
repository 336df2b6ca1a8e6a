// Package cli provides help text and usage formatting for the ballroute CLI.
package cli

import (
	"github.com/spf13/cobra"
)

const helpTemplate = `ballroute - Ball-routing robot control core simulator

USAGE
  ballroute --scenario <file> [flags]

FLAGS
  Input & Output:
    --scenario <path>                      Scenario YAML to replay (required)
    --report <path>                        Write a JSON run report
    --config <path>                        Path to additional config file

  Control:
    --tick-ms <int>                        Control period in milliseconds (default: 20)
    --realtime                             Pace ticks on the wall clock and draw the controller screen

  Sorting:
    --sorting <policy>                     red, blue, all or eject_all (default: all)
    --eject-ms <int>                       Ejection duration, clamped to 100-2000 (default: 300)

  Feature Toggles:
    -v, --verbose                          Print debug output

  Help & Version:
    -h, --help                             Show this help text
    --version                              Show version, commit, build date

CONFIGURATION
  KEY=VALUE files are read from ~/.config/ballroute/config, then
  .ballroute/config, then --config. BALLROUTE_<KEY> environment variables
  override files; flags override everything.

EXIT CODES
  0   Success              Scenario ran to completion
  1   Error                Invalid arguments, file not found, misconfiguration
  2   HardwareUnavailable  A required device could not be initialized
  3   ScenarioInvalid      Scenario file failed validation
  130 Interrupted          SIGINT or SIGTERM received

EXAMPLES
  # Replay a match with red collection
  ballroute --scenario match.yaml --sorting red

  # Watch the controller screen at real speed
  ballroute --scenario match.yaml --realtime

  # Save a report for CI
  ballroute --scenario match.yaml --report out/report.json

For more information, see: https://github.com/CodexForgeBR/ballroute
`

// SetCustomHelp configures the cobra command to use our custom help template.
func SetCustomHelp(cmd *cobra.Command) {
	cmd.SetHelpTemplate(helpTemplate)
}
