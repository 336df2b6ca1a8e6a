// Package exitcode defines named exit codes for the ballroute CLI.
//
// Each code maps a specific termination condition to a numeric value
// recognized by shell scripts and CI pipelines.
package exitcode

// Exit code constants.
const (
	Success             = 0   // Run completed
	Error               = 1   // Invalid args, file not found, misconfiguration
	HardwareUnavailable = 2   // A required device could not be initialized
	ScenarioInvalid     = 3   // Scenario file failed validation
	Interrupted         = 130 // SIGINT/SIGTERM received
)

// Name returns the human-readable name for the given exit code.
// Unknown codes return "unknown".
func Name(code int) string {
	switch code {
	case Success:
		return "Success"
	case Error:
		return "Error"
	case HardwareUnavailable:
		return "HardwareUnavailable"
	case ScenarioInvalid:
		return "ScenarioInvalid"
	case Interrupted:
		return "Interrupted"
	default:
		return "unknown"
	}
}
