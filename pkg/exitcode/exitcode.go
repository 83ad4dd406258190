// Package exitcode provides standardized exit codes for freezedfix
package exitcode

// Exit codes for the freezedfix CLI
const (
	Success      = 0
	GeneralError = 1
	ConfigError  = 2
	// CheckFailed is returned by --check when at least one file would be rewritten.
	CheckFailed = 3
	// FileSystemError is returned when one or more files could not be read or written.
	FileSystemError = 4
)

// String returns a human-readable description of the exit code
func String(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case ConfigError:
		return "Configuration error"
	case CheckFailed:
		return "Files need fixing"
	case FileSystemError:
		return "File system error"
	default:
		return "Unknown error"
	}
}
