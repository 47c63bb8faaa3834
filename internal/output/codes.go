// Package output provides JSON/Markdown output formatting and error handling.
package output

// Process exit codes.
const (
	ExitOK      = 0 // Success
	ExitUsage   = 1 // Invalid arguments or flags
	ExitAuth    = 3 // No session or session without a server URL
	ExitLogin   = 4 // Login endpoint rejected the credentials
	ExitRequest = 7 // Non-200 status or transport failure
)

// Error codes for the JSON envelope.
const (
	CodeUsage           = "usage"
	CodeUnauthenticated = "unauthenticated"
	CodeLoginFailed     = "login_failed"
	CodeRequestFailed   = "request_failed"
)

// ExitCodeFor returns the exit code for a given error code.
func ExitCodeFor(code string) int {
	switch code {
	case CodeUsage:
		return ExitUsage
	case CodeUnauthenticated:
		return ExitAuth
	case CodeLoginFailed:
		return ExitLogin
	case CodeRequestFailed:
		return ExitRequest
	default:
		return ExitRequest
	}
}
