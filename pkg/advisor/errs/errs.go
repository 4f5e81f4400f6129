// Package errs defines the advisor error taxonomy. Handlers map these
// categories to user-facing messages; collaborator error detail never
// crosses this boundary.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionInvalid: the session id is unknown and cannot be created.
	// Fatal for the request; the caller must start a new session.
	ErrSessionInvalid = errors.New("session invalid")

	// ErrInvalidQuery: empty or unparsable query text. Recovered by asking
	// the user to rephrase.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrAllSourcesUnavailable: every evidence source degraded. Fatal for
	// retrieval; no evidence is fabricated.
	ErrAllSourcesUnavailable = errors.New("all evidence sources unavailable")

	// ErrInvalidConfiguration: a programming/config error (weights not
	// summing to 1.0, unknown role). Never silently corrected.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrCollaboratorTimeout marks a single source exceeding its deadline.
	ErrCollaboratorTimeout = errors.New("collaborator timeout")

	// ErrCollaboratorUnavailable marks a single source failing outright.
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")
)

// PermissionDenied reports a domain filtered out by the permission table.
// It is surfaced as an explanatory denial, not a fatal error.
type PermissionDenied struct {
	Domain       string
	RequiredRole string
}

func (e *PermissionDenied) Error() string {
	return fmt.Sprintf("permission denied for %s specialist (requires %s role)", e.Domain, e.RequiredRole)
}

// InvalidConfiguration wraps ErrInvalidConfiguration with the offending detail.
func InvalidConfiguration(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfiguration, fmt.Sprintf(format, args...))
}
