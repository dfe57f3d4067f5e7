// Package errdomain defines the error taxonomy shared across the
// private-datasets backend. Handlers translate these into HTTP status
// codes; batch operations recover some of them into warnings.
package errdomain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrNotFound signals that a referenced entity (dataset, resource,
	// user) does not exist in this instance.
	ErrNotFound = errors.New("not found")

	// ErrNotAuthorized is the authorization engine's explicit deny
	// signal. It is never recovered locally.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrUnauthenticated denies operations that require a logged-in
	// actor when the request carries no identity.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// ValidationError carries per-field messages, mirroring the host
// catalog's update-rejection envelope.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], "; ")))
	}
	return strings.Join(parts, ", ")
}

// FieldMessage returns the first message recorded for a field, or an
// empty string.
func (e *ValidationError) FieldMessage(field string) string {
	if msgs := e.Fields[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// NewValidationError builds a single-field validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string][]string{field: {message}}}
}

// ConfigError reports a misconfigured or unresolvable component, such
// as an unregistered notification parser. It is fatal to the current
// request and is distinct from a malformed payload.
type ConfigError struct {
	Option  string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Option, e.Message)
}

// MalformedNotificationError reports a notification payload whose shape
// or contents cannot be parsed. The parser fails fast on the first
// offending field instead of skipping it.
type MalformedNotificationError struct {
	Message string
}

func (e *MalformedNotificationError) Error() string {
	return e.Message
}

// NewMalformedNotification builds a malformed-notification error with a
// human-readable message citing the offending field or dataset.
func NewMalformedNotification(format string, args ...any) *MalformedNotificationError {
	return &MalformedNotificationError{Message: fmt.Sprintf(format, args...)}
}
