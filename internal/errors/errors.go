// Package errors provides the closed error taxonomy for bearer token
// verification and its mapping onto RFC 6750 HTTP challenges.
package errors

import (
	"errors"
	"fmt"
)

// Kind identifies one member of the closed verification error taxonomy.
// The string value is the OAuth error code rendered to clients.
type Kind string

// Error kinds. Every failure leaving the verifier is normalized to one of these.
const (
	// KindNoToken indicates the request carried no access token at all.
	KindNoToken Kind = "no_token"

	// KindInvalidRequest indicates a malformed request, such as a token
	// supplied through more than one method.
	KindInvalidRequest Kind = "invalid_request"

	// KindInvalidToken indicates the token is malformed, expired or inactive.
	KindInvalidToken Kind = "invalid_token"

	// KindInsufficientScope indicates the token lacks a required scope.
	KindInsufficientScope Kind = "insufficient_scope"

	// KindInsufficientEntitlement indicates the token lacks a required entitlement.
	KindInsufficientEntitlement Kind = "insufficient_entitlement"

	// KindInternalServerError covers configuration, transport and decoding
	// failures as well as malformed introspection responses.
	KindInternalServerError Kind = "internal_server_error"
)

// Sentinel errors, one per kind, for use with errors.Is.
var (
	ErrNoToken                 = errors.New(string(KindNoToken))
	ErrInvalidRequest          = errors.New(string(KindInvalidRequest))
	ErrInvalidToken            = errors.New(string(KindInvalidToken))
	ErrInsufficientScope       = errors.New(string(KindInsufficientScope))
	ErrInsufficientEntitlement = errors.New(string(KindInsufficientEntitlement))
	ErrInternal                = errors.New(string(KindInternalServerError))
)

var sentinels = map[Kind]error{
	KindNoToken:                 ErrNoToken,
	KindInvalidRequest:          ErrInvalidRequest,
	KindInvalidToken:            ErrInvalidToken,
	KindInsufficientScope:       ErrInsufficientScope,
	KindInsufficientEntitlement: ErrInsufficientEntitlement,
	KindInternalServerError:     ErrInternal,
}

// Known reports whether k is a member of the taxonomy.
func (k Kind) Known() bool {
	_, ok := sentinels[k]
	return ok
}

// VerificationError is the only error type that crosses the verifier boundary.
// It carries the kind, a client-facing description, and optionally the
// operation and underlying cause for server-side logging.
type VerificationError struct {
	// Kind is the taxonomy member.
	Kind Kind

	// Description is a human-readable explanation rendered as error_description.
	Description string

	// Op identifies the operation that failed (e.g., "Extract", "Introspect").
	Op string

	// Err is the underlying cause. It is never rendered to clients.
	Err error
}

// New creates a VerificationError.
//
// Parameters:
//   - op: the operation that failed
//   - kind: the taxonomy member
//   - description: client-facing description
//   - err: underlying cause (may be nil)
func New(op string, kind Kind, description string, err error) *VerificationError {
	return &VerificationError{
		Kind:        kind,
		Description: description,
		Op:          op,
		Err:         err,
	}
}

// Error implements the error interface.
func (e *VerificationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Description, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Description)
}

// Unwrap returns the underlying cause.
func (e *VerificationError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for this error's kind, another
// VerificationError of the same kind, or matches the wrapped cause.
func (e *VerificationError) Is(target error) bool {
	if s, ok := sentinels[e.Kind]; ok && s == target {
		return true
	}
	var other *VerificationError
	if errors.As(target, &other) && other.Kind == e.Kind {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// As extracts a VerificationError from err's chain.
func As(err error) (*VerificationError, bool) {
	var ve *VerificationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// Normalize guarantees a VerificationError. Errors outside the taxonomy
// become internal_server_error with a generic description, keeping the
// input as the cause. A nil error stays nil.
func Normalize(op string, err error) *VerificationError {
	if err == nil {
		return nil
	}
	if ve, ok := As(err); ok {
		return ve
	}
	return New(op, KindInternalServerError, "internal server error", err)
}
