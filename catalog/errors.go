package catalog

import (
	"errors"
	"fmt"
)

// Kind discriminates the error variants the persistence layer can surface.
// The original system modeled these as a class hierarchy; here a single
// tagged type carries the discriminant plus enough context (entity, ref)
// to render a user-facing message.
type Kind int

const (
	// KindNotFound marks a requested aggregate that is absent or logically deleted.
	KindNotFound Kind = iota + 1
	// KindAlreadyExists marks a unique-field collision on create.
	KindAlreadyExists
	// KindInvalidState marks a domain-rule violation, e.g. a rating out of range.
	KindInvalidState
	// KindInfrastructure marks a cache or store transport failure.
	KindInfrastructure
)

// String returns the stable code used when serializing the error.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindAlreadyExists:
		return "already_exists"
	case KindInvalidState:
		return "invalid_state"
	case KindInfrastructure:
		return "infrastructure_failure"
	default:
		return "unknown"
	}
}

// Sentinel values for errors.Is checks. Matching is by Kind only, so callers
// can write errors.Is(err, catalog.ErrNotFound) regardless of entity or ref.
var (
	ErrNotFound       = &Error{kind: KindNotFound}
	ErrAlreadyExists  = &Error{kind: KindAlreadyExists}
	ErrInvalidState   = &Error{kind: KindInvalidState}
	ErrInfrastructure = &Error{kind: KindInfrastructure}
)

// Error is the single error type crossing the repository boundary.
type Error struct {
	kind    Kind
	entity  string
	ref     string
	message string
	cause   error
}

// NewNotFound reports that the identified aggregate is absent or deleted.
func NewNotFound(entity, ref string) *Error {
	return &Error{
		kind:    KindNotFound,
		entity:  entity,
		ref:     ref,
		message: fmt.Sprintf("%s with ID %s not found", entity, ref),
	}
}

// NewAlreadyExists reports a unique-field collision on create.
func NewAlreadyExists(entity, ref string) *Error {
	return &Error{
		kind:    KindAlreadyExists,
		entity:  entity,
		ref:     ref,
		message: fmt.Sprintf("%s with identity %s already exists", entity, ref),
	}
}

// NewInvalidState reports a domain-rule violation.
func NewInvalidState(entity, message string) *Error {
	return &Error{kind: KindInvalidState, entity: entity, message: message}
}

// NewInfrastructure wraps a cache or store transport failure. The cause is
// preserved for errors.As/Unwrap chains.
func NewInfrastructure(entity, op string, cause error) *Error {
	return &Error{
		kind:    KindInfrastructure,
		entity:  entity,
		message: fmt.Sprintf("%s %s failed: %v", entity, op, cause),
		cause:   cause,
	}
}

// Kind returns the error discriminant.
func (e *Error) Kind() Kind { return e.kind }

// Entity returns the aggregate type the error refers to.
func (e *Error) Entity() string { return e.entity }

// Ref returns the offending id or value, when one applies.
func (e *Error) Ref() string { return e.ref }

func (e *Error) Error() string {
	if e.message == "" {
		return e.kind.String()
	}
	return e.message
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches by Kind so the exported sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.kind == t.kind
}

// ErrorDetail is one element of the serialized error payload.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// Serialize formats the error for transport. It is a pure function of the
// error value, keyed on Kind rather than dynamic dispatch.
func (e *Error) Serialize() []ErrorDetail {
	d := ErrorDetail{Code: e.kind.String(), Message: e.Error()}
	if e.kind == KindAlreadyExists || e.kind == KindNotFound {
		d.Field = e.ref
	}
	return []ErrorDetail{d}
}
