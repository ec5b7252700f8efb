package store

import (
	"errors"
	"fmt"
)

// Code identifies the category of a store failure.
//
// Codes render as the leading token of Error messages, so callers matching
// on message text see e.g. "NoSuchMutationError: inc is not a registered
// mutation."
type Code string

const (
	// CodeSeedRequired indicates construction was called without a seed.
	CodeSeedRequired Code = "SeedRequiredError"

	// CodeNoPoint indicates the seed normalized to zero data keys and zero
	// mutation keys. A store with neither state nor mutating capability is
	// useless.
	CodeNoPoint Code = "NoPointError"

	// CodeValidation indicates a seed group did not resolve to a mapping.
	CodeValidation Code = "ValidationError"

	// CodeDisallowedType indicates a mutations/actions entry is not callable.
	CodeDisallowedType Code = "DisallowedTypeError"

	// CodeReservedWord indicates a reserved key appeared in a seed group,
	// or appeared in data after a mutation ran.
	CodeReservedWord Code = "DontTouchMyReservedwords"

	// CodeNoDirectAccess indicates the caller read the reserved "data" key.
	CodeNoDirectAccess Code = "NoDirectAccessForYou"

	// CodeNoSuchMutation indicates a commit against an unregistered name.
	CodeNoSuchMutation Code = "NoSuchMutationError"

	// CodeNoSuchAction indicates a dispatch against an unregistered name.
	CodeNoSuchAction Code = "NoSuchActionError"
)

// Error is a structured store failure.
//
// Every violation surfaces immediately to the caller of the offending
// operation (construction, a read, or a dispatch call); nothing is caught
// or retried internally.
type Error struct {
	// Code identifies the error category.
	Code Code

	// Message is a human-readable description.
	Message string

	// Group names the seed group involved (data, mutations, actions), if any.
	Group string

	// Key is the offending key or dispatch name, if any.
	Key string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsCode reports whether err is (or wraps) a store Error with the given code.
func IsCode(err error, code Code) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}

func newSeedRequiredError() *Error {
	return &Error{
		Code:    CodeSeedRequired,
		Message: "a seed object is required",
	}
}

func newNoPointError() *Error {
	return &Error{
		Code:    CodeNoPoint,
		Message: "a store with no data and no mutations is useless",
	}
}

func newValidationError(group string) *Error {
	return &Error{
		Code:    CodeValidation,
		Message: fmt.Sprintf("%s doesn't resolve to an object", group),
		Group:   group,
	}
}

func newDisallowedTypeError(group, typeName string) *Error {
	return &Error{
		Code:    CodeDisallowedType,
		Message: fmt.Sprintf("%s can't accept %s", group, typeName),
		Group:   group,
	}
}

func newReservedWordError(group, key string) *Error {
	return &Error{
		Code:    CodeReservedWord,
		Message: key,
		Group:   group,
		Key:     key,
	}
}

func newNoDirectAccessError() *Error {
	return &Error{
		Code:    CodeNoDirectAccess,
		Message: "you must use a mutation.",
		Key:     reservedData,
	}
}

func newNoSuchMutationError(name string) *Error {
	return &Error{
		Code:    CodeNoSuchMutation,
		Message: fmt.Sprintf("%s is not a registered mutation.", name),
		Key:     name,
	}
}

func newNoSuchActionError(name string) *Error {
	return &Error{
		Code:    CodeNoSuchAction,
		Message: fmt.Sprintf("%s is not a registered action.", name),
		Key:     name,
	}
}
