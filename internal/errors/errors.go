// Package errors provides error handling utilities for gsefetch.
// It offers consistent error wrapping and a field-level error for
// records that are missing data the extractors require.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Op represents an operation name for error context.
type Op string

// Error represents an application error with context.
type Error struct {
	Op   Op     // Operation that failed
	Kind Kind   // Category of error
	Err  error  // Underlying error
	Msg  string // Additional context message
}

// Kind represents the category of error.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindDatabase
	KindIO
	KindValidation
	KindConfig
	KindNetwork
	KindParse
	KindMissingField
)

// String returns the string representation of the error kind.
func (k Kind) String() string {
	switch k {
	case KindDatabase:
		return "database"
	case KindIO:
		return "io"
	case KindValidation:
		return "validation"
	case KindConfig:
		return "config"
	case KindNetwork:
		return "network"
	case KindParse:
		return "parse"
	case KindMissingField:
		return "missing_field"
	default:
		return "unknown"
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(string(e.Op))
		b.WriteString(": ")
	}
	if e.Msg != "" {
		b.WriteString(e.Msg)
		if e.Err != nil {
			b.WriteString(": ")
		}
	}
	if e.Err != nil {
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// E creates a new Error with the given arguments.
// Arguments can be: Op, Kind, error, string (message).
func E(args ...interface{}) *Error {
	e := &Error{}
	for _, arg := range args {
		switch a := arg.(type) {
		case Op:
			e.Op = a
		case Kind:
			e.Kind = a
		case error:
			e.Err = a
		case string:
			e.Msg = a
		}
	}
	return e
}

// Wrap wraps an error with an operation name for context.
func Wrap(op Op, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// WrapMsg wraps an error with an operation name and message.
func WrapMsg(op Op, msg string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Msg: msg, Err: err}
}

// FieldError reports a required field that is absent from a record.
// UID is the Entrez uid of the record, Field the key or XML path that
// was looked up.
type FieldError struct {
	UID   string
	Field string
}

func (e *FieldError) Error() string {
	if e.UID == "" {
		return fmt.Sprintf("missing field %q", e.Field)
	}
	return fmt.Sprintf("record %s: missing field %q", e.UID, e.Field)
}

// Missing builds a KindMissingField error for uid and field.
func Missing(op Op, uid, field string) error {
	return &Error{Op: op, Kind: KindMissingField, Err: &FieldError{UID: uid, Field: field}}
}

// IsKind checks if an error, or any error it wraps, is of the given kind.
func IsKind(err error, kind Kind) bool {
	return GetKind(err) == kind
}

// GetKind returns the first kind set along the chain, or KindUnknown.
// Wrap and WrapMsg leave Kind unset, so the kind of the wrapped error shows through.
func GetKind(err error) Kind {
	for err != nil {
		var e *Error
		if !stderrors.As(err, &e) {
			return KindUnknown
		}
		if e.Kind != KindUnknown {
			return e.Kind
		}
		err = e.Err
	}
	return KindUnknown
}

// AsFieldError returns the FieldError in err's chain, if any.
func AsFieldError(err error) (*FieldError, bool) {
	var fe *FieldError
	if stderrors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// Is and As are re-exported so callers importing this package under the
// name errors do not also need the standard library package.
var (
	Is  = stderrors.Is
	As  = stderrors.As
	New = stderrors.New
)
