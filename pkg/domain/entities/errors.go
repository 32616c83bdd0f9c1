package entities

import (
	"errors"
	"fmt"
)

// Kind classifies domain failures independently of any transport
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindInvalidTransition
	KindInsufficientStock
	KindNoCostsDefined
	KindNoBaseCurrency
	KindValidation
)

// String method for Kind enum
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindInvalidTransition:
		return "InvalidTransition"
	case KindInsufficientStock:
		return "InsufficientStock"
	case KindNoCostsDefined:
		return "NoCostsDefined"
	case KindNoBaseCurrency:
		return "NoBaseCurrency"
	case KindValidation:
		return "ValidationError"
	default:
		return "Internal"
	}
}

// Sentinel errors, one per kind. They match any *Error of the same kind through errors.Is.
var (
	ErrNotFound          = &Error{Kind: KindNotFound, Message: "not found"}
	ErrInvalidTransition = &Error{Kind: KindInvalidTransition, Message: "invalid status transition"}
	ErrInsufficientStock = &Error{Kind: KindInsufficientStock, Message: "insufficient stock"}
	ErrNoCostsDefined    = &Error{Kind: KindNoCostsDefined, Message: "no costs defined"}
	ErrNoBaseCurrency    = &Error{Kind: KindNoBaseCurrency, Message: "no base currency"}
	ErrValidation        = &Error{Kind: KindValidation, Message: "validation failed"}
)

// Error is a classified domain error
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports kind equality so that wrapped domain errors match the sentinels
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// NewError creates a classified error with a formatted message
func NewError(kind Kind, op, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

// NotFoundf reports a missing entity
func NotFoundf(op, format string, args ...interface{}) *Error {
	return NewError(KindNotFound, op, format, args...)
}

// Validationf reports malformed or missing input
func Validationf(op, format string, args ...interface{}) *Error {
	return NewError(KindValidation, op, format, args...)
}

// InvalidTransitionf reports an operation attempted in the wrong status
func InvalidTransitionf(op, format string, args ...interface{}) *Error {
	return NewError(KindInvalidTransition, op, format, args...)
}

// InsufficientStockf reports a debit that would drive on-hand quantity negative
func InsufficientStockf(op, format string, args ...interface{}) *Error {
	return NewError(KindInsufficientStock, op, format, args...)
}

// KindOf classifies any error; unclassified errors are KindInternal
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}
