// Package errors provides the structured error type used to tell local
// validation failures apart from transport and design service failures.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Category classifies an Error.
type Category string

const (
	// Raised before any request is built or sent.
	CategoryValidation Category = "validation"
	CategoryConfig     Category = "config"

	// Raised while talking to the design service.
	CategoryNetwork Category = "network"
	CategoryService Category = "service"

	CategoryInternal Category = "internal"
)

// Fields carries structured context for an Error.
type Fields map[string]any

// Error is a categorized error with optional cause and context.
type Error struct {
	Category Category `json:"category"`
	Message  string   `json:"message"`
	Cause    error    `json:"cause,omitempty"`
	Context  Fields   `json:"context,omitempty"`
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Category, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// WithContext adds a key/value pair and returns the same error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(Fields)
	}
	e.Context[key] = value
	return e
}

// New creates an Error without a cause.
func New(category Category, message string) *Error {
	return &Error{Category: category, Message: message}
}

// Wrap creates an Error wrapping cause.
func Wrap(cause error, category Category, message string) *Error {
	return &Error{Category: category, Message: message, Cause: cause}
}

// IsCategory reports whether any *Error in err's chain has the given category.
func IsCategory(err error, category Category) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Category == category
	}
	return false
}

// GetCategory returns the category of the first *Error in err's chain,
// or CategoryInternal.
func GetCategory(err error) Category {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Category
	}
	return CategoryInternal
}

// Sent reports whether err happened after a request left the process.
// Validation and config errors are raised before anything is sent.
func Sent(err error) bool {
	switch GetCategory(err) {
	case CategoryNetwork, CategoryService:
		return true
	default:
		return false
	}
}
