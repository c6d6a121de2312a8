// Package result carries the expected outcomes of a request from the service
// layer to the controller, which maps each outcome to its response shape.
package result

import "fmt"

type Outcome int

const (
	OutcomeOk Outcome = iota
	OutcomeNotFound
	OutcomeUnauthorized
	OutcomeInvalid
	OutcomeRedirect
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOk:
		return "ok"
	case OutcomeNotFound:
		return "not found"
	case OutcomeUnauthorized:
		return "unauthorized"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeRedirect:
		return "redirect"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// FieldErrors maps a form field name to its error message.
// Fields without an error are absent.
type FieldErrors map[string]string

// Result is the outcome of an operation together with the data that belongs to it:
// Data for Ok, Message for NotFound, Errors for Invalid and Location for Redirect and Unauthorized.
type Result[T any] struct {
	Outcome  Outcome
	Data     T
	Message  string
	Errors   FieldErrors
	Location string
}

func Ok[T any](data T) Result[T] {
	return Result[T]{Outcome: OutcomeOk, Data: data}
}

func NotFound[T any](format string, args ...any) Result[T] {
	return Result[T]{Outcome: OutcomeNotFound, Message: fmt.Sprintf(format, args...)}
}

func Unauthorized[T any](location string) Result[T] {
	return Result[T]{Outcome: OutcomeUnauthorized, Location: location}
}

func Invalid[T any](errors FieldErrors) Result[T] {
	return Result[T]{Outcome: OutcomeInvalid, Errors: errors}
}

func Redirect[T any](location string) Result[T] {
	return Result[T]{Outcome: OutcomeRedirect, Location: location}
}

func (r Result[T]) IsOk() bool {
	return r.Outcome == OutcomeOk
}
