package gateway

import (
	"errors"
	"fmt"
)

// StatusError is returned when the gateway answers with a non-2xx status.
type StatusError struct {
	Entity     Entity
	Operation  Operation
	StatusCode int
	// Message is the "message" field of a JSON error body, if any.
	Message string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("failed to %s %s: %d", verb(e.Operation), e.Entity, e.StatusCode)
	if e.Message != "" {
		msg += " (" + e.Message + ")"
	}
	return msg
}

// ApplicationError is returned when the gateway answers 2xx but reports an
// error in the body.
type ApplicationError struct {
	Entity    Entity
	Operation Operation
	Message   string
}

func (e *ApplicationError) Error() string {
	return e.Message
}

// IsApplicationError reports whether err carries a gateway-reported error and
// returns its message.
func IsApplicationError(err error) (string, bool) {
	var appErr *ApplicationError
	if errors.As(err, &appErr) {
		return appErr.Message, true
	}
	return "", false
}

func verb(op Operation) string {
	switch op {
	case OpRead, OpGet:
		return "fetch"
	case OpLogin:
		return "log in to"
	default:
		return string(op)
	}
}
