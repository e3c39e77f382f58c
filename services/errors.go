package services

import (
	"errors"
	"fmt"
)

// Kind groups lifecycle errors by how a caller should react to them.
type Kind int

const (
	KindInfra Kind = iota
	KindNotFound
	KindConflict
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindValidation:
		return "validation"
	default:
		return "infra"
	}
}

// Error is the typed failure returned by every lifecycle operation.
// Two errors match under errors.Is when their codes are equal.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Withf returns a copy of e carrying a more specific message.
func (e *Error) Withf(format string, args ...interface{}) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Message: fmt.Sprintf(format, args...)}
}

func newError(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

var (
	ErrRequestNotFound  = newError(KindNotFound, "REQUEST_NOT_FOUND", "service request not found")
	ErrPaymentNotFound  = newError(KindNotFound, "PAYMENT_NOT_FOUND", "payment not found")
	ErrReviewNotFound   = newError(KindNotFound, "REVIEW_NOT_FOUND", "review not found")
	ErrServiceNotFound  = newError(KindNotFound, "SERVICE_NOT_FOUND", "service offering not found")
	ErrTrackingNotFound = newError(KindNotFound, "TRACKING_NOT_FOUND", "no tracking events for request")

	ErrPaymentAlreadyExists = newError(KindConflict, "PAYMENT_ALREADY_EXISTS", "payment already exists for this request")
	ErrReviewAlreadyExists  = newError(KindConflict, "REVIEW_ALREADY_EXISTS", "review already exists for this request")
	ErrInvalidTransition    = newError(KindConflict, "INVALID_TRANSITION", "status transition not allowed")
	ErrRequestNotCompleted  = newError(KindConflict, "REQUEST_NOT_COMPLETED", "request is not completed")
	ErrRequestNotPayable    = newError(KindConflict, "REQUEST_NOT_PAYABLE", "request can no longer be paid")

	ErrInvalidRating        = newError(KindValidation, "INVALID_RATING", "rating must be between 1 and 5")
	ErrInvalidStatus        = newError(KindValidation, "INVALID_STATUS", "unknown status")
	ErrInvalidTechnician    = newError(KindValidation, "INVALID_TECHNICIAN", "user is not an active technician")
	ErrServiceInactive      = newError(KindValidation, "SERVICE_INACTIVE", "service offering is not active")
	ErrReasonRequired       = newError(KindValidation, "REASON_REQUIRED", "a reason is required")
	ErrTechnicianRequired   = newError(KindValidation, "TECHNICIAN_REQUIRED", "request has no assigned technician")
	ErrInvalidAmount        = newError(KindValidation, "INVALID_AMOUNT", "amount must be greater than zero")
	ErrInvalidCurrency      = newError(KindValidation, "INVALID_CURRENCY", "currency must be a 3-letter code")
	ErrInvalidTrackingEvent = newError(KindValidation, "INVALID_TRACKING_EVENT", "invalid tracking event")
)

// infra wraps an unexpected store failure.
func infra(op string, err error) error {
	return &Error{Kind: KindInfra, Code: "INTERNAL", Message: op, Err: err}
}

// KindOf classifies any error returned by this package. Errors that are not
// lifecycle errors are infrastructure failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInfra
}

// CodeOf returns the machine readable code of err, or "INTERNAL".
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return "INTERNAL"
}
