package service

import "errors"

// Code is the stable numeric identity of a payment error.
type Code int

const (
	CodeNotFound    Code = 1
	CodeExpired     Code = 2
	CodeAlreadyPaid Code = 3
	CodeInvalidTx   Code = 4
	CodeBadJWT      Code = 5
)

// Error is an expected, caller-visible failure. Two Errors match under
// errors.Is when their codes are equal.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrNotFound    = &Error{Code: CodeNotFound, Message: "payment not found"}
	ErrExpired     = &Error{Code: CodeExpired, Message: "invoice expired"}
	ErrAlreadyPaid = &Error{Code: CodeAlreadyPaid, Message: "invoice already paid"}
	ErrInvalidTx   = &Error{Code: CodeInvalidTx, Message: "invalid transaction"}
	ErrBadJWT      = &Error{Code: CodeBadJWT, Message: "invalid access token"}
)

// CodeOf extracts the payment error code from err, if any.
func CodeOf(err error) (Code, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return 0, false
}
