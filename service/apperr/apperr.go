// Package apperr holds the error codes shared by services and controllers.
package apperr

import "errors"

type ErrCode string

const (
	ErrNotFound        ErrCode = "NOT_FOUND"
	ErrNotOwner        ErrCode = "NOT_OWNER"
	ErrAlreadyReserved ErrCode = "ALREADY_RESERVED"
	ErrNotReserved     ErrCode = "NOT_RESERVED"
	ErrBooked          ErrCode = "BOOKED"
	ErrPaymentRequired ErrCode = "PAYMENT_REQUIRED"
	ErrPaymentFailed   ErrCode = "PAYMENT_FAILED"
	ErrInvalidPayload  ErrCode = "INVALID_PAYLOAD"
)

type codedError struct {
	code  ErrCode
	msg   string
	cause error
}

func (e codedError) Error() string {
	s := string(e.code)
	if e.msg != "" {
		s += ": " + e.msg
	}
	if e.cause != nil {
		s += ": " + e.cause.Error()
	}
	return s
}
func (e codedError) Code() ErrCode { return e.code }
func (e codedError) Unwrap() error { return e.cause }

func Make(c ErrCode, msg string) error { return codedError{code: c, msg: msg} }
func Wrap(c ErrCode, msg string, cause error) error {
	return codedError{code: c, msg: msg, cause: cause}
}

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}
