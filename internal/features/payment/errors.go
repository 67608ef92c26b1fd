package payment

import "errors"

var (
	ErrNoCourses        = errors.New("no course ids provided")
	ErrAlreadyEnrolled  = errors.New("user already enrolled in course")
	ErrNoPrice          = errors.New("course has no price")
	ErrMissingFields    = errors.New("missing payment fields")
	ErrInvalidSignature = errors.New("payment signature mismatch")
	ErrPaymentNotFound  = errors.New("payment not found")
)
