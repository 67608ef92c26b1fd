package progress

import "errors"

var (
	ErrProgressNotFound = errors.New("course progress not found")
)
