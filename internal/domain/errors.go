package domain

import "errors"

var (
	ErrSampleUnavailable  = errors.New("metrics sample unavailable")
	ErrSinkDelivery       = errors.New("report sink delivery failed")
	ErrProbeFailed        = errors.New("dependency probe failed")
	ErrUnknownEnvironment = errors.New("unknown environment")
	ErrInvalidConfig      = errors.New("invalid monitor configuration")
)
