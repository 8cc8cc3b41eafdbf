package usage

import "errors"

var (
	ErrUsageNotFound  = errors.New("usage counters not found")
	ErrUnknownCounter = errors.New("unknown usage counter")
)
