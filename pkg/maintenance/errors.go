package maintenance

import "errors"

var (
	ErrCleanupAlreadyRunning = errors.New("notification cleanup sweep already running")
)
