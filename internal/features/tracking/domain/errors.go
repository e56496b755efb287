package domain

import "errors"

// ErrFeedUnavailable is returned when a tracking source cannot be read.
var ErrFeedUnavailable = errors.New("tracking feed unavailable")
