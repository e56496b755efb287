package domain

import "errors"

// ErrOrderNotFound is returned when the backend has no order with the requested ID.
var ErrOrderNotFound = errors.New("order not found")
