package repository

import "errors"

// ErrDuplicateResponse is returned when an insert loses the race against the
// unique complaint->response constraint. The caller should re-read and retry.
var ErrDuplicateResponse = errors.New("complaint already has a response")
