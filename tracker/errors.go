package tracker

import "errors"

// ErrInvalidInput is returned when person input fails validation.
var ErrInvalidInput = errors.New("tracker: invalid input")

// ErrNoNameDetected is returned by AddFromURL when the page yields no
// usable name for the new entry.
var ErrNoNameDetected = errors.New("tracker: could not detect name")
