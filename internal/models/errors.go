package models

import "errors"

// ErrValidation is returned when a record is missing a required field or
// collides with an existing record on a unique field.
var ErrValidation = errors.New("validation failed")
