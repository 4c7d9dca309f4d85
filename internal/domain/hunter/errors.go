package hunter

import "errors"

// ErrProfileNotFound is returned when no hunter profile exists for a user.
var ErrProfileNotFound = errors.New("hunter profile not found")

// ErrInvalidProfile is returned when an application is missing required fields.
var ErrInvalidProfile = errors.New("invalid hunter profile")
