package model

import "errors"

// ErrSignInRequired is returned when history is read or written without a
// signed-in user.
var ErrSignInRequired = errors.New("sign in required")
