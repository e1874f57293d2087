package invitation

import "errors"

var (
	ErrNotFound        = errors.New("invitation not found")
	ErrExpired         = errors.New("invitation has expired")
	ErrAlreadyAccepted = errors.New("invitation was already accepted")
)
