package employee

import "errors"

var (
	ErrEmployeeNotFound        = errors.New("employee not found")
	ErrEmailExists             = errors.New("email already registered")
	ErrAdminAndBookkeeper      = errors.New("an employee cannot be both admin and bookkeeper")
	ErrEmployeeAlreadyActive   = errors.New("employee is already active")
	ErrEmployeeAlreadyInactive = errors.New("employee is already archived")
	ErrCannotArchiveSelf       = errors.New("cannot archive your own employee record")
	ErrCannotDemoteSelf        = errors.New("cannot remove your own admin access")
	ErrNoEmail                 = errors.New("employee has no email address")
	ErrInvitationAccepted      = errors.New("invitation was already accepted")
)
