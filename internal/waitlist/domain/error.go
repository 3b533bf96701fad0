package domain

import "errors"

var (
	ErrInvalidProject         = errors.New("invalid_project")
	ErrInvalidEmail           = errors.New("invalid_email")
	ErrInvalidStatus          = errors.New("invalid_status")
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrEntryNotFound          = errors.New("entry not found")
	ErrReferralCodeExhausted  = errors.New("could not allocate referral code")
)
