package user

import "errors"

var (
	ErrInvalidToken            = errors.New("invalid or expired token")
	ErrInvalidRole             = errors.New("invalid role")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	ErrAgencyIDRequired        = errors.New("agency ID is required")
)
