package utils

import "errors"

// Error kinds used across services. Repository and storage failures are
// wrapped with one of these so handlers can map them to stable API codes
// without leaking backend messages to clients.
var (
	ErrPersistence   = errors.New("PERSISTENCE_ERROR")
	ErrStorage       = errors.New("STORAGE_ERROR")
	ErrNotFound      = errors.New("NOT_FOUND")
	ErrInvalidStatus = errors.New("INVALID_STATUS")

	ErrInvalidCredentials = errors.New("INVALID_CREDENTIALS")
	ErrAccountInactive    = errors.New("ACCOUNT_INACTIVE")
	ErrInvalidToken       = errors.New("INVALID_TOKEN")
	ErrForbidden          = errors.New("FORBIDDEN")
)
