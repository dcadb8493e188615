package core

import "errors"

// Error taxonomy of the lesson plan flow. Concrete failures wrap one of these
// so the API layer can pick a status with errors.Is.
var (
	ErrValidation        = errors.New("validation error")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrConfig            = errors.New("server configuration error")
	ErrGenerationFormat  = errors.New("generated plan has an invalid format")
	ErrGenerationService = errors.New("generation service failed")
	ErrPersistence       = errors.New("persistence error")
	ErrNotFound          = errors.New("lesson plan not found")
)
