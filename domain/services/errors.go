package services

import "errors"

// Domain errors surfaced to handlers, which map them onto HTTP statuses.
var (
	// Not found / scope
	ErrSessionNotFound = errors.New("session not found")
	ErrProjectNotFound = errors.New("project not found")
	ErrPersonNotFound  = errors.New("person not found")
	ErrPartnerNotFound = errors.New("partner not found")

	// Arbitration conflict states
	ErrSessionNotPending = errors.New("session not found or not pending")
	ErrSessionUnclaimed  = errors.New("session has no claimed person")
	ErrAlreadyResolved   = errors.New("session already resolved")
	ErrSessionBanned     = errors.New("banned session cannot own a person slot")

	// Guest flow
	ErrPersonNotInProject  = errors.New("claimed person does not belong to this project")
	ErrProjectLocked       = errors.New("project no longer accepts guest changes")
	ErrRestoreTokenInvalid = errors.New("restore token invalid or expired")

	// Authentication
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrNoCredential        = errors.New("no credential presented")
	ErrMultipleCredentials = errors.New("only one credential may be presented per login attempt")
	ErrEmailTaken          = errors.New("email already registered")
	ErrAccountInactive     = errors.New("account is inactive")
)
