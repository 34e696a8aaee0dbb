package service

import "errors"

// Denial and validation errors surfaced verbatim in the response envelope.
var (
	ErrPremiumRequired  = errors.New("This feature is only available to premium users.")
	ErrFreeLimitReached = errors.New("You have reached your free limit. Upgrade to continue.")
	ErrFileTooLarge     = errors.New("The file size exceeds the maximum allowed limit of 5MB. Please upload a smaller file.")
	ErrCreationNotFound = errors.New("Creation not found")
)
