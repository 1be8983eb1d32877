package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound         = errors.New("entity not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrOrderNotPayable  = errors.New("order does not need payment")
	ErrInvalidCallback  = errors.New("callback response is invalid")
	ErrUnexpectedStatus = errors.New("unexpected application status")
	ErrMethodMismatch   = errors.New("order payment method does not belong to this gateway")
	ErrNoApplicationID  = errors.New("processor returned no application id")
	ErrUnknownGateway   = errors.New("unknown gateway variant")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrMetadataConflict = errors.New("order already carries a different application id")
)
