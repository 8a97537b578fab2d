package models

import "errors"

// Closed failure set of the core. Handlers map these to HTTP codes; the
// realtime router maps the temporal ones to chat_blocked events.
var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrSlotUnavailable   = errors.New("slot unavailable")
	ErrSlotReserved      = errors.New("slot is reserved")
	ErrAlreadyCompleted  = errors.New("booking already completed")
	ErrAlreadyProcessed  = errors.New("payment already processed")
	ErrInvalidSignature  = errors.New("invalid payment signature")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
)
