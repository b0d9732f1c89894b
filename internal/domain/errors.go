package domain

import "errors"

// Error categories shared across the bot. Handlers match on these with
// errors.Is and turn them into user-facing replies; none of them is
// allowed to take the process down.
var (
	// ErrValidation marks bad user input, recovered locally with a usage hint.
	ErrValidation = errors.New("invalid input")
	// ErrStorage marks a datastore I/O failure.
	ErrStorage = errors.New("storage failure")
	// ErrDelivery marks a failed outbound send.
	ErrDelivery = errors.New("delivery failure")
	// ErrCollaborator marks a search/decode/render dependency failure.
	ErrCollaborator = errors.New("collaborator unavailable")
)
