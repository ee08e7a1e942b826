package app

import "errors"

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrUsernameExists    = errors.New("username already exists")
	ErrEmailExists       = errors.New("email already exists")
	ErrInvalidCredential = errors.New("invalid username or password")

	ErrForbidden       = errors.New("forbidden")
	ErrSessionNotFound = errors.New("session not found")
	ErrTicketNotFound  = errors.New("ticket not found")
	ErrMessageEmpty    = errors.New("message content is empty")

	// ErrTicketAlreadyClaimed means the claim lost: the ticket already has
	// a responder or has left the open state.
	ErrTicketAlreadyClaimed = errors.New("ticket already claimed")

	// ErrActiveTicketExists rejects raising a second ticket while the
	// session's current one is unresolved.
	ErrActiveTicketExists = errors.New("session already has an active ticket")

	// ErrInvalidTransition rejects state changes on a resolved ticket;
	// resolved is terminal.
	ErrInvalidTransition = errors.New("invalid ticket state transition")
)
