package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a conversation has no stored messages
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidRequest is wrapped by request validation failures
	ErrInvalidRequest = errors.New("invalid request")
)
