package models

import "errors"

var (
	// ErrInvalidConstraint is user-correctable and rejected before any matching.
	ErrInvalidConstraint = errors.New("invalid constraint")
	// ErrInvalidAssemblyRequest signals a programming-level misuse of the assembler.
	ErrInvalidAssemblyRequest = errors.New("invalid assembly request")
	// ErrUpstreamUnavailable wraps analysis or catalog timeouts and failures. Retryable.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrNoCandidates is reported as a shortfall, never returned from a request.
	ErrNoCandidates = errors.New("no candidates")

	ErrSessionNotFound = errors.New("session not found")
	ErrSetNotFound     = errors.New("outfit set not found")
)
