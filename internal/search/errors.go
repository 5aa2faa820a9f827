package search

import "errors"

var (
	// ErrMissingAPIKey is returned when a required API key is not provided.
	ErrMissingAPIKey = errors.New("API key is required")

	// ErrUnauthorized is returned when the search API rejects the
	// credentials. Not retryable; surface to the operator.
	ErrUnauthorized = errors.New("search API credentials rejected")

	// ErrRateLimited is returned when the search API rate limit is
	// exceeded. Retryable with backoff at the caller's discretion.
	ErrRateLimited = errors.New("search API rate limit exceeded")

	// ErrInsufficientCredits is returned when the account has run out of
	// API credits. Not retryable until the plan is topped up.
	ErrInsufficientCredits = errors.New("search API credits exhausted")

	// ErrAPI is the generic wrapper for other search API failures.
	ErrAPI = errors.New("search API error")
)
