package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest is returned when the category or query is missing or invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrUnknownCategory is returned when a category string is not one of the supported values
	ErrUnknownCategory = errors.New("unknown category")

	// ErrCacheMiss is returned when a key was never written or its entry has expired
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheWrite is returned when a cache store fails to persist an entry
	ErrCacheWrite = errors.New("cache write failed")

	// ErrProviderFailure is matched by every ProviderError
	ErrProviderFailure = errors.New("provider request failed")

	// ErrAuthFailure is matched by every AuthError
	ErrAuthFailure = errors.New("provider authentication failed")
)

// ProviderError describes a transport failure, a non-2xx response or a
// malformed payload from an external catalog.
type ProviderError struct {
	Source     Source
	StatusCode int
	Cause      error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s: status %d: %v", ErrProviderFailure, e.Source, e.StatusCode, e.Cause)
	}
	return fmt.Sprintf("%s: %s: %v", ErrProviderFailure, e.Source, e.Cause)
}

func (e *ProviderError) Unwrap() error { return e.Cause }

func (e *ProviderError) Is(target error) bool { return target == ErrProviderFailure }

// AuthError is returned by a credential broker when the provider rejects
// the configured client credentials or the exchange cannot be completed.
type AuthError struct {
	Source     Source
	StatusCode int
	Cause      error
}

func (e *AuthError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s: status %d: %v", ErrAuthFailure, e.Source, e.StatusCode, e.Cause)
	}
	return fmt.Sprintf("%s: %s: %v", ErrAuthFailure, e.Source, e.Cause)
}

func (e *AuthError) Unwrap() error { return e.Cause }

func (e *AuthError) Is(target error) bool { return target == ErrAuthFailure }
