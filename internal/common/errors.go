// Package common defines shared constants and sentinel errors used across
// the blog service. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")

	// Post lifecycle errors.
	ErrPostNotFound = errors.New("post not found")
	ErrNotAuthor    = errors.New("not the author")

	// Asset store errors.
	ErrAssetNotFound = errors.New("asset not found")
	ErrStoreWrite    = errors.New("store write failed")
	ErrInvalidID     = errors.New("invalid identifier")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
)
