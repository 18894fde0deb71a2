package model

import "errors"

var (
	// ErrInvalidArgument marks unknown country/item names and malformed queries.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound marks a missing record that no upstream fetch can supply.
	ErrNotFound = errors.New("not found")

	// ErrUpstreamFailure marks a provider HTTP 400/404, a timeout or an unparsable payload.
	ErrUpstreamFailure = errors.New("upstream failure")
)
