// Package utils holds helpers shared by the listing endpoints.
package utils

// Page sizes applied to list queries.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// GetPaginationParams resolves optional offset and limit values. A missing or negative offset
// reads as 0; a missing or non-positive limit reads as DefaultPageSize; limits above MaxPageSize are capped.
func GetPaginationParams(offset *int, limit *int) (int, int) {
	resolvedOffset := 0
	if offset != nil && *offset > 0 {
		resolvedOffset = *offset
	}

	resolvedLimit := DefaultPageSize
	if limit != nil && *limit > 0 {
		resolvedLimit = min(*limit, MaxPageSize)
	}

	return resolvedOffset, resolvedLimit
}
