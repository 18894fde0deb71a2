package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetPaginationParams(t *testing.T) {
	intPtr := func(i int) *int { return &i }

	tests := []struct {
		name       string
		offset     *int
		limit      *int
		wantOffset int
		wantLimit  int
	}{
		{name: "Defaults", wantOffset: 0, wantLimit: 20},
		{name: "Explicit", offset: intPtr(40), limit: intPtr(10), wantOffset: 40, wantLimit: 10},
		{name: "NegativeOffset", offset: intPtr(-5), wantOffset: 0, wantLimit: 20},
		{name: "ZeroLimit", limit: intPtr(0), wantOffset: 0, wantLimit: 20},
		{name: "CappedLimit", limit: intPtr(500), wantOffset: 0, wantLimit: MaxPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offset, limit := GetPaginationParams(tt.offset, tt.limit)
			assert.Equal(t, tt.wantOffset, offset)
			assert.Equal(t, tt.wantLimit, limit)
		})
	}
}
