package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trayananedelcheva/travel-buddy/internal/domain"
)

func intp(v int) *int { return &v }

func TestNewPaginationParams(t *testing.T) {
	tests := []struct {
		name        string
		page, limit *int
		want        domain.PaginationParams
		wantOffset  int
	}{
		{name: "defaults", want: domain.PaginationParams{Page: 1, Limit: 20}, wantOffset: 0},
		{name: "explicit", page: intp(3), limit: intp(10), want: domain.PaginationParams{Page: 3, Limit: 10}, wantOffset: 20},
		{name: "zero page", page: intp(0), want: domain.PaginationParams{Page: 1, Limit: 20}},
		{name: "negative limit", limit: intp(-5), want: domain.PaginationParams{Page: 1, Limit: 20}},
		{name: "limit capped", page: intp(2), limit: intp(500), want: domain.PaginationParams{Page: 2, Limit: 100}, wantOffset: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.NewPaginationParams(tt.page, tt.limit)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOffset, got.Offset())
		})
	}
}

func TestPaginationParams_TotalPages(t *testing.T) {
	p := domain.PaginationParams{Page: 1, Limit: 20}
	assert.Equal(t, 0, p.TotalPages(0))
	assert.Equal(t, 1, p.TotalPages(1))
	assert.Equal(t, 1, p.TotalPages(20))
	assert.Equal(t, 2, p.TotalPages(21))
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, domain.DefaultLimit, domain.ClampLimit(0))
	assert.Equal(t, 1, domain.ClampLimit(1))
	assert.Equal(t, domain.MaxLimit, domain.ClampLimit(domain.MaxLimit+1))
}
