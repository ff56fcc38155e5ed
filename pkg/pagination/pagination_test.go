package pagination

import (
	"math"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	assert.Equal(t, Params{Page: 1, Limit: 10, Offset: 0}, p)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name        string
		page, limit int
		want        Params
	}{
		{"defaults", 1, 10, Params{Page: 1, Limit: 10, Offset: 0}},
		{"page zero", 0, 10, Params{Page: 1, Limit: 10, Offset: 0}},
		{"negative page", -3, 10, Params{Page: 1, Limit: 10, Offset: 0}},
		{"zero limit", 2, 0, Params{Page: 2, Limit: 10, Offset: 10}},
		{"capped limit", 1, 500, Params{Page: 1, Limit: 100, Offset: 0}},
		{"exactly max", 3, 100, Params{Page: 3, Limit: 100, Offset: 200}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.page, tt.limit))
		})
	}
}

func TestFromRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/v1/cars?page=3&limit=25", nil)
	assert.Equal(t, Params{Page: 3, Limit: 25, Offset: 50}, FromRequest(r))

	r = httptest.NewRequest("GET", "/api/v1/cars?page=abc&limit=", nil)
	assert.Equal(t, DefaultParams(), FromRequest(r))

	r = httptest.NewRequest("GET", "/api/v1/cars?limit=1000", nil)
	assert.Equal(t, 100, FromRequest(r).Limit)
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(1, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(11, 10))
	assert.Equal(t, 0, TotalPages(5, 0))
}

func TestNewResult(t *testing.T) {
	r := NewResult([]string{"a", "b"}, 25, Normalize(2, 10))
	assert.Equal(t, 3, r.TotalPages)
	assert.True(t, r.HasNext)
	assert.True(t, r.HasPrev)

	last := NewResult([]string{"a"}, 21, Normalize(3, 10))
	assert.False(t, last.HasNext)
}

func TestSlice(t *testing.T) {
	all := []int{1, 2, 3, 4, 5, 6, 7}

	first := Slice(all, Normalize(1, 3))
	assert.Equal(t, []int{1, 2, 3}, first.Items)
	assert.Equal(t, 7, first.Total)
	assert.Equal(t, 3, first.TotalPages)

	last := Slice(all, Normalize(3, 3))
	assert.Equal(t, []int{7}, last.Items)
	assert.False(t, last.HasNext)

	past := Slice(all, Normalize(9, 3))
	assert.Empty(t, past.Items)
	assert.Equal(t, 7, past.Total)

	empty := Slice([]int(nil), DefaultParams())
	assert.Empty(t, empty.Items)
	assert.Equal(t, 0, empty.TotalPages)
}

func TestSlice_DoesNotAliasInput(t *testing.T) {
	all := []int{1, 2, 3}
	page := Slice(all, Normalize(1, 2))
	page.Items[0] = 99
	assert.Equal(t, 1, all[0])
}

func TestNormalize_HugePageDoesNotOverflow(t *testing.T) {
	for _, limit := range []int{1, 7, 50, MaxLimit} {
		p := Normalize(math.MaxInt64/50, limit)
		assert.GreaterOrEqual(t, p.Offset, 0, "limit %d", limit)
		assert.Equal(t, (p.Page-1)*p.Limit, p.Offset)
	}
}

func TestSlice_HugePageIsPastTheEnd(t *testing.T) {
	res := Slice([]int{1, 2, 3}, Normalize(math.MaxInt64/50, 100))

	assert.Empty(t, res.Items)
	assert.Equal(t, 3, res.Total)
	assert.False(t, res.HasNext)

	res = Slice([]int{1, 2, 3}, Params{Page: 2, Limit: 10, Offset: -5})
	assert.Empty(t, res.Items)
}
