package pagination

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequest_Normalize(t *testing.T) {
	cases := []struct {
		name string
		in   Request
		want Request
	}{
		{name: "defaults", in: Request{}, want: Request{Page: 0, Size: DefaultSize}},
		{name: "negative page", in: Request{Page: -3, Size: 5}, want: Request{Page: 0, Size: 5}},
		{name: "oversized", in: Request{Page: 2, Size: 1000}, want: Request{Page: 2, Size: MaxSize}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.in.Normalize())
		})
	}
}

func TestSlice_ComputesWindowAndTotals(t *testing.T) {
	all := []int{1, 2, 3, 4, 5}

	page := Slice(all, Request{Page: 1, Size: 2})
	assert.Equal(t, []int{3, 4}, page.Items)
	assert.Equal(t, int64(5), page.TotalItems)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 1, page.Number)

	last := Slice(all, Request{Page: 2, Size: 2})
	assert.Equal(t, []int{5}, last.Items)

	beyond := Slice(all, Request{Page: 9, Size: 2})
	require.NotNil(t, beyond.Items)
	assert.Empty(t, beyond.Items)
	assert.Equal(t, int64(5), beyond.TotalItems)
}

func TestEmpty_HasNoPages(t *testing.T) {
	page := Empty[string](Request{})
	assert.Empty(t, page.Items)
	assert.Zero(t, page.TotalPages)
	assert.Equal(t, DefaultSize, page.Size)
}

func TestMap_KeepsMetadata(t *testing.T) {
	page := Slice([]int{1, 2, 3}, Request{Size: 2})
	mapped := Map(page, strconv.Itoa)
	assert.Equal(t, []string{"1", "2"}, mapped.Items)
	assert.Equal(t, page.TotalPages, mapped.TotalPages)
	assert.Equal(t, page.TotalItems, mapped.TotalItems)
}
