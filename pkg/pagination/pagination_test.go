package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewClampsValues(t *testing.T) {
	p := New(0, 500)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, MaxLimit, p.Limit)
	assert.Equal(t, 0, p.Skip)

	p = New(3, 10)
	assert.Equal(t, 20, p.Skip)
}

func TestMetadataFrom(t *testing.T) {
	meta := MetadataFrom(45, New(2, 20))
	assert.Equal(t, 3, meta.TotalPages)
	assert.True(t, meta.HasNextPage)
	assert.True(t, meta.HasPrevPage)
}

func TestSlice(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	assert.Equal(t, []int{3, 4}, Slice(items, New(2, 2)))
	assert.Equal(t, []int{5}, Slice(items, New(3, 2)))
	assert.Empty(t, Slice(items, New(4, 2)))
}
