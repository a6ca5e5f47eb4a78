package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	p := Normalize(0, 0, 20)
	assert.Equal(t, Params{Page: 1, Limit: 20}, p)

	p = Normalize(3, 250, 20)
	assert.Equal(t, Params{Page: 3, Limit: 100}, p)

	p = Normalize(2, 10, 50)
	assert.Equal(t, 10, p.Offset())
}

func TestNewPage(t *testing.T) {
	page := NewPage([]int{1, 2, 3}, 7, Params{Page: 1, Limit: 3})
	assert.Equal(t, int64(7), page.Meta.Total)
	assert.Equal(t, int64(3), page.Meta.TotalPages)

	empty := NewPage[int](nil, 0, Params{Page: 1, Limit: 20})
	assert.NotNil(t, empty.Data)
	assert.Equal(t, int64(0), empty.Meta.TotalPages)
}
