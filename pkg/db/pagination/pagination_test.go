package pagination

import (
	"math"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Pagination{Page: 1, PageSize: 20}.Offset())
	assert.Equal(t, 40, Pagination{Page: 5, PageSize: 10}.Offset())
	assert.Equal(t, 0, Pagination{Page: 0, PageSize: 10}.Offset())
}

func TestNextPageLink(t *testing.T) {
	link := NextPageLink("/meters", Pagination{Page: 5, PageSize: 10}, 61, nil)
	require.NotNil(t, link)
	assert.Equal(t, "/meters?page=6&page_size=10", *link)
}

func TestNextPageLinkLastPage(t *testing.T) {
	assert.Nil(t, NextPageLink("/meters", Pagination{Page: 5, PageSize: 10}, 50, nil))
	assert.Nil(t, NextPageLink("/meters", Pagination{Page: 1, PageSize: 20}, 0, nil))
}

func TestNextPageLinkKeepsFilters(t *testing.T) {
	extra := url.Values{}
	extra.Set("enabled", "true")
	extra.Set("page", "3")

	link := NextPageLink("/meters", Pagination{Page: 1, PageSize: 2}, 3, extra)
	require.NotNil(t, link)
	assert.Equal(t, "/meters?enabled=true&page=2&page_size=2", *link)
}

func TestInRange(t *testing.T) {
	assert.True(t, Pagination{Page: 1, PageSize: 250}.InRange())
	assert.True(t, Pagination{Page: 1000000, PageSize: 250}.InRange())
	assert.False(t, Pagination{Page: math.MaxInt, PageSize: 2}.InRange())
	assert.False(t, Pagination{Page: math.MaxInt/2 + 1, PageSize: 2}.InRange())
	assert.False(t, Pagination{Page: 0, PageSize: 2}.InRange())
	assert.False(t, Pagination{Page: 1, PageSize: 0}.InRange())
}

func TestHasMoreDoesNotWrap(t *testing.T) {
	assert.False(t, Pagination{Page: math.MaxInt, PageSize: 2}.HasMore(3))
	assert.False(t, Pagination{Page: math.MaxInt, PageSize: math.MaxInt}.HasMore(math.MaxInt64))
	assert.True(t, Pagination{Page: 1, PageSize: 2}.HasMore(3))
	assert.False(t, Pagination{Page: 2, PageSize: 2}.HasMore(4))
	assert.True(t, Pagination{Page: 2, PageSize: 2}.HasMore(5))
}
