package pagination

import (
	"math"
	"net/url"
	"strconv"

	"github.com/smallbiznis/metr/pkg/db/option"
)

// Pagination is a 1-indexed page request.
type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

func (p Pagination) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// Options returns the limit/offset query options for the page.
func (p Pagination) Options() []option.QueryOption {
	return []option.QueryOption{
		option.WithOffset(p.Offset()),
		option.WithLimit(p.PageSize),
	}
}

// InRange reports whether the end of the page is addressable as an int
// offset. Huge page numbers would otherwise wrap to a negative offset.
func (p Pagination) InRange() bool {
	if p.Page < 1 || p.PageSize < 1 {
		return false
	}
	return p.Page-1 <= (math.MaxInt-p.PageSize)/p.PageSize
}

// HasMore reports whether rows remain past the current page.
func (p Pagination) HasMore(total int64) bool {
	if p.Page < 1 || p.PageSize < 1 || total <= 0 {
		return false
	}
	// Page*PageSize < total, rearranged so it cannot overflow.
	return int64(p.Page) <= (total-1)/int64(p.PageSize)
}

// NextPageLink builds the link to the following page, keeping the extra
// query values. It returns nil on the last page.
func NextPageLink(baseURL string, p Pagination, total int64, extra url.Values) *string {
	if !p.HasMore(total) {
		return nil
	}

	values := url.Values{}
	for key, vals := range extra {
		for _, v := range vals {
			values.Add(key, v)
		}
	}
	values.Set("page", strconv.Itoa(p.Page+1))
	values.Set("page_size", strconv.Itoa(p.PageSize))

	link := baseURL + "?" + values.Encode()
	return &link
}
