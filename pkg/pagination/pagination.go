package pagination

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultPageSize mirrors the backend's PageNumberPagination page size.
	DefaultPageSize = 20
	// FirstPage is the 1-based index of the first page.
	FirstPage = 1
	pageParam = "page"
)

// Params holds page-number pagination inputs from controllers or services.
type Params struct {
	Page int
}

// Page is the backend's paginated envelope.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// HasNext reports whether another page is available.
func (p Page[T]) HasNext() bool {
	return p.Next != nil && strings.TrimSpace(*p.Next) != ""
}

// NextPage extracts the page number from the next link, or 0 when there is none.
func (p Page[T]) NextPage() (int, error) {
	if !p.HasNext() {
		return 0, nil
	}
	return PageFromURL(*p.Next)
}

// NormalizePage clamps non-positive page numbers to the first page.
func NormalizePage(page int) int {
	if page < FirstPage {
		return FirstPage
	}
	return page
}

// Apply sets the page query parameter, leaving the first page implicit.
func Apply(values url.Values, params Params) {
	page := NormalizePage(params.Page)
	if page == FirstPage {
		values.Del(pageParam)
		return
	}
	values.Set(pageParam, strconv.Itoa(page))
}

// PageFromURL parses the page query parameter out of an absolute or relative link.
// A link without the parameter refers to the first page.
func PageFromURL(link string) (int, error) {
	parsed, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return 0, fmt.Errorf("invalid page link: %w", err)
	}
	raw := parsed.Query().Get(pageParam)
	if raw == "" {
		return FirstPage, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < FirstPage {
		return 0, fmt.Errorf("invalid page number %q", raw)
	}
	return page, nil
}
