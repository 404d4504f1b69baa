// Package paginate groups a flat collection by derived keys and splits each
// group into pages that share one set of sibling links.
//
// Paginate is pure: it never mutates its input and returns the same result
// for the same arguments.
package paginate

import (
	"fmt"
	"sort"
	"strings"
	"time"

	folioerrors "github.com/Aman-CERP/folio/internal/errors"
)

// Dated is implemented by anything with a publish date.
type Dated interface {
	PublishedAt() time.Time
}

// GroupFunc returns the keys an item belongs to. It may return no keys.
// Empty strings are skipped, and a key listed twice for the same item
// associates that item once.
type GroupFunc[T any] func(T) []string

// PermalinkFunc maps a key and a 1-based page number to a URL.
type PermalinkFunc func(key string, page int) string

// KeySort orders the groups in the output.
type KeySort string

const (
	KeySortAsc  KeySort = "asc"
	KeySortDesc KeySort = "desc"
)

// Options configures Paginate.
type Options struct {
	// PageSize is the maximum number of items per page. Must be positive.
	PageSize int
	// KeySort defaults to KeySortAsc.
	KeySort KeySort
	// Permalink is optional. Without it every page has empty Hrefs.
	Permalink PermalinkFunc
}

// Page is one page of one group.
type Page[T any] struct {
	Key string
	// PageNumber is 0-based.
	PageNumber int
	Items      []T
	// Hrefs has one URL per page of this key, identical on every page.
	Hrefs      []string
	TotalPages int
}

// Result is the output of Paginate.
type Result[T any] struct {
	// Pages holds every key's pages, keys in KeySort order, pages in order.
	Pages []Page[T]
	// Keys maps each key to its item count across all pages.
	Keys map[string]int
}

// ParseKeySort validates s, treating "" as ascending.
func ParseKeySort(s string) (KeySort, error) {
	switch KeySort(strings.ToLower(s)) {
	case "", KeySortAsc:
		return KeySortAsc, nil
	case KeySortDesc:
		return KeySortDesc, nil
	default:
		return "", folioerrors.New(folioerrors.ErrCodeInvalidKeySort,
			fmt.Sprintf("unknown key sort %q", s), nil).
			WithSuggestion("use asc or desc")
	}
}

// Paginate groups items with group, sorts each group by publish date
// (newest first, stable) and chunks it into pages of opts.PageSize.
func Paginate[T Dated](items []T, group GroupFunc[T], opts Options) (*Result[T], error) {
	if opts.PageSize <= 0 {
		return nil, folioerrors.New(folioerrors.ErrCodeInvalidPageSize,
			fmt.Sprintf("page size must be positive, got %d", opts.PageSize), nil)
	}
	keySort, err := ParseKeySort(string(opts.KeySort))
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, folioerrors.New(folioerrors.ErrCodeInvalidInput, "group function is required", nil)
	}

	groups := make(map[string][]T)
	for _, item := range items {
		keys := group(item)
		for i, key := range keys {
			if key == "" || seenBefore(keys[:i], key) {
				continue
			}
			groups[key] = append(groups[key], item)
		}
	}

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	if keySort == KeySortDesc {
		for i, j := 0, len(keys)-1; i < j; i, j = i+1, j-1 {
			keys[i], keys[j] = keys[j], keys[i]
		}
	}

	result := &Result[T]{
		Pages: []Page[T]{},
		Keys:  make(map[string]int, len(keys)),
	}
	for _, key := range keys {
		members := groups[key]
		sort.SliceStable(members, func(i, j int) bool {
			return members[i].PublishedAt().After(members[j].PublishedAt())
		})

		total := (len(members) + opts.PageSize - 1) / opts.PageSize
		hrefs := make([]string, 0, total)
		if opts.Permalink != nil {
			for p := 1; p <= total; p++ {
				hrefs = append(hrefs, opts.Permalink(key, p))
			}
		}

		for n := 0; n < total; n++ {
			start := n * opts.PageSize
			end := min(start+opts.PageSize, len(members))
			result.Pages = append(result.Pages, Page[T]{
				Key:        key,
				PageNumber: n,
				Items:      members[start:end:end],
				Hrefs:      hrefs,
				TotalPages: total,
			})
		}
		result.Keys[key] = len(members)
	}

	return result, nil
}

func seenBefore(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
