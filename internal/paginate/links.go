package paginate

import (
	"strconv"
	"strings"

	"github.com/Aman-CERP/folio/internal/content"
)

// Href holds the navigation links of one page. Missing links are "".
type Href struct {
	First    string `json:"first"`
	Last     string `json:"last"`
	Previous string `json:"previous"`
	Next     string `json:"next"`
}

// Link is one entry of a "page N of M" navigation list.
type Link struct {
	URL     string `json:"url"`
	Current bool   `json:"current"`
}

// Href returns the page's navigation links.
func (p Page[T]) Href() Href {
	if len(p.Hrefs) == 0 {
		return Href{}
	}
	h := Href{
		First: p.Hrefs[0],
		Last:  p.Hrefs[len(p.Hrefs)-1],
	}
	if p.PageNumber > 0 && p.PageNumber-1 < len(p.Hrefs) {
		h.Previous = p.Hrefs[p.PageNumber-1]
	}
	if p.PageNumber+1 < len(p.Hrefs) {
		h.Next = p.Hrefs[p.PageNumber+1]
	}
	return h
}

// Links lists every sibling page, marking this one as current.
func (p Page[T]) Links() []Link {
	links := make([]Link, len(p.Hrefs))
	for i, u := range p.Hrefs {
		links[i] = Link{URL: u, Current: i == p.PageNumber}
	}
	return links
}

// TagPermalink returns the tag page URL scheme: <prefix><slug>/ for the
// first page and <prefix><slug>/<n>/ after it.
func TagPermalink(prefix string) PermalinkFunc {
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return func(key string, page int) string {
		base := prefix + content.Slugify(key) + "/"
		if page <= 1 {
			return base
		}
		return base + strconv.Itoa(page) + "/"
	}
}

// ByTags groups items by their tags, ignoring the excluded utility tags.
func ByTags(excluded ...string) GroupFunc[content.Item] {
	return func(item content.Item) []string {
		return content.FilterTags(item.Tags, excluded...)
	}
}
