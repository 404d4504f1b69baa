package content

import (
	"reflect"
	"slices"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Utility tags that mark collections rather than topics.
var (
	// GroupingExcludedTags are ignored when grouping items into tag pages.
	GroupingExcludedTags = []string{"all", "posts"}

	// DisplayExcludedTags are hidden from tag lists shown to readers.
	DisplayExcludedTags = []string{"all", "posts", "sidebar", "tagPages"}
)

// FilterTags returns tags without the excluded ones, preserving order.
// A nil input yields an empty, non-nil slice.
func FilterTags(tags []string, excluded ...string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if !slices.Contains(excluded, tag) {
			out = append(out, tag)
		}
	}
	return out
}

// DisplayTags filters the utility tags and sorts the rest.
func DisplayTags(tags []string) []string {
	out := FilterTags(tags, DisplayExcludedTags...)
	sort.Strings(out)
	return out
}

// Head returns the first n elements of s, or the last -n when n is negative.
func Head[T any](s []T, n int) []T {
	if len(s) == 0 {
		return []T{}
	}
	if n < 0 {
		if -n > len(s) {
			n = -len(s)
		}
		return s[len(s)+n:]
	}
	if n > len(s) {
		n = len(s)
	}
	return s[:n]
}

// WithMetadata returns the items whose front matter has key equal to value,
// sorted by date ascending.
func WithMetadata(items []Item, key string, value any) []Item {
	out := []Item{}
	for _, item := range items {
		if v, ok := item.Data[key]; ok && reflect.DeepEqual(v, value) {
			out = append(out, item)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// TagCounts returns how many items carry each tag.
func TagCounts(items []Item) map[string]int {
	counts := make(map[string]int)
	for _, item := range items {
		for _, tag := range item.Tags {
			counts[tag]++
		}
	}
	return counts
}

var slugReplacer = strings.NewReplacer("&", " and ", "@", " at ", "♥", " love ")

var foldAccents = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify turns s into a lower-case, URL-safe path segment.
// "Go & Rust" becomes "go-and-rust", "Café" becomes "cafe" and
// "fooBar" becomes "foo-bar".
func Slugify(s string) string {
	s = slugReplacer.Replace(s)
	if folded, _, err := transform.String(foldAccents, s); err == nil {
		s = folded
	}

	var b strings.Builder
	b.Grow(len(s))
	dash := false
	var prev rune
	for _, r := range s {
		switch {
		case r <= unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if unicode.IsUpper(r) && unicode.IsLower(prev) && !dash {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
			dash = false
		default:
			if b.Len() > 0 && !dash {
				b.WriteByte('-')
				dash = true
			}
		}
		prev = r
	}
	return strings.TrimSuffix(b.String(), "-")
}
