package content

import (
	"time"
)

// Item is one content entity: a post, a page, a note.
type Item struct {
	URL         string
	Title       string
	Description string
	Tags        []string
	Date        time.Time
	Body        string

	// Data holds the raw front matter, including keys folio does not
	// interpret itself.
	Data map[string]any

	// SourcePath is the file the item was loaded from, relative to the
	// content directory.
	SourcePath string
}

// PublishedAt returns the item's publish date.
func (i Item) PublishedAt() time.Time {
	return i.Date
}

// HasTag reports whether the item carries tag.
func (i Item) HasTag(tag string) bool {
	for _, t := range i.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Collection is an ordered list of items.
type Collection []Item

// Tagged returns the items carrying tag, in collection order.
func (c Collection) Tagged(tag string) Collection {
	out := Collection{}
	for _, item := range c {
		if item.HasTag(tag) {
			out = append(out, item)
		}
	}
	return out
}

// Reversed returns a copy of c in reverse order.
func (c Collection) Reversed() Collection {
	out := make(Collection, len(c))
	for i, item := range c {
		out[len(c)-1-i] = item
	}
	return out
}

// ByURL returns the item with the given URL.
func (c Collection) ByURL(url string) (Item, bool) {
	for _, item := range c {
		if item.URL == url {
			return item, true
		}
	}
	return Item{}, false
}
