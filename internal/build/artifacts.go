package build

import (
	"time"

	"github.com/Aman-CERP/folio/internal/content"
	"github.com/Aman-CERP/folio/internal/paginate"
)

// Artifact file names inside the output directory.
const (
	TagPagesFile  = "tag-pages.json"
	TagCountsFile = "tag-counts.json"
)

// TagPage is one entry of tag-pages.json: everything a template needs to
// render one page of one tag.
type TagPage struct {
	Tag        string          `json:"tag"`
	URL        string          `json:"url"`
	PageNumber int             `json:"page_number"`
	TotalPages int             `json:"total_pages"`
	Items      []PageItem      `json:"items"`
	Hrefs      []string        `json:"hrefs"`
	Href       paginate.Href   `json:"href"`
	Links      []paginate.Link `json:"links"`
}

// PageItem is the listing view of one item.
type PageItem struct {
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Date        time.Time `json:"date"`
	Tags        []string  `json:"tags"`
}

// TagCount is one entry of tag-counts.json.
type TagCount struct {
	Tag   string `json:"tag"`
	URL   string `json:"url"`
	Count int    `json:"count"`
}

func tagPages(pages []paginate.Page[content.Item]) []TagPage {
	out := make([]TagPage, 0, len(pages))
	for _, p := range pages {
		items := make([]PageItem, 0, len(p.Items))
		for _, it := range p.Items {
			items = append(items, PageItem{
				URL:         it.URL,
				Title:       it.Title,
				Description: it.Description,
				Date:        it.Date,
				Tags:        content.DisplayTags(it.Tags),
			})
		}

		var url string
		if p.PageNumber < len(p.Hrefs) {
			url = p.Hrefs[p.PageNumber]
		}
		out = append(out, TagPage{
			Tag:        p.Key,
			URL:        url,
			PageNumber: p.PageNumber,
			TotalPages: p.TotalPages,
			Items:      items,
			Hrefs:      p.Hrefs,
			Href:       p.Href(),
			Links:      p.Links(),
		})
	}
	return out
}

// tagCounts lists the keys in page order with their totals.
func tagCounts(res *paginate.Result[content.Item]) []TagCount {
	out := make([]TagCount, 0, len(res.Keys))
	for _, p := range res.Pages {
		if p.PageNumber != 0 {
			continue
		}
		var url string
		if len(p.Hrefs) > 0 {
			url = p.Hrefs[0]
		}
		out = append(out, TagCount{Tag: p.Key, URL: url, Count: res.Keys[p.Key]})
	}
	return out
}
