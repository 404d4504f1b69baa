package paginate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTagPermalink(t *testing.T) {
	link := TagPermalink("/tags/")
	assert.Equal(t, "/tags/web-dev/", link("Web Dev", 1))
	assert.Equal(t, "/tags/web-dev/2/", link("Web Dev", 2))
	assert.Equal(t, "/tags/web-dev/12/", link("Web Dev", 12))

	noSlash := TagPermalink("/topics")
	assert.Equal(t, "/topics/go/", noSlash("go", 1))
}

func TestPage_Href(t *testing.T) {
	hrefs := []string{"/tags/go/", "/tags/go/2/", "/tags/go/3/"}

	tests := []struct {
		name string
		page Page[post]
		want Href
	}{
		{
			name: "first",
			page: Page[post]{PageNumber: 0, Hrefs: hrefs},
			want: Href{First: hrefs[0], Last: hrefs[2], Next: hrefs[1]},
		},
		{
			name: "middle",
			page: Page[post]{PageNumber: 1, Hrefs: hrefs},
			want: Href{First: hrefs[0], Last: hrefs[2], Previous: hrefs[0], Next: hrefs[2]},
		},
		{
			name: "last",
			page: Page[post]{PageNumber: 2, Hrefs: hrefs},
			want: Href{First: hrefs[0], Last: hrefs[2], Previous: hrefs[1]},
		},
		{
			name: "no permalink",
			page: Page[post]{PageNumber: 1, Hrefs: []string{}},
			want: Href{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.page.Href())
		})
	}
}

func TestPage_Links(t *testing.T) {
	p := Page[post]{PageNumber: 1, Hrefs: []string{"/a/", "/a/2/"}}
	assert.Equal(t, []Link{{URL: "/a/"}, {URL: "/a/2/", Current: true}}, p.Links())
	assert.Empty(t, Page[post]{}.Links())
}

func TestParseKeySort(t *testing.T) {
	ks, err := ParseKeySort("")
	assert.NoError(t, err)
	assert.Equal(t, KeySortAsc, ks)

	ks, err = ParseKeySort("DESC")
	assert.NoError(t, err)
	assert.Equal(t, KeySortDesc, ks)

	_, err = ParseKeySort("sideways")
	assert.Error(t, err)
}
