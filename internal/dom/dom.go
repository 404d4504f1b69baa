// Package dom hosts the search engine in a static HTML page. It finds the
// search form, input and results panel by id and applies the engine's
// mutations to the parsed node tree.
package dom

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	folioerrors "github.com/Aman-CERP/folio/internal/errors"
	"github.com/Aman-CERP/folio/internal/search"
)

// Element ids the page must carry.
const (
	FormID    = "search-form"
	InputID   = "search-input"
	ResultsID = "search-results"
)

// Page is a parsed HTML document acting as a search.Host.
type Page struct {
	mu      sync.Mutex
	doc     *html.Node
	form    *html.Node
	input   *html.Node
	results *html.Node
}

var _ search.Host = (*Page)(nil)

// Parse reads an HTML document. A page without the search elements still
// parses; it just reports itself as unattached.
func Parse(r io.Reader) (*Page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, folioerrors.New(folioerrors.ErrCodeFileCorrupt, "failed to parse HTML page", err)
	}

	p := &Page{doc: doc}
	walk(doc, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		switch getAttr(n, "id") {
		case FormID:
			if p.form == nil {
				p.form = n
			}
		case InputID:
			if p.input == nil {
				p.input = n
			}
		case ResultsID:
			if p.results == nil {
				p.results = n
			}
		}
	})
	return p, nil
}

// Render writes the document back out.
func (p *Page) Render(w io.Writer) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := html.Render(w, p.doc); err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}
	return nil
}

// ResultsHTML renders only the results panel.
func (p *Page) ResultsHTML() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.results == nil {
		return ""
	}
	var b strings.Builder
	_ = html.Render(&b, p.results)
	return b.String()
}

// SetInputValue types v into the search input.
func (p *Page) SetInputValue(v string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.input != nil {
		setAttr(p.input, "value", v)
	}
}

// Attached implements search.Host.
func (p *Page) Attached() bool {
	return p.form != nil && p.input != nil && p.results != nil
}

// InputValue implements search.Host.
func (p *Page) InputValue() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.input == nil {
		return ""
	}
	return getAttr(p.input, "value")
}

// ClearResults implements search.Host.
func (p *Page) ClearResults() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for c := p.results.FirstChild; c != nil; c = p.results.FirstChild {
		p.results.RemoveChild(c)
	}
}

// RenderResults implements search.Host.
func (p *Page) RenderResults(v search.View) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(v.Entries) == 0 {
		p.results.AppendChild(element(atom.P, nil, text(v.Message)))
		return
	}

	heading := element(atom.H2, []html.Attribute{{Key: "class", Val: "search-results-heading"}}, text(v.Heading))
	list := element(atom.Ul, nil)
	for _, e := range v.Entries {
		item := element(atom.Li, nil,
			element(atom.A, []html.Attribute{{Key: "href", Val: e.URL}}, text(e.Title)))
		if e.Description != "" {
			item.AppendChild(element(atom.P, nil, text(e.Description)))
		}
		list.AppendChild(item)
	}

	wrapper := element(atom.Div, []html.Attribute{{Key: "class", Val: "search-results-wrapper"}}, heading, list)
	p.results.AppendChild(wrapper)
}

// SetResultsHidden implements search.Host.
func (p *Page) SetResultsHidden(hidden bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if hidden {
		setAttr(p.results, "hidden", "")
	} else {
		removeAttr(p.results, "hidden")
	}
}

// SetExpanded implements search.Host.
func (p *Page) SetExpanded(expanded bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	setAttr(p.input, "aria-expanded", fmt.Sprintf("%t", expanded))
}

// MarkLive implements search.Host.
func (p *Page) MarkLive() {
	p.mu.Lock()
	defer p.mu.Unlock()
	setAttr(p.results, "aria-live", "polite")
}

// HideForm implements search.Host.
func (p *Page) HideForm() {
	p.mu.Lock()
	defer p.mu.Unlock()
	setAttr(p.form, "style", setStyleProperty(getAttr(p.form, "style"), "display", "none"))
}
