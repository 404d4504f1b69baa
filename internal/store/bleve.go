package store

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/registry"
	"github.com/blevesearch/bleve/v2/search/query"

	folioerrors "github.com/Aman-CERP/folio/internal/errors"
)

const (
	// ProseTokenizerName is the registered bleve name of the word tokenizer.
	ProseTokenizerName = "folio_prose"

	// ProseStopFilterName is the registered bleve name of the stop filter.
	ProseStopFilterName = "folio_stop"

	// ProseAnalyzerName is the analyzer applied to every text field.
	ProseAnalyzerName = "folio_prose_analyzer"

	// ordField stores the insertion ordinal for tie-breaking.
	ordField = "ord"
)

func init() {
	_ = registry.RegisterTokenizer(ProseTokenizerName, proseTokenizerConstructor)
	_ = registry.RegisterTokenFilter(ProseStopFilterName, proseStopFilterConstructor)
}

// BleveIndex matches with an in-memory bleve index.
type BleveIndex struct {
	docStore
	index bleve.Index
}

var _ Index = (*BleveIndex)(nil)

// bleveDocument is the shape indexed by bleve.
type bleveDocument struct {
	Title       string   `json:"title"`
	Tags        []string `json:"tags"`
	Description string   `json:"description"`
	Body        string   `json:"body"`
	Ord         string   `json:"ord"`
}

// NewBleveIndex creates an empty in-memory bleve index.
func NewBleveIndex() (*BleveIndex, error) {
	indexMapping, err := createIndexMapping()
	if err != nil {
		return nil, fmt.Errorf("failed to create index mapping: %w", err)
	}

	idx, err := bleve.NewMemOnly(indexMapping)
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	return &BleveIndex{docStore: newDocStore(), index: idx}, nil
}

func createIndexMapping() (*mapping.IndexMappingImpl, error) {
	indexMapping := bleve.NewIndexMapping()

	err := indexMapping.AddCustomAnalyzer(ProseAnalyzerName, map[string]interface{}{
		"type":      custom.Name,
		"tokenizer": ProseTokenizerName,
		"token_filters": []string{
			lowercase.Name,
			ProseStopFilterName,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add custom analyzer: %w", err)
	}

	doc := bleve.NewDocumentStaticMapping()
	for _, field := range Fields {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = ProseAnalyzerName
		fm.Store = false
		fm.IncludeInAll = false
		fm.IncludeTermVectors = false
		doc.AddFieldMappingsAt(field, fm)
	}

	ord := bleve.NewTextFieldMapping()
	ord.Analyzer = keyword.Name
	ord.Store = false
	ord.IncludeInAll = false
	ord.IncludeTermVectors = false
	doc.AddFieldMappingsAt(ordField, ord)

	indexMapping.DefaultMapping = doc
	indexMapping.DefaultAnalyzer = ProseAnalyzerName

	return indexMapping, nil
}

// ordKey is zero padded so lexical order equals insertion order.
func ordKey(i int) string {
	return fmt.Sprintf("%010d", i)
}

// AddDocument implements Index.
func (b *BleveIndex) AddDocument(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	doc = normalize(doc)
	ord, err := b.reserve(doc)
	if err != nil {
		return err
	}

	err = b.index.Index(doc.Ref, bleveDocument{
		Title:       doc.Title,
		Tags:        doc.Tags,
		Description: doc.Description,
		Body:        doc.Body,
		Ord:         ordKey(ord),
	})
	if err != nil {
		return folioerrors.New(folioerrors.ErrCodeIndexFailed,
			fmt.Sprintf("failed to index document %s", doc.Ref), err).
			WithDetail("ref", doc.Ref)
	}

	b.commit(doc)
	return nil
}

// Search implements Index. Every query term matches as a prefix in every
// weighted field; terms are OR-combined.
func (b *BleveIndex) Search(ctx context.Context, queryStr string, w Weights) ([]Hit, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, ErrIndexClosed
	}

	terms := QueryTerms(queryStr)
	if len(terms) == 0 || len(b.docs) == 0 {
		return []Hit{}, nil
	}

	var clauses []query.Query
	for _, term := range terms {
		for _, field := range Fields {
			boost := w.forField(field)
			if boost <= 0 {
				continue
			}
			q := bleve.NewPrefixQuery(term)
			q.SetField(field)
			q.SetBoost(boost)
			clauses = append(clauses, q)
		}
	}
	if len(clauses) == 0 {
		return []Hit{}, nil
	}

	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(clauses...), len(b.docs), 0, false)
	req.SortBy([]string{"-_score", ordField})

	result, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, folioerrors.New(folioerrors.ErrCodeSearchFailed, "search failed", err)
	}

	hits := make([]Hit, 0, len(result.Hits))
	for _, match := range result.Hits {
		i, ok := b.byRef[match.ID]
		if !ok {
			continue
		}
		hits = append(hits, b.hit(i, match.Score))
	}
	return hits, nil
}

// Serialize implements Index.
func (b *BleveIndex) Serialize(w io.Writer) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrIndexClosed
	}
	return writeSnapshot(w, BackendBleve, b.snapshot())
}

// Backend implements Index.
func (b *BleveIndex) Backend() Backend {
	return BackendBleve
}

// Close releases the bleve index.
func (b *BleveIndex) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	return b.index.Close()
}

func proseTokenizerConstructor(config map[string]interface{}, cache *registry.Cache) (analysis.Tokenizer, error) {
	return &proseTokenizer{}, nil
}

// proseTokenizer emits runs of letters and digits with their offsets.
type proseTokenizer struct{}

// Tokenize implements analysis.Tokenizer.
func (t *proseTokenizer) Tokenize(input []byte) analysis.TokenStream {
	spans := scan(string(input))
	stream := make(analysis.TokenStream, 0, len(spans))
	for i, s := range spans {
		typ := analysis.AlphaNumeric
		if _, err := strconv.Atoi(s.term); err == nil {
			typ = analysis.Numeric
		}
		stream = append(stream, &analysis.Token{
			Term:     []byte(s.term),
			Start:    s.start,
			End:      s.end,
			Position: i + 1,
			Type:     typ,
		})
	}
	return stream
}

func proseStopFilterConstructor(config map[string]interface{}, cache *registry.Cache) (analysis.TokenFilter, error) {
	return &proseStopFilter{stopWords: defaultStopWordMap}, nil
}

type proseStopFilter struct {
	stopWords map[string]struct{}
}

// Filter implements analysis.TokenFilter.
func (f *proseStopFilter) Filter(input analysis.TokenStream) analysis.TokenStream {
	out := input[:0]
	for _, token := range input {
		if _, stop := f.stopWords[strings.ToLower(string(token.Term))]; !stop {
			out = append(out, token)
		}
	}
	return out
}
