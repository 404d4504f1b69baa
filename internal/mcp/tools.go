package mcp

// Result limits for search_site.
const (
	DefaultLimit = 10
	MaxLimit     = 50
)

// SearchSiteInput defines the input schema for the search_site tool.
type SearchSiteInput struct {
	Query string `json:"query" jsonschema:"the search query to execute"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results, default 10, at most 50"`
}

// SearchSiteOutput defines the output schema for the search_site tool.
type SearchSiteOutput struct {
	Query   string      `json:"query"`
	Heading string      `json:"heading,omitempty" jsonschema:"result heading as shown on the site"`
	Message string      `json:"message,omitempty" jsonschema:"set when nothing matched"`
	Total   int         `json:"total" jsonschema:"number of matching documents before the limit"`
	Results []HitOutput `json:"results"`
}

// HitOutput is one ranked search result.
type HitOutput struct {
	Ref         string   `json:"ref" jsonschema:"canonical URL of the page"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Score       float64  `json:"score" jsonschema:"relevance score, higher is better"`
}

// GetDocumentInput defines the input schema for the get_document tool.
type GetDocumentInput struct {
	Ref string `json:"ref" jsonschema:"canonical URL of the page, as returned by search_site"`
}

// GetDocumentOutput defines the output schema for the get_document tool.
type GetDocumentOutput struct {
	Ref         string   `json:"ref"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Body        string   `json:"body,omitempty" jsonschema:"page text, present when the index was built with bodies"`
}

// IndexStatusInput defines the input schema for the index_status tool (no parameters).
type IndexStatusInput struct{}

// IndexStatusOutput defines the output schema for the index_status tool.
type IndexStatusOutput struct {
	Path        string `json:"path"`
	Backend     string `json:"backend"`
	Documents   int    `json:"documents"`
	Fingerprint string `json:"fingerprint"`
	SizeBytes   int64  `json:"size_bytes"`
	ModifiedAt  string `json:"modified_at"`
}

func clampLimit(limit, defaultVal, min, max int) int {
	if limit <= 0 {
		return defaultVal
	}
	if limit < min {
		return min
	}
	if limit > max {
		return max
	}
	return limit
}
