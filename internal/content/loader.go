package content

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	folioerrors "github.com/Aman-CERP/folio/internal/errors"
)

// Loader reads markdown items with YAML front matter from a directory tree.
type Loader struct {
	// Dir is the content root.
	Dir string
	// BaseURL prefixes derived URLs. Empty and "/" mean site root.
	BaseURL string
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// frontMatter is the subset of front matter folio interprets.
type frontMatter struct {
	Title       string    `yaml:"title"`
	Description string    `yaml:"description"`
	Tags        tagList   `yaml:"tags"`
	Date        dateValue `yaml:"date"`
	Permalink   string    `yaml:"permalink"`
	Draft       bool      `yaml:"draft"`
}

// tagList accepts either a single tag or a list of tags.
type tagList []string

func (t *tagList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Value == "" {
			*t = nil
			return nil
		}
		*t = tagList{node.Value}
		return nil
	case yaml.SequenceNode:
		var tags []string
		if err := node.Decode(&tags); err != nil {
			return err
		}
		*t = tags
		return nil
	default:
		return fmt.Errorf("line %d: tags must be a string or a list", node.Line)
	}
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// dateValue parses the date formats front matter is usually written in.
type dateValue struct {
	time.Time
}

func (d *dateValue) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: date must be a scalar", node.Line)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, node.Value); err == nil {
			d.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("line %d: unrecognised date %q", node.Line, node.Value)
}

var fence = []byte("---")

// Load walks Dir and returns every non-draft item, sorted by date ascending
// then by source path. A file that cannot be read or parsed fails the load.
func (l *Loader) Load(ctx context.Context) (Collection, error) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if info, err := os.Stat(l.Dir); err != nil || !info.IsDir() {
		return nil, folioerrors.New(folioerrors.ErrCodeFileNotFound,
			fmt.Sprintf("content directory %s not found", l.Dir), err).
			WithSuggestion("set site.content_dir in .folio.yaml")
	}

	var items Collection
	err := filepath.WalkDir(l.Dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if p != l.Dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(p) != ".md" {
			return nil
		}

		rel, err := filepath.Rel(l.Dir, p)
		if err != nil {
			return err
		}
		item, draft, err := l.loadFile(p, filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		if draft {
			logger.Debug("content_draft_skipped", slog.String("path", rel))
			return nil
		}
		items = append(items, item)
		return nil
	})
	if err != nil {
		if _, ok := folioerrors.As(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("failed to walk content directory: %w", err)
	}

	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].Date.Equal(items[j].Date) {
			return items[i].Date.Before(items[j].Date)
		}
		return items[i].SourcePath < items[j].SourcePath
	})

	logger.Debug("content_loaded",
		slog.String("dir", l.Dir),
		slog.Int("items", len(items)))

	return items, nil
}

func (l *Loader) loadFile(p, rel string) (Item, bool, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return Item{}, false, folioerrors.New(folioerrors.ErrCodeFilePermission,
			fmt.Sprintf("failed to read %s", rel), err).WithDetail("path", rel)
	}

	header, body, err := splitFrontMatter(data)
	if err != nil {
		return Item{}, false, corrupt(rel, err)
	}

	var fm frontMatter
	raw := map[string]any{}
	if len(header) > 0 {
		if err := yaml.Unmarshal(header, &fm); err != nil {
			return Item{}, false, corrupt(rel, err)
		}
		if err := yaml.Unmarshal(header, &raw); err != nil {
			return Item{}, false, corrupt(rel, err)
		}
	}
	if fm.Draft {
		return Item{}, true, nil
	}

	date := fm.Date.Time
	if date.IsZero() {
		if info, err := os.Stat(p); err == nil {
			date = info.ModTime().UTC()
		}
	}

	url := fm.Permalink
	if url == "" {
		url = l.urlFor(rel)
	}

	return Item{
		URL:         url,
		Title:       fm.Title,
		Description: fm.Description,
		Tags:        []string(fm.Tags),
		Date:        date,
		Body:        string(body),
		Data:        raw,
		SourcePath:  rel,
	}, false, nil
}

func corrupt(rel string, err error) error {
	return folioerrors.New(folioerrors.ErrCodeFileCorrupt,
		fmt.Sprintf("malformed front matter in %s", rel), err).WithDetail("path", rel)
}

// splitFrontMatter separates a leading "---" fenced YAML block from the body.
// Files without a leading fence have no front matter.
func splitFrontMatter(data []byte) (header, body []byte, err error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !bytes.HasPrefix(data, fence) {
		return nil, data, nil
	}

	rest := data[len(fence):]
	nl := bytes.IndexByte(rest, '\n')
	if nl < 0 || len(bytes.TrimSpace(rest[:nl])) != 0 {
		return nil, data, nil
	}
	rest = rest[nl+1:]

	for offset := 0; offset <= len(rest); {
		end := bytes.IndexByte(rest[offset:], '\n')
		var line []byte
		if end < 0 {
			line = rest[offset:]
		} else {
			line = rest[offset : offset+end]
		}
		if bytes.Equal(bytes.TrimRight(line, " \t\r"), fence) {
			header = rest[:offset]
			if end < 0 {
				return header, nil, nil
			}
			return header, rest[offset+end+1:], nil
		}
		if end < 0 {
			break
		}
		offset += end + 1
	}
	return nil, nil, fmt.Errorf("front matter is not closed by ---")
}

// urlFor derives the canonical URL from a slash-separated relative path:
// posts/foo.md becomes /posts/foo/ and posts/index.md becomes /posts/.
func (l *Loader) urlFor(rel string) string {
	p := strings.TrimSuffix(rel, ".md")
	if path.Base(p) == "index" {
		p = path.Dir(p)
	}
	base := strings.TrimSuffix(l.BaseURL, "/")
	if p == "." || p == "" {
		return base + "/"
	}
	return base + "/" + p + "/"
}
