// Package config loads folio configuration from defaults, the user config
// file, the project .folio.yaml and FOLIO_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	folioerrors "github.com/Aman-CERP/folio/internal/errors"
)

// Config represents the complete folio configuration.
type Config struct {
	Version    int              `yaml:"version" json:"version"`
	Site       SiteConfig       `yaml:"site" json:"site"`
	Pagination PaginationConfig `yaml:"pagination" json:"pagination"`
	Search     SearchConfig     `yaml:"search" json:"search"`
	Watch      WatchConfig      `yaml:"watch" json:"watch"`
	Server     ServerConfig     `yaml:"server" json:"server"`
}

// SiteConfig locates the content and the generated output.
type SiteConfig struct {
	ContentDir string `yaml:"content_dir" json:"content_dir"`
	OutputDir  string `yaml:"output_dir" json:"output_dir"`
	BaseURL    string `yaml:"base_url" json:"base_url"`
	// Collection is the tag that marks an item as part of the paginated
	// collection. Items without it are loaded but never grouped.
	Collection string `yaml:"collection" json:"collection"`
}

// PaginationConfig configures tag page generation.
type PaginationConfig struct {
	PageSize    int      `yaml:"page_size" json:"page_size"`
	TagPrefix   string   `yaml:"tag_prefix" json:"tag_prefix"`
	KeySort     string   `yaml:"key_sort" json:"key_sort"`
	ExcludeTags []string `yaml:"exclude_tags" json:"exclude_tags"`
}

// SearchConfig configures the search index artifact and the query engine.
type SearchConfig struct {
	// Backend selects the index backend: "bleve" (default) or "sqlite".
	Backend string `yaml:"backend" json:"backend"`

	// IndexPath is the artifact path relative to the site root.
	IndexPath string `yaml:"index_path" json:"index_path"`

	// IncludeBody indexes the item body as a fourth, low-weight field.
	IncludeBody bool `yaml:"include_body" json:"include_body"`

	// Debounce is the keystroke delay before a query runs.
	Debounce string `yaml:"debounce" json:"debounce"`
}

// WatchConfig configures `folio build --watch`.
type WatchConfig struct {
	Debounce string `yaml:"debounce" json:"debounce"`
}

// ServerConfig configures `folio serve` and the MCP server.
type ServerConfig struct {
	Addr     string `yaml:"addr" json:"addr"`
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// Valid values for enumerated settings.
var (
	validBackends  = map[string]bool{"bleve": true, "sqlite": true}
	validKeySorts  = map[string]bool{"asc": true, "desc": true}
	validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
)

// NewConfig returns a configuration populated with defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Site: SiteConfig{
			ContentDir: "content",
			OutputDir:  "_site",
			BaseURL:    "/",
			Collection: "posts",
		},
		Pagination: PaginationConfig{
			PageSize:    10,
			TagPrefix:   "/tags/",
			KeySort:     "asc",
			ExcludeTags: []string{"all", "posts"},
		},
		Search: SearchConfig{
			Backend:   "bleve",
			IndexPath: "/search-index.json",
			Debounce:  "200ms",
		},
		Watch: WatchConfig{
			Debounce: "500ms",
		},
		Server: ServerConfig{
			Addr:     "127.0.0.1:8080",
			LogLevel: "info",
		},
	}
}

// GetUserConfigPath returns the user config path, honouring XDG_CONFIG_HOME.
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "folio", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "folio", "config.yaml")
	}
	return filepath.Join(home, ".config", "folio", "config.yaml")
}

// loadUserConfig returns nil, nil when no user config exists.
func loadUserConfig() (*Config, error) {
	path := GetUserConfigPath()
	if !fileExists(path) {
		return nil, nil
	}

	var cfg Config
	if err := readYAML(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load loads configuration for the site rooted at dir.
// Precedence, lowest first:
//  1. Hardcoded defaults
//  2. User config ($XDG_CONFIG_HOME/folio/config.yaml)
//  3. Project config (.folio.yaml or .folio.yml in dir)
//  4. Environment variables (FOLIO_*)
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if userCfg, err := loadUserConfig(); err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	} else if userCfg != nil {
		cfg.mergeWith(userCfg)
	}

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFromFile(dir string) error {
	for _, name := range []string{".folio.yaml", ".folio.yml"} {
		path := filepath.Join(dir, name)
		if !fileExists(path) {
			continue
		}
		var parsed Config
		if err := readYAML(path, &parsed); err != nil {
			return err
		}
		c.mergeWith(&parsed)
		return nil
	}
	return nil
}

func readYAML(path string, into *Config) error {
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return folioerrors.New(folioerrors.ErrCodeConfigNotFound,
			fmt.Sprintf("config file %s not found", path), err)
	case errors.Is(err, fs.ErrPermission):
		return folioerrors.New(folioerrors.ErrCodeConfigPermission,
			fmt.Sprintf("cannot read config file %s", path), err).
			WithSuggestion("Check the file permissions.")
	case err != nil:
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, into); err != nil {
		return folioerrors.ConfigError(fmt.Sprintf("failed to parse config file %s", path), err).
			WithDetail("path", path)
	}
	return nil
}

// mergeWith copies non-zero values from other into c.
// IncludeBody is a plain bool, so a file can only switch it on.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	setString(&c.Site.ContentDir, other.Site.ContentDir)
	setString(&c.Site.OutputDir, other.Site.OutputDir)
	setString(&c.Site.BaseURL, other.Site.BaseURL)
	setString(&c.Site.Collection, other.Site.Collection)

	if other.Pagination.PageSize != 0 {
		c.Pagination.PageSize = other.Pagination.PageSize
	}
	setString(&c.Pagination.TagPrefix, other.Pagination.TagPrefix)
	setString(&c.Pagination.KeySort, other.Pagination.KeySort)
	if len(other.Pagination.ExcludeTags) > 0 {
		c.Pagination.ExcludeTags = other.Pagination.ExcludeTags
	}

	setString(&c.Search.Backend, other.Search.Backend)
	setString(&c.Search.IndexPath, other.Search.IndexPath)
	setString(&c.Search.Debounce, other.Search.Debounce)
	if other.Search.IncludeBody {
		c.Search.IncludeBody = true
	}

	setString(&c.Watch.Debounce, other.Watch.Debounce)

	setString(&c.Server.Addr, other.Server.Addr)
	setString(&c.Server.LogLevel, other.Server.LogLevel)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("FOLIO_CONTENT_DIR"); v != "" {
		c.Site.ContentDir = v
	}
	if v := os.Getenv("FOLIO_OUTPUT_DIR"); v != "" {
		c.Site.OutputDir = v
	}
	if v := os.Getenv("FOLIO_BASE_URL"); v != "" {
		c.Site.BaseURL = v
	}
	if v := os.Getenv("FOLIO_PAGE_SIZE"); v != "" {
		// Invalid numbers are kept so Validate reports them.
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			c.Pagination.PageSize = n
		} else {
			c.Pagination.PageSize = -1
		}
	}
	if v := os.Getenv("FOLIO_SEARCH_BACKEND"); v != "" {
		c.Search.Backend = v
	}
	if v := os.Getenv("FOLIO_INCLUDE_BODY"); v != "" {
		c.Search.IncludeBody = strings.ToLower(v) == "true" || v == "1"
	}
	if v := os.Getenv("FOLIO_LOG_LEVEL"); v != "" {
		c.Server.LogLevel = v
	}
	if v := os.Getenv("FOLIO_ADDR"); v != "" {
		c.Server.Addr = v
	}
}

// Validate checks the configuration for values no component can honour.
func (c *Config) Validate() error {
	if c.Pagination.PageSize <= 0 {
		return fmt.Errorf("pagination.page_size must be positive, got %d", c.Pagination.PageSize)
	}
	if !validKeySorts[strings.ToLower(c.Pagination.KeySort)] {
		return fmt.Errorf("pagination.key_sort must be 'asc' or 'desc', got %s", c.Pagination.KeySort)
	}
	if !validBackends[strings.ToLower(c.Search.Backend)] {
		return fmt.Errorf("search.backend must be 'bleve' or 'sqlite', got %s", c.Search.Backend)
	}
	if !strings.HasPrefix(c.Search.IndexPath, "/") {
		return folioerrors.New(folioerrors.ErrCodeInvalidPath,
			fmt.Sprintf("search.index_path must be site-root relative (start with /), got %s", c.Search.IndexPath), nil)
	}
	if _, err := parsePositiveDuration("search.debounce", c.Search.Debounce); err != nil {
		return err
	}
	if _, err := parsePositiveDuration("watch.debounce", c.Watch.Debounce); err != nil {
		return err
	}
	if !validLogLevels[strings.ToLower(c.Server.LogLevel)] {
		return fmt.Errorf("server.log_level must be 'debug', 'info', 'warn', or 'error', got %s", c.Server.LogLevel)
	}
	return nil
}

// SearchDebounce returns the parsed search debounce delay.
func (c *Config) SearchDebounce() time.Duration {
	d, _ := parsePositiveDuration("search.debounce", c.Search.Debounce)
	return d
}

// WatchDebounce returns the parsed watch debounce delay.
func (c *Config) WatchDebounce() time.Duration {
	d, _ := parsePositiveDuration("watch.debounce", c.Watch.Debounce)
	return d
}

func parsePositiveDuration(name, s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration like \"200ms\", got %q", name, s)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", name, s)
	}
	return d, nil
}

// ContentPath resolves the content directory against root.
func (c *Config) ContentPath(root string) string {
	return resolve(root, c.Site.ContentDir)
}

// OutputPath resolves the output directory against root.
func (c *Config) OutputPath(root string) string {
	return resolve(root, c.Site.OutputDir)
}

func resolve(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// FindProjectRoot walks up from startDir looking for .folio.yaml, .folio.yml
// or a .git directory. It returns startDir (absolute) if none is found.
func FindProjectRoot(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	current := absDir
	for {
		if fileExists(filepath.Join(current, ".folio.yaml")) ||
			fileExists(filepath.Join(current, ".folio.yml")) ||
			dirExists(filepath.Join(current, ".git")) {
			return current, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			return absDir, nil
		}
		current = parent
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
