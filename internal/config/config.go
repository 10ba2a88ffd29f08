package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Config holds application configuration.
type Config struct {
	// ContentDir is the content store directory. Relative paths are resolved against the base dir.
	// Empty means <base>/contents.
	ContentDir string `json:"content_dir,omitempty"`

	// OutputDir is where rendered diff documents are written when no output path is given.
	// Empty means <base>/tmp.
	OutputDir string `json:"output_dir,omitempty"`

	// HashAlgorithm names the content hash used for stored file names: "md5" or "blake3".
	HashAlgorithm string `json:"hash_algorithm,omitempty"`

	// DiffMode is the default cleanup mode: "raw", "semantic" or "efficiency".
	DiffMode string `json:"diff_mode,omitempty"`

	// DiffTimeoutSeconds bounds the diff computation. When exceeded the diff returns
	// its best-effort result. A negative value disables the bound.
	DiffTimeoutSeconds float64 `json:"diff_timeout_seconds,omitempty"`

	// DiffEditCost is the edit cost threshold used by efficiency cleanup.
	DiffEditCost int `json:"diff_edit_cost,omitempty"`

	// LegacyConverter is the argv used to convert legacy documents (.doc, .rtf, .odt) to UTF-8 text.
	// "{src}" and "{outdir}" are substituted.
	LegacyConverter []string `json:"legacy_converter,omitempty"`

	// ConvertTimeoutSeconds bounds a single legacy conversion process.
	ConvertTimeoutSeconds int `json:"convert_timeout_seconds,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level,omitempty"`

	// LogFormat is "text" or "json".
	LogFormat string `json:"log_format,omitempty"`
}

// DefaultLegacyConverter converts through a headless LibreOffice.
var DefaultLegacyConverter = []string{
	"soffice", "--headless", "--convert-to", "txt:Text (encoded):UTF8", "--outdir", "{outdir}", "{src}",
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		HashAlgorithm:         "md5",
		DiffMode:              "efficiency",
		DiffTimeoutSeconds:    5,
		DiffEditCost:          4,
		LegacyConverter:       append([]string(nil), DefaultLegacyConverter...),
		ConvertTimeoutSeconds: 120,
		LogLevel:              "info",
		LogFormat:             "text",
	}
}

// ResolveContentDir returns the absolute content directory for baseDir.
func (c *Config) ResolveContentDir(baseDir string) string {
	return resolveDir(baseDir, c.ContentDir, "contents")
}

// ResolveOutputDir returns the absolute output directory for baseDir.
func (c *Config) ResolveOutputDir(baseDir string) string {
	return resolveDir(baseDir, c.OutputDir, "tmp")
}

func resolveDir(baseDir, configured, fallback string) string {
	if configured == "" {
		return filepath.Join(baseDir, fallback)
	}
	if filepath.IsAbs(configured) {
		return configured
	}
	return filepath.Join(baseDir, configured)
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.specdiff.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithRepo loads configuration from both global (~/.specdiff) and repo (.specdiff) directories.
// Repo config is found by walking upward from startDir to find the nearest .specdiff/config.json.
// Repo config takes precedence for scalar values; arrays are merged (deduplicated), except
// LegacyConverter which is an argv and is replaced as a whole.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repo, err := loadFileRaw(FindRepoConfig(startDir))
	if err != nil {
		return nil, err
	}

	return Merge(Merge(DefaultConfig(), global), repo), nil
}

// FindRepoConfig walks upward from startDir to find the nearest .specdiff/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	if startDir == "" {
		return ""
	}
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".specdiff", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.ContentDir = firstString(overlay.ContentDir, base.ContentDir)
	result.OutputDir = firstString(overlay.OutputDir, base.OutputDir)
	result.HashAlgorithm = firstString(overlay.HashAlgorithm, base.HashAlgorithm)
	result.DiffMode = firstString(overlay.DiffMode, base.DiffMode)
	result.LogLevel = firstString(overlay.LogLevel, base.LogLevel)
	result.LogFormat = firstString(overlay.LogFormat, base.LogFormat)

	result.DiffTimeoutSeconds = overlay.DiffTimeoutSeconds
	if result.DiffTimeoutSeconds == 0 {
		result.DiffTimeoutSeconds = base.DiffTimeoutSeconds
	}

	result.DiffEditCost = firstInt(overlay.DiffEditCost, base.DiffEditCost)
	result.ConvertTimeoutSeconds = firstInt(overlay.ConvertTimeoutSeconds, base.ConvertTimeoutSeconds)
	result.DBMaxOpenConns = firstInt(overlay.DBMaxOpenConns, base.DBMaxOpenConns)
	result.DBMaxIdleConns = firstInt(overlay.DBMaxIdleConns, base.DBMaxIdleConns)

	// argv: overlay replaces base
	result.LegacyConverter = base.LegacyConverter
	if len(overlay.LegacyConverter) > 0 {
		result.LegacyConverter = overlay.LegacyConverter
	}

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

func firstString(overlay, base string) string {
	if strings.TrimSpace(overlay) != "" {
		return strings.TrimSpace(overlay)
	}
	return base
}

func firstInt(overlay, base int) int {
	if overlay != 0 {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
