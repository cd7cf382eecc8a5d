package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	koanfyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"

	"github.com/UncleDan/ics-to-word/internal/ics"
	appLog "github.com/UncleDan/ics-to-word/internal/log"
	"github.com/UncleDan/ics-to-word/internal/model"
	"github.com/UncleDan/ics-to-word/internal/output"
)

// EnvPrefix selects environment overrides. Nested keys are joined with a
// double underscore: ICS2WORD_OUTPUT__FORMAT=pdf sets output.format.
const EnvPrefix = "ICS2WORD_"

// SourceConfig describes a calendar converted by the watcher.
type SourceConfig struct {
	// ID is an internal identifier used for logging.
	ID string `koanf:"id" yaml:"id" json:"id"`
	// Location is a file path or an http(s)/webcal URL.
	Location string `koanf:"location" yaml:"location" json:"location"`
	// Name, if set, replaces the base name derived from Location in the
	// report title and output file name.
	Name string `koanf:"name" yaml:"name,omitempty" json:"name,omitempty"`
}

// Source returns the calendar source this entry describes. ID falls back
// to Name, then Location.
func (s SourceConfig) Source() ics.Source {
	id := s.ID
	if id == "" {
		id = s.Name
	}
	if id == "" {
		id = s.Location
	}
	return ics.Source{ID: id, Location: s.Location, Title: s.Name}
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the API. Auth is
// enabled when both Username and Password are set; Validate rejects a
// config that sets only one of them.
type BasicAuthConfig struct {
	Username string `koanf:"username" yaml:"username" json:"username"`
	Password string `koanf:"password" yaml:"password" json:"password"`
}

type OutputConfig struct {
	// Format is the default renderer (docx, html, pdf, md, txt, json).
	Format string `koanf:"format" yaml:"format" json:"format"`
	// Dir is the output directory; empty means next to the input file.
	Dir string `koanf:"dir" yaml:"dir" json:"dir"`
	// Suffix is inserted between the input base name and the extension.
	Suffix string `koanf:"suffix" yaml:"suffix" json:"suffix"`
	// Conflict is one of overwrite, fail, rename.
	Conflict string `koanf:"conflict" yaml:"conflict" json:"conflict"`
}

type ServerConfig struct {
	// Listen is the HTTP listen address for the API.
	Listen string `koanf:"listen" yaml:"listen" json:"listen"`
	// MaxUploadMB caps request bodies on /api/convert.
	MaxUploadMB int `koanf:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	// BasicAuth protects every endpoint except /health.
	BasicAuth BasicAuthConfig `koanf:"basic_auth" yaml:"basic_auth" json:"basic_auth"`
}

type FetchConfig struct {
	CacheDir string `koanf:"cache_dir" yaml:"cache_dir" json:"cache_dir"`
}

type WatchConfig struct {
	// Cron is a cron-style schedule string (e.g. "*/15 * * * *").
	Cron    string         `koanf:"cron" yaml:"cron" json:"cron"`
	Sources []SourceConfig `koanf:"sources" yaml:"sources" json:"sources"`
}

type PDFConfig struct {
	TimeoutSeconds int `koanf:"timeout_seconds" yaml:"timeout_seconds" json:"timeout_seconds"`
}

// Config is the top-level application configuration.
type Config struct {
	LogLevel string `koanf:"log_level" yaml:"log_level" json:"log_level"`

	// Encodings is the decode fallback chain tried in order.
	Encodings []string `koanf:"encodings" yaml:"encodings" json:"encodings"`

	// ShowRecurrence adds a "Repeats: ..." line under recurring events.
	ShowRecurrence bool `koanf:"show_recurrence" yaml:"show_recurrence" json:"show_recurrence"`

	Labels model.Labels `koanf:"labels" yaml:"labels" json:"labels"`
	Output OutputConfig `koanf:"output" yaml:"output" json:"output"`
	Server ServerConfig `koanf:"server" yaml:"server" json:"server"`
	Fetch  FetchConfig  `koanf:"fetch" yaml:"fetch" json:"fetch"`
	Watch  WatchConfig  `koanf:"watch" yaml:"watch" json:"watch"`
	PDF    PDFConfig    `koanf:"pdf" yaml:"pdf" json:"pdf"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:  "info",
		Encodings: []string{"utf-8", "latin-1"},
		Labels:    model.DefaultLabels(),
		Output: OutputConfig{
			Format:   "docx",
			Suffix:   output.DefaultSuffix,
			Conflict: string(output.ConflictOverwrite),
		},
		Server: ServerConfig{
			Listen:      "127.0.0.1:8080",
			MaxUploadMB: 10,
		},
		Fetch: FetchConfig{CacheDir: "./cache/ics"},
		Watch: WatchConfig{
			Cron:    "*/15 * * * *",
			Sources: []SourceConfig{},
		},
		PDF: PDFConfig{TimeoutSeconds: 30},
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	d := DefaultConfig()
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if len(c.Encodings) == 0 {
		c.Encodings = d.Encodings
	}
	c.Labels = c.Labels.WithDefaults()
	if c.Output.Format == "" {
		c.Output.Format = d.Output.Format
	}
	if c.Output.Conflict == "" {
		c.Output.Conflict = d.Output.Conflict
	}
	if c.Server.Listen == "" {
		c.Server.Listen = d.Server.Listen
	}
	if c.Server.MaxUploadMB <= 0 {
		c.Server.MaxUploadMB = d.Server.MaxUploadMB
	}
	if c.Fetch.CacheDir == "" {
		c.Fetch.CacheDir = d.Fetch.CacheDir
	}
	if c.Watch.Cron == "" {
		c.Watch.Cron = d.Watch.Cron
	}
	if c.Watch.Sources == nil {
		c.Watch.Sources = []SourceConfig{}
	}
	if c.PDF.TimeoutSeconds <= 0 {
		c.PDF.TimeoutSeconds = d.PDF.TimeoutSeconds
	}
}

// Validate rejects values Normalize cannot repair.
func (c *Config) Validate() error {
	if _, err := output.ParseConflict(c.Output.Conflict); err != nil {
		return fmt.Errorf("output.conflict: %w", err)
	}
	if a := c.Server.BasicAuth; (a.Username == "") != (a.Password == "") {
		return errors.New("server.basic_auth: username and password must be set together")
	}

	ids := make(map[string]int, len(c.Watch.Sources))
	paths := make(map[string]int, len(c.Watch.Sources))
	for i, s := range c.Watch.Sources {
		if strings.TrimSpace(s.Location) == "" {
			return fmt.Errorf("watch.sources[%d]: location is required", i)
		}
		id := s.Source().ID
		if j, dup := ids[id]; dup {
			return fmt.Errorf("watch.sources[%d]: id %q already used by watch.sources[%d]", i, id, j)
		}
		ids[id] = i

		path := c.ReportPath(s, "")
		if j, dup := paths[path]; dup {
			return fmt.Errorf("watch.sources[%d]: report %s already written by watch.sources[%d]; set a distinct id or name", i, path, j)
		}
		paths[path] = i
	}
	return nil
}

// ReportPath is where watch mode writes the report for s:
// <dir>/<stem><suffix><ext>. The stem is Name when set; for a remote
// source without Name it is the ID, since feed URLs often share a file
// name. The dir is output.dir, else the directory of a local input, else
// the working directory.
func (c *Config) ReportPath(s SourceConfig, ext string) string {
	src := s.Source()
	stem := src.BaseName()
	if s.Name == "" && s.ID != "" && src.IsRemote() {
		stem = s.ID
	}
	dir := c.Output.Dir
	if dir == "" {
		dir = "."
		if !src.IsRemote() {
			dir = filepath.Dir(src.Location)
		}
	}
	return filepath.Join(dir, stem+c.Output.Suffix+ext)
}

// Load builds the configuration from defaults, the YAML file at path and
// ICS2WORD_* environment variables, later layers winning.
//
// If the file does not exist a default config is written there with 0600
// perms. A failed first-run write is logged and loading continues.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	k := koanf.New(".")
	if err := k.Load(structs.Provider(*DefaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if err := k.Load(file.Provider(path), koanfyaml.Parser()); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		if err := Save(path, DefaultConfig()); err != nil {
			appLog.Error("config first-run write failed", err, "path", path)
		} else {
			appLog.Info("config file not found, wrote defaults", "path", path)
		}
	} else {
		appLog.Debug("config file loaded", "path", path)
	}

	err := k.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(key, EnvPrefix)), "__", ".")
			if key == "encodings" {
				return key, splitList(value)
			}
			return key, value
		},
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func splitList(s string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".ics2word-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
