package config

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/vango-dev/cachestore/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "cachestore.json"

	// DefaultPort is the default devtools server port.
	DefaultPort = 7331

	// DefaultHost is the default devtools server host.
	DefaultHost = "localhost"

	// DefaultNamespace is the default Prometheus namespace.
	DefaultNamespace = "cachestore"

	// DefaultMetricsPath is the default path of the metrics endpoint.
	DefaultMetricsPath = "/metrics"

	// DefaultTracerName is the default OpenTelemetry tracer name.
	DefaultTracerName = "cachestore"

	// DefaultPostsURL serves the posts of the favorite posts experiment.
	DefaultPostsURL = "https://jsonplaceholder.typicode.com/posts"

	// DefaultImagesURL is the base URL of the image gallery experiment.
	DefaultImagesURL = "https://picsum.photos"

	// DefaultTimeout bounds gallery HTTP fetches.
	DefaultTimeout = "10s"
)

// Config represents the complete cachestore.json configuration.
type Config struct {
	// Devtools contains inspector server configuration.
	Devtools DevtoolsConfig `json:"devtools,omitempty"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `json:"metrics,omitempty"`

	// Tracing contains OpenTelemetry configuration.
	Tracing TracingConfig `json:"tracing,omitempty"`

	// Log contains logging configuration.
	Log LogConfig `json:"log,omitempty"`

	// Gallery contains settings of the example experiments.
	Gallery GalleryConfig `json:"gallery,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// DevtoolsConfig contains inspector server settings.
type DevtoolsConfig struct {
	// Enabled serves the inspector from 'cachestore serve'.
	Enabled bool `json:"enabled"`

	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Namespace is the metrics namespace.
	Namespace string `json:"namespace,omitempty"`

	// Subsystem is the metrics subsystem.
	Subsystem string `json:"subsystem,omitempty"`

	// Path is the URL path of the metrics endpoint.
	Path string `json:"path,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	// Enabled adds a tracing middleware to gallery stores.
	Enabled bool `json:"enabled,omitempty"`

	// TracerName is the name of the tracer.
	TracerName string `json:"tracerName,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty"`
}

// GalleryConfig contains settings of the example experiments.
type GalleryConfig struct {
	// PostsURL is fetched by the favorite posts experiment.
	PostsURL string `json:"postsURL,omitempty"`

	// ImagesURL is the base URL of the image gallery experiment.
	ImagesURL string `json:"imagesURL,omitempty"`

	// Timeout bounds each fetch (e.g., "10s").
	Timeout string `json:"timeout,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Devtools: DevtoolsConfig{
			Enabled: true,
			Host:    DefaultHost,
			Port:    DefaultPort,
		},
		Metrics: MetricsConfig{
			Namespace: DefaultNamespace,
			Path:      DefaultMetricsPath,
		},
		Tracing: TracingConfig{
			TracerName: DefaultTracerName,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Gallery: GalleryConfig{
			PostsURL:  DefaultPostsURL,
			ImagesURL: DefaultImagesURL,
			Timeout:   DefaultTimeout,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for cachestore.json in the directory.
func Load(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	return LoadFile(configPath)
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("CS101").
				WithDetail("No " + ConfigFileName + " found in " + filepath.Dir(path))
		}
		return nil, errors.New("CS100").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("CS100").
			WithDetail("Failed to parse " + ConfigFileName + ": " + err.Error())
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("CS100").Wrap(err)
	}

	// Add newline at end of file
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("CS100").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Devtools.Host == "" {
		c.Devtools.Host = DefaultHost
	}
	if c.Devtools.Port == 0 {
		c.Devtools.Port = DefaultPort
	}

	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
	if !strings.HasPrefix(c.Metrics.Path, "/") {
		c.Metrics.Path = "/" + c.Metrics.Path
	}

	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = DefaultTracerName
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	if c.Gallery.PostsURL == "" {
		c.Gallery.PostsURL = DefaultPostsURL
	}
	if c.Gallery.ImagesURL == "" {
		c.Gallery.ImagesURL = DefaultImagesURL
	}
	if c.Gallery.Timeout == "" {
		c.Gallery.Timeout = DefaultTimeout
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Devtools.Port < 0 || c.Devtools.Port > 65535 {
		return errors.New("CS102").
			WithDetail("Devtools port " + strconv.Itoa(c.Devtools.Port) + " is outside 0-65535.")
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.New("CS104").
			WithDetail("Unknown log format " + strconv.Quote(c.Log.Format) + ".")
	}
	if _, err := time.ParseDuration(c.Gallery.Timeout); err != nil {
		return errors.New("CS100").
			WithDetail("gallery.timeout: " + err.Error())
	}
	return nil
}

// DevtoolsAddress returns the address string for the devtools server.
func (c *Config) DevtoolsAddress() string {
	return c.Devtools.Host + ":" + strconv.Itoa(c.Devtools.Port)
}

// DevtoolsURL returns the base URL of the devtools server.
func (c *Config) DevtoolsURL() string {
	return "http://" + c.DevtoolsAddress()
}

// GalleryTimeout returns the parsed fetch timeout, or the default when the
// configured value is invalid.
func (c *Config) GalleryTimeout() time.Duration {
	d, err := time.ParseDuration(c.Gallery.Timeout)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(DefaultTimeout)
	}
	return d
}

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, errors.New("CS103").
			WithDetail("Unknown log level " + strconv.Quote(name) + ".")
	}
}

// NewLogger builds a logger writing to w with the configured level and
// format. Invalid settings fall back to info and text.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, _ := ParseLevel(c.Log.Level)
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	path := filepath.Join(dir, ConfigFileName)
	_, err := os.Stat(path)
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing cachestore.json, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("CS101").
				WithDetail("No " + ConfigFileName + " found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory
// or its nearest parent holding cachestore.json.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}

// LoadOrDefault is LoadFromWorkingDir, falling back to New when no file
// exists. A file that exists but is invalid is still an error.
func LoadOrDefault() (*Config, error) {
	cfg, err := LoadFromWorkingDir()
	if err == nil {
		return cfg, nil
	}
	var se *errors.StoreError
	if stderrors.As(err, &se) && se.Code == "CS101" {
		return New(), nil
	}
	return nil, err
}
