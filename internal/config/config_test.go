package config

import (
	stderrors "errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/cachestore/internal/errors"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Devtools.Port != DefaultPort {
		t.Errorf("Devtools.Port = %d, want %d", cfg.Devtools.Port, DefaultPort)
	}
	if cfg.Devtools.Host != DefaultHost {
		t.Errorf("Devtools.Host = %q, want %q", cfg.Devtools.Host, DefaultHost)
	}
	if cfg.Metrics.Namespace != DefaultNamespace {
		t.Errorf("Metrics.Namespace = %q, want %q", cfg.Metrics.Namespace, DefaultNamespace)
	}
	if cfg.Gallery.PostsURL != DefaultPostsURL {
		t.Errorf("Gallery.PostsURL = %q, want %q", cfg.Gallery.PostsURL, DefaultPostsURL)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	// Test loading non-existent config
	_, err := Load(tmpDir)
	if err == nil {
		t.Fatal("Expected error for missing config")
	}
	var se *errors.StoreError
	if !stderrors.As(err, &se) || se.Code != "CS101" {
		t.Errorf("expected CS101, got %v", err)
	}

	configPath := filepath.Join(tmpDir, ConfigFileName)
	configJSON := `{
  "devtools": {
    "port": 8080,
    "host": "0.0.0.0"
  },
  "metrics": {
    "namespace": "app",
    "path": "stats"
  },
  "log": {
    "level": "debug",
    "format": "json"
  },
  "gallery": {
    "timeout": "2s"
  }
}
`
	if err := os.WriteFile(configPath, []byte(configJSON), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Devtools.Port != 8080 {
		t.Errorf("Devtools.Port = %d, want %d", cfg.Devtools.Port, 8080)
	}
	if cfg.Devtools.Host != "0.0.0.0" {
		t.Errorf("Devtools.Host = %q, want %q", cfg.Devtools.Host, "0.0.0.0")
	}
	if cfg.Metrics.Namespace != "app" {
		t.Errorf("Metrics.Namespace = %q, want app", cfg.Metrics.Namespace)
	}
	if cfg.Metrics.Path != "/stats" {
		t.Errorf("Metrics.Path = %q, want /stats", cfg.Metrics.Path)
	}
	if cfg.Tracing.TracerName != DefaultTracerName {
		t.Errorf("Tracing.TracerName = %q, want default", cfg.Tracing.TracerName)
	}
	if cfg.Gallery.PostsURL != DefaultPostsURL {
		t.Errorf("Gallery.PostsURL = %q, want default", cfg.Gallery.PostsURL)
	}
	if cfg.GalleryTimeout() != 2*time.Second {
		t.Errorf("GalleryTimeout() = %v, want 2s", cfg.GalleryTimeout())
	}
	if cfg.Path() != configPath || cfg.Dir() != tmpDir {
		t.Errorf("Path() = %q, Dir() = %q", cfg.Path(), cfg.Dir())
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte("{invalid"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(tmpDir)
	var se *errors.StoreError
	if !stderrors.As(err, &se) || se.Code != "CS100" {
		t.Errorf("expected CS100, got %v", err)
	}
}

func TestSaveAndReload(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, ConfigFileName)

	cfg := New()
	cfg.Devtools.Port = 9000
	cfg.Log.Level = "warn"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo error: %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if loaded.Devtools.Port != 9000 || loaded.Log.Level != "warn" {
		t.Errorf("reloaded config = %+v", loaded)
	}

	loaded.Devtools.Port = 9001
	if err := loaded.Save(); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "9001") {
		t.Error("Save should write to the loaded path")
	}
}

func TestSaveWithoutPath(t *testing.T) {
	if err := New().Save(); err == nil {
		t.Error("Save without a path should fail")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		code   string
	}{
		{"valid", func(*Config) {}, ""},
		{"negative port", func(c *Config) { c.Devtools.Port = -1 }, "CS102"},
		{"port too large", func(c *Config) { c.Devtools.Port = 70000 }, "CS102"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "CS103"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "CS104"},
		{"bad timeout", func(c *Config) { c.Gallery.Timeout = "soon" }, "CS100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.modify(cfg)
			err := cfg.Validate()

			if tt.code == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			var se *errors.StoreError
			if !stderrors.As(err, &se) || se.Code != tt.code {
				t.Errorf("Validate() = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestDevtoolsAddress(t *testing.T) {
	cfg := New()
	if got := cfg.DevtoolsAddress(); got != "localhost:7331" {
		t.Errorf("DevtoolsAddress() = %q", got)
	}
	if got := cfg.DevtoolsURL(); got != "http://localhost:7331" {
		t.Errorf("DevtoolsURL() = %q", got)
	}
}

func TestGalleryTimeoutFallback(t *testing.T) {
	cfg := New()
	cfg.Gallery.Timeout = "nonsense"
	if cfg.GalleryTimeout() != 10*time.Second {
		t.Errorf("GalleryTimeout() = %v, want 10s", cfg.GalleryTimeout())
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"":      slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for name, want := range tests {
		got, err := ParseLevel(name)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v", name, got, err)
		}
	}
	if _, err := ParseLevel("trace"); err == nil {
		t.Error("ParseLevel(trace) should fail")
	}
}

func TestNewLogger(t *testing.T) {
	var buf strings.Builder
	cfg := New()
	cfg.Log.Format = "json"
	cfg.Log.Level = "warn"

	logger := cfg.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "store", "counter")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info should be filtered at warn level")
	}
	if !strings.Contains(out, `"store":"counter"`) {
		t.Errorf("expected JSON output, got %q", out)
	}
}

func TestFindProjectRoot(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(tmpDir, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	root, err := FindProjectRoot(nested)
	if err != nil {
		t.Fatalf("FindProjectRoot error: %v", err)
	}
	want, _ := filepath.EvalSymlinks(tmpDir)
	got, _ := filepath.EvalSymlinks(root)
	if got != want {
		t.Errorf("FindProjectRoot = %q, want %q", got, want)
	}

	if !Exists(tmpDir) || Exists(nested) {
		t.Error("Exists mismatch")
	}
}

func TestLoadOrDefault(t *testing.T) {
	tmpDir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	cfg, err := LoadOrDefault()
	if err != nil {
		t.Fatalf("LoadOrDefault error: %v", err)
	}
	if cfg.Path() != "" || cfg.Devtools.Port != DefaultPort {
		t.Errorf("expected defaults, got %+v", cfg)
	}

	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte("{bad"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadOrDefault(); err == nil {
		t.Error("invalid file should be an error")
	}
}
