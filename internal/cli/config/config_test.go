package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/flow-design/flow-helper/internal/completion"
)

// inTempDir runs the test from an empty directory with an empty HOME, so no
// config file on the machine is picked up
func inTempDir(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("HOME", t.TempDir())

	oldWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(oldWd) })
	return tmpDir
}

func TestLoad(t *testing.T) {
	// Test loading with no config file (should use defaults)
	inTempDir(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error loading defaults, got %v", err)
	}

	if cfg.IndentSize != 2 {
		t.Errorf("expected default indent size 2, got %d", cfg.IndentSize)
	}
	if cfg.Quotes != "double" {
		t.Errorf("expected default quotes 'double', got %s", cfg.Quotes)
	}
	if cfg.Catalog != "" {
		t.Errorf("expected no custom catalog, got %s", cfg.Catalog)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected default log level 'info', got %s", cfg.Log.Level)
	}
}

func TestLoadWithConfigFile(t *testing.T) {
	inTempDir(t)

	configContent := `
indent_size: 4
quotes: single
catalog: ./components.yaml
log:
  level: debug
`
	if err := os.WriteFile("flow-helper.yml", []byte(configContent), 0644); err != nil {
		t.Fatal(err)
	}

	loader := NewLoader("")
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("expected no error loading config, got %v", err)
	}

	if cfg.IndentSize != 4 {
		t.Errorf("expected indent size 4, got %d", cfg.IndentSize)
	}
	if cfg.Quotes != "single" {
		t.Errorf("expected quotes 'single', got %s", cfg.Quotes)
	}
	if cfg.Catalog != "./components.yaml" {
		t.Errorf("expected catalog './components.yaml', got %s", cfg.Catalog)
	}
	if cfg.LogLevel() != zapcore.DebugLevel {
		t.Errorf("expected debug level, got %s", cfg.LogLevel())
	}
	if !strings.HasSuffix(loader.ConfigFile(), "flow-helper.yml") {
		t.Errorf("expected flow-helper.yml to be used, got %q", loader.ConfigFile())
	}
}

func TestLoadJSONConfigFile(t *testing.T) {
	inTempDir(t)

	if err := os.WriteFile("flow-helper.json", []byte(`{"indent_size": 3}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.IndentSize != 3 {
		t.Errorf("expected indent size 3, got %d", cfg.IndentSize)
	}
	if cfg.Quotes != "double" {
		t.Errorf("expected default quotes to survive, got %s", cfg.Quotes)
	}
}

func TestLoadFromHomeConfigDir(t *testing.T) {
	inTempDir(t)

	home := os.Getenv("HOME")
	dir := filepath.Join(home, ".config", FileName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "flow-helper.yaml"), []byte("quotes: single\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Quotes != "single" {
		t.Errorf("expected quotes from home config, got %s", cfg.Quotes)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	inTempDir(t)

	if err := os.WriteFile("flow-helper.yml", []byte("indent_size: 4\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FLOW_HELPER_INDENT_SIZE", "8")
	t.Setenv("FLOW_HELPER_LOG_LEVEL", "warn")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.IndentSize != 8 {
		t.Errorf("expected env to override file, got indent size %d", cfg.IndentSize)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("expected log level 'warn', got %s", cfg.Log.Level)
	}
}

func TestExplicitConfigFile(t *testing.T) {
	dir := inTempDir(t)

	path := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(path, []byte("indent_size: 6\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewLoader(path).Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.IndentSize != 6 {
		t.Errorf("expected indent size 6, got %d", cfg.IndentSize)
	}

	if _, err := NewLoader(filepath.Join(dir, "missing.yaml")).Load(); err == nil {
		t.Error("expected error for a missing explicit config file")
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"zero indent", "indent_size: 0\n", "indent_size must be positive"},
		{"negative indent", "indent_size: -2\n", "indent_size must be positive"},
		{"unknown quotes", "quotes: backtick\n", "quotes must be"},
		{"bad log level", "log:\n  level: loud\n", "log.level"},
		{"malformed yaml", "indent_size: [\n", "failed to read config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inTempDir(t)
			if err := os.WriteFile("flow-helper.yml", []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}

			_, err := Load()
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestToOptions(t *testing.T) {
	cfg := &Config{IndentSize: 4, Quotes: "single"}
	want := completion.Options{IndentSize: 4, Quote: completion.QuoteSingle}
	if got := cfg.ToOptions(); got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}

	if got := Default().ToOptions(); got != completion.DefaultOptions() {
		t.Errorf("expected defaults to match completion defaults, got %+v", got)
	}
}

func TestWrite(t *testing.T) {
	dir := inTempDir(t)
	path := filepath.Join(dir, "flow-helper.yml")

	cfg := Default()
	cfg.IndentSize = 4
	cfg.Catalog = "components.yaml"
	if err := Write(path, cfg, false); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("expected written config to load, got %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("expected %+v, got %+v", *cfg, *loaded)
	}

	if err := Write(path, cfg, false); err == nil {
		t.Error("expected error when file exists")
	}
	if err := Write(path, cfg, true); err != nil {
		t.Errorf("expected overwrite to succeed, got %v", err)
	}

	cfg.Quotes = "smart"
	if err := Write(path, cfg, true); err == nil {
		t.Error("expected invalid config to be rejected")
	}
}

func TestWatch(t *testing.T) {
	inTempDir(t)

	if ok := NewLoader("").Watch(func(*Config) {}); ok {
		t.Error("expected Watch to report false without a config file")
	}

	if err := os.WriteFile("flow-helper.yml", []byte("indent_size: 2\n"), 0644); err != nil {
		t.Fatal(err)
	}

	loader := NewLoader("")
	if _, err := loader.Load(); err != nil {
		t.Fatal(err)
	}

	changes := make(chan *Config, 4)
	if !loader.Watch(func(cfg *Config) { changes <- cfg }) {
		t.Fatal("expected Watch to start")
	}

	if err := os.WriteFile("flow-helper.yml", []byte("indent_size: 4\n"), 0644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-changes:
			if cfg.IndentSize == 4 {
				return
			}
		case <-deadline:
			t.Fatal("config change was not observed")
		}
	}
}
