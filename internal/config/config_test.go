package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

// Note: Tests that modify HOME/USERPROFILE environment variables cannot run in
// parallel because os.Setenv affects the entire process.

// setTestHome overrides the home directory for tests on all platforms.
func setTestHome(t *testing.T, dir string) {
	t.Helper()
	t.Setenv("HOME", dir)

	if runtime.GOOS == "windows" {
		t.Setenv("USERPROFILE", dir)
	}
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()

	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	return path
}

func TestLoad_Defaults(t *testing.T) {
	home := t.TempDir()
	setTestHome(t, home)

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Catalog.Path != "" {
		t.Errorf("Catalog.Path = %q, want empty", cfg.Catalog.Path)
	}
	if cfg.Catalog.Delay != time.Second {
		t.Errorf("Catalog.Delay = %v, want 1s", cfg.Catalog.Delay)
	}
	if want := filepath.Join(home, ".local", "share", "tidyfiles", "history.db"); cfg.History.Path != want {
		t.Errorf("History.Path = %q, want %q", cfg.History.Path, want)
	}
	if cfg.History.Keep != 100 {
		t.Errorf("History.Keep = %d, want 100", cfg.History.Keep)
	}
	if cfg.Web.Addr != "127.0.0.1:8080" {
		t.Errorf("Web.Addr = %q", cfg.Web.Addr)
	}
	if cfg.UI.AriaLabel != "Files Table" {
		t.Errorf("UI.AriaLabel = %q", cfg.UI.AriaLabel)
	}

	if err := Validate(cfg); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_DefaultFileLocation(t *testing.T) {
	home := t.TempDir()
	setTestHome(t, home)

	dir := filepath.Join(home, appConfigDir)
	if err := os.MkdirAll(dir, 0750); err != nil {
		t.Fatal(err)
	}
	writeConfig(t, dir, "catalog:\n  path: ~/files.yaml\n  delay: 250ms\nweb:\n  addr: 0.0.0.0:9000\n")

	if got := AppConfigPath(); got != filepath.Join(dir, "config.yaml") {
		t.Errorf("AppConfigPath() = %q", got)
	}

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Catalog.Path != filepath.Join(home, "files.yaml") {
		t.Errorf("Catalog.Path = %q, want ~ expanded", cfg.Catalog.Path)
	}
	if cfg.Catalog.Delay != 250*time.Millisecond {
		t.Errorf("Catalog.Delay = %v", cfg.Catalog.Delay)
	}
	if cfg.Web.Addr != "0.0.0.0:9000" {
		t.Errorf("Web.Addr = %q", cfg.Web.Addr)
	}
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	setTestHome(t, t.TempDir())

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	if err == nil {
		t.Fatal("an explicit config file must exist")
	}
	if !strings.Contains(err.Error(), "reading config") {
		t.Errorf("error = %v", err)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	setTestHome(t, t.TempDir())

	path := writeConfig(t, t.TempDir(), "catalog: [unclosed\n")
	if _, err := Load(path, nil); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	setTestHome(t, t.TempDir())

	path := writeConfig(t, t.TempDir(), "ui:\n  aria_label: From File\n")
	t.Setenv("TIDYFILES_UI_ARIA_LABEL", "From Env")
	t.Setenv("TIDYFILES_CATALOG_DELAY", "2s")

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.UI.AriaLabel != "From Env" {
		t.Errorf("UI.AriaLabel = %q, want env value", cfg.UI.AriaLabel)
	}
	if cfg.Catalog.Delay != 2*time.Second {
		t.Errorf("Catalog.Delay = %v, want 2s", cfg.Catalog.Delay)
	}
}

func TestLoad_FlagsOverrideEverything(t *testing.T) {
	setTestHome(t, t.TempDir())
	t.Setenv("TIDYFILES_WEB_ADDR", "127.0.0.1:1")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("addr", "", "")
	fs.Duration("delay", 0, "")
	if err := fs.Parse([]string{"--addr", "127.0.0.1:2"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("", map[string]*pflag.Flag{
		"web.addr":      fs.Lookup("addr"),
		"catalog.delay": fs.Lookup("delay"),
		"catalog.path":  nil,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Web.Addr != "127.0.0.1:2" {
		t.Errorf("Web.Addr = %q, want flag value", cfg.Web.Addr)
	}
	if cfg.Catalog.Delay != time.Second {
		t.Errorf("an unset flag must not override the default, got %v", cfg.Catalog.Delay)
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		Catalog: CatalogConfig{Delay: time.Second},
		History: HistoryConfig{Keep: 10},
		Web:     WebConfig{Addr: "127.0.0.1:8080"},
		UI:      UIConfig{AriaLabel: "Files Table"},
	}

	tests := []struct {
		mutate  func(*Config)
		name    string
		wantKey string
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "negative_delay", mutate: func(c *Config) { c.Catalog.Delay = -time.Second }, wantErr: true, wantKey: "catalog.delay"},
		{name: "negative_keep", mutate: func(c *Config) { c.History.Keep = -1 }, wantErr: true, wantKey: "history.keep"},
		{name: "empty_addr", mutate: func(c *Config) { c.Web.Addr = " " }, wantErr: true, wantKey: "web.addr"},
		{name: "addr_without_port", mutate: func(c *Config) { c.Web.Addr = "localhost" }, wantErr: true, wantKey: "web.addr"},
		{name: "empty_label", mutate: func(c *Config) { c.UI.AriaLabel = "" }, wantErr: true, wantKey: "ui.aria_label"},
		{name: "null_byte_path", mutate: func(c *Config) { c.Catalog.Path = "a\x00b" }, wantErr: true, wantKey: "catalog.path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)

			err := Validate(c)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				return
			}

			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error should wrap ErrInvalidConfig: %v", err)
			}

			var ve *ValidationErrors
			if !errors.As(err, &ve) {
				t.Fatalf("error should carry ValidationErrors: %v", err)
			}

			var fe *FieldError
			if !errors.As(ve.Errors[0], &fe) || fe.Key != tt.wantKey {
				t.Errorf("first field error = %+v, want key %s", fe, tt.wantKey)
			}
		})
	}
}

func TestValidate_CollectsAll(t *testing.T) {
	err := Validate(Config{Catalog: CatalogConfig{Delay: -1}})

	var ve *ValidationErrors
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}
	if len(ve.Errors) != 3 {
		t.Errorf("expected 3 errors (delay, addr, label), got %d: %v", len(ve.Errors), ve)
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	setTestHome(t, home)
	t.Setenv("TIDYFILES_TEST_DIR", "/srv/files")

	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"~", home},
		{"~/history.db", filepath.Join(home, "history.db")},
		{"$TIDYFILES_TEST_DIR/catalog.yaml", "/srv/files/catalog.yaml"},
		{"/abs/path", "/abs/path"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ExpandPath(tt.input); got != tt.want {
				t.Errorf("ExpandPath(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
