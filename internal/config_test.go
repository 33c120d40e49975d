package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pkgconfig "github.com/starford/gsea-browser/pkg/config"
)

func TestDefaultConfigValid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
}

func TestHTTPConfig_PortRange(t *testing.T) {
	for _, port := range []int{0, -1, 70000} {
		cfg := HTTPConfig{Port: port}
		if err := cfg.Validate(); err == nil {
			t.Errorf("port %d should fail validation", port)
		}
	}
	cfg := HTTPConfig{Port: 8050}
	if cfg.Address() != ":8050" {
		t.Errorf("address = %q", cfg.Address())
	}
}

func TestDataConfig_RootRequired(t *testing.T) {
	cfg := DataConfig{}
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty data root should fail validation")
	}
}

func TestTableConfig_PageSize(t *testing.T) {
	cfg := TableConfig{PageSize: 0}
	if err := cfg.Validate(); err == nil {
		t.Error("zero page size should fail validation")
	}
	cfg.PageSize = 25
	if err := cfg.Validate(); err != nil {
		t.Errorf("page size 25 should pass: %v", err)
	}
}

func TestIndexConfig_DSNRequiredWhenEnabled(t *testing.T) {
	cfg := IndexConfig{Enabled: true}
	if err := cfg.Validate(); err == nil {
		t.Error("enabled index without DSN should fail")
	}
	cfg.Enabled = false
	if err := cfg.Validate(); err != nil {
		t.Errorf("disabled index needs no DSN: %v", err)
	}
}

func TestFullConfig_WatchRequiresIndex(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Index.Enabled = false
	err := cfg.Validate()
	if err == nil {
		t.Fatal("watch without index should fail")
	}
	if !strings.Contains(err.Error(), "index.enabled") {
		t.Errorf("unexpected error: %v", err)
	}
	cfg.Watch.Enabled = false
	if err := cfg.Validate(); err != nil {
		t.Errorf("watch and index both off should pass: %v", err)
	}
}

func TestEventsConfig_Throttle(t *testing.T) {
	cfg := EventsConfig{Throttle: time.Millisecond}
	if err := cfg.Validate(); err == nil {
		t.Error("1ms throttle should fail validation")
	}
}

func TestLoadYAMLWithEnv(t *testing.T) {
	t.Setenv("GSEA_TEST_ROOT", "/srv/gsea")
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "app:\n  log_level: debug\n  http:\n    port: 9000\n" +
		"data:\n  root: ${GSEA_TEST_ROOT}\n" +
		"table:\n  page_size: 20\n" +
		"events:\n  throttle: 5s\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Data.Root != "/srv/gsea" || cfg.App.HTTP.Port != 9000 || cfg.Table.PageSize != 20 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Events.Throttle != 5*time.Second {
		t.Errorf("throttle = %v", cfg.Events.Throttle)
	}
	if cfg.App.LogLevel.String() != "DEBUG" {
		t.Errorf("log level = %v", cfg.App.LogLevel)
	}
	if !cfg.Index.Enabled || cfg.App.Title == "" {
		t.Error("unset keys should keep their defaults")
	}
}

func TestLoadOptional_MissingFileKeepsDefaults(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := pkgconfig.LoadOptional(filepath.Join(t.TempDir(), "absent.yaml"), cfg); err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if cfg.Data.Root != "./data" {
		t.Errorf("root = %q", cfg.Data.Root)
	}
}
