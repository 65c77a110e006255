package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}

	cfg, err = Load("")
	if err != nil || cfg.Server.Addr != "127.0.0.1:8080" {
		t.Fatalf("empty path: %+v, %v", cfg, err)
	}
}

func TestLoad_OverlaysFileOnDefaults(t *testing.T) {
	path := writeConfig(t, `
page_id: landing
debug: true
catalog:
  url: http://catalog.local/api/sections
  timeout: 2s
sections:
  dir: sections
  openapi: /abs/openapi.yaml
storage:
  path: ":memory:"
preview:
  variant: dark
  minify: true
  templates_dir: theme/templates
history:
  limit: 25
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	base := filepath.Dir(path)
	want := Default()
	want.PageID = "landing"
	want.Debug = true
	want.Catalog.URL = "http://catalog.local/api/sections"
	want.Catalog.Timeout = "2s"
	want.Sections = SectionsConfig{Dir: filepath.Join(base, "sections"), OpenAPI: "/abs/openapi.yaml"}
	want.Storage.Path = ":memory:"
	want.Preview.Variant = "dark"
	want.Preview.Minify = true
	want.Preview.TemplatesDir = filepath.Join(base, "theme/templates")
	want.History.Limit = 25
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
	if cfg.CatalogTimeout() != 2*time.Second || cfg.CatalogRefreshInterval() != time.Second {
		t.Fatalf("durations: %v %v", cfg.CatalogTimeout(), cfg.CatalogRefreshInterval())
	}
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := map[string]string{
		"bad yaml":         "catalog: [",
		"bad timeout":      "catalog:\n  timeout: soon\n",
		"negative refresh": "catalog:\n  refresh_interval: -1s\n",
		"negative history": "history:\n  limit: -2\n",
		"blank page":       "page_id: ' '\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, body)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoadFromDir(t *testing.T) {
	path := writeConfig(t, "server:\n  addr: ':9000'\n")
	cfg, err := LoadFromDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":9000" {
		t.Fatalf("addr = %q", cfg.Server.Addr)
	}
}
