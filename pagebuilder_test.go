package pagebuilder

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-pagebuilder/pkg/editor"
	"github.com/goliatone/go-pagebuilder/pkg/schema"
)

func TestAssetsFSContainsRuntime(t *testing.T) {
	data, err := fs.ReadFile(AssetsFS(), "pagebuilder.js")
	if err != nil {
		t.Fatalf("expected runtime script to be readable: %v", err)
	}
	if !strings.Contains(string(data), "/api/gesture") {
		t.Fatalf("expected runtime to post gestures")
	}
}

func TestLoadRegistry_MergesSources(t *testing.T) {
	dir := t.TempDir()
	section := `sections:
  - type: hero
    name: Hero
    fields:
      - type: text
        id: headline
        default: Hello
`
	if err := os.WriteFile(filepath.Join(dir, "hero.yaml"), []byte(section), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	reg, err := LoadRegistry(context.Background(), RegistrySources{Dir: dir})
	if err != nil {
		t.Fatalf("load registry: %v", err)
	}
	if !reg.Has("hero") || !reg.Has("gallery") {
		t.Fatalf("expected bundled and on-disk sections, got %v", reg.Names())
	}

	if _, err := LoadRegistry(context.Background(), RegistrySources{OpenAPI: filepath.Join(dir, "missing.yaml")}); err == nil {
		t.Fatalf("expected error for missing openapi document")
	}
}

func TestLoadRegistry_RejectsDuplicateTypes(t *testing.T) {
	dir := t.TempDir()
	dup := "sections:\n  - type: gallery\n    fields: []\n"
	if err := os.WriteFile(filepath.Join(dir, "gallery.yaml"), []byte(dup), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadRegistry(context.Background(), RegistrySources{Dir: dir}); err == nil {
		t.Fatalf("expected duplicate section error")
	}
}

func TestRenderPage_SkipsHiddenSections(t *testing.T) {
	payload := Payload{
		PageID: "home",
		Order:  []editor.Instance{{ID: 1, Type: "gallery"}, {ID: 2, Type: "heading_description_section"}},
		Hidden: []editor.InstanceID{2},
		Content: map[editor.InstanceID]schema.Content{
			1: {"gallery_title": "Recent Work"},
		},
	}
	out, err := RenderPage(context.Background(), payload)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	html := string(out)
	if !strings.Contains(html, "Recent Work") {
		t.Fatalf("expected gallery title in output:\n%s", html)
	}
	if strings.Contains(html, `data-type="heading_description_section"`) {
		t.Fatalf("hidden section rendered:\n%s", html)
	}
}
