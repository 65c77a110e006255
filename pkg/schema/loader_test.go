package schema_test

import (
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-pagebuilder/pkg/schema"
)

func TestLoadFS_YAMLAndJSON(t *testing.T) {
	fsys := fstest.MapFS{
		"a/hero.yaml": {Data: []byte(`
sections:
  - type: hero
    fields:
      - type: text
        id: hero_title
        default: Welcome
      - type: number
        id: height
        default: 300
`)},
		"b/cards.json": {Data: []byte(`{"sections":[{"type":"cards","name":"Cards","maxItems":2,
  "fields":[{"type":"array","id":"cards","itemFields":[{"type":"text","id":"title"}]}]}]}`)},
		"README.md": {Data: []byte("ignored")},
	}

	reg, err := schema.LoadFS(fsys)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := reg.Names(); len(got) != 2 || got[0] != "hero" || got[1] != "cards" {
		t.Fatalf("unexpected names: %v", got)
	}

	hero, err := reg.Lookup("hero")
	if err != nil {
		t.Fatalf("lookup hero: %v", err)
	}
	if hero.Name != "hero" {
		t.Fatalf("expected name to fall back to type, got %q", hero.Name)
	}
	if hero.Fields[0].Label != "Hero title" {
		t.Fatalf("expected derived label, got %q", hero.Fields[0].Label)
	}

	content, err := reg.DefaultContent("hero")
	if err != nil {
		t.Fatalf("default content: %v", err)
	}
	if content["height"] != float64(300) {
		t.Fatalf("expected numeric default normalised to float64, got %#v", content["height"])
	}

	cards, err := reg.Lookup("cards")
	if err != nil {
		t.Fatalf("lookup cards: %v", err)
	}
	if got := cards.ArrayLimit(cards.Fields[0]); got != 2 {
		t.Fatalf("expected section maxItems fallback 2, got %d", got)
	}
}

func TestLoadFS_EmptyFile(t *testing.T) {
	_, err := schema.LoadFS(fstest.MapFS{"empty.yaml": {Data: []byte("  \n")}})
	if err == nil {
		t.Fatalf("expected error for empty file")
	}
}

func TestLoadFS_NilFS(t *testing.T) {
	reg, err := schema.LoadFS(nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if reg.Len() != 0 {
		t.Fatalf("expected empty registry")
	}
}

func TestBuiltin_GalleryDefaults(t *testing.T) {
	content, err := schema.Builtin().DefaultContent("gallery")
	if err != nil {
		t.Fatalf("default content: %v", err)
	}
	if content["gallery_title"] != "Our Featured Work" {
		t.Fatalf("unexpected gallery title default: %#v", content["gallery_title"])
	}
	if content["section_height"] != "medium" {
		t.Fatalf("unexpected section height default: %#v", content["section_height"])
	}
	if _, ok := content["items"]; ok {
		t.Fatalf("array without a declared default should not be pre-filled")
	}
}
