package html

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	theme "github.com/goliatone/go-theme"
)

func TestThemeConfig_MergesVariant(t *testing.T) {
	manifest := &theme.Manifest{
		Name:   "acme",
		Tokens: map[string]string{"brand": "#123456", "radius": "4px"},
		Assets: theme.Assets{
			Prefix: "/assets/themes/acme",
			Files:  map[string]string{"pagebuilder.stylesheet": "theme.css"},
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens: map[string]string{"brand": "#654321"},
				Assets: theme.Assets{Files: map[string]string{"pagebuilder.script": "dark.js"}},
			},
		},
	}

	cfg := ThemeConfig(&theme.Selection{Theme: "acme", Variant: "dark", Manifest: manifest})

	want := map[string]string{"--brand": "#654321", "--radius": "4px"}
	if diff := cmp.Diff(want, cfg.CSSVars); diff != "" {
		t.Fatalf("css vars mismatch (-want +got):\n%s", diff)
	}
	if got := cfg.AssetURL("pagebuilder.stylesheet"); got != "/assets/themes/acme/theme.css" {
		t.Fatalf("stylesheet url = %q", got)
	}
	if got := cfg.AssetURL("pagebuilder.script"); got != "/assets/themes/acme/dark.js" {
		t.Fatalf("script url = %q", got)
	}
	if got := cfg.AssetURL("missing"); got != "" {
		t.Fatalf("missing asset url = %q", got)
	}
	if manifest.Tokens["brand"] != "#123456" {
		t.Fatalf("manifest tokens were modified")
	}
}

func TestStaticSelector_Defaults(t *testing.T) {
	selector := StaticSelector{
		Manifests:      map[string]*theme.Manifest{"acme": {Name: "acme"}},
		DefaultTheme:   "acme",
		DefaultVariant: "light",
	}

	selection, err := selector.Select("", "")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if selection.Theme != "acme" || selection.Variant != "light" {
		t.Fatalf("selection = %+v", selection)
	}
	if _, err := selector.Select("other", ""); !errors.Is(err, ErrThemeNotFound) {
		t.Fatalf("expected ErrThemeNotFound, got %v", err)
	}
}

func TestCSSVarsStyle_Sorted(t *testing.T) {
	got := cssVarsStyle(map[string]string{"--b": "2", "--a": "1"})
	want := ".pb-editor {\n  --a: 1;\n  --b: 2;\n}"
	if got != want {
		t.Fatalf("style = %q", got)
	}
	if cssVarsStyle(nil) != "" {
		t.Fatalf("expected empty style for no vars")
	}
}

func TestSafeURL(t *testing.T) {
	cases := map[string]string{
		"":                        "",
		"/assets/a.jpg":           "/assets/a.jpg",
		"https://example.com/x":   "https://example.com/x",
		"mailto:hi@example.com":   "mailto:hi@example.com",
		"javascript:alert(1)":     "#",
		"data:text/html;base64,x": "#",
	}
	for input, want := range cases {
		if got := safeURL(input); got != want {
			t.Errorf("safeURL(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestDefaultSelector_DarkVariant(t *testing.T) {
	selection, err := DefaultSelector().Select("", "dark")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	cfg := ThemeConfig(selection)
	if cfg.CSSVars["--pb-accent"] != "#60a5fa" || cfg.CSSVars["--pb-sidebar-width"] != "320px" {
		t.Fatalf("unexpected css vars %v", cfg.CSSVars)
	}

	extra := &theme.Manifest{Name: "acme"}
	if _, err := DefaultSelector(extra, nil).Select("acme", ""); err != nil {
		t.Fatalf("extra manifest not selectable: %v", err)
	}
}
