package html

import (
	"errors"
	"fmt"
	"maps"
	"path"
	"slices"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// ErrThemeNotFound is returned by StaticSelector for unknown theme names.
var ErrThemeNotFound = errors.New("html renderer: theme not found")

// StaticSelector resolves themes from a fixed set of manifests.
type StaticSelector struct {
	Manifests      map[string]*theme.Manifest
	DefaultTheme   string
	DefaultVariant string
}

var _ theme.ThemeSelector = StaticSelector{}

// Select implements theme.ThemeSelector. Empty arguments fall back to the
// defaults.
func (s StaticSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	if name = strings.TrimSpace(name); name == "" {
		name = s.DefaultTheme
	}
	if variant = strings.TrimSpace(variant); variant == "" {
		variant = s.DefaultVariant
	}
	manifest, ok := s.Manifests[name]
	if !ok || manifest == nil {
		return nil, fmt.Errorf("%w: %q", ErrThemeNotFound, name)
	}
	return &theme.Selection{Theme: name, Variant: variant, Manifest: manifest}, nil
}

// ThemeConfig flattens a selection into renderer configuration. Variant
// tokens, templates and asset files override the manifest's; every token is
// also exposed as a --<token> CSS variable.
func ThemeConfig(selection *theme.Selection) *theme.RendererConfig {
	if selection == nil || selection.Manifest == nil {
		return nil
	}
	manifest := selection.Manifest
	tokens := maps.Clone(manifest.Tokens)
	partials := maps.Clone(manifest.Templates)
	files := maps.Clone(manifest.Assets.Files)
	prefix := manifest.Assets.Prefix

	if variant, ok := manifest.Variants[selection.Variant]; ok {
		tokens = merge(tokens, variant.Tokens)
		partials = merge(partials, variant.Templates)
		files = merge(files, variant.Assets.Files)
		if variant.Assets.Prefix != "" {
			prefix = variant.Assets.Prefix
		}
	}

	cssVars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		cssVars["--"+strings.TrimPrefix(key, "--")] = value
	}

	return &theme.RendererConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Partials: partials,
		Tokens:   tokens,
		CSSVars:  cssVars,
		AssetURL: func(key string) string {
			file, ok := files[key]
			if !ok || file == "" {
				return ""
			}
			if strings.HasPrefix(file, "/") || strings.Contains(file, "://") {
				return file
			}
			return path.Join(prefix, file)
		},
	}
}

func merge(base, overrides map[string]string) map[string]string {
	if len(overrides) == 0 {
		return base
	}
	if base == nil {
		base = make(map[string]string, len(overrides))
	}
	maps.Copy(base, overrides)
	return base
}

type rendererTheme struct {
	Name         string            `json:"name"`
	Variant      string            `json:"variant"`
	Tokens       map[string]string `json:"tokens,omitempty"`
	CSSVars      map[string]string `json:"cssVars,omitempty"`
	CSSVarsStyle string            `json:"css_vars_style,omitempty"`
}

func buildThemeContext(cfg *theme.RendererConfig) rendererTheme {
	if cfg == nil {
		return rendererTheme{}
	}
	ctx := rendererTheme{
		Name:    cfg.Theme,
		Variant: cfg.Variant,
		Tokens:  maps.Clone(cfg.Tokens),
		CSSVars: maps.Clone(cfg.CSSVars),
	}
	ctx.CSSVarsStyle = cssVarsStyle(ctx.CSSVars)
	return ctx
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(".pb-editor {\n")
	for _, key := range slices.Sorted(maps.Keys(vars)) {
		b.WriteString("  ")
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteString(";\n")
	}
	b.WriteString("}")
	return b.String()
}

// DefaultThemeName is the bundled theme served when none is configured.
const DefaultThemeName = "default"

// DefaultManifest describes the bundled theme: the embedded stylesheet with
// light and dark token sets.
func DefaultManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    DefaultThemeName,
		Version: "1.0.0",
		Tokens: map[string]string{
			"pb-accent":        "#2563eb",
			"pb-muted":         "#6b7280",
			"pb-sidebar-width": "320px",
		},
		Variants: map[string]theme.Variant{
			"light": {},
			"dark": {
				Tokens: map[string]string{
					"pb-accent": "#60a5fa",
					"pb-muted":  "#9ca3af",
				},
			},
		},
	}
}

// DefaultSelector selects among the bundled theme and any extra manifests.
func DefaultSelector(extra ...*theme.Manifest) StaticSelector {
	manifests := map[string]*theme.Manifest{DefaultThemeName: DefaultManifest()}
	for _, manifest := range extra {
		if manifest != nil && manifest.Name != "" {
			manifests[manifest.Name] = manifest
		}
	}
	return StaticSelector{
		Manifests:      manifests,
		DefaultTheme:   DefaultThemeName,
		DefaultVariant: "light",
	}
}
