// Package pagebuilder is the top-level entry point: it assembles section
// registries from the bundled, on-disk and OpenAPI-declared schemas and
// renders saved pages without an interactive session.
package pagebuilder

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/goliatone/go-pagebuilder/pkg/editor"
	"github.com/goliatone/go-pagebuilder/pkg/render"
	"github.com/goliatone/go-pagebuilder/pkg/renderers/html"
	"github.com/goliatone/go-pagebuilder/pkg/schema"
)

// Payload aliases editor.Payload, the saved page format.
type Payload = editor.Payload

// RegistrySources lists where section schemas come from besides the bundled
// set. Empty fields are skipped.
type RegistrySources struct {
	// Dir holds YAML or JSON section files.
	Dir string
	// OpenAPI is a document declaring sections under components.schemas
	// with x-section.
	OpenAPI string
}

// LoadRegistry builds a registry from the bundled sections plus sources.
// A section type declared twice is an error.
func LoadRegistry(ctx context.Context, sources RegistrySources) (*schema.Registry, error) {
	sections := schema.BuiltinSections()

	if dir := strings.TrimSpace(sources.Dir); dir != "" {
		extra, err := schema.ParseFS(os.DirFS(dir))
		if err != nil {
			return nil, fmt.Errorf("pagebuilder: sections dir %s: %w", dir, err)
		}
		sections = append(sections, extra...)
	}

	if path := strings.TrimSpace(sources.OpenAPI); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("pagebuilder: read openapi %s: %w", path, err)
		}
		imported, err := schema.ImportOpenAPI(ctx, raw)
		if err != nil {
			return nil, fmt.Errorf("pagebuilder: import openapi %s: %w", path, err)
		}
		sections = append(sections, imported...)
	}

	reg, err := schema.NewRegistry(sections)
	if err != nil {
		return nil, fmt.Errorf("pagebuilder: %w", err)
	}
	return reg, nil
}

// Render draws a saved page with renderer. The payload is loaded into a
// throwaway session built with options.
func Render(ctx context.Context, renderer render.Renderer, payload Payload, renderOptions render.RenderOptions, options ...editor.Option) ([]byte, error) {
	session := editor.NewSession(ctx, options...)
	if err := session.Load(payload); err != nil {
		return nil, fmt.Errorf("pagebuilder: %w", err)
	}
	return renderer.Render(ctx, render.BuildView(session), renderOptions)
}

// RenderPage renders the preview of a saved page as an HTML fragment using
// the bundled templates.
func RenderPage(ctx context.Context, payload Payload, options ...editor.Option) ([]byte, error) {
	renderer, err := html.New()
	if err != nil {
		return nil, err
	}
	return Render(ctx, renderer, payload, render.RenderOptions{Target: render.TargetPage}, options...)
}

// AssetsFS exposes the editor stylesheet and browser runtime so Go
// applications can serve them.
//
// Typical mount:
//
//	mux.Handle("/assets/",
//	  http.StripPrefix("/assets/",
//	    http.FileServerFS(pagebuilder.AssetsFS()),
//	  ),
//	)
func AssetsFS() fs.FS {
	return html.AssetsFS()
}
