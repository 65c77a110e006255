package html

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	minhtml "github.com/tdewolff/minify/v2/html"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-pagebuilder/pkg/render"
	rendertemplate "github.com/goliatone/go-pagebuilder/pkg/render/template"
	gotemplate "github.com/goliatone/go-pagebuilder/pkg/render/template/gotemplate"
	"github.com/goliatone/go-pagebuilder/pkg/schema"
)

const (
	documentTemplate = "document"
	pageTemplate     = "page"
	sidebarTemplate  = "sidebar"
	sectionsDir      = "sections/"
	unknownTemplate  = sectionsDir + "unknown"
	templateExt      = ".html"
)

// Option customises the renderer configuration.
type Option func(*config)

type config struct {
	templateFS       fs.FS
	templatesDir     string
	templateRenderer rendertemplate.TemplateRenderer
	selector         theme.ThemeSelector
	theme            *theme.RendererConfig
	assetURLPrefix   string
	minify           bool
	labels           render.Labeler
}

// WithTemplatesFS replaces the embedded template bundle.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		if files != nil {
			cfg.templateFS = files
		}
	}
}

// WithTemplatesDir overlays templates from a directory on disk. Files there
// shadow embedded templates of the same name, so a directory may hold only
// the section previews it customises.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		cfg.templatesDir = strings.TrimSpace(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithThemeSelector resolves RenderOptions.Theme/Variant per render.
func WithThemeSelector(selector theme.ThemeSelector) Option {
	return func(cfg *config) {
		cfg.selector = selector
	}
}

// WithThemeConfig fixes the theme used when no selector is configured.
func WithThemeConfig(themeConfig *theme.RendererConfig) Option {
	return func(cfg *config) {
		cfg.theme = themeConfig
	}
}

// WithAssetURLPrefix sets where the embedded assets are served (default
// "/assets/").
func WithAssetURLPrefix(prefix string) Option {
	return func(cfg *config) {
		if prefix = strings.TrimSpace(prefix); prefix != "" {
			cfg.assetURLPrefix = strings.TrimSuffix(prefix, "/") + "/"
		}
	}
}

// WithMinify minifies the produced HTML and inline CSS.
func WithMinify(enabled bool) Option {
	return func(cfg *config) {
		cfg.minify = enabled
	}
}

// WithLabeler localises labels exposed to templates.
func WithLabeler(labels render.Labeler) Option {
	return func(cfg *config) {
		cfg.labels = labels
	}
}

// Renderer draws the editor view as HTML: a sidebar plus the live page
// preview, each section through its own template.
type Renderer struct {
	templates      rendertemplate.TemplateRenderer
	sources        []fs.FS
	selector       theme.ThemeSelector
	theme          *theme.RendererConfig
	assetURLPrefix string
	minifier       *minify.M
	markup         *markup
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the HTML renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{
		templateFS:     TemplatesFS(),
		assetURLPrefix: "/assets/",
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	var sources []fs.FS
	if cfg.templatesDir != "" {
		if _, err := os.Stat(cfg.templatesDir); err != nil {
			return nil, fmt.Errorf("html renderer: templates dir: %w", err)
		}
		sources = append(sources, os.DirFS(cfg.templatesDir))
	}
	sources = append(sources, cfg.templateFS)

	for _, name := range []string{documentTemplate, pageTemplate, sidebarTemplate, unknownTemplate} {
		if !exists(sources, name+templateExt) {
			return nil, fmt.Errorf("html renderer: template %q not found", name+templateExt)
		}
	}

	templates := cfg.templateRenderer
	if templates == nil {
		engineOptions := []gotemplate.Option{
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(templateExt),
		}
		if cfg.templatesDir != "" {
			engineOptions = append(engineOptions, gotemplate.WithBaseDir(cfg.templatesDir))
		}
		engine, err := gotemplate.New(engineOptions...)
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
		}
		templates = engine
	}

	// pongo2 filters are process-wide; later renderers reuse the first
	// registration and the duplicate error is expected.
	_ = templates.RegisterFilter("safe_url", func(input any, _ any) (any, error) {
		text, _ := input.(string)
		return safeURL(text), nil
	})
	_ = templates.RegisterFilter("label", func(input any, _ any) (any, error) {
		text, _ := input.(string)
		return schema.FormatLabel(text), nil
	})
	if err := templates.GlobalContext(render.TemplateLabelFuncs(cfg.labels)); err != nil {
		return nil, fmt.Errorf("html renderer: register label helpers: %w", err)
	}

	renderer := &Renderer{
		templates:      templates,
		sources:        sources,
		selector:       cfg.selector,
		theme:          cfg.theme,
		assetURLPrefix: cfg.assetURLPrefix,
		markup:         newMarkup(),
	}
	if cfg.minify {
		m := minify.New()
		m.AddFunc("text/css", css.Minify)
		m.AddFunc("text/html", minhtml.Minify)
		renderer.minifier = m
	}
	return renderer, nil
}

// Name identifies the renderer inside the registry.
func (r *Renderer) Name() string {
	return "html"
}

// ContentType returns the MIME type for generated documents.
func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Reload drops parsed templates so edits to the templates dir show on the
// next render.
func (r *Renderer) Reload() {
	if reloader, ok := r.templates.(rendertemplate.Reloader); ok {
		reloader.Reload()
	}
}

// Render produces the document, the page preview or the sidebar fragment
// depending on options.Target.
func (r *Renderer) Render(_ context.Context, view render.View, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, errors.New("html renderer: template renderer is nil")
	}

	var (
		out string
		err error
	)
	switch options.TargetOrDefault() {
	case render.TargetPage:
		out, err = r.renderPage(view.Page)
	case render.TargetSidebar:
		out, err = r.renderSidebar(view.Sidebar)
	default:
		out, err = r.renderDocument(view, options)
	}
	if err != nil {
		return nil, err
	}

	if r.minifier != nil {
		minified, err := r.minifier.String("text/html", out)
		if err != nil {
			return nil, fmt.Errorf("html renderer: minify: %w", err)
		}
		out = minified
	}
	return []byte(out), nil
}

func (r *Renderer) renderDocument(view render.View, options render.RenderOptions) (string, error) {
	themeConfig, err := r.themeConfig(options)
	if err != nil {
		return "", err
	}
	page, err := r.renderPage(view.Page)
	if err != nil {
		return "", err
	}
	sidebar, err := r.renderSidebar(view.Sidebar)
	if err != nil {
		return "", err
	}

	data := map[string]any{
		"page_id":      view.PageID,
		"session_id":   view.SessionID,
		"page_html":    page,
		"sidebar_html": sidebar,
		"editor_class": string(ClassEditor),
		"device_class": deviceClass(view.Page.Device),
		"assets":       r.assetURLs(themeConfig),
		"theme":        buildThemeContext(themeConfig),
		"locale":       options.Locale,
	}
	out, err := r.templates.RenderTemplate(documentTemplate, data)
	if err != nil {
		return "", fmt.Errorf("html renderer: render document: %w", err)
	}
	return out, nil
}

func (r *Renderer) renderPage(page render.Page) (string, error) {
	sections := make([]map[string]any, 0, len(page.Sections))
	for _, section := range page.Sections {
		markup, err := r.renderSection(section, page.Device)
		if err != nil {
			return "", err
		}
		class := string(ClassSection)
		if !section.Known {
			class += " " + string(ClassUnknown)
		}
		sections = append(sections, map[string]any{
			"id":    int(section.ID),
			"type":  section.Type,
			"label": section.Label,
			"class": class,
			"html":  markup,
		})
	}

	out, err := r.templates.RenderTemplate(pageTemplate, map[string]any{
		"page_class": string(ClassPage) + " " + deviceClass(page.Device),
		"device":     page.Device,
		"sections":   sections,
	})
	if err != nil {
		return "", fmt.Errorf("html renderer: render page: %w", err)
	}
	return out, nil
}

func (r *Renderer) renderSection(section render.Section, device string) (string, error) {
	name := unknownTemplate
	if section.Known && section.Template != "" && exists(r.sources, sectionsDir+section.Template+templateExt) {
		name = sectionsDir + section.Template
	}
	out, err := r.templates.RenderTemplate(name, map[string]any{
		"section": section,
		"content": r.markup.prepare(section.Schema, section.Content),
		"device":  device,
	})
	if err != nil {
		return "", fmt.Errorf("html renderer: render section %d (%s): %w", section.ID, section.Type, err)
	}
	return out, nil
}

func (r *Renderer) renderSidebar(sidebar render.Sidebar) (string, error) {
	items := make([]map[string]any, 0, len(sidebar.Items))
	for _, item := range sidebar.Items {
		items = append(items, map[string]any{
			"id":     int(item.ID),
			"index":  item.Index,
			"type":   item.Type,
			"label":  item.Label,
			"hidden": item.Hidden,
			"known":  item.Known,
			"class":  itemClasses(item.Hidden, item.Dragging, item.DropTarget),
		})
	}

	data := map[string]any{
		"sidebar_class": string(ClassSidebar),
		"sidebar":       sidebar,
		"items":         items,
		"tabs":          []string{"content", "components", "settings"},
		"devices":       []string{"desktop", "tablet", "mobile"},
	}
	if sidebar.Picker.Preview != nil {
		preview, err := r.renderSection(*sidebar.Picker.Preview, "desktop")
		if err != nil {
			return "", err
		}
		data["picker_preview_html"] = preview
	}

	out, err := r.templates.RenderTemplate(sidebarTemplate, data)
	if err != nil {
		return "", fmt.Errorf("html renderer: render sidebar: %w", err)
	}
	return out, nil
}

func (r *Renderer) themeConfig(options render.RenderOptions) (*theme.RendererConfig, error) {
	if r.selector == nil {
		return r.theme, nil
	}
	selection, err := r.selector.Select(options.Theme, options.Variant)
	if err != nil {
		return nil, fmt.Errorf("html renderer: select theme: %w", err)
	}
	return ThemeConfig(selection), nil
}

func (r *Renderer) assetURLs(themeConfig *theme.RendererConfig) map[string]string {
	urls := map[string]string{
		"stylesheet": r.assetURLPrefix + StylesheetName,
		"script":     r.assetURLPrefix + RuntimeScriptName,
	}
	if themeConfig == nil || themeConfig.AssetURL == nil {
		return urls
	}
	if url := themeConfig.AssetURL(themeAssetStylesheet); url != "" {
		urls["stylesheet"] = url
	}
	if url := themeConfig.AssetURL(themeAssetScript); url != "" {
		urls["script"] = url
	}
	return urls
}

func exists(sources []fs.FS, name string) bool {
	for _, source := range sources {
		if source == nil {
			continue
		}
		if _, err := fs.Stat(source, name); err == nil {
			return true
		}
	}
	return false
}
