package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	pagebuilder "github.com/goliatone/go-pagebuilder"
	"github.com/goliatone/go-pagebuilder/components/catalog"
	"github.com/goliatone/go-pagebuilder/internal/config"
	"github.com/goliatone/go-pagebuilder/internal/server"
	"github.com/goliatone/go-pagebuilder/pkg/editor"
	"github.com/goliatone/go-pagebuilder/pkg/render"
	"github.com/goliatone/go-pagebuilder/pkg/renderers/html"
	"github.com/goliatone/go-pagebuilder/pkg/renderers/tui"
	"github.com/goliatone/go-pagebuilder/pkg/schema"
	"github.com/goliatone/go-pagebuilder/pkg/storage/sqlite"
)

const usage = `usage: pagebuilder <command> [flags]

commands:
  edit       edit a page interactively in the terminal
  serve      serve the browser editor
  render     render a saved page (html, json or text)
  sections   list the section catalog
  pages      list saved pages
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd, args := os.Args[1], os.Args[2:]
	var err error
	switch cmd {
	case "edit":
		err = runEdit(ctx, args)
	case "serve":
		err = runServe(ctx, args)
	case "render":
		err = runRender(ctx, args)
	case "sections":
		err = runSections(ctx, args)
	case "pages":
		err = runPages(ctx, args)
	case "-h", "--help", "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%s: %v", cmd, err)
	}
}

// common holds the flags every command shares.
type common struct {
	configPath string
	pageID     string
	cfg        *config.Config
}

func (c *common) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", config.FileName, "configuration file")
	fs.StringVar(&c.pageID, "page", "", "page id (defaults to page_id from the config)")
}

func (c *common) load() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.pageID != "" {
		cfg.PageID = c.pageID
	}
	c.cfg = cfg
	return nil
}

func (c *common) registry(ctx context.Context) (*schema.Registry, error) {
	return pagebuilder.LoadRegistry(ctx, pagebuilder.RegistrySources{
		Dir:     c.cfg.Sections.Dir,
		OpenAPI: c.cfg.Sections.OpenAPI,
	})
}

// session builds the editing session, restoring the last saved version of
// the page when there is one.
func (c *common) session(ctx context.Context, store *sqlite.Store) (*editor.Session, error) {
	reg, err := c.registry(ctx)
	if err != nil {
		return nil, err
	}
	mode := editor.InvariantLog
	if c.cfg.Debug {
		mode = editor.InvariantPanic
	}
	options := []editor.Option{
		editor.WithRegistry(reg),
		editor.WithPageID(c.cfg.PageID),
		editor.WithSaver(store),
		editor.WithHistoryLimit(c.cfg.History.Limit),
		editor.WithInvariantMode(mode),
	}
	if url := strings.TrimSpace(c.cfg.Catalog.URL); url != "" {
		options = append(options, editor.WithCatalogFeed(catalog.NewHTTPFeed(url,
			catalog.WithTimeout(c.cfg.CatalogTimeout()),
			catalog.WithRefreshLimit(c.cfg.CatalogRefreshInterval(), 1),
		)))
	}
	session := editor.NewSession(ctx, options...)

	payload, err := store.Load(ctx, c.cfg.PageID)
	switch {
	case errors.Is(err, sqlite.ErrPageNotFound):
	case err != nil:
		return nil, err
	default:
		if err := session.Load(payload); err != nil {
			return nil, err
		}
	}
	return session, nil
}

func (c *common) store() (*sqlite.Store, error) {
	return sqlite.Open(c.cfg.Storage.Path)
}

func (c *common) htmlRenderer() (*html.Renderer, error) {
	return html.New(
		html.WithTemplatesDir(c.cfg.Preview.TemplatesDir),
		html.WithThemeSelector(html.DefaultSelector()),
		html.WithMinify(c.cfg.Preview.Minify),
	)
}

func (c *common) renderOptions(target render.Target) render.RenderOptions {
	return render.RenderOptions{
		Target:  target,
		Theme:   c.cfg.Preview.Theme,
		Variant: c.cfg.Preview.Variant,
	}
}

func runEdit(ctx context.Context, args []string) error {
	var c common
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	c.register(fs)
	fs.Parse(args)
	if err := c.load(); err != nil {
		return err
	}

	store, err := c.store()
	if err != nil {
		return err
	}
	defer store.Close()
	session, err := c.session(ctx, store)
	if err != nil {
		return err
	}

	shell := tui.NewShell(session, tui.WithPromptDriver(tui.NewSurveyDriver(os.Stdout)), tui.WithOutput(os.Stdout))
	err = shell.Run(ctx)
	if errors.Is(err, tui.ErrAborted) {
		return nil
	}
	return err
}

func runServe(ctx context.Context, args []string) error {
	var c common
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	c.register(fs)
	addr := fs.String("addr", "", "listen address (defaults to server.addr)")
	fs.Parse(args)
	if err := c.load(); err != nil {
		return err
	}
	if *addr != "" {
		c.cfg.Server.Addr = *addr
	}

	store, err := c.store()
	if err != nil {
		return err
	}
	defer store.Close()
	session, err := c.session(ctx, store)
	if err != nil {
		return err
	}
	renderer, err := c.htmlRenderer()
	if err != nil {
		return err
	}

	options := []server.Option{
		server.WithHTMLRenderer(renderer),
		server.WithRenderer(tui.OutlineRenderer{}),
		server.WithRenderOptions(c.renderOptions("")),
		server.WithCatalog(catalog.New(catalog.WithRegistry(session.Registry()))),
	}
	if c.cfg.Preview.TemplatesDir != "" {
		options = append(options, server.WithTemplateWatch(c.cfg.Preview.TemplatesDir))
	}
	srv, err := server.New(session, options...)
	if err != nil {
		return err
	}
	return srv.ListenAndServe(ctx, c.cfg.Server.Addr)
}

func runRender(ctx context.Context, args []string) error {
	var c common
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	c.register(fs)
	format := fs.String("format", "html", "output format: html, json or text")
	target := fs.String("target", "page", "html/json target: document, page or sidebar")
	output := fs.String("output", "", "output file (stdout if empty)")
	fs.Parse(args)
	if err := c.load(); err != nil {
		return err
	}

	store, err := c.store()
	if err != nil {
		return err
	}
	defer store.Close()

	payload, err := store.Load(ctx, c.cfg.PageID)
	if err != nil {
		return err
	}
	reg, err := c.registry(ctx)
	if err != nil {
		return err
	}

	var renderer render.Renderer
	switch *format {
	case "html":
		renderer, err = c.htmlRenderer()
		if err != nil {
			return err
		}
	case "json":
		renderer = render.JSONRenderer{Indent: true}
	case "text":
		renderer = tui.OutlineRenderer{}
	default:
		return fmt.Errorf("unknown format %q", *format)
	}

	out, err := pagebuilder.Render(ctx, renderer, payload, c.renderOptions(render.Target(*target)), editor.WithRegistry(reg))
	if err != nil {
		return err
	}
	if *output == "" {
		_, err = os.Stdout.Write(out)
		return err
	}
	if err := os.WriteFile(*output, out, 0o644); err != nil {
		return err
	}
	fmt.Printf("Page %s written to %s\n", c.cfg.PageID, *output)
	return nil
}

func runSections(ctx context.Context, args []string) error {
	var c common
	fs := flag.NewFlagSet("sections", flag.ExitOnError)
	c.register(fs)
	query := fs.String("q", "", "filter by section type")
	remote := fs.Bool("remote", false, "list the catalog served at catalog.url")
	fs.Parse(args)
	if err := c.load(); err != nil {
		return err
	}

	reg, err := c.registry(ctx)
	if err != nil {
		return err
	}
	opts := catalog.NewOptions(catalog.WithRegistry(reg))
	sections := reg.Names()
	if *remote {
		if c.cfg.Catalog.URL == "" {
			return errors.New("catalog.url is not configured")
		}
		feed := catalog.NewHTTPFeed(c.cfg.Catalog.URL, catalog.WithTimeout(c.cfg.CatalogTimeout()))
		if sections, err = feed.Sections(ctx); err != nil {
			return err
		}
	}

	for _, entry := range catalog.Entries(sections, *query, opts.MaxLimit, opts) {
		marker := " "
		if !entry.Known {
			marker = "?"
		}
		fmt.Printf("%s %-32s %s\n", marker, entry.Value, entry.Label)
	}
	return nil
}

func runPages(ctx context.Context, args []string) error {
	var c common
	fs := flag.NewFlagSet("pages", flag.ExitOnError)
	c.register(fs)
	fs.Parse(args)
	if err := c.load(); err != nil {
		return err
	}

	store, err := c.store()
	if err != nil {
		return err
	}
	defer store.Close()

	infos, err := store.Pages(ctx)
	if err != nil {
		return err
	}
	for _, info := range infos {
		fmt.Printf("%-20s %-36s %3d sections  %s\n", info.PageID, info.Revision, info.Sections, info.SavedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}
