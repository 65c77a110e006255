package catalog

import (
	"errors"
	"net/http"
	"path"
	"strings"
)

// Mux is satisfied by *http.ServeMux.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// Component bundles the catalog handler with the registry and section list
// it describes.
type Component struct {
	opts Options
}

// New constructs a component with default options plus any overrides.
func New(fns ...OptionFn) *Component {
	return &Component{opts: NewOptions(fns...)}
}

// Options returns a copy of the component configuration.
func (c *Component) Options() Options {
	return NewOptions(func(o *Options) { *o = c.opts })
}

// Path returns the route the handler is mounted on under basePath.
func (c *Component) Path(basePath string) string {
	return path.Join("/", strings.TrimSpace(basePath), strings.TrimSpace(c.opts.RoutePath))
}

// Handler returns the net/http handler for catalog queries.
func (c *Component) Handler() http.Handler {
	return HandlerWithOptions(c.opts)
}

// RegisterRoutes mounts the handler under basePath and returns the pattern.
func (c *Component) RegisterRoutes(mux Mux, basePath string) (string, error) {
	if mux == nil {
		return "", errors.New("catalog: missing mux")
	}
	pattern := c.Path(basePath)
	mux.Handle(pattern, c.Handler())
	return pattern, nil
}

// Entries searches the component's section list.
func (c *Component) Entries(query string, limit int) []Entry {
	return Entries(c.opts.sections(), query, limit, c.opts)
}

// Feed returns an in-process feed over the component's section list, for
// wiring a local session without going through HTTP.
func (c *Component) Feed() StaticFeed {
	return StaticFeed(c.Options().sections())
}
