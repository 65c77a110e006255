package render

import (
	"errors"
	"fmt"
	"mime"
	"strings"
)

// ErrRendererNotFound is returned when a format names no registered renderer.
var ErrRendererNotFound = errors.New("render: renderer not found")

// Registry is a fixed, ordered set of renderers. The first renderer is the
// default answer when a request names no format and accepts anything.
type Registry struct {
	byName map[string]Renderer
	order  []Renderer
}

// NewRegistry registers renderers in order. Names must be unique and
// non-empty.
func NewRegistry(renderers ...Renderer) (*Registry, error) {
	reg := &Registry{byName: make(map[string]Renderer, len(renderers))}
	for _, renderer := range renderers {
		if renderer == nil {
			return nil, errors.New("render: renderer is required")
		}
		name := renderer.Name()
		if name == "" {
			return nil, errors.New("render: renderer name is required")
		}
		if _, exists := reg.byName[name]; exists {
			return nil, fmt.Errorf("render: renderer %q already registered", name)
		}
		reg.byName[name] = renderer
		reg.order = append(reg.order, renderer)
	}
	return reg, nil
}

// Get retrieves a renderer by name.
func (r *Registry) Get(name string) (Renderer, error) {
	if renderer, ok := r.byName[name]; ok {
		return renderer, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrRendererNotFound, name)
}

// Names lists renderer names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.order))
	for _, renderer := range r.order {
		names = append(names, renderer.Name())
	}
	return names
}

// Resolve picks the renderer for a state request. An explicit format wins
// and must exist. Otherwise the first Accept media type that a renderer
// produces is used, and anything else falls back to the default renderer.
func (r *Registry) Resolve(format, accept string) (Renderer, error) {
	if format = strings.TrimSpace(format); format != "" {
		return r.Get(format)
	}
	if len(r.order) == 0 {
		return nil, fmt.Errorf("%w: registry is empty", ErrRendererNotFound)
	}
	for _, part := range strings.Split(accept, ",") {
		mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil || mediaType == "*/*" {
			continue
		}
		if renderer, ok := r.ForContentType(mediaType); ok {
			return renderer, nil
		}
	}
	return r.order[0], nil
}

// ForContentType returns the first renderer whose content type has the given
// media type. Parameters such as charset are ignored.
func (r *Registry) ForContentType(mediaType string) (Renderer, bool) {
	for _, renderer := range r.order {
		produced, _, err := mime.ParseMediaType(renderer.ContentType())
		if err == nil && strings.EqualFold(produced, mediaType) {
			return renderer, true
		}
	}
	return nil, false
}
