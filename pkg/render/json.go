package render

import (
	"context"
	"encoding/json"
)

// JSONRenderer emits the view (or one part of it) as JSON for API clients.
type JSONRenderer struct {
	Indent bool
}

// Name implements Renderer.
func (JSONRenderer) Name() string { return "json" }

// ContentType implements Renderer.
func (JSONRenderer) ContentType() string { return "application/json" }

// Render implements Renderer.
func (r JSONRenderer) Render(_ context.Context, view View, options RenderOptions) ([]byte, error) {
	var payload any
	switch options.TargetOrDefault() {
	case TargetPage:
		payload = view.Page
	case TargetSidebar:
		payload = view.Sidebar
	default:
		payload = view
	}
	if r.Indent {
		return json.MarshalIndent(payload, "", "  ")
	}
	return json.Marshal(payload)
}
