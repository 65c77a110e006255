package render

import (
	"context"
)

// Renderer turns an editor View into bytes (HTML preview, JSON state, a
// terminal outline).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, view View, options RenderOptions) ([]byte, error)
}
