package form

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
)

// Resolver turns a user selection (a local path, an upload handle) into the
// reference stored in content. Resolution may block; the commit that follows
// is a single synchronous Set.
type Resolver interface {
	Resolve(ctx context.Context, source string) (string, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, source string) (string, error)

// Resolve implements Resolver.
func (f ResolverFunc) Resolve(ctx context.Context, source string) (string, error) {
	return f(ctx, source)
}

// ErrUnsupportedImage is returned by URLResolver for sources it cannot map.
var ErrUnsupportedImage = errors.New("form: unsupported image source")

// URLResolver accepts http(s) URLs and site-absolute paths as-is and maps
// local file paths under Root to URLs under Prefix.
type URLResolver struct {
	Root   string
	Prefix string
}

// Resolve implements Resolver.
func (r URLResolver) Resolve(ctx context.Context, source string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	source = strings.TrimSpace(source)
	if source == "" {
		return "", fmt.Errorf("%w: empty source", ErrUnsupportedImage)
	}
	if parsed, err := url.Parse(source); err == nil && (parsed.Scheme == "http" || parsed.Scheme == "https") {
		return source, nil
	}
	if r.Root != "" {
		rel, err := filepath.Rel(r.Root, source)
		if err == nil && !strings.HasPrefix(rel, "..") && !filepath.IsAbs(rel) {
			return strings.TrimRight(r.Prefix, "/") + "/" + filepath.ToSlash(rel), nil
		}
	}
	if strings.HasPrefix(source, "/") {
		return source, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedImage, source)
}

// ImageBinding keeps the preview reference of an image control apart from
// the committed content value. A resolved-but-uncommitted pick only changes
// the preview; Sync pulls the preview back when the committed value changes
// underneath it (undo, load, another editor).
type ImageBinding struct {
	mu        sync.Mutex
	path      string
	committed string
	preview   string
	pending   bool
}

func newImageBinding(path string, value any) *ImageBinding {
	ref, _ := value.(string)
	return &ImageBinding{path: path, committed: ref, preview: ref}
}

// Path returns the control path the binding belongs to.
func (b *ImageBinding) Path() string { return b.path }

// Preview returns the reference currently shown for the control.
func (b *ImageBinding) Preview() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.preview
}

// Pending reports whether the preview holds a pick that is not committed.
func (b *ImageBinding) Pending() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pending
}

// Sync records the committed value. When it differs from the last committed
// value the preview follows it and any pending pick is discarded.
func (b *ImageBinding) Sync(value any) {
	ref, _ := value.(string)
	b.mu.Lock()
	defer b.mu.Unlock()
	if ref == b.committed {
		return
	}
	b.committed = ref
	b.preview = ref
	b.pending = false
}

// Resolve runs the resolver and stores the result as the preview. It is safe
// to call from a goroutine other than the one rendering the form.
func (b *ImageBinding) Resolve(ctx context.Context, resolver Resolver, source string) (string, error) {
	if resolver == nil {
		resolver = URLResolver{}
	}
	ref, err := resolver.Resolve(ctx, source)
	if err != nil {
		return "", err
	}
	b.mu.Lock()
	b.preview = ref
	b.pending = true
	b.mu.Unlock()
	return ref, nil
}

func (b *ImageBinding) committedAs(ref string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.committed = ref
	b.preview = ref
	b.pending = false
}
