package editor

import (
	"context"
	"log"
	"time"

	"github.com/goliatone/go-pagebuilder/pkg/schema"
)

// Logger is the minimal logging surface the editor reports through.
type Logger interface {
	Printf(format string, args ...any)
}

// CatalogFeed supplies the section type ids offered by the picker.
type CatalogFeed interface {
	Sections(ctx context.Context) ([]string, error)
}

// CatalogFunc adapts a function to CatalogFeed.
type CatalogFunc func(ctx context.Context) ([]string, error)

// Sections implements CatalogFeed.
func (f CatalogFunc) Sections(ctx context.Context) ([]string, error) { return f(ctx) }

// Saver persists a page payload.
type Saver interface {
	Save(ctx context.Context, payload Payload) error
}

// SaverFunc adapts a function to Saver.
type SaverFunc func(ctx context.Context, payload Payload) error

// Save implements Saver.
func (f SaverFunc) Save(ctx context.Context, payload Payload) error { return f(ctx, payload) }

// Payload is what a save hands to the Saver and what Load accepts back.
type Payload struct {
	PageID   string                        `json:"pageId"`
	Revision string                        `json:"revision,omitempty"`
	Order    []Instance                    `json:"order"`
	Hidden   []InstanceID                  `json:"hidden"`
	Content  map[InstanceID]schema.Content `json:"content"`
	SavedAt  time.Time                     `json:"savedAt"`
}

// InvariantMode selects how stale instance references are handled.
type InvariantMode int

const (
	// InvariantLog logs the violation and treats the id as absent.
	InvariantLog InvariantMode = iota
	// InvariantPanic panics; meant for tests and debug builds.
	InvariantPanic
)

func defaultLogger() Logger { return log.Default() }
