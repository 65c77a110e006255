package tui

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goliatone/go-pagebuilder/pkg/render"
)

// OutlineRenderer prints the view as a plain-text outline. The shell shows
// it on request and the render command uses it for terminals.
type OutlineRenderer struct{}

var _ render.Renderer = OutlineRenderer{}

// Name implements render.Renderer.
func (OutlineRenderer) Name() string { return "text" }

// ContentType implements render.Renderer.
func (OutlineRenderer) ContentType() string { return "text/plain; charset=utf-8" }

// Render implements render.Renderer.
func (OutlineRenderer) Render(_ context.Context, view render.View, options render.RenderOptions) ([]byte, error) {
	var buf bytes.Buffer
	switch options.TargetOrDefault() {
	case render.TargetPage:
		writePage(&buf, view.PageID, view.Page)
	case render.TargetSidebar:
		writeSidebar(&buf, view.Sidebar)
	default:
		writePage(&buf, view.PageID, view.Page)
		buf.WriteByte('\n')
		writeSidebar(&buf, view.Sidebar)
	}
	return buf.Bytes(), nil
}

func writePage(buf *bytes.Buffer, pageID string, page render.Page) {
	fmt.Fprintf(buf, "Page %s (%s)\n", pageID, page.Device)
	if len(page.Sections) == 0 {
		buf.WriteString("  (no visible sections)\n")
		return
	}
	for idx, section := range page.Sections {
		fmt.Fprintf(buf, "  %d. %s [%s]", idx+1, section.Label, section.Type)
		if !section.Known {
			buf.WriteString(" (no preview)")
		}
		buf.WriteByte('\n')
	}
}

func writeSidebar(buf *bytes.Buffer, sidebar render.Sidebar) {
	fmt.Fprintf(buf, "Mode: %s · tab %s · undo %d · redo %d", sidebar.Mode, sidebar.Tab, sidebar.UndoDepth, sidebar.RedoDepth)
	if sidebar.CanSave {
		buf.WriteString(" · unsaved changes")
	}
	buf.WriteByte('\n')
	for _, item := range sidebar.Items {
		fmt.Fprintf(buf, "  #%d %s", item.ID, item.Label)
		if item.Hidden {
			buf.WriteString(" (hidden)")
		}
		if sidebar.Editing != nil && sidebar.Editing.ID == item.ID {
			buf.WriteString(" (editing)")
		}
		buf.WriteByte('\n')
	}
	if sidebar.Editing != nil {
		for _, field := range sidebar.Editing.Fields {
			fmt.Fprintf(buf, "    %s\n", summary(field))
		}
	}
	if sidebar.Picker.Open {
		fmt.Fprintf(buf, "  Picker (%d sections)", len(sidebar.Picker.Entries))
		if sidebar.Picker.Query != "" {
			fmt.Fprintf(buf, " matching %q", sidebar.Picker.Query)
		}
		buf.WriteByte('\n')
	}
}
