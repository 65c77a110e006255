package render

// Target selects which part of the view a renderer emits.
type Target string

const (
	// TargetDocument is the full editor: sidebar plus page preview.
	TargetDocument Target = "document"
	// TargetPage is the page preview only (visible sections).
	TargetPage Target = "page"
	// TargetSidebar is the authoring sidebar only.
	TargetSidebar Target = "sidebar"
)

// RenderOptions carry per-request settings that do not belong in the view.
type RenderOptions struct {
	// Target defaults to TargetDocument.
	Target Target
	// Theme and Variant select a preview theme; empty uses the renderer's
	// default.
	Theme   string
	Variant string
	// Locale is passed to the Translator when building labels.
	Locale string
}

// TargetOrDefault returns the target, falling back to TargetDocument.
func (o RenderOptions) TargetOrDefault() Target {
	if o.Target == "" {
		return TargetDocument
	}
	return o.Target
}
