package html

// ChromeClass is a typed identifier for the CSS classes the renderer emits
// outside of section templates.
type ChromeClass string

const (
	ClassEditor      ChromeClass = "pb-editor"
	ClassPage        ChromeClass = "pb-page"
	ClassSection     ChromeClass = "pb-section"
	ClassUnknown     ChromeClass = "pb-section--unknown"
	ClassSidebar     ChromeClass = "pb-sidebar"
	ClassHidden      ChromeClass = "pb-item--hidden"
	ClassDragging    ChromeClass = "pb-item--dragging"
	ClassDropTarget  ChromeClass = "pb-item--drop-target"
	ClassDevicePrefix ChromeClass = "pb-device-"
)

func deviceClass(device string) string {
	if device == "" {
		device = "desktop"
	}
	return string(ClassDevicePrefix) + device
}

func itemClasses(hidden, dragging, target bool) string {
	classes := "pb-item"
	if hidden {
		classes += " " + string(ClassHidden)
	}
	if dragging {
		classes += " " + string(ClassDragging)
	}
	if target {
		classes += " " + string(ClassDropTarget)
	}
	return classes
}
