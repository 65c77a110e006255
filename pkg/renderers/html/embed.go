package html

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.html templates/sections/*.html templates/partials/*.html
var embeddedTemplates embed.FS

//go:embed assets/*
var embeddedAssets embed.FS

const (
	StylesheetName    = "pagebuilder.css"
	RuntimeScriptName = "pagebuilder.js"

	themeAssetStylesheet = "pagebuilder.stylesheet"
	themeAssetScript     = "pagebuilder.script"
)

// TemplatesFS exposes the embedded template bundle. Names are relative to
// its root ("document.html", "sections/gallery.html"), the same layout a
// WithTemplatesDir directory uses.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return embeddedTemplates
	}
	return sub
}

// AssetsFS exposes the embedded stylesheet and gesture script so the server
// can mount them under the asset prefix.
func AssetsFS() fs.FS {
	sub, err := fs.Sub(embeddedAssets, "assets")
	if err != nil {
		return embeddedAssets
	}
	return sub
}
