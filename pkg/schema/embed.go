package schema

import (
	"embed"
	"io/fs"
	"sync"
)

//go:embed sections/*.yaml
var embeddedSections embed.FS

// EmbeddedFS returns the bundled section definitions.
func EmbeddedFS() fs.FS {
	sub, err := fs.Sub(embeddedSections, "sections")
	if err != nil {
		// The embed directive guarantees the subpath exists.
		panic(err)
	}
	return sub
}

var builtin = sync.OnceValues(func() (*Registry, error) {
	return LoadFS(EmbeddedFS())
})

// Builtin returns the registry holding the bundled section types. It is built
// once per process and shared; the registry is read-only so sharing is safe.
func Builtin() *Registry {
	reg, err := builtin()
	if err != nil {
		panic(err)
	}
	return reg
}

// BuiltinSections returns copies of the bundled schemas, for callers that
// want to extend the built-in set before building their own registry.
func BuiltinSections() []SectionSchema {
	reg := Builtin()
	out := make([]SectionSchema, 0, reg.Len())
	for _, name := range reg.Names() {
		section, _ := reg.Lookup(name)
		out = append(out, section)
	}
	return out
}
