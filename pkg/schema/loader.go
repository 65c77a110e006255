package schema

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

type documentFile struct {
	Sections []SectionSchema `json:"sections" yaml:"sections"`
}

// ParseFS walks fsys and decodes every JSON/YAML section file. Files are read
// in lexical path order so the resulting slice is deterministic.
func ParseFS(fsys fs.FS) ([]SectionSchema, error) {
	if fsys == nil {
		return nil, nil
	}

	var paths []string
	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isSchemaFile(path) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	var sections []SectionSchema
	for _, path := range paths {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("schema: read %s: %w", path, err)
		}
		doc, err := parseDocument(data, path)
		if err != nil {
			return nil, err
		}
		for idx, section := range doc.Sections {
			if strings.TrimSpace(section.Type) == "" {
				return nil, fmt.Errorf("schema: file %s section %d has an empty type", path, idx)
			}
			sections = append(sections, normaliseSection(section))
		}
	}
	return sections, nil
}

// LoadFS parses every section file in fsys and builds a registry from them.
func LoadFS(fsys fs.FS, options ...RegistryOption) (*Registry, error) {
	sections, err := ParseFS(fsys)
	if err != nil {
		return nil, err
	}
	return NewRegistry(sections, options...)
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("schema: file %s is empty", source)
	}

	if strings.EqualFold(filepath.Ext(source), ".json") {
		if err := json.Unmarshal(data, &doc); err != nil {
			return documentFile{}, fmt.Errorf("schema: parse %s: %w", source, err)
		}
		return doc, nil
	}

	if err := yaml.Unmarshal(data, &doc); err != nil {
		return documentFile{}, fmt.Errorf("schema: parse %s: %w", source, err)
	}
	return doc, nil
}

// normaliseSection trims identifiers and converts YAML-decoded defaults into
// the JSON-shaped values (map[string]any, []any, float64) the rest of the
// editor works with.
func normaliseSection(section SectionSchema) SectionSchema {
	section.Type = strings.TrimSpace(section.Type)
	section.Name = strings.TrimSpace(section.Name)
	if section.Name == "" {
		section.Name = section.Type
	}
	section.Fields = normaliseFields(section.Fields)
	return section
}

func normaliseFields(fields []FieldDefinition) []FieldDefinition {
	for idx := range fields {
		field := &fields[idx]
		field.ID = strings.TrimSpace(field.ID)
		field.Kind = FieldKind(strings.ToLower(strings.TrimSpace(string(field.Kind))))
		if field.Label == "" {
			field.Label = FormatLabel(field.ID)
		}
		field.Default = normaliseValue(field.Default)
		field.ItemFields = normaliseFields(field.ItemFields)
	}
	return fields
}

func normaliseValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[key] = normaliseValue(item)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for idx, item := range typed {
			out[idx] = normaliseValue(item)
		}
		return out
	case int:
		return float64(typed)
	case int64:
		return float64(typed)
	case uint64:
		return float64(typed)
	default:
		return value
	}
}

func isSchemaFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
