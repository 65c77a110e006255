package testsupport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-pagebuilder/pkg/editor"
)

// WriteGolden writes value as indented JSON when UPDATE_GOLDENS is set.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	WriteMaybeGolden(t, path, payload)
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput runs a render function that also writes to an
// io.Writer and returns both the returned string and what was written.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}
	return out, buf.String()
}

// Logger records formatted log lines. Safe for concurrent use.
type Logger struct {
	mu    sync.Mutex
	lines []string
}

// Printf implements the Logger interfaces used across the module.
func (l *Logger) Printf(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

// Lines returns a copy of the recorded lines.
func (l *Logger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

// Contains reports whether any line contains fragment.
func (l *Logger) Contains(fragment string) bool {
	for _, line := range l.Lines() {
		if strings.Contains(line, fragment) {
			return true
		}
	}
	return false
}

// NewSession builds a session with a recording logger and invariant panics
// enabled. Extra options are applied after the defaults.
func NewSession(t *testing.T, options ...editor.Option) (*editor.Session, *Logger) {
	t.Helper()
	logger := &Logger{}
	base := []editor.Option{
		editor.WithLogger(logger),
		editor.WithInvariantMode(editor.InvariantPanic),
	}
	return editor.NewSession(Context(), append(base, options...)...), logger
}

// AddSection opens the picker and commits sectionType, failing the test when
// the add is rejected.
func AddSection(t *testing.T, session *editor.Session, sectionType string) editor.InstanceID {
	t.Helper()
	if !session.OpenPicker() {
		t.Fatalf("open picker rejected in mode %s", session.Mode())
	}
	id, ok := session.CommitAdd(sectionType)
	if !ok {
		t.Fatalf("add %q rejected", sectionType)
	}
	return id
}

// MustLoadPayload decodes a JSON payload fixture.
func MustLoadPayload(t *testing.T, path string) editor.Payload {
	t.Helper()
	var payload editor.Payload
	if err := json.Unmarshal(MustReadGolden(t, path), &payload); err != nil {
		t.Fatalf("decode payload %s: %v", path, err)
	}
	return payload
}
