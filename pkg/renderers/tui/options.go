package tui

import (
	"io"

	"github.com/goliatone/go-pagebuilder/pkg/form"
	"github.com/goliatone/go-pagebuilder/pkg/render"
)

// Theme captures optional prefixes the shell applies to messages. Keep it
// minimal to avoid coupling the shell to ANSI specifics.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
}

type config struct {
	driver   PromptDriver
	output   io.Writer
	resolver form.Resolver
	labels   render.Labeler
	theme    Theme
}

// Option configures the shell and the form editor.
type Option func(*config)

// WithPromptDriver overrides the survey driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(cfg *config) {
		if driver != nil {
			cfg.driver = driver
		}
	}
}

// WithOutput sets where the default driver prints informational lines.
func WithOutput(out io.Writer) Option {
	return func(cfg *config) {
		cfg.output = out
	}
}

// WithImageResolver resolves image sources typed at image prompts. The
// default accepts URLs and site-absolute paths.
func WithImageResolver(resolver form.Resolver) Option {
	return func(cfg *config) {
		if resolver != nil {
			cfg.resolver = resolver
		}
	}
}

// WithLabeler localises section and field labels.
func WithLabeler(labels render.Labeler) Option {
	return func(cfg *config) {
		cfg.labels = labels
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(cfg *config) {
		cfg.theme = theme
	}
}

func newConfig(options []Option) config {
	cfg := config{resolver: form.URLResolver{}}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.driver == nil {
		cfg.driver = NewSurveyDriver(cfg.output)
	}
	return cfg
}
