package interactive

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-promptkit/pkg/render"
	"github.com/goliatone/go-promptkit/pkg/vars"
)

// Option customises a Filler.
type Option func(*Filler)

// WithMultiline asks for the listed paths with a multi-line editor instead of
// a single-line input.
func WithMultiline(paths ...string) Option {
	return func(f *Filler) {
		for _, p := range paths {
			f.multiline[strings.TrimSpace(p)] = struct{}{}
		}
	}
}

// WithRequired rejects empty answers for single-line prompts.
func WithRequired() Option {
	return func(f *Filler) {
		f.required = true
	}
}

// Filler asks the user for every placeholder a template references but the
// context does not provide.
type Filler struct {
	driver    PromptDriver
	multiline map[string]struct{}
	required  bool
}

// NewFiller constructs a Filler around driver.
func NewFiller(driver PromptDriver, options ...Option) (*Filler, error) {
	if driver == nil {
		return nil, errors.New("interactive: prompt driver is required")
	}
	f := &Filler{
		driver:    driver,
		multiline: make(map[string]struct{}),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(f)
	}
	return f, nil
}

// Fill returns a copy of data extended with answers for every path in text
// that data cannot resolve. data itself is left untouched.
func (f *Filler) Fill(ctx context.Context, text string, data map[string]any) (map[string]any, error) {
	return f.FillExcept(ctx, text, data, nil)
}

// FillExcept is Fill for a template whose context will later gain the
// defined paths from elsewhere, such as rendered slots. Paths equal to,
// under, or above a defined path are not asked for.
func (f *Filler) FillExcept(ctx context.Context, text string, data map[string]any, defined []string) (map[string]any, error) {
	out := vars.Clone(data)
	if out == nil {
		out = map[string]any{}
	}

	for _, path := range render.Missing(text, out) {
		if covered(path, defined) {
			continue
		}
		answer, err := f.ask(ctx, path)
		if err != nil {
			return nil, err
		}
		if err := vars.Set(out, path, answer); err != nil {
			return nil, fmt.Errorf("interactive: %w", err)
		}
	}
	return out, nil
}

func covered(path string, defined []string) bool {
	for _, d := range defined {
		if path == d || strings.HasPrefix(path, d+".") || strings.HasPrefix(d, path+".") {
			return true
		}
	}
	return false
}

func (f *Filler) ask(ctx context.Context, path string) (string, error) {
	message := fmt.Sprintf("Value for {%s}:", path)
	help := "The template references " + path + " but the context does not define it."

	if _, ok := f.multiline[path]; ok {
		return f.driver.TextArea(ctx, TextAreaConfig{Message: message, Help: help})
	}

	cfg := InputConfig{Message: message, Help: help}
	if f.required {
		cfg.Validator = func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("%s is required", path)
			}
			return nil
		}
	}
	return f.driver.Input(ctx, cfg)
}
