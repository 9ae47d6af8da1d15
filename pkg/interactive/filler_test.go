package interactive_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-promptkit/pkg/interactive"
)

type scriptedDriver struct {
	answers map[string]string
	asked   []string
	kinds   []string
	err     error
}

func (d *scriptedDriver) Input(_ context.Context, cfg interactive.InputConfig) (string, error) {
	d.asked = append(d.asked, cfg.Message)
	d.kinds = append(d.kinds, "input")
	if d.err != nil {
		return "", d.err
	}
	answer := d.answers[cfg.Message]
	if cfg.Validator != nil {
		if err := cfg.Validator(answer); err != nil {
			return "", err
		}
	}
	return answer, nil
}

func (d *scriptedDriver) TextArea(_ context.Context, cfg interactive.TextAreaConfig) (string, error) {
	d.asked = append(d.asked, cfg.Message)
	d.kinds = append(d.kinds, "textarea")
	return d.answers[cfg.Message], d.err
}

func TestFiller_FillsOnlyMissingPaths(t *testing.T) {
	driver := &scriptedDriver{answers: map[string]string{
		"Value for {meta.date}:":       "2024-01-01",
		"Value for {context.summary}:": "Line one\nLine two",
	}}
	filler, err := interactive.NewFiller(driver, interactive.WithMultiline("context.summary"))
	if err != nil {
		t.Fatalf("new filler: %v", err)
	}

	data := map[string]any{"user": map[string]any{"name": "Ada"}}
	got, err := filler.Fill(context.Background(), "{user.name} {meta.date} {context.summary} {meta.date}", data)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}

	want := map[string]any{
		"user":    map[string]any{"name": "Ada"},
		"meta":    map[string]any{"date": "2024-01-01"},
		"context": map[string]any{"summary": "Line one\nLine two"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("filled context mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"input", "textarea"}, driver.kinds); diff != "" {
		t.Fatalf("prompt kinds mismatch (-want +got):\n%s", diff)
	}
	if _, ok := data["meta"]; ok {
		t.Fatal("input context must not be mutated")
	}
}

func TestFiller_FillExceptSkipsDefinedPaths(t *testing.T) {
	driver := &scriptedDriver{answers: map[string]string{"Value for {recipient}:": "Grace"}}
	filler, err := interactive.NewFiller(driver)
	if err != nil {
		t.Fatalf("new filler: %v", err)
	}

	got, err := filler.FillExcept(context.Background(), "{recipient} {body} {context.summary.text} {context}", nil, []string{"body", "context.summary"})
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"recipient": "Grace"}, got); diff != "" {
		t.Fatalf("filled context mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Value for {recipient}:"}, driver.asked); diff != "" {
		t.Fatalf("asked mismatch (-want +got):\n%s", diff)
	}
}

func TestFiller_RequiredRejectsEmpty(t *testing.T) {
	filler, err := interactive.NewFiller(&scriptedDriver{}, interactive.WithRequired())
	if err != nil {
		t.Fatalf("new filler: %v", err)
	}
	if _, err := filler.Fill(context.Background(), "{a}", nil); err == nil {
		t.Fatal("expected required error")
	}
}

func TestFiller_PropagatesAbort(t *testing.T) {
	filler, err := interactive.NewFiller(&scriptedDriver{err: interactive.ErrAborted})
	if err != nil {
		t.Fatalf("new filler: %v", err)
	}
	_, err = filler.Fill(context.Background(), "{a}", map[string]any{})
	if !errors.Is(err, interactive.ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}

func TestFiller_ConflictingShape(t *testing.T) {
	filler, err := interactive.NewFiller(&scriptedDriver{})
	if err != nil {
		t.Fatalf("new filler: %v", err)
	}
	_, err = filler.Fill(context.Background(), "{user.name}", map[string]any{"user": "flat"})
	if err == nil {
		t.Fatal("expected error when a scalar blocks the path")
	}
}

func TestNewFiller_RequiresDriver(t *testing.T) {
	if _, err := interactive.NewFiller(nil); err == nil {
		t.Fatal("expected error for nil driver")
	}
}
