package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/goliatone/go-promptkit/internal/config"
	"github.com/goliatone/go-promptkit/pkg/interactive"
	"github.com/goliatone/go-promptkit/pkg/render"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeWith(t, nil, args...)
}

func executeWith(t *testing.T, options []rootOption, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.EnvFile, "")

	cmd := newRootCmd(append([]rootOption{withLogger(zap.NewNop())}, options...)...)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRenderFileWithVarsAndSet(t *testing.T) {
	out, err := execute(t, "render", "testdata/greeting.txt",
		"--vars", "testdata/profile.yaml",
		"--set", "company=the Difference Engine")
	require.NoError(t, err)
	assert.Equal(t, "Hello Ada, welcome to the Difference Engine.\n", out)
}

func TestRenderMissingValueFails(t *testing.T) {
	out, err := execute(t, "render", "testdata/greeting.txt", "--set", "user.name=Ada")
	require.Error(t, err)
	assert.ErrorIs(t, err, render.ErrResolution)
	assert.Empty(t, out)
}

func TestRenderMissingTemplateFails(t *testing.T) {
	_, err := execute(t, "render", "testdata/absent.txt")
	require.Error(t, err)
	assert.ErrorIs(t, err, render.ErrResource)
}

func TestRenderBuiltin(t *testing.T) {
	out, err := execute(t, "render", "builtin:career/job_match.txt",
		"--set", "config.name=Ada",
		"--set", "config.job_match_threshold=Good",
		"--set", "job.title=Compiler Engineer",
		"--set", "job.description=Build code generators.",
		"--set", "context.resume=Wrote the first algorithm.")
	require.NoError(t, err)
	assert.Contains(t, out, "Assess how well Ada fits the following role.")
	assert.Contains(t, out, "at or above Good.")
}

func TestRenderBuiltinFlag(t *testing.T) {
	_, err := execute(t, "render", "career/rejection.txt", "--builtin")
	require.Error(t, err)
	assert.ErrorIs(t, err, render.ErrResolution)
}

func TestRenderSlots(t *testing.T) {
	out, err := execute(t, "render", "testdata/wrapper.txt",
		"--vars", "testdata/profile.yaml",
		"--slot", "greeting=testdata/greeting.txt")
	require.NoError(t, err)
	assert.Equal(t, "[Hello Ada, welcome to Analytical Engines.\n]\n", out)

	_, err = execute(t, "render", "testdata/wrapper.txt", "--slot", "broken")
	require.Error(t, err)
}

func TestRenderPongoEngine(t *testing.T) {
	out, err := execute(t, "render", "testdata/pongo.txt", "--engine", "pongo2", "--vars", "testdata/profile.yaml")
	require.NoError(t, err)
	assert.Equal(t, "ada (@ada)\n", out)

	_, err = execute(t, "render", "testdata/pongo.txt", "--engine", "mustache")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown engine")
}

func TestRenderSanitize(t *testing.T) {
	out, err := execute(t, "render", "testdata/greeting.txt",
		"--vars", "testdata/profile.yaml",
		"--set", "user.name=<script>alert(1)</script>Ada",
		"--sanitize")
	require.NoError(t, err)
	assert.Equal(t, "Hello Ada, welcome to Analytical Engines.\n", out)
}

func TestRenderOutputFile(t *testing.T) {
	target := filepath.Join(t.TempDir(), "prompt.txt")
	out, err := execute(t, "render", "testdata/greeting.txt", "--vars", "testdata/profile.yaml", "-o", target)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "Hello Ada, welcome to Analytical Engines.\n", string(data))
}

func TestRenderWithConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "greeting.txt"), []byte("{user.name} @ {company}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vars.json"), []byte(`{"user":{"name":"Grace"}}`), 0o644))
	cfgPath := filepath.Join(dir, "promptkit.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("template_dir: .\nvars: [vars.json]\nset:\n  company: Navy\n"), 0o644))

	out, err := execute(t, "--config", cfgPath, "render", "greeting.txt")
	require.NoError(t, err)
	assert.Equal(t, "Grace @ Navy", out)

	out, err = execute(t, "--config", cfgPath, "render", "greeting.txt", "--set", "company=Harvard")
	require.NoError(t, err)
	assert.Equal(t, "Grace @ Harvard", out)
}

func TestInspect(t *testing.T) {
	out, err := execute(t, "inspect", "testdata/greeting.txt")
	require.NoError(t, err)
	assert.Equal(t, "user.name\ncompany\n", out)

	out, err = execute(t, "inspect", "testdata/greeting.txt", "--set", "user.name=Ada")
	require.Error(t, err)
	assert.Equal(t, "user.name\ncompany\nmissing: company\n", out)

	_, err = execute(t, "inspect", "testdata/greeting.txt", "--vars", "testdata/profile.yaml")
	require.NoError(t, err)
}

func TestStorePutThenRender(t *testing.T) {
	db := filepath.Join(t.TempDir(), "templates.db")

	out, err := execute(t, "store", "put", "greeting", "testdata/greeting.txt", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "stored greeting\n", out)

	out, err = execute(t, "render", "db:greeting", "--db", db, "--vars", "testdata/profile.yaml")
	require.NoError(t, err)
	assert.Equal(t, "Hello Ada, welcome to Analytical Engines.\n", out)

	out, err = execute(t, "render", "greeting", "--db", db, "--vars", "testdata/profile.yaml")
	require.NoError(t, err)
	assert.Equal(t, "Hello Ada, welcome to Analytical Engines.\n", out)

	_, err = execute(t, "render", "db:greeting")
	require.Error(t, err)

	_, err = execute(t, "store", "put", "greeting", "testdata/greeting.txt")
	require.Error(t, err)
}

func TestWatchDirs(t *testing.T) {
	e := &env{}
	mainSrc, err := e.source("testdata/wrapper.txt")
	require.NoError(t, err)
	builtin, err := e.source("builtin:career/system.txt")
	require.NoError(t, err)

	req, err := (&app{logger: zap.NewNop()}).buildRequest(e, "testdata/wrapper.txt", []string{"greeting=testdata/greeting.txt", "sys=builtin:career/system.txt"}, render.EngineName, nil)
	require.NoError(t, err)
	assert.Equal(t, mainSrc, req.Source)
	assert.Equal(t, builtin, req.Slots["sys"].Source)

	abs, err := filepath.Abs("testdata")
	require.NoError(t, err)
	assert.Equal(t, []string{abs}, watchDirs(req))
}

type answeringDriver struct {
	answers map[string]string
	asked   []string
}

func (d *answeringDriver) Input(_ context.Context, cfg interactive.InputConfig) (string, error) {
	d.asked = append(d.asked, cfg.Message)
	return d.answers[cfg.Message], nil
}

func (d *answeringDriver) TextArea(_ context.Context, cfg interactive.TextAreaConfig) (string, error) {
	d.asked = append(d.asked, cfg.Message)
	return d.answers[cfg.Message], nil
}

func TestRenderInteractiveFillsSlotsAndMain(t *testing.T) {
	driver := &answeringDriver{answers: map[string]string{
		"Value for {company}:":   "Navy",
		"Value for {recipient}:": "Grace",
	}}

	out, err := executeWith(t, []rootOption{withPromptDriver(driver)},
		"render", "testdata/letter.txt",
		"--slot", "body=testdata/greeting.txt",
		"--set", "user.name=Ada",
		"--interactive")
	require.NoError(t, err)
	assert.Equal(t, "Dear Grace,\nHello Ada, welcome to Navy.\n\n", out)
	assert.Equal(t, []string{"Value for {company}:", "Value for {recipient}:"}, driver.asked)
}

func TestRenderInteractiveNothingMissing(t *testing.T) {
	driver := &answeringDriver{}
	out, err := executeWith(t, []rootOption{withPromptDriver(driver)},
		"render", "testdata/greeting.txt", "--vars", "testdata/profile.yaml", "-i")
	require.NoError(t, err)
	assert.Equal(t, "Hello Ada, welcome to Analytical Engines.\n", out)
	assert.Empty(t, driver.asked)

	_, err = executeWith(t, []rootOption{withPromptDriver(driver)},
		"render", "testdata/pongo.txt", "--engine", "pongo2", "-i")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--interactive requires")
}

func TestRenderMalformedURLFails(t *testing.T) {
	out, err := execute(t, "render", "http://%zz/x.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid URL")
	assert.Empty(t, out)
}
