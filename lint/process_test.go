package lint

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/gnolang/plint/internal/lints"
	"github.com/gnolang/plint/internal/plugin"
	tt "github.com/gnolang/plint/internal/types"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// TestProcessPathContextCancellation tests that a cancelled context stops processing
func TestProcessPathContextCancellation(t *testing.T) {
	t.Parallel()
	tempDir := t.TempDir()
	for i := 0; i < 10; i++ {
		writeFile(t, tempDir, fmt.Sprintf("test%d.go", i), fmt.Sprintf("package main\n\nfunc test%d() {}\n", i))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	diags, err := ProcessPath(ctx, nil, Factory(nil, DefaultConfig()), tempDir, ProcessFile, ProcessOptions{})

	assert.ErrorIs(t, err, context.Canceled)
	assert.NotNil(t, diags)
}

// TestProcessPathWorkersOwnEngines lints many files with real engines and
// checks that every file gets its own results.
func TestProcessPathWorkersOwnEngines(t *testing.T) {
	t.Parallel()
	tempDir := t.TempDir()

	// file i holds i+1 empty if statements
	for i := 0; i < 8; i++ {
		content := "package main\n\nfunc f(x int) {\n"
		for j := 0; j <= i; j++ {
			content += "\tif x > 0 {\n\t}\n"
		}
		content += "}\n"
		writeFile(t, tempDir, fmt.Sprintf("test%d.go", i), content)
	}

	cfg := DefaultConfig()
	cfg.Plugins = []string{lints.EmptyIfName}
	var progress bytes.Buffer
	diags, err := ProcessPath(context.Background(), nil, Factory(nil, cfg), tempDir, ProcessFile,
		ProcessOptions{Workers: 3, Progress: &progress})
	require.NoError(t, err)

	perFile := make(map[string]int)
	for _, d := range diags {
		perFile[filepath.Base(d.Filename)]++
		assert.Equal(t, lints.EmptyIfName, d.Code)
	}
	for i := 0; i < 8; i++ {
		assert.Equal(t, i+1, perFile[fmt.Sprintf("test%d.go", i)])
	}
	assert.NotEmpty(t, progress.String())
}

// TestConcurrentProcessingWithErrors tests error handling in concurrent processing
func TestConcurrentProcessingWithErrors(t *testing.T) {
	t.Parallel()
	tempDir := t.TempDir()
	for i := 0; i < 3; i++ {
		writeFile(t, tempDir, fmt.Sprintf("valid%d.go", i), "package main\nfunc main() { panic(0) }\n")
	}
	invalidFile := writeFile(t, tempDir, "invalid.go", "this is not valid go code")

	diags, err := ProcessPath(context.Background(), nil, Factory(nil, DefaultConfig()), tempDir, ProcessFile, ProcessOptions{})

	// the broken file is reported, the others are still linted
	require.Error(t, err)
	assert.Contains(t, err.Error(), invalidFile)
	assert.Len(t, diags, 3)
	for _, d := range diags {
		assert.Equal(t, lints.BanCallsName, d.Code)
	}
}

// TestErrorPropagationSingleFile tests that errors are properly propagated for single files
func TestErrorPropagationSingleFile(t *testing.T) {
	t.Parallel()
	invalidFile := writeFile(t, t.TempDir(), "invalid.go", "this is not valid go code")

	diags, err := ProcessPath(context.Background(), nil, Factory(nil, DefaultConfig()), invalidFile, ProcessFile, ProcessOptions{})

	assert.Error(t, err, "Should return parsing error")
	assert.Equal(t, []tt.Diagnostic{}, diags)
}

func TestProcessFilesFactoryError(t *testing.T) {
	t.Parallel()
	file := writeFile(t, t.TempDir(), "ok.go", "package main\n")

	cfg := DefaultConfig()
	cfg.Plugins = []string{"no-such-plugin"}
	cfg.FailFast = true

	_, err := ProcessFiles(context.Background(), nil, Factory(nil, cfg), []string{file}, ProcessFile, ProcessOptions{})
	require.ErrorIs(t, err, lints.ErrUnknownPlugin)
}

func TestNewAppliesConfig(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.Plugins = []string{lints.BanCallsName, lints.EmptyIfName}
	cfg.Rules = map[string]tt.ConfigRule{lints.EmptyIfName: {Severity: tt.SeverityOff}}
	cfg.ReportUnusedDirectives = true
	cfg.Settings = map[string]any{
		"ban-calls": map[string]any{"names": []any{"os.Exit"}},
	}

	engine, err := New(nil, cfg)
	require.NoError(t, err)
	assert.Equal(t, []tt.PluginRef{{Name: lints.BanCallsName, ID: 0}}, engine.Plugins())

	diags, err := engine.RunSource("main.go", `package main

import "os"

func main() {
	// plint-ignore: empty-if
	if true {
	}
	panic("kept")
	os.Exit(1)
}
`)
	require.NoError(t, err)
	require.Len(t, diags, 2)
	assert.Equal(t, "call to os.Exit is not allowed", diags[0].Message)
	assert.Equal(t, "unused-ignore-directive", diags[1].Code)
}

func TestFactoryLogsStartupErrorsOnce(t *testing.T) {
	t.Parallel()
	core, logs := observer.New(zapcore.WarnLevel)
	cfg := DefaultConfig()
	cfg.Plugins = []string{"no-such-plugin", lints.EmptyIfName}

	newEngine := Factory(zap.New(core), cfg)
	for i := 0; i < 3; i++ {
		_, err := newEngine()
		require.NoError(t, err)
	}
	assert.Equal(t, 1, logs.FilterMessage("plugin rejected").Len())
}

func TestSessionFactory(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.Plugins = []string{lints.EmptyIfName, "no-such-plugin"}

	session, err := NewSession(nil, cfg)
	require.NoError(t, err)
	require.Len(t, session.StartupErrors(), 1)
	assert.ErrorIs(t, session.StartupErrors()[0], plugin.ErrInvalidPlugin)

	newEngine := session.Factory()
	first, err := newEngine()
	require.NoError(t, err)
	second, err := newEngine()
	require.NoError(t, err)
	assert.NotSame(t, first, second)

	for _, engine := range []LintEngine{first, second} {
		diags, err := ProcessSource(engine, "s.go", []byte("package p\nfunc f(x int) {\n\tif x > 0 {\n\t}\n}\n"))
		require.NoError(t, err)
		require.Len(t, diags, 1)
		assert.Equal(t, lints.EmptyIfName, diags[0].Code)
	}
}

func TestNewSessionFailFast(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.Plugins = []string{"no-such-plugin"}
	cfg.FailFast = true

	_, err := NewSession(nil, cfg)
	require.ErrorIs(t, err, lints.ErrUnknownPlugin)
}

func TestStartupDiagnostics(t *testing.T) {
	t.Parallel()
	errs := []error{
		&plugin.Error{Kind: plugin.InvalidPlugin, Plugin: "typo", Index: 0, Err: fmt.Errorf("%w: %q", lints.ErrUnknownPlugin, "typo")},
		&plugin.Error{Kind: plugin.PluginInitFailed, Plugin: "broken", Index: 1, Err: fmt.Errorf("boom")},
	}
	diags := StartupDiagnostics(".plint.yaml", errs)
	require.Len(t, diags, 2)

	assert.Equal(t, `plugin "typo" was not loaded: unknown plugin: "typo"`, diags[0].Message)
	assert.NotEmpty(t, diags[0].Hint)
	assert.Equal(t, `plugin "broken" was not loaded: boom`, diags[1].Message)
	assert.Empty(t, diags[1].Hint)
	for _, d := range diags {
		assert.Equal(t, StartupCode, d.Code)
		assert.Equal(t, ".plint.yaml", d.Filename)
		assert.Equal(t, tt.CoreRef, d.Plugin)
		assert.Equal(t, tt.SeverityError, d.Severity)
	}
	assert.Empty(t, StartupDiagnostics(".plint.yaml", nil))
}
