package lint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/plint/internal/lints"
	tt "github.com/gnolang/plint/internal/types"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "plint", cfg.Name)
	assert.Equal(t, lints.DefaultNames(), cfg.Plugins)
	assert.Equal(t, "plint-ignore-file", cfg.IgnoreFileDirective)
	assert.Equal(t, "plint-ignore", cfg.IgnoreDirective)
	assert.False(t, cfg.FailFast)
	assert.Empty(t, cfg.Rules)
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "plint.yaml")
	content := `name: project
plugins:
  - empty-if
  - ban-calls
rules:
  empty-if:
    severity: warning
  ban-calls:
    severity: off
fail-fast: true
report-unused-directives: true
ignore-directive: nolint
workers: 4
settings:
  ban-calls:
    names: [os.Exit, log.Fatal]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "project", cfg.Name)
	assert.Equal(t, []string{"empty-if", "ban-calls"}, cfg.Plugins)
	assert.Equal(t, map[string]tt.ConfigRule{
		"empty-if":  {Severity: tt.SeverityWarning},
		"ban-calls": {Severity: tt.SeverityOff},
	}, cfg.Rules)
	assert.True(t, cfg.FailFast)
	assert.True(t, cfg.ReportUnusedDirectives)
	assert.Equal(t, "plint-ignore-file", cfg.IgnoreFileDirective)
	assert.Equal(t, "nolint", cfg.IgnoreDirective)
	assert.Equal(t, 4, cfg.Workers)

	keys, values := settingValues(cfg.Settings)
	assert.Equal(t, []string{"ban-calls.names"}, keys)
	assert.Equal(t, []any{"os.Exit", "log.Fatal"}, values["ban-calls.names"])
}

func TestLoadConfigInvalidSeverity(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "plint.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules:\n  empty-if:\n    severity: fatal\n"), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty-if")
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	t.Parallel()
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

// not parallel: modifies the environment
func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("PLINT_FAIL_FAST", "true")
	t.Setenv("PLINT_WORKERS", "2")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.True(t, cfg.FailFast)
	assert.Equal(t, 2, cfg.Workers)
}

func TestWriteConfigRoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), DefaultConfigPath)
	cfg := DefaultConfig()
	cfg.Rules[lints.UselessBreakName] = tt.ConfigRule{Severity: tt.SeverityInfo}
	cfg.Workers = 3
	require.NoError(t, WriteConfig(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "severity: info")

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Plugins, loaded.Plugins)
	assert.Equal(t, cfg.Rules, loaded.Rules)
	assert.Equal(t, 3, loaded.Workers)
}

func TestSettingValuesFlattens(t *testing.T) {
	t.Parallel()
	keys, values := settingValues(map[string]any{
		"a": map[string]any{"b": 1, "c": map[string]any{"d": "x"}},
		"e": true,
	})
	assert.Equal(t, []string{"a.b", "a.c.d", "e"}, keys)
	assert.Equal(t, 1, values["a.b"])
	assert.Equal(t, "x", values["a.c.d"])
	assert.Equal(t, true, values["e"])
}
