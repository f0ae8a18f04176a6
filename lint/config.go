package lint

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/gnolang/plint/internal/lints"
	"github.com/gnolang/plint/internal/nolint"
	tt "github.com/gnolang/plint/internal/types"
)

const (
	// DefaultConfigPath is where the configuration is looked up and where
	// `plint init` writes it.
	DefaultConfigPath = ".plint.yaml"

	envPrefix = "PLINT"
)

// Config is the content of a .plint.yaml file.
type Config struct {
	Name    string                   `yaml:"name"`
	Plugins []string                 `yaml:"plugins"`
	Rules   map[string]tt.ConfigRule `yaml:"rules,omitempty"`

	FailFast               bool   `yaml:"fail-fast"`
	ReportUnusedDirectives bool   `yaml:"report-unused-directives"`
	IgnoreFileDirective    string `yaml:"ignore-file-directive"`
	IgnoreDirective        string `yaml:"ignore-directive"`
	Workers                int    `yaml:"workers"`

	// Settings seed the plugins' shared blackboard. Nested maps are flattened
	// into dotted keys, so `ban-calls: {names: [...]}` becomes
	// "ban-calls.names".
	Settings map[string]any `yaml:"settings,omitempty"`
}

// rawConfig is what viper decodes into. Severities stay strings until
// validated by tt.ParseSeverity.
type rawConfig struct {
	Name                   string             `mapstructure:"name"`
	Plugins                []string           `mapstructure:"plugins"`
	Rules                  map[string]rawRule `mapstructure:"rules"`
	FailFast               bool               `mapstructure:"fail-fast"`
	ReportUnusedDirectives bool               `mapstructure:"report-unused-directives"`
	IgnoreFileDirective    string             `mapstructure:"ignore-file-directive"`
	IgnoreDirective        string             `mapstructure:"ignore-directive"`
	Workers                int                `mapstructure:"workers"`
	Settings               map[string]any     `mapstructure:"settings"`
}

type rawRule struct {
	Severity string `mapstructure:"severity"`
}

// DefaultConfig returns the configuration used when no file is found.
func DefaultConfig() Config {
	return Config{
		Name:                "plint",
		Plugins:             lints.DefaultNames(),
		Rules:               map[string]tt.ConfigRule{},
		IgnoreFileDirective: nolint.DefaultFileDirective,
		IgnoreDirective:     nolint.DefaultLineDirective,
	}
}

// LoadConfig reads the configuration at path, or DefaultConfigPath in the
// working directory when path is empty. A missing default file is not an
// error; a missing explicit one is. Every key can be overridden from the
// environment with the PLINT_ prefix, e.g. PLINT_FAIL_FAST=true.
func LoadConfig(path string) (Config, error) {
	def := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault("name", def.Name)
	v.SetDefault("plugins", def.Plugins)
	v.SetDefault("fail-fast", def.FailFast)
	v.SetDefault("report-unused-directives", def.ReportUnusedDirectives)
	v.SetDefault("ignore-file-directive", def.IgnoreFileDirective)
	v.SetDefault("ignore-directive", def.IgnoreDirective)
	v.SetDefault("workers", def.Workers)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("error reading config %s: %w", path, err)
		}
	} else {
		v.SetConfigFile(DefaultConfigPath)
		if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
			return Config{}, fmt.Errorf("error reading config %s: %w", DefaultConfigPath, err)
		}
	}

	var raw rawConfig
	if err := v.Unmarshal(&raw); err != nil {
		return Config{}, fmt.Errorf("error decoding config: %w", err)
	}
	return raw.toConfig()
}

func isNotFound(err error) bool {
	var nf viper.ConfigFileNotFoundError
	return errors.As(err, &nf) || errors.Is(err, os.ErrNotExist)
}

func (raw rawConfig) toConfig() (Config, error) {
	cfg := Config{
		Name:                   raw.Name,
		Plugins:                raw.Plugins,
		Rules:                  make(map[string]tt.ConfigRule, len(raw.Rules)),
		FailFast:               raw.FailFast,
		ReportUnusedDirectives: raw.ReportUnusedDirectives,
		IgnoreFileDirective:    raw.IgnoreFileDirective,
		IgnoreDirective:        raw.IgnoreDirective,
		Workers:                raw.Workers,
		Settings:               raw.Settings,
	}
	for name, rule := range raw.Rules {
		sev, err := tt.ParseSeverity(rule.Severity)
		if err != nil {
			return Config{}, fmt.Errorf("rule %s: %w", name, err)
		}
		cfg.Rules[name] = tt.ConfigRule{Severity: sev}
	}
	return cfg, nil
}

// WriteConfig writes cfg as YAML to path, replacing any existing file.
func WriteConfig(path string, cfg Config) error {
	d, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(d)
	return err
}

// settingValues flattens nested settings into dotted blackboard keys.
// Keys are returned sorted.
func settingValues(settings map[string]any) ([]string, map[string]any) {
	out := make(map[string]any)
	var walk func(prefix string, m map[string]any)
	walk = func(prefix string, m map[string]any) {
		for k, v := range m {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			if nested, ok := v.(map[string]any); ok {
				walk(key, nested)
				continue
			}
			out[key] = v
		}
	}
	walk("", settings)

	keys := make([]string, 0, len(out))
	for k := range out {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, out
}
