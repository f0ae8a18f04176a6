package types

import (
	"fmt"
	"strings"

	"github.com/gnolang/plint/internal/source"
)

// PluginRef identifies the plugin that produced a diagnostic. ID is the
// plugin's registration index within a session, so two plugins that share
// a Name remain distinguishable.
type PluginRef struct {
	Name string
	ID   int
}

// CoreRef attributes diagnostics emitted by the engine itself.
var CoreRef = PluginRef{Name: "plint", ID: -1}

func (r PluginRef) String() string {
	return fmt.Sprintf("%s#%d", r.Name, r.ID)
}

// Diagnostic represents a finding reported by a plugin.
type Diagnostic struct {
	Plugin   PluginRef   `json:"plugin" msgpack:"plugin"`
	Filename string      `json:"filename" msgpack:"filename"`
	Code     string      `json:"code,omitempty" msgpack:"code,omitempty"`
	Message  string      `json:"message" msgpack:"message"`
	Hint     string      `json:"hint,omitempty" msgpack:"hint,omitempty"`
	Severity Severity    `json:"severity" msgpack:"severity"`
	Span     source.Span `json:"span" msgpack:"span"`
}

// PluginName returns the name of the emitting plugin.
func (d Diagnostic) PluginName() string {
	return d.Plugin.Name
}

// Rule returns the code of the diagnostic, or the plugin name when the
// plugin did not set one.
func (d Diagnostic) Rule() string {
	if d.Code != "" {
		return d.Code
	}
	return d.Plugin.Name
}

// Severity represents how serious a diagnostic is.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
	SeverityOff
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "ERROR"
	case SeverityWarning:
		return "WARNING"
	case SeverityInfo:
		return "INFO"
	case SeverityOff:
		return "OFF"
	}
	return "UNKNOWN"
}

// ParseSeverity converts a configuration value into a Severity.
// The empty string maps to SeverityError.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "error":
		return SeverityError, nil
	case "warning", "warn":
		return SeverityWarning, nil
	case "info":
		return SeverityInfo, nil
	case "off":
		return SeverityOff, nil
	}
	return SeverityError, fmt.Errorf("invalid severity %q", s)
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(s.String())), nil
}

func (s *Severity) UnmarshalText(text []byte) error {
	v, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ConfigRule represents a rule configuration.
type ConfigRule struct {
	Severity Severity `yaml:"severity"`
}
