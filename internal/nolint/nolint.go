package nolint

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/gnolang/plint/internal/ast"
	"github.com/gnolang/plint/internal/source"
	tt "github.com/gnolang/plint/internal/types"
)

const (
	DefaultFileDirective = "plint-ignore-file"
	DefaultLineDirective = "plint-ignore"

	// UnusedCode is the code of diagnostics reporting directives that
	// suppressed nothing.
	UnusedCode = "unused-ignore-directive"
	// UnknownCode is the code of diagnostics reporting directive entries
	// that name no known plugin or code.
	UnknownCode = "unknown-rule-code"
)

// Manager holds the ignore directives of one file and decides which
// diagnostics they suppress.
type Manager struct {
	file  []*scope
	lines []*scope
	// file directives found after the first declaration; they suppress
	// nothing.
	misplaced []*scope
}

// scope is the region covered by one directive.
type scope struct {
	rules map[string]struct{} // empty => every rule
	text  string
	span  source.Span
	start uint32 // first line covered
	end   uint32 // last line covered
	used  bool
}

// ParseComments scans the program's comments for directives named
// fileDirective and lineDirective (without the leading slashes).
//
// A file directive covers the whole file but only counts when it comes
// before the first declaration. A line directive covers its own line and the
// next one, so it works both inline and on the line above.
func ParseComments(prog *ast.Program, fileDirective, lineDirective string) *Manager {
	m := &Manager{}
	if prog == nil {
		return m
	}
	header := headerEnd(prog)
	for _, c := range prog.Comments {
		text := strings.TrimSpace(strings.TrimPrefix(c.Text, "//"))
		if rest, ok := cutDirective(text, fileDirective); ok {
			s := &scope{rules: parseIgnoreRuleNames(rest), text: c.Text, span: c.Span}
			if c.Span.Start.Offset < header {
				m.file = append(m.file, s)
			} else {
				m.misplaced = append(m.misplaced, s)
			}
			continue
		}
		if rest, ok := cutDirective(text, lineDirective); ok {
			line := c.Span.Start.Line
			m.lines = append(m.lines, &scope{
				rules: parseIgnoreRuleNames(rest),
				text:  c.Text,
				span:  c.Span,
				start: line,
				end:   line + 1,
			})
		}
	}
	return m
}

// headerEnd returns the offset of the first declaration, or the largest
// offset when the file declares nothing.
func headerEnd(prog *ast.Program) uint32 {
	for _, decl := range prog.Body() {
		if decl != nil {
			return decl.Span().Start.Offset
		}
	}
	return math.MaxUint32
}

// cutDirective reports whether text starts with the directive name followed
// by nothing, a colon or whitespace, and returns the remainder.
func cutDirective(text, name string) (string, bool) {
	if name == "" || !strings.HasPrefix(text, name) {
		return "", false
	}
	rest := text[len(name):]
	if rest == "" {
		return "", true
	}
	switch rest[0] {
	case ':', ' ', '\t':
		return strings.TrimPrefix(strings.TrimSpace(rest), ":"), true
	}
	return "", false
}

// parseIgnoreRuleNames parses a comma or space separated rule list.
func parseIgnoreRuleNames(text string) map[string]struct{} {
	rulesMap := make(map[string]struct{})
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	for _, rule := range fields {
		rulesMap[rule] = struct{}{}
	}
	return rulesMap
}

func (s *scope) matches(d tt.Diagnostic) bool {
	if len(s.rules) == 0 {
		return true
	}
	if _, ok := s.rules[d.Plugin.Name]; ok {
		return true
	}
	if d.Code == "" {
		return false
	}
	_, ok := s.rules[d.Code]
	return ok
}

// IsNolint reports whether d is suppressed, marking the directive as used.
// Runtime faults of plugins are never suppressed.
func (m *Manager) IsNolint(d tt.Diagnostic, runtimeCode string) bool {
	if d.Code == runtimeCode && runtimeCode != "" {
		return false
	}
	for _, s := range m.file {
		if s.matches(d) {
			s.used = true
			return true
		}
	}
	line := d.Span.Start.Line
	if line == 0 {
		return false
	}
	for _, s := range m.lines {
		if line < s.start || line > s.end {
			continue
		}
		if s.matches(d) {
			s.used = true
			return true
		}
	}
	return false
}

// Filter drops suppressed diagnostics, keeping the order of the rest.
func (m *Manager) Filter(diags []tt.Diagnostic, runtimeCode string) []tt.Diagnostic {
	if len(m.file) == 0 && len(m.lines) == 0 {
		return diags
	}
	filtered := make([]tt.Diagnostic, 0, len(diags))
	for _, d := range diags {
		if !m.IsNolint(d, runtimeCode) {
			filtered = append(filtered, d)
		}
	}
	return filtered
}

// Unused returns a warning for every directive that suppressed nothing,
// in source order of the comments. File directives placed after the first
// declaration are always reported.
func (m *Manager) Unused(filename string) []tt.Diagnostic {
	var out []tt.Diagnostic
	for _, group := range [][]*scope{m.file, m.lines} {
		for _, s := range group {
			if s.used {
				continue
			}
			out = append(out, directiveWarning(filename, s, UnusedCode,
				fmt.Sprintf("ignore directive %q suppresses nothing", strings.TrimSpace(s.text)),
				"remove the directive"))
		}
	}
	for _, s := range m.misplaced {
		out = append(out, directiveWarning(filename, s, UnusedCode,
			fmt.Sprintf("ignore directive %q comes after the first declaration and suppresses nothing", strings.TrimSpace(s.text)),
			"move the directive above the first declaration"))
	}
	sortBySpan(out)
	return out
}

// Unknown returns a warning for every rule named by a directive that known
// does not accept, in source order. Bare directives name no rule and are
// never reported.
func (m *Manager) Unknown(filename string, known func(string) bool) []tt.Diagnostic {
	var out []tt.Diagnostic
	for _, group := range [][]*scope{m.file, m.lines, m.misplaced} {
		for _, s := range group {
			names := make([]string, 0, len(s.rules))
			for name := range s.rules {
				if !known(name) {
					names = append(names, name)
				}
			}
			sort.Strings(names)
			for _, name := range names {
				out = append(out, directiveWarning(filename, s, UnknownCode,
					fmt.Sprintf("unknown rule %q in ignore directive", name),
					"check the spelling against `plint plugins`"))
			}
		}
	}
	sortBySpan(out)
	return out
}

func directiveWarning(filename string, s *scope, code, message, hint string) tt.Diagnostic {
	return tt.Diagnostic{
		Plugin:   tt.CoreRef,
		Filename: filename,
		Code:     code,
		Message:  message,
		Hint:     hint,
		Severity: tt.SeverityWarning,
		Span:     s.span,
	}
}

func sortBySpan(diags []tt.Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		return diags[i].Span.Start.Less(diags[j].Span.Start)
	})
}
