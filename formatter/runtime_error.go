package formatter

// RuntimeErrorFormatter renders the diagnostics the engine emits when a
// plugin callback fails. The underline points at the node being visited.
type RuntimeErrorFormatter struct{}

func (f *RuntimeErrorFormatter) IssueTemplate() string {
	return `{{header .Rule .Severity .MaxLineNumWidth .Filename .StartLine .StartColumn}}
{{- snippet .SnippetLines .StartLine .EndLine .MaxLineNumWidth .CommonIndent .Padding}}
{{- underlineAndMessage .Message .Padding .StartLine .EndLine .StartColumn .EndColumn .SnippetLines .CommonIndent}}
{{- note (printf "raised by plugin %s, its other results are kept" .Plugin) .Padding}}
`
}
