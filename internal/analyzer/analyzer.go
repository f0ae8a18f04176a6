// Package analyzer exposes the lint engine as a golang.org/x/tools
// analysis.Analyzer, so it can run under go vet style drivers.
package analyzer

import (
	"fmt"
	"go/token"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/tools/go/analysis"

	"github.com/gnolang/plint/internal"
	"github.com/gnolang/plint/internal/goast"
	"github.com/gnolang/plint/internal/lints"
	tt "github.com/gnolang/plint/internal/types"
)

const doc = `run the plint plugins on every file of a package

The plugins to run are given as a comma separated list with -plugins.
Diagnostics are prefixed with the code of the rule that produced them.`

type runner struct {
	logger       *zap.Logger
	plugins      string
	reportUnused bool
}

// New returns an analyzer running the named plugins, or the default set when
// names is empty. A nil logger discards everything.
func New(logger *zap.Logger, names ...string) *analysis.Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(names) == 0 {
		names = lints.DefaultNames()
	}
	r := &runner{logger: logger, plugins: strings.Join(names, ",")}

	a := &analysis.Analyzer{
		Name: "plint",
		Doc:  doc,
		URL:  "https://github.com/gnolang/plint",
		Run:  r.run,
	}
	a.Flags.StringVar(&r.plugins, "plugins", r.plugins, "comma separated list of plugins to run")
	a.Flags.BoolVar(&r.reportUnused, "unused-directives", false, "report ignore directives that suppress nothing")
	return a
}

// run builds one engine per pass: passes of different packages run
// concurrently and an engine is not safe for concurrent use.
func (r *runner) run(pass *analysis.Pass) (any, error) {
	engine, err := internal.NewEngine(r.logger,
		internal.Entries(splitNames(r.plugins), nil),
		internal.WithFailFast(true),
		internal.WithReportUnusedDirectives(r.reportUnused),
	)
	if err != nil {
		return nil, fmt.Errorf("loading plugins: %w", err)
	}

	for _, f := range pass.Files {
		tf := pass.Fset.File(f.Pos())
		if tf == nil {
			continue
		}
		prog, err := goast.FromFile(pass.Fset, f)
		if err != nil {
			return nil, err
		}
		for _, d := range engine.Run(prog, tf.Name()) {
			pass.Report(analysis.Diagnostic{
				Pos:      filePos(tf, d.Span.Start.Offset),
				End:      filePos(tf, d.Span.End.Offset),
				Category: d.Rule(),
				Message:  message(d),
			})
		}
	}
	return nil, nil
}

func message(d tt.Diagnostic) string {
	msg := fmt.Sprintf("%s: %s", d.Rule(), d.Message)
	if d.Hint != "" {
		msg += " (" + d.Hint + ")"
	}
	return msg
}

// filePos converts a byte offset into a token.Pos, clamping to the file.
func filePos(tf *token.File, offset uint32) token.Pos {
	off := int(offset)
	if off > tf.Size() {
		off = tf.Size()
	}
	return tf.Pos(off)
}

func splitNames(list string) []string {
	var names []string
	for _, name := range strings.Split(list, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}
