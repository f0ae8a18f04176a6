package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/plint/internal/lints"
	tt "github.com/gnolang/plint/internal/types"
	"github.com/gnolang/plint/lint"
)

var (
	enabledStyle  = color.New(color.FgGreen)
	disabledStyle = color.New(color.FgHiBlack)
)

// pluginsCmd: plint plugins
var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "List the available plugins and their configured state",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := lint.LoadConfig(cfgFile)
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		listPlugins(os.Stdout, lints.Default(), cfg)
	},
}

// listPlugins prints one line per catalog entry, in name order, with the
// severity it will run at or "disabled".
func listPlugins(w io.Writer, catalog lints.Catalog, cfg lint.Config) {
	enabled := make(map[string]bool, len(cfg.Plugins))
	for _, name := range cfg.Plugins {
		enabled[name] = true
	}

	for _, name := range catalog.Names() {
		sev := tt.SeverityError
		if rule, ok := cfg.Rules[name]; ok {
			sev = rule.Severity
		}
		if !enabled[name] || sev == tt.SeverityOff {
			fmt.Fprintf(w, "%-22s %s\n", name, disabledStyle.Sprint("disabled"))
			continue
		}
		text, _ := sev.MarshalText()
		fmt.Fprintf(w, "%-22s %s\n", name, enabledStyle.Sprint(string(text)))
	}
}
