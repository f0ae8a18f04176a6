package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/plint/formatter"
	"github.com/gnolang/plint/internal"
	tt "github.com/gnolang/plint/internal/types"
	"github.com/gnolang/plint/lint"
)

var (
	ignoreRules  string
	ignorePaths  string
	outputFormat string
	outPath      string
	workers      int
	showProgress bool
)

var lintCmd = &cobra.Command{
	Use:   "lint [paths...]",
	Short: "Lint files and directories, or stdin with -",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("error: Please provide file or directory paths")
			os.Exit(1)
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		cfg, err := lint.LoadConfig(cfgFile)
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}

		format, err := formatter.ParseFormat(outputFormat)
		if err != nil {
			logger.Fatal("Invalid output format", zap.Error(err))
		}

		out := io.Writer(os.Stdout)
		if outPath != "" {
			f, err := os.Create(outPath)
			if err != nil {
				logger.Fatal("Error creating output file", zap.Error(err))
			}
			defer f.Close()
			out = f
		}

		opts := lintOptions{
			format:      format,
			ignoreRules: splitList(ignoreRules),
			configPath:  cfgFile,
			process: lint.ProcessOptions{
				Workers: workers,
				Ignore:  splitList(ignorePaths),
			},
		}
		if showProgress {
			opts.process.Progress = os.Stderr
		}

		failed, err := runNormalLintProcess(ctx, logger, cfg, args, opts, out)
		if err != nil {
			logger.Error("Error processing files", zap.Error(err))
			os.Exit(1)
		}
		if failed {
			os.Exit(1)
		}
	},
}

func init() {
	lintCmd.Flags().StringVar(&ignoreRules, "ignore", "", "Comma-separated list of plugins to disable")
	lintCmd.Flags().StringVar(&ignorePaths, "ignore-paths", "", "Comma-separated list of path patterns to skip")
	lintCmd.Flags().StringVar(&outputFormat, "format", "text", "Output format: text, json or msgpack")
	lintCmd.Flags().StringVarP(&outPath, "output", "o", "", "Write the report to a file instead of stdout")
	lintCmd.Flags().IntVar(&workers, "workers", 0, "Number of files linted in parallel (default: configuration, then GOMAXPROCS)")
	lintCmd.Flags().BoolVar(&showProgress, "progress", false, "Show a progress bar on stderr")
}

// stdinName is the file name reported for source read from stdin.
const stdinName = "<stdin>"

type lintOptions struct {
	format      formatter.Format
	ignoreRules []string
	process     lint.ProcessOptions
	// configPath is where startup errors are reported.
	configPath string
	// stdin is read when the only path is "-".
	stdin io.Reader
}

// runNormalLintProcess lints paths and writes the report to out. Plugins that
// failed to load are reported once, against the configuration file. It
// reports whether any diagnostic has error severity.
func runNormalLintProcess(ctx context.Context, logger *zap.Logger, cfg lint.Config, paths []string, opts lintOptions, out io.Writer) (bool, error) {
	if cfg.Rules == nil {
		cfg.Rules = make(map[string]tt.ConfigRule)
	}
	for _, name := range opts.ignoreRules {
		cfg.Rules[name] = tt.ConfigRule{Severity: tt.SeverityOff}
	}
	if opts.process.Workers == 0 {
		opts.process.Workers = cfg.Workers
	}
	if opts.configPath == "" {
		opts.configPath = lint.DefaultConfigPath
	}

	session, err := lint.NewSession(logger, cfg)
	if err != nil {
		return false, err
	}
	diags := lint.StartupDiagnostics(opts.configPath, session.StartupErrors())

	read := formatter.SourceReader(internal.ReadSourceCode)
	if len(paths) == 1 && paths[0] == "-" {
		found, src, err := lintStdin(session, opts.stdin)
		if err != nil {
			return false, err
		}
		diags = append(diags, found...)
		read = func(filename string) (*internal.SourceCode, error) {
			if filename == stdinName {
				return &internal.SourceCode{Lines: strings.Split(string(src), "\n")}, nil
			}
			return internal.ReadSourceCode(filename)
		}
	} else {
		found, err := lint.ProcessFiles(ctx, logger, session.Factory(), paths, lint.ProcessFile, opts.process)
		if err != nil {
			return false, err
		}
		diags = append(diags, found...)
	}

	if err := formatter.Write(out, opts.format, diags, read); err != nil {
		return false, err
	}

	for _, d := range diags {
		if d.Severity == tt.SeverityError {
			return true, nil
		}
	}
	return false, nil
}

func lintStdin(session *lint.Session, stdin io.Reader) ([]tt.Diagnostic, []byte, error) {
	if stdin == nil {
		stdin = os.Stdin
	}
	src, err := io.ReadAll(stdin)
	if err != nil {
		return nil, nil, fmt.Errorf("error reading stdin: %w", err)
	}
	engine, err := session.Factory()()
	if err != nil {
		return nil, nil, err
	}
	diags, err := lint.ProcessSource(engine, stdinName, src)
	if err != nil {
		return nil, nil, err
	}
	return diags, src, nil
}

func splitList(list string) []string {
	var out []string
	for _, item := range strings.Split(list, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
