// Package lint is the public entry point of plint: it loads the
// configuration, builds lint engines and runs them over files and
// directories.
package lint

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gnolang/plint/internal"
	"github.com/gnolang/plint/internal/lints"
	"github.com/gnolang/plint/internal/plugin"
	tt "github.com/gnolang/plint/internal/types"
)

// LintEngine lints one file at a time. Implementations are not required to
// be safe for concurrent use.
type LintEngine interface {
	RunSource(filename string, src any) ([]tt.Diagnostic, error)
}

// EngineFactory creates an independent engine. ProcessFiles calls it once
// per worker.
type EngineFactory func() (LintEngine, error)

// StartupCode is the code of diagnostics reporting plugins that could not
// be loaded.
const StartupCode = "plugin-startup-error"

// New builds an engine from cfg. Plugins that fail to load are logged and
// skipped unless cfg.FailFast is set.
func New(logger *zap.Logger, cfg Config) (*internal.Engine, error) {
	return build(logger, cfg, true)
}

// build creates an engine; with report set, startup errors and init
// messages are logged.
func build(logger *zap.Logger, cfg Config, report bool) (*internal.Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := []internal.Option{
		internal.WithFailFast(cfg.FailFast),
		internal.WithReportUnusedDirectives(cfg.ReportUnusedDirectives),
		internal.WithDirectives(cfg.IgnoreFileDirective, cfg.IgnoreDirective),
	}
	keys, values := settingValues(cfg.Settings)
	for _, k := range keys {
		opts = append(opts, internal.WithValue(k, values[k]))
	}

	engine, err := internal.NewEngine(logger, internal.Entries(cfg.Plugins, cfg.Rules), opts...)
	if err != nil {
		return nil, err
	}
	if !report {
		return engine, nil
	}
	for _, err := range engine.StartupErrors() {
		logger.Warn("plugin rejected", zap.Error(err))
	}
	for _, d := range engine.InitDiagnostics() {
		logger.Info("plugin init message",
			zap.String("plugin", d.PluginName()),
			zap.String("code", d.Code),
			zap.String("message", d.Message),
		)
	}
	return engine, nil
}

// Factory returns an EngineFactory building engines from cfg. Only the
// first engine logs its startup errors.
func Factory(logger *zap.Logger, cfg Config) EngineFactory {
	var reported atomic.Bool
	return func() (LintEngine, error) {
		engine, err := build(logger, cfg, !reported.Swap(true))
		if err != nil {
			return nil, err
		}
		return engine, nil
	}
}

// Session builds every engine of one lint run from the same configuration.
// The first engine is built up front, so startup errors are known before
// any file is linted and are reported once rather than once per worker.
type Session struct {
	logger  *zap.Logger
	cfg     Config
	startup []error

	mu    sync.Mutex
	first *internal.Engine
}

// NewSession builds the first engine from cfg. It fails only when cfg.FailFast
// is set and a plugin cannot be loaded.
func NewSession(logger *zap.Logger, cfg Config) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	engine, err := build(logger, cfg, true)
	if err != nil {
		return nil, err
	}
	return &Session{
		logger:  logger,
		cfg:     cfg,
		startup: engine.StartupErrors(),
		first:   engine,
	}, nil
}

// StartupErrors returns the plugin faults met while loading, in
// configuration order.
func (s *Session) StartupErrors() []error { return s.startup }

// Factory hands out the engine built by NewSession first, then fresh ones.
func (s *Session) Factory() EngineFactory {
	return func() (LintEngine, error) {
		s.mu.Lock()
		first := s.first
		s.first = nil
		s.mu.Unlock()
		if first != nil {
			return first, nil
		}
		engine, err := build(s.logger, s.cfg, false)
		if err != nil {
			return nil, err
		}
		return engine, nil
	}
}

// StartupDiagnostics turns startup errors into error diagnostics of the core,
// attributed to the configuration file so they are reported next to the
// findings of the linted files.
func StartupDiagnostics(configPath string, errs []error) []tt.Diagnostic {
	diags := make([]tt.Diagnostic, 0, len(errs))
	for _, err := range errs {
		d := tt.Diagnostic{
			Plugin:   tt.CoreRef,
			Filename: configPath,
			Code:     StartupCode,
			Message:  err.Error(),
			Severity: tt.SeverityError,
		}
		var perr *plugin.Error
		if errors.As(err, &perr) {
			d.Message = fmt.Sprintf("plugin %q was not loaded: %v", perr.Plugin, perr.Err)
		}
		if errors.Is(err, lints.ErrUnknownPlugin) {
			d.Hint = "run `plint plugins` to list the available plugins"
		}
		diags = append(diags, d)
	}
	return diags
}

// ProcessOptions tune ProcessFiles.
type ProcessOptions struct {
	// Workers bounds the number of files linted at once. Zero means
	// GOMAXPROCS.
	Workers int
	// Ignore lists glob patterns; files and directories whose path or base
	// name match are skipped.
	Ignore []string
	// Progress receives a progress bar when set.
	Progress io.Writer
}

func ProcessFile(engine LintEngine, filePath string) ([]tt.Diagnostic, error) {
	return engine.RunSource(filePath, nil)
}

func ProcessSource(engine LintEngine, filename string, source []byte) ([]tt.Diagnostic, error) {
	return engine.RunSource(filename, source)
}

// ProcessFiles lints every Go or Gno file under paths. Files are spread over
// workers, each with its own engine from newEngine. A file that fails is
// logged and skipped; its error is returned, joined with the others, next
// to the diagnostics of every other file. Results are ordered by file name,
// then by position, keeping emission order for ties.
//
// Cancelling ctx stops processing before the next file and returns what was
// collected so far.
func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	newEngine EngineFactory,
	paths []string,
	processor func(LintEngine, string) ([]tt.Diagnostic, error),
	opts ProcessOptions,
) ([]tt.Diagnostic, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	files, err := collectFiles(paths, opts.Ignore)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return []tt.Diagnostic{}, nil
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, len(files))

	engines := make(chan LintEngine, workers)
	for i := 0; i < workers; i++ {
		engine, err := newEngine()
		if err != nil {
			return nil, fmt.Errorf("error creating lint engine: %w", err)
		}
		engines <- engine
	}

	var bar *progressbar.ProgressBar
	if opts.Progress != nil {
		bar = newProgressBar(opts.Progress, len(files))
	}

	results := make([][]tt.Diagnostic, len(files))
	fileErrs := make([]error, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			engine := <-engines
			defer func() { engines <- engine }()

			diags, err := processor(engine, file)
			if err != nil {
				logger.Error("Error processing file", zap.String("file", file), zap.Error(err))
				fileErrs[i] = err
			} else {
				results[i] = diags
			}
			if bar != nil {
				_ = bar.Add(1)
			}
			return nil
		})
	}
	waitErr := g.Wait()
	if bar != nil {
		_ = bar.Finish()
	}

	all := make([]tt.Diagnostic, 0)
	for _, diags := range results {
		all = append(all, diags...)
	}
	sortDiagnostics(all)

	if waitErr != nil {
		return all, waitErr
	}
	return all, errors.Join(fileErrs...)
}

// ProcessPath lints a single file or directory.
func ProcessPath(
	ctx context.Context,
	logger *zap.Logger,
	newEngine EngineFactory,
	path string,
	processor func(LintEngine, string) ([]tt.Diagnostic, error),
	opts ProcessOptions,
) ([]tt.Diagnostic, error) {
	return ProcessFiles(ctx, logger, newEngine, []string{path}, processor, opts)
}

func newProgressBar(w io.Writer, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("linting"),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}

// collectFiles expands paths into a sorted, duplicate free list of files.
func collectFiles(paths []string, ignore []string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string
	add := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		files = append(files, p)
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing %s: %w", path, err)
		}
		if !info.IsDir() {
			if hasDesiredExtension(path) && !isIgnored(path, ignore) {
				add(path)
			}
			continue
		}
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if isIgnored(p, ignore) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.IsDir() && hasDesiredExtension(p) {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("error walking %s: %w", path, err)
		}
	}
	sort.Strings(files)
	return files, nil
}

func isIgnored(path string, patterns []string) bool {
	base := filepath.Base(path)
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if ok, _ := filepath.Match(pattern, path); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

func sortDiagnostics(diags []tt.Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		if diags[i].Filename != diags[j].Filename {
			return diags[i].Filename < diags[j].Filename
		}
		return diags[i].Span.Start.Less(diags[j].Span.Start)
	})
}

var desiredExtensions = map[string]bool{
	".go":  true,
	".gno": true,
}

func hasDesiredExtension(path string) bool {
	return desiredExtensions[filepath.Ext(path)]
}
