// Command luasentrylint is a one-shot CLI analyzer for CI and pre-commit
// use: it runs the same two-pass analyzer the editor services sit on top
// of against a script file on disk and reports its diagnostics, exiting
// non-zero if any are Error severity.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/viant/luasentry/registry"
	"github.com/viant/luasentry/semantic"
	"github.com/viant/luasentry/source"
)

var (
	hookName string
	format   string
	watch    bool
)

func main() {
	root := &cobra.Command{
		Use:   "luasentrylint <script.lua>",
		Short: "Analyze a sandboxed Lua script and report its diagnostics",
		Args:  cobra.ExactArgs(1),
		RunE:  run,
	}
	root.Flags().StringVar(&hookName, "hook", "", "hook name selecting the context.<...> variant to resolve against")
	root.Flags().StringVar(&format, "format", "text", "output format: text, json, or yaml")
	root.Flags().BoolVar(&watch, "watch", false, "re-run analysis whenever the script file changes on disk")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	path := args[0]

	reg, err := registry.Default()
	if err != nil {
		return fmt.Errorf("luasentrylint: load registry: %w", err)
	}

	if !watch {
		errorCount, err := lintOnce(path, reg)
		if err != nil {
			return err
		}
		if errorCount > 0 {
			os.Exit(1)
		}
		return nil
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		return fmt.Errorf("luasentrylint: build logger: %w", err)
	}
	defer logger.Sync()
	return watchAndLint(path, reg, logger)
}

// lintOnce runs a single analysis pass and prints its diagnostics,
// returning the number of Error-severity diagnostics found.
func lintOnce(path string, reg *registry.Registry) (int, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("luasentrylint: read %s: %w", path, err)
	}

	doc := source.New(path, string(text))
	opts := semantic.DefaultOptions()
	opts.HookName = hookName
	result := semantic.Analyze(doc, reg, opts)

	if err := printDiagnostics(path, result); err != nil {
		return 0, err
	}

	errorCount := 0
	for _, d := range result.Diagnostics {
		if d.Severity == semantic.SeverityError {
			errorCount++
		}
	}
	return errorCount, nil
}

// watchAndLint re-runs lintOnce whenever path changes, standing in for
// "per keystroke" re-analysis outside of an actual editor session.
func watchAndLint(path string, reg *registry.Registry, logger *zap.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("luasentrylint: create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("luasentrylint: watch %s: %w", path, err)
	}

	logger.Info("watching for changes", zap.String("path", path))
	if _, err := lintOnce(path, reg); err != nil {
		logger.Error("lint failed", zap.Error(err))
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			logger.Info("re-analyzing", zap.String("path", path))
			if _, err := lintOnce(path, reg); err != nil {
				logger.Error("lint failed", zap.Error(err))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error", zap.Error(err))
		}
	}
}

type diagnosticReport struct {
	Path        string              `json:"path" yaml:"path"`
	Success     bool                `json:"success" yaml:"success"`
	Diagnostics []diagnosticSummary `json:"diagnostics" yaml:"diagnostics"`
}

type diagnosticSummary struct {
	Code     string `json:"code" yaml:"code"`
	Severity string `json:"severity" yaml:"severity"`
	Start    int    `json:"start" yaml:"start"`
	End      int    `json:"end" yaml:"end"`
	Message  string `json:"message" yaml:"message"`
}

func printDiagnostics(path string, result *semantic.Result) error {
	report := diagnosticReport{Path: path, Success: result.Success}
	for _, d := range result.Diagnostics {
		report.Diagnostics = append(report.Diagnostics, diagnosticSummary{
			Code:     d.Code,
			Severity: d.Severity.String(),
			Start:    d.Range.Start,
			End:      d.Range.End,
			Message:  d.Message,
		})
	}

	switch format {
	case "yaml":
		out, err := yaml.Marshal(report)
		if err != nil {
			return fmt.Errorf("luasentrylint: marshal yaml report: %w", err)
		}
		fmt.Print(string(out))
	case "json":
		return printJSON(report)
	default:
		printText(report)
	}
	return nil
}

func printText(report diagnosticReport) {
	if len(report.Diagnostics) == 0 {
		fmt.Printf("%s: no issues found\n", report.Path)
		return
	}
	for _, d := range report.Diagnostics {
		fmt.Printf("%s:%d: %s: %s (%s)\n", report.Path, d.Start, d.Severity, d.Message, d.Code)
	}
}

func printJSON(report diagnosticReport) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
