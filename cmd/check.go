package cmd

import (
	"context"
	"fmt"

	"github.com/ddxy18/git-hooks/internal/check"
	"github.com/ddxy18/git-hooks/internal/config"
	"github.com/ddxy18/git-hooks/internal/discovery"
	"github.com/ddxy18/git-hooks/internal/git"
	"github.com/ddxy18/git-hooks/internal/outputters"
	"github.com/ddxy18/git-hooks/internal/runner"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	checkSources []string

	formatToolVersion string
	formatStyle       string
	formatUnified     bool

	lintBuild       string
	lintChecks      string
	lintToolVersion string
	lintExtraArgs   []string
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run a pre-commit check over source trees",
	Long: `Run clang-format or clang-tidy over every eligible file below the given
source directories. Files are split across workers; every failure is
collected and reported once all workers have finished.

Eligible files have one of the configured extensions (.cc and .h by
default). Unreadable directories are skipped; use --verbose to see them.`,
}

var checkFormatCmd = &cobra.Command{
	Use:     "format",
	Aliases: []string{"fmt", "clang-format"},
	Short:   "Check that files match clang-format output",
	Long: `Check that every file is already formatted. Each file is piped through
clang-format and compared with the file on disk; any difference is reported
as a diff.

EXAMPLES:

  git-hooks check format --source src --source include
  git-hooks check format --source src --tool-version 14 --unified
  git-hooks --staged check format --source .`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		finish(runCheck(cmd.Context(), cmd.Name()))
	},
}

var checkLintCmd = &cobra.Command{
	Use:     "lint",
	Aliases: []string{"tidy", "clang-tidy"},
	Short:   "Run clang-tidy with warnings treated as errors",
	Long: `Run clang-tidy on every file using the compilation database in the build
directory. Any warning fails the file.

EXAMPLES:

  git-hooks check lint --build build --source src
  git-hooks check lint --build build --source src --checks '-*,bugprone-*'
  git-hooks check lint --build build --source src --extra-arg=-std=c++20`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		finish(runCheck(cmd.Context(), cmd.Name()))
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.AddCommand(checkFormatCmd, checkLintCmd)

	checkCmd.PersistentFlags().StringArrayVar(&checkSources, "source", nil, "Source directory to check (repeatable)")
	_ = checkCmd.MarkPersistentFlagRequired("source")

	ff := checkFormatCmd.Flags()
	ff.StringVar(&formatToolVersion, "tool-version", "", "Use clang-format-<version>")
	ff.StringVar(&formatStyle, "style", "file", "Value passed as --style")
	ff.BoolVar(&formatUnified, "unified", false, "Report unified diffs")
	_ = viper.BindPFlag("clangFormat.version", ff.Lookup("tool-version"))
	_ = viper.BindPFlag("clangFormat.style", ff.Lookup("style"))
	_ = viper.BindPFlag("clangFormat.unified", ff.Lookup("unified"))

	lf := checkLintCmd.Flags()
	lf.StringVar(&lintBuild, "build", "", "Build directory containing compile_commands.json")
	lf.StringVar(&lintChecks, "checks", "", "Value passed as --checks")
	lf.StringVar(&lintToolVersion, "tool-version", "", "Use clang-tidy-<version>")
	lf.StringArrayVar(&lintExtraArgs, "extra-arg", nil, "Extra compiler argument (repeatable)")
	_ = viper.BindPFlag("clangTidy.build", lf.Lookup("build"))
	_ = viper.BindPFlag("clangTidy.checks", lf.Lookup("checks"))
	_ = viper.BindPFlag("clangTidy.version", lf.Lookup("tool-version"))
	_ = viper.BindPFlag("clangTidy.extraArgs", lf.Lookup("extra-arg"))
}

func runCheck(ctx context.Context, name string) error {
	target, err := check.ParseTarget(name)
	if err != nil {
		return &usageError{err: err}
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if len(checkSources) == 0 {
		return usagef("at least one --source is required")
	}

	roots := discovery.ResolveRoots(checkSources)
	checker, err := newChecker(target, cfg, roots)
	if err != nil {
		return err
	}

	walker := discovery.NewWalker(cfg.Extensions, cfg.Exclude)
	if cfg.Verbose {
		walker.OnSkip = func(path string, err error) {
			fmt.Fprintf(stderr, "warning: skipping %s: %v\n", path, err)
		}
	}

	opts := []check.Option{
		check.WithParallelism(cfg.Concurrency),
		check.WithFileTimeout(cfg.Timeout),
	}
	if cfg.Verbose {
		opts = append(opts, check.WithListing(stderr))
	}

	filter, err := gitFilter(cfg, roots[0], walker)
	if err != nil {
		return err
	}
	if filter != nil {
		opts = append(opts, check.WithFilter(filter))
	}

	report := check.NewCoordinator(walker, opts...).Run(ctx, checker)

	if err := outputters.NewOutputter(cfg, stdout).Format(report, cfg.Format); err != nil {
		return fmt.Errorf("error formatting output: %w", err)
	}

	if !report.Success() {
		return errChecksFailed
	}
	return nil
}

func newChecker(target check.Target, cfg *config.Config, roots []string) (check.Checker, error) {
	var tool runner.Tool
	var checker check.Checker

	switch target {
	case check.TargetFormat:
		tool = runner.Tool{Name: cfg.ClangFormat.Tool, Version: cfg.ClangFormat.Version}
		checker = check.NewFormatChecker(check.FormatOptions{
			Roots:   roots,
			Tool:    tool,
			Style:   cfg.ClangFormat.Style,
			Diff:    runner.Tool{Name: cfg.ClangFormat.Diff},
			Unified: cfg.ClangFormat.Unified,
		})
	case check.TargetLint:
		if cfg.ClangTidy.Build == "" {
			return nil, usagef("--build is required for lint")
		}
		tool = runner.Tool{Name: cfg.ClangTidy.Tool, Version: cfg.ClangTidy.Version}
		checker = check.NewLintChecker(check.LintOptions{
			Roots:     roots,
			Tool:      tool,
			BuildPath: cfg.ClangTidy.Build,
			Checks:    cfg.ClangTidy.Checks,
			ExtraArgs: cfg.ClangTidy.ExtraArgs,
		})
	default:
		return nil, usagef("unsupported check target %s", target)
	}

	// A missing tool still runs: every file then fails with the spawn error.
	if !cfg.Quiet && !runner.Available(tool) {
		fmt.Fprintf(stderr, "warning: %s not found in PATH\n", tool.Binary())
	}
	return checker, nil
}

// gitFilter narrows the walk to staged or changed files when requested.
func gitFilter(cfg *config.Config, root string, walker *discovery.Walker) (check.FileFilter, error) {
	if !cfg.Staged && !changed {
		return nil, nil
	}

	var files []string
	var err error
	if cfg.Staged {
		files, err = git.GetStagedFiles(root, walker.Match)
	} else {
		files, err = git.GetChangedFiles(root, walker.Match)
	}
	if err != nil {
		return nil, fmt.Errorf("error listing git changes: %w", err)
	}

	if cfg.Verbose {
		fmt.Fprintf(stderr, "%d files changed in git\n", len(files))
	}
	return git.Filter(files), nil
}
