package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/ddxy18/git-hooks/internal/config"
	"github.com/ddxy18/git-hooks/internal/output"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Exit codes
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

var version = "dev"

var (
	configPath   string
	quiet        bool
	verbose      bool
	outputFormat string
	outputFile   string
	concurrency  int
	staged       bool
	changed      bool
	timeout      time.Duration
)

// Replaced in tests.
var (
	exitFunc           = os.Exit
	stdout   io.Writer = os.Stdout
	stderr   io.Writer = os.Stderr
)

// errChecksFailed signals a failed check whose details were already
// reported.
var errChecksFailed = errors.New("checks failed")

// usageError marks errors caused by bad flags or configuration.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

var rootCmd = &cobra.Command{
	Use:   "git-hooks",
	Short: "Git hooks for C++ projects: commit message lint and pre-commit checks",
	Long: `git-hooks validates commit messages against a conventional grammar and runs
clang-format and clang-tidy over source trees before a commit.

Every eligible file is checked, in parallel, and all failures are reported
together. The exit code is 0 on success, 1 when any check failed and 2 on
usage or configuration errors.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		stop()
		exitFunc(exitUsage)
	}
}

func init() {
	output.Version = version

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Config file (default .githooksrc.yaml|.yml|.json)")
	flags.BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	flags.StringVarP(&outputFormat, "format", "f", "console", "Output format for reports (console|json|yaml|markdown)")
	flags.StringVarP(&outputFile, "output", "o", "", "Output file for reports")
	flags.IntVarP(&concurrency, "concurrency", "j", 0, "Maximum number of workers (0 = number of CPUs)")
	flags.BoolVar(&staged, "staged", false, "Only check files staged in git")
	flags.BoolVar(&changed, "changed", false, "Only check files with uncommitted changes")
	flags.DurationVar(&timeout, "timeout", 0, "Per-file tool timeout (0 = none)")

	_ = viper.BindPFlag("quiet", flags.Lookup("quiet"))
	_ = viper.BindPFlag("verbose", flags.Lookup("verbose"))
	_ = viper.BindPFlag("format", flags.Lookup("format"))
	_ = viper.BindPFlag("output", flags.Lookup("output"))
	_ = viper.BindPFlag("concurrency", flags.Lookup("concurrency"))
	_ = viper.BindPFlag("staged", flags.Lookup("staged"))
	_ = viper.BindPFlag("timeout", flags.Lookup("timeout"))
}

// loadConfig loads the configuration, marking failures as usage errors.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, &usageError{err: fmt.Errorf("error loading configuration: %w", err)}
	}
	return cfg, nil
}

// exitCode maps a command error to the process exit code.
func exitCode(err error) int {
	var ue *usageError
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &ue):
		return exitUsage
	default:
		return exitFailure
	}
}

// finish reports err, if any, and exits with the matching code.
func finish(err error) {
	if err == nil {
		return
	}
	if !errors.Is(err, errChecksFailed) {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	exitFunc(exitCode(err))
}
