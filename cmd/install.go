package cmd

import (
	"fmt"
	"os"

	"github.com/ddxy18/git-hooks/internal/config"
	"github.com/ddxy18/git-hooks/internal/git"
	"github.com/spf13/cobra"
)

var (
	installHooksDir    string
	installSources     []string
	installBuild       string
	installForce       bool
	installWriteConfig bool
)

const defaultConfigFile = ".githooksrc.yaml"

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install the commit-msg and pre-commit hooks",
	Long: `Install commit-msg and pre-commit hook scripts that invoke this binary.

The commit-msg hook validates the message being committed. The pre-commit
hook runs "check format" on the staged files below each --source, and
"check lint" as well when --build is given.

Existing hooks that were not installed by git-hooks are left alone unless
--force is set.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		finish(runInstall())
	},
}

func init() {
	rootCmd.AddCommand(installCmd)

	installCmd.Flags().StringVar(&installHooksDir, "hooks-dir", "", "Hooks directory (default: the repository's hooks path)")
	installCmd.Flags().StringArrayVar(&installSources, "source", []string{"."}, "Source directory checked by the pre-commit hook (repeatable)")
	installCmd.Flags().StringVar(&installBuild, "build", "", "Build directory; enables the lint check in the pre-commit hook")
	installCmd.Flags().BoolVar(&installForce, "force", false, "Overwrite hooks not installed by git-hooks")
	installCmd.Flags().BoolVar(&installWriteConfig, "write-config", false, "Also write a default "+defaultConfigFile)
}

func runInstall() error {
	dir := installHooksDir
	if dir == "" {
		if !git.IsGitRepo(".") {
			return usagef("not inside a git repository; pass --hooks-dir")
		}
		var err error
		if dir, err = git.HooksDir("."); err != nil {
			return err
		}
	}

	binary, err := os.Executable()
	if err != nil {
		binary = "git-hooks"
	}

	written, err := git.InstallHooks(dir, git.HookOptions{
		Binary:  binary,
		Sources: installSources,
		Build:   installBuild,
		Force:   installForce,
	})
	if err != nil {
		return err
	}
	if !quiet {
		for _, path := range written {
			fmt.Fprintf(stdout, "Installed %s\n", path)
		}
	}

	if installWriteConfig {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			if !quiet {
				fmt.Fprintf(stdout, "Keeping existing %s\n", defaultConfigFile)
			}
			return nil
		}
		cfg := config.Defaults()
		cfg.ClangTidy.Build = installBuild
		if err := config.SaveConfig(cfg, defaultConfigFile); err != nil {
			return err
		}
		if !quiet {
			fmt.Fprintf(stdout, "Wrote %s\n", defaultConfigFile)
		}
	}
	return nil
}
