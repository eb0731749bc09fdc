package cmd

import (
	"fmt"

	"github.com/ddxy18/git-hooks/internal/commitmsg"
	"github.com/spf13/cobra"
)

var commitMsgPath string

var commitMessageCmd = &cobra.Command{
	Use:   "commit-message",
	Short: "Check a commit message file against the commit grammar",
	Long: `Check a commit message file against the commit grammar:

  <type>[(<scope>)]: <subject>
  <BLANK LINE>
  [<body>]
  <BLANK LINE>
  [<footer>]

Lines starting with '#' are ignored. No line may be longer than the
configured limit (100 characters by default). Reverts use
"revert: <reverted header>" and must name the reverted commit in the body.
Issue references in the footer take the form "Closes #12, #34".

Intended as the commit-msg hook:

  git-hooks commit-message --path "$1"`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		finish(runCommitMessage())
	},
}

func init() {
	rootCmd.AddCommand(commitMessageCmd)

	commitMessageCmd.Flags().StringVar(&commitMsgPath, "path", "", "Path of the commit message file")
	_ = commitMessageCmd.MarkFlagRequired("path")
}

func runCommitMessage() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	validator := commitmsg.NewValidator(commitmsg.Rules{
		Types:         cfg.CommitMessage.Types,
		MaxLineLength: cfg.CommitMessage.MaxLineLength,
	})
	if err := validator.ValidateFile(commitMsgPath); err != nil {
		return err
	}

	if cfg.Verbose {
		fmt.Fprintln(stderr, "✓ commit message is valid")
	}
	return nil
}
