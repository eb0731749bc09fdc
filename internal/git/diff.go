package git

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Matcher reports whether a file name is eligible for checking.
type Matcher func(name string) bool

// GetStagedFiles returns absolute paths of files in the git staging area
// that match. Deleted files are dropped. Returns an empty slice if rootPath
// is not inside a git repository.
func GetStagedFiles(rootPath string, match Matcher) ([]string, error) {
	if !IsGitRepo(rootPath) {
		return []string{}, nil
	}

	output, err := gitOutput(rootPath, "diff", "--name-only", "--staged")
	if err != nil {
		return nil, err
	}
	return filterRelevantFiles(rootPath, output, match)
}

// GetChangedFiles returns absolute paths of all uncommitted changes (staged
// and unstaged) that match. In a repository without commits every tracked
// file counts as changed.
func GetChangedFiles(rootPath string, match Matcher) ([]string, error) {
	if !IsGitRepo(rootPath) {
		return []string{}, nil
	}

	// Check if there are any commits
	if _, err := gitOutput(rootPath, "rev-parse", "--verify", "HEAD"); err != nil {
		output, err := gitOutput(rootPath, "ls-files")
		if err != nil {
			return nil, err
		}
		return filterRelevantFiles(rootPath, output, match)
	}

	output, err := gitOutput(rootPath, "diff", "--name-only", "HEAD")
	if err != nil {
		return nil, err
	}
	return filterRelevantFiles(rootPath, output, match)
}

// IsGitRepo checks if the given directory is within a git repository.
func IsGitRepo(rootPath string) bool {
	cmd := exec.Command("git", "rev-parse", "--git-dir")
	cmd.Dir = rootPath
	return cmd.Run() == nil
}

// TopLevel returns the root of the working tree containing rootPath.
func TopLevel(rootPath string) (string, error) {
	output, err := gitOutput(rootPath, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(output), nil
}

func gitOutput(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s failed: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(output)))
	}
	return string(output), nil
}

// filterRelevantFiles turns git's top-level relative names into absolute
// paths, keeping existing files accepted by match.
func filterRelevantFiles(rootPath, gitOutput string, match Matcher) ([]string, error) {
	top, err := TopLevel(rootPath)
	if err != nil {
		return nil, err
	}

	files := []string{}
	for _, line := range strings.Split(strings.TrimSpace(gitOutput), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		absPath := filepath.Join(top, filepath.FromSlash(line))

		// git reports deletions too
		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			continue
		}

		if match != nil && !match(filepath.Base(line)) {
			continue
		}

		files = append(files, absPath)
	}

	return files, nil
}

// Filter restricts walked files to the given set. Paths are compared after
// resolving symlinks so that a walk under a symlinked checkout still lines
// up with the paths git reports.
func Filter(keep []string) func(files []string) []string {
	set := make(map[string]bool, len(keep))
	for _, f := range keep {
		set[canonical(f)] = true
	}

	return func(files []string) []string {
		var out []string
		for _, f := range files {
			if set[canonical(f)] {
				out = append(out, f)
			}
		}
		return out
	}
}

func canonical(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	return filepath.Clean(path)
}
