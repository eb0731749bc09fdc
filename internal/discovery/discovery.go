package discovery

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultExtensions are the source and header suffixes checked when the
// configuration does not name any.
var DefaultExtensions = []string{".cc", ".h"}

// SkipFunc is called for every directory the walker could not read.
type SkipFunc func(path string, err error)

// Walker enumerates eligible source files below one or more roots.
//
// Unreadable directories are skipped and contribute no files: the walk is
// best effort, not a guaranteed-complete scan. This can hide a permission
// problem on a subtree; set OnSkip to surface those directories.
type Walker struct {
	// OnSkip, if set, is told about every directory that was skipped.
	OnSkip SkipFunc

	namePattern string
	exclude     []string
}

// NewWalker creates a Walker that accepts files whose extension is one of
// extensions (".cc" style, with the dot) and rejects any path matching one
// of the exclude globs. Exclude globs use doublestar syntax and are matched
// against the slash-separated path relative to the root being walked.
func NewWalker(extensions, exclude []string) *Walker {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	return &Walker{
		namePattern: extensionPattern(extensions),
		exclude:     exclude,
	}
}

// extensionPattern builds a doublestar name pattern such as "*.{cc,h}".
func extensionPattern(extensions []string) string {
	trimmed := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
		if ext != "" {
			trimmed = append(trimmed, ext)
		}
	}
	if len(trimmed) == 1 {
		return "*." + trimmed[0]
	}
	return "*.{" + strings.Join(trimmed, ",") + "}"
}

// Match reports whether name (a base name or path) has a recognised
// extension.
func (w *Walker) Match(name string) bool {
	matched, err := doublestar.Match(w.namePattern, filepath.Base(name))
	return err == nil && matched
}

// WalkRoots walks every root in order and concatenates the results.
func (w *Walker) WalkRoots(roots []string) []string {
	var files []string
	for _, root := range roots {
		files = append(files, w.Walk(root)...)
	}
	return files
}

// Walk returns the absolute paths of all eligible files below root, at any
// depth. Order within a directory follows os.ReadDir.
func (w *Walker) Walk(root string) []string {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		w.skip(root, err)
		return nil
	}
	var files []string
	w.walkDir(absRoot, absRoot, &files)
	return files
}

func (w *Walker) walkDir(root, dir string, files *[]string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		w.skip(dir, err)
		return
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if w.excluded(root, path) {
			continue
		}

		switch {
		case entry.IsDir():
			w.walkDir(root, path, files)
		case entry.Type().IsRegular():
			if w.Match(entry.Name()) {
				*files = append(*files, path)
			}
		case entry.Type()&os.ModeSymlink != 0:
			// Symlinked files are checked; symlinked directories are not
			// followed, so cycles cannot occur.
			if w.Match(entry.Name()) && isRegularTarget(path) {
				*files = append(*files, path)
			}
		}
	}
}

func (w *Walker) skip(path string, err error) {
	if w.OnSkip != nil {
		w.OnSkip(path, err)
	}
}

// excluded reports whether path matches one of the exclude globs, either
// by its root-relative path or by its base name.
func (w *Walker) excluded(root, path string) bool {
	if len(w.exclude) == 0 {
		return false
	}
	relPath, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	relPath = filepath.ToSlash(relPath)
	base := filepath.Base(path)

	for _, pattern := range w.exclude {
		if matched, _ := doublestar.Match(pattern, relPath); matched {
			return true
		}
		if matched, _ := doublestar.Match(pattern, base); matched {
			return true
		}
		if hasPathComponent(relPath, pattern) {
			return true
		}
	}
	return false
}

func isRegularTarget(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// hasPathComponent checks if a path contains a directory component.
// Unlike strings.Contains, this matches on path boundaries to avoid
// false positives (e.g., "build" won't match "prebuild").
func hasPathComponent(path, component string) bool {
	normalizedPath := strings.ReplaceAll(path, "\\", "/")
	normalizedComponent := strings.Trim(strings.ReplaceAll(component, "\\", "/"), "/")
	if normalizedComponent == "" {
		return false
	}
	sep := "/"

	if strings.Contains(normalizedPath, sep+normalizedComponent+sep) {
		return true
	}
	if strings.HasSuffix(normalizedPath, sep+normalizedComponent) {
		return true
	}
	if strings.HasPrefix(normalizedPath, normalizedComponent+sep) {
		return true
	}
	return normalizedPath == normalizedComponent
}

// ResolveRoots returns the roots as absolute, cleaned paths, keeping order.
// A root that cannot be made absolute is kept as given; the walker then
// treats it as empty.
func ResolveRoots(roots []string) []string {
	resolved := make([]string, 0, len(roots))
	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			resolved = append(resolved, root)
			continue
		}
		resolved = append(resolved, abs)
	}
	return resolved
}
