package check

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/ddxy18/git-hooks/internal/discovery"
	"golang.org/x/sync/errgroup"
)

// FileFilter narrows the scanned file list before it is partitioned, for
// example to the files staged in git.
type FileFilter func(files []string) []string

// Coordinator scans the roots of a Checker, partitions the file list and
// runs one worker per partition. Workers never share state: each owns its
// slice and its failure list and hands the list back when it finishes.
type Coordinator struct {
	walker      *discovery.Walker
	parallelism int
	fileTimeout time.Duration
	filter      FileFilter
	listing     io.Writer
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithParallelism caps the number of workers. Zero or less means
// runtime.NumCPU().
func WithParallelism(n int) Option {
	return func(c *Coordinator) { c.parallelism = n }
}

// WithFileTimeout bounds each tool invocation. Zero means no bound, in
// which case a hung tool hangs its worker and the whole run.
func WithFileTimeout(d time.Duration) Option {
	return func(c *Coordinator) { c.fileTimeout = d }
}

// WithFilter narrows the scanned files before partitioning.
func WithFilter(f FileFilter) Option {
	return func(c *Coordinator) { c.filter = f }
}

// WithListing writes the list of files to check to w once, before any
// worker starts.
func WithListing(w io.Writer) Option {
	return func(c *Coordinator) { c.listing = w }
}

// NewCoordinator creates a Coordinator that discovers files with walker.
func NewCoordinator(walker *discovery.Walker, opts ...Option) *Coordinator {
	if walker == nil {
		walker = discovery.NewWalker(nil, nil)
	}
	c := &Coordinator{walker: walker}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Scan returns every eligible file below the checker's roots, root order
// preserved.
func (c *Coordinator) Scan(checker Checker) []string {
	var files []string
	for _, root := range checker.Roots() {
		narrowed := checker.WithRoots([]string{root})
		files = append(files, c.walker.WalkRoots(narrowed.Roots())...)
	}
	if c.filter != nil {
		files = c.filter(files)
	}
	return files
}

// Run checks every eligible file and returns the merged report. It always
// runs the whole batch; failures never stop sibling workers.
func (c *Coordinator) Run(ctx context.Context, checker Checker) *Report {
	start := time.Now()
	report := &Report{Target: checker.Target(), Roots: checker.Roots()}

	files := c.Scan(checker)
	report.FilesChecked = len(files)
	if len(files) == 0 {
		report.Duration = time.Since(start)
		return report
	}

	chunks := Partition(files, Workers(len(files), c.parallelism))
	report.Workers = len(chunks)
	c.list(files, len(chunks))

	results := make([][]FileFailure, len(chunks))
	var g errgroup.Group
	for i, chunk := range chunks {
		g.Go(func() error {
			results[i] = c.checkChunk(ctx, checker, chunk)
			return nil
		})
	}
	_ = g.Wait()

	report.Merge(results...)
	report.Duration = time.Since(start)
	return report
}

// checkChunk runs the check over one slice, in order. A panic is turned
// into a failure with no path; failures found before it are kept.
func (c *Coordinator) checkChunk(ctx context.Context, checker Checker, files []string) (failures []FileFailure) {
	defer func() {
		if r := recover(); r != nil {
			failures = append(failures, ToolFailure("", fmt.Errorf("worker panicked: %v", r)))
		}
	}()

	for _, path := range files {
		if f := c.checkFile(ctx, checker, path); f != nil {
			failures = append(failures, *f)
		}
	}
	return failures
}

func (c *Coordinator) checkFile(ctx context.Context, checker Checker, path string) *FileFailure {
	if c.fileTimeout <= 0 {
		return checker.CheckFile(ctx, path)
	}
	fileCtx, cancel := context.WithTimeout(ctx, c.fileTimeout)
	defer cancel()
	return checker.CheckFile(fileCtx, path)
}

func (c *Coordinator) list(files []string, workers int) {
	if c.listing == nil {
		return
	}
	fmt.Fprintf(c.listing, "Checking %d files with %d workers:\n", len(files), workers)
	for _, f := range files {
		fmt.Fprintf(c.listing, "  %s\n", f)
	}
}
