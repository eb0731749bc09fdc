// Package runner invokes external tools as child processes and captures
// their exit status and output.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// waitDelay bounds how long Wait keeps draining output after the context
// has killed a child whose own children still hold the pipes open.
const waitDelay = 2 * time.Second

// Tool names an external binary. When Version is set the binary is looked
// up as "<name>-<version>" (clang-format-14 instead of clang-format).
type Tool struct {
	Name    string
	Version string
}

// Binary returns the executable name to look up on PATH.
func (t Tool) Binary() string {
	if t.Version == "" {
		return t.Name
	}
	return t.Name + "-" + t.Version
}

// Command is a tool plus its ordered argument list.
type Command struct {
	Tool Tool
	Args []string
}

// String renders the command line for diagnostics.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Tool.Binary()
	}
	return c.Tool.Binary() + " " + strings.Join(c.Args, " ")
}

// Result holds the outcome of a finished child process.
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// Success reports whether the child exited with status 0.
func (r *Result) Success() bool {
	return r.ExitCode == 0
}

// Output returns stdout followed by stderr, trimmed.
func (r *Result) Output() string {
	var sb strings.Builder
	sb.Write(bytes.TrimSpace(r.Stdout))
	if errOut := bytes.TrimSpace(r.Stderr); len(errOut) > 0 {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.Write(errOut)
	}
	return sb.String()
}

// Run starts c, waits for it to exit and returns its captured output.
// A nonzero exit is not an error; failing to start the child (missing
// binary, permission denied) or hitting the context deadline is.
func Run(ctx context.Context, c Command) (*Result, error) {
	cmd := exec.CommandContext(ctx, c.Tool.Binary(), c.Args...)
	cmd.WaitDelay = waitDelay
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return collect(ctx, c, err, &stdout, &stderr)
}

// RunPiped connects the stdout of producer to the stdin of consumer, runs
// both to completion and returns the consumer's result. The producer's
// stdout is never buffered in this process.
func RunPiped(ctx context.Context, producer, consumer Command) (*Result, error) {
	prod := exec.CommandContext(ctx, producer.Tool.Binary(), producer.Args...)
	cons := exec.CommandContext(ctx, consumer.Tool.Binary(), consumer.Args...)
	prod.WaitDelay = waitDelay
	cons.WaitDelay = waitDelay

	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("creating pipe: %w", err)
	}

	var prodErr, consOut, consErr bytes.Buffer
	prod.Stdout = w
	prod.Stderr = &prodErr
	cons.Stdin = r
	cons.Stdout = &consOut
	cons.Stderr = &consErr

	if err := prod.Start(); err != nil {
		r.Close()
		w.Close()
		return nil, fmt.Errorf("starting %s: %w", producer.Tool.Binary(), err)
	}
	if err := cons.Start(); err != nil {
		// Closing both ends lets the producer die on EPIPE instead of blocking.
		r.Close()
		w.Close()
		_ = prod.Wait()
		return nil, fmt.Errorf("starting %s: %w", consumer.Tool.Binary(), err)
	}
	r.Close()
	w.Close()

	consWaitErr := cons.Wait()
	prodWaitErr := prod.Wait()

	consResult, consCollectErr := collect(ctx, consumer, consWaitErr, &consOut, &consErr)
	prodResult, err := collect(ctx, producer, prodWaitErr, &bytes.Buffer{}, &prodErr)
	if err != nil {
		return nil, err
	}

	// A producer killed by a signal (SIGPIPE once the consumer stopped
	// reading) defers to the consumer's own failure.
	killed := prodResult.ExitCode < 0 && consCollectErr == nil && !consResult.Success()
	if !prodResult.Success() && !killed {
		return nil, fmt.Errorf("%s exited with status %d: %s",
			producer.Tool.Binary(), prodResult.ExitCode, strings.TrimSpace(prodErr.String()))
	}

	return consResult, consCollectErr
}

// collect turns the error returned by Run/Wait into a Result.
func collect(ctx context.Context, c Command, err error, stdout, stderr *bytes.Buffer) (*Result, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("%s: %w", c.Tool.Binary(), ctxErr)
	}
	if err == nil {
		return &Result{ExitCode: 0, Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &Result{
			ExitCode: exitErr.ExitCode(),
			Stdout:   stdout.Bytes(),
			Stderr:   stderr.Bytes(),
		}, nil
	}
	return nil, fmt.Errorf("running %s: %w", c.Tool.Binary(), err)
}

// Available reports whether the tool's binary can be found on PATH.
func Available(t Tool) bool {
	_, err := exec.LookPath(t.Binary())
	return err == nil
}
