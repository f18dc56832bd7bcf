package runner

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"flet-build/internal/logger"
)

// maxLine bounds a single output line; longer lines end the live status feed
// but the process still runs to completion.
const maxLine = 1 << 20

// Command is a subprocess to launch.
type Command struct {
	Path string
	Args []string
	Dir  string   // working directory, empty for the current one
	Env  []string // extra KEY=VALUE pairs on top of the inherited environment
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Path}, c.Args...), " ")
}

// Result is the outcome of a subprocess.
// Code is the exit code, or -1 when the process could not be started or was killed.
type Result struct {
	Code int
	Err  error
}

// OK reports a clean zero exit.
func (r Result) OK() bool {
	return r.Err == nil && r.Code == 0
}

// LineFunc receives each non-empty output line as it is produced.
type LineFunc func(line string)

// StatusFunc starts a live status display titled title. It returns the sink for
// output lines and a func that removes the display once the command has exited.
type StatusFunc func(title string) (update func(line string), done func())

// Start opens the display from status, or a silent one when status is nil.
func (status StatusFunc) Start(title string) (LineFunc, func()) {
	if status == nil {
		return func(string) {}, func() {}
	}
	update, done := status(title)
	return update, done
}

// Stream runs c with stderr merged into stdout and hands every output line to onLine
// while the process runs. It blocks until the process exits. Output is never buffered
// as a whole.
func Stream(ctx context.Context, c Command, onLine LineFunc) Result {
	if onLine == nil {
		onLine = func(string) {}
	}
	logger.Debug("[DEBUG] Running command: %s (dir %q)\n", c, c.Dir)

	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	killTree(cmd)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}

	pr, pw, err := os.Pipe()
	if err != nil {
		return Result{Code: -1, Err: fmt.Errorf("create pipe: %w", err)}
	}
	defer pr.Close()
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		pw.Close()
		return Result{Code: -1, Err: fmt.Errorf("failed to start %s: %w", c.Path, err)}
	}
	// The child holds its own copy; closing ours lets the reader see EOF on exit
	pw.Close()
	// A descendant that escaped the kill could keep the pipe open, so cancellation
	// also stops the reader
	stop := context.AfterFunc(ctx, func() { pr.Close() })
	defer stop()

	sc := bufio.NewScanner(pr)
	sc.Buffer(make([]byte, 64*1024), maxLine)
	sc.Split(scanLines)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			onLine(line)
		}
	}
	if err := sc.Err(); err != nil && ctx.Err() == nil {
		logger.Debug("[DEBUG] Output scanner stopped: %v\n", err)
		// Keep draining so the child never blocks on a full pipe
		_, _ = io.Copy(io.Discard, pr)
	}

	waitErr := cmd.Wait()
	if waitErr == nil {
		return Result{Code: 0}
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Result{Code: -1, Err: fmt.Errorf("%s stopped: %w", c.Path, ctxErr)}
	}
	var ee *exec.ExitError
	if errors.As(waitErr, &ee) {
		return Result{Code: ee.ExitCode(), Err: waitErr}
	}
	return Result{Code: -1, Err: waitErr}
}

// scanLines splits on \n, \r\n and bare \r, so progress output that rewrites a
// single terminal line still arrives as separate status updates.
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		adv := i + 1
		if data[i] == '\r' && i+1 < len(data) && data[i+1] == '\n' {
			adv++
		} else if data[i] == '\r' && i+1 == len(data) && !atEOF {
			// Need one more byte to tell \r\n from a bare \r
			return 0, nil, nil
		}
		return adv, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
