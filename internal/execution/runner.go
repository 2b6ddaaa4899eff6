package execution

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"vtp/internal/config"
	"vtp/internal/domain"
	"vtp/internal/logger"
	"vtp/internal/output"
)

const maxLineSize = 1024 * 1024

// Executor runs a VUnit script with the given arguments
type Executor interface {
	Execute(ctx context.Context, script string, args []string, onStarted func(*Process)) (string, error)
}

// Invocation is a fully resolved command to run
type Invocation struct {
	Script string
	Args   []string
	Dir    string
	Python string
}

// CommandLine renders the shell command line. Args are expected to be quoted
// by the caller where needed.
func (inv Invocation) CommandLine() string {
	parts := []string{inv.Python, Quote(inv.Script)}
	for _, a := range inv.Args {
		if a != "" {
			parts = append(parts, a)
		}
	}
	return strings.Join(parts, " ")
}

// Process is a running VUnit invocation. Listeners must be registered from
// the onStarted callback, before any output is consumed.
type Process struct {
	Pid int

	mu     sync.Mutex
	stdout []func(string)
	stderr []func(string)
	kill   func() error
}

// NewProcess wraps a started process. kill terminates it; nil kills the
// process tree of pid.
func NewProcess(pid int, kill func() error) *Process {
	if kill == nil {
		kill = func() error { return killProcessTree(pid) }
	}
	return &Process{Pid: pid, kill: kill}
}

// OnLine registers a listener for stdout lines
func (p *Process) OnLine(fn func(line string)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stdout = append(p.stdout, fn)
}

// OnStderr registers a listener for stderr lines
func (p *Process) OnStderr(fn func(line string)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stderr = append(p.stderr, fn)
}

// Kill terminates the process and all of its descendants
func (p *Process) Kill() error {
	return p.kill()
}

// Emit hands a line to the registered listeners of its stream
func (p *Process) Emit(line string, stderr bool) {
	p.mu.Lock()
	fns := p.stdout
	if stderr {
		fns = p.stderr
	}
	fns = append([]func(string){}, fns...)
	p.mu.Unlock()
	for _, fn := range fns {
		fn(line)
	}
}

// Runner spawns VUnit scripts through the shell
type Runner struct {
	config *config.Config
	out    *output.Channel
	log    logger.Logger

	// kill terminates the process tree of pid. os.ErrProcessDone means the
	// process was already gone.
	kill func(pid int) error
}

// NewRunner creates a new Runner
func NewRunner(cfg *config.Config, out *output.Channel, log logger.Logger) *Runner {
	return &Runner{config: cfg, out: out, log: log, kill: killProcessTree}
}

// Prepare validates the script and resolves the invocation
func (r *Runner) Prepare(script string, args []string) (Invocation, error) {
	if r.config.WorkspaceRoot == "" {
		return Invocation{}, domain.NewConfigError("no workspace folder is open")
	}
	if script == "" {
		return Invocation{}, domain.NewConfigError("no VUnit run script configured")
	}
	if _, err := os.Stat(script); err != nil {
		return Invocation{}, domain.NewConfigError("VUnit run script %s does not exist", script)
	}
	return Invocation{
		Script: script,
		Args:   args,
		Dir:    filepath.Dir(script),
		Python: r.config.Python,
	}, nil
}

// Execute runs script with args and waits for it to exit. onStarted, when set,
// receives the live process before its output is read. A non-zero exit code is
// returned as *domain.ProcessError. Cancelling ctx kills the process tree.
func (r *Runner) Execute(ctx context.Context, script string, args []string, onStarted func(*Process)) (string, error) {
	inv, err := r.Prepare(script, args)
	if err != nil {
		return "", err
	}

	cmdline := inv.CommandLine()
	cmd := shellCommand(cmdline)
	cmd.Dir = inv.Dir
	cmd.Env = os.Environ()

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return "", fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	r.out.AppendLine("Running VUnit: " + cmdline)
	r.log.Debugf("exec %s (dir %s)", cmdline, inv.Dir)

	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("failed to start %s: %w", script, err)
	}

	pid := cmd.Process.Pid
	proc := NewProcess(pid, func() error { return r.kill(pid) })
	if onStarted != nil {
		onStarted(proc)
	}

	// killed is only read after watcher has returned
	killed := false
	done := make(chan struct{})
	watcher := make(chan struct{})
	go func() {
		defer close(watcher)
		select {
		case <-ctx.Done():
			err := proc.Kill()
			switch {
			case err == nil:
				killed = true
			case errors.Is(err, os.ErrProcessDone):
				r.log.Debugf("process %d exited before it could be killed", pid)
			default:
				r.log.Warnf("failed to kill process tree %d: %v", pid, err)
			}
		case <-done:
		}
	}()

	var scanWg sync.WaitGroup
	scanWg.Add(2)
	go func() {
		defer scanWg.Done()
		r.stream(stdout, proc, false)
	}()
	go func() {
		defer scanWg.Done()
		r.stream(stderr, proc, true)
	}()

	scanWg.Wait()
	waitErr := cmd.Wait()
	close(done)
	<-watcher

	// A process that exited cleanly before the kill landed keeps its result
	if killed && waitErr != nil {
		r.out.AppendLine("VUnit process cancelled")
		return "", fmt.Errorf("run %s cancelled: %w", script, ctx.Err())
	}

	code := 0
	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return "", fmt.Errorf("failed to wait for %s: %w", script, waitErr)
		}
		code = exitErr.ExitCode()
	}

	if code != 0 {
		perr := &domain.ProcessError{Script: script, ExitCode: code}
		r.out.AppendLine(perr.Error())
		return "", perr
	}

	r.out.AppendLine("Finished with exit code 0")
	return "0", nil
}

// Version returns the VUnit version reported by script
func (r *Runner) Version(ctx context.Context, script string) (string, error) {
	var mu sync.Mutex
	var last string
	_, err := r.Execute(ctx, script, []string{"--version"}, func(p *Process) {
		p.OnLine(func(line string) {
			if line = strings.TrimSpace(line); line != "" {
				mu.Lock()
				last = line
				mu.Unlock()
			}
		})
	})
	if err != nil {
		return "", err
	}
	mu.Lock()
	defer mu.Unlock()
	return last, nil
}

func (r *Runner) stream(rd io.Reader, proc *Process, isStderr bool) {
	scanner := bufio.NewScanner(rd)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		r.out.AppendLine(line)
		proc.Emit(line, isStderr)
	}
	if err := scanner.Err(); err != nil {
		r.log.Debugf("output stream of %d closed: %v", proc.Pid, err)
		_, _ = io.Copy(io.Discard, rd)
	}
}
