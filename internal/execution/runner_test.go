//go:build !windows

package execution

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vtp/internal/config"
	"vtp/internal/domain"
	"vtp/internal/output"
)

// newTestRunner returns a runner whose "python" is sh, so run scripts in
// tests are plain shell scripts.
func newTestRunner(t *testing.T) (*Runner, *config.Config, *bytes.Buffer) {
	t.Helper()
	cfg := config.New()
	cfg.WorkspaceRoot = t.TempDir()
	cfg.Python = "sh"
	cfg.ExportDir = filepath.Join(t.TempDir(), "export")

	var buf bytes.Buffer
	out, err := output.Open("", &buf)
	require.NoError(t, err)

	log, _ := test.NewNullLogger()
	return NewRunner(cfg, out, log), cfg, &buf
}

func writeScript(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "run.py")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

type lineCollector struct {
	mu    sync.Mutex
	lines []string
}

func (c *lineCollector) add(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, line)
}

func (c *lineCollector) get() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string{}, c.lines...)
}

func TestRunner_Execute_Success(t *testing.T) {
	r, cfg, buf := newTestRunner(t)
	script := writeScript(t, filepath.Join(cfg.WorkspaceRoot, "sim"), `
echo "Starting lib.tb.a"
echo "pass (P=1 S=0 F=0 T=1) lib.tb.a (0.1 seconds)"
echo "warning" >&2
exit 0
`)

	var stdout, stderr lineCollector
	code, err := r.Execute(context.Background(), script, nil, func(p *Process) {
		assert.Greater(t, p.Pid, 0)
		p.OnLine(stdout.add)
		p.OnStderr(stderr.add)
	})

	require.NoError(t, err)
	assert.Equal(t, "0", code)
	assert.Equal(t, []string{"Starting lib.tb.a", "pass (P=1 S=0 F=0 T=1) lib.tb.a (0.1 seconds)"}, stdout.get())
	assert.Equal(t, []string{"warning"}, stderr.get())

	log := buf.String()
	assert.True(t, strings.HasPrefix(log, "Running VUnit: sh \""+script+"\""))
	assert.Contains(t, log, "Finished with exit code 0")
}

func TestRunner_Execute_NonZeroExit(t *testing.T) {
	r, cfg, buf := newTestRunner(t)
	script := writeScript(t, cfg.WorkspaceRoot, "exit 3\n")

	code, err := r.Execute(context.Background(), script, nil, nil)

	assert.Equal(t, "", code)
	var perr *domain.ProcessError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 3, perr.ExitCode)
	assert.Equal(t, script, perr.Script)
	assert.Contains(t, err.Error(), "(3)")
	assert.Contains(t, buf.String(), "VUnit returned with non-zero exit code (3).")
}

func TestRunner_Execute_ConfigErrors(t *testing.T) {
	r, cfg, _ := newTestRunner(t)

	tests := []struct {
		name      string
		workspace string
		script    string
	}{
		{name: "empty script", workspace: cfg.WorkspaceRoot, script: ""},
		{name: "missing script", workspace: cfg.WorkspaceRoot, script: filepath.Join(cfg.WorkspaceRoot, "nope", "run.py")},
		{name: "no workspace", workspace: "", script: "/tmp/run.py"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg.WorkspaceRoot = tt.workspace
			called := false
			_, err := r.Execute(context.Background(), tt.script, nil, func(*Process) { called = true })

			var cfgErr *domain.ConfigError
			assert.True(t, errors.As(err, &cfgErr))
			assert.False(t, called, "process must not be spawned")
		})
	}
}

func TestRunner_Execute_WorkingDirectoryAndArgs(t *testing.T) {
	r, cfg, _ := newTestRunner(t)
	dir := filepath.Join(cfg.WorkspaceRoot, "with space")
	script := writeScript(t, dir, `
pwd
for a in "$@"; do echo "arg:$a"; done
`)

	var lines lineCollector
	_, err := r.Execute(context.Background(), script, []string{Quote("lib.tb.*"), "--no-color", Quote("x $y")}, func(p *Process) {
		p.OnLine(lines.add)
	})
	require.NoError(t, err)

	got := lines.get()
	require.Len(t, got, 4)
	wantDir, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	gotDir, err := filepath.EvalSymlinks(got[0])
	require.NoError(t, err)
	assert.Equal(t, wantDir, gotDir)
	assert.Equal(t, []string{"arg:lib.tb.*", "arg:--no-color", "arg:x $y"}, got[1:])
}

func TestRunner_Execute_CancelKillsProcess(t *testing.T) {
	r, cfg, _ := newTestRunner(t)
	script := writeScript(t, cfg.WorkspaceRoot, `
echo started
sleep 30 &
wait
echo finished
`)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var lines lineCollector
	start := time.Now()
	_, err := r.Execute(ctx, script, nil, func(p *Process) {
		p.OnLine(func(line string) {
			lines.add(line)
			if line == "started" {
				cancel()
			}
		})
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 10*time.Second)
	assert.NotContains(t, lines.get(), "finished")
}

func TestRunner_Execute_CancelAfterCleanExit(t *testing.T) {
	tests := []struct {
		name string
		kill func(pid int) error
	}{
		{name: "process already gone", kill: func(int) error { return os.ErrProcessDone }},
		{name: "kill lands after exit", kill: func(int) error { return nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, cfg, _ := newTestRunner(t)
			r.kill = tt.kill
			script := writeScript(t, cfg.WorkspaceRoot, "sleep 0.2\necho finished\n")

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			var lines lineCollector
			code, err := r.Execute(ctx, script, nil, func(p *Process) {
				p.OnLine(lines.add)
				cancel()
			})

			require.NoError(t, err)
			assert.Equal(t, "0", code)
			assert.Equal(t, []string{"finished"}, lines.get())
		})
	}
}

func TestRunner_Version(t *testing.T) {
	r, cfg, _ := newTestRunner(t)
	script := writeScript(t, cfg.WorkspaceRoot, `
if [ "$1" = "--version" ]; then
  echo "Re-compile not needed"
  echo "4.7.0"
  echo ""
fi
`)

	v, err := r.Version(context.Background(), script)
	require.NoError(t, err)
	assert.Equal(t, "4.7.0", v)
}

func TestInvocation_CommandLine(t *testing.T) {
	inv := Invocation{Python: "python3", Script: "/ws/run.py", Args: []string{Quote("lib.*"), "", "--no-color"}}
	assert.Equal(t, `python3 "/ws/run.py" "lib.*" --no-color`, inv.CommandLine())
}

func TestQuote(t *testing.T) {
	tests := []struct {
		in, out string
	}{
		{"lib.tb.case", `"lib.tb.case"`},
		{"lib.tb.with space.*", `"lib.tb.with space.*"`},
		{`say "hi"`, `"say \"hi\""`},
		{"$HOME", `"\$HOME"`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.out, Quote(tt.in))
	}
}
