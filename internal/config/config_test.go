package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vtp/internal/domain"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestNew(t *testing.T) {
	cfg := New()

	assert.Equal(t, DefaultPython, cfg.Python)
	assert.Equal(t, DefaultScriptGlob, cfg.ScriptGlob)
	assert.Equal(t, DefaultScriptExclude, cfg.ScriptExclude)
	assert.Equal(t, DefaultLoadConcurrency, cfg.LoadConcurrency)
	assert.True(t, cfg.MatchProblems)
	assert.True(t, cfg.MatchAssertionFailure)
	assert.True(t, cfg.ShowExecutionTime)
	assert.False(t, cfg.ExecuteMultipleGUITestcases)
}

func TestLoad_Precedence(t *testing.T) {
	ws := t.TempDir()
	writeFile(t, filepath.Join(ws, DefaultConfigFile), `
python: python3.10
list_options: --from-file
shell_options: --num-threads 2
match_problems: false
load_concurrency: 2
`)
	writeFile(t, filepath.Join(ws, DefaultEnvFile), "VTP_SHELL_OPTIONS=--verbose\nVTP_LIST_OPTIONS=--dotenv\n")
	t.Setenv("VTP_LIST_OPTIONS", "--from-env")

	cfg, err := Load(Flags{Workspace: ws, Python: "/opt/py/bin/python"})
	require.NoError(t, err)

	assert.Equal(t, "/opt/py/bin/python", cfg.Python, "flag beats file")
	assert.Equal(t, "--from-env", cfg.ListOptions, "process env beats .env")
	assert.Equal(t, "--verbose", cfg.ShellOptions, ".env beats file")
	assert.False(t, cfg.MatchProblems)
	assert.Equal(t, 2, cfg.LoadConcurrency)
}

func TestLoad_ExplicitConfigMissing(t *testing.T) {
	ws := t.TempDir()

	_, err := Load(Flags{Workspace: ws, ConfigFile: "missing.yaml"})
	require.Error(t, err)

	var cfgErr *domain.ConfigError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestLoad_InvalidBool(t *testing.T) {
	ws := t.TempDir()
	t.Setenv("VTP_MATCH_PROBLEMS", "maybe")

	_, err := Load(Flags{Workspace: ws})
	var cfgErr *domain.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Contains(t, cfgErr.Error(), "VTP_MATCH_PROBLEMS")
}

func TestLoad_ExcludeList(t *testing.T) {
	ws := t.TempDir()
	t.Setenv("VTP_SCRIPT_EXCLUDE", "**/a/**, **/b/**,")

	cfg, err := Load(Flags{Workspace: ws, Verbose: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"**/a/**", "**/b/**"}, cfg.ScriptExclude)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestConfig_Paths(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected string
	}{
		{
			name:     "no script configured",
			config:   &Config{WorkspaceRoot: "/ws"},
			expected: "",
		},
		{
			name:     "relative script",
			config:   &Config{WorkspaceRoot: "/ws", ScriptPath: "sim/run.py"},
			expected: filepath.Join("/ws", "sim", "run.py"),
		},
		{
			name:     "absolute script",
			config:   &Config{WorkspaceRoot: "/ws", ScriptPath: "/abs/run.py"},
			expected: "/abs/run.py",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.config.GetScriptPath())
		})
	}

	cfg := &Config{WorkspaceRoot: "/ws", StateDir: DefaultStateDir}
	assert.Equal(t, filepath.Join("/ws", ".vtp", "last-run.json"), cfg.GetLastRunPath())
	assert.Equal(t, filepath.Join("/ws", ".vtp", "output.log"), cfg.GetOutputLogPath())
	assert.Equal(t, "sim/run.py", cfg.RelativeToWorkspace(filepath.Join("/ws", "sim", "run.py")))
	assert.Equal(t, "/other/run.py", cfg.RelativeToWorkspace("/other/run.py"))
}
