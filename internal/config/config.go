package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"vtp/internal/domain"
)

// Config holds all configuration for the application
type Config struct {
	// Workspace settings
	WorkspaceRoot string `yaml:"-"`
	StateDir      string `yaml:"-"`

	// Interpreter and discovery settings
	Python        string   `yaml:"python"`
	ScriptName    string   `yaml:"script_name"`
	ScriptGlob    string   `yaml:"script_glob"`
	ScriptExclude []string `yaml:"script_exclude"`
	ScriptPath    string   `yaml:"script_path"`
	SkipDirs      []string `yaml:"skip_dirs"`

	// Extra options appended verbatim to the VUnit command line
	ListOptions  string `yaml:"list_options"`
	ShellOptions string `yaml:"shell_options"`
	GUIOptions   string `yaml:"gui_options"`

	// Output interpretation toggles
	MatchProblems               bool `yaml:"match_problems"`
	MatchAssertionFailure       bool `yaml:"match_assertion_failure"`
	ShowExecutionTime           bool `yaml:"show_execution_time"`
	ExecuteMultipleGUITestcases bool `yaml:"execute_multiple_gui_testcases"`

	// Loading settings
	LoadConcurrency int    `yaml:"load_concurrency"`
	ExportDir       string `yaml:"export_dir"`

	LogLevel string `yaml:"log_level"`

	// Command flags
	Flags Flags `yaml:"-"`
}

// Flags holds command-line flags
type Flags struct {
	Workspace  string
	ConfigFile string
	Python     string
	Script     string
	Verbose    bool
	NameFilter string
	Exclude    []string
	GUI        bool
	Plain      bool
}

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		StateDir:              DefaultStateDir,
		Python:                DefaultPython,
		ScriptName:            DefaultScriptName,
		ScriptGlob:            DefaultScriptGlob,
		MatchProblems:         true,
		MatchAssertionFailure: true,
		ShowExecutionTime:     true,
		LoadConcurrency:       DefaultLoadConcurrency,
		ExportDir:             DefaultExportDir(),
		LogLevel:              DefaultLogLevel,
	}
	if wd, err := os.Getwd(); err == nil {
		cfg.WorkspaceRoot = wd
	}
	cfg.ScriptExclude = make([]string, len(DefaultScriptExclude))
	copy(cfg.ScriptExclude, DefaultScriptExclude)
	cfg.SkipDirs = make([]string, len(DefaultSkipDirs))
	copy(cfg.SkipDirs, DefaultSkipDirs)
	return cfg
}

// Load creates a config from defaults, the settings file, the workspace .env
// file, the process environment and finally the flags.
func Load(flags Flags) (*Config, error) {
	cfg := New()
	cfg.Flags = flags

	if flags.Workspace != "" {
		cfg.WorkspaceRoot = flags.Workspace
	} else if ws, ok := os.LookupEnv("VTP_WORKSPACE"); ok && ws != "" {
		cfg.WorkspaceRoot = ws
	}
	if cfg.WorkspaceRoot == "" {
		return nil, domain.NewConfigError("no workspace root could be resolved")
	}
	abs, err := filepath.Abs(cfg.WorkspaceRoot)
	if err != nil {
		return nil, domain.NewConfigError("resolve workspace %s: %v", cfg.WorkspaceRoot, err)
	}
	cfg.WorkspaceRoot = abs

	if err := cfg.loadFile(flags.ConfigFile); err != nil {
		return nil, err
	}

	dotenv, err := readDotenv(filepath.Join(cfg.WorkspaceRoot, DefaultEnvFile))
	if err != nil {
		return nil, err
	}
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}

	// Apply flag overrides
	if flags.Python != "" {
		cfg.Python = flags.Python
	}
	if flags.Script != "" {
		cfg.ScriptPath = flags.Script
	}
	if flags.Verbose {
		cfg.LogLevel = "debug"
	}
	if cfg.LoadConcurrency < 1 {
		cfg.LoadConcurrency = 1
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = filepath.Join(c.WorkspaceRoot, DefaultConfigFile)
	} else if !filepath.IsAbs(path) {
		path = filepath.Join(c.WorkspaceRoot, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil
		}
		return domain.NewConfigError("read config %s: %v", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return domain.NewConfigError("parse config %s: %v", path, err)
	}
	return nil
}

func readDotenv(path string) (map[string]string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, domain.NewConfigError("read %s: %v", path, err)
	}
	return values, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"VTP_PYTHON":        &c.Python,
		"VTP_SCRIPT_NAME":   &c.ScriptName,
		"VTP_SCRIPT_GLOB":   &c.ScriptGlob,
		"VTP_SCRIPT_PATH":   &c.ScriptPath,
		"VTP_LIST_OPTIONS":  &c.ListOptions,
		"VTP_SHELL_OPTIONS": &c.ShellOptions,
		"VTP_GUI_OPTIONS":   &c.GUIOptions,
		"VTP_EXPORT_DIR":    &c.ExportDir,
		"VTP_LOG_LEVEL":     &c.LogLevel,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	bools := map[string]*bool{
		"VTP_MATCH_PROBLEMS":                 &c.MatchProblems,
		"VTP_MATCH_ASSERTION_FAILURE":        &c.MatchAssertionFailure,
		"VTP_SHOW_EXECUTION_TIME":            &c.ShowExecutionTime,
		"VTP_EXECUTE_MULTIPLE_GUI_TESTCASES": &c.ExecuteMultipleGUITestcases,
	}
	for key, dst := range bools {
		v, ok := lookup(key)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return domain.NewConfigError("%s: invalid boolean %q", key, v)
		}
		*dst = b
	}

	if v, ok := lookup("VTP_SCRIPT_EXCLUDE"); ok {
		c.ScriptExclude = splitList(v)
	}
	if v, ok := lookup("VTP_LOAD_CONCURRENCY"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return domain.NewConfigError("VTP_LOAD_CONCURRENCY: invalid number %q", v)
		}
		c.LoadConcurrency = n
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// GetScriptPath returns the absolute explicit script path, or "" when
// discovery should be used.
func (c *Config) GetScriptPath() string {
	if c.ScriptPath == "" {
		return ""
	}
	if filepath.IsAbs(c.ScriptPath) {
		return c.ScriptPath
	}
	return filepath.Join(c.WorkspaceRoot, c.ScriptPath)
}

// GetStatePath returns the directory holding the output log and run record
func (c *Config) GetStatePath() string {
	if filepath.IsAbs(c.StateDir) {
		return c.StateDir
	}
	return filepath.Join(c.WorkspaceRoot, c.StateDir)
}

// GetOutputLogPath returns the full path of the output channel log file
func (c *Config) GetOutputLogPath() string {
	return filepath.Join(c.GetStatePath(), DefaultOutputLogFile)
}

// GetLastRunPath returns the full path of the stored run record
func (c *Config) GetLastRunPath() string {
	return filepath.Join(c.GetStatePath(), DefaultLastRunFile)
}

// RelativeToWorkspace returns path relative to the workspace when possible
func (c *Config) RelativeToWorkspace(path string) string {
	rel, err := filepath.Rel(c.WorkspaceRoot, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}

func (c *Config) String() string {
	return fmt.Sprintf("workspace=%s python=%s script=%q glob=%s", c.WorkspaceRoot, c.Python, c.ScriptPath, c.ScriptGlob)
}
