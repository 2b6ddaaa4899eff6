package config

import (
	"os"
	"path/filepath"
)

const (
	// DefaultPython is the interpreter used to execute run scripts
	DefaultPython = "python"
	// DefaultScriptName is the file name of a VUnit run script
	DefaultScriptName = "run.py"
	// DefaultScriptGlob selects run scripts relative to the workspace
	DefaultScriptGlob = "**/run.py"
	// DefaultStateDir holds the output log and the last run record
	DefaultStateDir = ".vtp"
	// DefaultConfigFile is looked up in the workspace root
	DefaultConfigFile = ".vtp.yaml"
	// DefaultEnvFile is looked up in the workspace root
	DefaultEnvFile = ".env"
	// DefaultOutputLogFile receives raw tool output
	DefaultOutputLogFile = "output.log"
	// DefaultLastRunFile stores the last run record
	DefaultLastRunFile = "last-run.json"
	// DefaultLoadConcurrency is the number of exports loaded in parallel
	DefaultLoadConcurrency = 4
	// DefaultLogLevel is used when neither --verbose nor VTP_LOG_LEVEL is set
	DefaultLogLevel = "warn"
)

// DefaultScriptExclude keeps the VUnit sources and examples out of discovery
var DefaultScriptExclude = []string{
	"**/{vunit,examples,acceptance/artificial}/{vhdl,verilog}/**",
}

// DefaultSkipDirs are directories never scanned or watched
var DefaultSkipDirs = []string{
	"node_modules",
	"vunit_out",
	"__pycache__",
}

// DefaultExportDir returns the directory for temporary export files
func DefaultExportDir() string {
	return filepath.Join(os.TempDir(), "vtp")
}
