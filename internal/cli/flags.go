package cli

import "vtp/internal/config"

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

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		Workspace:  f.Workspace,
		ConfigFile: f.ConfigFile,
		Python:     f.Python,
		Script:     f.Script,
		Verbose:    f.Verbose,
		NameFilter: f.NameFilter,
		Exclude:    f.Exclude,
		GUI:        f.GUI,
		Plain:      f.Plain,
	}
}
