package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ProblemsCommand handles the problems command
type ProblemsCommand struct {
	deps func() *Services
}

// NewProblemsCommand creates a new ProblemsCommand
func NewProblemsCommand(deps func() *Services) *ProblemsCommand {
	return &ProblemsCommand{deps: deps}
}

// Execute runs the command
func (pc *ProblemsCommand) Execute(cmd *cobra.Command, args []string) error {
	s := pc.deps()

	record, err := s.Storage.Load()
	if err != nil {
		return fmt.Errorf("no results of a previous run: %w", err)
	}

	if s.Config.Flags.Plain {
		s.Formatter.PrintDiagnostics(record.Diagnostics)
		s.Formatter.PrintFailures(record)
		return nil
	}
	return s.Viewer.View(record)
}
