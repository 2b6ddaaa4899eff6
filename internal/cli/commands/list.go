package commands

import (
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// ListCommand handles the list command
type ListCommand struct {
	deps func() *Services
}

// NewListCommand creates a new ListCommand
func NewListCommand(deps func() *Services) *ListCommand {
	return &ListCommand{deps: deps}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	s := lc.deps()
	session := s.NewSession(nil)

	t, err := session.LoadTests(cmd.Context())
	if err != nil {
		return err
	}
	if v := session.Version(); v != "" {
		color.Cyan("VUnit %s\n", v)
	}

	pattern := s.Config.Flags.NameFilter
	if pattern == "" {
		s.Formatter.PrintTree(t)
		return nil
	}

	var names []string
	for _, root := range t.Roots() {
		for _, leaf := range t.Leaves(root.ID) {
			names = append(names, leaf.Name)
		}
	}
	names = s.Filter.FilterByName(names, pattern)
	if len(names) == 0 {
		color.Yellow("No tests found")
		return nil
	}

	sort.Strings(names)
	color.Green("Found %d test case(s):\n", len(names))
	for _, name := range names {
		fmt.Fprintln(cmd.OutOrStdout(), name)
	}
	return nil
}
