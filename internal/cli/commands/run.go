package commands

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"vtp/internal/explorer"
	"vtp/internal/tree"
	"vtp/internal/ui"
)

// RunCommand handles the run command
type RunCommand struct {
	deps func() *Services
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(deps func() *Services) *RunCommand {
	return &RunCommand{deps: deps}
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	s := rc.deps()
	flags := s.Config.Flags

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	progress := ui.NewProgressReporter(nil)
	session := s.NewSession(progress)

	t, err := session.LoadTests(ctx)
	if err != nil {
		return err
	}
	if len(t.Roots()) == 0 {
		color.Yellow("No VUnit run scripts found")
		return nil
	}

	include, err := Select(t, s.Filter.Match, args, flags.NameFilter)
	if err != nil {
		return err
	}
	exclude, err := Select(t, nil, flags.Exclude, "")
	if err != nil {
		return err
	}

	var bar *ui.ProgressBar
	if !flags.GUI {
		bar = ui.NewProgressBar(CountSelected(t, include, exclude), cmd.ErrOrStderr())
		progress.SetBar(bar)
	}

	record, err := session.RunTests(ctx, explorer.RunRequest{
		Include: include,
		Exclude: exclude,
		GUI:     flags.GUI,
	})
	if bar != nil {
		bar.Finish()
	}
	if errors.Is(err, explorer.ErrMultipleGUIDisabled) {
		color.Yellow(err.Error())
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.Storage.Save(record); err != nil {
		return fmt.Errorf("failed to save test results: %w", err)
	}

	s.Formatter.PrintSummary(record)
	if failed := record.Meta.Failed + record.Meta.Errored; failed > 0 {
		return fmt.Errorf("%d test case(s) did not pass", failed)
	}
	return nil
}

// Select resolves names and ids to node ids. A name matches a node id or a
// dotted test name. When pattern is set, the test cases matching it are
// added using match.
func Select(t *tree.Tree, match func(name, pattern string) bool, names []string, pattern string) ([]string, error) {
	var ids []string
	seen := make(map[string]bool)
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	for _, name := range names {
		nodes := t.FindByName(name)
		if len(nodes) == 0 {
			return nil, fmt.Errorf("no test matches %q", name)
		}
		for _, n := range nodes {
			add(n.ID)
		}
	}

	if pattern != "" && match != nil {
		found := false
		for _, root := range t.Roots() {
			for _, leaf := range t.Leaves(root.ID) {
				if match(leaf.Name, pattern) {
					add(leaf.ID)
					found = true
				}
			}
		}
		if !found {
			return nil, fmt.Errorf("no test matches pattern %q", pattern)
		}
	}
	return ids, nil
}

// CountSelected returns the number of test cases a run of include covers
// when the excluded ids are left out. An empty include covers every script.
func CountSelected(t *tree.Tree, include, exclude []string) int {
	if len(include) == 0 {
		for _, root := range t.Roots() {
			include = append(include, root.ID)
		}
	}

	seen := make(map[string]bool)
	for _, id := range include {
		for _, leaf := range t.Leaves(id) {
			if !isExcluded(t, exclude, leaf.ID) {
				seen[leaf.ID] = true
			}
		}
	}
	return len(seen)
}

func isExcluded(t *tree.Tree, exclude []string, id string) bool {
	for _, ex := range exclude {
		if t.Contains(ex, id) {
			return true
		}
	}
	return false
}
