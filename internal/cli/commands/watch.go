package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"vtp/internal/watch"
)

// WatchCommand handles the watch command
type WatchCommand struct {
	deps func() *Services
}

// NewWatchCommand creates a new WatchCommand
func NewWatchCommand(deps func() *Services) *WatchCommand {
	return &WatchCommand{deps: deps}
}

// Execute runs the command until interrupted
func (wc *WatchCommand) Execute(cmd *cobra.Command, args []string) error {
	s := wc.deps()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session := s.NewSession(nil)
	t, err := session.LoadTests(ctx)
	if err != nil {
		return err
	}
	s.Formatter.PrintTree(t)

	reload := make(chan struct{}, 1)
	w := watch.New(s.Config.WorkspaceRoot, s.Config.ScriptName, s.Scanner.SkipDir, s.Log)
	err = w.Start(ctx, func() {
		select {
		case reload <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return err
	}

	color.Cyan("\nWatching %s for changes to %s (Ctrl+C to stop)", s.Config.WorkspaceRoot, s.Config.ScriptName)
	for {
		select {
		case <-ctx.Done():
			<-w.Done()
			return nil
		case <-reload:
			t, err := session.LoadTests(ctx)
			if err != nil {
				color.Red("Failed to reload tests: %v", err)
				continue
			}
			color.Cyan("\nRun scripts changed, reloaded:\n")
			s.Formatter.PrintTree(t)
		}
	}
}
