package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vtp/internal/cli"
	"vtp/internal/cli/commands"
	"vtp/internal/config"
	"vtp/internal/logger"
)

var version = "dev"

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:   "vtp",
		Short: "VUnit test processor",
		Long: `Discover VUnit run scripts, show their test tree, run libraries, testbenches or single
test cases and collect the problems reported by the simulator.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Logs go to stderr, the level is raised once the configuration is loaded
	log := logger.New(config.DefaultLogLevel, os.Stderr)

	// Create flags struct (will be populated by command flags)
	var flags cli.Flags

	// Create commands and register them
	cmds := commands.NewCommands(log)
	cmds.Register(rootCmd, &flags)

	err := rootCmd.ExecuteContext(context.Background())
	if cerr := cmds.Close(); cerr != nil {
		log.Warnf("%v", cerr)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
