package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"vtp/internal/cli"
	"vtp/internal/config"
	"vtp/internal/diagnostics"
	"vtp/internal/discovery"
	"vtp/internal/execution"
	"vtp/internal/explorer"
	"vtp/internal/logger"
	"vtp/internal/output"
	"vtp/internal/storage"
	"vtp/internal/tree"
	"vtp/internal/ui"
)

// Services holds the engines shared by the commands. They are built once the
// configuration is loaded.
type Services struct {
	Config    *config.Config
	Log       *logrus.Logger
	Output    *output.Channel
	Scanner   *discovery.Scanner
	Filter    *discovery.Filter
	Runner    *execution.Runner
	Builder   *tree.Builder
	Storage   storage.Storage
	Formatter *ui.Formatter
	Viewer    ui.Viewer
}

// NewServices wires the engines for cfg
func NewServices(cfg *config.Config, log *logrus.Logger, stdout io.Writer) (*Services, error) {
	scanner := discovery.NewScanner(cfg.SkipDirs, cfg.ScriptGlob, cfg.ScriptExclude)
	if err := scanner.Validate(); err != nil {
		return nil, err
	}

	var mirror io.Writer
	if cfg.Flags.Verbose {
		mirror = os.Stderr
	}
	out, err := output.Open(cfg.GetOutputLogPath(), mirror)
	if err != nil {
		log.Warnf("output log disabled: %v", err)
		out = output.Discard()
	}

	runner := execution.NewRunner(cfg, out, log)
	exporter := execution.NewExporter(cfg, runner, log)

	return &Services{
		Config:    cfg,
		Log:       log,
		Output:    out,
		Scanner:   scanner,
		Filter:    discovery.NewFilter(),
		Runner:    runner,
		Builder:   tree.NewBuilder(cfg, exporter, log),
		Storage:   storage.NewJSONStorage(cfg),
		Formatter: ui.NewFormatter(cfg, stdout),
		Viewer:    ui.NewProblemsViewer(cfg),
	}, nil
}

// NewSession creates an explorer session reporting to reporter
func (s *Services) NewSession(reporter explorer.Reporter) *explorer.Session {
	return explorer.NewSession(s.Config, s.Scanner, s.Runner, s.Builder, nil, diagnostics.NewAggregator(), reporter, s.Log)
}

// Close releases the output log
func (s *Services) Close() error {
	return s.Output.Close()
}

// Commands holds all CLI commands
type Commands struct {
	log      *logrus.Logger
	services *Services

	Run      *RunCommand
	List     *ListCommand
	Problems *ProblemsCommand
	Watch    *WatchCommand
}

// NewCommands creates all commands. Their dependencies are resolved when a
// command starts.
func NewCommands(log *logrus.Logger) *Commands {
	c := &Commands{log: log}
	deps := func() *Services { return c.services }
	c.Run = NewRunCommand(deps)
	c.List = NewListCommand(deps)
	c.Problems = NewProblemsCommand(deps)
	c.Watch = NewWatchCommand(deps)
	return c
}

// Close releases what the last command opened
func (c *Commands) Close() error {
	if c.services == nil {
		return nil
	}
	if err := c.services.Close(); err != nil {
		return fmt.Errorf("failed to close output log: %w", err)
	}
	return nil
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags) {
	rootCmd.PersistentFlags().StringVarP(&flags.Workspace, "workspace", "w", "", "Workspace folder to search for VUnit run scripts (default: current directory)")
	rootCmd.PersistentFlags().StringVarP(&flags.ConfigFile, "config", "c", "", "Settings file (default: <workspace>/"+config.DefaultConfigFile+")")
	rootCmd.PersistentFlags().StringVar(&flags.Python, "python", "", "Python interpreter used to run the scripts")
	rootCmd.PersistentFlags().StringVarP(&flags.Script, "script", "s", "", "Run script relative to the workspace, disables discovery")
	rootCmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Debug logging and VUnit output on stderr")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flags.ToConfigFlags())
		if err != nil {
			return err
		}
		logger.SetLevel(c.log, cfg.LogLevel)
		c.log.Debugf("configuration: %s", cfg)

		services, err := NewServices(cfg, c.log, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		c.services = services
		return nil
	}
	// Run command
	runCmd := &cobra.Command{
		Use:   "run [name|id ...]",
		Short: "Run VUnit tests",
		Long:  "Load the test tree and run every script, or only the named libraries, testbenches and test cases",
		RunE:  c.Run.Execute,
	}
	runCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Run the test cases whose name matches the pattern (supports wildcards, e.g. 'lib.tb_uart.*')")
	runCmd.Flags().StringSliceVarP(&flags.Exclude, "exclude", "x", nil, "Leave out the named tests")
	runCmd.Flags().BoolVarP(&flags.GUI, "gui", "g", false, "Open the simulator GUI")
	rootCmd.AddCommand(runCmd)

	// List command
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List discovered tests",
		Long:  "Discover the VUnit run scripts and print their test tree without running anything",
		RunE:  c.List.Execute,
	}
	listCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Only list test cases whose name matches the pattern")
	rootCmd.AddCommand(listCmd)

	// Problems command
	problemsCmd := &cobra.Command{
		Use:   "problems",
		Short: "View problems of the last run",
		Long:  "Display the diagnostics and failed test cases of the last run in an interactive viewer",
		RunE:  c.Problems.Execute,
	}
	problemsCmd.Flags().BoolVar(&flags.Plain, "plain", false, "Print the problems instead of opening the viewer")
	rootCmd.AddCommand(problemsCmd)

	// Watch command
	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Reload the test tree when run scripts change",
		Long:  "Print the test tree and print it again whenever a run script is created, removed, renamed or modified",
		RunE:  c.Watch.Execute,
	}
	rootCmd.AddCommand(watchCmd)
}
