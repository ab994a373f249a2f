// Command followgraph turns HAR captures of "following" lists into a Gephi
// follow graph.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/followgraph/internal/config"
	"github.com/alfredjeanlab/followgraph/internal/logging"
	"github.com/alfredjeanlab/followgraph/internal/pipeline"
)

var (
	configPath   string
	inputDir     string
	documentsDir string
	outputDir    string
	accountsFile string
	logLevel     string

	cfg       *config.Config
	logger    *slog.Logger
	closeLogs func() error
)

var rootCmd = &cobra.Command{
	Use:           "followgraph <command>",
	Short:         "Build a follow graph from browser HAR captures",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(cmd); err != nil {
			return err
		}
		l, closeFn, err := logging.Setup(os.Stderr, cfg.LogPath(), cfg.LogLevel)
		if err != nil {
			return err
		}
		logger, closeLogs = l, closeFn
		return nil
	},
}

// loadConfig reads .env, the config file, and the environment, then applies
// flag overrides.
func loadConfig(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	applyFlags(cmd, c)
	if err := c.Validate(); err != nil {
		return err
	}
	cfg = c
	return nil
}

// applyFlags overrides loaded settings with flags the user set explicitly.
func applyFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	for name, dst := range map[string]*string{
		"input":     &c.InputDir,
		"documents": &c.DocumentsDir,
		"output":    &c.OutputDir,
		"accounts":  &c.AccountsFile,
		"log-level": &c.LogLevel,
	} {
		if f := flags.Lookup(name); f != nil && f.Changed {
			*dst = f.Value.String()
		}
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "config file (default "+config.DefaultFile+" if present)")
	pf.StringVar(&inputDir, "input", "", "directory of .har captures")
	pf.StringVar(&documentsDir, "documents", "", "directory of per-account documents")
	pf.StringVar(&outputDir, "output", "", "directory for nodes.csv and edges.csv")
	pf.StringVar(&accountsFile, "accounts", "", "known accounts JSON file")
	pf.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddGroup(
		&cobra.Group{ID: "pipeline", Title: "Pipeline:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)
	cobra.EnableCommandSorting = false

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if closeLogs != nil {
		closeLogs()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(pipeline.ExitCode(err))
}
