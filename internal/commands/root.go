package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/edutrack/attreg/internal/config"
	"github.com/edutrack/attreg/internal/engine"
	"github.com/edutrack/attreg/internal/store"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "attreg",
	Short: "Attendance session tracker",
	Long: `attreg reconstructs attendance sessions from raw activity-log events.
A periodic 'attreg run' groups each tracked user's events into sessions and
keeps per-user attendance totals up to date; the other commands inspect or
rebuild that data.`,
}

// withEngine wraps a command function: it loads the configuration,
// opens the store and hands a ready engine to fn. Errors end the
// process with a non-zero status so schedulers notice failed runs.
func withEngine(fn func(eng *engine.Engine, cmd *cobra.Command, args []string)) func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(configPath)
		if err != nil {
			fail(err)
		}
		st, err := store.Open(cfg.DBPath)
		if err != nil {
			fail(err)
		}
		defer st.Close()

		eng := engine.New(st, st, engine.Options{
			EventFetchLimit:     cfg.EventFetchLimit,
			OrphanLockDelaySecs: cfg.OrphanLockDelaySecs,
		})
		fn(eng, cmd, args)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// SetVersion sets the version information
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default ~/.attreg/config.toml)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(recalcCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(aggregatesCmd)
	rootCmd.AddCommand(offlineCmd)
	rootCmd.AddCommand(versionCmd)
}
