package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edutrack/attreg/internal/engine"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one batch tick",
	Long: `Run pending batch work once: purge orphaned locks, process new
activity-log events into sessions, and serve any scheduled full
recalculations. Meant to be triggered periodically by cron or a systemd
timer; a tick that finds a register mid-recalculation skips the batch
and the next tick picks it up.`,
	Run: withEngine(func(eng *engine.Engine, cmd *cobra.Command, args []string) {
		if err := eng.Run(); err != nil {
			fail(err)
		}
		fmt.Println("Batch tick complete")
	}),
}
