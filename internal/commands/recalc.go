package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edutrack/attreg/internal/engine"
)

var recalcCmd = &cobra.Command{
	Use:   "recalc",
	Short: "Force session recalculation",
	Long: `Force a full rebuild of calculated sessions, bypassing the
incremental cursor. With --user a single user is rebuilt; without it
every tracked user of the register is rebuilt in turn.

Examples:
  attreg recalc --register 3 --user 42
  attreg recalc --register 3`,
	Run: withEngine(func(eng *engine.Engine, cmd *cobra.Command, args []string) {
		registerID, _ := cmd.Flags().GetUint("register")
		userID, _ := cmd.Flags().GetInt64("user")
		keepOldData, _ := cmd.Flags().GetBool("keep-old-data")

		register, err := eng.Store().GetRegister(registerID)
		if err != nil {
			fail(err)
		}

		if userID != 0 {
			if err := eng.RecalcUser(register, userID, !keepOldData); err != nil {
				fail(err)
			}
			fmt.Printf("Recalculated sessions of user %d in register #%d\n", userID, register.ID)
			return
		}

		if err := eng.RecalcAllInRegister(register); err != nil {
			fail(err)
		}
		fmt.Printf("Recalculated all tracked users of register #%d\n", register.ID)
	}),
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Schedule a deferred full recalculation",
	Long: `Mark a register for full recalculation on the next batch tick
instead of rebuilding it immediately.`,
	Run: withEngine(func(eng *engine.Engine, cmd *cobra.Command, args []string) {
		registerID, _ := cmd.Flags().GetUint("register")

		register, err := eng.Store().GetRegister(registerID)
		if err != nil {
			fail(err)
		}
		if register.PendingRecalc {
			fmt.Printf("Register #%d already has a recalculation pending\n", register.ID)
			return
		}
		if err := eng.Store().SetPendingRecalc(register.ID, true); err != nil {
			fail(err)
		}
		fmt.Printf("Register #%d scheduled for recalculation on the next run\n", register.ID)
	}),
}

func init() {
	recalcCmd.Flags().Uint("register", 0, "Register ID")
	recalcCmd.Flags().Int64("user", 0, "User ID (omit to recalculate all tracked users)")
	recalcCmd.Flags().Bool("keep-old-data", false, "Keep existing sessions and aggregates instead of wiping them first")
	_ = recalcCmd.MarkFlagRequired("register")

	scheduleCmd.Flags().Uint("register", 0, "Register ID")
	_ = scheduleCmd.MarkFlagRequired("register")
}
