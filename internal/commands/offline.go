package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edutrack/attreg/internal/engine"
)

var offlineCmd = &cobra.Command{
	Use:   "offline",
	Short: "Manage self-certified offline sessions",
}

var offlineAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a self-certified offline session",
	Long: `Record attendance that happened away from the platform. The session
is validated against the register's rules (certifiable window, maximum
length, no overlap with recorded sessions) and attendance totals are
updated immediately.

Example:
  attreg offline add --register 3 --user 42 --login 1700000000 --logout 1700003600 --course 7 --comments "field work"`,
	Run: withEngine(func(eng *engine.Engine, cmd *cobra.Command, args []string) {
		registerID, _ := cmd.Flags().GetUint("register")
		userID, _ := cmd.Flags().GetInt64("user")
		login, _ := cmd.Flags().GetInt64("login")
		logout, _ := cmd.Flags().GetInt64("logout")
		courseID, _ := cmd.Flags().GetInt64("course")
		comments, _ := cmd.Flags().GetString("comments")
		addedBy, _ := cmd.Flags().GetInt64("added-by")

		register, err := eng.Store().GetRegister(registerID)
		if err != nil {
			fail(err)
		}

		req := engine.OfflineSessionRequest{
			UserID:   userID,
			Login:    login,
			Logout:   logout,
			Comments: comments,
		}
		if courseID != 0 {
			req.RefCourseID = &courseID
		}
		if addedBy != 0 {
			req.AddedByUserID = &addedBy
		}

		session, err := eng.AddOfflineSession(register, req)
		if err != nil {
			fail(err)
		}
		fmt.Printf("Recorded offline session #%d (%s) for user %d\n",
			session.ID, formatDuration(session.Duration), userID)
	}),
}

var offlineDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a self-certified offline session",
	Run: withEngine(func(eng *engine.Engine, cmd *cobra.Command, args []string) {
		registerID, _ := cmd.Flags().GetUint("register")
		userID, _ := cmd.Flags().GetInt64("user")
		sessionID, _ := cmd.Flags().GetUint("session")

		register, err := eng.Store().GetRegister(registerID)
		if err != nil {
			fail(err)
		}
		if err := eng.DeleteOfflineSession(register, userID, sessionID); err != nil {
			fail(err)
		}
		fmt.Printf("Deleted offline session #%d of user %d\n", sessionID, userID)
	}),
}

func init() {
	offlineAddCmd.Flags().Uint("register", 0, "Register ID")
	offlineAddCmd.Flags().Int64("user", 0, "User ID")
	offlineAddCmd.Flags().Int64("login", 0, "Session start, unix seconds")
	offlineAddCmd.Flags().Int64("logout", 0, "Session end, unix seconds")
	offlineAddCmd.Flags().Int64("course", 0, "Reference course ID (optional)")
	offlineAddCmd.Flags().String("comments", "", "Comments (optional)")
	offlineAddCmd.Flags().Int64("added-by", 0, "Certifying user when added on behalf of someone else")
	for _, name := range []string{"register", "user", "login", "logout"} {
		_ = offlineAddCmd.MarkFlagRequired(name)
	}

	offlineDeleteCmd.Flags().Uint("register", 0, "Register ID")
	offlineDeleteCmd.Flags().Int64("user", 0, "User ID")
	offlineDeleteCmd.Flags().Uint("session", 0, "Session ID")
	for _, name := range []string{"register", "user", "session"} {
		_ = offlineDeleteCmd.MarkFlagRequired(name)
	}

	offlineCmd.AddCommand(offlineAddCmd)
	offlineCmd.AddCommand(offlineDeleteCmd)
}
