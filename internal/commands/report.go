package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/edutrack/attreg/internal/engine"
	"github.com/edutrack/attreg/internal/models"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List a user's sessions",
	Long:  "List all recorded sessions of a user in a register, newest login first",
	Run: withEngine(func(eng *engine.Engine, cmd *cobra.Command, args []string) {
		registerID, _ := cmd.Flags().GetUint("register")
		userID, _ := cmd.Flags().GetInt64("user")

		sessions, err := eng.Store().UserSessions(registerID, userID)
		if err != nil {
			fail(err)
		}
		if len(sessions) == 0 {
			fmt.Printf("No sessions recorded for user %d in register #%d\n", userID, registerID)
			return
		}

		fmt.Printf("%-6s %-20s %-20s %-10s %-8s %-10s %s\n",
			"ID", "LOGIN", "LOGOUT", "DURATION", "KIND", "REFCOURSE", "COMMENTS")
		fmt.Println(strings.Repeat("-", 90))
		for _, session := range sessions {
			kind := "online"
			refCourse := ""
			if !session.Online {
				kind = "offline"
				if session.RefCourseID != nil {
					refCourse = fmt.Sprintf("%d", *session.RefCourseID)
				}
			}
			comments := session.Comments
			if len(comments) > 25 {
				comments = comments[:22] + "..."
			}
			fmt.Printf("%-6d %-20s %-20s %-10s %-8s %-10s %s\n",
				session.ID,
				formatTimestamp(session.Login),
				formatTimestamp(session.Logout),
				formatDuration(session.Duration),
				kind,
				refCourse,
				comments)
		}
	}),
}

var aggregatesCmd = &cobra.Command{
	Use:   "aggregates",
	Short: "Show attendance totals",
	Long: `Show aggregate duration rows. With --user, all rows of that user
including per-course offline subtotals; without it, the summary totals of
every tracked user in the register.`,
	Run: withEngine(func(eng *engine.Engine, cmd *cobra.Command, args []string) {
		registerID, _ := cmd.Flags().GetUint("register")
		userID, _ := cmd.Flags().GetInt64("user")

		var aggregates []models.Aggregate
		var err error
		if userID != 0 {
			aggregates, err = eng.Store().UserAggregates(registerID, userID)
		} else {
			aggregates, err = eng.Store().RegisterAggregateSummaries(registerID)
		}
		if err != nil {
			fail(err)
		}
		if len(aggregates) == 0 {
			fmt.Printf("No aggregates in register #%d yet\n", registerID)
			return
		}

		fmt.Printf("%-8s %-18s %-10s %-10s %s\n",
			"USER", "KIND", "REFCOURSE", "DURATION", "LAST LOGOUT")
		fmt.Println(strings.Repeat("-", 70))
		for _, aggregate := range aggregates {
			refCourse := ""
			if aggregate.RefCourseID != nil {
				refCourse = fmt.Sprintf("%d", *aggregate.RefCourseID)
			}
			lastLogout := ""
			if aggregate.Kind == models.AggregateGrandTotal {
				lastLogout = "never"
				if aggregate.LastSessionLogout > 0 {
					lastLogout = formatTimestamp(aggregate.LastSessionLogout)
				}
			}
			fmt.Printf("%-8d %-18s %-10s %-10s %s\n",
				aggregate.UserID,
				aggregate.Kind,
				refCourse,
				formatDuration(aggregate.Duration),
				lastLogout)
		}
	}),
}

// formatDuration renders a duration in seconds as hours and minutes.
func formatDuration(seconds int64) string {
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

func formatTimestamp(ts int64) string {
	return time.Unix(ts, 0).Format("2006-01-02 15:04:05")
}

func init() {
	sessionsCmd.Flags().Uint("register", 0, "Register ID")
	sessionsCmd.Flags().Int64("user", 0, "User ID")
	_ = sessionsCmd.MarkFlagRequired("register")
	_ = sessionsCmd.MarkFlagRequired("user")

	aggregatesCmd.Flags().Uint("register", 0, "Register ID")
	aggregatesCmd.Flags().Int64("user", 0, "User ID (omit for the whole register)")
	_ = aggregatesCmd.MarkFlagRequired("register")
}
