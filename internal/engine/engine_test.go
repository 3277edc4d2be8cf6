package engine

import (
	"path/filepath"
	"testing"

	"github.com/edutrack/attreg/internal/models"
	"github.com/edutrack/attreg/internal/store"
)

// newTestEngine opens a fresh store and wires an engine with a frozen
// clock.
func newTestEngine(t *testing.T, now int64, fetchLimit int) (*Engine, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "attreg.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	eng := New(st, st, Options{
		EventFetchLimit: fetchLimit,
		Now:             func() int64 { return now },
	})
	return eng, st
}

// seedRegister creates a course-type register tracking the given course
// with one roster entry per user.
func seedRegister(t *testing.T, st *store.Store, courseID int64, timeoutMins int, userIDs ...int64) *models.Register {
	t.Helper()
	if err := st.AddCourse(&models.Course{ID: courseID, CategoryID: 1, FullName: "Course"}); err != nil {
		t.Fatalf("add course: %v", err)
	}
	register := &models.Register{
		Name:               "Register",
		CourseID:           courseID,
		Type:               models.RegisterTypeCourse,
		SessionTimeoutMins: timeoutMins,
	}
	if err := st.CreateRegister(register); err != nil {
		t.Fatalf("create register: %v", err)
	}
	for _, userID := range userIDs {
		if err := st.AddTrackedUser(courseID, userID); err != nil {
			t.Fatalf("add tracked user: %v", err)
		}
	}
	return register
}

func seedEvents(t *testing.T, st *store.Store, courseID, userID int64, timestamps ...int64) {
	t.Helper()
	events := make([]models.Event, len(timestamps))
	for i, ts := range timestamps {
		events[i] = models.Event{UserID: userID, CourseID: courseID, Timestamp: ts}
	}
	if err := st.AppendEvents(events); err != nil {
		t.Fatalf("append events: %v", err)
	}
}

func mustSessions(t *testing.T, st *store.Store, registerID uint, userID int64) []models.Session {
	t.Helper()
	sessions, err := st.UserSessions(registerID, userID)
	if err != nil {
		t.Fatalf("load sessions: %v", err)
	}
	return sessions
}

func mustCursor(t *testing.T, st *store.Store) int64 {
	t.Helper()
	cursor, err := st.LastParsedEventID()
	if err != nil {
		t.Fatalf("load cursor: %v", err)
	}
	return cursor
}
