package engine

import "github.com/edutrack/attreg/internal/models"

// CompletionKind is the closed set of completion condition kinds.
type CompletionKind int

const (
	// CompletionNone: no condition configured, completion untracked.
	CompletionNone CompletionKind = iota
	// CompletionTotalDuration: total attended duration must reach a
	// minute threshold.
	CompletionTotalDuration
)

// CompletionCondition is a condition kind with its typed payload.
type CompletionCondition struct {
	Kind              CompletionKind
	TotalDurationMins int
}

// CompletionConditionFor derives the register's configured condition.
func CompletionConditionFor(register *models.Register) CompletionCondition {
	if register.CompletionTotalDurationMins > 0 {
		return CompletionCondition{
			Kind:              CompletionTotalDuration,
			TotalDurationMins: register.CompletionTotalDurationMins,
		}
	}
	return CompletionCondition{Kind: CompletionNone}
}

// Met evaluates the condition against a total attended duration in
// seconds. A zero duration never completes.
func (c CompletionCondition) Met(totalDurationSecs int64) bool {
	switch c.Kind {
	case CompletionTotalDuration:
		if totalDurationSecs <= 0 {
			return false
		}
		return float64(totalDurationSecs)/60.0 >= float64(c.TotalDurationMins)
	case CompletionNone:
		return false
	}
	return false
}
