package diag

// Level defines the importance of a message.
type Level uint8

const (
	// LevelNote is for informational messages.
	LevelNote Level = iota
	// LevelWarning is for advisory messages that never fail a run.
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelNote:
		return "note"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	}
	return "unknown"
}

// ParseLevel is the inverse of String.
func ParseLevel(s string) (Level, bool) {
	switch s {
	case "note":
		return LevelNote, true
	case "warning":
		return LevelWarning, true
	case "error":
		return LevelError, true
	}
	return 0, false
}
