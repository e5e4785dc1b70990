package consolelog

import (
	"time"
)

// Level names used by the WebDriver browser log.
const (
	SevereName  string = "SEVERE"
	WarningName string = "WARNING"
	InfoName    string = "INFO"
	DebugName   string = "DEBUG"
)

// Level is a log entry severity, named the way WebDriver names them.
type Level struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

var (
	LevelSevere  = &Level{Name: SevereName, Value: 1000}
	LevelWarning = &Level{Name: WarningName, Value: 900}
	LevelInfo    = &Level{Name: InfoName, Value: 800}
	LevelDebug   = &Level{Name: DebugName, Value: 700}
)

// Entry is a single browser console log line.
// Entries with a nil Level are malformed and never counted as warnings or errors.
type Entry struct {
	Level     *Level    `json:"level,omitempty"`
	Message   string    `json:"message"`
	Source    string    `json:"source,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// LevelName returns the entry level name or an empty string for malformed entries.
func (e *Entry) LevelName() string {
	if e.Level == nil {
		return ""
	}
	return e.Level.Name
}
