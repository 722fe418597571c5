package log

import (
	"fmt"
	"log/slog"
	"strings"
)

// Level is a log severity. Its values are slog's, so conversion is free.
type Level slog.Level

const (
	LevelDebug = Level(slog.LevelDebug)
	LevelInfo  = Level(slog.LevelInfo)
	LevelWarn  = Level(slog.LevelWarn)
	LevelError = Level(slog.LevelError)
)

func (l Level) String() string {
	return slog.Level(l).String()
}

// ToSlogLevel converts l to slog.Level.
func (l Level) ToSlogLevel() slog.Level {
	return slog.Level(l)
}

// ParseLevel reads a level name from a flag or config file, falling back
// to INFO for names LookupLevel rejects.
func ParseLevel(s string) Level {
	l, err := LookupLevel(s)
	if err != nil {
		return LevelInfo
	}
	return l
}

// LookupLevel parses debug, info, warn (or warning) and error, in any case.
func LookupLevel(s string) (Level, error) {
	name := strings.TrimSpace(s)
	if strings.EqualFold(name, "warning") {
		name = "warn"
	}

	var l slog.Level
	if err := l.UnmarshalText([]byte(name)); err != nil {
		return LevelInfo, fmt.Errorf("unknown log level %q (supported: debug, info, warn, error)", s)
	}
	return Level(l), nil
}
