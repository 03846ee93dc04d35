package logging

import (
	"log/slog"
	"os"
)

// Setup installs a JSON stdout logger as the slog default. Development
// builds log at DEBUG.
func Setup(production bool) {
	level := slog.LevelDebug
	if production {
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(NewStdoutHandler(level)))
}

func NewStdoutHandler(level slog.Level) slog.Handler {
	return slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
}
