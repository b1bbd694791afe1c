package telemetry

import (
	"log/slog"
	"os"
)

// InitSlog installs the default text logger. Verbose mode drops the level
// to debug, which also makes the resty middleware log request bodies.
func InitSlog(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(
		os.Stderr,
		&slog.HandlerOptions{Level: level},
	)))
}
