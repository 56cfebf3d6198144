package observability

import (
	"io"
	"log/slog"
	"os"
)

func NewLogger(env string) *slog.Logger {
	level := slog.LevelInfo

	if env == "dev" {
		level = slog.LevelDebug
	}

	var out io.Writer = os.Stdout

	if env == "test" {
		out = io.Discard
	}

	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: level,
	})

	// wrap so trace/span ids ride along on every record
	return slog.New(NewTraceHandler(handler))
}
