package logging

import (
	"io"
	"log/slog"
	"os"
)

// SetupJSON installs a JSON slog logger at the given level as the default and
// returns it. Every record carries the service name.
func SetupJSON(level slog.Level, service string) *slog.Logger {
	return setup(os.Stdout, level, service)
}

func setup(w io.Writer, level slog.Level, service string) *slog.Logger {
	logger := slog.New(
		slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}),
	).With(slog.String("service", service))

	slog.SetDefault(logger)

	return logger
}
