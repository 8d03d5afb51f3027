// Package logging configures the process-wide slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// ParseLevel accepts debug, info, warn and error.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}

// Setup installs a text logger on stdout tagged with the service name and
// returns it.
func Setup(level, serviceName string) (*slog.Logger, error) {
	return setup(os.Stdout, level, serviceName)
}

func setup(w io.Writer, level, serviceName string) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})
	logger := slog.New(handler).With("service", serviceName)

	slog.SetDefault(logger)
	return logger, nil
}
