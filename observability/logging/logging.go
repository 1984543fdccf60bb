package logging

import (
	"log"
	"log/slog"
	"os"
	"strings"
)

// LevelEnv selects the minimum log level for both daemons. Accepted values
// are debug, info, warn, and error; anything else falls back to info.
const LevelEnv = "VEBETTERDAO_LOG_LEVEL"

// Setup installs the process-wide logger for a protocol service (vebetterd,
// indexd). Local and dev environments get human-readable text output; every
// other environment emits JSON lines for log shippers. Both the slog default
// and the standard library logger route through the returned handler.
func Setup(service, env string) *slog.Logger {
	env = strings.ToLower(strings.TrimSpace(env))
	opts := &slog.HandlerOptions{Level: levelFromEnv(os.Getenv(LevelEnv))}

	var handler slog.Handler
	switch env {
	case "", "dev", "local":
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	base := slog.New(handler).With(slog.String("service", strings.TrimSpace(service)))
	if env != "" {
		base = base.With(slog.String("env", env))
	}
	slog.SetDefault(base)

	// Stray log.Printf calls from dependencies keep the structured format.
	bridge := slog.NewLogLogger(handler, slog.LevelInfo)
	log.SetOutput(bridge.Writer())
	log.SetFlags(0)
	log.SetPrefix("")

	return base
}

func levelFromEnv(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
