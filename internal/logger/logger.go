// Package logger provides structured logging to stderr using zerolog.
// Stdout is reserved for probe results.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var globalLogger zerolog.Logger

// Config controls log level and destination.
type Config struct {
	Level  string `yaml:"level"`
	Debug  bool   `yaml:"debug"`
	Output string `yaml:"output"`
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
	globalLogger = zerolog.New(os.Stderr).Level(zerolog.WarnLevel).With().Timestamp().Logger()
}

// Init configures the global logger. An empty level means warn.
func Init(config Config) error {
	return InitWriter(config, outputFor(config.Output))
}

// InitWriter is Init with an explicit destination.
func InitWriter(config Config, output io.Writer) error {
	level := zerolog.WarnLevel

	if config.Debug {
		level = zerolog.DebugLevel
	} else if config.Level != "" {
		var err error

		level, err = zerolog.ParseLevel(config.Level)
		if err != nil {
			return err
		}
	}

	globalLogger = zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()

	return nil
}

func outputFor(name string) io.Writer {
	if name == "stdout" {
		return os.Stdout
	}
	return os.Stderr
}

// SetDebug toggles between debug and warn level.
func SetDebug(debug bool) {
	if debug {
		globalLogger = globalLogger.Level(zerolog.DebugLevel)
	} else {
		globalLogger = globalLogger.Level(zerolog.WarnLevel)
	}
}

// WithComponent returns a child logger tagged with the component name.
func WithComponent(component string) zerolog.Logger {
	return globalLogger.With().Str("component", component).Logger()
}
