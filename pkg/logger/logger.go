package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init configures the global zerolog logger. Development gets a console
// writer and debug level; everything else logs JSON at info level.
func Init(env string) {
	InitWithWriter(env, os.Stderr)
}

func InitWithWriter(env string, w io.Writer) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level := zerolog.InfoLevel
	if env == "development" {
		w = zerolog.ConsoleWriter{Out: w}
		level = zerolog.DebugLevel
	}

	log.Logger = zerolog.New(w).With().Timestamp().Str("env", env).Logger()
	zerolog.SetGlobalLevel(level)
}

func Info(msg string, fields map[string]interface{}) {
	log.Info().Fields(fields).Msg(msg)
}

func Warn(msg string, fields map[string]interface{}) {
	log.Warn().Fields(fields).Msg(msg)
}

func Debug(msg string) {
	log.Debug().Msg(msg)
}

func Error(msg string, err error) {
	log.Error().Err(err).Msg(msg)
}

// Fatal logs and exits the process
func Fatal(msg string, err error) {
	log.Fatal().Err(err).Msg(msg)
}
