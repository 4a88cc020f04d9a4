package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var log zerolog.Logger

func Init(level string, pretty bool) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(lvl)

	var output io.Writer = os.Stdout
	if pretty {
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}

	log = zerolog.New(output).
		With().
		Timestamp().
		Caller().
		Logger()
}

func Get() *zerolog.Logger {
	return &log
}

// WithComponent scopes a logger to one of the three processes
// (supervisor, event-process, task-process) or the admin server.
func WithComponent(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// WithEngine scopes a logger to one engine uid.
func WithEngine(engineUID int32) zerolog.Logger {
	return log.With().Int32("engine_uid", engineUID).Logger()
}

// WithEvent scopes a logger to one event uid.
func WithEvent(eventUID int32) zerolog.Logger {
	return log.With().Int32("event_uid", eventUID).Logger()
}

// WithWorker scopes a logger to one worker pool slot.
func WithWorker(workerID int) zerolog.Logger {
	return log.With().Int("worker_id", workerID).Logger()
}

// WithTask scopes a logger to one task uid.
func WithTask(taskUID int32) zerolog.Logger {
	return log.With().Int32("task_uid", taskUID).Logger()
}

// Convenience methods mirroring zerolog's package-level API.
func Debug() *zerolog.Event {
	return log.Debug()
}

func Info() *zerolog.Event {
	return log.Info()
}

func Warn() *zerolog.Event {
	return log.Warn()
}

func Error() *zerolog.Event {
	return log.Error()
}

func Fatal() *zerolog.Event {
	return log.Fatal()
}
