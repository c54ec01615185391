package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// ZerologAdapter implements Logger on a zerolog.Logger. Every entry carries a
// component field; child loggers from With carry their extra fields too.
type ZerologAdapter struct {
	logger zerolog.Logger
}

func NewZerolog(writer io.Writer, level LogLevel) *ZerologAdapter {
	return &ZerologAdapter{
		logger: zerolog.New(writer).Level(level.zerologLevel()).With().Timestamp().Logger(),
	}
}

// NewConsoleLogger writes human-readable lines to stderr
func NewConsoleLogger(level LogLevel) *ZerologAdapter {
	return NewZerolog(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}, level)
}

// NewJSONLogger writes raw zerolog JSON lines, for log shipping.
func NewJSONLogger(level LogLevel) *ZerologAdapter {
	return NewZerolog(os.Stderr, level)
}

// NewNop discards everything; used by tests and headless helpers.
func NewNop() *ZerologAdapter {
	return &ZerologAdapter{logger: zerolog.Nop()}
}

func (z *ZerologAdapter) With(fields map[string]interface{}) Logger {
	if len(fields) == 0 {
		return z
	}
	return &ZerologAdapter{logger: z.logger.With().Fields(fields).Logger()}
}

func (z *ZerologAdapter) Debug(component, message string, fields map[string]interface{}) {
	emit(z.logger.Debug(), component, fields, message)
}

func (z *ZerologAdapter) Info(component, message string, fields map[string]interface{}) {
	emit(z.logger.Info(), component, fields, message)
}

func (z *ZerologAdapter) Warning(component, message string, fields map[string]interface{}) {
	emit(z.logger.Warn(), component, fields, message)
}

func (z *ZerologAdapter) Error(component string, err error, fields map[string]interface{}) {
	emit(z.logger.Error().Err(err), component, fields, "operation failed")
}

// emit is a no-op for a disabled level, where zerolog hands back a nil event
func emit(event *zerolog.Event, component string, fields map[string]interface{}, message string) {
	if event == nil {
		return
	}
	event.Str("component", component).Fields(fields).Msg(message)
}
