package logger

import (
	"time"

	"github.com/rs/zerolog"
)

// LogEventAdapter adapts zerolog events to the LogEvent interface
type LogEventAdapter struct {
	event  *zerolog.Event
	filter *SensitiveDataFilter
	level  zerolog.Level
	hook   func(zerolog.Level)
}

func (lea *LogEventAdapter) with(event *zerolog.Event) LogEvent {
	return &LogEventAdapter{event: event, filter: lea.filter, level: lea.level, hook: lea.hook}
}

// Msg logs the message
func (lea *LogEventAdapter) Msg(msg string) {
	lea.trackSeverity()
	lea.event.Msg(msg)
}

// Msgf logs a formatted message
func (lea *LogEventAdapter) Msgf(format string, args ...any) {
	lea.trackSeverity()
	lea.event.Msgf(format, args...)
}

// Err adds an error to the log event
func (lea *LogEventAdapter) Err(err error) LogEvent {
	return lea.with(lea.event.Err(err))
}

// Str adds a string field, masked when the key is sensitive or the value is a URL with credentials
func (lea *LogEventAdapter) Str(key, value string) LogEvent {
	if lea.filter != nil {
		value = lea.filter.FilterString(key, value)
	}
	return lea.with(lea.event.Str(key, value))
}

func (lea *LogEventAdapter) Int(key string, value int) LogEvent {
	return lea.with(lea.event.Int(key, value))
}

func (lea *LogEventAdapter) Int64(key string, value int64) LogEvent {
	return lea.with(lea.event.Int64(key, value))
}

func (lea *LogEventAdapter) Uint64(key string, value uint64) LogEvent {
	return lea.with(lea.event.Uint64(key, value))
}

func (lea *LogEventAdapter) Dur(key string, d time.Duration) LogEvent {
	return lea.with(lea.event.Dur(key, d))
}

// Interface adds an arbitrary field; maps are filtered recursively
func (lea *LogEventAdapter) Interface(key string, i any) LogEvent {
	if lea.filter != nil {
		i = lea.filter.FilterValue(key, i)
	}
	return lea.with(lea.event.Interface(key, i))
}

func (lea *LogEventAdapter) Bytes(key string, val []byte) LogEvent {
	return lea.with(lea.event.Bytes(key, val))
}

func (lea *LogEventAdapter) trackSeverity() {
	if lea.hook != nil && lea.level >= zerolog.WarnLevel {
		lea.hook(lea.level)
	}
}

func (l *ZeroLogger) event(e *zerolog.Event, level zerolog.Level) LogEvent {
	return &LogEventAdapter{event: e, filter: l.filter, level: level, hook: l.severityHook}
}

// Info creates an info-level log event
func (l *ZeroLogger) Info() LogEvent { return l.event(l.zlog.Info(), zerolog.InfoLevel) }

// Error creates an error-level log event
func (l *ZeroLogger) Error() LogEvent { return l.event(l.zlog.Error(), zerolog.ErrorLevel) }

// Debug creates a debug-level log event
func (l *ZeroLogger) Debug() LogEvent { return l.event(l.zlog.Debug(), zerolog.DebugLevel) }

// Warn creates a warning-level log event
func (l *ZeroLogger) Warn() LogEvent { return l.event(l.zlog.Warn(), zerolog.WarnLevel) }

// Fatal creates a fatal-level log event
func (l *ZeroLogger) Fatal() LogEvent { return l.event(l.zlog.Fatal(), zerolog.FatalLevel) }
