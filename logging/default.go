package logging

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
)

// DefaultLogger is a leveled logger built on Go's standard log package.
// Debug/Info go to stdout, Warn/Error to stderr.
type DefaultLogger struct {
	stdoutLogger *log.Logger
	stderrLogger *log.Logger
	level        Level
	fields       Fields
}

// NewDefaultLogger creates a new default logger at InfoLevel
func NewDefaultLogger() *DefaultLogger {
	return &DefaultLogger{
		stdoutLogger: log.New(os.Stdout, "", log.LstdFlags),
		stderrLogger: log.New(os.Stderr, "", log.LstdFlags),
		level:        InfoLevel,
		fields:       make(Fields),
	}
}

func (d *DefaultLogger) formatMessage(level Level, err error, msg string, fields ...Fields) string {
	allFields := mergeFields(d.fields, fields)

	var sb strings.Builder
	sb.WriteString("[")
	sb.WriteString(level.String())
	sb.WriteString("] ")
	sb.WriteString(msg)

	if err != nil {
		sb.WriteString(": ")
		sb.WriteString(err.Error())
	}

	if len(allFields) > 0 {
		keys := make([]string, 0, len(allFields))
		for k := range allFields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		sb.WriteString(" |")
		for _, k := range keys {
			sb.WriteString(fmt.Sprintf(" %s=%v", k, allFields[k]))
		}
	}

	return sb.String()
}

func (d *DefaultLogger) Debug(msg string, fields ...Fields) {
	if d.level <= DebugLevel {
		d.stdoutLogger.Println(d.formatMessage(DebugLevel, nil, msg, fields...))
	}
}

func (d *DefaultLogger) Info(msg string, fields ...Fields) {
	if d.level <= InfoLevel {
		d.stdoutLogger.Println(d.formatMessage(InfoLevel, nil, msg, fields...))
	}
}

func (d *DefaultLogger) Warn(msg string, fields ...Fields) {
	if d.level <= WarnLevel {
		d.stderrLogger.Println(d.formatMessage(WarnLevel, nil, msg, fields...))
	}
}

func (d *DefaultLogger) Error(err error, msg string, fields ...Fields) {
	if d.level <= ErrorLevel {
		d.stderrLogger.Println(d.formatMessage(ErrorLevel, err, msg, fields...))
	}
}

func (d *DefaultLogger) WithFields(fields Fields) Logger {
	return &DefaultLogger{
		stdoutLogger: d.stdoutLogger,
		stderrLogger: d.stderrLogger,
		level:        d.level,
		fields:       mergeFields(d.fields, []Fields{fields}),
	}
}

func (d *DefaultLogger) SetLevel(level Level) {
	d.level = level
}

// NoOpLogger discards all log output
type NoOpLogger struct{}

func (n *NoOpLogger) Debug(msg string, fields ...Fields)            {}
func (n *NoOpLogger) Info(msg string, fields ...Fields)             {}
func (n *NoOpLogger) Warn(msg string, fields ...Fields)             {}
func (n *NoOpLogger) Error(err error, msg string, fields ...Fields) {}
func (n *NoOpLogger) WithFields(fields Fields) Logger               { return n }
func (n *NoOpLogger) SetLevel(level Level)                          {}
