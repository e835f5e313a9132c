package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
	"time"
)

// LogLevel represents the severity level of a log message
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a level name to a LogLevel
func ParseLevel(level string) (LogLevel, error) {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return DEBUG, nil
	case "INFO":
		return INFO, nil
	case "WARN", "WARNING":
		return WARN, nil
	case "ERROR":
		return ERROR, nil
	default:
		return INFO, fmt.Errorf("unknown log level: %s", level)
	}
}

// Logger is a leveled logger with key/value context fields
type Logger struct {
	level  LogLevel
	logger *log.Logger
	fields map[string]interface{}
}

type Config struct {
	Level  LogLevel
	Output io.Writer
}

func New() *Logger {
	return NewWithConfig(Config{Level: INFO, Output: os.Stderr})
}

func NewWithConfig(config Config) *Logger {
	if config.Output == nil {
		config.Output = os.Stderr
	}

	return &Logger{
		level:  config.Level,
		logger: log.New(config.Output, "", 0),
		fields: make(map[string]interface{}),
	}
}

// WithFields returns a new logger carrying the given key/value pairs on
// every message. Keys/values are consumed pairwise; a trailing key without
// a value is dropped.
func (l *Logger) WithFields(keyVals ...interface{}) *Logger {
	next := &Logger{
		level:  l.level,
		logger: l.logger,
		fields: make(map[string]interface{}, len(l.fields)+len(keyVals)/2),
	}

	for k, v := range l.fields {
		next.fields[k] = v
	}
	for i := 0; i+1 < len(keyVals); i += 2 {
		next.fields[fmt.Sprintf("%v", keyVals[i])] = keyVals[i+1]
	}

	return next
}

// WithField returns a new logger with a single additional context field
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return l.WithFields(key, value)
}

func (l *Logger) Debug(msg string, keyVals ...interface{}) { l.log(DEBUG, msg, keyVals...) }
func (l *Logger) Info(msg string, keyVals ...interface{})  { l.log(INFO, msg, keyVals...) }
func (l *Logger) Warn(msg string, keyVals ...interface{})  { l.log(WARN, msg, keyVals...) }
func (l *Logger) Error(msg string, keyVals ...interface{}) { l.log(ERROR, msg, keyVals...) }

func (l *Logger) Fatal(msg string, keyVals ...interface{}) {
	l.log(ERROR, msg, keyVals...)
	os.Exit(1)
}

func (l *Logger) SetLevel(level LogLevel) { l.level = level }
func (l *Logger) GetLevel() LogLevel      { return l.level }

func (l *Logger) log(level LogLevel, msg string, keyVals ...interface{}) {
	if level < l.level {
		return
	}

	all := make(map[string]interface{}, len(l.fields)+len(keyVals)/2)
	for k, v := range l.fields {
		all[k] = v
	}
	for i := 0; i+1 < len(keyVals); i += 2 {
		all[fmt.Sprintf("%v", keyVals[i])] = keyVals[i+1]
	}

	timestamp := time.Now().Format("2006-01-02T15:04:05.000Z07:00")
	l.logger.Print(formatLine(timestamp, level, msg, all))
}

func formatLine(timestamp string, level LogLevel, msg string, fields map[string]interface{}) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s] [%s] %s", timestamp, level, msg))

	if len(fields) == 0 {
		return b.String()
	}

	// Sorted keys keep output stable across runs.
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b.WriteString(" |")
	for _, k := range keys {
		b.WriteString(fmt.Sprintf(" %s=%s", k, formatValue(fields[k])))
	}

	return b.String()
}

func formatValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		if strings.ContainsAny(v, " \t") {
			return fmt.Sprintf("%q", v)
		}
		return v
	case error:
		return fmt.Sprintf("%q", v.Error())
	case time.Duration:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// global logger for package-level convenience calls
var globalLogger = New()

func Debug(msg string, keyVals ...interface{}) { globalLogger.Debug(msg, keyVals...) }
func Info(msg string, keyVals ...interface{})  { globalLogger.Info(msg, keyVals...) }
func Warn(msg string, keyVals ...interface{})  { globalLogger.Warn(msg, keyVals...) }
func Error(msg string, keyVals ...interface{}) { globalLogger.Error(msg, keyVals...) }

func WithField(key string, value interface{}) *Logger { return globalLogger.WithField(key, value) }

func SetLevel(level LogLevel) { globalLogger.SetLevel(level) }
