package util

import (
	"bytes"
	"io"
	"sync"
)

var (
	globalLogger LoggerInterface
	loggerMu     sync.RWMutex
)

// InitLogger installs the global logger. Later calls replace the previous
// logger and close its outputs.
func InitLogger(logLevel, logFile string, console bool, format LogFormat) error {
	logger, err := NewLogger(logLevel, logFile, console, format)
	if err != nil {
		return err
	}
	SetLogger(logger)
	return nil
}

// SetLogger replaces the global logger. Passing nil disables logging.
func SetLogger(logger LoggerInterface) {
	loggerMu.Lock()
	previous := globalLogger
	globalLogger = logger
	loggerMu.Unlock()

	if previous != nil && previous != logger {
		_ = previous.Close()
	}
}

// GetLogger returns the global logger, or nil when none is installed.
func GetLogger() LoggerInterface {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return globalLogger
}

func LogInfo(msg string, fields ...Field) {
	if l := GetLogger(); l != nil {
		l.Info(msg, fields...)
	}
}

func LogInfof(format string, args ...interface{}) {
	if l := GetLogger(); l != nil {
		l.Infof(format, args...)
	}
}

func LogDebug(msg string, fields ...Field) {
	if l := GetLogger(); l != nil {
		l.Debug(msg, fields...)
	}
}

func LogDebugf(format string, args ...interface{}) {
	if l := GetLogger(); l != nil {
		l.Debugf(format, args...)
	}
}

func LogWarn(msg string, fields ...Field) {
	if l := GetLogger(); l != nil {
		l.Warn(msg, fields...)
	}
}

func LogWarnf(format string, args ...interface{}) {
	if l := GetLogger(); l != nil {
		l.Warnf(format, args...)
	}
}

func LogError(msg string, fields ...Field) {
	if l := GetLogger(); l != nil {
		l.Error(msg, fields...)
	}
}

func LogErrorf(format string, args ...interface{}) {
	if l := GetLogger(); l != nil {
		l.Errorf(format, args...)
	}
}

// ComponentLogger tags every entry with the component that wrote it. It
// resolves the global logger on each call, so it can be created before
// InitLogger runs.
type ComponentLogger struct {
	name string
}

func Component(name string) ComponentLogger {
	return ComponentLogger{name: name}
}

func (c ComponentLogger) logger() LoggerInterface {
	l := GetLogger()
	if l == nil {
		return nil
	}
	return l.With(F("component", c.name))
}

func (c ComponentLogger) Debug(msg string, fields ...Field) {
	if l := c.logger(); l != nil {
		l.Debug(msg, fields...)
	}
}

func (c ComponentLogger) Info(msg string, fields ...Field) {
	if l := c.logger(); l != nil {
		l.Info(msg, fields...)
	}
}

func (c ComponentLogger) Warn(msg string, fields ...Field) {
	if l := c.logger(); l != nil {
		l.Warn(msg, fields...)
	}
}

func (c ComponentLogger) Error(msg string, fields ...Field) {
	if l := c.logger(); l != nil {
		l.Error(msg, fields...)
	}
}

func (c ComponentLogger) Errorf(format string, args ...interface{}) {
	if l := c.logger(); l != nil {
		l.Errorf(format, args...)
	}
}

// levelWriter adapts the global logger to io.Writer, one entry per line.
type levelWriter struct {
	level LogLevel
}

// LogWriter returns an io.Writer that forwards each written line to the
// global logger at the given level. Used for access logs of the HTTP server.
func LogWriter(level LogLevel) io.Writer {
	return levelWriter{level: level}
}

func (w levelWriter) Write(p []byte) (int, error) {
	for _, line := range bytes.Split(bytes.TrimRight(p, "\n"), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		msg := string(line)
		switch w.level {
		case LevelDebug:
			LogDebug(msg)
		case LevelWarn:
			LogWarn(msg)
		case LevelError, LevelFatal:
			LogError(msg)
		default:
			LogInfo(msg)
		}
	}
	return len(p), nil
}
