package logger

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// logrusLogger implements Logger interface using Sirupsen Logrus
type logrusLogger struct {
	logger *logrus.Logger
}

// NewLogrusLogger creates a logrus-based logger with the provided options
func NewLogrusLogger(opts Options) Logger {
	l := logrus.New()
	l.SetLevel(parseLogrusLevel(opts.Level))

	switch opts.Format {
	case "text":
		l.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: time.RFC3339,
			FullTimestamp:   true,
		})
	default:
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "time",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	}

	var out io.Writer = os.Stdout
	if opts.File != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10,
			MaxBackups: 5,
			MaxAge:     7,
			Compress:   true,
		})
	}
	l.SetOutput(out)

	return &logrusLogger{logger: l}
}

func parseLogrusLevel(level string) logrus.Level {
	switch level {
	case "debug":
		return logrus.DebugLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

func (l *logrusLogger) Debug(msg string, fields ...Field) {
	l.logger.WithFields(convertLogrusFields(fields)).Debug(msg)
}

func (l *logrusLogger) Info(msg string, fields ...Field) {
	l.logger.WithFields(convertLogrusFields(fields)).Info(msg)
}

func (l *logrusLogger) Warn(msg string, fields ...Field) {
	l.logger.WithFields(convertLogrusFields(fields)).Warn(msg)
}

func (l *logrusLogger) Error(msg string, fields ...Field) {
	l.logger.WithFields(convertLogrusFields(fields)).Error(msg)
}

// convertLogrusFields converts our Field types to logrus.Fields
func convertLogrusFields(fields []Field) logrus.Fields {
	out := make(logrus.Fields, len(fields))
	for _, f := range fields {
		if f.Type == ErrorType {
			if err, ok := f.Value.(error); ok && err != nil {
				out[f.Key] = err.Error()
				continue
			}
		}
		out[f.Key] = f.Value
	}
	return out
}
