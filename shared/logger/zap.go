package logger

import (
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// zapLogger implements Logger interface using zap
type zapLogger struct {
	logger *zap.Logger
}

// NewZapLogger creates a zap-based logger with console output and
// optional file rotation
func NewZapLogger(opts Options) Logger {
	var cores []zapcore.Core

	// Always add console output (essential for containers)
	var consoleEncoder zapcore.Encoder
	if opts.Format == "text" {
		consoleConfig := zap.NewDevelopmentEncoderConfig()
		consoleConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		consoleEncoder = zapcore.NewConsoleEncoder(consoleConfig)
	} else {
		// JSON format for production (structured logs)
		consoleEncoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}
	level := parseZapLevel(opts.Level)
	consoleSyncer := zapcore.AddSync(os.Stdout)
	cores = append(cores, zapcore.NewCore(consoleEncoder, consoleSyncer, level))

	// File output with lumberjack rotation (additional persistence)
	if opts.File != "" {
		fileSyncer := zapcore.AddSync(&lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // megabytes
			MaxBackups: 5,
			MaxAge:     7, // days
			Compress:   true,
		})
		fileEncoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		cores = append(cores, zapcore.NewCore(fileEncoder, fileSyncer, level))
	}

	zapLog := zap.New(zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zap.ErrorLevel))

	return &zapLogger{logger: zapLog}
}

func parseZapLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zap.DebugLevel
	case "warn":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

func (z *zapLogger) Debug(msg string, fields ...Field) {
	z.logger.Debug(msg, z.convertFields(fields)...)
}

func (z *zapLogger) Info(msg string, fields ...Field) {
	z.logger.Info(msg, z.convertFields(fields)...)
}

func (z *zapLogger) Warn(msg string, fields ...Field) {
	z.logger.Warn(msg, z.convertFields(fields)...)
}

func (z *zapLogger) Error(msg string, fields ...Field) {
	z.logger.Error(msg, z.convertFields(fields)...)
}

// convertFields converts our Field types to zap.Field types
func (z *zapLogger) convertFields(fields []Field) []zap.Field {
	zapFields := make([]zap.Field, len(fields))
	for i, f := range fields {
		zapFields[i] = z.convertField(f)
	}
	return zapFields
}

// convertField converts a single Field to zap.Field
func (z *zapLogger) convertField(f Field) zap.Field {
	switch f.Type {
	case StringType:
		return zap.String(f.Key, f.Value.(string))
	case IntType:
		return zap.Int(f.Key, f.Value.(int))
	case Int64Type:
		return zap.Int64(f.Key, f.Value.(int64))
	case Float64Type:
		return zap.Float64(f.Key, f.Value.(float64))
	case BoolType:
		return zap.Bool(f.Key, f.Value.(bool))
	case ErrorType:
		err, _ := f.Value.(error)
		return zap.Error(err)
	case DurationType:
		return zap.Duration(f.Key, f.Value.(time.Duration))
	case TimeType:
		return zap.Time(f.Key, f.Value.(time.Time))
	default:
		return zap.Any(f.Key, f.Value)
	}
}
