package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.Logger so the rest of the simulator depends on one
// small type instead of the zap package directly.
type Logger struct {
	*zap.Logger
}

// New builds a production-style JSON logger writing to file (use "-"
// or "stdout" for standard output).
func New(file string) (*Logger, error) {
	if file == "" || file == "-" {
		file = "stdout"
	}

	config := zap.NewProductionConfig()
	config.OutputPaths = []string{file}
	config.EncoderConfig.LevelKey = "level"
	config.EncoderConfig.TimeKey = "ts"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.CallerKey = "caller"
	config.EncoderConfig.MessageKey = "message"
	config.DisableStacktrace = true

	built, err := config.Build()
	if err != nil {
		return nil, err
	}

	return &Logger{Logger: built}, nil
}

// NewDev builds a human-readable logger for local runs and tests.
func NewDev() *Logger {
	built, _ := zap.NewDevelopment()
	return &Logger{Logger: built}
}

// WithInstance tags every subsequent log line with the simulation
// instance id, mirroring World's "Instance {id} | ..." prefix in the
// original Python logs.
func (l *Logger) WithInstance(instance int64) *Logger {
	return &Logger{Logger: l.With(zap.Int64("instance", instance))}
}
