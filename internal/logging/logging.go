// Package logging builds the process logger from the log settings.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gcbaptista/go-facet-query/config"
)

// New returns a logger writing to stderr, or to a size-rotated file when
// log_file is set. The returned close function flushes and releases the file.
func New(settings *config.Settings) (*zap.Logger, func() error, error) {
	level, err := zapcore.ParseLevel(settings.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level '%s': %w", settings.LogLevel, err)
	}

	var out io.Writer = os.Stderr
	var file *lumberjack.Logger
	if settings.LogFile != "" {
		file = &lumberjack.Logger{
			Filename:   settings.LogFile,
			MaxSize:    settings.LogMaxSizeMB,
			MaxBackups: settings.LogMaxBackups,
			Compress:   true,
		}
		out = file
	}

	logger := zap.New(
		zapcore.NewCore(encoder(settings.LogFormat), zapcore.AddSync(out), zap.NewAtomicLevelAt(level)),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)

	closeFn := func() error {
		_ = logger.Sync()
		if file != nil {
			return file.Close()
		}
		return nil
	}
	return logger, closeFn, nil
}

func encoder(format string) zapcore.Encoder {
	if format == "console" {
		return zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	}
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return zapcore.NewJSONEncoder(cfg)
}
