package logs

import (
	"log/slog"
	"os"
	"time"

	"github.com/aws/smithy-go/logging"
	"github.com/lmittmann/tint"
)

// AwsSdkLogger adapts slog for the AWS SDK's wire logging. Entries go to
// arnexport.log so request/response dumps don't drown the console.
func AwsSdkLogger() logging.Logger {
	return logging.LoggerFunc(func(classification logging.Classification, format string, v ...interface{}) {
		f, err := os.OpenFile("arnexport.log", os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			panic(err)
		}
		defer f.Close()

		logger := slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))

		switch classification {
		case logging.Warn:
			logger.Warn(format, v...)
		default:
			logger.Debug(format, v...)
		}
	})
}

var level = new(slog.LevelVar)

// SetVerbose drops the console level to debug.
func SetVerbose(v bool) {
	if v {
		level.Set(slog.LevelDebug)
	}
}

// ConsoleLogger returns a tinted console logger and installs it as the
// slog default.
func ConsoleLogger() *slog.Logger {
	w := os.Stderr

	logger := slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)
	return logger
}
