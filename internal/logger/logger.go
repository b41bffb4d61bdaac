package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config builds the zap config for the CLI. Logs always go to stderr so that
// a report written to stdout can be piped on its own.
func Config(json bool, debug bool) zap.Config {
	level := zapcore.InfoLevel
	encoding := "console"

	if json {
		encoding = "json"
	}

	if debug {
		level = zapcore.DebugLevel
	}

	return zap.Config{
		Encoding:         encoding,
		Level:            zap.NewAtomicLevelAt(level),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey: "step",

			LevelKey:    "level",
			EncodeLevel: zapcore.LowercaseLevelEncoder,

			TimeKey:    "time",
			EncodeTime: zapcore.RFC3339TimeEncoder,

			// Caller locations only help when debugging.
			CallerKey:    callerKey(debug),
			EncodeCaller: zapcore.ShortCallerEncoder,

			EncodeDuration: zapcore.StringDurationEncoder,
		},
	}
}

func New(json bool, debug bool) (*zap.Logger, error) {
	cfg := Config(json, debug)
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	defer logger.Sync()

	return logger, nil
}

func callerKey(debug bool) string {
	if debug {
		return "caller"
	}
	return zapcore.OmitKey
}
