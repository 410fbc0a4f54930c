package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a zap logger. Format "json" selects the production encoder,
// anything else the human readable console encoder.
func New(level string, format string) (*zap.Logger, error) {
	logLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("logger: couldn't parse level %q: %w", level, err)
	}

	var cfg zap.Config
	if format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	cfg.Level = zap.NewAtomicLevelAt(logLevel)
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

// Print adapts a zap logger to the func(v ...interface{}) log hooks used
// across packages.
func Print(log *zap.Logger) func(v ...interface{}) {
	sugar := log.Sugar()
	return func(v ...interface{}) {
		for _, e := range v {
			if _, ok := e.(error); ok {
				sugar.Errorln(v...)
				return
			}
		}
		sugar.Infoln(v...)
	}
}
