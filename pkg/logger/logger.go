package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a zap logger for the given application environment.
// "development" gets console output at debug level; anything else gets
// production JSON at info level.
func New(appEnv string) (*zap.Logger, error) {
	if appEnv == "development" {
		return zap.NewDevelopment()
	}

	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}
	return config.Build()
}

// NewNamed builds a logger carrying the service name as a global field.
func NewNamed(appEnv, service string) (*zap.Logger, error) {
	log, err := New(appEnv)
	if err != nil {
		return nil, err
	}
	return log.With(zap.String("service", service)), nil
}
