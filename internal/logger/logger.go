package logger

import "go.uber.org/zap"

var Log *zap.Logger = zap.NewNop()

// Init replaces the no-op default with a development logger. Call once at startup.
func Init() {
	config := zap.NewDevelopmentConfig()
	log, err := config.Build()
	if err != nil {
		panic(err)
	}
	Log = log
}
