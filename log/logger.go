package log

import "github.com/rambollwong/rainbowlog"

var (
	DefaultLoggerLabel = "WISP"
	Logger             = rainbowlog.New().SubLogger(rainbowlog.WithLabels(DefaultLoggerLabel))
)

// InitLogger replaces the module logger with a sub logger of the given root logger.
func InitLogger(rootLogger *rainbowlog.Logger) {
	Logger = rootLogger.SubLogger(rainbowlog.WithLabels(DefaultLoggerLabel))
}
