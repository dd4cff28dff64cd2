package logging

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	sugar   atomic.Pointer[zap.SugaredLogger]
	base    *zap.Logger
	logFile *os.File
	mu      sync.Mutex
	isSetup bool
)

func init() {
	sugar.Store(zap.NewNop().Sugar())
}

// SetupLogger initializes the logger. Messages go to logFilePath when it is
// set and to stderr otherwise. level is one of debug, info, warn or error.
func SetupLogger(logFilePath, level string) error {
	mu.Lock()
	defer mu.Unlock()

	// Check if logger is already set up
	if isSetup {
		return nil
	}

	lvl := zapcore.InfoLevel
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return fmt.Errorf("invalid log level %q: %w", level, err)
		}
	}

	var sink zapcore.WriteSyncer = zapcore.Lock(os.Stderr)
	if logFilePath != "" {
		f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		logFile = f
		sink = zapcore.AddSync(f)
	}

	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), sink, zap.NewAtomicLevelAt(lvl))

	base = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1), zap.AddStacktrace(zapcore.ErrorLevel))
	sugar.Store(base.Sugar())

	base.Debug("logger started", zap.String("at", time.Now().Format(time.RFC3339)))
	isSetup = true
	return nil
}

// CloseLogger flushes the logger and closes the log file
func CloseLogger() {
	mu.Lock()
	defer mu.Unlock()

	if !isSetup {
		return
	}

	_ = base.Sync()
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	sugar.Store(zap.NewNop().Sugar())
	base = nil
	isSetup = false
}

// Logger returns the structured logger behind the package functions.
func Logger() *zap.SugaredLogger {
	return sugar.Load()
}

// LogInfo logs an information message
func LogInfo(format string, args ...interface{}) {
	sugar.Load().Infof(format, args...)
}

// DebugLog logs a message at debug level
func DebugLog(format string, args ...interface{}) {
	sugar.Load().Debugf(format, args...)
}

// LogError logs an error message
func LogError(format string, args ...interface{}) {
	sugar.Load().Errorf(format, args...)
}

// LogWarning logs a warning message
func LogWarning(format string, args ...interface{}) {
	sugar.Load().Warnf(format, args...)
}

// LogImageProcessed logs the outcome of indexing one image
func LogImageProcessed(path string, success bool, errMsg string) {
	if success {
		sugar.Load().Infow("processed", "path", path)
		return
	}
	sugar.Load().Warnw("failed", "path", path, "error", errMsg)
}
