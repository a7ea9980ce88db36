package xdr

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var (
	logger atomic.Pointer[zap.Logger]
	nop    = zap.NewNop()
)

// Logger returns the package logger.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return nop
}

// SetLogger configures the package logger. Failures of the entry points and
// plan compilation are logged at debug level. It is safe to call while
// codec operations are running; nil restores the no-op logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		logger.Store(nil)
		return
	}
	logger.Store(l.Named("xdr"))
}
