package session

import (
	"fmt"

	"go.uber.org/zap"
)

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] SESSION "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] SESSION "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] SESSION "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] SESSION "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}

// ZapLogger adapts a zap.SugaredLogger to the package Logger interface.
type ZapLogger struct {
	base *zap.SugaredLogger
}

// NewZapLogger wraps an existing zap logger.
func NewZapLogger(l *zap.Logger) *ZapLogger {
	return &ZapLogger{base: l.Sugar()}
}

func (z *ZapLogger) Debug(format string, args ...any) { z.base.Debugf(format, args...) }
func (z *ZapLogger) Info(format string, args ...any)  { z.base.Infof(format, args...) }
func (z *ZapLogger) Warn(format string, args ...any)  { z.base.Warnf(format, args...) }
func (z *ZapLogger) Error(format string, args ...any) { z.base.Errorf(format, args...) }

func normalizeLogger(l Logger) Logger {
	if l == nil {
		return defLogger{}
	}
	return l
}
