package logging

import (
	"context"
	"fmt"
	"strings"
)

// BadgerLogger adapts a Logger to badger.Logger so the embedded store
// reports through the same JSON stream as the rest of the server.
type BadgerLogger struct {
	l Logger
}

func NewBadgerLogger(l Logger) *BadgerLogger {
	return &BadgerLogger{l: l.With("component", "badger")}
}

func (b *BadgerLogger) Errorf(format string, args ...any) {
	b.l.Error(context.Background(), badgerMsg(format, args))
}

func (b *BadgerLogger) Warningf(format string, args ...any) {
	b.l.Warn(context.Background(), badgerMsg(format, args))
}

func (b *BadgerLogger) Infof(format string, args ...any) {
	b.l.Info(context.Background(), badgerMsg(format, args))
}

func (b *BadgerLogger) Debugf(format string, args ...any) {
	b.l.Debug(context.Background(), badgerMsg(format, args))
}

func badgerMsg(format string, args []any) string {
	return strings.TrimRight(fmt.Sprintf(format, args...), "\n")
}
