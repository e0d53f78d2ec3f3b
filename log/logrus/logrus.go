// Package logrus adapts a *logrus.Entry to the kvaside.Logger interface.
// Wrap a base logger with logrus.NewEntry, or pass an entry that already
// carries shared fields.
package logrus

import (
	"github.com/sirupsen/logrus"
	"github.com/unkn0wn-root/kvaside"
)

type LogrusLogger struct{ E *logrus.Entry }

var _ kvaside.Logger = LogrusLogger{}

func (l LogrusLogger) Debug(msg string, f kvaside.Fields) {
	l.E.WithFields(logrus.Fields(f)).Debug(msg)
}
func (l LogrusLogger) Info(msg string, f kvaside.Fields) { l.E.WithFields(logrus.Fields(f)).Info(msg) }
func (l LogrusLogger) Warn(msg string, f kvaside.Fields) { l.E.WithFields(logrus.Fields(f)).Warn(msg) }
func (l LogrusLogger) Error(msg string, f kvaside.Fields) {
	l.E.WithFields(logrus.Fields(f)).Error(msg)
}
