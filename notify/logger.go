package notify

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/MayaraRocha95/todo-list-hp/domain"
)

// Logger writes every notification as a structured log line.
type Logger struct {
	log log.FieldLogger
}

// NewLogger creates a Logger notifier. A nil logger uses the standard logger.
func NewLogger(l log.FieldLogger) *Logger {
	if l == nil {
		l = log.StandardLogger()
	}
	return &Logger{log: l}
}

func (l *Logger) Notify(_ context.Context, n domain.Notification) {
	l.log.WithFields(log.Fields{
		"kind":   n.Kind,
		"title":  n.Title,
		"detail": n.Detail,
	}).Info("notification")
}
