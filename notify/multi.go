package notify

import (
	"context"

	"github.com/MayaraRocha95/todo-list-hp/domain"
)

// Multi delivers each notification to every notifier in order.
type Multi []domain.Notifier

func (m Multi) Notify(ctx context.Context, n domain.Notification) {
	for _, notifier := range m {
		if notifier != nil {
			notifier.Notify(ctx, n)
		}
	}
}
