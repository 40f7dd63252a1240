package domain

import "context"

// NotificationKind selects how a notification is presented.
type NotificationKind string

const (
	KindInfo        NotificationKind = "info"
	KindSuccess     NotificationKind = "success"
	KindDestructive NotificationKind = "destructive"
)

// Notification is the user-facing confirmation emitted after a mutation.
type Notification struct {
	Kind   NotificationKind `json:"kind"`
	Title  string           `json:"title"`
	Detail string           `json:"detail"`
}

// Notifier receives notifications from the Store. Implementations must not
// block the caller for long and handle their own delivery failures.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, n Notification)

func (f NotifierFunc) Notify(ctx context.Context, n Notification) { f(ctx, n) }

type discardNotifier struct{}

func (discardNotifier) Notify(context.Context, Notification) {}

func addedNotification(text string) Notification {
	return Notification{
		Kind:   KindInfo,
		Title:  "Spell added!",
		Detail: "\"" + text + "\" was added to your list.",
	}
}

func completedNotification() Notification {
	return Notification{
		Kind:   KindSuccess,
		Title:  "Spell completed!",
		Detail: "Well done! You completed a task.",
	}
}

func removedNotification(text string) Notification {
	detail := "A task was removed."
	if !isBlank(text) {
		detail = "\"" + text + "\" was removed from your list."
	}
	return Notification{Kind: KindDestructive, Title: "Spell removed", Detail: detail}
}

func updatedNotification() Notification {
	return Notification{
		Kind:   KindInfo,
		Title:  "Spell updated",
		Detail: "Your changes were saved.",
	}
}
