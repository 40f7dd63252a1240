package api

import (
	"context"

	"github.com/MayaraRocha95/todo-list-hp/domain"
)

// TaskStore is the part of domain.Store the HTTP handlers drive.
type TaskStore interface {
	View(v domain.View) []domain.Task
	Counts() domain.Counts
	Create(ctx context.Context, text string, category domain.Category) (domain.Task, bool)
	ToggleCompletion(ctx context.Context, id int64) (domain.Task, bool)
	Delete(ctx context.Context, id int64) (domain.Task, bool)
	BeginEdit(id int64) (domain.EditState, bool)
	Editing() (domain.EditState, bool)
	CommitEdit(ctx context.Context, text string) (domain.Task, bool)
	CancelEdit()
}

// Subscriber hands out notification streams for server-sent events.
type Subscriber interface {
	Subscribe() chan domain.Notification
	Unsubscribe(ch chan domain.Notification)
}

// Authenticator validates the Authorization header of a request.
type Authenticator interface {
	Authorize(header string) error
}

type allowAll struct{}

func (allowAll) Authorize(string) error { return nil }

type tasksResponse struct {
	Tasks  []domain.Task `json:"tasks"`
	Counts domain.Counts `json:"counts"`
}

type createTaskRequest struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

type editRequest struct {
	Text string `json:"text"`
}

type categoryResponse struct {
	ID   domain.Category `json:"id"`
	Name string          `json:"name"`
	From string          `json:"from"`
	To   string          `json:"to"`
}
