package domain

import (
	"errors"
	"strings"
)

// ErrBlankText is returned when a task would carry no visible text.
var ErrBlankText = errors.New("task text is blank")

// Task represents a single spell on the list.
type Task struct {
	ID        int64    `json:"id"`
	Text      string   `json:"text"`
	Completed bool     `json:"completed"`
	Category  Category `json:"category"`
}

// Validate checks the fields a task must always satisfy.
func (t Task) Validate() error {
	if isBlank(t.Text) {
		return ErrBlankText
	}
	if !t.Category.Valid() {
		return ErrUnknownCategory
	}
	return nil
}

// EditState is the transient slot holding the task being edited.
type EditState struct {
	TaskID int64  `json:"taskId"`
	Text   string `json:"text"`
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
