package domain

import "fmt"

// View names one of the three projections over the collection.
type View string

const (
	ViewAll       View = "all"
	ViewPending   View = "pending"
	ViewCompleted View = "completed"
)

// ParseView maps a query value to a View. An empty value selects ViewAll.
func ParseView(s string) (View, error) {
	switch View(s) {
	case "", ViewAll:
		return ViewAll, nil
	case ViewPending, ViewCompleted:
		return View(s), nil
	}
	return "", fmt.Errorf("unknown view %q", s)
}

// Counts holds the size of each view.
type Counts struct {
	All       int `json:"all"`
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
}

// All returns every task in insertion order.
func (s *Store) All() []Task {
	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Pending returns the tasks not yet completed, in insertion order.
func (s *Store) Pending() []Task {
	return s.filter(false)
}

// Completed returns the completed tasks, in insertion order.
func (s *Store) Completed() []Task {
	return s.filter(true)
}

// View returns the projection named by v.
func (s *Store) View(v View) []Task {
	switch v {
	case ViewPending:
		return s.Pending()
	case ViewCompleted:
		return s.Completed()
	default:
		return s.All()
	}
}

// Counts returns the size of every view.
func (s *Store) Counts() Counts {
	c := Counts{All: len(s.tasks)}
	for _, t := range s.tasks {
		if t.Completed {
			c.Completed++
		} else {
			c.Pending++
		}
	}
	return c
}

func (s *Store) filter(completed bool) []Task {
	out := make([]Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if t.Completed == completed {
			out = append(out, t)
		}
	}
	return out
}
