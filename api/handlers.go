package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/MayaraRocha95/todo-list-hp/domain"
)

const maxBodySize = 16 << 10

var errInvalidBody = errors.New("invalid body")

// server adapts a TaskStore to HTTP. The store assumes a single caller, so
// every handler touching it holds mu.
type server struct {
	mu     sync.Mutex
	store  TaskStore
	sub    Subscriber
	logger *log.Logger

	// closed when the HTTP server shuts down so event streams end
	closing   chan struct{}
	closeOnce sync.Once
}

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, store TaskStore, sub Subscriber, auth Authenticator, logger *log.Logger) {
	if auth == nil {
		auth = allowAll{}
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	s := &server{store: store, sub: sub, logger: logger, closing: make(chan struct{})}
	e.Server.RegisterOnShutdown(s.closeStreams)

	e.Use(RequestID(), GzipRequestMiddleware())
	e.GET("/healthz", healthz)

	g := e.Group("/api", requireAuth(auth))
	g.GET("/tasks", s.instrument("/api/tasks", false, s.listTasks))
	g.POST("/tasks", s.instrument("/api/tasks", true, s.createTask))
	g.POST("/tasks/:id/toggle", s.instrument("/api/tasks/:id/toggle", true, s.toggleTask))
	g.DELETE("/tasks/:id", s.instrument("/api/tasks/:id", true, s.deleteTask))
	g.POST("/tasks/:id/edit", s.instrument("/api/tasks/:id/edit", false, s.beginEdit))
	g.GET("/edit", s.instrument("/api/edit", false, s.currentEdit))
	g.PUT("/edit", s.instrument("/api/edit", true, s.commitEdit))
	g.DELETE("/edit", s.instrument("/api/edit", false, s.cancelEdit))
	g.GET("/categories", listCategories)
	if sub != nil {
		g.GET("/notifications/stream", s.streamNotifications)
	}
}

func (s *server) closeStreams() {
	s.closeOnce.Do(func() { close(s.closing) })
}

func healthz(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

type instrumentedHandler func(c echo.Context, m *requestMetrics) error

func (s *server) instrument(route string, traced bool, h instrumentedHandler) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		metrics, ctx := newRequestMetrics(c.Request().Context(), s.logger, c.Request().Method, route, traced)
		c.SetRequest(c.Request().WithContext(ctx))
		metrics.SetRequestID(c.Response().Header().Get(echo.HeaderXRequestID))
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()
		return h(c, metrics)
	}
}

// locked runs fn while holding the store lock and records how long it took.
func (s *server) locked(m *requestMetrics, fn func()) {
	start := time.Now()
	func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		fn()
	}()
	m.ObserveStore(time.Since(start))
}

func (s *server) listTasks(c echo.Context, m *requestMetrics) error {
	view, err := domain.ParseView(c.QueryParam("view"))
	if err != nil {
		m.SetErrorStage("invalid_view")
		return c.String(http.StatusBadRequest, err.Error())
	}
	var resp tasksResponse
	s.locked(m, func() {
		resp = tasksResponse{Tasks: s.store.View(view), Counts: s.store.Counts()}
	})
	m.SetTasksReturned(len(resp.Tasks))
	return c.JSON(http.StatusOK, resp)
}

func (s *server) createTask(c echo.Context, m *requestMetrics) error {
	var req createTaskRequest
	if err := decodeBody(c, &req); err != nil {
		m.SetErrorStage("decode_body")
		return c.String(http.StatusBadRequest, err.Error())
	}
	category := domain.DefaultCategory
	if req.Category != "" {
		parsed, err := domain.ParseCategory(req.Category)
		if err != nil {
			m.SetErrorStage("invalid_category")
			return c.String(http.StatusBadRequest, err.Error())
		}
		category = parsed
	}

	var (
		task domain.Task
		ok   bool
	)
	s.locked(m, func() {
		task, ok = s.store.Create(c.Request().Context(), req.Text, category)
	})
	if !ok {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusCreated, task)
}

func (s *server) toggleTask(c echo.Context, m *requestMetrics) error {
	id, err := taskID(c)
	if err != nil {
		m.SetErrorStage("invalid_id")
		return c.String(http.StatusBadRequest, err.Error())
	}
	var (
		task domain.Task
		ok   bool
	)
	s.locked(m, func() {
		task, ok = s.store.ToggleCompletion(c.Request().Context(), id)
	})
	return taskOrNoContent(c, task, ok)
}

func (s *server) deleteTask(c echo.Context, m *requestMetrics) error {
	id, err := taskID(c)
	if err != nil {
		m.SetErrorStage("invalid_id")
		return c.String(http.StatusBadRequest, err.Error())
	}
	var (
		task domain.Task
		ok   bool
	)
	s.locked(m, func() {
		task, ok = s.store.Delete(c.Request().Context(), id)
	})
	return taskOrNoContent(c, task, ok)
}

func (s *server) beginEdit(c echo.Context, m *requestMetrics) error {
	id, err := taskID(c)
	if err != nil {
		m.SetErrorStage("invalid_id")
		return c.String(http.StatusBadRequest, err.Error())
	}
	var (
		state domain.EditState
		ok    bool
	)
	s.locked(m, func() {
		state, ok = s.store.BeginEdit(id)
	})
	if !ok {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, state)
}

func (s *server) currentEdit(c echo.Context, m *requestMetrics) error {
	var (
		state domain.EditState
		ok    bool
	)
	s.locked(m, func() {
		state, ok = s.store.Editing()
	})
	if !ok {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, state)
}

func (s *server) commitEdit(c echo.Context, m *requestMetrics) error {
	var req editRequest
	if err := decodeBody(c, &req); err != nil {
		m.SetErrorStage("decode_body")
		return c.String(http.StatusBadRequest, err.Error())
	}
	var (
		task domain.Task
		ok   bool
	)
	s.locked(m, func() {
		task, ok = s.store.CommitEdit(c.Request().Context(), req.Text)
	})
	return taskOrNoContent(c, task, ok)
}

func (s *server) cancelEdit(c echo.Context, m *requestMetrics) error {
	s.locked(m, s.store.CancelEdit)
	return c.NoContent(http.StatusNoContent)
}

func listCategories(c echo.Context) error {
	cats := domain.Categories()
	out := make([]categoryResponse, 0, len(cats))
	for _, cat := range cats {
		from, to := cat.Colors()
		out = append(out, categoryResponse{ID: cat, Name: cat.DisplayName(), From: from, To: to})
	}
	return c.JSON(http.StatusOK, out)
}

func taskID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, errors.New("invalid task id")
	}
	return id, nil
}

func taskOrNoContent(c echo.Context, task domain.Task, ok bool) error {
	if !ok {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, task)
}

func decodeBody(c echo.Context, dst any) error {
	lr := io.LimitReader(c.Request().Body, maxBodySize)
	dec := sonic.ConfigStd.NewDecoder(lr)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errInvalidBody
	}
	return nil
}
