package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/task-tracker/internal/api"
	"github.com/phrazzld/task-tracker/internal/api/middleware"
	"github.com/phrazzld/task-tracker/internal/domain"
	"github.com/phrazzld/task-tracker/internal/platform/logger"
	"github.com/phrazzld/task-tracker/internal/platform/sqlite"
	"github.com/phrazzld/task-tracker/internal/service"
	"github.com/phrazzld/task-tracker/internal/store"
	"github.com/stretchr/testify/require"
)

// MockTaskService is a function-field mock of service.TaskService.
type MockTaskService struct {
	ListTasksFn  func(ctx context.Context) ([]*domain.Task, error)
	GetTaskFn    func(ctx context.Context, id int64) (*domain.Task, error)
	CreateTaskFn func(ctx context.Context, input service.TaskInput) (*domain.Task, error)
	UpdateTaskFn func(ctx context.Context, id int64, input service.TaskInput) (store.UpdateResult, error)
	DeleteTaskFn func(ctx context.Context, id int64) error
}

func (m *MockTaskService) ListTasks(ctx context.Context) ([]*domain.Task, error) {
	if m.ListTasksFn != nil {
		return m.ListTasksFn(ctx)
	}
	return []*domain.Task{}, nil
}

func (m *MockTaskService) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	if m.GetTaskFn != nil {
		return m.GetTaskFn(ctx, id)
	}
	return nil, service.ErrTaskNotFound
}

func (m *MockTaskService) CreateTask(ctx context.Context, input service.TaskInput) (*domain.Task, error) {
	if m.CreateTaskFn != nil {
		return m.CreateTaskFn(ctx, input)
	}
	t := input.Task()
	t.ID = 1
	return t, nil
}

func (m *MockTaskService) UpdateTask(
	ctx context.Context,
	id int64,
	input service.TaskInput,
) (store.UpdateResult, error) {
	if m.UpdateTaskFn != nil {
		return m.UpdateTaskFn(ctx, id, input)
	}
	return store.UpdateApplied, nil
}

func (m *MockTaskService) DeleteTask(ctx context.Context, id int64) error {
	if m.DeleteTaskFn != nil {
		return m.DeleteTaskFn(ctx, id)
	}
	return nil
}

var _ service.TaskService = (*MockTaskService)(nil)

// newRouter wires the handler the way the server does.
func newRouter(t *testing.T, svc service.TaskService, pinger api.Pinger) http.Handler {
	t.Helper()

	_, log := logger.NewTestLogger()
	h, err := api.NewTaskHandler(svc, log)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewTraceMiddleware(log))
	r.Use(api.CanonicalPaths())

	if pinger != nil {
		r.Get("/health", api.HealthHandler(pinger, log))
	}
	h.RegisterRoutes(r)
	return r
}

// newSQLiteRouter returns a router over a real service and an in-memory store.
func newSQLiteRouter(t *testing.T) (http.Handler, store.TaskStore) {
	t.Helper()

	_, log := logger.NewTestLogger()
	db, err := sqlite.Open(context.Background(), ":memory:", log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close(db) })

	tasks := sqlite.NewGormTaskStore(db, log)
	svc, err := service.NewTaskService(tasks, log)
	require.NoError(t, err)

	return newRouter(t, svc, tasks), tasks
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func postForm(t *testing.T, h http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}
