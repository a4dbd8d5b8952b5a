package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/baechuer/real-time-ressys/services/admin-console/internal/audit"
	"github.com/baechuer/real-time-ressys/services/admin-console/internal/domain"
	"github.com/baechuer/real-time-ressys/services/admin-console/internal/store"
	"github.com/baechuer/real-time-ressys/services/admin-console/internal/view"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUserClient struct {
	mock.Mock
}

func (m *mockUserClient) ListUsers(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *mockUserClient) GetUser(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserClient) CreateUser(ctx context.Context, form domain.UserForm) error {
	return m.Called(ctx, form).Error(0)
}

func (m *mockUserClient) UpdateUser(ctx context.Context, user domain.User) (*domain.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserClient) DeleteUser(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockUserClient) ResetPassword(ctx context.Context, id, newPassword string) error {
	return m.Called(ctx, id, newPassword).Error(0)
}

type mockTodoClient struct {
	mock.Mock
}

func (m *mockTodoClient) ListTodos(ctx context.Context) ([]domain.Todo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Todo), args.Error(1)
}

func (m *mockTodoClient) ListTodosByUser(ctx context.Context, userID string) ([]domain.Todo, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Todo), args.Error(1)
}

func (m *mockTodoClient) CountTodosByUser(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *mockTodoClient) GetTodo(ctx context.Context, id string) (*domain.Todo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Todo), args.Error(1)
}

func (m *mockTodoClient) CreateTodo(ctx context.Context, todo domain.Todo) (*domain.Todo, error) {
	args := m.Called(ctx, todo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Todo), args.Error(1)
}

func (m *mockTodoClient) UpdateTodo(ctx context.Context, todo domain.Todo) (*domain.Todo, error) {
	args := m.Called(ctx, todo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Todo), args.Error(1)
}

func (m *mockTodoClient) SetCompleted(ctx context.Context, id string, completed bool) (*domain.Todo, error) {
	args := m.Called(ctx, id, completed)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Todo), args.Error(1)
}

func (m *mockTodoClient) DeleteTodo(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type fakeFlasher struct {
	added  []string
	queued []string
}

func (f *fakeFlasher) Add(_ http.ResponseWriter, _ *http.Request, msg string) error {
	f.added = append(f.added, msg)
	return nil
}

func (f *fakeFlasher) Pop(http.ResponseWriter, *http.Request) []string {
	out := f.queued
	f.queued = nil
	return out
}

type auditCall struct {
	Entity, ID string
	Action     audit.Action
}

type fakeAuditor struct {
	calls []auditCall
}

func (f *fakeAuditor) Record(_ context.Context, entity, entityID string, action audit.Action) {
	f.calls = append(f.calls, auditCall{Entity: entity, ID: entityID, Action: action})
}

type fixture struct {
	users   *mockUserClient
	todos   *mockTodoClient
	store   *store.MemoryStore
	flash   *fakeFlasher
	audit   *fakeAuditor
	console *Console
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	tr, err := view.NewTranslator("en-US")
	require.NoError(t, err)
	rd, err := view.New(tr)
	require.NoError(t, err)

	f := &fixture{
		users: new(mockUserClient),
		todos: new(mockTodoClient),
		store: store.NewMemoryStore(),
		flash: &fakeFlasher{},
		audit: &fakeAuditor{},
	}
	f.console = NewConsole(f.users, f.todos, f.store, rd, f.flash, f.audit)
	return f
}

func (f *fixture) seed(t *testing.T, v store.View, snap store.Snapshot) {
	t.Helper()
	require.NoError(t, f.store.Save(context.Background(), v, snap))
}

func withParams(req *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func getReq(target string, kv ...string) *http.Request {
	return withParams(httptest.NewRequest(http.MethodGet, target, nil), kv...)
}

func postReq(target string, form url.Values, kv ...string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return withParams(req, kv...)
}

func serve(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func rowCount(body string) int {
	return strings.Count(body, "<tr data-id=")
}
