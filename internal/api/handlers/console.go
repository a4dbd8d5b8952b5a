package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/baechuer/real-time-ressys/services/admin-console/internal/audit"
	"github.com/baechuer/real-time-ressys/services/admin-console/internal/domain"
	"github.com/baechuer/real-time-ressys/services/admin-console/internal/logger"
	"github.com/baechuer/real-time-ressys/services/admin-console/internal/store"
	"github.com/baechuer/real-time-ressys/services/admin-console/internal/view"
)

type UserClient interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	CreateUser(ctx context.Context, form domain.UserForm) error
	UpdateUser(ctx context.Context, user domain.User) (*domain.User, error)
	DeleteUser(ctx context.Context, id string) error
	ResetPassword(ctx context.Context, id, newPassword string) error
}

type TodoClient interface {
	ListTodos(ctx context.Context) ([]domain.Todo, error)
	ListTodosByUser(ctx context.Context, userID string) ([]domain.Todo, error)
	CountTodosByUser(ctx context.Context, userID string) (int, error)
	GetTodo(ctx context.Context, id string) (*domain.Todo, error)
	CreateTodo(ctx context.Context, todo domain.Todo) (*domain.Todo, error)
	UpdateTodo(ctx context.Context, todo domain.Todo) (*domain.Todo, error)
	SetCompleted(ctx context.Context, id string, completed bool) (*domain.Todo, error)
	DeleteTodo(ctx context.Context, id string) error
}

type Flasher interface {
	Add(w http.ResponseWriter, r *http.Request, msg string) error
	Pop(w http.ResponseWriter, r *http.Request) []string
}

type Auditor interface {
	Record(ctx context.Context, entity, entityID string, action audit.Action)
}

// Console serves the server-rendered admin pages.
type Console struct {
	users UserClient
	todos TodoClient
	store store.Store
	view  *view.Renderer
	flash Flasher
	audit Auditor
	now   func() time.Time
}

func NewConsole(uc UserClient, tc TodoClient, st store.Store, rd *view.Renderer, fl Flasher, au Auditor) *Console {
	return &Console{
		users: uc,
		todos: tc,
		store: st,
		view:  rd,
		flash: fl,
		audit: au,
		now:   time.Now,
	}
}

// snapshot returns the stored view, fetching it when the store has none.
func (c *Console) snapshot(ctx context.Context, v store.View, fetch func(context.Context) (store.Snapshot, error)) (store.Snapshot, error) {
	snap, ok, err := c.store.Load(ctx, v)
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("view", string(v)).Msg("store_load_failed")
	}
	if ok {
		return snap, nil
	}
	return fetch(ctx)
}

func (c *Console) save(ctx context.Context, v store.View, snap store.Snapshot) {
	if err := c.store.Save(ctx, v, snap); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("view", string(v)).Msg("store_save_failed")
	}
}

func (c *Console) apply(ctx context.Context, v store.View, m store.Mutation) {
	if _, err := c.store.Apply(ctx, v, m); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("view", string(v)).Msg("store_apply_failed")
	}
}

func (c *Console) fetchUsers(ctx context.Context) (store.Snapshot, error) {
	users, err := c.users.ListUsers(ctx)
	if err != nil {
		return store.Snapshot{}, err
	}
	snap := store.Snapshot{Users: users, LoadedAt: c.now()}
	c.save(ctx, store.ViewUsers, snap)
	return snap, nil
}

// fetchTodos loads todos and, for the owner column, users. A users failure
// only degrades owner names to raw ids.
func (c *Console) fetchTodos(ctx context.Context) (store.Snapshot, error) {
	var (
		wg            sync.WaitGroup
		todos         []domain.Todo
		users         []domain.User
		todoErr, uErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		todos, todoErr = c.todos.ListTodos(ctx)
	}()
	go func() {
		defer wg.Done()
		users, uErr = c.users.ListUsers(ctx)
	}()
	wg.Wait()

	if todoErr != nil {
		return store.Snapshot{}, todoErr
	}
	if uErr != nil {
		logger.Ctx(ctx).Warn().Err(uErr).Msg("owner_lookup_degraded")
	}

	snap := store.Snapshot{Users: users, Todos: todos, LoadedAt: c.now()}
	c.save(ctx, store.ViewTodos, snap)
	return snap, nil
}
