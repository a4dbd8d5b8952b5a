package downstream

import (
	"context"
	"net/url"

	"github.com/baechuer/real-time-ressys/services/admin-console/internal/domain"
)

type TodoClient struct {
	c *Client
}

func NewTodoClient(c *Client) *TodoClient {
	return &TodoClient{c: c}
}

func (t *TodoClient) ListTodos(ctx context.Context) ([]domain.Todo, error) {
	return t.list(ctx, "/todos")
}

func (t *TodoClient) ListTodosByUser(ctx context.Context, userID string) ([]domain.Todo, error) {
	return t.list(ctx, "/todos/"+url.PathEscape(userID))
}

func (t *TodoClient) list(ctx context.Context, path string) ([]domain.Todo, error) {
	var todos []domain.Todo
	if err := t.c.Get(ctx, path, &todos); err != nil {
		return nil, err
	}
	if todos == nil {
		todos = make([]domain.Todo, 0)
	}
	return todos, nil
}

func (t *TodoClient) CountTodos(ctx context.Context) (int, error) {
	var c domain.Count
	if err := t.c.Get(ctx, "/todos/count", &c); err != nil {
		return 0, err
	}
	return c.Count, nil
}

func (t *TodoClient) CountTodosByUser(ctx context.Context, userID string) (int, error) {
	var c domain.Count
	if err := t.c.Get(ctx, "/todos/"+url.PathEscape(userID)+"/count", &c); err != nil {
		return 0, err
	}
	return c.Count, nil
}

func (t *TodoClient) GetTodo(ctx context.Context, id string) (*domain.Todo, error) {
	var todo domain.Todo
	if err := t.c.Get(ctx, "/todo/"+url.PathEscape(id), &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

// CreateTodo posts title/userId as form values; that is how the backend reads them.
func (t *TodoClient) CreateTodo(ctx context.Context, todo domain.Todo) (*domain.Todo, error) {
	form := url.Values{}
	form.Set("title", todo.Title)
	form.Set("userId", todo.UserID)

	var created domain.Todo
	if err := t.c.PostForm(ctx, "/todo", form, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

type updateTodoRequest struct {
	Title     *string `json:"title,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

func (t *TodoClient) UpdateTodo(ctx context.Context, todo domain.Todo) (*domain.Todo, error) {
	return t.update(ctx, todo.ID, updateTodoRequest{Title: &todo.Title, Completed: &todo.Completed})
}

func (t *TodoClient) SetCompleted(ctx context.Context, id string, completed bool) (*domain.Todo, error) {
	return t.update(ctx, id, updateTodoRequest{Completed: &completed})
}

func (t *TodoClient) update(ctx context.Context, id string, body updateTodoRequest) (*domain.Todo, error) {
	var updated domain.Todo
	if err := t.c.PutJSON(ctx, "/todo/"+url.PathEscape(id), body, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (t *TodoClient) DeleteTodo(ctx context.Context, id string) error {
	return t.c.Delete(ctx, "/todo/"+url.PathEscape(id), nil)
}
