package handlers

import (
	"net/http"
	"strings"

	"github.com/baechuer/real-time-ressys/services/admin-console/internal/audit"
	"github.com/baechuer/real-time-ressys/services/admin-console/internal/domain"
	"github.com/baechuer/real-time-ressys/services/admin-console/internal/store"
	"github.com/baechuer/real-time-ressys/services/admin-console/internal/view"
	"github.com/go-chi/chi/v5"
)

const todosPath = "/todos"

func (c *Console) todosPage(snap store.Snapshot) *view.Page {
	return &view.Page{
		Name:   view.PageTodos,
		Title:  "todos.title",
		Active: "todos",
		Todos:  view.TodoRows(snap.Todos, snap.Usernames()),
	}
}

func (c *Console) renderTodos(w http.ResponseWriter, r *http.Request, status int, d *view.Dialog) {
	ctx := r.Context()

	snap, err := c.snapshot(ctx, store.ViewTodos, c.fetchTodos)
	page := c.todosPage(snap)
	if d != nil && d.Kind == view.DialogTodo {
		d.Owners = snap.Users
	}
	page.Dialog = d
	if err != nil {
		st, msg := failure(ctx, err, "todos_fetch_failed")
		page.Error = msg
		if status == http.StatusOK {
			status = st
		}
	}
	c.render(w, r, status, page)
}

func (c *Console) ListTodos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	snap, err := c.fetchTodos(ctx)
	if err != nil {
		status, msg := failure(ctx, err, "todos_fetch_failed")
		page := c.todosPage(store.Snapshot{})
		page.Error = msg
		c.render(w, r, status, page)
		return
	}
	c.render(w, r, http.StatusOK, c.todosPage(snap))
}

func (c *Console) NewTodo(w http.ResponseWriter, r *http.Request) {
	c.renderTodos(w, r, http.StatusOK, &view.Dialog{Kind: view.DialogTodo})
}

func (c *Console) EditTodo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	snap, _ := c.snapshot(ctx, store.ViewTodos, c.fetchTodos)
	t, ok := snap.Todo(id)
	if !ok {
		got, err := c.todos.GetTodo(ctx, id)
		if err != nil {
			status, msg := failure(ctx, err, "todo_lookup_failed")
			page := c.todosPage(snap)
			page.Error = msg
			c.render(w, r, status, page)
			return
		}
		t = *got
	}

	c.renderTodos(w, r, http.StatusOK, &view.Dialog{Kind: view.DialogTodo, Todo: domain.TodoFormFrom(t)})
}

func (c *Console) SaveTodo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	form := domain.TodoForm{
		ID:        strings.TrimSpace(r.FormValue("id")),
		Title:     r.FormValue("title"),
		UserID:    r.FormValue("userId"),
		Completed: formBool(r.FormValue("completed")),
	}

	var (
		saved  *domain.Todo
		err    error
		action = audit.ActionCreated
		flash  = "flash.todo_created"
	)
	if form.Mode() == domain.ModeCreate {
		saved, err = c.todos.CreateTodo(ctx, form.Todo())
	} else {
		saved, err = c.todos.UpdateTodo(ctx, form.Todo())
		action, flash = audit.ActionUpdated, "flash.todo_updated"
	}

	if err != nil {
		status, msg := failure(ctx, err, "todo_save_failed")
		c.renderTodos(w, r, status, &view.Dialog{Kind: view.DialogTodo, Todo: form, Error: msg})
		return
	}

	entityID := saved.ID
	if entityID == "" {
		entityID = form.ID
	}
	c.apply(ctx, store.ViewTodos, store.TodoSaved{Todo: *saved})
	c.audit.Record(ctx, "todo", entityID, action)
	c.redirect(w, r, todosPath, flash)
}

func (c *Console) ConfirmDeleteTodo(w http.ResponseWriter, r *http.Request) {
	c.renderTodos(w, r, http.StatusOK, deleteDialog(todosPath, chi.URLParam(r, "id"), "todos.confirm_delete", ""))
}

func (c *Console) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if r.FormValue("confirm") != "yes" {
		http.Redirect(w, r, todosPath, http.StatusSeeOther)
		return
	}

	if err := c.todos.DeleteTodo(ctx, id); err != nil {
		status, msg := failure(ctx, err, "todo_delete_failed")
		c.renderTodos(w, r, status, deleteDialog(todosPath, id, "todos.confirm_delete", msg))
		return
	}

	c.apply(ctx, store.ViewTodos, store.TodoDeleted{ID: id})
	c.audit.Record(ctx, "todo", id, audit.ActionDeleted)
	c.redirect(w, r, todosPath, "flash.todo_deleted")
}

// ToggleTodo flips completed based on the stored row, or the backend copy on a miss.
func (c *Console) ToggleTodo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	snap, _ := c.snapshot(ctx, store.ViewTodos, c.fetchTodos)
	t, ok := snap.Todo(id)
	if !ok {
		got, err := c.todos.GetTodo(ctx, id)
		if err != nil {
			status, msg := failure(ctx, err, "todo_lookup_failed")
			page := c.todosPage(snap)
			page.Error = msg
			c.render(w, r, status, page)
			return
		}
		t = *got
	}

	next := !t.Completed
	if _, err := c.todos.SetCompleted(ctx, id, next); err != nil {
		status, msg := failure(ctx, err, "todo_toggle_failed")
		page := c.todosPage(snap)
		page.Error = msg
		c.render(w, r, status, page)
		return
	}

	c.apply(ctx, store.ViewTodos, store.TodoToggled{ID: id, Completed: next})
	c.audit.Record(ctx, "todo", id, audit.ActionToggled)
	c.redirect(w, r, todosPath, "flash.todo_toggled")
}
