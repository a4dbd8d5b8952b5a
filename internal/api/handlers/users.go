package handlers

import (
	"net/http"
	"strings"
	"sync"

	"github.com/baechuer/real-time-ressys/services/admin-console/internal/audit"
	"github.com/baechuer/real-time-ressys/services/admin-console/internal/domain"
	"github.com/baechuer/real-time-ressys/services/admin-console/internal/store"
	"github.com/baechuer/real-time-ressys/services/admin-console/internal/view"
	"github.com/go-chi/chi/v5"
)

const usersPath = "/users"

func (c *Console) usersPage(snap store.Snapshot) *view.Page {
	return &view.Page{
		Name:   view.PageUsers,
		Title:  "users.title",
		Active: "users",
		Users:  view.UserRows(snap.Users),
	}
}

// renderUsers draws the users list from the store (fetching on a miss) with
// an optional dialog on top.
func (c *Console) renderUsers(w http.ResponseWriter, r *http.Request, status int, d *view.Dialog) {
	ctx := r.Context()

	snap, err := c.snapshot(ctx, store.ViewUsers, c.fetchUsers)
	page := c.usersPage(snap)
	page.Dialog = d
	if err != nil {
		st, msg := failure(ctx, err, "users_fetch_failed")
		page.Error = msg
		if status == http.StatusOK {
			status = st
		}
	}
	c.render(w, r, status, page)
}

// ListUsers always re-fetches; it is the reload target after every mutation.
func (c *Console) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	snap, err := c.fetchUsers(ctx)
	if err != nil {
		status, msg := failure(ctx, err, "users_fetch_failed")
		page := c.usersPage(store.Snapshot{})
		page.Error = msg
		c.render(w, r, status, page)
		return
	}
	c.render(w, r, http.StatusOK, c.usersPage(snap))
}

func (c *Console) NewUser(w http.ResponseWriter, r *http.Request) {
	c.renderUsers(w, r, http.StatusOK, &view.Dialog{Kind: view.DialogUser, User: domain.UserForm{Role: domain.RoleUser}})
}

// EditUser pre-fills the dialog from the store, falling back to the backend.
func (c *Console) EditUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	snap, _ := c.snapshot(ctx, store.ViewUsers, c.fetchUsers)
	u, ok := snap.User(id)
	if !ok {
		got, err := c.users.GetUser(ctx, id)
		if err != nil {
			status, msg := failure(ctx, err, "user_lookup_failed")
			page := c.usersPage(snap)
			page.Error = msg
			c.render(w, r, status, page)
			return
		}
		u = *got
	}

	c.renderUsers(w, r, http.StatusOK, &view.Dialog{Kind: view.DialogUser, User: domain.UserFormFrom(u)})
}

// SaveUser creates when the hidden id is empty and updates otherwise.
func (c *Console) SaveUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	form := domain.UserForm{
		ID:       strings.TrimSpace(r.FormValue("id")),
		Username: r.FormValue("username"),
		Email:    r.FormValue("email"),
		Role:     r.FormValue("role"),
		Password: r.FormValue("password"),
	}

	var (
		err    error
		action audit.Action
		flash  string
	)
	if form.Mode() == domain.ModeCreate {
		err = c.users.CreateUser(ctx, form)
		action, flash = audit.ActionCreated, "flash.user_created"
	} else {
		var updated *domain.User
		updated, err = c.users.UpdateUser(ctx, form.User())
		if err == nil {
			c.apply(ctx, store.ViewUsers, store.UserSaved{User: *updated})
		}
		action, flash = audit.ActionUpdated, "flash.user_updated"
	}

	if err != nil {
		status, msg := failure(ctx, err, "user_save_failed")
		form.Password = ""
		c.renderUsers(w, r, status, &view.Dialog{Kind: view.DialogUser, User: form, Error: msg})
		return
	}

	c.audit.Record(ctx, "user", form.ID, action)
	c.redirect(w, r, usersPath, flash)
}

func (c *Console) ConfirmDeleteUser(w http.ResponseWriter, r *http.Request) {
	c.renderUsers(w, r, http.StatusOK, deleteDialog(usersPath, chi.URLParam(r, "id"), "users.confirm_delete", ""))
}

// DeleteUser issues the DELETE only when the confirmation form was submitted.
func (c *Console) DeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if r.FormValue("confirm") != "yes" {
		http.Redirect(w, r, usersPath, http.StatusSeeOther)
		return
	}

	if err := c.users.DeleteUser(ctx, id); err != nil {
		status, msg := failure(ctx, err, "user_delete_failed")
		c.renderUsers(w, r, status, deleteDialog(usersPath, id, "users.confirm_delete", msg))
		return
	}

	c.apply(ctx, store.ViewUsers, store.UserDeleted{ID: id})
	c.audit.Record(ctx, "user", id, audit.ActionDeleted)
	c.redirect(w, r, usersPath, "flash.user_deleted")
}

func (c *Console) ResetPasswordForm(w http.ResponseWriter, r *http.Request) {
	c.renderUsers(w, r, http.StatusOK, &view.Dialog{
		Kind:  view.DialogReset,
		Reset: domain.ResetPasswordForm{UserID: chi.URLParam(r, "id")},
	})
}

func (c *Console) ResetPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if err := c.users.ResetPassword(ctx, id, r.FormValue("newPassword")); err != nil {
		status, msg := failure(ctx, err, "password_reset_failed")
		c.renderUsers(w, r, status, &view.Dialog{
			Kind:  view.DialogReset,
			Reset: domain.ResetPasswordForm{UserID: id},
			Error: msg,
		})
		return
	}

	c.audit.Record(ctx, "user", id, audit.ActionPasswordReset)
	c.redirect(w, r, usersPath, "flash.password_reset")
}

// UserTodos lists one user's todos with the backend's count for them.
func (c *Console) UserTodos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	page := &view.Page{Name: view.PageUserTodos, Title: "todos.title", Active: "users", OwnerID: id}

	var (
		wg              sync.WaitGroup
		todos           []domain.Todo
		count           int
		listErr, cntErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		todos, listErr = c.todos.ListTodosByUser(ctx, id)
	}()
	go func() {
		defer wg.Done()
		count, cntErr = c.todos.CountTodosByUser(ctx, id)
	}()
	wg.Wait()

	err := listErr
	if err == nil {
		err = cntErr
	}
	if err != nil {
		status, msg := failure(ctx, err, "user_todos_fetch_failed")
		page.Error = msg
		c.render(w, r, status, page)
		return
	}

	users, _ := c.snapshot(ctx, store.ViewUsers, c.fetchUsers)
	if u, ok := users.User(id); ok {
		page.Owner = &u
	}

	page.Todos = view.TodoRows(todos, nil)
	page.TodoCount = count
	c.render(w, r, http.StatusOK, page)
}

func deleteDialog(collection, id, message, errMsg string) *view.Dialog {
	p := entityPath(strings.TrimPrefix(collection, "/"), id, "delete")
	return &view.Dialog{
		Kind:  view.DialogConfirm,
		Error: errMsg,
		Confirm: view.Confirm{
			Message: message,
			Action:  p,
			Cancel:  collection,
		},
	}
}
