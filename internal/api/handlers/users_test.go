package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/baechuer/real-time-ressys/services/admin-console/internal/audit"
	"github.com/baechuer/real-time-ressys/services/admin-console/internal/domain"
	"github.com/baechuer/real-time-ressys/services/admin-console/internal/downstream"
	"github.com/baechuer/real-time-ressys/services/admin-console/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func seededUsers() store.Snapshot {
	return store.Snapshot{Users: []domain.User{
		{ID: "1", Username: "ann", Email: "a@x.com", Role: domain.RoleAdmin},
		{ID: "2", Username: "bob", Email: "b@x.com", Role: domain.RoleUser},
	}}
}

func TestListUsers_LegacyPayload(t *testing.T) {
	f := newFixture(t)

	var users []domain.User
	require.NoError(t, json.Unmarshal([]byte(`[{"_id":"1","name":"Ann","email":"a@x.com"}]`), &users))
	f.users.On("ListUsers", mock.Anything).Return(users, nil)

	w := serve(f.console.ListUsers, getReq("/users"))

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Equal(t, 1, rowCount(body))
	assert.Contains(t, body, "Ann")
	assert.Contains(t, body, "a@x.com")
	assert.Contains(t, body, `href="/users/1/delete"`)

	snap, ok, err := f.store.Load(context.Background(), store.ViewUsers)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, snap.Users, 1)
}

func TestListUsers_RowCountMatches(t *testing.T) {
	f := newFixture(t)
	f.users.On("ListUsers", mock.Anything).Return(seededUsers().Users, nil)

	w := serve(f.console.ListUsers, getReq("/users"))

	assert.Equal(t, 2, rowCount(w.Body.String()))
}

func TestListUsers_Empty(t *testing.T) {
	f := newFixture(t)
	f.users.On("ListUsers", mock.Anything).Return([]domain.User{}, nil)

	w := serve(f.console.ListUsers, getReq("/users"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, rowCount(w.Body.String()))
	assert.Contains(t, w.Body.String(), "<thead>")
	assert.NotContains(t, w.Body.String(), "text-danger")
}

func TestListUsers_BackendError(t *testing.T) {
	f := newFixture(t)
	f.users.On("ListUsers", mock.Anything).Return(nil, &downstream.StatusError{Method: http.MethodGet, Path: "/users", StatusCode: 500})

	w := serve(f.console.ListUsers, getReq("/users"))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `<p class="text-danger">Error: failed to fetch /users (status 500)</p>`)
	assert.NotContains(t, body, "<table")
	f.users.AssertNumberOfCalls(t, "ListUsers", 1)
}

func TestListUsers_ShowsFlash(t *testing.T) {
	f := newFixture(t)
	f.flash.queued = []string{"flash.user_deleted"}
	f.users.On("ListUsers", mock.Anything).Return([]domain.User{}, nil)

	w := serve(f.console.ListUsers, getReq("/users"))

	assert.Contains(t, w.Body.String(), "User deleted")
}

func TestNewUser_EmptyForm(t *testing.T) {
	f := newFixture(t)
	f.seed(t, store.ViewUsers, seededUsers())

	w := serve(f.console.NewUser, getReq("/users/new"))

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "<dialog open")
	assert.Contains(t, body, `name="id" value=""`)
	assert.Contains(t, body, `name="password"`)
	assert.Equal(t, 2, rowCount(body))
	f.users.AssertNotCalled(t, "ListUsers", mock.Anything)
}

func TestEditUser_FromStore(t *testing.T) {
	f := newFixture(t)
	f.seed(t, store.ViewUsers, seededUsers())

	w := serve(f.console.EditUser, getReq("/users/1/edit", "id", "1"))

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Edit User")
	assert.Contains(t, body, `name="id" value="1"`)
	assert.Contains(t, body, `value="ann"`)
	assert.Contains(t, body, `<option value="admin" selected>`)
	f.users.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything)
}

func TestEditUser_FallsBackToBackend(t *testing.T) {
	f := newFixture(t)
	f.users.On("ListUsers", mock.Anything).Return([]domain.User{}, nil).Once()
	f.users.On("GetUser", mock.Anything, "7").Return(&domain.User{ID: "7", Username: "zed", Email: "z@x.com"}, nil)

	w := serve(f.console.EditUser, getReq("/users/7/edit", "id", "7"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `value="zed"`)
	f.users.AssertExpectations(t)
}

func TestEditUser_NotFound(t *testing.T) {
	f := newFixture(t)
	f.seed(t, store.ViewUsers, seededUsers())
	f.users.On("GetUser", mock.Anything, "9").Return(nil, &downstream.StatusError{Method: http.MethodGet, Path: "/user/9", StatusCode: 404})

	w := serve(f.console.EditUser, getReq("/users/9/edit", "id", "9"))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Error: failed to fetch /user/9 (status 404)")
	assert.NotContains(t, w.Body.String(), "<dialog")
}

func TestSaveUser_EmptyIDCreates(t *testing.T) {
	f := newFixture(t)
	want := domain.UserForm{Username: "carl", Email: "c@x.com", Role: "user", Password: "pw"}
	f.users.On("CreateUser", mock.Anything, want).Return(nil).Once()

	w := serve(f.console.SaveUser, postReq("/users/save", url.Values{
		"id": {""}, "username": {"carl"}, "email": {"c@x.com"}, "role": {"user"}, "password": {"pw"},
	}))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/users", w.Header().Get("Location"))
	f.users.AssertExpectations(t)
	f.users.AssertNotCalled(t, "UpdateUser", mock.Anything, mock.Anything)
	assert.Equal(t, []string{"flash.user_created"}, f.flash.added)
	assert.Equal(t, []auditCall{{Entity: "user", Action: audit.ActionCreated}}, f.audit.calls)
}

func TestSaveUser_PopulatedIDUpdates(t *testing.T) {
	f := newFixture(t)
	f.seed(t, store.ViewUsers, seededUsers())

	want := domain.User{ID: "2", Username: "bobby", Email: "b@x.com", Role: domain.RoleUser}
	f.users.On("UpdateUser", mock.Anything, want).Return(&want, nil).Once()

	w := serve(f.console.SaveUser, postReq("/users/save", url.Values{
		"id": {"2"}, "username": {"bobby"}, "email": {"b@x.com"}, "role": {""},
	}))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	f.users.AssertExpectations(t)
	f.users.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)

	snap, _, err := f.store.Load(context.Background(), store.ViewUsers)
	require.NoError(t, err)
	u, ok := snap.User("2")
	require.True(t, ok)
	assert.Equal(t, "bobby", u.Username)
	assert.Equal(t, []auditCall{{Entity: "user", ID: "2", Action: audit.ActionUpdated}}, f.audit.calls)
}

func TestSaveUser_FailureKeepsDialogOpen(t *testing.T) {
	f := newFixture(t)
	f.seed(t, store.ViewUsers, seededUsers())
	f.users.On("UpdateUser", mock.Anything, mock.Anything).
		Return(nil, &downstream.StatusError{Method: http.MethodPut, Path: "/user/2", StatusCode: 400, Message: "email taken"})

	w := serve(f.console.SaveUser, postReq("/users/save", url.Values{
		"id": {"2"}, "username": {"bobby"}, "email": {"a@x.com"},
	}))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "<dialog open")
	assert.Contains(t, body, "Error: failed to update /user/2 (status 400): email taken")
	assert.Contains(t, body, `value="bobby"`)
	assert.Equal(t, 2, rowCount(body))
	assert.Empty(t, f.flash.added)
	assert.Empty(t, f.audit.calls)
}

func TestConfirmDeleteUser_NoRequest(t *testing.T) {
	f := newFixture(t)
	f.seed(t, store.ViewUsers, seededUsers())

	w := serve(f.console.ConfirmDeleteUser, getReq("/users/1/delete", "id", "1"))

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Delete this user?")
	assert.Contains(t, body, `action="/users/1/delete"`)
	f.users.AssertNotCalled(t, "DeleteUser", mock.Anything, mock.Anything)
}

func TestDeleteUser_Confirmed(t *testing.T) {
	f := newFixture(t)
	f.seed(t, store.ViewUsers, seededUsers())
	f.users.On("DeleteUser", mock.Anything, "1").Return(nil)

	w := serve(f.console.DeleteUser, postReq("/users/1/delete", url.Values{"confirm": {"yes"}}, "id", "1"))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/users", w.Header().Get("Location"))
	f.users.AssertNumberOfCalls(t, "DeleteUser", 1)

	snap, _, err := f.store.Load(context.Background(), store.ViewUsers)
	require.NoError(t, err)
	_, ok := snap.User("1")
	assert.False(t, ok)
	assert.Equal(t, []string{"flash.user_deleted"}, f.flash.added)
}

func TestDeleteUser_Cancelled(t *testing.T) {
	f := newFixture(t)

	w := serve(f.console.DeleteUser, postReq("/users/1/delete", url.Values{}, "id", "1"))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	f.users.AssertNotCalled(t, "DeleteUser", mock.Anything, mock.Anything)
	assert.Empty(t, f.audit.calls)
}

func TestDeleteUser_Failure(t *testing.T) {
	f := newFixture(t)
	f.seed(t, store.ViewUsers, seededUsers())
	f.users.On("DeleteUser", mock.Anything, "1").Return(downstream.ErrTimeout)

	w := serve(f.console.DeleteUser, postReq("/users/1/delete", url.Values{"confirm": {"yes"}}, "id", "1"))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Delete this user?")
	assert.Contains(t, body, "Error: backend_timeout")
	assert.Equal(t, 2, rowCount(body))
}

func TestResetPassword(t *testing.T) {
	t.Run("form", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, store.ViewUsers, seededUsers())

		w := serve(f.console.ResetPasswordForm, getReq("/users/1/reset-password", "id", "1"))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `action="/users/1/reset-password"`)
	})

	t.Run("success", func(t *testing.T) {
		f := newFixture(t)
		f.users.On("ResetPassword", mock.Anything, "1", "s3cret").Return(nil)

		w := serve(f.console.ResetPassword, postReq("/users/1/reset-password", url.Values{"newPassword": {"s3cret"}}, "id", "1"))

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, []auditCall{{Entity: "user", ID: "1", Action: audit.ActionPasswordReset}}, f.audit.calls)
	})

	t.Run("failure", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, store.ViewUsers, seededUsers())
		f.users.On("ResetPassword", mock.Anything, "1", "x").
			Return(&downstream.StatusError{Method: http.MethodPut, Path: "/reset-password/1", StatusCode: 500})

		w := serve(f.console.ResetPassword, postReq("/users/1/reset-password", url.Values{"newPassword": {"x"}}, "id", "1"))

		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Contains(t, w.Body.String(), "Error: failed to update /reset-password/1 (status 500)")
		assert.Contains(t, w.Body.String(), `name="newPassword"`)
	})
}

func TestUserTodos(t *testing.T) {
	f := newFixture(t)
	f.seed(t, store.ViewUsers, seededUsers())
	f.todos.On("ListTodosByUser", mock.Anything, "1").Return([]domain.Todo{
		{ID: "t1", Title: "milk", UserID: "1"},
		{ID: "t2", Title: "eggs", UserID: "1", Completed: true},
	}, nil)
	f.todos.On("CountTodosByUser", mock.Anything, "1").Return(2, nil)

	w := serve(f.console.UserTodos, getReq("/users/1/todos", "id", "1"))

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Todos for ann")
	assert.Contains(t, body, "2 todos")
	assert.Equal(t, 2, rowCount(body))

	// owner resolved from the cached users view; per-user lists are not cached
	f.users.AssertNotCalled(t, "ListUsers", mock.Anything)
	_, ok, err := f.store.Load(context.Background(), store.ViewTodos)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUserTodos_DistinctIDsLeaveStoreUnchanged(t *testing.T) {
	f := newFixture(t)
	f.seed(t, store.ViewUsers, seededUsers())
	f.todos.On("ListTodosByUser", mock.Anything, mock.Anything).Return([]domain.Todo{}, nil)
	f.todos.On("CountTodosByUser", mock.Anything, mock.Anything).Return(0, nil)

	before, _, err := f.store.Load(context.Background(), store.ViewUsers)
	require.NoError(t, err)

	for _, id := range []string{"a1", "b2", "c3", "d4"} {
		w := serve(f.console.UserTodos, getReq("/users/"+id+"/todos", "id", id))
		require.Equal(t, http.StatusOK, w.Code)
	}

	after, _, err := f.store.Load(context.Background(), store.ViewUsers)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	_, ok, err := f.store.Load(context.Background(), store.ViewTodos)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUserTodos_CountFailure(t *testing.T) {
	f := newFixture(t)
	f.todos.On("ListTodosByUser", mock.Anything, "1").Return([]domain.Todo{}, nil)
	f.todos.On("CountTodosByUser", mock.Anything, "1").Return(0, downstream.ErrUnavailable)

	w := serve(f.console.UserTodos, getReq("/users/1/todos", "id", "1"))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "Error: backend_unavailable")
	assert.NotContains(t, w.Body.String(), "<table")
}
