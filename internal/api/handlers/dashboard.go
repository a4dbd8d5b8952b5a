package handlers

import (
	"net/http"
	"sync"

	"github.com/baechuer/real-time-ressys/services/admin-console/internal/domain"
	"github.com/baechuer/real-time-ressys/services/admin-console/internal/view"
)

// Dashboard renders the totals. Users and todos are fetched concurrently;
// either failure replaces the summary with the error.
func (c *Console) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		wg         sync.WaitGroup
		users      []domain.User
		todos      []domain.Todo
		uErr, tErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		users, uErr = c.users.ListUsers(ctx)
	}()
	go func() {
		defer wg.Done()
		todos, tErr = c.todos.ListTodos(ctx)
	}()
	wg.Wait()

	page := &view.Page{Name: view.PageDashboard, Title: "dashboard.title", Active: "dashboard"}

	err := uErr
	if err == nil {
		err = tErr
	}
	if err != nil {
		status, msg := failure(ctx, err, "dashboard_fetch_failed")
		page.Error = msg
		c.render(w, r, status, page)
		return
	}

	page.Summary = view.SummaryOf(users, todos)
	c.render(w, r, http.StatusOK, page)
}
