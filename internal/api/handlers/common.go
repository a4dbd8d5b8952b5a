package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/baechuer/real-time-ressys/services/admin-console/internal/downstream"
	"github.com/baechuer/real-time-ressys/services/admin-console/internal/logger"
	"github.com/baechuer/real-time-ressys/services/admin-console/internal/view"
	"github.com/go-chi/chi/v5"
)

// SetLanguage switches the console language and returns to the referring page.
func (c *Console) SetLanguage(w http.ResponseWriter, r *http.Request) {
	if !c.view.SetLanguage(w, chi.URLParam(r, "tag")) {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, backTo(r), http.StatusSeeOther)
}

// backTo is the local path of the Referer, or "/".
func backTo(r *http.Request) string {
	u, err := url.Parse(r.Referer())
	if err != nil || !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") {
		return "/"
	}
	if u.RawQuery != "" {
		return u.Path + "?" + u.RawQuery
	}
	return u.Path
}

// render writes the page and drains flashes for full-page renders only.
func (c *Console) render(w http.ResponseWriter, r *http.Request, status int, p *view.Page) {
	if !view.IsPartial(r) {
		p.Flashes = c.flash.Pop(w, r)
	}
	if err := c.view.Render(w, r, status, p); err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Str("page", p.Name).Msg("render_failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// redirect closes the dialog and reloads the list, carrying a flash message.
func (c *Console) redirect(w http.ResponseWriter, r *http.Request, to, flash string) {
	if flash != "" {
		if err := c.flash.Add(w, r, flash); err != nil {
			logger.Ctx(r.Context()).Warn().Err(err).Msg("flash_save_failed")
		}
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
}

// failure logs a backend error and returns the status and region text for it.
func failure(ctx context.Context, err error, msg string) (int, string) {
	logger.Ctx(ctx).Warn().Err(err).Msg(msg)

	status := http.StatusBadGateway
	if errors.Is(err, downstream.ErrNotFound) {
		status = http.StatusNotFound
	}
	return status, err.Error()
}

func entityPath(collection, id string, action ...string) string {
	p := "/" + collection + "/" + url.PathEscape(id)
	if len(action) > 0 {
		p += "/" + strings.Join(action, "/")
	}
	return p
}

func formBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "on", "1", "yes":
		return true
	}
	return false
}
