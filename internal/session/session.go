package session

import (
	"net/http"

	"github.com/gorilla/sessions"
)

const cookieName = "admin_console"

// DevSecret signs flash cookies when no secret is configured. It is public,
// so anyone can forge cookies signed with it.
const DevSecret = "admin-console-dev-secret"

// Flashes carries one-shot notices across the post/redirect/get hop.
type Flashes struct {
	store sessions.Store
}

// New builds a cookie-backed flash store signed with secret, or with
// DevSecret when secret is empty.
func New(secret string) *Flashes {
	if secret == "" {
		secret = DevSecret
	}
	cs := sessions.NewCookieStore([]byte(secret))
	cs.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &Flashes{store: cs}
}

// Add queues a message for the next page render.
func (f *Flashes) Add(w http.ResponseWriter, r *http.Request, msg string) error {
	s, err := f.store.Get(r, cookieName)
	if err != nil && s == nil {
		return err
	}
	s.AddFlash(msg)
	return s.Save(r, w)
}

// Pop drains queued messages. A tampered or expired cookie yields none.
func (f *Flashes) Pop(w http.ResponseWriter, r *http.Request) []string {
	s, err := f.store.Get(r, cookieName)
	if err != nil || s == nil {
		return nil
	}
	raw := s.Flashes()
	if len(raw) == 0 {
		return nil
	}
	_ = s.Save(r, w)

	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if msg, ok := v.(string); ok {
			out = append(out, msg)
		}
	}
	return out
}
