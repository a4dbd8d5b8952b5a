package store

import (
	"slices"
	"time"

	"github.com/baechuer/real-time-ressys/services/admin-console/internal/domain"
)

// View names a rendered collection, e.g. "users" or "todos".
type View string

const (
	ViewUsers View = "users"
	ViewTodos View = "todos"
)

// Snapshot is the render input of one view: what was last loaded from the
// backend, adjusted by the mutations applied since.
type Snapshot struct {
	Users    []domain.User `json:"users,omitempty"`
	Todos    []domain.Todo `json:"todos,omitempty"`
	LoadedAt time.Time     `json:"loaded_at"`
}

func (s Snapshot) User(id string) (domain.User, bool) {
	i := slices.IndexFunc(s.Users, func(u domain.User) bool { return u.ID == id })
	if i < 0 || id == "" {
		return domain.User{}, false
	}
	return s.Users[i], true
}

func (s Snapshot) Todo(id string) (domain.Todo, bool) {
	i := slices.IndexFunc(s.Todos, func(t domain.Todo) bool { return t.ID == id })
	if i < 0 || id == "" {
		return domain.Todo{}, false
	}
	return s.Todos[i], true
}

// Usernames maps user id to display name for owner columns.
func (s Snapshot) Usernames() map[string]string {
	names := make(map[string]string, len(s.Users))
	for _, u := range s.Users {
		if u.ID != "" {
			names[u.ID] = u.Username
		}
	}
	return names
}

// Mutation is a successful backend change expressed as a pure transformation.
type Mutation interface {
	apply(Snapshot) Snapshot
}

type UserSaved struct{ User domain.User }

type UserDeleted struct{ ID string }

type TodoSaved struct{ Todo domain.Todo }

type TodoDeleted struct{ ID string }

type TodoToggled struct {
	ID        string
	Completed bool
}

// Apply returns the next snapshot. The input is never modified.
func Apply(s Snapshot, m Mutation) Snapshot {
	next := Snapshot{
		Users:    slices.Clone(s.Users),
		Todos:    slices.Clone(s.Todos),
		LoadedAt: s.LoadedAt,
	}
	if m == nil {
		return next
	}
	return m.apply(next)
}

func (m UserSaved) apply(s Snapshot) Snapshot {
	if m.User.ID == "" {
		// created users come back without an id; the reload picks them up
		return s
	}
	if i := slices.IndexFunc(s.Users, func(u domain.User) bool { return u.ID == m.User.ID }); i >= 0 {
		s.Users[i] = m.User
		return s
	}
	s.Users = append(s.Users, m.User)
	return s
}

func (m UserDeleted) apply(s Snapshot) Snapshot {
	s.Users = slices.DeleteFunc(s.Users, func(u domain.User) bool { return u.ID == m.ID })
	return s
}

func (m TodoSaved) apply(s Snapshot) Snapshot {
	if m.Todo.ID == "" {
		return s
	}
	if i := slices.IndexFunc(s.Todos, func(t domain.Todo) bool { return t.ID == m.Todo.ID }); i >= 0 {
		s.Todos[i] = m.Todo
		return s
	}
	s.Todos = append(s.Todos, m.Todo)
	return s
}

func (m TodoDeleted) apply(s Snapshot) Snapshot {
	s.Todos = slices.DeleteFunc(s.Todos, func(t domain.Todo) bool { return t.ID == m.ID })
	return s
}

func (m TodoToggled) apply(s Snapshot) Snapshot {
	if i := slices.IndexFunc(s.Todos, func(t domain.Todo) bool { return t.ID == m.ID }); i >= 0 {
		s.Todos[i].Completed = m.Completed
	}
	return s
}
