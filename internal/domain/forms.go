package domain

import "strings"

type FormMode string

const (
	ModeCreate FormMode = "create"
	ModeEdit   FormMode = "edit"
)

func modeFor(id string) FormMode {
	if strings.TrimSpace(id) == "" {
		return ModeCreate
	}
	return ModeEdit
}

// UserForm holds the submitted (or pre-filled) user dialog fields.
// Password is only sent on create.
type UserForm struct {
	ID       string
	Username string
	Email    string
	Role     string
	Password string
}

func (f UserForm) Mode() FormMode { return modeFor(f.ID) }

func UserFormFrom(u User) UserForm {
	return UserForm{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}

// User returns the entity the form describes, defaulting the role like the backend does.
func (f UserForm) User() User {
	role := strings.TrimSpace(f.Role)
	if role == "" {
		role = RoleUser
	}
	return User{
		ID:       strings.TrimSpace(f.ID),
		Username: strings.TrimSpace(f.Username),
		Email:    strings.TrimSpace(f.Email),
		Role:     role,
	}
}

type TodoForm struct {
	ID        string
	Title     string
	UserID    string
	Completed bool
}

func (f TodoForm) Mode() FormMode { return modeFor(f.ID) }

func TodoFormFrom(t Todo) TodoForm {
	return TodoForm{ID: t.ID, Title: t.Title, UserID: t.UserID, Completed: t.Completed}
}

func (f TodoForm) Todo() Todo {
	return Todo{
		ID:        strings.TrimSpace(f.ID),
		Title:     strings.TrimSpace(f.Title),
		UserID:    strings.TrimSpace(f.UserID),
		Completed: f.Completed,
	}
}

// ResetPasswordForm is the admin password reset dialog.
type ResetPasswordForm struct {
	UserID      string
	NewPassword string
}
