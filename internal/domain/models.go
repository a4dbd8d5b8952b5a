package domain

import (
	"bytes"
	"encoding/json"
	"strings"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the canonical admin view of a backend user.
// Decoding also accepts the legacy keys "_id" and "name".
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role,omitempty"`
}

func (u *User) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID       flexID `json:"id"`
		LegacyID flexID `json:"_id"`
		Username string `json:"username"`
		Name     string `json:"name"`
		Email    string `json:"email"`
		Role     string `json:"role"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	*u = User{
		ID:       firstNonEmpty(string(raw.ID), string(raw.LegacyID)),
		Username: firstNonEmpty(raw.Username, raw.Name),
		Email:    raw.Email,
		Role:     raw.Role,
	}
	return nil
}

// Todo is the canonical admin view of a backend todo.
// Decoding also accepts the legacy keys "_id" and "user_id".
type Todo struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

func (t *Todo) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID           flexID `json:"id"`
		LegacyID     flexID `json:"_id"`
		UserID       flexID `json:"userId"`
		LegacyUserID flexID `json:"user_id"`
		Title        string `json:"title"`
		Completed    bool   `json:"completed"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	*t = Todo{
		ID:        firstNonEmpty(string(raw.ID), string(raw.LegacyID)),
		UserID:    firstNonEmpty(string(raw.UserID), string(raw.LegacyUserID)),
		Title:     raw.Title,
		Completed: raw.Completed,
	}
	return nil
}

// Count is the body of the /todos/count endpoints.
type Count struct {
	Count int `json:"count"`
}

// flexID accepts string or numeric identifiers; null decodes to "".
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
