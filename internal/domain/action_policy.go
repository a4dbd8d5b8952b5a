package domain

import "strings"

// RowActions tells the table renderer which row buttons to show.
type RowActions struct {
	CanEdit          bool   `json:"can_edit"`
	CanDelete        bool   `json:"can_delete"`
	CanToggle        bool   `json:"can_toggle"`
	CanResetPassword bool   `json:"can_reset_password"`
	CanListTodos     bool   `json:"can_list_todos"`
	ToggleTo         bool   `json:"toggle_to"`
	Reason           string `json:"reason,omitempty"`
}

// CalculateUserActions decides the actions for a user row.
// Rows without an id cannot be addressed by any action.
func CalculateUserActions(u User) RowActions {
	if strings.TrimSpace(u.ID) == "" {
		return RowActions{Reason: "missing_id"}
	}
	return RowActions{
		CanEdit:          true,
		CanDelete:        true,
		CanResetPassword: true,
		CanListTodos:     true,
	}
}

// CalculateTodoActions decides the actions for a todo row.
func CalculateTodoActions(t Todo) RowActions {
	if strings.TrimSpace(t.ID) == "" {
		return RowActions{Reason: "missing_id"}
	}
	return RowActions{
		CanEdit:   true,
		CanDelete: true,
		CanToggle: true,
		ToggleTo:  !t.Completed,
	}
}
