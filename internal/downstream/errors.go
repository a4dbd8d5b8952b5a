package downstream

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

var (
	ErrTimeout     = errors.New("backend_timeout")
	ErrUnavailable = errors.New("backend_unavailable")
	ErrNotFound    = errors.New("resource_not_found")
	ErrDecode      = errors.New("invalid_response_body")
)

// StatusError is a backend response outside the 2xx range.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	// Message is the backend's {"error": "..."} text, when it sent one.
	Message string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("failed to %s %s (status %d)", verb(e.Method), e.Path, e.StatusCode)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Is lets callers test a 404 with errors.Is(err, ErrNotFound).
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// CallError is a request that never produced a usable response.
type CallError struct {
	Method string
	Path   string
	Err    error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", verb(e.Method), e.Path, e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }

func decodeError(method, path string, resp *http.Response) error {
	se := &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode}

	// backend error bodies look like {"error": "User not found"}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	var payload struct {
		Error any `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		switch v := payload.Error.(type) {
		case string:
			se.Message = v
		case map[string]any:
			if m, ok := v["message"].(string); ok {
				se.Message = m
			}
		}
	}
	se.Message = strings.TrimSpace(se.Message)
	return se
}

func verb(method string) string {
	switch method {
	case http.MethodGet:
		return "fetch"
	case http.MethodDelete:
		return "delete"
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	default:
		return strings.ToLower(method)
	}
}
