package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/baechuer/real-time-ressys/services/admin-console/internal/domain"
	"github.com/nicksnyder/go-i18n/v2/i18n"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names. Each one is a template set built from the shared layout.
const (
	PageDashboard = "dashboard"
	PageUsers     = "users"
	PageTodos     = "todos"
	PageUserTodos = "user_todos"
)

type DialogKind string

const (
	DialogUser    DialogKind = "user_form"
	DialogTodo    DialogKind = "todo_form"
	DialogReset   DialogKind = "reset_password"
	DialogConfirm DialogKind = "confirm"
)

type Summary struct {
	TotalUsers int
	TotalTodos int
	Completed  int
	Pending    int
}

type UserRow struct {
	domain.User
	Actions domain.RowActions
}

type TodoRow struct {
	domain.Todo
	Owner   string
	Actions domain.RowActions
}

type Confirm struct {
	Message string // message id
	Action  string
	Cancel  string
}

// Dialog is the modal drawn over the current list.
type Dialog struct {
	Kind    DialogKind
	Error   string
	User    domain.UserForm
	Todo    domain.TodoForm
	Reset   domain.ResetPasswordForm
	Owners  []domain.User
	Confirm Confirm
}

// OwnerName is the username of the todo's owner, or its raw id when the
// owner is not among Owners.
func (d Dialog) OwnerName() string {
	for _, u := range d.Owners {
		if u.ID == d.Todo.UserID {
			return u.Username
		}
	}
	return d.Todo.UserID
}

// Page is the render input. Error replaces the region content when set.
type Page struct {
	Name    string
	Title   string
	Active  string
	Flashes []string
	Error   string

	Summary   *Summary
	Users     []UserRow
	Todos     []TodoRow
	Owner     *domain.User
	OwnerID   string
	TodoCount int

	Dialog *Dialog

	Lang      string
	Languages []string
	loc       *i18n.Localizer
}

// T localizes a message id. Extra args are key/value pairs for the message template.
func (p *Page) T(id string, args ...any) string {
	if p.loc == nil {
		return id
	}
	data := make(map[string]any, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		if k, ok := args[i].(string); ok {
			data[k] = args[i+1]
		}
	}
	msg, err := p.loc.Localize(&i18n.LocalizeConfig{MessageID: id, TemplateData: data})
	if err != nil && msg == "" {
		return id
	}
	return msg
}

func UserRows(users []domain.User) []UserRow {
	rows := make([]UserRow, 0, len(users))
	for _, u := range users {
		rows = append(rows, UserRow{User: u, Actions: domain.CalculateUserActions(u)})
	}
	return rows
}

// TodoRows attaches owner usernames when known; unknown owners show the raw id.
func TodoRows(todos []domain.Todo, usernames map[string]string) []TodoRow {
	rows := make([]TodoRow, 0, len(todos))
	for _, t := range todos {
		owner := t.UserID
		if name, ok := usernames[t.UserID]; ok && name != "" {
			owner = name
		}
		rows = append(rows, TodoRow{Todo: t, Owner: owner, Actions: domain.CalculateTodoActions(t)})
	}
	return rows
}

// SummaryOf counts the dashboard totals.
func SummaryOf(users []domain.User, todos []domain.Todo) *Summary {
	s := &Summary{TotalUsers: len(users), TotalTodos: len(todos)}
	for _, t := range todos {
		if t.Completed {
			s.Completed++
		}
	}
	s.Pending = s.TotalTodos - s.Completed
	return s
}

type Renderer struct {
	pages map[string]*template.Template
	i18n  *Translator
}

func New(tr *Translator) (*Renderer, error) {
	pages, err := parsePages(templateFS)
	if err != nil {
		return nil, err
	}
	return &Renderer{pages: pages, i18n: tr}, nil
}

var funcs = template.FuncMap{
	"pathEscape": url.PathEscape,
}

func parsePages(fsys fs.FS) (map[string]*template.Template, error) {
	base, err := template.New("base").Funcs(funcs).ParseFS(fsys, "templates/layout.html", "templates/dialogs.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	pages := make(map[string]*template.Template)
	for _, name := range []string{PageDashboard, PageUsers, PageTodos, PageUserTodos} {
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(fsys, path.Join("templates", name+".html")); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		pages[name] = t
	}
	return pages, nil
}

// Render writes the full page, or only the content region when ?partial=1.
// Output is buffered so a template failure never leaks a half page.
func (rd *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, p *Page) error {
	t, ok := rd.pages[p.Name]
	if !ok {
		return fmt.Errorf("unknown page %q", p.Name)
	}

	p.loc, p.Lang = rd.i18n.Localizer(r)
	p.Languages = rd.i18n.Languages()

	name := "layout"
	if IsPartial(r) {
		name = "region"
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, p); err != nil {
		return fmt.Errorf("render %s: %w", p.Name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

func (rd *Renderer) SetLanguage(w http.ResponseWriter, tag string) bool {
	return rd.i18n.SetLanguage(w, tag)
}

func IsPartial(r *http.Request) bool {
	return strings.TrimSpace(r.URL.Query().Get("partial")) == "1"
}
