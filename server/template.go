package server

import (
	"embed"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

//go:embed templates/*.html
var templateFS embed.FS

type templateRenderer struct {
	templates *template.Template
}

func newTemplateRenderer() (*templateRenderer, error) {
	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse templates")
	}
	return &templateRenderer{templates: templates}, nil
}

func (r *templateRenderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}

// page carries the fields the shared layout reads.
type page struct {
	Title         string
	CurrentUserID string
}

type authPage struct {
	page
}

type memoItem struct {
	ID         string
	Body       string
	Visibility string
}

type indexPage struct {
	page
	Username string
	UserID   string
	Memos    []memoItem
}

type detailPage struct {
	page
	Memo       memoItem
	CreatedAt  string
	Authorized bool
	Tags       []string
	// MemoHTML is sanitized before it reaches the template.
	MemoHTML template.HTML
}

type createPage struct {
	page
	MaxLength int
}

type tagSearchPage struct {
	page
	TagName string
	Memos   []memoItem
}

type searchPage struct {
	page
	Query       string
	OtherUserID string
	// AnswerHTML is redacted and sanitized before it reaches the template.
	AnswerHTML template.HTML
}
