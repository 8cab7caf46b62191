// Package render turns view structs into HTML using embedded templates.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"time"

	"quill/internal/i18n"

	"golang.org/x/text/message"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page template names.
const (
	TemplateIndex    = "index.html"
	TemplateGroup    = "group.html"
	TemplateProfile  = "profile.html"
	TemplatePost     = "post.html"
	TemplateFollow   = "follow.html"
	TemplatePostForm = "post_form.html"
	TemplateLogin    = "login.html"
	TemplateSignup   = "signup.html"
	Template404      = "404.html"
	Template500      = "500.html"
)

var pages = []string{
	TemplateIndex, TemplateGroup, TemplateProfile, TemplatePost, TemplateFollow,
	TemplatePostForm, TemplateLogin, TemplateSignup, Template404, Template500,
}

var shared = []string{"templates/base.html", "templates/partials.html"}

// Renderer executes page templates in one language.
type Renderer struct {
	pages   map[string]*template.Template
	printer *message.Printer
}

// New parses every page template for lang.
func New(lang string) (*Renderer, error) {
	printer := i18n.NewPrinter(lang)
	funcs := template.FuncMap{
		"t": func(key string, args ...interface{}) string {
			return printer.Sprintf(key, args...)
		},
		"media": func(key string) string {
			return "/media/" + key
		},
		"date": func(t time.Time) string {
			return t.UTC().Format("02.01.2006 15:04")
		},
		"pageURL": func(n int) string {
			return "?" + url.Values{"page": {fmt.Sprint(n)}}.Encode()
		},
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(pages)), printer: printer}
	for _, name := range pages {
		files := append(append([]string{}, shared...), "templates/"+name)
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS, files...)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.pages[name] = tmpl
	}
	return r, nil
}

// Render writes the named page to w.
func (r *Renderer) Render(w io.Writer, name string, data interface{}) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}
	return tmpl.ExecuteTemplate(w, "base", data)
}

// Bytes renders the named page into a buffer so a failed execution never
// leaves a half-written response.
func (r *Renderer) Bytes(name string, data interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, name, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// T translates a message key.
func (r *Renderer) T(key string, args ...interface{}) string {
	return r.printer.Sprintf(key, args...)
}
