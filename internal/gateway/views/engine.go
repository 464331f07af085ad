// Package views реализует fiber.Views поверх html/template.
package views

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"
	"sync"
	"time"
)

const (
	layoutFile = "layout.html"
	pagesDir   = "pages"
	pageExt    = ".html"

	// DefaultLayout выполняется, если обработчик не указал другой.
	DefaultLayout = "layout"
)

// ErrUnknownView возвращается при попытке отрисовать отсутствующую страницу.
var ErrUnknownView = errors.New("unknown view")

//go:embed templates
var embedded embed.FS

// Engine хранит по набору шаблонов на каждую страницу: общий макет плюс сама страница.
type Engine struct {
	files fs.FS

	mu    sync.RWMutex
	pages map[string]*template.Template
}

// New создает движок. Пустой dir означает встроенные шаблоны.
func New(dir string) (*Engine, error) {
	var files fs.FS
	if dir == "" {
		sub, err := fs.Sub(embedded, "templates")
		if err != nil {
			return nil, fmt.Errorf("open embedded templates: %w", err)
		}
		files = sub
	} else {
		files = os.DirFS(dir)
	}
	return &Engine{files: files}, nil
}

// Funcs - функции, доступные в шаблонах.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"preview": Preview,
		"date": func(t time.Time) string {
			return t.Format("Jan 2, 2006")
		},
	}
}

// Load разбирает все страницы. Вызывается fiber при старте приложения.
func (e *Engine) Load() error {
	layout, err := template.New(layoutFile).Funcs(Funcs()).ParseFS(e.files, layoutFile)
	if err != nil {
		return fmt.Errorf("parse layout: %w", err)
	}

	names, err := fs.Glob(e.files, path.Join(pagesDir, "*"+pageExt))
	if err != nil {
		return fmt.Errorf("list pages: %w", err)
	}

	pages := make(map[string]*template.Template, len(names))
	for _, name := range names {
		set, err := layout.Clone()
		if err != nil {
			return fmt.Errorf("clone layout: %w", err)
		}
		if _, err := set.ParseFS(e.files, name); err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
		pages[strings.TrimSuffix(path.Base(name), pageExt)] = set
	}

	e.mu.Lock()
	e.pages = pages
	e.mu.Unlock()
	return nil
}

// Render отрисовывает страницу name внутри макета.
func (e *Engine) Render(w io.Writer, name string, binding any, layouts ...string) error {
	e.mu.RLock()
	if e.pages == nil {
		e.mu.RUnlock()
		if err := e.Load(); err != nil {
			return err
		}
		e.mu.RLock()
	}
	set, ok := e.pages[name]
	e.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownView, name)
	}

	layout := DefaultLayout
	if len(layouts) > 0 && layouts[0] != "" {
		layout = layouts[0]
	}
	if err := set.ExecuteTemplate(w, layout, binding); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	return nil
}
