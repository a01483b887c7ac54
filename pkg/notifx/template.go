package notifx

import (
	"bytes"
	"html/template"
	"sync"
	texttemplate "text/template"
)

// TemplateRegistry stores and renders named templates. HTML bodies use
// html/template; plain-text alternatives use text/template.
type TemplateRegistry struct {
	templates map[string]*template.Template
	texts     map[string]*texttemplate.Template
	mu        sync.RWMutex
}

// NewTemplateRegistry creates a new template registry.
func NewTemplateRegistry() *TemplateRegistry {
	return &TemplateRegistry{
		templates: make(map[string]*template.Template),
		texts:     make(map[string]*texttemplate.Template),
	}
}

// Register parses and stores an HTML template by name.
func (r *TemplateRegistry) Register(name, tmplString string) error {
	t, err := template.New(name).Option("missingkey=error").Parse(tmplString)
	if err != nil {
		return notifxErrors.NewWithCause(ErrTemplateParse, err).WithDetail("template", name)
	}

	r.mu.Lock()
	r.templates[name] = t
	r.mu.Unlock()
	return nil
}

// RegisterText parses and stores a plain-text template by name.
func (r *TemplateRegistry) RegisterText(name, tmplString string) error {
	t, err := texttemplate.New(name).Option("missingkey=error").Parse(tmplString)
	if err != nil {
		return notifxErrors.NewWithCause(ErrTemplateParse, err).WithDetail("template", name)
	}

	r.mu.Lock()
	r.texts[name] = t
	r.mu.Unlock()
	return nil
}

// HasText reports whether a plain-text template is registered under name.
func (r *TemplateRegistry) HasText(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.texts[name]
	return ok
}

// Render executes a named HTML template with the given data.
func (r *TemplateRegistry) Render(name string, data interface{}) (string, error) {
	r.mu.RLock()
	t, ok := r.templates[name]
	r.mu.RUnlock()

	if !ok {
		return "", notifxErrors.New(ErrTemplateNotFound).WithDetail("template", name)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", notifxErrors.NewWithCause(ErrTemplateRender, err).WithDetail("template", name)
	}
	return buf.String(), nil
}

// RenderText executes a named plain-text template with the given data.
func (r *TemplateRegistry) RenderText(name string, data interface{}) (string, error) {
	r.mu.RLock()
	t, ok := r.texts[name]
	r.mu.RUnlock()

	if !ok {
		return "", notifxErrors.New(ErrTemplateNotFound).WithDetail("template", name)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", notifxErrors.NewWithCause(ErrTemplateRender, err).WithDetail("template", name)
	}
	return buf.String(), nil
}
