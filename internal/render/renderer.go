// Package render turns an invoice view-model into a PDF through an XML
// layout template.
package render

import (
	"bytes"
	"context"
	"embed"
	"os"
	"text/template"

	"github.com/go-faster/errors"

	"github.com/xenking/commercial-invoice/internal/domain/invoice"
)

//go:embed templates/commercial_invoice.xml.tmpl
var templates embed.FS

const defaultTemplate = "templates/commercial_invoice.xml.tmpl"

// Config configures a Renderer.
type Config struct {
	// Locale selects number formatting, e.g. "en" or "de-DE".
	Locale string
	// TemplatePath overrides the embedded template.
	TemplatePath string
	Images       ImageLoader
}

// Renderer renders commercial invoice PDFs. It is safe for concurrent use.
type Renderer struct {
	tmpl   *template.Template
	images ImageLoader
}

var _ invoice.Renderer = (*Renderer)(nil)

// New parses the template once.
func New(cfg Config) (*Renderer, error) {
	p, err := printer(cfg.Locale)
	if err != nil {
		return nil, errors.Wrapf(err, "parse locale %q", cfg.Locale)
	}

	var src []byte
	if cfg.TemplatePath != "" {
		src, err = os.ReadFile(cfg.TemplatePath)
	} else {
		src, err = templates.ReadFile(defaultTemplate)
	}
	if err != nil {
		return nil, errors.Wrap(err, "read template")
	}

	tmpl, err := template.New("commercial_invoice").
		Option("missingkey=error").
		Funcs(funcs(p)).
		Parse(string(src))
	if err != nil {
		return nil, errors.Wrap(err, "parse template")
	}

	return &Renderer{tmpl: tmpl, images: cfg.Images}, nil
}

// Layout executes the template and parses the resulting layout.
func (r *Renderer) Layout(vm *invoice.ViewModel) (*Layout, error) {
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, vm); err != nil {
		return nil, errors.Wrap(err, "execute template")
	}
	l, err := ParseLayout(&buf)
	if err != nil {
		return nil, errors.Wrap(err, "parse layout")
	}
	return l, nil
}

// Render implements invoice.Renderer.
func (r *Renderer) Render(ctx context.Context, vm *invoice.ViewModel) ([]byte, error) {
	l, err := r.Layout(vm)
	if err != nil {
		return nil, err
	}
	out, err := draw(ctx, l, r.images)
	if err != nil {
		return nil, errors.Wrap(err, "draw")
	}
	return out, nil
}
