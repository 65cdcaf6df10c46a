// Package views renders the portal's HTML pages with pongo2, whose
// Django-style syntax the page templates are written in.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"net/url"

	"github.com/flosch/pongo2/v6"
)

//go:embed templates/*.html
var files embed.FS

// Context is the data passed to a page.
type Context = pongo2.Context

// Page names.
const (
	PageTemplates       = "templates.html"
	PageTemplateForm    = "template_form.html"
	PageGenerated       = "generated.html"
	PageReversalHome    = "reversal_home.html"
	PageReversalResults = "reversal_results.html"
	PageTransaction     = "transaction.html"
	PageNotFound        = "404.html"
	PageServerError     = "500.html"
)

// Renderer executes page templates from an embedded template set.
type Renderer struct {
	set *pongo2.TemplateSet
}

// New returns a Renderer over the embedded pages.
func New() (*Renderer, error) {
	sub, err := fs.Sub(files, "templates")
	if err != nil {
		return nil, fmt.Errorf("views: %w", err)
	}
	return NewFromFS(sub), nil
}

// NewFromFS returns a Renderer loading pages from fsys.
func NewFromFS(fsys fs.FS) *Renderer {
	registerFilters()
	return &Renderer{set: pongo2.NewSet("abassist", pongo2.NewFSLoader(fsys))}
}

func registerFilters() {
	if !pongo2.FilterExists("pathescape") {
		_ = pongo2.RegisterFilter("pathescape", filterPathEscape)
	}
}

// filterPathEscape escapes a value for use as one URL path segment. The
// built-in urlencode filter escapes for query strings, turning spaces into
// "+", which the router does not decode in paths.
func filterPathEscape(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(url.PathEscape(in.String())), nil
}

// Render executes page with ctx and writes the result to w. Nothing is
// written when the page fails to execute.
func (r *Renderer) Render(w io.Writer, page string, ctx Context) error {
	tpl, err := r.set.FromCache(page)
	if err != nil {
		return fmt.Errorf("views: load %s: %w", page, err)
	}

	var buf bytes.Buffer
	if err := tpl.ExecuteWriter(ctx, &buf); err != nil {
		return fmt.Errorf("views: execute %s: %w", page, err)
	}
	_, err = buf.WriteTo(w)
	return err
}
