package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/arkantrust/abassist/views"
	"github.com/arkantrust/abassist/xmlgen"
)

// home handles GET /. The directory is rescanned on every request.
func (h *Handler) home(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, views.PageTemplates, views.Context{
		"templates":     h.gen.Templates(),
		"templates_dir": h.templatesDir,
		"template_ext":  h.templateExt,
	})
}

// legacyHome handles GET /home, kept for old bookmarks.
func (h *Handler) legacyHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusFound)
}

// templateForm handles GET /template/{name}.
func (h *Handler) templateForm(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	form, err := h.gen.Form(name)
	if err != nil {
		h.templateFailure(w, r, name, err)
		return
	}

	h.render(w, r, http.StatusOK, views.PageTemplateForm, views.Context{
		"template_name": name,
		"variables":     form.Variables,
	})
}

// generate handles POST /generate/{name}. Form fields that are not template
// variables are ignored; an empty field counts as a value.
func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	formURL := "/template/" + url.PathEscape(name)

	if err := r.ParseForm(); err != nil {
		h.redirect(w, r, formURL, FlashError, "Error generating XML. Please check your input.")
		return
	}

	form, err := h.gen.Form(name)
	if err != nil {
		h.templateFailure(w, r, name, err)
		return
	}

	sub, err := xmlgen.NewSubmission(form.Variables, r.PostForm, false)
	if err == nil {
		var res *xmlgen.Result
		res, err = h.gen.Generate(r.Context(), name, sub)
		if err == nil {
			h.render(w, r, http.StatusOK, views.PageGenerated, views.Context{
				"template_name":  res.TemplateName,
				"generated_xml":  res.Output,
				"submitted_data": map[string]string(res.Submission),
				"warning":        res.Warning,
				"logged":         res.Logged,
			})
			return
		}
	}

	var rerr *xmlgen.RenderError
	switch {
	case errors.As(err, &rerr):
		h.redirect(w, r, formURL, FlashError, fmt.Sprintf("Error generating XML: %s", rerr.Error()))
	case errors.Is(err, xmlgen.ErrTemplateNotFound), errors.Is(err, xmlgen.ErrStoreUnavailable):
		h.templateFailure(w, r, name, err)
	default:
		loggerFrom(r.Context(), h.logger).Error("error generating xml", "template", name, "error", err)
		h.redirect(w, r, formURL, FlashError, "Error generating XML. Please check your input.")
	}
}

func (h *Handler) templateFailure(w http.ResponseWriter, r *http.Request, name string, err error) {
	if errors.Is(err, xmlgen.ErrTemplateNotFound) {
		h.redirect(w, r, "/", FlashError, fmt.Sprintf("Template %q not found.", name))
		return
	}
	loggerFrom(r.Context(), h.logger).Error("error reading template", "template", name, "error", err)
	h.redirect(w, r, "/", FlashError, fmt.Sprintf("Error reading template %q.", name))
}
