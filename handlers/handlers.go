// Package handlers serves the ABAssist portal: the XML template generator
// under / and the transaction reversal screens under /tran-reversal.
//
// Failed actions never surface as error statuses. They redirect to the
// nearest sensible page with a flash message, the way the form-driven
// screens expect.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/arkantrust/abassist/reversal"
	"github.com/arkantrust/abassist/transactions"
	"github.com/arkantrust/abassist/views"
	"github.com/arkantrust/abassist/xmlgen"
)

// Deps are the services the handlers delegate to.
type Deps struct {
	Generator    *xmlgen.Service
	Transactions *transactions.Service
	Reversals    *reversal.Service
	Views        *views.Renderer
	Flash        *Flasher
	Logger       *slog.Logger

	// TemplatesDir and TemplateExt are shown when no template is found.
	TemplatesDir string
	TemplateExt  string
}

// Handler holds the dependencies for all portal handlers.
type Handler struct {
	gen       *xmlgen.Service
	txns      *transactions.Service
	reversals *reversal.Service
	views     *views.Renderer
	flash     *Flasher
	logger    *slog.Logger

	templatesDir string
	templateExt  string
}

// New creates a Handler from d.
func New(d Deps) *Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		gen:          d.Generator,
		txns:         d.Transactions,
		reversals:    d.Reversals,
		views:        d.Views,
		flash:        d.Flash,
		logger:       logger,
		templatesDir: d.TemplatesDir,
		templateExt:  d.TemplateExt,
	}
}

// Routes registers every portal route on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.home)
	mux.HandleFunc("GET /home", h.legacyHome)
	mux.HandleFunc("GET /template/{name}", h.templateForm)
	mux.HandleFunc("POST /generate/{name}", h.generate)

	mux.HandleFunc("GET /tran-reversal", h.reversalHome)
	mux.HandleFunc("POST /tran-reversal/search", h.search)
	mux.HandleFunc("GET /tran-reversal/transaction/{id}", h.transaction)
	mux.HandleFunc("POST /tran-reversal/initiate-reversal/{id}", h.initiateReversal)

	mux.HandleFunc("GET /healthz", h.healthz)
	mux.HandleFunc("/", h.notFound)
}

// Handler returns the routed portal wrapped in Middleware.
func (h *Handler) Handler() http.Handler {
	mux := http.NewServeMux()
	h.Routes(mux)
	return h.Middleware(mux)
}

// writeJSON serialises v as JSON and writes it to w with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// render executes page with the pending flash messages added to ctx.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page string, ctx views.Context) {
	if ctx == nil {
		ctx = views.Context{}
	}
	ctx["flashes"] = h.flash.Pop(w, r)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.views.Render(w, page, ctx); err != nil {
		loggerFrom(r.Context(), h.logger).Error("render page", "page", page, "error", err)
	}
}

// redirect queues a flash message and sends the browser to target.
func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, target, category, message string) {
	h.flash.Add(w, r, category, message)
	http.Redirect(w, r, target, http.StatusFound)
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, views.PageNotFound, nil)
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	if err := h.views.Render(w, views.PageServerError, views.Context{}); err != nil {
		w.Write([]byte("500 - Internal Server Error")) //nolint:errcheck
	}
}
