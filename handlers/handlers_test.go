package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkantrust/abassist/models"
	"github.com/arkantrust/abassist/reversal"
	"github.com/arkantrust/abassist/store"
	"github.com/arkantrust/abassist/transactions"
	"github.com/arkantrust/abassist/views"
	"github.com/arkantrust/abassist/xmlgen"
)

type fakeQuerier struct {
	txns    map[string]*models.Transaction
	updates []string
}

func (f *fakeQuerier) Search(_ context.Context, c models.SearchCriteria) ([]models.Transaction, error) {
	var out []models.Transaction
	for _, t := range f.txns {
		if c.AccountNumber == "" || c.AccountNumber == t.AccountNumber {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeQuerier) Get(_ context.Context, id string) (*models.Transaction, error) {
	t, ok := f.txns[id]
	if !ok {
		return nil, transactions.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeQuerier) UpdateReversalStatus(_ context.Context, id, reversalID, status string) error {
	f.updates = append(f.updates, id+":"+reversalID+":"+status)
	return nil
}

type fixture struct {
	handler http.Handler
	h       *Handler
	log     *store.ScopedLog
	txns    *fakeQuerier
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFixture(t *testing.T, templates map[string]string) *fixture {
	t.Helper()
	return newFixtureWith(t, templates, reversal.NewMockDispatcher(discard()))
}

func newFixtureWith(t *testing.T, templates map[string]string, dispatcher reversal.Dispatcher) *fixture {
	t.Helper()

	dir := t.TempDir()
	for name, content := range templates {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	log, err := store.NewScopedLog(store.BackendBolt, filepath.Join(t.TempDir(), "generations.bolt"))
	require.NoError(t, err)

	q := &fakeQuerier{txns: map[string]*models.Transaction{
		"TXN1": {TxnID: "TXN1", TxnStatus: models.StatusCompleted, AccountNumber: "ACC1", TxnAmount: "120.50"},
		"TXN2": {TxnID: "TXN2", TxnStatus: models.StatusCompleted, ReversalStatus: models.StatusCompleted, AccountNumber: "ACC2"},
		"TXN3": {TxnID: "TXN3", TxnStatus: models.StatusPending, AccountNumber: "ACC1"},
	}}

	renderer, err := views.New()
	require.NoError(t, err)

	logger := discard()
	txns := transactions.NewService(q, logger)
	h := New(Deps{
		Generator:    xmlgen.NewService(xmlgen.NewStore(dir, ".xml"), log, logger),
		Transactions: txns,
		Reversals:    reversal.NewService(txns, dispatcher, logger),
		Views:        renderer,
		Flash:        NewFlasher("test-secret"),
		Logger:       logger,
		TemplatesDir: dir,
		TemplateExt:  ".xml",
	})
	return &fixture{handler: h.Handler(), h: h, log: log, txns: q}
}

func (f *fixture) do(t *testing.T, method, target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

// follow performs the redirect in rec carrying its flash cookie.
func (f *fixture) follow(t *testing.T, rec *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	t.Helper()
	require.Equal(t, http.StatusFound, rec.Code)
	return f.do(t, http.MethodGet, rec.Header().Get("Location"), nil, rec.Result().Cookies()...)
}

const paymentTemplate = `<payment><amount>{{ amount }}</amount><to>{{ account }}</to></payment>`

func TestHomeListsTemplates(t *testing.T) {
	f := newFixture(t, map[string]string{"payment.xml": paymentTemplate, "notes.txt": "x"})

	rec := f.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "payment.xml")
	assert.NotContains(t, rec.Body.String(), "notes.txt")
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestHomeWithoutTemplates(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No Templates Found")
}

func TestLegacyHomeRedirects(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/home", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestTemplateForm(t *testing.T) {
	f := newFixture(t, map[string]string{"payment.xml": paymentTemplate})

	rec := f.do(t, http.MethodGet, "/template/payment.xml", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `name="account"`)
	assert.Contains(t, body, `name="amount"`)
	assert.Less(t, strings.Index(body, `name="account"`), strings.Index(body, `name="amount"`))
}

func TestUnknownTemplateFlashes(t *testing.T) {
	f := newFixture(t, map[string]string{"payment.xml": paymentTemplate})

	rec := f.do(t, http.MethodGet, "/template/missing.xml", nil)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	page := f.follow(t, rec)
	assert.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), "not found.")
	assert.Contains(t, page.Body.String(), "alert-danger")
}

func TestTemplateTraversalRejected(t *testing.T) {
	f := newFixture(t, map[string]string{"payment.xml": paymentTemplate})

	rec := f.do(t, http.MethodGet, "/template/..%2Fetc%2Fpasswd", nil)
	assert.NotEqual(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "root:")
}

func TestTemplateNameNeedingEscape(t *testing.T) {
	f := newFixture(t, map[string]string{"my template.xml": paymentTemplate})

	home := f.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, home.Code)
	assert.Contains(t, home.Body.String(), `href="/template/my%20template.xml"`)

	form := f.do(t, http.MethodGet, "/template/my%20template.xml", nil)
	require.Equal(t, http.StatusOK, form.Code)
	assert.Contains(t, form.Body.String(), `action="/generate/my%20template.xml"`)

	rec := f.do(t, http.MethodPost, "/generate/my%20template.xml", url.Values{
		"amount":  {"1"},
		"account": {"ACC1"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `href="/template/my%20template.xml"`)
}

func TestGenerate(t *testing.T) {
	f := newFixture(t, map[string]string{"payment.xml": paymentTemplate})

	rec := f.do(t, http.MethodPost, "/generate/payment.xml", url.Values{
		"amount":  {"100"},
		"account": {"ACC1"},
		"extra":   {"ignored"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "&lt;amount&gt;100&lt;/amount&gt;")

	saved, err := f.log.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "payment.xml", saved.TemplateName)
	assert.Equal(t, `{"account":"ACC1","amount":"100"}`, saved.SubmittedData)
	assert.Equal(t, `<payment><amount>100</amount><to>ACC1</to></payment>`, saved.GeneratedXML)
}

func TestGenerateMissingValue(t *testing.T) {
	f := newFixture(t, map[string]string{"payment.xml": paymentTemplate})

	rec := f.do(t, http.MethodPost, "/generate/payment.xml", url.Values{"amount": {"100"}})
	assert.Equal(t, "/template/payment.xml", rec.Header().Get("Location"))

	page := f.follow(t, rec)
	assert.Contains(t, page.Body.String(), "missing value for account")

	_, err := f.log.Get(context.Background(), 1)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestNotFoundPage(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/no/such/page", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "404 - Page Not Found")
}

func TestHealthz(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestPanicRendersServerError(t *testing.T) {
	f := newFixture(t, nil)
	handler := f.h.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "500 - Internal Server Error")
}

func TestRequestIDIsPropagated(t *testing.T) {
	f := newFixture(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))
}
