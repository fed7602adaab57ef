package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/repairdesk/internal/config"
	invoicedomain "github.com/smallbiznis/repairdesk/internal/invoice/domain"
	"github.com/smallbiznis/repairdesk/internal/invoice/render"
	invoicerepository "github.com/smallbiznis/repairdesk/internal/invoice/repository"
	invoiceservice "github.com/smallbiznis/repairdesk/internal/invoice/service"
	"github.com/smallbiznis/repairdesk/internal/observability"
	"github.com/smallbiznis/repairdesk/internal/printsettings"
	publicinvoicedomain "github.com/smallbiznis/repairdesk/internal/publicinvoice/domain"
	publicinvoicerepository "github.com/smallbiznis/repairdesk/internal/publicinvoice/repository"
	publicinvoiceservice "github.com/smallbiznis/repairdesk/internal/publicinvoice/service"
	"github.com/smallbiznis/repairdesk/internal/ratelimit"
	"github.com/smallbiznis/repairdesk/internal/seed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testAdminToken = "secret-token"

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	*Server
	db    *gorm.DB
	store *countingStore
}

// countingStore counts how often the settings document is read.
type countingStore struct {
	printsettings.Store
	loads atomic.Int32
}

func (s *countingStore) Load(ctx context.Context) (printsettings.Settings, error) {
	s.loads.Add(1)
	return s.Store.Load(ctx)
}

func newTestServer(t *testing.T, perMinute int) *testServer {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, seed.EnsureSchema(db))
	require.NoError(t, seed.EnsureDemoData(db))

	cfg := config.Config{
		Environment:  "test",
		AdminToken:   testAdminToken,
		SettingsDir:  t.TempDir(),
		SettingsFile: "print-settings.json",
	}
	store := &countingStore{Store: printsettings.NewFileStore(cfg, zap.NewNop())}
	invoices := invoicerepository.Provide(db)

	invoiceSvc := invoiceservice.NewService(invoiceservice.ServiceParam{
		Repo:     invoices,
		Settings: store,
		Renderer: render.NewRenderer(),
		Log:      zap.NewNop(),
		Config:   cfg,
	})
	publicSvc := publicinvoiceservice.New(publicinvoiceservice.Params{
		Repo:     publicinvoicerepository.Provide(db),
		Invoices: invoices,
	})

	s := NewServer(ServerParams{
		Gin:              NewEngine(observability.Config{Environment: "test"}),
		Cfg:              cfg,
		InvoiceSvc:       invoiceSvc,
		PublicInvoiceSvc: publicSvc,
		Settings:         store,
		Limiter:          ratelimit.NewMemoryLimiter(perMinute),
	})
	return &testServer{Server: s, db: db, store: store}
}

func (ts *testServer) do(method, target string, body string, header http.Header) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	ts.Engine().ServeHTTP(rec, req)
	return rec
}

func adminHeader() http.Header {
	return http.Header{HeaderAdminToken: []string{testAdminToken}}
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, 30)

	rec := ts.do(http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestPrintInvoiceRequiresAdminToken(t *testing.T) {
	ts := newTestServer(t, 30)

	rec := ts.do(http.MethodGet, "/invoices/1/print", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Authentication required")

	rec = ts.do(http.MethodGet, "/invoices/1/print", "", http.Header{"Authorization": []string{"Bearer " + testAdminToken}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "INV-20240305-001")
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestEmptyAdminTokenDeniedInProduction(t *testing.T) {
	ts := newTestServer(t, 30)
	ts.cfg.AdminToken = ""
	ts.cfg.Environment = "production"

	rec := ts.do(http.MethodGet, "/invoices/1/print", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotContains(t, rec.Body.String(), "INV-20240305-001")

	rec = ts.do(http.MethodPut, "/api/print-settings", `{"title":"Hijacked"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"unauthorized"}`, rec.Body.String())

	_, err := ts.settings.Raw(t.Context())
	require.ErrorIs(t, err, printsettings.ErrSettingsNotFound)
}

func TestEmptyAdminTokenAllowedOutsideProduction(t *testing.T) {
	ts := newTestServer(t, 30)
	ts.cfg.AdminToken = ""
	ts.cfg.Environment = "development"

	rec := ts.do(http.MethodGet, "/invoices/1/print", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "INV-20240305-001")
}

func TestPrintInvoiceWithVerifiedPhone(t *testing.T) {
	ts := newTestServer(t, 30)

	rec := ts.do(http.MethodGet, "/invoices/1/print?phone=0100+000+0000&repairId=1", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "INV-20240305-001")
	assert.Contains(t, body, "REQ-20240303-001")
	assert.Contains(t, body, "EGP 230.00")
}

func TestPrintInvoicePublicAccessErrors(t *testing.T) {
	ts := newTestServer(t, 30)

	cases := []struct {
		name    string
		target  string
		status  int
		message string
	}{
		{"other invoice", "/invoices/2/print?phone=01000000000&repairId=1", http.StatusNotFound, "Invoice not found"},
		{"wrong phone", "/invoices/1/print?phone=01111111111&repairId=1", http.StatusForbidden, "Not authorized"},
		{"missing repair id", "/invoices/1/print?phone=01000000000", http.StatusBadRequest, "Missing information"},
		{"bad invoice id", "/invoices/abc/print", http.StatusBadRequest, "Missing information"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := ts.do(http.MethodGet, tc.target, "", nil)
			assert.Equal(t, tc.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.message)
		})
	}
}

func TestPrintInvoiceNotFoundForAdmin(t *testing.T) {
	ts := newTestServer(t, 30)

	rec := ts.do(http.MethodGet, "/invoices/99/print", "", adminHeader())

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invoice not found")
}

func TestErrorPageFollowsPrintLanguage(t *testing.T) {
	ts := newTestServer(t, 30)
	require.NoError(t, ts.settings.Save(t.Context(), map[string]any{"language": "ar"}))

	rec := ts.do(http.MethodGet, "/invoices/99/print", "", adminHeader())

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `dir="rtl"`)
	assert.Contains(t, rec.Body.String(), "الفاتورة غير موجودة")
	assert.Equal(t, int32(1), ts.store.loads.Load())
}

func TestPrintReadsSettingsOncePerRequest(t *testing.T) {
	ts := newTestServer(t, 30)

	rec := ts.do(http.MethodGet, "/invoices/1/print", "", adminHeader())
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int32(1), ts.store.loads.Load())

	rec = ts.do(http.MethodGet, "/invoices/99/print", "", adminHeader())
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, int32(2), ts.store.loads.Load())
}

func TestPublicPrintRedirects(t *testing.T) {
	ts := newTestServer(t, 30)

	rec := ts.do(http.MethodGet, "/public/invoices/print?phone=01000000000&repairId=1", "", nil)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/invoices/1/print?phone=01000000000&repairId=1", rec.Header().Get("Location"))
}

func TestPublicPrintMissingParams(t *testing.T) {
	ts := newTestServer(t, 30)

	rec := ts.do(http.MethodGet, "/public/invoices/print?repairId=1", "", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
}

func TestPublicSummary(t *testing.T) {
	ts := newTestServer(t, 30)

	rec := ts.do(http.MethodGet, "/public/invoices/summary?phone=01000000000&repairId=1", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeJSON(t, rec)
	assert.Equal(t, true, body["success"])
	invoice, ok := body["invoice"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1), invoice["id"])
	assert.Equal(t, "230", invoice["totalAmount"])
	assert.Equal(t, "100", invoice["amountPaid"])
	assert.Equal(t, "130", invoice["remainingAmount"])
	assert.Equal(t, "EGP", invoice["currency"])
}

func TestPublicSummaryErrorsAreJSON(t *testing.T) {
	ts := newTestServer(t, 30)

	rec := ts.do(http.MethodGet, "/public/invoices/summary?phone=01111111111&repairId=1", "", nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"forbidden"}`, rec.Body.String())
}

func TestPublicRateLimit(t *testing.T) {
	ts := newTestServer(t, 2)
	target := "/public/invoices/summary?phone=01000000000&repairId=1"

	for i := 0; i < 2; i++ {
		rec := ts.do(http.MethodGet, target, "", nil)
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i)
	}

	rec := ts.do(http.MethodGet, target, "", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"success":false,"error":"rate_limited"}`, rec.Body.String())

	other := ts.do(http.MethodGet, "/public/invoices/print?phone=01000000000&repairId=1", "", nil)
	assert.Equal(t, http.StatusFound, other.Code)
}

func TestDownloadInvoicePDFRequiresAdmin(t *testing.T) {
	ts := newTestServer(t, 30)

	rec := ts.do(http.MethodGet, "/invoices/1/pdf", "", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPrintSettingsDefaultsThenSaved(t *testing.T) {
	ts := newTestServer(t, 30)

	rec := ts.do(http.MethodGet, "/api/print-settings", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"unauthorized"}`, rec.Body.String())

	rec = ts.do(http.MethodGet, "/api/print-settings", "", adminHeader())
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeJSON(t, rec)
	assert.Equal(t, "defaults", body["source"])
	assert.Contains(t, body["settings"], "paperSize")

	rec = ts.do(http.MethodPut, "/api/print-settings",
		`{"company":{"name":"Fix It"},"invoice":{"financial":{"showTax":false}}}`, adminHeader())
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(http.MethodGet, "/api/print-settings", "", adminHeader())
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeJSON(t, rec)
	assert.Equal(t, "file", body["source"])

	rec = ts.do(http.MethodGet, "/invoices/1/print", "", adminHeader())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Fix It")
}

func TestUpdatePrintSettingsRejectsBadDocuments(t *testing.T) {
	ts := newTestServer(t, 30)

	rec := ts.do(http.MethodPut, "/api/print-settings", `{"invoice":"nope"}`, adminHeader())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad_request", decodeJSON(t, rec)["error"])

	rec = ts.do(http.MethodPut, "/api/print-settings", `not json`, adminHeader())
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	_, err := ts.settings.Raw(t.Context())
	assert.ErrorIs(t, err, printsettings.ErrSettingsNotFound)
}

func TestResolvePrintSetting(t *testing.T) {
	ts := newTestServer(t, 30)
	require.NoError(t, ts.settings.Save(t.Context(), map[string]any{
		"company": map[string]any{"name": "Fix It"},
		"invoice": map[string]any{"company": map[string]any{"name": "Fix It Invoices"}},
	}))

	rec := ts.do(http.MethodGet, "/api/print-settings/resolve?key=company.name", "", adminHeader())
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeJSON(t, rec)
	assert.Equal(t, "Fix It Invoices", body["value"])
	assert.Equal(t, "invoice", body["source"])
	assert.Equal(t, true, body["found"])
	assert.Equal(t, false, body["fallback"])

	rec = ts.do(http.MethodGet, "/api/print-settings/resolve?key=barcode.enabled&default=false", "", adminHeader())
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeJSON(t, rec)
	assert.Equal(t, "false", body["value"])
	assert.Equal(t, "default", body["source"])
	assert.Equal(t, false, body["found"])

	rec = ts.do(http.MethodGet, "/api/print-settings/resolve", "", adminHeader())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnknownRouteIsJSONNotFound(t *testing.T) {
	ts := newTestServer(t, 30)

	rec := ts.do(http.MethodGet, "/nope", "", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"not_found"}`, rec.Body.String())
}

func TestPanicRendersServerErrorPage(t *testing.T) {
	ts := newTestServer(t, 30)
	ts.Engine().GET("/boom", func(c *gin.Context) {
		panic("template exploded")
	})

	rec := ts.do(http.MethodGet, "/boom", "", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Server error")
	assert.Contains(t, rec.Body.String(), "template exploded")
}

func TestMapError(t *testing.T) {
	cases := []struct {
		err     error
		status  int
		errType string
		details bool
	}{
		{ErrInvalidRequest, http.StatusBadRequest, "bad_request", true},
		{publicinvoicedomain.ErrMissingParams, http.StatusBadRequest, "bad_request", true},
		{invoicedomain.ErrInvalidInvoiceID, http.StatusBadRequest, "bad_request", true},
		{ErrUnauthorized, http.StatusUnauthorized, "unauthorized", false},
		{publicinvoicedomain.ErrPhoneMismatch, http.StatusForbidden, "forbidden", false},
		{fmt.Errorf("load: %w", invoicedomain.ErrInvoiceNotFound), http.StatusNotFound, "not_found", false},
		{publicinvoicedomain.ErrInvoiceNotLinked, http.StatusNotFound, "not_found", false},
		{gorm.ErrRecordNotFound, http.StatusNotFound, "not_found", false},
		{ErrRateLimited, http.StatusTooManyRequests, "rate_limited", false},
		{errors.New("dial tcp: connection refused"), http.StatusServiceUnavailable, "service_unavailable", false},
		{errors.New("template: unexpected EOF"), http.StatusInternalServerError, "internal_error", true},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			status, payload := mapError(tc.err)
			assert.Equal(t, tc.status, status)
			assert.False(t, payload.Success)
			assert.Equal(t, tc.errType, payload.Error)
			assert.Equal(t, tc.details, payload.Details != "")
		})
	}
}
