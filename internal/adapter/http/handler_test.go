package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-render/internal/adapter/repository"
	"resume-render/internal/auth"
	"resume-render/internal/logger"
	"resume-render/internal/render"
	"resume-render/internal/usecase"
	"resume-render/pkg/ai"
)

const (
	testDevice  = "dev-1"
	testSecret  = "pay-secret"
	tokenSecret = "token-secret"
)

type summarizerFunc func(ctx context.Context, req ai.SummaryRequest) (ai.SummaryResponse, error)

func (f summarizerFunc) GenerateSummary(ctx context.Context, req ai.SummaryRequest) (ai.SummaryResponse, error) {
	return f(ctx, req)
}

type fakeExporter struct{}

func (fakeExporter) ExportImage(context.Context, string) ([]byte, error) { return []byte("png"), nil }

func (fakeExporter) ExportDocument(context.Context, string) ([]byte, error) {
	return []byte("%PDF-1.7"), nil
}

type downRemote struct{}

func (downRemote) Owned(context.Context, string) ([]string, error) { return nil, errors.New("down") }

func (downRemote) Add(context.Context, string, string) error { return errors.New("down") }

type testEnv struct {
	app   *fiber.App
	store *repository.MemoryStore
	token string
}

func newTestEnv(t *testing.T, remote usecase.EntitlementStore, summarizer ai.Summarizer) *testEnv {
	t.Helper()
	store := repository.NewMemoryStore()
	log := logger.NewNop()

	ents := usecase.NewEntitlementService(store, remote, time.Millisecond, render.Find, log)
	editors := usecase.NewEditorRegistry(usecase.EditorDeps{Store: store, Summarizer: summarizer, Log: log, Debounce: time.Hour})
	t.Cleanup(editors.Close)
	checkout := usecase.NewCheckout(usecase.CheckoutConfig{KeyID: "key", KeySecret: testSecret}, ents, render.Find, log)
	exports := usecase.NewExportService(fakeExporter{}, nil, log)

	verifier := auth.NewVerifier(tokenSecret)
	token, err := verifier.Issue("user-1", time.Hour)
	require.NoError(t, err)

	app := fiber.New()
	app.Use(SessionMiddleware(verifier, log))
	NewHandler(editors, ents, checkout, exports, log).Register(app)
	return &testEnv{app: app, store: store, token: token}
}

type reqOpt func(r *httpRequest)

type httpRequest struct {
	token string
	body  string
}

func signed(token string) reqOpt { return func(r *httpRequest) { r.token = token } }

func body(s string) reqOpt { return func(r *httpRequest) { r.body = s } }

func (e *testEnv) do(t *testing.T, method, path string, opts ...reqOpt) (int, string, map[string][]string) {
	t.Helper()
	var o httpRequest
	for _, opt := range opts {
		opt(&o)
	}
	req := httptest.NewRequest(method, path, strings.NewReader(o.body))
	req.Header.Set("Cookie", DeviceCookie+"="+testDevice)
	if o.body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if o.token != "" {
		req.Header.Set("Authorization", "Bearer "+o.token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(b), resp.Header
}

func decode(t *testing.T, s string) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(s), &m))
	return m
}

func TestTemplates(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	status, out, _ := env.do(t, "GET", "/templates")
	require.Equal(t, fiber.StatusOK, status)
	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Len(t, list, 7)
	assert.Equal(t, "classic", list[0]["id"])
	assert.Equal(t, "free", list[0]["type"])
	assert.Equal(t, float64(49), list[6]["price"])

	status, _, _ = env.do(t, "GET", "/templates/nope")
	assert.Equal(t, fiber.StatusNotFound, status)

	status, out, _ = env.do(t, "GET", "/templates/modern/preview")
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, out, `data-template="modern"`)
	assert.Contains(t, out, "opacity:0")
}

func TestSessionMiddleware(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	req := httptest.NewRequest("GET", "/healthz", nil)
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Contains(t, resp.Header.Get("Set-Cookie"), DeviceCookie+"=")

	status, _, _ := env.do(t, "GET", "/healthz", signed("not-a-token"))
	assert.Equal(t, fiber.StatusUnauthorized, status)

	req = httptest.NewRequest("GET", "/healthz", nil)
	req.Header.Set("Authorization", "Basic abc")
	resp, err = env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestEditorGate(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	tests := []struct {
		name     string
		method   string
		path     string
		signedIn bool
		status   int
		location string
	}{
		{name: "unknown template", method: "GET", path: "/editor/nope", status: fiber.StatusFound, location: "/"},
		{name: "free template", method: "GET", path: "/editor/classic", status: fiber.StatusOK},
		{name: "paid anonymous", method: "GET", path: "/editor/modern", status: fiber.StatusFound, location: "/login?redirect=/editor/modern"},
		{name: "paid signed in", method: "GET", path: "/editor/modern", signedIn: true, status: fiber.StatusFound, location: "/buy/modern"},
		{name: "paid api call", method: "PATCH", path: "/editor/tech/fields", status: fiber.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts []reqOpt
			if tt.signedIn {
				opts = append(opts, signed(env.token))
			}
			status, _, header := env.do(t, tt.method, tt.path, opts...)
			assert.Equal(t, tt.status, status)
			if tt.location != "" {
				assert.Equal(t, tt.location, header["Location"][0])
			}
		})
	}
}

func TestEditorEdits(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	status, out, _ := env.do(t, "PATCH", "/editor/classic/fields", body(`{"path":"personal.title","value":"SRE"}`))
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "SRE", decode(t, out)["personal"].(map[string]interface{})["title"])

	status, out, _ = env.do(t, "POST", "/editor/classic/lists/experience", body(`{"title":"Lead"}`))
	require.Equal(t, fiber.StatusCreated, status)
	id := decode(t, out)["id"].(string)
	assert.True(t, strings.HasPrefix(id, "exp-"))

	_, out, _ = env.do(t, "GET", "/editor/classic/data")
	assert.Contains(t, out, id)

	status, _, _ = env.do(t, "DELETE", "/editor/classic/lists/experience/"+id)
	assert.Equal(t, fiber.StatusNoContent, status)
	status, _, _ = env.do(t, "DELETE", "/editor/classic/lists/experience/"+id)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, out, _ = env.do(t, "PATCH", "/editor/classic/fields", body(`{"path":"design.fontSize","value":200}`))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "design.fontSize", decode(t, out)["path"])

	status, _, _ = env.do(t, "PATCH", "/editor/classic/fields", body(`not json`))
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, out, _ = env.do(t, "POST", "/editor/classic/reset")
	require.Equal(t, fiber.StatusOK, status)
	assert.NotEqual(t, "SRE", decode(t, out)["personal"].(map[string]interface{})["title"])
}

func TestEditorSummary(t *testing.T) {
	fail := true
	summarizer := summarizerFunc(func(_ context.Context, req ai.SummaryRequest) (ai.SummaryResponse, error) {
		if fail {
			return ai.SummaryResponse{}, errors.New("quota exceeded")
		}
		return ai.SummaryResponse{Summary: "Keeps " + req.JobTitle + " systems up."}, nil
	})
	env := newTestEnv(t, nil, summarizer)

	env.do(t, "PATCH", "/editor/classic/fields", body(`{"path":"personal.title","value":""}`))
	status, _, _ := env.do(t, "POST", "/editor/classic/summary")
	assert.Equal(t, fiber.StatusBadRequest, status)

	env.do(t, "PATCH", "/editor/classic/fields", body(`{"path":"personal.title","value":"SRE"}`))
	status, out, _ := env.do(t, "POST", "/editor/classic/summary")
	assert.Equal(t, fiber.StatusBadGateway, status)
	assert.Equal(t, true, decode(t, out)["recoverable"])

	fail = false
	status, out, _ = env.do(t, "POST", "/editor/classic/summary")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Keeps SRE systems up.", decode(t, out)["summary"])
}

func TestEditorPreview(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	status, out, header := env.do(t, "GET", "/editor/classic/preview?width=408")
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, header["Content-Type"][0], "text/html")
	assert.Contains(t, out, `data-scale="0.5"`)
	assert.Contains(t, out, "transform:scale(0.5)")
	assert.Contains(t, out, "opacity:1")

	status, _, _ = env.do(t, "GET", "/editor/classic/preview?width=-3")
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestEditorExport(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	status, out, header := env.do(t, "GET", "/editor/classic/export/pdf")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "application/pdf", header["Content-Type"][0])
	assert.Equal(t, `attachment; filename="resume-classic.pdf"`, header["Content-Disposition"][0])
	assert.Equal(t, "%PDF-1.7", out)

	status, _, _ = env.do(t, "GET", "/editor/classic/export/gif")
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestPurchases(t *testing.T) {
	env := newTestEnv(t, downRemote{}, nil)

	status, out, _ := env.do(t, "GET", "/purchases")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "/login?redirect=/purchases", decode(t, out)["redirect"])

	status, out, _ = env.do(t, "POST", "/buy/elegant/claim", body(`{"coupon":"first100"}`), signed(env.token))
	require.Equal(t, fiber.StatusOK, status)
	claim := decode(t, out)
	assert.Equal(t, true, claim["pending"])
	assert.NotEmpty(t, claim["notice"])

	status, out, _ = env.do(t, "GET", "/purchases", signed(env.token))
	require.Equal(t, fiber.StatusOK, status)
	resp := decode(t, out)
	assert.Equal(t, degradedNotice, resp["notice"])
	templates := resp["templates"].([]interface{})
	require.Len(t, templates, 1)
	assert.Equal(t, "elegant", templates[0].(map[string]interface{})["id"])
}

func TestCheckoutFlow(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	status, out, _ := env.do(t, "GET", "/buy/modern/quote?coupon=FIRST100")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(0), decode(t, out)["price"])

	status, _, _ = env.do(t, "GET", "/buy/modern/quote?coupon=BOGUS")
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _, _ = env.do(t, "POST", "/buy/modern/claim", body(`{"coupon":`))
	assert.Equal(t, fiber.StatusBadRequest, status)
	status, _, _ = env.do(t, "POST", "/buy/modern/complete", body(`[`), signed(env.token))
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, out, _ = env.do(t, "POST", "/buy/modern/checkout")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "/login?redirect=/buy/modern", decode(t, out)["redirect"])

	status, out, _ = env.do(t, "POST", "/buy/modern/checkout", signed(env.token))
	require.Equal(t, fiber.StatusCreated, status)
	order := decode(t, out)
	assert.Equal(t, float64(4900), order["amount"])
	orderID := order["id"].(string)

	failed := `{"status":"failed","orderId":"` + orderID + `","reason":"Payment declined by bank"}`
	status, out, _ = env.do(t, "POST", "/buy/modern/complete", body(failed), signed(env.token))
	assert.Equal(t, fiber.StatusPaymentRequired, status)
	assert.Equal(t, "Payment declined by bank", decode(t, out)["error"])
	status, _, _ = env.do(t, "GET", "/editor/modern", signed(env.token))
	assert.Equal(t, fiber.StatusFound, status)

	status, _, _ = env.do(t, "POST", "/buy/modern/complete", body(`{"status":"dismissed"}`), signed(env.token))
	assert.Equal(t, fiber.StatusOK, status)

	sig := usecase.Sign(testSecret, orderID, "pay_1")
	ok := `{"status":"succeeded","orderId":"` + orderID + `","paymentId":"pay_1","signature":"` + sig + `"}`
	status, out, _ = env.do(t, "POST", "/buy/modern/complete", body(ok), signed(env.token))
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "/editor/modern", decode(t, out)["redirect"])

	status, _, _ = env.do(t, "GET", "/editor/modern", signed(env.token))
	assert.Equal(t, fiber.StatusOK, status)

	status, _, _ = env.do(t, "POST", "/buy/tech/complete", body(ok), signed(env.token))
	assert.Equal(t, fiber.StatusBadRequest, status)
	status, _, _ = env.do(t, "GET", "/editor/tech", signed(env.token))
	assert.Equal(t, fiber.StatusFound, status)
}
