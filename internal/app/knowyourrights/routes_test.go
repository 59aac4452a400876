package knowyourrights

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/knowyourrights/internal/http/handlers/health"
	"github.com/magabrotheeeer/knowyourrights/internal/lib/jwt"
	"github.com/magabrotheeeer/knowyourrights/internal/providers/generation"
	"github.com/magabrotheeeer/knowyourrights/internal/providers/identity"
	"github.com/magabrotheeeer/knowyourrights/internal/providers/payment"
	"github.com/magabrotheeeer/knowyourrights/internal/services/guide"
	"github.com/magabrotheeeer/knowyourrights/internal/services/interaction"
	"github.com/magabrotheeeer/knowyourrights/internal/services/script"
	"github.com/magabrotheeeer/knowyourrights/internal/services/session"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

type apiClient struct {
	t     *testing.T
	srv   *httptest.Server
	token string
}

func (c *apiClient) do(method, path string, body any) (int, map[string]any) {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, c.srv.URL+path, reader)
	require.NoError(c.t, err)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.srv.Client().Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(c.t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func data(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	d, ok := body["data"].(map[string]any)
	require.True(t, ok, "response has no data object: %v", body)
	return d
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := newNoopLogger()
	sessions := session.NewManager(session.Deps{
		Identity:     identity.NewStatic(),
		Payment:      payment.NewStatic("http://localhost:5173"),
		Scripts:      script.NewService(generation.Static{}, logger, nil),
		Interactions: interaction.NewService(interaction.NewMemoryRepository(), nil, logger),
		Log:          logger,
	})
	t.Cleanup(sessions.Close)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, RouteDeps{
		Sessions:  sessions,
		Tokens:    jwt.NewJWTMaker("test-secret", time.Hour),
		Guides:    guide.NewService(nil, nil, logger),
		Health:    health.New(logger, nil, map[string]string{"payment": "static"}),
		RateLimit: 1000,
		RateBurst: 1000,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func TestRoutes_SessionLifecycle(t *testing.T) {
	c := &apiClient{t: t, srv: newTestServer(t)}

	code, _ := c.do(http.MethodGet, "/api/v1/session", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body := c.do(http.MethodPost, "/api/v1/session", nil)
	require.Equal(t, http.StatusCreated, code)
	c.token = data(t, body)["token"].(string)

	code, body = c.do(http.MethodGet, "/api/v1/guides", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "CA", data(t, body)["jurisdiction"])

	code, _ = c.do(http.MethodPost, "/api/v1/scripts", map[string]string{"scenario": "traffic-stop"})
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = c.do(http.MethodPost, "/api/v1/recording/start", nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, body = c.do(http.MethodPost, "/api/v1/session/upgrade/trial", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, data(t, body)["checkout_url"], "anonymous upgrade is a no-op")

	code, body = c.do(http.MethodPost, "/api/v1/session/signup", map[string]string{
		"email":            "user@example.com",
		"password":         "secret1",
		"confirm_password": "secret2",
	})
	require.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "Passwords do not match", body["fields"].(map[string]any)["confirm_password"])

	code, body = c.do(http.MethodPost, "/api/v1/session/signup", map[string]string{
		"email":            "user@example.com",
		"password":         "secret1",
		"confirm_password": "secret1",
	})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, true, data(t, body)["authenticated"])
	assert.Equal(t, "free", data(t, body)["subscription_tier"])

	code, body = c.do(http.MethodPost, "/api/v1/session/upgrade/trial", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, data(t, body)["checkout_url"], "/success?plan=trial")
	assert.Equal(t, "trialing", data(t, body)["session"].(map[string]any)["subscription_tier"])

	code, body = c.do(http.MethodPut, "/api/v1/session/jurisdiction", map[string]string{"jurisdiction": "ny"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "NY", data(t, body)["selected_jurisdiction"])

	code, body = c.do(http.MethodPost, "/api/v1/scripts", map[string]string{"scenario": "questioning"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "NY", data(t, body)["jurisdiction"])
	assert.NotEqual(t, script.NotAvailable, data(t, body)["script"])

	code, body = c.do(http.MethodGet, "/api/v1/guides?language=es", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "NY", data(t, body)["jurisdiction"])

	code, _ = c.do(http.MethodPost, "/api/v1/recording/start", nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = c.do(http.MethodPut, "/api/v1/recording/notes", map[string]string{"notes": "Officer badge 1234"})
	require.Equal(t, http.StatusOK, code)
	code, body = c.do(http.MethodPost, "/api/v1/recording/stop", nil)
	require.Equal(t, http.StatusOK, code)
	rec := data(t, body)["record"].(map[string]any)
	assert.Equal(t, "NY", rec["location"])
	assert.Equal(t, "Officer badge 1234", rec["notes"])

	code, body = c.do(http.MethodGet, "/api/v1/recording", nil)
	require.Equal(t, http.StatusOK, code)
	records := data(t, body)["records"].([]any)
	require.Len(t, records, 1)

	code, body = c.do(http.MethodPost, "/api/v1/recording/records/"+rec["id"].(string)+"/summary", nil)
	require.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, data(t, body)["summary"])

	code, body = c.do(http.MethodPost, "/api/v1/session/signout", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, data(t, body)["authenticated"])
	assert.Equal(t, "free", data(t, body)["subscription_tier"])
	assert.Equal(t, "NY", data(t, body)["selected_jurisdiction"])

	code, _ = c.do(http.MethodPost, "/api/v1/session/signout", nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = c.do(http.MethodPost, "/api/v1/recording/start", nil)
	assert.Equal(t, http.StatusForbidden, code)
}

func signUp(c *apiClient, email, language string) {
	c.t.Helper()
	code, body := c.do(http.MethodPost, "/api/v1/session", nil)
	require.Equal(c.t, http.StatusCreated, code)
	c.token = data(c.t, body)["token"].(string)

	code, _ = c.do(http.MethodPost, "/api/v1/session/signup", map[string]string{
		"email":              email,
		"password":           "secret1",
		"confirm_password":   "secret1",
		"preferred_language": language,
	})
	require.Equal(c.t, http.StatusCreated, code)
}

func TestRoutes_GuidesForSpanishProfile(t *testing.T) {
	c := &apiClient{t: t, srv: newTestServer(t)}
	signUp(c, "maria@example.com", "es")

	code, body := c.do(http.MethodGet, "/api/v1/guides", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "en", data(t, body)["language"])

	code, _ = c.do(http.MethodGet, "/api/v1/guides/TX", nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = c.do(http.MethodGet, "/api/v1/guides?language=es", nil)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestRoutes_StopRecordingAfterSignOut(t *testing.T) {
	c := &apiClient{t: t, srv: newTestServer(t)}
	signUp(c, "rec@example.com", "en")

	code, _ := c.do(http.MethodPost, "/api/v1/session/upgrade/premium", nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = c.do(http.MethodPost, "/api/v1/recording/start", nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = c.do(http.MethodPost, "/api/v1/session/signout", nil)
	require.Equal(t, http.StatusOK, code)

	code, body := c.do(http.MethodGet, "/api/v1/recording", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "recording", data(t, body)["status"].(map[string]any)["state"])

	code, body = c.do(http.MethodPost, "/api/v1/recording/stop", nil)
	require.Equal(t, http.StatusOK, code)
	assert.NotNil(t, data(t, body)["record"])
	assert.Equal(t, "idle", data(t, body)["status"].(map[string]any)["state"])

	code, _ = c.do(http.MethodPost, "/api/v1/recording/start", nil)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestRoutes_PublicEndpoints(t *testing.T) {
	c := &apiClient{t: t, srv: newTestServer(t)}

	code, body := c.do(http.MethodGet, "/api/v1/jurisdictions", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["data"], 10)

	code, body = c.do(http.MethodGet, "/api/v1/scripts/scenarios", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["data"], len(script.Scenarios))

	code, body = c.do(http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])

	c.token = "garbage"
	code, _ = c.do(http.MethodGet, "/api/v1/session", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}
