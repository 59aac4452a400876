package create

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/knowyourrights/internal/lib/jwt"
	"github.com/magabrotheeeer/knowyourrights/internal/providers/identity"
	"github.com/magabrotheeeer/knowyourrights/internal/providers/payment"
	"github.com/magabrotheeeer/knowyourrights/internal/services/session"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

type failingManager struct{}

func (failingManager) Create(context.Context) (*session.Store, error) {
	return nil, errors.New("redis down")
}

func TestHandler_ServeHTTP(t *testing.T) {
	manager := session.NewManager(session.Deps{
		Identity: identity.NewStatic(),
		Payment:  payment.NewStatic("http://localhost"),
		Log:      newNoopLogger(),
	})
	defer manager.Close()
	maker := jwt.NewJWTMaker("secret", time.Hour)

	t.Run("success", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/session", nil)
		req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))
		rr := httptest.NewRecorder()

		New(newNoopLogger(), manager, maker).ServeHTTP(rr, req)
		require.Equal(t, http.StatusCreated, rr.Code)

		var body struct {
			Status string   `json:"status"`
			Data   Response `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, "OK", body.Status)
		assert.False(t, body.Data.Session.Authenticated)
		assert.Equal(t, "CA", body.Data.Session.SelectedJurisdiction)

		claims, err := maker.ParseToken(body.Data.Token)
		require.NoError(t, err)
		_, err = manager.Get(context.Background(), claims.SessionID)
		require.NoError(t, err)
	})

	t.Run("manager failure", func(t *testing.T) {
		rr := httptest.NewRecorder()
		New(newNoopLogger(), failingManager{}, maker).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/session", nil))
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Contains(t, rr.Body.String(), "failed to create session")
	})
}
