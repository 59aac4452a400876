package response

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/knowyourrights/internal/models"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
		wantFields map[string]string
	}{
		{
			name:       "validation",
			err:        &models.ValidationError{Fields: map[string]string{"email": "Email is invalid"}},
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "validation failed",
			wantFields: map[string]string{"email": "Email is invalid"},
		},
		{
			name:       "confirmation mismatch",
			err:        fmt.Errorf("op: %w", models.NewConfirmationMismatch()),
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "validation failed",
			wantFields: map[string]string{"confirm_password": "Passwords do not match"},
		},
		{
			name:       "auth",
			err:        fmt.Errorf("op: %w", &models.AuthError{Message: "Invalid login credentials"}),
			wantStatus: http.StatusUnauthorized,
			wantError:  "Invalid login credentials",
		},
		{
			name:       "feature locked",
			err:        fmt.Errorf("scripts: %w", models.ErrFeatureLocked),
			wantStatus: http.StatusForbidden,
			wantError:  models.ErrFeatureLocked.Error(),
		},
		{
			name:       "superseded",
			err:        models.ErrSuperseded,
			wantStatus: http.StatusConflict,
			wantError:  models.ErrSuperseded.Error(),
		},
		{
			name:       "upgrade in progress",
			err:        models.ErrUpgradeInProgress,
			wantStatus: http.StatusConflict,
			wantError:  models.ErrUpgradeInProgress.Error(),
		},
		{
			name:       "not found",
			err:        models.ErrRecordNotFound,
			wantStatus: http.StatusNotFound,
			wantError:  models.ErrRecordNotFound.Error(),
		},
		{
			name:       "provider",
			err:        &models.ProviderError{Provider: "stripe", Err: errors.New("boom")},
			wantStatus: http.StatusBadGateway,
			wantError:  "payment provider unavailable, please try again",
		},
		{
			name:       "unknown",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := FromError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, StatusError, body.Status)
			assert.Equal(t, tt.wantError, body.Error)
			assert.Equal(t, tt.wantFields, body.Fields)
		})
	}
}

func TestWriteError(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	WriteError(rr, req, models.ErrFeatureLocked)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.JSONEq(t, `{"status":"Error","error":"premium feature: subscription required"}`, rr.Body.String())
}

func TestOKWithData(t *testing.T) {
	resp := OKWithData(map[string]int{"a": 1})
	assert.Equal(t, StatusOK, resp.Status)
	assert.Empty(t, resp.Error)
}
