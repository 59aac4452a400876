// Package health проверка готовности сервиса.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/knowyourrights/internal/lib/sl"
)

// Check проверка одной зависимости.
type Check func(ctx context.Context) error

// Response итог проверки. Providers показывает, какие реализации
// внешних сервисов выбраны при старте: live или static.
type Response struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Providers map[string]string `json:"providers"`
}

// Handler обработчик GET /health.
type Handler struct {
	log       *slog.Logger
	checks    map[string]Check
	providers map[string]string
	timeout   time.Duration
}

// New создает обработчик.
func New(log *slog.Logger, checks map[string]Check, providers map[string]string) *Handler {
	return &Handler{
		log:       log,
		checks:    checks,
		providers: providers,
		timeout:   2 * time.Second,
	}
}

// ServeHTTP godoc
// @Summary Проверка готовности
// @Tags Health
// @Produce json
// @Success 200 {object} Response
// @Failure 503 {object} Response
// @Router /health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"
	log := h.log.With(slog.String("op", op))

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := Response{Status: "ok", Checks: make(map[string]string, len(names)), Providers: h.providers}
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			log.Warn("health check failed", slog.String("check", name), sl.Err(err))
			resp.Checks[name] = err.Error()
			resp.Status = "degraded"
			continue
		}
		resp.Checks[name] = "ok"
	}

	if resp.Status != "ok" {
		render.Status(r, http.StatusServiceUnavailable)
	}
	render.JSON(w, r, resp)
}
