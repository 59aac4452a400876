// Package read выдача справочника по юрисдикции.
package read

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/knowyourrights/internal/http/middlewarectx"
	"github.com/magabrotheeeer/knowyourrights/internal/http/response"
	"github.com/magabrotheeeer/knowyourrights/internal/lib/sl"
	"github.com/magabrotheeeer/knowyourrights/internal/models"
)

// Guides источник справочников.
type Guides interface {
	Guide(ctx context.Context, code string, language models.Language) models.Guide
}

// Session проверка доступа и текущие настройки сессии.
type Session interface {
	CanAccess(feature models.Feature) bool
	Require(feature models.Feature) error
	Jurisdiction() string
	Language() models.Language
}

// Handler обработчик GET /guides и GET /guides/{code}.
type Handler struct {
	log    *slog.Logger
	guides Guides
}

// New создает обработчик.
func New(log *slog.Logger, guides Guides) *Handler {
	return &Handler{log: log, guides: guides}
}

// ServeHTTP godoc
// @Summary Справочник по юрисдикции
// @Description Без кода используется выбранная в сессии юрисдикция. Явно запрошенный язык, отличный от английского, требует подписки. Язык профиля без подписки заменяется английским.
// @Tags Guides
// @Produce json
// @Security BearerAuth
// @Param code path string false "Код юрисдикции"
// @Param language query string false "Язык" Enums(en, es)
// @Success 200 {object} response.Response{data=models.Guide}
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse "Язык доступен только по подписке"
// @Router /guides/{code} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.guides.read"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	s, ok := middlewarectx.SessionFrom[Session](r.Context())
	if !ok {
		log.Error("session missing in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("session required"))
		return
	}

	code := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "code")))
	if code == "" {
		code = s.Jurisdiction()
	}

	language := s.Language()
	if raw := r.URL.Query().Get("language"); raw != "" {
		language = models.ParseLanguage(raw)
		if language != models.LanguageEnglish {
			if err := s.Require(models.FeatureMultilingual); err != nil {
				log.Info("multilingual guide denied", slog.String("language", string(language)), sl.Err(err))
				response.WriteError(w, r, err)
				return
			}
		}
	} else if language != models.LanguageEnglish && !s.CanAccess(models.FeatureMultilingual) {
		language = models.LanguageEnglish
	}

	guide := h.guides.Guide(r.Context(), code, language)
	log.Debug("guide served", slog.String("jurisdiction", guide.Jurisdiction), slog.String("language", string(guide.Language)))
	render.JSON(w, r, response.OKWithData(guide))
}
