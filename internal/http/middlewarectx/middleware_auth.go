// Package middlewarectx содержит HTTP middleware: проверку токена сессии,
// доступ к платным функциям и ограничение частоты запросов.
//
// JWTMiddleware проверяет токен из заголовка Authorization, находит по нему
// сессию и кладет ее в контекст запроса. Обработчики получают сессию через
// SessionFrom.
package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/knowyourrights/internal/http/response"
	"github.com/magabrotheeeer/knowyourrights/internal/lib/jwt"
	"github.com/magabrotheeeer/knowyourrights/internal/lib/sl"
	"github.com/magabrotheeeer/knowyourrights/internal/services/session"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// Session ключ сессии в контексте.
	Session Key = "session"
	// SessionID ключ идентификатора сессии в контексте.
	SessionID Key = "session_id"
)

// TokenParser разбор токена сессии.
type TokenParser interface {
	ParseToken(tokenStr string) (*jwt.CustomClaims, error)
}

// SessionResolver поиск сессии по идентификатору.
type SessionResolver interface {
	Get(ctx context.Context, id string) (*session.Store, error)
}

// WithSession кладет сессию в контекст.
func WithSession(ctx context.Context, id string, s any) context.Context {
	ctx = context.WithValue(ctx, SessionID, id)
	return context.WithValue(ctx, Session, s)
}

// SessionFrom достает сессию из контекста, приведенную к T.
func SessionFrom[T any](ctx context.Context) (T, bool) {
	s, ok := ctx.Value(Session).(T)
	return s, ok
}

// JWTMiddleware проверяет Bearer-токен и загружает сессию.
// Невалидный токен или неизвестная сессия дают 401.
func JWTMiddleware(parser TokenParser, sessions SessionResolver, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Error("missing or invalid authorization header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid authorization header"))
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := parser.ParseToken(tokenStr)
			if err != nil {
				log.Error("invalid or expired token", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired token"))
				return
			}

			store, err := sessions.Get(r.Context(), claims.SessionID)
			if err != nil {
				if errors.Is(err, session.ErrNotFound) {
					log.Warn("session expired", sl.Session(claims.SessionID))
					render.Status(r, http.StatusUnauthorized)
					render.JSON(w, r, response.Error("session expired"))
					return
				}
				log.Error("failed to load session", sl.Session(claims.SessionID), sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal error"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), claims.SessionID, store)))
		})
	}
}
