package guide

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/knowyourrights/internal/lib/sl"
	"github.com/magabrotheeeer/knowyourrights/internal/models"
)

// Fetcher источник справочников. Возвращает nil, nil, если справочника нет.
type Fetcher interface {
	FetchGuide(ctx context.Context, jurisdiction string, language models.Language) (*models.Guide, error)
}

// Cache кэш справочников.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// Service выдает справочник из хранилища с откатом на встроенные справочники.
type Service struct {
	fetcher Fetcher
	cache   Cache
	ttl     time.Duration
	log     *slog.Logger
}

// DefaultCacheTTL время жизни справочника в кэше.
const DefaultCacheTTL = time.Hour

// NewService создает сервис. fetcher и cache могут быть nil.
func NewService(fetcher Fetcher, cache Cache, log *slog.Logger) *Service {
	return &Service{
		fetcher: fetcher,
		cache:   cache,
		ttl:     DefaultCacheTTL,
		log:     log,
	}
}

func cacheKey(code string, language models.Language) string {
	return fmt.Sprintf("guide:%s:%s", code, language)
}

// Guide возвращает справочник для юрисдикции и языка. Всегда возвращает результат:
// при отсутствии или сбое хранилища используется Lookup.
func (s *Service) Guide(ctx context.Context, code string, language models.Language) models.Guide {
	const op = "services.guide.Guide"
	log := s.log.With(slog.String("op", op), slog.String("jurisdiction", code))

	if !models.IsJurisdiction(code) {
		code = models.DefaultJurisdiction
	}
	language = models.ParseLanguage(string(language))
	key := cacheKey(code, language)

	if s.cache != nil {
		var cached models.Guide
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			log.Warn("failed to read guide from cache", sl.Err(err))
		} else if found {
			return cached
		}
	}

	if s.fetcher == nil {
		return Lookup(code)
	}
	g, err := s.fetcher.FetchGuide(ctx, code, language)
	if err != nil {
		log.Error("failed to fetch guide, using builtin", sl.Err(err))
		return Lookup(code)
	}
	if g == nil {
		log.Debug("guide not stored, using builtin")
		return Lookup(code)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, g, s.ttl); err != nil {
			log.Warn("failed to cache guide", sl.Err(err))
		}
	}
	return *g
}
