// Package jwt реализует выпуск и проверку токенов клиентских сессий.
//
// Токен несет только идентификатор сессии. Состояние сессии хранится на сервере.
package jwt

import (
	"time"
)

// Maker описывает выпуск и разбор токенов сессии.
type Maker interface {
	GenerateToken(sessionID string) (string, error)
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl реализует Maker на HMAC-подписи.
type MakerImpl struct {
	secretKey string        // Секретный ключ для подписи токенов.
	tokenTTL  time.Duration // Время жизни токена.
}

// NewJWTMaker создаёт новый экземпляр MakerImpl на основе секретного ключа и TTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}
