package models

import "time"

// Account учетная запись пользователя в хранилище.
type Account struct {
	ID                string
	Email             string
	PasswordHash      string
	SubscriptionTier  Tier
	PreferredLanguage Language
	CreatedAt         time.Time
}

// Credentials данные формы входа.
type Credentials struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password,omitempty"`
}

// Profile дополнительные данные при регистрации.
type Profile struct {
	PreferredLanguage Language `json:"preferred_language"`
}
