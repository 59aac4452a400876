package models

import "time"

// RecordingState состояние записи взаимодействия.
type RecordingState string

const (
	// RecordingIdle запись не ведется.
	RecordingIdle RecordingState = "idle"
	// RecordingActive идет запись, время накапливается.
	RecordingActive RecordingState = "recording"
	// RecordingPaused запись на паузе.
	RecordingPaused RecordingState = "paused"
)

// RecordingRecord неизменяемая запись о завершенном взаимодействии.
type RecordingRecord struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Duration  int       `json:"duration"` // секунды
	Notes     string    `json:"notes"`
	Location  string    `json:"location"`
	AudioURL  string    `json:"audio_url,omitempty"`
	Summary   string    `json:"summary,omitempty"`
}

// InteractionEvent сообщение о сохраненной записи для воркера карточек.
type InteractionEvent struct {
	RecordID  string    `json:"record_id"`
	AccountID string    `json:"account_id"`
	Email     string    `json:"email"`
	Timestamp time.Time `json:"timestamp"`
	Duration  int       `json:"duration"`
	Notes     string    `json:"notes"`
	Location  string    `json:"location"`
}
