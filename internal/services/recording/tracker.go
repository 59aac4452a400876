// Package recording ведет таймер записи взаимодействия с полицией:
// старт, пауза, продолжение и остановка с выпуском неизменяемой записи.
package recording

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/knowyourrights/internal/models"
)

// TickInterval период начисления времени записи.
const TickInterval = time.Second

// TickerFunc создает источник тиков и функцию его остановки.
// Nil-канал означает ручной режим: тики подаются вызовом Tick.
type TickerFunc func(d time.Duration) (<-chan time.Time, func())

// RealTicker источник тиков на time.Ticker.
func RealTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// ManualTicker не выдает тиков. Используется в тестах вместе с Tick.
func ManualTicker(time.Duration) (<-chan time.Time, func()) {
	return nil, func() {}
}

// Status текущее состояние таймера.
type Status struct {
	State          models.RecordingState `json:"state"`
	ElapsedSeconds int                   `json:"elapsed_seconds"`
	Notes          string                `json:"notes"`
}

// Tracker таймер записи одной клиентской сессии.
//
// control сериализует Start и Stop, mu защищает состояние. Горутина тиков
// одна на трекер и живет от Start до Stop.
type Tracker struct {
	control sync.Mutex
	mu      sync.Mutex

	state   models.RecordingState
	elapsed int
	notes   string
	records []models.RecordingRecord

	newTicker TickerFunc
	now       func() time.Time
	newID     func() string

	halt     chan struct{}
	loopDone chan struct{}
}

// Option настройка трекера.
type Option func(*Tracker)

// WithTicker подменяет источник тиков.
func WithTicker(f TickerFunc) Option {
	return func(t *Tracker) { t.newTicker = f }
}

// WithClock подменяет часы, по которым ставится время записи.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithIDs подменяет генератор идентификаторов записей.
func WithIDs(newID func() string) Option {
	return func(t *Tracker) { t.newID = newID }
}

// NewTracker создает трекер в состоянии idle.
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{
		state:     models.RecordingIdle,
		newTicker: RealTicker,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start начинает запись с нулевого времени. Ничего не делает, если запись уже идет.
func (t *Tracker) Start() Status {
	t.control.Lock()
	defer t.control.Unlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != models.RecordingIdle {
		return t.statusLocked()
	}
	t.state = models.RecordingActive
	t.elapsed = 0

	ticks, stopTicker := t.newTicker(TickInterval)
	t.halt = make(chan struct{})
	t.loopDone = make(chan struct{})
	go t.loop(ticks, stopTicker, t.halt, t.loopDone)

	return t.statusLocked()
}

func (t *Tracker) loop(ticks <-chan time.Time, stopTicker func(), halt <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer stopTicker()
	for {
		select {
		case <-halt:
			return
		case <-ticks:
			t.Tick()
		}
	}
}

// Tick начисляет одну секунду, если идет запись.
func (t *Tracker) Tick() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == models.RecordingActive {
		t.elapsed++
	}
}

// Pause приостанавливает начисление времени.
func (t *Tracker) Pause() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == models.RecordingActive {
		t.state = models.RecordingPaused
	}
	return t.statusLocked()
}

// Resume продолжает запись после паузы.
func (t *Tracker) Resume() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == models.RecordingPaused {
		t.state = models.RecordingActive
	}
	return t.statusLocked()
}

// SetNotes заменяет заметки текущей записи.
func (t *Tracker) SetNotes(notes string) Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.notes = notes
	return t.statusLocked()
}

// Stop завершает запись и возвращает созданную запись.
// Тик, уже полученный горутиной, учитывается до фиксации длительности.
// Если запись не велась, возвращает false.
func (t *Tracker) Stop(location string) (models.RecordingRecord, bool) {
	t.control.Lock()
	defer t.control.Unlock()

	t.mu.Lock()
	if t.state == models.RecordingIdle {
		t.mu.Unlock()
		return models.RecordingRecord{}, false
	}
	halt, done := t.halt, t.loopDone
	t.halt, t.loopDone = nil, nil
	t.mu.Unlock()

	close(halt)
	<-done

	t.mu.Lock()
	defer t.mu.Unlock()
	rec := models.RecordingRecord{
		ID:        t.newID(),
		Timestamp: t.now().UTC(),
		Duration:  t.elapsed,
		Notes:     t.notes,
		Location:  location,
	}
	t.records = append(t.records, rec)
	t.state = models.RecordingIdle
	t.elapsed = 0
	t.notes = ""
	return rec, true
}

// Close останавливает горутину тиков без выпуска записи.
func (t *Tracker) Close() {
	t.control.Lock()
	defer t.control.Unlock()

	t.mu.Lock()
	halt, done := t.halt, t.loopDone
	t.halt, t.loopDone = nil, nil
	t.state = models.RecordingIdle
	t.elapsed = 0
	t.mu.Unlock()

	if halt != nil {
		close(halt)
		<-done
	}
}

// Status возвращает текущее состояние таймера.
func (t *Tracker) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.statusLocked()
}

// Records записи в порядке создания.
func (t *Tracker) Records() []models.RecordingRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]models.RecordingRecord, len(t.records))
	copy(out, t.records)
	return out
}

// Record ищет запись по идентификатору.
func (t *Tracker) Record(id string) (models.RecordingRecord, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, r := range t.records {
		if r.ID == id {
			return r, true
		}
	}
	return models.RecordingRecord{}, false
}

// Annotate сохраняет карточку для записи id.
func (t *Tracker) Annotate(id, summary string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.records {
		if t.records[i].ID == id {
			t.records[i].Summary = summary
			return true
		}
	}
	return false
}

func (t *Tracker) statusLocked() Status {
	return Status{State: t.state, ElapsedSeconds: t.elapsed, Notes: t.notes}
}
