package session

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/knowyourrights/internal/lib/sl"
	"github.com/magabrotheeeer/knowyourrights/internal/lib/supersede"
	"github.com/magabrotheeeer/knowyourrights/internal/models"
	"github.com/magabrotheeeer/knowyourrights/internal/services/recording"
)

// Виды асинхронных операций для supersede.Group.
const (
	kindIdentity   = "identity"
	kindGeneration = "generation"
	kindUpgrade    = "upgrade"
)

// Исходы сверки с платежным провайдером для метрик.
const (
	outcomeUnchanged = "unchanged"
	outcomeChanged   = "changed"
	outcomeConfirmed = "confirmed"
	outcomePending   = "pending"
	outcomeExpired   = "expired"
	outcomeCanceled  = "canceled"
	outcomeError     = "error"
)

// View представление сессии для клиента.
type View struct {
	models.Session
	Access  map[models.Feature]bool `json:"access"`
	Loading bool                    `json:"loading"`
}

// ScriptRequest параметры генерации фразы.
type ScriptRequest struct {
	Scenario string
	Language models.Language
	Context  string
}

// Store одна клиентская сессия.
type Store struct {
	id       string
	deps     Deps
	log      *slog.Logger
	validate *validator.Validate
	tasks    *supersede.Group
	tracker  *recording.Tracker

	mu       sync.Mutex
	state    models.Session
	version  uint64
	lastSeen time.Time

	saveMu sync.Mutex
	saved  uint64
}

func newStore(id string, deps Deps, v *validator.Validate, initial models.Session) *Store {
	return &Store{
		id:       id,
		deps:     deps,
		log:      deps.Log.With(slog.String("session_id", id)),
		validate: v,
		tasks:    supersede.New(),
		tracker:  recording.NewTracker(deps.Tracker...),
		state:    initial.Normalize(),
		lastSeen: deps.Now(),
	}
}

// ID идентификатор сессии.
func (s *Store) ID() string {
	return s.id
}

// Snapshot текущее представление сессии.
func (s *Store) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = s.deps.Now()
	return s.viewLocked()
}

func (s *Store) viewLocked() View {
	return View{
		Session: cloneSession(s.state),
		Access:  models.AccessMap(s.state.SubscriptionTier),
		Loading: s.tasks.InFlight() > 0,
	}
}

// commitLocked фиксирует изменение и возвращает версию со снимком для save.
func (s *Store) commitLocked() (uint64, models.Session) {
	s.version++
	s.lastSeen = s.deps.Now()
	return s.version, cloneSession(s.state)
}

// save записывает снимок, если он новее уже записанного.
func (s *Store) save(ctx context.Context, version uint64, snap models.Session) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	if version <= s.saved {
		return
	}
	if err := s.deps.Persister.Save(context.WithoutCancel(ctx), s.id, snap); err != nil {
		s.log.Error("failed to persist session snapshot", sl.Err(err))
		return
	}
	s.saved = version
}

// resetLocked возвращает сессию в начальное состояние. Выбранная юрисдикция сохраняется.
func (s *Store) resetLocked() {
	jurisdiction := s.state.SelectedJurisdiction
	s.tasks.CancelAll()
	s.state = models.NewSession()
	s.state.SelectedJurisdiction = jurisdiction
}

func (s *Store) applyAccountLocked(acc *models.Account) {
	s.state.Identity = &models.Identity{
		ID:                acc.ID,
		Email:             acc.Email,
		PreferredLanguage: models.ParseLanguage(string(acc.PreferredLanguage)),
	}
	s.state.Authenticated = true
	s.state.SubscriptionTier = models.ParseTier(string(acc.SubscriptionTier))
	s.state.PendingUpgrade = nil
}

// SignIn входит в учетную запись.
func (s *Store) SignIn(ctx context.Context, creds models.Credentials) (View, error) {
	const op = "session.Store.SignIn"
	if err := validateCredentials(s.validate, creds, false); err != nil {
		return s.Snapshot(), err
	}
	return s.authenticate(ctx, op, func(ctx context.Context) (*models.Account, error) {
		return s.deps.Identity.SignIn(ctx, creds.Email, creds.Password)
	})
}

// SignUp регистрирует учетную запись и входит в нее.
func (s *Store) SignUp(ctx context.Context, creds models.Credentials, profile models.Profile) (View, error) {
	const op = "session.Store.SignUp"
	if err := validateCredentials(s.validate, creds, true); err != nil {
		return s.Snapshot(), err
	}
	return s.authenticate(ctx, op, func(ctx context.Context) (*models.Account, error) {
		acc, err := s.deps.Identity.SignUp(ctx, creds.Email, creds.Password, profile)
		if err != nil {
			return nil, err
		}
		acc.SubscriptionTier = models.TierFree
		return acc, nil
	})
}

func (s *Store) authenticate(ctx context.Context, op string, call func(context.Context) (*models.Account, error)) (View, error) {
	task := s.tasks.Begin(ctx, kindIdentity)
	acc, err := call(task.Context())

	s.mu.Lock()
	current := task.Current()
	task.Done()
	if !current {
		view := s.viewLocked()
		s.mu.Unlock()
		return view, fmt.Errorf("%s: %w", op, models.ErrSuperseded)
	}
	if err != nil {
		view := s.viewLocked()
		s.mu.Unlock()
		return view, fmt.Errorf("%s: %w", op, err)
	}
	s.applyAccountLocked(acc)
	version, snap := s.commitLocked()
	view := s.viewLocked()
	s.mu.Unlock()

	s.save(ctx, version, snap)
	s.log.Info("signed in", slog.String("account_id", acc.ID))
	return view, nil
}

// SignOut сбрасывает сессию. Выход у провайдера выполняется в фоне и на результат не влияет.
func (s *Store) SignOut(ctx context.Context) View {
	s.mu.Lock()
	accountID := s.state.AccountID()
	s.resetLocked()
	version, snap := s.commitLocked()
	view := s.viewLocked()
	s.mu.Unlock()

	s.save(ctx, version, snap)
	if accountID != "" {
		go s.remoteSignOut(context.WithoutCancel(ctx), accountID)
	}
	return view
}

func (s *Store) remoteSignOut(ctx context.Context, accountID string) {
	ctx, cancel := context.WithTimeout(ctx, s.deps.RemoteTimeout)
	defer cancel()
	if err := s.deps.Identity.SignOut(ctx, accountID); err != nil {
		s.log.Warn("remote sign out failed", sl.Err(err))
	}
}

// BeginTrialUpgrade оформляет пробный период.
func (s *Store) BeginTrialUpgrade(ctx context.Context) (View, string, error) {
	return s.BeginUpgrade(ctx, models.PlanTrial)
}

// BeginPremiumUpgrade оформляет платную подписку.
func (s *Store) BeginPremiumUpgrade(ctx context.Context) (View, string, error) {
	return s.BeginUpgrade(ctx, models.PlanPremium)
}

// BeginUpgrade создает страницу оплаты плана и запоминает ожидающее оформление.
// Уровень подписки меняется только после подтверждения в Reconcile.
// Для анонимной сессии ничего не делает. Возвращает ссылку на оплату.
func (s *Store) BeginUpgrade(ctx context.Context, plan models.Plan) (View, string, error) {
	const op = "session.Store.BeginUpgrade"

	s.mu.Lock()
	if !s.state.Authenticated {
		view := s.viewLocked()
		s.mu.Unlock()
		return view, "", nil
	}
	if s.tasks.Busy(kindUpgrade) {
		view := s.viewLocked()
		s.mu.Unlock()
		s.deps.Metrics.UpgradeStarted(string(plan), "in_progress")
		return view, "", fmt.Errorf("%s: %w", op, models.ErrUpgradeInProgress)
	}
	owner := *s.state.Identity
	task := s.tasks.Begin(ctx, kindUpgrade)
	s.mu.Unlock()

	url, err := s.deps.Payment.CreateCheckoutSession(task.Context(), plan, owner.ID, owner.Email)

	s.mu.Lock()
	current := task.Current() && s.state.AccountID() == owner.ID
	task.Done()
	if !current {
		view := s.viewLocked()
		s.mu.Unlock()
		return view, "", fmt.Errorf("%s: %w", op, models.ErrSuperseded)
	}
	if err != nil {
		view := s.viewLocked()
		s.mu.Unlock()
		s.deps.Metrics.UpgradeStarted(string(plan), "error")
		return view, "", fmt.Errorf("%s: %w", op, err)
	}
	s.state.PendingUpgrade = &models.PendingUpgrade{
		Plan:        plan,
		TargetTier:  plan.TargetTier(),
		CheckoutURL: url,
		StartedAt:   s.deps.Now(),
	}
	version, snap := s.commitLocked()
	view := s.viewLocked()
	s.mu.Unlock()

	s.save(ctx, version, snap)
	s.deps.Metrics.UpgradeStarted(string(plan), "started")
	s.log.Info("checkout started", slog.String("plan", string(plan)))

	reconciled, err := s.Reconcile(ctx)
	if err != nil {
		s.log.Warn("reconcile after checkout failed", sl.Err(err))
		return view, url, nil
	}
	return reconciled, url, nil
}

// PendingUpgrade сообщает, ожидает ли сессия подтверждения оформления.
func (s *Store) PendingUpgrade() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.PendingUpgrade != nil
}

// Reconcile сверяет уровень подписки с платежным провайдером. Подтвержденный
// уровень применяется, подтвержденное или просроченное оформление снимается,
// отмена платной подписки на стороне провайдера сбрасывает сессию.
func (s *Store) Reconcile(ctx context.Context) (View, error) {
	const op = "session.Store.Reconcile"

	s.mu.Lock()
	if !s.state.Authenticated {
		view := s.viewLocked()
		s.mu.Unlock()
		return view, nil
	}
	accountID := s.state.AccountID()
	s.mu.Unlock()

	tier, err := s.deps.Payment.SubscriptionStatus(ctx, accountID)
	if err != nil {
		s.deps.Metrics.Reconciled(outcomeError)
		return s.Snapshot(), fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	if s.state.AccountID() != accountID {
		view := s.viewLocked()
		s.mu.Unlock()
		return view, fmt.Errorf("%s: %w", op, models.ErrSuperseded)
	}
	prev := s.state.SubscriptionTier
	outcome := outcomeUnchanged
	switch {
	case tier == models.TierCanceled && prev.IsPremium():
		s.resetLocked()
		outcome = outcomeCanceled
	default:
		s.state.SubscriptionTier = tier
		if tier != prev {
			outcome = outcomeChanged
		}
		if p := s.state.PendingUpgrade; p != nil {
			switch {
			case tier.IsPremium():
				s.state.PendingUpgrade = nil
				outcome = outcomeConfirmed
			case s.deps.Now().Sub(p.StartedAt) > s.deps.PendingUpgradeTTL:
				s.state.PendingUpgrade = nil
				outcome = outcomeExpired
			default:
				outcome = outcomePending
			}
		}
	}
	if outcome == outcomeUnchanged || outcome == outcomePending {
		view := s.viewLocked()
		s.mu.Unlock()
		s.deps.Metrics.Reconciled(outcome)
		return view, nil
	}
	version, snap := s.commitLocked()
	view := s.viewLocked()
	s.mu.Unlock()

	s.save(ctx, version, snap)
	s.deps.Metrics.Reconciled(outcome)
	if tier != prev {
		if err = s.deps.Identity.SetTier(ctx, accountID, tier); err != nil {
			s.log.Warn("failed to store confirmed tier", sl.Err(err))
		}
		s.log.Info("subscription tier reconciled",
			slog.String("from", string(prev)), slog.String("to", string(tier)), slog.String("outcome", outcome))
	}
	return view, nil
}

// SetJurisdiction выбирает юрисдикцию для справочников, фраз и записей.
func (s *Store) SetJurisdiction(ctx context.Context, code string) (View, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !models.IsJurisdiction(code) {
		return s.Snapshot(), &models.ValidationError{Fields: map[string]string{
			"jurisdiction": "Unknown jurisdiction",
		}}
	}

	s.mu.Lock()
	if s.state.SelectedJurisdiction == code {
		view := s.viewLocked()
		s.mu.Unlock()
		return view, nil
	}
	s.state.SelectedJurisdiction = code
	version, snap := s.commitLocked()
	view := s.viewLocked()
	s.mu.Unlock()

	s.save(ctx, version, snap)
	return view, nil
}

// CanAccess доступна ли функция на текущем уровне подписки.
func (s *Store) CanAccess(feature models.Feature) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.CanAccess(s.state.SubscriptionTier, feature)
}

// Require возвращает ErrFeatureLocked, если функция недоступна.
func (s *Store) Require(feature models.Feature) error {
	if s.CanAccess(feature) {
		return nil
	}
	s.deps.Metrics.FeatureDenied(string(feature))
	return fmt.Errorf("%s: %w", feature, models.ErrFeatureLocked)
}

// Jurisdiction выбранная юрисдикция.
func (s *Store) Jurisdiction() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.SelectedJurisdiction
}

// Language язык пользователя, для анонимной сессии английский.
func (s *Store) Language() models.Language {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Identity == nil {
		return models.LanguageEnglish
	}
	return s.state.Identity.PreferredLanguage
}

// GenerateScript генерирует фразу для выбранной юрисдикции. Язык кроме
// английского требует доступа к multilingual.
func (s *Store) GenerateScript(ctx context.Context, req ScriptRequest) (string, error) {
	const op = "session.Store.GenerateScript"
	if err := s.Require(models.FeatureScripts); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	language := models.ParseLanguage(string(req.Language))
	if language != models.LanguageEnglish {
		if err := s.Require(models.FeatureMultilingual); err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
	}

	task := s.tasks.Begin(ctx, kindGeneration)
	text := s.deps.Scripts.Generate(task.Context(), req.Scenario, s.Jurisdiction(), language, req.Context)

	s.mu.Lock()
	current := task.Current()
	task.Done()
	s.lastSeen = s.deps.Now()
	s.mu.Unlock()
	if !current {
		return "", fmt.Errorf("%s: %w", op, models.ErrSuperseded)
	}
	return text, nil
}

// RecordingStatus состояние таймера записи.
func (s *Store) RecordingStatus() recording.Status {
	return s.tracker.Status()
}

// StartRecording начинает запись.
func (s *Store) StartRecording() (recording.Status, error) {
	if err := s.Require(models.FeatureRecording); err != nil {
		return s.tracker.Status(), err
	}
	return s.tracker.Start(), nil
}

// PauseRecording ставит запись на паузу.
func (s *Store) PauseRecording() recording.Status {
	return s.tracker.Pause()
}

// ResumeRecording продолжает запись после паузы.
func (s *Store) ResumeRecording() recording.Status {
	return s.tracker.Resume()
}

// SetNotes заменяет заметки текущей записи.
func (s *Store) SetNotes(notes string) recording.Status {
	return s.tracker.SetNotes(notes)
}

// StopRecording завершает запись в выбранной юрисдикции. Запись
// аутентифицированного пользователя сохраняется, ошибка сохранения только
// логируется. Второй результат false, если запись не велась.
func (s *Store) StopRecording(ctx context.Context) (models.RecordingRecord, bool) {
	rec, ok := s.tracker.Stop(s.Jurisdiction())
	if !ok {
		return models.RecordingRecord{}, false
	}
	s.deps.Metrics.RecordingStopped()

	s.mu.Lock()
	var owner *models.Identity
	if s.state.Identity != nil {
		id := *s.state.Identity
		owner = &id
	}
	s.lastSeen = s.deps.Now()
	s.mu.Unlock()

	if owner != nil && s.deps.Interactions != nil {
		if err := s.deps.Interactions.Save(ctx, *owner, rec); err != nil {
			s.log.Error("failed to save recording", slog.String("record_id", rec.ID), sl.Err(err))
		}
	}
	return rec, true
}

// History записи сессии, новые первыми. Для аутентифицированного пользователя
// читается сохраненная история, при ее недоступности используются локальные записи.
func (s *Store) History(ctx context.Context) []models.RecordingRecord {
	if accountID := s.accountID(); accountID != "" && s.deps.Interactions != nil {
		records, err := s.deps.Interactions.History(ctx, accountID)
		if err == nil {
			return records
		}
		s.log.Warn("failed to load recording history", sl.Err(err))
	}
	records := s.tracker.Records()
	slices.Reverse(records)
	return records
}

// SummaryCard генерирует карточку записи id и сохраняет ее.
func (s *Store) SummaryCard(ctx context.Context, id string) (string, error) {
	const op = "session.Store.SummaryCard"
	if err := s.Require(models.FeatureRecording); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	accountID := s.accountID()

	rec, local := s.tracker.Record(id)
	if !local {
		if accountID == "" || s.deps.Interactions == nil {
			return "", fmt.Errorf("%s: %w", op, models.ErrRecordNotFound)
		}
		stored, err := s.deps.Interactions.Record(ctx, accountID, id)
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		rec = *stored
	}

	card := s.deps.Scripts.SummaryCard(ctx, rec)
	if local {
		s.tracker.Annotate(id, card)
	}
	if accountID != "" && s.deps.Interactions != nil {
		if err := s.deps.Interactions.SaveSummary(ctx, id, card); err != nil {
			s.log.Warn("failed to store summary card", slog.String("record_id", id), sl.Err(err))
		}
	}
	return card, nil
}

func (s *Store) accountID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.AccountID()
}

// LastSeen время последнего обращения к сессии.
func (s *Store) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Close отменяет выполняемые операции и останавливает таймер записи.
func (s *Store) Close() {
	s.tasks.CancelAll()
	s.tracker.Close()
}
