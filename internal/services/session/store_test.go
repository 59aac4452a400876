package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/knowyourrights/internal/models"
	"github.com/magabrotheeeer/knowyourrights/internal/providers/identity"
	"github.com/magabrotheeeer/knowyourrights/internal/providers/payment"
	"github.com/magabrotheeeer/knowyourrights/internal/services/recording"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type fakeScripts struct{}

func (fakeScripts) Generate(_ context.Context, scenario, jurisdiction string, language models.Language, _ string) string {
	return scenario + "/" + jurisdiction + "/" + string(language)
}

func (fakeScripts) SummaryCard(_ context.Context, rec models.RecordingRecord) string {
	return "card:" + rec.ID
}

type MockSink struct {
	mock.Mock
}

func (m *MockSink) Save(ctx context.Context, owner models.Identity, rec models.RecordingRecord) error {
	return m.Called(ctx, owner, rec).Error(0)
}

func (m *MockSink) History(ctx context.Context, accountID string) ([]models.RecordingRecord, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RecordingRecord), args.Error(1)
}

func (m *MockSink) Record(ctx context.Context, accountID, id string) (*models.RecordingRecord, error) {
	args := m.Called(ctx, accountID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RecordingRecord), args.Error(1)
}

func (m *MockSink) SaveSummary(ctx context.Context, id, card string) error {
	return m.Called(ctx, id, card).Error(0)
}

// gatedPayment блокирует оформление до закрытия release.
type gatedPayment struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once

	mu   sync.Mutex
	tier models.Tier
}

func newGatedPayment() *gatedPayment {
	return &gatedPayment{started: make(chan struct{}), release: make(chan struct{}), tier: models.TierFree}
}

func (g *gatedPayment) CreateCheckoutSession(context.Context, models.Plan, string, string) (string, error) {
	g.once.Do(func() { close(g.started) })
	<-g.release
	return "https://pay.example.com/c/1", nil
}

func (g *gatedPayment) SubscriptionStatus(context.Context, string) (models.Tier, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.tier, nil
}

func (g *gatedPayment) setTier(t models.Tier) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.tier = t
}

type failingPayment struct{}

func (failingPayment) CreateCheckoutSession(context.Context, models.Plan, string, string) (string, error) {
	return "", &models.ProviderError{Provider: "stripe", Err: errors.New("boom")}
}

func (failingPayment) SubscriptionStatus(context.Context, string) (models.Tier, error) {
	return "", &models.ProviderError{Provider: "stripe", Err: errors.New("boom")}
}

// blockingIdentity первый SignIn ждет закрытия gate.
type blockingIdentity struct {
	*identity.Static
	calls   atomic.Int32
	started chan struct{}
	gate    chan struct{}
}

func (b *blockingIdentity) SignIn(ctx context.Context, email, pass string) (*models.Account, error) {
	if b.calls.Add(1) == 1 {
		close(b.started)
		<-b.gate
	}
	return b.Static.SignIn(ctx, email, pass)
}

type rejectingIdentity struct {
	*identity.Static
}

func (rejectingIdentity) SignIn(context.Context, string, string) (*models.Account, error) {
	return nil, &models.AuthError{Message: identity.MsgInvalidCredentials}
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testDeps() Deps {
	return Deps{
		Identity: identity.NewStatic(),
		Payment:  payment.NewStatic("http://localhost:5173"),
		Scripts:  fakeScripts{},
		Log:      newNoopLogger(),
		Tracker:  []recording.Option{recording.WithTicker(recording.ManualTicker)},
	}
}

func newTestStore(t *testing.T, deps Deps) (*Store, *Manager) {
	t.Helper()
	m := NewManager(deps)
	s, err := m.Create(context.Background())
	require.NoError(t, err)
	t.Cleanup(m.Close)
	return s, m
}

var validCreds = models.Credentials{Email: "user@example.com", Password: "secret1", ConfirmPassword: "secret1"}

func assertSignedOut(t *testing.T, v View) {
	t.Helper()
	assert.False(t, v.Authenticated)
	assert.Equal(t, models.TierFree, v.SubscriptionTier)
	assert.Nil(t, v.Identity)
	assert.Nil(t, v.PendingUpgrade)
}

func TestStore_InitialState(t *testing.T) {
	s, _ := newTestStore(t, testDeps())
	v := s.Snapshot()
	assertSignedOut(t, v)
	assert.Equal(t, "CA", v.SelectedJurisdiction)
	assert.False(t, v.Loading)
	assert.True(t, v.Access[models.FeatureGuides])
	assert.False(t, v.Access[models.FeatureScripts])
}

func TestStore_SignInSignOut(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, testDeps())

	v, err := s.SignIn(ctx, validCreds)
	require.NoError(t, err)
	assert.True(t, v.Authenticated)
	require.NotNil(t, v.Identity)
	assert.Equal(t, "user@example.com", v.Identity.Email)
	assert.Equal(t, models.TierFree, v.SubscriptionTier)

	_, _, err = s.BeginPremiumUpgrade(ctx)
	require.NoError(t, err)
	require.True(t, s.CanAccess(models.FeatureRecording))

	_, err = s.SetJurisdiction(ctx, "NY")
	require.NoError(t, err)

	first := s.SignOut(ctx)
	assertSignedOut(t, first)
	assert.Equal(t, "NY", first.SelectedJurisdiction)

	second := s.SignOut(ctx)
	assert.Equal(t, first, second)
}

func TestStore_SignOutFromAnonymous(t *testing.T) {
	s, _ := newTestStore(t, testDeps())
	assertSignedOut(t, s.SignOut(context.Background()))
}

func TestStore_SignInValidation(t *testing.T) {
	tests := []struct {
		name       string
		creds      models.Credentials
		wantFields map[string]string
	}{
		{
			name:       "empty form",
			creds:      models.Credentials{},
			wantFields: map[string]string{"email": "Email is required", "password": "Password is required"},
		},
		{
			name:       "bad email and short password",
			creds:      models.Credentials{Email: "nope", Password: "123"},
			wantFields: map[string]string{"email": "Email is invalid", "password": "Password must be at least 6 characters"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestStore(t, testDeps())
			v, err := s.SignIn(context.Background(), tt.creds)
			var verr *models.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantFields, verr.Fields)
			assertSignedOut(t, v)
		})
	}
}

func TestStore_SignInAuthErrorKeepsState(t *testing.T) {
	deps := testDeps()
	deps.Identity = rejectingIdentity{identity.NewStatic()}
	s, _ := newTestStore(t, deps)

	v, err := s.SignIn(context.Background(), validCreds)
	var authErr *models.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, identity.MsgInvalidCredentials, authErr.Message)
	assertSignedOut(t, v)
}

func TestStore_SignUp(t *testing.T) {
	ctx := context.Background()

	t.Run("confirmation mismatch", func(t *testing.T) {
		s, _ := newTestStore(t, testDeps())
		creds := validCreds
		creds.ConfirmPassword = "different"
		_, err := s.SignUp(ctx, creds, models.Profile{})
		require.ErrorIs(t, err, models.ErrConfirmationMismatch)
		assert.False(t, s.Snapshot().Authenticated)
	})

	t.Run("missing confirmation", func(t *testing.T) {
		s, _ := newTestStore(t, testDeps())
		creds := validCreds
		creds.ConfirmPassword = ""
		_, err := s.SignUp(ctx, creds, models.Profile{})
		var verr *models.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "Please confirm your password", verr.Fields["confirm_password"])
	})

	t.Run("success is free tier with profile language", func(t *testing.T) {
		s, _ := newTestStore(t, testDeps())
		v, err := s.SignUp(ctx, validCreds, models.Profile{PreferredLanguage: models.LanguageSpanish})
		require.NoError(t, err)
		assert.True(t, v.Authenticated)
		assert.Equal(t, models.TierFree, v.SubscriptionTier)
		assert.Equal(t, models.LanguageSpanish, s.Language())
	})
}

func TestStore_SignInSuperseded(t *testing.T) {
	ctx := context.Background()
	blocking := &blockingIdentity{
		Static:  identity.NewStatic(),
		started: make(chan struct{}),
		gate:    make(chan struct{}),
	}
	deps := testDeps()
	deps.Identity = blocking
	s, _ := newTestStore(t, deps)

	firstErr := make(chan error, 1)
	go func() {
		_, err := s.SignIn(ctx, models.Credentials{Email: "first@example.com", Password: "secret1"})
		firstErr <- err
	}()
	<-blocking.started
	assert.True(t, s.Snapshot().Loading)

	v, err := s.SignIn(ctx, models.Credentials{Email: "second@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "second@example.com", v.Identity.Email)

	close(blocking.gate)
	require.ErrorIs(t, <-firstErr, models.ErrSuperseded)

	final := s.Snapshot()
	assert.Equal(t, "second@example.com", final.Identity.Email)
	assert.False(t, final.Loading)
}

func TestStore_SignOutDiscardsInflightSignIn(t *testing.T) {
	ctx := context.Background()
	blocking := &blockingIdentity{
		Static:  identity.NewStatic(),
		started: make(chan struct{}),
		gate:    make(chan struct{}),
	}
	deps := testDeps()
	deps.Identity = blocking
	s, _ := newTestStore(t, deps)

	errCh := make(chan error, 1)
	go func() {
		_, err := s.SignIn(ctx, validCreds)
		errCh <- err
	}()
	<-blocking.started
	s.SignOut(ctx)
	close(blocking.gate)

	require.ErrorIs(t, <-errCh, models.ErrSuperseded)
	assertSignedOut(t, s.Snapshot())
}

func TestStore_UpgradeAnonymousIsNoop(t *testing.T) {
	s, _ := newTestStore(t, testDeps())
	v, url, err := s.BeginTrialUpgrade(context.Background())
	require.NoError(t, err)
	assert.Empty(t, url)
	assertSignedOut(t, v)
}

func TestStore_UpgradeConfirmedByReconcile(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, testDeps())
	_, err := s.SignIn(ctx, validCreds)
	require.NoError(t, err)

	v, url, err := s.BeginTrialUpgrade(ctx)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5173/success?plan=trial", url)
	assert.Equal(t, models.TierTrialing, v.SubscriptionTier)
	assert.Nil(t, v.PendingUpgrade)
	assert.True(t, v.Access[models.FeatureScripts])
}

func TestStore_UpgradeWaitsForConfirmation(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	pay := newGatedPayment()
	close(pay.release)
	deps := testDeps()
	deps.Payment = pay
	deps.Now = clock.Now
	deps.PendingUpgradeTTL = time.Hour
	s, _ := newTestStore(t, deps)
	_, err := s.SignIn(ctx, validCreds)
	require.NoError(t, err)

	v, url, err := s.BeginPremiumUpgrade(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, url)
	assert.Equal(t, models.TierFree, v.SubscriptionTier, "tier must not change before confirmation")
	require.NotNil(t, v.PendingUpgrade)
	assert.Equal(t, models.TierActive, v.PendingUpgrade.TargetTier)

	v, err = s.Reconcile(ctx)
	require.NoError(t, err)
	assert.NotNil(t, v.PendingUpgrade)

	pay.setTier(models.TierActive)
	v, err = s.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.TierActive, v.SubscriptionTier)
	assert.Nil(t, v.PendingUpgrade)
}

func TestStore_PendingUpgradeExpires(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	pay := newGatedPayment()
	close(pay.release)
	deps := testDeps()
	deps.Payment = pay
	deps.Now = clock.Now
	deps.PendingUpgradeTTL = time.Hour
	s, _ := newTestStore(t, deps)
	_, err := s.SignIn(ctx, validCreds)
	require.NoError(t, err)

	_, _, err = s.BeginTrialUpgrade(ctx)
	require.NoError(t, err)
	require.True(t, s.PendingUpgrade())

	clock.Advance(2 * time.Hour)
	v, err := s.Reconcile(ctx)
	require.NoError(t, err)
	assert.Nil(t, v.PendingUpgrade)
	assert.Equal(t, models.TierFree, v.SubscriptionTier)
}

func TestStore_ConcurrentUpgradeRejected(t *testing.T) {
	ctx := context.Background()
	pay := newGatedPayment()
	deps := testDeps()
	deps.Payment = pay
	s, _ := newTestStore(t, deps)
	_, err := s.SignIn(ctx, validCreds)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, _, err := s.BeginTrialUpgrade(ctx)
		done <- err
	}()
	<-pay.started

	_, _, err = s.BeginPremiumUpgrade(ctx)
	require.ErrorIs(t, err, models.ErrUpgradeInProgress)

	close(pay.release)
	require.NoError(t, <-done)
}

func TestStore_UpgradeProviderFailure(t *testing.T) {
	ctx := context.Background()
	deps := testDeps()
	deps.Payment = failingPayment{}
	s, _ := newTestStore(t, deps)
	_, err := s.SignIn(ctx, validCreds)
	require.NoError(t, err)

	v, _, err := s.BeginTrialUpgrade(ctx)
	var perr *models.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Nil(t, v.PendingUpgrade)
	assert.Equal(t, models.TierFree, v.SubscriptionTier)
}

func TestStore_ExternalCancellationResets(t *testing.T) {
	ctx := context.Background()
	pay := payment.NewStatic("http://localhost:5173")
	deps := testDeps()
	deps.Payment = pay
	s, _ := newTestStore(t, deps)
	v, err := s.SignIn(ctx, validCreds)
	require.NoError(t, err)
	accountID := v.Identity.ID

	_, _, err = s.BeginPremiumUpgrade(ctx)
	require.NoError(t, err)
	require.Equal(t, models.TierActive, s.Snapshot().SubscriptionTier)

	pay.Cancel(accountID)
	v, err = s.Reconcile(ctx)
	require.NoError(t, err)
	assertSignedOut(t, v)
}

func TestStore_StopRecordingAfterCancellation(t *testing.T) {
	ctx := context.Background()
	pay := payment.NewStatic("http://localhost:5173")
	deps := testDeps()
	deps.Payment = pay
	s, _ := newTestStore(t, deps)
	v, err := s.SignIn(ctx, validCreds)
	require.NoError(t, err)
	_, _, err = s.BeginPremiumUpgrade(ctx)
	require.NoError(t, err)

	_, err = s.StartRecording()
	require.NoError(t, err)
	s.tracker.Tick()

	pay.Cancel(v.Identity.ID)
	v, err = s.Reconcile(ctx)
	require.NoError(t, err)
	assertSignedOut(t, v)
	assert.Equal(t, models.RecordingActive, s.RecordingStatus().State)

	rec, ok := s.StopRecording(ctx)
	require.True(t, ok)
	assert.Equal(t, 1, rec.Duration)
	assert.Equal(t, models.RecordingIdle, s.RecordingStatus().State)
	assert.Len(t, s.History(ctx), 1)

	_, err = s.StartRecording()
	require.ErrorIs(t, err, models.ErrFeatureLocked)
}

func TestStore_SetJurisdiction(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, testDeps())

	v, err := s.SetJurisdiction(ctx, " tx ")
	require.NoError(t, err)
	assert.Equal(t, "TX", v.SelectedJurisdiction)

	_, err = s.SetJurisdiction(ctx, "ZZ")
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "jurisdiction")
	assert.Equal(t, "TX", s.Jurisdiction())
}

func TestStore_GenerateScriptGating(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, testDeps())

	_, err := s.GenerateScript(ctx, ScriptRequest{Scenario: "traffic-stop"})
	require.ErrorIs(t, err, models.ErrFeatureLocked)

	_, err = s.SignIn(ctx, validCreds)
	require.NoError(t, err)
	_, _, err = s.BeginPremiumUpgrade(ctx)
	require.NoError(t, err)

	text, err := s.GenerateScript(ctx, ScriptRequest{Scenario: "traffic-stop", Language: models.LanguageSpanish})
	require.NoError(t, err)
	assert.Equal(t, "traffic-stop/CA/es", text)

	text, err = s.GenerateScript(ctx, ScriptRequest{Scenario: "arrest", Language: "fr"})
	require.NoError(t, err)
	assert.Equal(t, "arrest/CA/en", text)
}

func TestStore_RecordingLifecycle(t *testing.T) {
	ctx := context.Background()
	sink := new(MockSink)
	deps := testDeps()
	deps.Interactions = sink
	s, _ := newTestStore(t, deps)

	_, err := s.StartRecording()
	require.ErrorIs(t, err, models.ErrFeatureLocked)

	v, err := s.SignIn(ctx, validCreds)
	require.NoError(t, err)
	_, _, err = s.BeginTrialUpgrade(ctx)
	require.NoError(t, err)
	_, err = s.SetJurisdiction(ctx, "NY")
	require.NoError(t, err)

	sink.On("Save", mock.Anything, *v.Identity, mock.MatchedBy(func(rec models.RecordingRecord) bool {
		return rec.Duration == 3 && rec.Location == "NY" && rec.Notes == "badge 42"
	})).Return(nil).Once()

	status, err := s.StartRecording()
	require.NoError(t, err)
	assert.Equal(t, models.RecordingActive, status.State)
	for range 3 {
		s.tracker.Tick()
	}
	s.SetNotes("badge 42")

	rec, ok := s.StopRecording(ctx)
	require.True(t, ok)
	assert.Equal(t, 3, rec.Duration)
	assert.Equal(t, "NY", rec.Location)

	_, ok = s.StopRecording(ctx)
	assert.False(t, ok)
	sink.AssertExpectations(t)
}

func TestStore_PauseSuspendsAccrual(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, testDeps())
	_, err := s.SignIn(ctx, validCreds)
	require.NoError(t, err)
	_, _, err = s.BeginTrialUpgrade(ctx)
	require.NoError(t, err)

	_, err = s.StartRecording()
	require.NoError(t, err)
	s.PauseRecording()
	for range 5 {
		s.tracker.Tick()
	}
	s.ResumeRecording()
	for range 2 {
		s.tracker.Tick()
	}
	rec, ok := s.StopRecording(ctx)
	require.True(t, ok)
	assert.Equal(t, 2, rec.Duration)
}

func TestStore_HistoryAndSummary(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, testDeps())
	_, err := s.SignIn(ctx, validCreds)
	require.NoError(t, err)
	_, _, err = s.BeginTrialUpgrade(ctx)
	require.NoError(t, err)

	var ids []string
	for range 2 {
		_, err = s.StartRecording()
		require.NoError(t, err)
		rec, ok := s.StopRecording(ctx)
		require.True(t, ok)
		ids = append(ids, rec.ID)
	}

	history := s.History(ctx)
	require.Len(t, history, 2)
	assert.Equal(t, ids[1], history[0].ID)

	card, err := s.SummaryCard(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, "card:"+ids[0], card)

	_, err = s.SummaryCard(ctx, "missing")
	require.ErrorIs(t, err, models.ErrRecordNotFound)
}

func TestStore_HistoryFromSink(t *testing.T) {
	ctx := context.Background()
	sink := new(MockSink)
	deps := testDeps()
	deps.Interactions = sink
	s, _ := newTestStore(t, deps)
	v, err := s.SignIn(ctx, validCreds)
	require.NoError(t, err)

	stored := []models.RecordingRecord{{ID: "r1", Location: "CA"}}
	sink.On("History", mock.Anything, v.Identity.ID).Return(stored, nil).Once()
	assert.Equal(t, stored, s.History(ctx))

	sink.On("History", mock.Anything, v.Identity.ID).Return(nil, errors.New("db down")).Once()
	assert.Empty(t, s.History(ctx))
}
