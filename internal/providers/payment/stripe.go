package payment

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	"github.com/magabrotheeeer/knowyourrights/internal/config"
	"github.com/magabrotheeeer/knowyourrights/internal/models"
)

const providerName = "stripe"

// Stripe провайдер на Stripe Checkout и поиске подписок.
type Stripe struct {
	api       *client.API
	appURL    string
	prices    map[models.Plan]string
	trialDays int
}

// NewStripe создает клиента Stripe без сетевых повторов.
func NewStripe(cfg config.Payment, appURL string, log *slog.Logger) *Stripe {
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(strings.TrimRight(cfg.StripeAPIURL, "/")),
		HTTPClient:        &http.Client{Timeout: cfg.PaymentTimeout},
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &slogLogger{log: log.With(slog.String("provider", providerName))},
	})
	api := &client.API{}
	api.Init(cfg.StripeSecretKey, &stripe.Backends{API: backend, Connect: backend, Uploads: backend})

	return &Stripe{
		api:    api,
		appURL: appURL,
		prices: map[models.Plan]string{
			models.PlanTrial:   cfg.TrialPriceID,
			models.PlanPremium: cfg.PremiumPriceID,
		},
		trialDays: cfg.TrialDays,
	}
}

// CreateCheckoutSession создает Checkout Session в режиме подписки.
func (c *Stripe) CreateCheckoutSession(ctx context.Context, plan models.Plan, accountID, email string) (string, error) {
	const op = "payment.Stripe.CreateCheckoutSession"
	price, ok := c.prices[plan]
	if !ok || price == "" {
		return "", &models.ProviderError{Provider: providerName, Err: fmt.Errorf("%s: no price for plan %q", op, plan)}
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(price), Quantity: stripe.Int64(1)},
		},
		CustomerEmail:     stripe.String(email),
		ClientReferenceID: stripe.String(accountID),
		SuccessURL:        stripe.String(c.appURL + "/success"),
		CancelURL:         stripe.String(c.appURL + "/cancel"),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{"account_id": accountID},
		},
	}
	if plan == models.PlanTrial && c.trialDays > 0 {
		params.SubscriptionData.TrialPeriodDays = stripe.Int64(int64(c.trialDays))
	}
	params.Context = ctx

	session, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return "", &models.ProviderError{Provider: providerName, Err: fmt.Errorf("%s: %w", op, err)}
	}
	if session.URL == "" {
		return "", &models.ProviderError{Provider: providerName, Err: fmt.Errorf("%s: empty checkout url", op)}
	}
	return session.URL, nil
}

// SubscriptionStatus ищет последнюю подписку учетной записи по metadata.account_id.
func (c *Stripe) SubscriptionStatus(ctx context.Context, accountID string) (models.Tier, error) {
	const op = "payment.Stripe.SubscriptionStatus"
	params := &stripe.SubscriptionSearchParams{
		SearchParams: stripe.SearchParams{
			Context: ctx,
			Query:   fmt.Sprintf("metadata['account_id']:'%s'", strings.ReplaceAll(accountID, "'", "")),
			Limit:   stripe.Int64(10),
		},
	}

	var latest *stripe.Subscription
	iter := c.api.Subscriptions.Search(params)
	for iter.Next() {
		s := iter.Subscription()
		if latest == nil || s.Created > latest.Created {
			latest = s
		}
	}
	if err := iter.Err(); err != nil {
		return "", &models.ProviderError{Provider: providerName, Err: fmt.Errorf("%s: %w", op, err)}
	}
	if latest == nil {
		return models.TierFree, nil
	}
	return TierFromStatus(string(latest.Status)), nil
}

// TierFromStatus переводит статус подписки Stripe в уровень подписки.
func TierFromStatus(status string) models.Tier {
	switch stripe.SubscriptionStatus(status) {
	case stripe.SubscriptionStatusTrialing:
		return models.TierTrialing
	case stripe.SubscriptionStatusActive:
		return models.TierActive
	case stripe.SubscriptionStatusPastDue, stripe.SubscriptionStatusUnpaid:
		return models.TierPastDue
	case stripe.SubscriptionStatusCanceled, stripe.SubscriptionStatusIncompleteExpired:
		return models.TierCanceled
	default:
		return models.TierFree
	}
}

// slogLogger направляет журнал клиента Stripe в slog.
type slogLogger struct {
	log *slog.Logger
}

func (l *slogLogger) Debugf(format string, v ...interface{}) { l.log.Debug(fmt.Sprintf(format, v...)) }
func (l *slogLogger) Infof(format string, v ...interface{})  { l.log.Debug(fmt.Sprintf(format, v...)) }
func (l *slogLogger) Warnf(format string, v ...interface{})  { l.log.Warn(fmt.Sprintf(format, v...)) }
func (l *slogLogger) Errorf(format string, v ...interface{}) { l.log.Error(fmt.Sprintf(format, v...)) }
