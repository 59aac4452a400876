// Package metrics счетчики prometheus для сессий, генерации фраз и записей.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Источники текста фразы.
const (
	SourceRemote   = "remote"
	SourceFallback = "fallback"
)

// Metrics набор счетчиков сервиса. Методы безопасны для nil-получателя.
type Metrics struct {
	scripts        *prometheus.CounterVec
	summaries      *prometheus.CounterVec
	upgrades       *prometheus.CounterVec
	reconciles     *prometheus.CounterVec
	recordings     prometheus.Counter
	activeSessions prometheus.Gauge
	featureDenied  *prometheus.CounterVec
}

// New создает счетчики и регистрирует их в reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		scripts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "knowyourrights_scripts_generated_total",
				Help: "Total number of generated scripts by source",
			},
			[]string{"scenario", "source"},
		),
		summaries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "knowyourrights_summary_cards_total",
				Help: "Total number of summary cards by source",
			},
			[]string{"source"},
		),
		upgrades: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "knowyourrights_upgrades_started_total",
				Help: "Total number of started checkouts by plan and result",
			},
			[]string{"plan", "result"},
		),
		reconciles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "knowyourrights_reconciles_total",
				Help: "Total number of subscription reconciliations by outcome",
			},
			[]string{"outcome"},
		),
		recordings: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "knowyourrights_recordings_stopped_total",
				Help: "Total number of finished recordings",
			},
		),
		activeSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "knowyourrights_active_sessions",
				Help: "Number of client sessions held in memory",
			},
		),
		featureDenied: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "knowyourrights_feature_denied_total",
				Help: "Total number of requests rejected by the paywall",
			},
			[]string{"feature"},
		),
	}
	reg.MustRegister(
		m.scripts,
		m.summaries,
		m.upgrades,
		m.reconciles,
		m.recordings,
		m.activeSessions,
		m.featureDenied,
	)
	return m
}

// ScriptGenerated учитывает выданную фразу.
func (m *Metrics) ScriptGenerated(scenario, source string) {
	if m == nil {
		return
	}
	m.scripts.WithLabelValues(scenario, source).Inc()
}

// SummaryGenerated учитывает созданную карточку.
func (m *Metrics) SummaryGenerated(source string) {
	if m == nil {
		return
	}
	m.summaries.WithLabelValues(source).Inc()
}

// UpgradeStarted учитывает попытку оформления подписки.
func (m *Metrics) UpgradeStarted(plan, result string) {
	if m == nil {
		return
	}
	m.upgrades.WithLabelValues(plan, result).Inc()
}

// Reconciled учитывает сверку статуса подписки.
func (m *Metrics) Reconciled(outcome string) {
	if m == nil {
		return
	}
	m.reconciles.WithLabelValues(outcome).Inc()
}

// RecordingStopped учитывает завершенную запись.
func (m *Metrics) RecordingStopped() {
	if m == nil {
		return
	}
	m.recordings.Inc()
}

// SetActiveSessions обновляет число сессий в памяти.
func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}

// FeatureDenied учитывает запрос, отклоненный из-за уровня подписки.
func (m *Metrics) FeatureDenied(feature string) {
	if m == nil {
		return
	}
	m.featureDenied.WithLabelValues(feature).Inc()
}
