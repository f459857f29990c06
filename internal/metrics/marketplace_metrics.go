package metrics

import (
	"strconv"
	"time"

	"github.com/Dhoini/course-marketplace/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Исходы операций для меток
const (
	OutcomeCreated = "created"
	OutcomeFailed  = "failed"
	OutcomeHandled = "handled"
	OutcomeIgnored = "ignored"
	OutcomeError   = "error"
)

// MarketplaceMetrics интерфейс для бизнес-метрик маркетплейса
type MarketplaceMetrics interface {
	IncCourseCreated()
	IncCheckoutSession(outcome string)
	IncWebhookEvent(eventType, outcome string)
	IncEnrollmentConfirmed(created bool)
	ObservePaymentAmount(amount float64, status string)
	ObserveHTTPRequest(method, route string, status int, duration time.Duration)
}

type marketplaceMetrics struct {
	log                  *logger.Logger
	coursesCreated       prometheus.Counter
	checkoutSessions     *prometheus.CounterVec
	webhookEvents        *prometheus.CounterVec
	enrollmentsConfirmed *prometheus.CounterVec
	paymentsAmount       *prometheus.HistogramVec
	httpDuration         *prometheus.HistogramVec
}

// NewMarketplaceMetrics регистрирует метрики в registry
func NewMarketplaceMetrics(registry *prometheus.Registry, log *logger.Logger) MarketplaceMetrics {
	factory := promauto.With(registry)

	return &marketplaceMetrics{
		log: log,
		coursesCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "courses_created_total",
				Help: "The total number of created courses",
			},
		),
		checkoutSessions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "checkout_sessions_total",
				Help: "The total number of checkout session attempts by outcome",
			},
			[]string{"outcome"},
		),
		webhookEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webhook_events_total",
				Help: "The total number of provider webhook events by type and outcome",
			},
			[]string{"event_type", "outcome"},
		),
		enrollmentsConfirmed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "enrollments_confirmed_total",
				Help: "The total number of enrollment confirmations",
			},
			[]string{"created"},
		),
		paymentsAmount: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "payments_amount",
				Help:    "Payment amounts distribution",
				Buckets: prometheus.ExponentialBuckets(1, 10, 5), // 1, 10, 100, 1000, 10000
			},
			[]string{"status"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
	}
}

// IncCourseCreated увеличивает счетчик созданных курсов
func (m *marketplaceMetrics) IncCourseCreated() {
	m.coursesCreated.Inc()
}

// IncCheckoutSession учитывает попытку создания сессии оплаты
func (m *marketplaceMetrics) IncCheckoutSession(outcome string) {
	m.checkoutSessions.WithLabelValues(outcome).Inc()
}

// IncWebhookEvent учитывает обработанное событие провайдера
func (m *marketplaceMetrics) IncWebhookEvent(eventType, outcome string) {
	m.webhookEvents.WithLabelValues(eventType, outcome).Inc()
}

func (m *marketplaceMetrics) IncEnrollmentConfirmed(created bool) {
	m.enrollmentsConfirmed.WithLabelValues(strconv.FormatBool(created)).Inc()
}

// ObservePaymentAmount записывает сумму платежа
func (m *marketplaceMetrics) ObservePaymentAmount(amount float64, status string) {
	m.paymentsAmount.WithLabelValues(status).Observe(amount)
}

// ObserveHTTPRequest записывает длительность HTTP запроса
func (m *marketplaceMetrics) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	m.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}
