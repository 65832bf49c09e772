// Package metrics содержит Prometheus метрики сервиса.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/turnaplay/teamreg/internal/domain"
)

const namespace = "teamreg"

// Переходы приглашений
const (
	InviteCreated          = "created"
	InviteAccepted         = "accepted"
	InviteRejected         = "rejected"
	InviteCanceled         = "canceled"
	InviteRevoked          = "revoked"
	InviteTransitionFailed = "failed"
)

var (
	// InviteTransitions считает переходы приглашений по типу
	InviteTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invite_transitions_total",
			Help:      "Total number of invite lifecycle transitions",
		},
		[]string{"transition"},
	)

	// DomainErrors считает ошибки бизнес-правил, отданные клиентам
	DomainErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "domain_errors_total",
			Help:      "Total number of business rule violations returned to callers",
		},
		[]string{"kind"},
	)

	// StatusRecomputeFailures считает неудачные пересчеты статуса команды
	StatusRecomputeFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "team_status_recompute_failures_total",
			Help:      "Total number of failed best-effort team status recomputations",
		},
	)

	// RequestDuration длительность HTTP запросов
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// RecordInviteTransition увеличивает счетчик переходов приглашений
func RecordInviteTransition(transition string) {
	InviteTransitions.WithLabelValues(transition).Inc()
}

// RecordDomainError увеличивает счетчик доменных ошибок
func RecordDomainError(kind domain.Kind) {
	DomainErrors.WithLabelValues(string(kind)).Inc()
}

// RecordRecomputeFailure увеличивает счетчик неудачных пересчетов статуса
func RecordRecomputeFailure() {
	StatusRecomputeFailures.Inc()
}

// ObserveRequest записывает длительность HTTP запроса
func ObserveRequest(method, route, status string, start time.Time) {
	RequestDuration.WithLabelValues(method, route, status).Observe(time.Since(start).Seconds())
}

// Handler отдает метрики в формате Prometheus
func Handler() http.Handler {
	return promhttp.Handler()
}
