package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	DraftsOpened = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "drafts_opened_total",
		Help: "Количество открытых черновиков",
	})
	DraftsFinalized = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "drafts_finalized_total",
		Help: "Количество завершённых черновиков",
	})
	DraftsExpired = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "drafts_expired_total",
		Help: "Количество черновиков, истёкших по таймауту",
	})
	DraftsCancelled = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "drafts_cancelled_total",
		Help: "Количество черновиков, отменённых оператором",
	})

	DeliveriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "deliveries_total",
		Help: "Количество запросов на выдачу по исходу",
	}, []string{"outcome"})

	DeliverySendErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "delivery_send_errors_total",
		Help: "Ошибки отправки файлов при выдаче",
	})

	RetractionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "retractions_total",
		Help: "Количество сработавших отзывов выдачи",
	})

	PublishJobsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "publish_jobs_total",
		Help: "Количество задач публикации по статусу",
	}, []string{"status"})

	NetworkRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "network_request_duration_seconds",
		Help:    "Длительность сетевых запросов",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 15, 20, 30, 60, 120},
	}, []string{"component", "operation", "target", "status"})

	NetworkRequestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "network_request_total",
		Help: "Количество сетевых запросов",
	}, []string{"component", "operation", "target", "status"})
)

// MustRegister регистрирует метрики.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		DraftsOpened,
		DraftsFinalized,
		DraftsExpired,
		DraftsCancelled,
		DeliveriesTotal,
		DeliverySendErrors,
		RetractionsTotal,
		PublishJobsTotal,
		NetworkRequestDuration,
		NetworkRequestTotal,
	)
}

// ObserveNetworkRequest записывает длительность и статус сетевого запроса.
func ObserveNetworkRequest(component, operation, target string, start time.Time, err error) {
	if component == "" {
		component = "unknown"
	}
	if operation == "" {
		operation = "unknown"
	}
	if target == "" {
		target = "unknown"
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	duration := time.Since(start).Seconds()
	NetworkRequestDuration.WithLabelValues(component, operation, target, status).Observe(duration)
	NetworkRequestTotal.WithLabelValues(component, operation, target, status).Inc()
}

// IncDelivery увеличивает счётчик выдач с указанным исходом.
func IncDelivery(outcome string) {
	DeliveriesTotal.WithLabelValues(outcome).Inc()
}

// IncPublishJob увеличивает счётчик задач публикации.
func IncPublishJob(status string) {
	PublishJobsTotal.WithLabelValues(status).Inc()
}
