package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics собирает метрики HTTP и бизнес-счётчики заказов.
type Metrics struct {
	registry *prometheus.Registry

	Requests        *prometheus.CounterVec
	LatencyMS       *prometheus.HistogramVec
	OrdersSubmitted *prometheus.CounterVec
	ProofUploads    *prometheus.CounterVec
	EventsPublished *prometheus.CounterVec
}

// New регистрирует метрики в отдельном реестре, чтобы тесты могли создавать их повторно.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cocapremium",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"route", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cocapremium",
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"route"}),
		OrdersSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cocapremium",
			Name:      "orders_submitted_total",
			Help:      "Orders accepted by the store, by outcome.",
		}, []string{"outcome"}),
		ProofUploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cocapremium",
			Name:      "payment_proof_uploads_total",
			Help:      "Payment proof uploads, by outcome.",
		}, []string{"outcome"}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cocapremium",
			Name:      "events_published_total",
			Help:      "Outbox events relayed to Kafka, by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		m.Requests, m.LatencyMS, m.OrdersSubmitted, m.ProofUploads, m.EventsPublished,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return m
}

// Middleware считает запросы и их длительность по шаблону маршрута.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			route := c.Path()
			if route == "" {
				route = "unknown"
			}

			m.Requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
			m.LatencyMS.WithLabelValues(route).Observe(float64(time.Since(start).Milliseconds()))
			return err
		}
	}
}

// Handler отдаёт метрики в формате Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Outcome переводит ошибку в метку счётчика.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
