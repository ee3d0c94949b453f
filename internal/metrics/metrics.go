package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "partify"

// Collector is a prometheus.Collector for HTTP traffic and order placement.
// A nil *Collector is valid and records nothing.
type Collector struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	ordersPlaced    prometheus.Counter
	orderValue      prometheus.Histogram
}

func NewCollector() *Collector {
	return &Collector{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "http_requests_total",
				Help:      "The number of HTTP requests served.",
			}, []string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "http_request_duration_seconds",
				Help:      "The time taken to serve an HTTP request.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"method", "route"},
		),
		ordersPlaced: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "orders_placed_total",
				Help:      "The number of orders created.",
			},
		),
		orderValue: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "order_total_price",
				Help:      "The total price of created orders.",
				Buckets:   []float64{25, 50, 100, 150, 250, 500, 1000, 2500},
			},
		),
	}
}

// Describe is part of the prometheus.Collector interface.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.requests.Describe(ch)
	c.requestDuration.Describe(ch)
	c.ordersPlaced.Describe(ch)
	c.orderValue.Describe(ch)
}

// Collect is part of the prometheus.Collector interface.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.requests.Collect(ch)
	c.requestDuration.Collect(ch)
	c.ordersPlaced.Collect(ch)
	c.orderValue.Collect(ch)
}

func (c *Collector) OrderPlaced(total float64) {
	if c == nil {
		return
	}
	c.ordersPlaced.Inc()
	c.orderValue.Observe(total)
}

// Middleware records request counts and latency by route template.
func (c *Collector) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ec echo.Context) error {
			if c == nil {
				return next(ec)
			}
			start := time.Now()
			err := next(ec)

			status := ec.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			} else if err != nil {
				status = http.StatusInternalServerError
			}
			route := ec.Path()
			if route == "" {
				route = "unmatched"
			}
			c.requests.WithLabelValues(ec.Request().Method, route, strconv.Itoa(status)).Inc()
			c.requestDuration.WithLabelValues(ec.Request().Method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// Handler serves the collector from its own registry.
func Handler(reg *prometheus.Registry) echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
}
