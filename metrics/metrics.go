// Package metrics exposes Prometheus collectors for the storefront.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/junaidrashid-git/storefront-api/cart"
)

// Collector holds every metric of the service on its own registry.
type Collector struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	CartMutations   *prometheus.CounterVec
	Searches        prometheus.Counter
	EmptySearches   prometheus.Counter
	SearchDuration  prometheus.Histogram
	PaymentAttempts *prometheus.CounterVec
}

func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		CartMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_mutations_total",
			Help:      "Cart mutations by operation",
		}, []string{"operation"}),
		Searches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Completed product searches",
		}),
		EmptySearches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_empty_total",
			Help:      "Searches that returned no results",
		}),
		SearchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Product search latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		PaymentAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_attempts_total",
			Help:      "Payment gateway calls by step and outcome",
		}, []string{"step", "outcome"}),
	}

	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.HTTPRequests,
		c.HTTPDuration,
		c.CartMutations,
		c.Searches,
		c.EmptySearches,
		c.SearchDuration,
		c.PaymentAttempts,
	)
	return c
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Dispatch counts cart mutations. It lets the collector sit behind a
// cart.MultiDispatcher next to the realtime hub.
func (c *Collector) Dispatch(event cart.Event) error {
	if changed, ok := event.(cart.Changed); ok {
		c.CartMutations.WithLabelValues(string(changed.Operation)).Inc()
	}
	return nil
}

func (c *Collector) ObserveSearch(elapsed time.Duration, results int) {
	c.Searches.Inc()
	if results == 0 {
		c.EmptySearches.Inc()
	}
	c.SearchDuration.Observe(elapsed.Seconds())
}

func (c *Collector) ObservePayment(step string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	c.PaymentAttempts.WithLabelValues(step, outcome).Inc()
}

// Middleware records request count and latency per matched route.
func (c *Collector) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		c.HTTPRequests.WithLabelValues(ctx.Request.Method, route, strconv.Itoa(ctx.Writer.Status())).Inc()
		c.HTTPDuration.WithLabelValues(ctx.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
