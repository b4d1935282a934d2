package metrics

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type Outcome string

const (
	Success                  Outcome       = "success"
	Error                    Outcome       = "error"
	MetricRequestTimeout     time.Duration = 5 * time.Second
	MetricRequestIdleTimeout time.Duration = 10 * time.Second
)

func (O Outcome) String() string {
	return string(O)
}

func outcome(failure bool) Outcome {
	if failure {
		return Error
	}
	return Success
}

var defaultHistogramBucketsSeconds = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30}

// Collectors are registered on registry at package init, so recording and
// reading work without starting the metrics server.
var (
	once          sync.Once
	metricsRouter *chi.Mux
	registry      = prometheus.NewRegistry()

	dbLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_latency_seconds",
			Help:    "DB latency in seconds splitted by method and execution status",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"method", "status"},
	)
	bankLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bank_latency_seconds",
			Help:    "Histogram of fund transfer backend durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"method", "status"},
	)
	engineOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "engine_operation_duration_seconds",
			Help:    "Ledger operation duration in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"operation", "status"},
	)
	pollerDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "poller_duration_seconds",
			Help:    "Histogram of poller durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"type", "status"},
	)
	engineRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_rejections_total",
			Help: "Number of rejected ledger operations by error code",
		},
		[]string{"operation", "code"},
	)
	// add a counter for the number of errors from the fail to push message into queue
	queueSendErrorCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "queue_send_error_count",
			Help: "The total number of errors when sending messages to the queue",
		},
	)
	rewardPoolRemainingGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "reward_pool_remaining",
			Help: "Funded rewards not yet distributed",
		},
	)
	rewardPoolDistributedGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "reward_pool_distributed",
			Help: "Cumulative distributed rewards",
		},
	)
	treasuryVaultBalanceGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "treasury_vault_balance",
			Help: "Live balance of the treasury vault",
		},
	)
	treasuryTotalFeesGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "treasury_total_fees",
			Help: "Lifetime fees credited to the treasury",
		},
	)
	stakeVaultBalanceGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "stake_vault_balance",
			Help: "Live balance of the stake vault",
		},
	)
)

func init() {
	registerMetrics()
}

// Init starts the metrics server.
func Init(metricsPort int) {
	once.Do(func() {
		initMetricsRouter(metricsPort)
	})
}

// Gatherer exposes every ledger collector, as served on /metrics.
func Gatherer() prometheus.Gatherer {
	return registry
}

// initMetricsRouter initializes the metrics router.
func initMetricsRouter(metricsPort int) {
	metricsRouter = chi.NewRouter()
	metricsRouter.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	// Create a custom server with timeout settings
	metricsAddr := fmt.Sprintf(":%d", metricsPort)
	server := &http.Server{
		Addr:         metricsAddr,
		Handler:      metricsRouter,
		ReadTimeout:  MetricRequestTimeout,
		WriteTimeout: MetricRequestTimeout,
		IdleTimeout:  MetricRequestIdleTimeout,
	}

	// Start the server in a separate goroutine
	go func() {
		log.Printf("Starting metrics server on %s", metricsAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msgf("Error starting metrics server on %s", metricsAddr)
		}
	}()
}

// registerMetrics registers the Prometheus metrics.
func registerMetrics() {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		dbLatency,
		bankLatency,
		engineOperationDuration,
		pollerDurationHistogram,
		engineRejections,
		queueSendErrorCounter,
		rewardPoolRemainingGauge,
		rewardPoolDistributedGauge,
		treasuryVaultBalanceGauge,
		treasuryTotalFeesGauge,
		stakeVaultBalanceGauge,
	)
}

func RecordDbLatency(d time.Duration, method string, failure bool) {
	dbLatency.WithLabelValues(method, outcome(failure).String()).Observe(d.Seconds())
}

func RecordBankLatency(d time.Duration, method string, failure bool) {
	bankLatency.WithLabelValues(method, outcome(failure).String()).Observe(d.Seconds())
}

// RecordPollerDuration wraps a poll method so every run is timed under name.
func RecordPollerDuration(name string, f func(ctx context.Context) error) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		start := time.Now()
		err := f(ctx)
		pollerDurationHistogram.WithLabelValues(name, outcome(err != nil).String()).Observe(time.Since(start).Seconds())
		return err
	}
}

func RecordEngineOperation(d time.Duration, operation string, failure bool) {
	engineOperationDuration.WithLabelValues(operation, outcome(failure).String()).Observe(d.Seconds())
}

func IncEngineRejection(operation, code string) {
	engineRejections.WithLabelValues(operation, code).Inc()
}

func RecordQueueSendError() {
	queueSendErrorCounter.Inc()
}

func RecordRewardPool(total, distributed uint64) {
	rewardPoolDistributedGauge.Set(float64(distributed))
	rewardPoolRemainingGauge.Set(float64(total - distributed))
}

func RecordTreasury(vaultBalance, totalFees uint64) {
	treasuryVaultBalanceGauge.Set(float64(vaultBalance))
	treasuryTotalFeesGauge.Set(float64(totalFees))
}

func RecordStakeVaultBalance(balance uint64) {
	stakeVaultBalanceGauge.Set(float64(balance))
}
