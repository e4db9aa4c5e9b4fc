// Package metrics exposes pipeline counters to Prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	logx "scioperibot/pkg/logx"
)

// Recorder is what the pipeline reports into.
type Recorder interface {
	FeedEntries(n int)
	Matched(condition string, n int)
	Sent()
	SendFailed()
	Skipped()
	HistoryError(op string)
	RunFinished(d time.Duration, err error)
}

// Nop discards everything.
type Nop struct{}

func (Nop) FeedEntries(int)                  {}
func (Nop) Matched(string, int)              {}
func (Nop) Sent()                            {}
func (Nop) SendFailed()                      {}
func (Nop) Skipped()                         {}
func (Nop) HistoryError(string)              {}
func (Nop) RunFinished(time.Duration, error) {}

// Collector implements Recorder with Prometheus metrics.
type Collector struct {
	feedEntries   prometheus.Counter
	matches       *prometheus.CounterVec
	sent          prometheus.Counter
	sendFailed    prometheus.Counter
	skipped       prometheus.Counter
	historyErrors *prometheus.CounterVec
	runs          *prometheus.CounterVec
	runDuration   prometheus.Histogram
	lastSuccess   prometheus.Gauge
}

var _ Recorder = (*Collector)(nil)

// NewCollector registers the metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		feedEntries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scioperibot_feed_entries_total",
			Help: "Feed entries read.",
		}),
		matches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scioperibot_matches_total",
			Help: "Records matching a condition.",
		}, []string{"condition"}),
		sent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scioperibot_notifications_sent_total",
			Help: "Notifications delivered.",
		}),
		sendFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scioperibot_notifications_failed_total",
			Help: "Notifications the transport rejected.",
		}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scioperibot_notifications_skipped_total",
			Help: "Matches skipped because they were already notified.",
		}),
		historyErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scioperibot_history_errors_total",
			Help: "History store failures by operation.",
		}, []string{"op"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scioperibot_runs_total",
			Help: "Pipeline runs by result.",
		}, []string{"result"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "scioperibot_run_duration_seconds",
			Help:    "Pipeline run duration.",
			Buckets: prometheus.DefBuckets,
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scioperibot_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run.",
		}),
	}
	reg.MustRegister(
		c.feedEntries,
		c.matches,
		c.sent,
		c.sendFailed,
		c.skipped,
		c.historyErrors,
		c.runs,
		c.runDuration,
		c.lastSuccess,
	)
	return c
}

func (c *Collector) FeedEntries(n int) { c.feedEntries.Add(float64(n)) }

func (c *Collector) Matched(condition string, n int) {
	c.matches.WithLabelValues(condition).Add(float64(n))
}

func (c *Collector) Sent()                  { c.sent.Inc() }
func (c *Collector) SendFailed()            { c.sendFailed.Inc() }
func (c *Collector) Skipped()               { c.skipped.Inc() }
func (c *Collector) HistoryError(op string) { c.historyErrors.WithLabelValues(op).Inc() }

func (c *Collector) RunFinished(d time.Duration, err error) {
	c.runDuration.Observe(d.Seconds())
	if err != nil {
		c.runs.WithLabelValues("error").Inc()
		return
	}
	c.runs.WithLabelValues("ok").Inc()
	c.lastSuccess.SetToCurrentTime()
}

// Handler serves /metrics for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return mux
}

// Serve runs the metrics endpoint until ctx is done.
func Serve(ctx context.Context, addr string, gatherer prometheus.Gatherer, log logx.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           Handler(gatherer),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("metrics listening", logx.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()
	select {
	case <-ctx.Done():
		sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
