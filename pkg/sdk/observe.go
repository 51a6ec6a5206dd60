package semdex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/semdex/internal/domain"
)

type sdkMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	tokens     *prometheus.CounterVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "semdex",
			Subsystem: "sdk",
			Name:      "operations_total",
			Help:      "SDK operations by outcome.",
		}, []string{"operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "semdex",
			Subsystem: "sdk",
			Name:      "operation_duration_seconds",
			Help:      "SDK operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		tokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "semdex",
			Subsystem: "sdk",
			Name:      "embedding_tokens_total",
			Help:      "Embedding tokens spent by SDK operations.",
		}, []string{"operation"}),
	}
	if err := registerOrReuse(reg, &m.operations); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.tokens); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers *c, or points *c at the collector already
// registered under the same descriptor.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	err := reg.Register(*c)
	if err == nil {
		return nil
	}
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return fmt.Errorf("semdex: register metric: %w", err)
	}
	existing, ok := are.ExistingCollector.(T)
	if !ok {
		return fmt.Errorf("semdex: metric already registered as %T", are.ExistingCollector)
	}
	*c = existing
	return nil
}

// outcome buckets an operation error by the sentinel it wraps.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrUnsupportedFilter):
		return "invalid"
	case errors.Is(err, domain.ErrEmbeddingProviderError):
		return "embedding_error"
	case errors.Is(err, domain.ErrStoreUnavailable):
		return "store_unavailable"
	case errors.Is(err, domain.ErrStoreRejected):
		return "store_rejected"
	default:
		return "error"
	}
}

// observer logs and meters SDK operations. Both sinks are optional and a
// nil observer is valid.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{logger: logger}
	if reg != nil {
		m, err := newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
		o.metrics = m
	}
	return o, nil
}

// span is one in-flight SDK operation.
type span struct {
	obs   *observer
	op    string
	start time.Time
	usage *domain.EmbeddingUsage
}

// begin starts op and attaches an embedding usage tracker to ctx.
func (o *observer) begin(ctx context.Context, op string) (context.Context, *span) {
	ctx, usage := domain.NewContextWithUsage(ctx)
	return ctx, &span{obs: o, op: op, start: time.Now(), usage: usage}
}

// end records duration, outcome and tokens spent.
func (s *span) end(err error) {
	o := s.obs
	if o == nil {
		return
	}
	dur := time.Since(s.start)
	result := outcome(err)

	if o.metrics != nil {
		o.metrics.operations.WithLabelValues(s.op, result).Inc()
		o.metrics.duration.WithLabelValues(s.op).Observe(dur.Seconds())
		if s.usage.Used() {
			o.metrics.tokens.WithLabelValues(s.op).Add(float64(s.usage.Tokens()))
		}
	}

	if o.logger == nil {
		return
	}
	attrs := []any{"op", s.op, "duration", dur}
	if s.usage.Used() {
		attrs = append(attrs, "embedding_calls", s.usage.Calls(), "embedding_tokens", s.usage.Tokens())
	}
	if err != nil {
		o.logger.Warn("operation failed", append(attrs, "outcome", result, "error", err)...)
		return
	}
	o.logger.Debug("operation completed", attrs...)
}
