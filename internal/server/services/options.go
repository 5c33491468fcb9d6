package services

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/gophboard/internal/common"
	"github.com/dmitrijs2005/gophboard/internal/logging"
	"github.com/dmitrijs2005/gophboard/internal/server/metrics"
)

// Option customises a service at construction time.
type Option func(*options)

type options struct {
	log     logging.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.log = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithClock replaces the source of record timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(module string, opts []Option) options {
	o := options{log: logging.Nop{}, now: utcNow}
	for _, opt := range opts {
		opt(&o)
	}
	o.log = o.log.With("module", module)
	return o
}

// utcNow is truncated to microseconds so values survive a postgres round trip.
func utcNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// publicError passes caller-facing errors through and replaces anything else
// with an opaque internal error after logging it.
func (o options) publicError(ctx context.Context, op string, err error) error {
	var e *common.Error
	if errors.As(err, &e) && e.Kind != common.KindInternal {
		return e
	}
	o.log.Error(ctx, op+" failed", "error", err)
	return common.Internal(err)
}
