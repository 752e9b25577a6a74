package batch

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"bizhours-exporter/internal/bizhours"
	"bizhours-exporter/internal/metrics"
)

// Interval is one record handed to the driver.
type Interval struct {
	ID    string
	Start time.Time
	End   time.Time
	// Err is set when the record could not be decoded.
	Err error
}

type Result struct {
	ID        string
	Hours     int
	Breakdown bizhours.Breakdown
	Err       error
	Warnings  []*bizhours.CalendarGapWarning
}

type Summary struct {
	OK         int
	Rejected   int
	Invalid    int
	Warnings   int
	TotalHours int
}

// Driver evaluates records against one shared calculator.
type Driver struct {
	calc    *bizhours.Calculator
	log     *zap.Logger
	metrics *metrics.Metrics
	workers int
}

func New(calc *bizhours.Calculator, log *zap.Logger, m *metrics.Metrics, workers int) *Driver {
	if workers < 1 {
		workers = 1
	}
	return &Driver{calc: calc, log: log, metrics: m, workers: workers}
}

// Run evaluates every interval and returns results in input order.
// Record-level failures are reported on their Result; only cancellation of
// ctx makes Run return an error.
func (d *Driver) Run(ctx context.Context, items []Interval) ([]Result, error) {
	log := d.log.With(zap.String("run_id", uuid.NewString()))
	log.Debug("batch started", zap.Int("records", len(items)), zap.Int("workers", d.workers))

	results := make([]Result, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)
	for i := range items {
		i := i
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = d.evaluate(log, items[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := Summarize(results)
	log.Info("batch finished",
		zap.Int("records", len(results)),
		zap.Int("ok", s.OK),
		zap.Int("rejected", s.Rejected),
		zap.Int("invalid", s.Invalid),
		zap.Int("calendar_gap_warnings", s.Warnings),
		zap.Int("total_hours", s.TotalHours),
	)
	return results, nil
}

func (d *Driver) evaluate(log *zap.Logger, in Interval) Result {
	res := Result{ID: in.ID}
	if in.Err != nil {
		res.Err = in.Err
		d.metrics.RecordsTotal.WithLabelValues(metrics.StatusInvalid).Inc()
		log.Warn("record could not be decoded", zap.String("id", in.ID), zap.Error(in.Err))
		return res
	}

	b, err := d.calc.Breakdown(in.Start, in.End)
	if err != nil {
		res.Err = err
		d.metrics.RecordsTotal.WithLabelValues(metrics.StatusRejected).Inc()
		log.Warn("record rejected", zap.String("id", in.ID), zap.Error(err))
		return res
	}
	res.Breakdown = b
	res.Hours = b.Total()

	res.Warnings = d.calc.Gaps(in.Start, in.End)
	for _, w := range res.Warnings {
		d.metrics.CalendarGapWarnings.Inc()
		log.Warn("holiday calendar gap", zap.String("id", in.ID), zap.Stringer("date", w.Date), zap.Error(w))
	}
	if b.EndDayNonBusiness {
		d.metrics.EndDayNonBusiness.Inc()
		log.Debug("interval ends on a non-business day",
			zap.String("id", in.ID),
			zap.Stringer("end_day_policy", d.calc.EndDayPolicy()),
			zap.Int("last_day_hours", b.LastDayHours),
		)
	}

	d.metrics.RecordsTotal.WithLabelValues(metrics.StatusOK).Inc()
	d.metrics.BusinessHours.Observe(float64(res.Hours))
	return res
}

// Summarize counts results by outcome.
func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		s.Warnings += len(r.Warnings)
		switch {
		case r.Err == nil:
			s.OK++
			s.TotalHours += r.Hours
		case errors.Is(r.Err, bizhours.ErrEndBeforeStart):
			s.Rejected++
		default:
			s.Invalid++
		}
	}
	return s
}
