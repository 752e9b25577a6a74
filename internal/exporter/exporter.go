package exporter

import (
	"context"
	"time"

	"go.uber.org/zap"

	"bizhours-exporter/internal/batch"
	"bizhours-exporter/internal/itop"
	"bizhours-exporter/internal/metrics"
)

const (
	slaTypeRaw          = "raw"
	slaTypeBusinessHour = "business-hour"
	metricResponse      = "response"
	metricResolve       = "resolve"
)

type TicketSource interface {
	FetchTickets(ctx context.Context, loc *time.Location) ([]itop.Ticket, error)
}

// Deadlines resolves SLA deadlines for a ticket class and priority label.
type Deadlines interface {
	Deadline(class, priority string) (response, resolve time.Duration, ok bool)
}

type Exporter struct {
	source    TicketSource
	driver    *batch.Driver
	metrics   *metrics.Metrics
	deadlines Deadlines
	loc       *time.Location
	log       *zap.Logger
}

func New(source TicketSource, driver *batch.Driver, m *metrics.Metrics, deadlines Deadlines, loc *time.Location, log *zap.Logger) *Exporter {
	if loc == nil {
		loc = time.UTC
	}
	return &Exporter{source: source, driver: driver, metrics: m, deadlines: deadlines, loc: loc, log: log}
}

// Run updates the metrics immediately and then on every tick until ctx ends.
func (e *Exporter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := e.Update(ctx); err != nil && ctx.Err() == nil {
			e.log.Error("error updating metrics", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

type measurement struct {
	hours    int
	measured bool
}

type slot struct {
	ticket int
	metric string
}

// Update fetches tickets and refreshes the ticket and SLA compliance gauges.
func (e *Exporter) Update(ctx context.Context) error {
	tickets, err := e.source.FetchTickets(ctx, e.loc)
	if err != nil {
		return err
	}

	var (
		items []batch.Interval
		slots []slot
	)
	for i, t := range tickets {
		if !t.StartDate.IsZero() && !t.AssignmentDate.IsZero() {
			items = append(items, batch.Interval{ID: t.Ref + "/" + metricResponse, Start: t.StartDate, End: t.AssignmentDate})
			slots = append(slots, slot{ticket: i, metric: metricResponse})
		}
		if !t.StartDate.IsZero() && !t.ResolutionDate.IsZero() {
			items = append(items, batch.Interval{ID: t.Ref + "/" + metricResolve, Start: t.StartDate, End: t.ResolutionDate})
			slots = append(slots, slot{ticket: i, metric: metricResolve})
		}
	}

	results, err := e.driver.Run(ctx, items)
	if err != nil {
		return err
	}
	business := make([]map[string]measurement, len(tickets))
	for i, r := range results {
		s := slots[i]
		if business[s.ticket] == nil {
			business[s.ticket] = make(map[string]measurement, 2)
		}
		business[s.ticket][s.metric] = measurement{hours: r.Hours, measured: r.Err == nil}
	}

	e.metrics.TicketCount.Reset()
	e.metrics.TicketSLACompliance.Reset()
	for i, t := range tickets {
		prio := levelLabel(t.Priority)
		urg := levelLabel(t.Urgency)
		e.metrics.TicketCount.WithLabelValues(
			t.Status, t.Class, t.Service, t.ServiceSubcategory, t.Team, t.Agent, prio, urg,
		).Inc()

		responseDeadline, resolveDeadline, ok := e.deadlines.Deadline(t.Class, prio)
		if !ok {
			continue
		}

		tto, ttr := t.TimeToOwn(), t.TimeToResolve()
		e.observe(t, prio, urg, slaTypeRaw, metricResponse, !t.AssignmentDate.IsZero() && tto >= 0, tto, responseDeadline)
		e.observe(t, prio, urg, slaTypeRaw, metricResolve, !t.ResolutionDate.IsZero() && ttr >= 0, ttr, resolveDeadline)

		bhResponse := business[i][metricResponse]
		bhResolve := business[i][metricResolve]
		e.observe(t, prio, urg, slaTypeBusinessHour, metricResponse, bhResponse.measured, time.Duration(bhResponse.hours)*time.Hour, responseDeadline)
		e.observe(t, prio, urg, slaTypeBusinessHour, metricResolve, bhResolve.measured, time.Duration(bhResolve.hours)*time.Hour, resolveDeadline)
	}
	e.log.Info("metrics updated", zap.Int("tickets", len(tickets)), zap.Int("intervals", len(items)))
	return nil
}

// observe adds one comply or violate sample. Unmeasured values and metrics
// without a deadline are skipped.
func (e *Exporter) observe(t itop.Ticket, prio, urg, slaType, metric string, measured bool, value, deadline time.Duration) {
	if !measured || deadline <= 0 {
		return
	}
	comply := 0.0
	if value <= deadline {
		comply = 1.0
	}
	e.metrics.TicketSLACompliance.WithLabelValues(t.Class, prio, urg, slaType, metric, "comply").Add(comply)
	e.metrics.TicketSLACompliance.WithLabelValues(t.Class, prio, urg, slaType, metric, "violate").Add(1.0 - comply)
}
