package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Record statuses for RecordsTotal.
const (
	StatusOK       = "ok"
	StatusRejected = "rejected"
	StatusInvalid  = "invalid"
)

type Metrics struct {
	RecordsTotal        *prometheus.CounterVec
	CalendarGapWarnings prometheus.Counter
	EndDayNonBusiness   prometheus.Counter
	BusinessHours       prometheus.Histogram
	TicketCount         *prometheus.GaugeVec
	TicketSLACompliance *prometheus.GaugeVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RecordsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bizhours_records_total",
				Help: "Number of intervals evaluated by status (ok, rejected, invalid).",
			},
			[]string{"status"},
		),
		CalendarGapWarnings: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "bizhours_calendar_gap_warnings_total",
				Help: "Interval endpoints outside the holiday calendar coverage.",
			},
		),
		EndDayNonBusiness: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "bizhours_end_day_non_business_total",
				Help: "Multi-day intervals ending on a weekend or holiday.",
			},
		),
		BusinessHours: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "bizhours_business_hours",
				Help:    "Business hours per evaluated interval.",
				Buckets: []float64{1, 2, 4, 8, 16, 24, 40, 80, 160},
			},
		),
		TicketCount: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "itop_ticket_count",
				Help: "Number of tickets by status, class, service, service_subcategory, team, agent, priority, urgency.",
			},
			[]string{"status", "class", "service", "service_subcategory", "team", "agent", "priority", "urgency"},
		),
		TicketSLACompliance: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "itop_ticket_sla_compliance",
				Help: "SLA compliance by class, priority, urgency, sla_type, sla_metric, status.",
			},
			[]string{"class", "priority", "urgency", "sla_type", "sla_metric", "status"},
		),
	}
	reg.MustRegister(
		m.RecordsTotal,
		m.CalendarGapWarnings,
		m.EndDayNonBusiness,
		m.BusinessHours,
		m.TicketCount,
		m.TicketSLACompliance,
	)
	return m
}
