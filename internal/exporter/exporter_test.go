package exporter

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"bizhours-exporter/internal/batch"
	"bizhours-exporter/internal/bizhours"
	"bizhours-exporter/internal/itop"
	"bizhours-exporter/internal/metrics"
)

type fakeSource struct {
	tickets []itop.Ticket
	err     error
	calls   atomic.Int32
}

func (f *fakeSource) FetchTickets(_ context.Context, _ *time.Location) ([]itop.Ticket, error) {
	f.calls.Add(1)
	return f.tickets, f.err
}

type fakeDeadlines map[string][2]time.Duration

func (f fakeDeadlines) Deadline(class, priority string) (time.Duration, time.Duration, bool) {
	d, ok := f[class+"/"+priority]
	return d[0], d[1], ok
}

func at(day, hour int) time.Time {
	return time.Date(2024, time.July, day, hour, 0, 0, 0, time.UTC)
}

func newExporter(t *testing.T, src TicketSource) (*Exporter, *metrics.Metrics) {
	t.Helper()
	w, err := bizhours.NewWindow(9, 17)
	require.NoError(t, err)
	calc, err := bizhours.NewCalculator(w, bizhours.NewHolidaySet())
	require.NoError(t, err)

	log := zaptest.NewLogger(t)
	m := metrics.New(prometheus.NewRegistry())
	deadlines := fakeDeadlines{"Incident/High": {4 * time.Hour, 8 * time.Hour}}
	return New(src, batch.New(calc, log, m, 2), m, deadlines, time.UTC, log), m
}

func compliance(m *metrics.Metrics, prio, slaType, metric, status string) float64 {
	return testutil.ToFloat64(m.TicketSLACompliance.WithLabelValues("Incident", prio, "Medium", slaType, metric, status))
}

func TestUpdate(t *testing.T) {
	src := &fakeSource{tickets: []itop.Ticket{
		{
			Ref: "I-1", Class: "Incident", Status: "resolved", Priority: "2", Urgency: "3",
			StartDate:      at(5, 16), // Friday
			AssignmentDate: at(8, 10),
			ResolutionDate: at(8, 16),
		},
		{
			Ref: "I-2", Class: "Incident", Status: "assigned", Priority: "1", Urgency: "3",
			StartDate:      at(8, 10),
			AssignmentDate: at(8, 11),
		},
	}}
	e, m := newExporter(t, src)

	require.NoError(t, e.Update(context.Background()))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.TicketCount.WithLabelValues("resolved", "Incident", "", "", "", "", "High", "Medium")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TicketCount.WithLabelValues("assigned", "Incident", "", "", "", "", "Critical", "Medium")))

	assert.Equal(t, 1.0, compliance(m, "High", "raw", "response", "violate"))
	assert.Equal(t, 1.0, compliance(m, "High", "raw", "resolve", "violate"))
	assert.Equal(t, 1.0, compliance(m, "High", "business-hour", "response", "comply"))
	assert.Equal(t, 1.0, compliance(m, "High", "business-hour", "resolve", "comply"))
	assert.Equal(t, 0.0, compliance(m, "High", "business-hour", "resolve", "violate"))

	// Three intervals: I-1 response and resolve, I-2 response.
	assert.Equal(t, 3.0, testutil.ToFloat64(m.RecordsTotal.WithLabelValues(metrics.StatusOK)))
}

func TestUpdateResetsGauges(t *testing.T) {
	src := &fakeSource{tickets: []itop.Ticket{{Ref: "I-1", Class: "Incident", Status: "closed", Priority: "2", Urgency: "3"}}}
	e, m := newExporter(t, src)

	require.NoError(t, e.Update(context.Background()))
	require.NoError(t, e.Update(context.Background()))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.TicketCount.WithLabelValues("closed", "Incident", "", "", "", "", "High", "Medium")))
	assert.Equal(t, 0, testutil.CollectAndCount(m.TicketSLACompliance))
}

func TestUpdateSourceError(t *testing.T) {
	src := &fakeSource{err: errors.New("itop down")}
	e, _ := newExporter(t, src)
	assert.EqualError(t, e.Update(context.Background()), "itop down")
}

func TestRunStopsOnCancel(t *testing.T) {
	src := &fakeSource{}
	e, _ := newExporter(t, src)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		e.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return src.calls.Load() >= 2 }, time.Second, time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestLevelLabel(t *testing.T) {
	assert.Equal(t, "Critical", levelLabel("1"))
	assert.Equal(t, "Low", levelLabel("4"))
	assert.Equal(t, "9", levelLabel("9"))
}
