package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizhours-exporter/internal/bizhours"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeFile(t, "config.yaml", `
work_hours:
  start: 8
  end: 16
holidays:
  - "2024-12-25"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.WorkHours.Start)
	assert.Equal(t, "id", cfg.Batch.IDColumn)
	assert.Equal(t, "start", cfg.Batch.StartColumn)
	assert.Equal(t, "end", cfg.Batch.EndColumn)
	assert.Equal(t, "business_hours", cfg.Batch.OutputColumn)
	assert.Equal(t, ":9100", cfg.Exporter.Listen)
	assert.Equal(t, 10*time.Second, cfg.Exporter.Interval)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, time.UTC, cfg.BatchLocation())
	assert.GreaterOrEqual(t, cfg.Batch.Workers, 1)
}

func TestLoadRejectsInvalidWindow(t *testing.T) {
	path := writeFile(t, "config.yaml", `
work_hours:
  start: 17
  end: 9
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, bizhours.ErrInvalidWindow))
}

func TestLoadRejectsInvalidFields(t *testing.T) {
	tests := map[string]string{
		"policy": `
work_hours: {start: 9, end: 17}
end_day_policy: sometimes
`,
		"log level": `
work_hours: {start: 9, end: 17}
log: {level: loud}
`,
		"same columns": `
work_hours: {start: 9, end: 17}
batch: {start_column: ts, end_column: ts}
`,
		"coverage without end": `
work_hours: {start: 9, end: 17}
holiday_coverage: {from: "2024-01-01"}
`,
		"coverage reversed": `
work_hours: {start: 9, end: 17}
holiday_coverage: {from: "2025-01-01", to: "2024-01-01"}
`,
		"deadline": `
work_hours: {start: 9, end: 17}
sla_deadlines:
  Incident:
    high: {response: soon}
`,
		"location": `
work_hours: {start: 9, end: 17}
batch: {location: Mars/Olympus}
`,
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, "config.yaml", content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid config")
		})
	}
}

func TestCalculatorFromConfig(t *testing.T) {
	holidaysPath := writeFile(t, "holidays.txt", "# national\n2024-07-03\n\n")
	path := writeFile(t, "config.yaml", `
work_hours: {start: 9, end: 17}
end_day_policy: elapsed
holidays: ["2024-12-25"]
holidays_file: `+holidaysPath+`
holiday_coverage: {from: "2024-06-01", to: "2024-12-31"}
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	holidays, err := cfg.LoadHolidays()
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-12-25", "2024-07-03"}, holidays)

	calc, err := cfg.Calculator(holidays)
	require.NoError(t, err)
	assert.Equal(t, bizhours.EndDayElapsed, calc.EndDayPolicy())
	assert.False(t, calc.IsBusinessDay(bizhours.Date{Year: 2024, Month: time.July, Day: 3}))
	assert.True(t, calc.Holidays().Covers(bizhours.Date{Year: 2024, Month: time.June, Day: 1}))
	assert.False(t, calc.Holidays().Covers(bizhours.Date{Year: 2024, Month: time.May, Day: 31}))

	got, err := calc.Hours(
		time.Date(2024, time.July, 2, 15, 0, 0, 0, time.UTC),
		time.Date(2024, time.July, 4, 10, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	assert.Equal(t, 3, got)
}

func TestCalculatorRejectsBadHoliday(t *testing.T) {
	cfg, err := Load(writeFile(t, "config.yaml", "work_hours: {start: 9, end: 17}\n"))
	require.NoError(t, err)

	_, err = cfg.Calculator([]string{"2024-02-30"})
	assert.Error(t, err)
}

func TestLoadHolidaysMissingFile(t *testing.T) {
	cfg := &Config{HolidaysFile: filepath.Join(t.TempDir(), "missing.txt")}
	_, err := cfg.LoadHolidays()
	assert.Error(t, err)
}

func TestDeadline(t *testing.T) {
	path := writeFile(t, "config.yaml", `
work_hours: {start: 9, end: 17}
sla_deadlines:
  Incident:
    critical: {response: 1h, resolve: 4h}
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	response, resolve, ok := cfg.Deadline("Incident", "Critical")
	require.True(t, ok)
	assert.Equal(t, time.Hour, response)
	assert.Equal(t, 4*time.Hour, resolve)

	_, _, ok = cfg.Deadline("UserRequest", "Critical")
	assert.False(t, ok)
}

func TestGetEnv(t *testing.T) {
	t.Setenv("BIZHOURS_TEST_INT", "42")
	t.Setenv("BIZHOURS_TEST_BAD_INT", "forty-two")
	t.Setenv("BIZHOURS_TEST_BOOL", "true")
	t.Setenv("BIZHOURS_TEST_DURATION", "90s")

	assert.Equal(t, 42, GetEnvInt("BIZHOURS_TEST_INT", 1))
	assert.Equal(t, 1, GetEnvInt("BIZHOURS_TEST_BAD_INT", 1))
	assert.True(t, GetEnvBool("BIZHOURS_TEST_BOOL", false))
	assert.Equal(t, 90*time.Second, GetEnvDuration("BIZHOURS_TEST_DURATION", time.Second))
	assert.Equal(t, "fallback", GetEnvString("BIZHOURS_TEST_UNSET", "fallback"))
}
