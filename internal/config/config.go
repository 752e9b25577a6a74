package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"

	"bizhours-exporter/internal/bizhours"
)

type Deadline struct {
	Response string `yaml:"response"`
	Resolve  string `yaml:"resolve"`
}

type Config struct {
	WorkHours struct {
		Start int `yaml:"start"`
		End   int `yaml:"end"`
	} `yaml:"work_hours"`
	EndDayPolicy     string   `yaml:"end_day_policy" validate:"omitempty,oneof=elapsed business_only"`
	Holidays         []string `yaml:"holidays"`
	HolidaysFile     string   `yaml:"holidays_file"`
	HolidaysFromITop bool     `yaml:"holidays_from_itop"`
	HolidayCoverage  struct {
		From string `yaml:"from"`
		To   string `yaml:"to" validate:"required_with=From"`
	} `yaml:"holiday_coverage"`
	SLADeadlines map[string]map[string]Deadline `yaml:"sla_deadlines"`
	Batch        Batch                          `yaml:"batch"`
	Exporter     Exporter                       `yaml:"exporter"`
	Log          Log                            `yaml:"log"`
}

type Batch struct {
	Workers      int    `yaml:"workers" validate:"gte=1,lte=1024"`
	IDColumn     string `yaml:"id_column" validate:"required"`
	StartColumn  string `yaml:"start_column" validate:"required,nefield=EndColumn"`
	EndColumn    string `yaml:"end_column" validate:"required"`
	OutputColumn string `yaml:"output_column" validate:"required"`
	ErrorColumn  string `yaml:"error_column" validate:"required"`
	// Location for timestamps without a zone, e.g. "Asia/Jakarta".
	Location     string `yaml:"location"`
}

type Exporter struct {
	Listen             string        `yaml:"listen" validate:"required"`
	Interval           time.Duration `yaml:"interval" validate:"gte=1s"`
	InsecureSkipVerify bool          `yaml:"insecure_skip_verify"`
}

type Log struct {
	Level       string `yaml:"level" validate:"oneof=debug info warn error"`
	Encoding    string `yaml:"encoding" validate:"oneof=json console"`
	Development bool   `yaml:"development"`
}

// Load reads, defaults and validates the YAML config at path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg := &Config{}
	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Batch.Workers == 0 {
		c.Batch.Workers = runtime.NumCPU()
	}
	setDefault(&c.Batch.IDColumn, "id")
	setDefault(&c.Batch.StartColumn, "start")
	setDefault(&c.Batch.EndColumn, "end")
	setDefault(&c.Batch.OutputColumn, "business_hours")
	setDefault(&c.Batch.ErrorColumn, "error")
	setDefault(&c.Exporter.Listen, ":9100")
	if c.Exporter.Interval == 0 {
		c.Exporter.Interval = 10 * time.Second
	}
	setDefault(&c.Log.Level, "info")
	setDefault(&c.Log.Encoding, "json")
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

// Validate checks the business window first so a bad window surfaces as a
// *bizhours.ConfigError, then the remaining fields.
func (c *Config) Validate() error {
	if _, err := c.Window(); err != nil {
		return err
	}
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return errors.New("invalid config: " + formatValidationErrors(verrs))
		}
		return err
	}
	if c.HolidayCoverage.From != "" {
		from, err := bizhours.ParseDate(c.HolidayCoverage.From)
		if err != nil {
			return fmt.Errorf("invalid config: holiday_coverage.from: %w", err)
		}
		to, err := bizhours.ParseDate(c.HolidayCoverage.To)
		if err != nil {
			return fmt.Errorf("invalid config: holiday_coverage.to: %w", err)
		}
		if to.Before(from) {
			return errors.New("invalid config: holiday_coverage ends before it starts")
		}
	}
	if c.Batch.Location != "" {
		if _, err := time.LoadLocation(c.Batch.Location); err != nil {
			return fmt.Errorf("invalid config: batch.location: %w", err)
		}
	}
	for class, byPriority := range c.SLADeadlines {
		for priority, d := range byPriority {
			if _, _, err := d.parse(); err != nil {
				return fmt.Errorf("invalid config: sla_deadlines.%s.%s: %w", class, priority, err)
			}
		}
	}
	return nil
}

func formatValidationErrors(verrs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", field, fe.Tag(), fe.Param()))
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s failed %s", field, fe.Tag()))
	}
	return strings.Join(msgs, ", ")
}

func (c *Config) Window() (bizhours.Window, error) {
	return bizhours.NewWindow(c.WorkHours.Start, c.WorkHours.End)
}

// LoadHolidays returns the inline holidays followed by the holidays file entries.
func (c *Config) LoadHolidays() ([]string, error) {
	holidays := append([]string(nil), c.Holidays...)
	if c.HolidaysFile == "" {
		return holidays, nil
	}
	fromFile, err := LoadHolidaysFromFile(c.HolidaysFile)
	if err != nil {
		return nil, fmt.Errorf("holidays file: %w", err)
	}
	return append(holidays, fromFile...), nil
}

// Calculator builds the shared calculator from the window, the given
// holiday dates and the coverage and end-day settings.
func (c *Config) Calculator(holidays []string) (*bizhours.Calculator, error) {
	window, err := c.Window()
	if err != nil {
		return nil, err
	}
	set, err := bizhours.ParseHolidays(holidays)
	if err != nil {
		return nil, err
	}
	if c.HolidayCoverage.From != "" {
		from, _ := bizhours.ParseDate(c.HolidayCoverage.From)
		to, _ := bizhours.ParseDate(c.HolidayCoverage.To)
		set = set.WithCoverage(from, to)
	}
	policy, err := bizhours.ParseEndDayPolicy(c.EndDayPolicy)
	if err != nil {
		return nil, err
	}
	return bizhours.NewCalculator(window, set, bizhours.WithEndDayPolicy(policy))
}

// BatchLocation returns the configured location for zone-less timestamps.
func (c *Config) BatchLocation() *time.Location {
	if c.Batch.Location == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Batch.Location)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Deadline returns the response and resolve deadlines for a ticket class
// and lower-cased priority label. ok is false when none is configured.
func (c *Config) Deadline(class, priority string) (response, resolve time.Duration, ok bool) {
	d, found := c.SLADeadlines[class][strings.ToLower(priority)]
	if !found {
		return 0, 0, false
	}
	response, resolve, err := d.parse()
	if err != nil {
		return 0, 0, false
	}
	return response, resolve, true
}

func (d Deadline) parse() (response, resolve time.Duration, err error) {
	if d.Response != "" {
		if response, err = time.ParseDuration(d.Response); err != nil {
			return 0, 0, err
		}
	}
	if d.Resolve != "" {
		if resolve, err = time.ParseDuration(d.Resolve); err != nil {
			return 0, 0, err
		}
	}
	return response, resolve, nil
}
