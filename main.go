package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"bizhours-exporter/internal/batch"
	"bizhours-exporter/internal/bizhours"
	"bizhours-exporter/internal/config"
	"bizhours-exporter/internal/exporter"
	"bizhours-exporter/internal/itop"
	"bizhours-exporter/internal/logger"
	"bizhours-exporter/internal/metrics"
	"bizhours-exporter/internal/table"
)

type options struct {
	configPath string
	mode       string
	input      string
	output     string
	listen     string
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("bizhours-exporter", flag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", config.GetEnvString("BIZHOURS_CONFIG", "config/business_hours.yaml"), "path to the YAML config")
	fs.StringVar(&opts.mode, "mode", config.GetEnvString("BIZHOURS_MODE", "exporter"), "batch or exporter")
	fs.StringVar(&opts.input, "input", "-", "batch input CSV, - for stdin")
	fs.StringVar(&opts.output, "output", "-", "batch output CSV, - for stdout")
	fs.StringVar(&opts.listen, "listen", "", "exporter listen address, overrides the config")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.mode != "batch" && opts.mode != "exporter" {
		return opts, fmt.Errorf("unknown mode %q", opts.mode)
	}
	return opts, nil
}

func main() {
	_ = godotenv.Load()

	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	l, err := logger.NewZapLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = l.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, cfg, l); err != nil {
		l.Error("exiting", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, cfg *config.Config, l *zap.Logger) error {
	client, clientErr := itop.NewClientFromEnv(cfg.Exporter.InsecureSkipVerify, l.Named("itop"))

	calc, err := buildCalculator(ctx, cfg, client, clientErr, l)
	if err != nil {
		return err
	}
	from, to := calc.Holidays().Coverage()
	l.Info("business calendar ready",
		zap.Stringer("window", calc.Window()),
		zap.Int("holidays", calc.Holidays().Len()),
		zap.Stringer("coverage_from", from),
		zap.Stringer("coverage_to", to),
		zap.Stringer("end_day_policy", calc.EndDayPolicy()),
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)
	driver := batch.New(calc, l.Named("batch"), m, cfg.Batch.Workers)

	if opts.mode == "batch" {
		return runBatch(ctx, opts, cfg, driver, l)
	}
	if clientErr != nil {
		return clientErr
	}
	listen := cfg.Exporter.Listen
	if opts.listen != "" {
		listen = opts.listen
	}
	exp := exporter.New(client, driver, m, cfg, cfg.BatchLocation(), l.Named("exporter"))
	return serve(ctx, listen, cfg.Exporter.Interval, reg, exp, l)
}

// buildCalculator gathers the holiday calendar once and validates the window.
// Any failure here is fatal before a record is processed.
func buildCalculator(ctx context.Context, cfg *config.Config, client *itop.Client, clientErr error, l *zap.Logger) (*bizhours.Calculator, error) {
	holidays, err := cfg.LoadHolidays()
	if err != nil {
		return nil, err
	}
	if cfg.HolidaysFromITop {
		if clientErr != nil {
			return nil, clientErr
		}
		fetchCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		fetched, err := client.FetchHolidays(fetchCtx)
		if err != nil {
			return nil, fmt.Errorf("fetch holidays: %w", err)
		}
		l.Info("loaded holidays from iTop", zap.Int("count", len(fetched)))
		holidays = append(holidays, fetched...)
	}
	return cfg.Calculator(holidays)
}

func runBatch(ctx context.Context, opts options, cfg *config.Config, driver *batch.Driver, l *zap.Logger) error {
	cols := table.Columns{
		ID:       cfg.Batch.IDColumn,
		Start:    cfg.Batch.StartColumn,
		End:      cfg.Batch.EndColumn,
		Output:   cfg.Batch.OutputColumn,
		Error:    cfg.Batch.ErrorColumn,
		Location: cfg.BatchLocation(),
	}

	in, closeIn, err := openInput(opts.input)
	if err != nil {
		return err
	}
	defer closeIn()
	tbl, err := table.Read(in)
	if err != nil {
		return fmt.Errorf("read %s: %w", opts.input, err)
	}
	items, err := tbl.Intervals(cols)
	if err != nil {
		return err
	}

	results, err := driver.Run(ctx, items)
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(opts.output)
	if err != nil {
		return err
	}
	if err := table.Write(out, tbl, results, cols); err != nil {
		closeOut()
		return err
	}
	closeOut()

	s := batch.Summarize(results)
	l.Info("batch written",
		zap.String("output", opts.output),
		zap.Int("ok", s.OK),
		zap.Int("rejected", s.Rejected),
		zap.Int("invalid", s.Invalid),
	)
	return nil
}

func openInput(path string) (io.Reader, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

func serve(ctx context.Context, listen string, interval time.Duration, reg *prometheus.Registry, exp *exporter.Exporter, l *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: listen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go exp.Run(ctx, interval)

	errCh := make(chan error, 1)
	go func() {
		l.Info("exporter running", zap.String("addr", listen), zap.String("path", "/metrics"))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	l.Info("exporter stopped")
	return nil
}
