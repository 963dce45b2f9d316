package main

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/example/study-planner/internal/application"
	"github.com/example/study-planner/internal/config"
	"github.com/example/study-planner/internal/ics"
	"github.com/example/study-planner/internal/logging"
	"github.com/example/study-planner/internal/metrics"
	"github.com/example/study-planner/internal/records"
)

var errNoRecords = errors.New("no record sources configured: set records.path, records.ics or --records")

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath  string
	recordsPath string
	output      string
	now         string
}

// runtime is what a subcommand needs once config has been resolved.
type runtime struct {
	cfg      config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	service  *application.PlannerService
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}
	var rt *runtime

	root := &cobra.Command{
		Use:           "planner",
		Short:         "Weekly schedule engine for an academic planner",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.output != "text" && opts.output != "json" {
				return fmt.Errorf("unknown output %q: use text or json", opts.output)
			}
			var err error
			rt, err = setup(cmd, opts)
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if rt == nil || rt.cfg.Metrics.Textfile == "" {
				return nil
			}
			if err := prometheus.WriteToTextfile(rt.cfg.Metrics.Textfile, rt.registry); err != nil {
				return fmt.Errorf("write metrics textfile: %w", err)
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "configuration file (YAML or JSON)")
	flags.StringVarP(&opts.recordsPath, "records", "r", "", "records snapshot file, overrides records.path")
	flags.StringVarP(&opts.output, "output", "o", "text", "output format: text or json")
	flags.StringVar(&opts.now, "now", "", "evaluate as of this RFC3339 instant instead of the current time")

	current := func() *runtime { return rt }
	root.AddCommand(
		newServeCommand(current),
		newDayCommand(current, opts),
		newWeekCommand(current, opts),
		newUrgentCommand(current, opts),
		newSearchCommand(current, opts),
	)
	return root
}

func setup(cmd *cobra.Command, opts *globalOptions) (*runtime, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.recordsPath != "" {
		cfg.Records.Path = opts.recordsPath
	}

	logger, err := logging.New(cfg.Logging.Level, logging.Format(cfg.Logging.Format), cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}
	window, err := cfg.Window()
	if err != nil {
		return nil, err
	}
	clock, err := parseClock(opts.now)
	if err != nil {
		return nil, err
	}
	source, err := buildSource(cfg, loc, logger)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	recorder, err := metrics.NewRecorder(registry)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	service := application.NewPlannerService(source,
		application.WithWindow(window),
		application.WithFirstWeekday(cfg.FirstWeekday()),
		application.WithLocation(loc),
		application.WithWorkers(cfg.Workers),
		application.WithLogger(logger),
		application.WithMetrics(recorder),
		application.WithClock(clock),
	)
	cmd.SetContext(logging.ContextWithLogger(cmd.Context(), logger))

	return &runtime{cfg: cfg, logger: logger, registry: registry, service: service}, nil
}

func parseClock(value string) (func() time.Time, error) {
	if value == "" {
		return time.Now, nil
	}
	pinned, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("invalid --now %q: %w", value, err)
	}
	return func() time.Time { return pinned }, nil
}

// buildSource combines the snapshot file with the personal and holiday
// calendars. Snapshot flags stay visible through records.Multi.
func buildSource(cfg config.Config, loc *time.Location, logger *slog.Logger) (records.Multi, error) {
	var sources records.Multi
	if cfg.Records.Path != "" {
		sources = append(sources, records.NewFileSource(cfg.Records.Path, loc, logger))
	}
	if len(cfg.Records.ICS) > 0 {
		sources = append(sources, ics.NewSource(cfg.Records.ICS, ics.Options{Location: loc}, logger))
	}
	if len(cfg.Records.HolidayICS) > 0 {
		sources = append(sources, ics.NewSource(cfg.Records.HolidayICS, ics.Options{
			Holidays:    true,
			CountryCode: cfg.Records.CountryCode,
			Location:    loc,
		}, logger))
	}
	if len(sources) == 0 {
		return nil, errNoRecords
	}
	return sources, nil
}
