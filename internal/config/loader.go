package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/example/study-planner/internal/scheduler"
	"github.com/example/study-planner/internal/validation"
)

// EnvPrefix prefixes every environment override. Nested keys use a double
// underscore: PLANNER_HTTP__ADDR sets http.addr.
const EnvPrefix = "PLANNER_"

// Config captures file and environment driven settings for the planner.
type Config struct {
	HTTP      HTTPConfig    `koanf:"http"`
	Timezone  string        `koanf:"timezone" validate:"required"`
	WeekStart string        `koanf:"week_start" validate:"oneof=monday sunday"`
	DayWindow WindowConfig  `koanf:"day_window"`
	Records   RecordsConfig `koanf:"records"`
	Logging   LoggingConfig `koanf:"logging"`
	Metrics   MetricsConfig `koanf:"metrics"`
	// Workers caps concurrent day computations in a week; zero means one per day.
	Workers int `koanf:"workers" validate:"gte=0,lte=7"`
}

type HTTPConfig struct {
	Addr            string        `koanf:"addr" validate:"required"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gte=0"`
	// CORSOrigins lists the browser origins allowed to read the API; "*"
	// allows any. Empty disables CORS headers.
	CORSOrigins []string `koanf:"cors_origins"`
}

type WindowConfig struct {
	Start string `koanf:"start" validate:"required"`
	End   string `koanf:"end" validate:"required"`
}

type RecordsConfig struct {
	// Path is the YAML or JSON snapshot file.
	Path string `koanf:"path"`
	// ICS lists calendars of personal items.
	ICS []string `koanf:"ics"`
	// HolidayICS lists calendars whose all-day events are holidays.
	HolidayICS  []string `koanf:"holiday_ics"`
	CountryCode string   `koanf:"country_code" validate:"omitempty,len=2"`
}

type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json text"`
}

type MetricsConfig struct {
	// Textfile, when set, receives a Prometheus text dump after CLI commands.
	Textfile string `koanf:"textfile"`
}

// Default returns the settings used for keys absent from every source.
func Default() Config {
	return Config{
		HTTP:      HTTPConfig{Addr: "127.0.0.1:8080", ShutdownTimeout: 5 * time.Second, CORSOrigins: []string{"*"}},
		Timezone:  "UTC",
		WeekStart: "monday",
		DayWindow: WindowConfig{Start: "00:00", End: "24:00"},
		Logging:   LoggingConfig{Level: "info", Format: "json"},
	}
}

// Load reads path (YAML or JSON; optional when empty), applies PLANNER_
// environment overrides on top, and validates the result.
func Load(path string) (Config, error) {
	k := koanf.New(".")
	if path != "" {
		parser, err := parserFor(path)
		if err != nil {
			return Config{}, err
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return Config{}, fmt.Errorf("config: load %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return Config{}, fmt.Errorf("config: load environment: %w", err)
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	default:
		return nil, fmt.Errorf("config: unsupported format %q", ext)
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks struct tags plus the values that need parsing: the
// timezone and the day window.
func (c Config) Validate() error {
	vErr := &validation.Error{}

	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			vErr.Add(fieldPath(fe), describe(fe))
		}
	}

	if _, err := c.Location(); err != nil && c.Timezone != "" {
		vErr.Add("timezone", fmt.Sprintf("unknown timezone %q", c.Timezone))
	}
	if _, err := c.Window(); err != nil {
		var wErr *validation.Error
		if errors.As(err, &wErr) {
			for field, msg := range wErr.FieldErrors {
				vErr.Add(strings.Replace(field, "window.", "day_window.", 1), msg)
			}
		}
	}
	return vErr.OrNil()
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "len":
		return "must have length " + fe.Param()
	default:
		return "is invalid"
	}
}

// Location resolves Timezone.
func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// FirstWeekday resolves WeekStart.
func (c Config) FirstWeekday() time.Weekday {
	if strings.EqualFold(c.WeekStart, "sunday") {
		return time.Sunday
	}
	return time.Monday
}

// Window resolves DayWindow.
func (c Config) Window() (scheduler.Window, error) {
	return scheduler.ParseWindow(c.DayWindow.Start, c.DayWindow.End)
}
