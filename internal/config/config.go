package config

import (
	"fmt"
	"image/color"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"

	"salaryviz/internal/engine"
	"salaryviz/internal/models"
	"salaryviz/internal/scale"
	"salaryviz/internal/view"
)

// Config is the server configuration, read from SALARYVIZ_* variables.
type Config struct {
	Addr     string     `env:"ADDR" envDefault:":8080"`
	DataPath string     `env:"DATA" envDefault:"data/ds_salaries.csv"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`

	// RateLimit is requests per second per client IP. Zero disables it.
	RateLimit float64 `env:"RATE_LIMIT" envDefault:"50"`

	MinCount   int     `env:"MIN_COUNT" envDefault:"10"`
	TopN       int     `env:"TOP_N" envDefault:"15"`
	Employment string  `env:"EMPLOYMENT_TYPE" envDefault:"FT"`
	ZoomMin    float64 `env:"ZOOM_MIN" envDefault:"1"`
	ZoomMax    float64 `env:"ZOOM_MAX" envDefault:"8"`

	ViewWidth  float64 `env:"VIEW_WIDTH" envDefault:"960"`
	ViewHeight float64 `env:"VIEW_HEIGHT" envDefault:"500"`

	// RemoteColors are the scatter colors at 0%, 50% and 100% remote.
	RemoteColors []string `env:"REMOTE_COLORS" envSeparator:"," envDefault:"#e41a1c,#377eb8,#4daf4a"`
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "SALARYVIZ_"}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.ZoomMin <= 0 || cfg.ZoomMax < cfg.ZoomMin {
		return Config{}, fmt.Errorf("zoom bounds [%g, %g] are invalid", cfg.ZoomMin, cfg.ZoomMax)
	}
	if _, err := cfg.RemoteColor(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// RemoteColor returns the remote-ratio color scale built from
// RemoteColors.
func (c Config) RemoteColor() (scale.Color, error) {
	anchors := make([]color.RGBA, len(c.RemoteColors))
	for i, s := range c.RemoteColors {
		a, err := scale.ParseHex(strings.TrimSpace(s))
		if err != nil {
			return scale.Color{}, fmt.Errorf("remote colors: %w", err)
		}
		anchors[i] = a
	}
	col, err := scale.NewColor(models.RemoteRatio, scale.RemoteStops, anchors)
	if err != nil {
		return scale.Color{}, fmt.Errorf("remote colors: %w", err)
	}
	return col, nil
}

// Scatter returns the scatter view with the configured zoom bounds and
// colors.
func (c Config) Scatter() (*view.Scatter, error) {
	col, err := c.RemoteColor()
	if err != nil {
		return nil, err
	}
	v := view.NewScatter(c.ZoomMin, c.ZoomMax)
	v.Color = col
	return v, nil
}

// Aggregate returns the overview's aggregation thresholds.
func (c Config) Aggregate() engine.AggregateOptions {
	return engine.AggregateOptions{MinCount: c.MinCount, TopN: c.TopN}
}

// Coordinator returns the coordinator configuration.
func (c Config) Coordinator(logger *slog.Logger) view.Config {
	return view.Config{
		Employment:  c.Employment,
		Margin:      view.DefaultMargin,
		DefaultSize: models.Size{Width: c.ViewWidth, Height: c.ViewHeight},
		Logger:      logger,
	}
}
