// Package config defines the engine configuration: detection weights and
// thresholds, per-strategy parameters, streaming cadence, and rectification
// limits. Configuration is loaded from a TOML file layered over calibrated
// defaults, so a file only needs to name the values it changes.
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/framescan/framescan/internal/detect"
	"github.com/framescan/framescan/internal/rectify"
	"github.com/framescan/framescan/internal/score"
	"github.com/framescan/framescan/internal/stream"
)

// Config is the full engine configuration.
type Config struct {
	Log       Log       `toml:"log"`
	Detection Detection `toml:"detection"`
	Stream    Stream    `toml:"stream"`
	Rectify   Rectify   `toml:"rectify"`
}

// Log configures the structured logger.
type Log struct {
	// Level is a logrus level name: debug, info, warn, error.
	Level string `toml:"level"`
	// Format is "json" or "text".
	Format string `toml:"format"`
}

// Detection holds the scorer and selector parameters. The defaults are
// empirically calibrated; changing them is a behavioral change that needs
// re-validation against the acceptance scenarios.
type Detection struct {
	Weights    score.Weights         `toml:"weights"`
	Thresholds detect.Thresholds     `toml:"thresholds"`
	Strategies detect.StrategyConfig `toml:"strategies"`
}

// Stream configures the live-overlay monitor. Durations are expressed in
// milliseconds so the file stays plain numbers.
type Stream struct {
	IntervalMS int     `toml:"interval_ms"`
	HideMargin float64 `toml:"hide_margin"`
}

// Monitor converts to the monitor's runtime configuration.
func (s Stream) Monitor() stream.Config {
	return stream.Config{
		Interval:   time.Duration(s.IntervalMS) * time.Millisecond,
		HideMargin: s.HideMargin,
	}
}

// Rectify bounds the rectification path.
type Rectify struct {
	TimeoutMS int    `toml:"timeout_ms"`
	Quality   string `toml:"quality"`
}

// Timeout converts the configured limit to a duration.
func (r Rectify) Timeout() time.Duration {
	return time.Duration(r.TimeoutMS) * time.Millisecond
}

// ResampleQuality maps the configured name onto a resampling filter;
// anything but "fast" means full bilinear quality.
func (r Rectify) ResampleQuality() rectify.Quality {
	if r.Quality == "fast" {
		return rectify.QualityFast
	}
	return rectify.QualityBest
}

// Default returns the calibrated configuration.
func Default() Config {
	streamDefaults := stream.DefaultConfig()
	return Config{
		Log: Log{
			Level:  "info",
			Format: "json",
		},
		Detection: Detection{
			Weights:    score.DefaultWeights(),
			Thresholds: detect.DefaultThresholds(),
			Strategies: detect.DefaultStrategyConfig(),
		},
		Stream: Stream{
			IntervalMS: int(streamDefaults.Interval / time.Millisecond),
			HideMargin: streamDefaults.HideMargin,
		},
		Rectify: Rectify{
			TimeoutMS: int(rectify.DefaultTimeout / time.Millisecond),
			Quality:   "best",
		},
	}
}

// Load reads a TOML file over the defaults. Keys absent from the file keep
// their default values; unknown keys are an error so typos surface early.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("loading config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("loading config %s: unknown key %q", path, undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("loading config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects configurations the engine cannot run with.
func (c Config) Validate() error {
	w := c.Detection.Weights
	for name, v := range map[string]float64{
		"area_ratio":     w.AreaRatio,
		"rectangularity": w.Rectangularity,
		"distribution":   w.Distribution,
		"straightness":   w.Straightness,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("weight %s = %v out of range [0, 1]", name, v)
		}
	}

	t := c.Detection.Thresholds
	if t.Excellent < t.Good {
		return fmt.Errorf("threshold excellent (%v) below good (%v)", t.Excellent, t.Good)
	}
	if t.Good < 0 || t.Excellent > 1 {
		return fmt.Errorf("thresholds %v/%v out of range [0, 1]", t.Good, t.Excellent)
	}

	if c.Stream.IntervalMS <= 0 {
		return fmt.Errorf("stream interval_ms must be positive, got %d", c.Stream.IntervalMS)
	}
	if c.Rectify.TimeoutMS <= 0 {
		return fmt.Errorf("rectify timeout_ms must be positive, got %d", c.Rectify.TimeoutMS)
	}
	return nil
}
