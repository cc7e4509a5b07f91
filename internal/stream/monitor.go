package stream

import (
	"context"
	"image"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/framescan/framescan/internal/detect"
)

// Orientation is one of the two guide targets shown to the user.
type Orientation int

const (
	Portrait Orientation = iota
	Landscape
)

// String returns the orientation name for logs.
func (o Orientation) String() string {
	if o == Landscape {
		return "landscape"
	}
	return "portrait"
}

// hint maps the orientation onto the detector's expected aspect ratio band.
func (o Orientation) hint() detect.Hint {
	if o == Landscape {
		return detect.HintLandscape
	}
	return detect.HintPortrait
}

// other returns the opposite orientation.
func (o Orientation) other() Orientation {
	if o == Landscape {
		return Portrait
	}
	return Landscape
}

// State is one orientation's detection status. Each processed frame replaces
// the state wholesale; there is no smoothing across ticks.
type State struct {
	Detected      bool      `json:"detected"`
	Confidence    float64   `json:"confidence"`
	LastDetection time.Time `json:"last_detection"`
}

// Config tunes the monitor's cadence and guide-hiding behavior.
type Config struct {
	// Interval is the minimum time between detection passes. Frames arriving
	// faster than this are coalesced into the latest-frame slot.
	Interval time.Duration `toml:"interval"`

	// HideMargin is how much higher the opposite orientation's confidence
	// must be before this orientation's guide is hidden. The margin keeps the
	// guide from flickering when both orientations score similarly.
	HideMargin float64 `toml:"hide_margin"`
}

// DefaultConfig returns the calibrated streaming parameters.
func DefaultConfig() Config {
	return Config{
		Interval:   250 * time.Millisecond,
		HideMargin: 0.15,
	}
}

// boundaryDetector runs one detection pass. *detect.Selector satisfies it;
// tests substitute fixtures.
type boundaryDetector interface {
	Detect(img image.Image, hint detect.Hint) detect.Result
}

// Monitor is one streaming detection session. A Monitor is owned by exactly
// one capture session; two sessions must never share a Monitor or its state.
type Monitor struct {
	detector boundaryDetector
	cfg      Config
	log      logrus.FieldLogger

	// frames is the single-slot latest-frame queue.
	frames chan image.Image

	mu     sync.Mutex
	states [2]State

	stop chan struct{}
	wg   sync.WaitGroup
}

// NewMonitor creates a stopped monitor over the given detector. A nil logger
// discards.
func NewMonitor(detector boundaryDetector, cfg Config, log logrus.FieldLogger) *Monitor {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	if cfg.HideMargin <= 0 {
		cfg.HideMargin = DefaultConfig().HideMargin
	}
	return &Monitor{
		detector: detector,
		cfg:      cfg,
		log:      log,
		frames:   make(chan image.Image, 1),
	}
}

// Submit hands the monitor a new frame. The slot keeps only the most recent
// frame: under load older unprocessed frames are dropped, never queued.
// Submit never blocks.
func (m *Monitor) Submit(frame image.Image) {
	for {
		select {
		case m.frames <- frame:
			return
		default:
		}
		// Slot full: evict the stale frame and retry.
		select {
		case <-m.frames:
		default:
		}
	}
}

// Start launches the tick loop. The loop runs until Stop is called or ctx is
// canceled; stopping resets both orientation states.
func (m *Monitor) Start(ctx context.Context) {
	m.stop = make(chan struct{})
	m.wg.Add(1)
	go m.run(ctx)
}

// Stop halts the tick loop, waits for any in-flight pass, and resets state.
func (m *Monitor) Stop() {
	if m.stop == nil {
		return
	}
	close(m.stop)
	m.wg.Wait()
	m.stop = nil

	m.mu.Lock()
	m.states = [2]State{}
	m.mu.Unlock()
}

func (m *Monitor) run(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.stop:
			return
		case <-ticker.C:
			select {
			case frame := <-m.frames:
				m.ProcessFrame(frame)
			default:
				// No new frame since the last tick.
			}
		}
	}
}

// ProcessFrame runs one detection pass per orientation and replaces both
// states. The tick loop calls it on cadence; callers without a continuous
// feed may invoke it directly for a one-shot evaluation. Only one pass may
// be in flight at a time.
func (m *Monitor) ProcessFrame(frame image.Image) {
	var next [2]State
	for _, o := range []Orientation{Portrait, Landscape} {
		r := m.detector.Detect(frame, o.hint())
		next[o] = State{
			Detected:   r.Quad != nil,
			Confidence: r.Confidence,
		}
		if r.Quad != nil {
			next[o].LastDetection = time.Now()
		}
		m.log.WithFields(logrus.Fields{
			"orientation": o.String(),
			"detected":    next[o].Detected,
			"confidence":  next[o].Confidence,
			"strategy":    r.Strategy,
		}).Debug("frame processed")
	}

	m.mu.Lock()
	for _, o := range []Orientation{Portrait, Landscape} {
		prev := m.states[o]
		m.states[o] = next[o]
		// A frame with no detection keeps the last detection timestamp so
		// callers can measure staleness.
		if !next[o].Detected {
			m.states[o].LastDetection = prev.LastDetection
		}
	}
	m.mu.Unlock()
}

// State returns a copy of the given orientation's current state.
func (m *Monitor) State(o Orientation) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.states[o]
}

// ShouldHideGuide reports whether the on-screen guide for the given
// orientation should fade out: true when the opposite orientation is
// currently detected with confidence higher by at least the configured
// margin. Showing both guides while one orientation clearly wins confuses
// the user into reframing a print that is already aligned.
func (m *Monitor) ShouldHideGuide(o Orientation) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	this := m.states[o]
	opposite := m.states[o.other()]
	return opposite.Detected && opposite.Confidence >= this.Confidence+m.cfg.HideMargin
}
