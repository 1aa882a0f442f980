package ambient

import (
	"math/rand"
	"sync"
	"time"

	"github.com/danielrjepsen/Nory-sub001/internal/domain/event"
	"github.com/danielrjepsen/Nory-sub001/internal/logger"
)

// TickInterval is the animation frame cadence
const TickInterval = 16 * time.Millisecond

// State is a snapshot of the ambient animation
type State struct {
	Enabled bool            `json:"enabled"`
	Time    float64         `json:"time"`
	Waves   [WaveCount]Wave `json:"waves"`
	Colors  Colors          `json:"colors"`
	Palette string          `json:"palette,omitempty"`
}

// Generator advances the wave simulation on a fixed tick while enabled. No
// goroutine runs while it is disabled.
type Generator struct {
	mu       sync.Mutex
	time     float64
	waves    [WaveCount]Wave
	colors   Colors
	palette  string
	interval time.Duration
	rng      *rand.Rand

	stop chan struct{}
	done chan struct{}
}

// NewGenerator creates a disabled generator tinted with the theme colors
func NewGenerator(theme event.Theme) *Generator {
	return &Generator{
		waves:    Compute(0),
		colors:   ThemeColors(theme),
		interval: TickInterval,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetEnabled starts or stops the tick loop. Enabling a running generator is a no-op.
func (g *Generator) SetEnabled(enabled bool) {
	g.mu.Lock()
	running := g.stop != nil

	if enabled == running {
		g.mu.Unlock()
		return
	}

	if enabled {
		g.stop = make(chan struct{})
		g.done = make(chan struct{})
		go g.loop(g.stop, g.done, g.interval)
		g.mu.Unlock()
		logger.Ambient().Debug("Ambient animation started")
		return
	}

	stop, done := g.stop, g.done
	g.stop, g.done = nil, nil
	g.mu.Unlock()

	close(stop)
	<-done
	logger.Ambient().Debug("Ambient animation stopped")
}

// Enabled reports whether the tick loop is running
func (g *Generator) Enabled() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stop != nil
}

func (g *Generator) loop(stop <-chan struct{}, done chan<- struct{}, interval time.Duration) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			g.Step()
		}
	}
}

// Step advances the simulation by one tick
func (g *Generator) Step() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.time += TimeStep
	g.waves = Compute(g.time)
}

// UseTheme tints the waves with the theme triplet and clears any palette override
func (g *Generator) UseTheme(theme event.Theme) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.colors = ThemeColors(theme)
	g.palette = ""
}

// UsePalette overrides the theme colors with a named palette
func (g *Generator) UsePalette(name string) error {
	p, err := PaletteByName(name)
	if err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.colors = p.Colors
	g.palette = p.Name
	return nil
}

// UseRandomPalette overrides the theme colors with a random palette
func (g *Generator) UseRandomPalette() Palette {
	g.mu.Lock()
	defer g.mu.Unlock()
	p := RandomPalette(g.rng)
	g.colors = p.Colors
	g.palette = p.Name
	return p
}

// Snapshot returns the current animation state
func (g *Generator) Snapshot() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return State{
		Enabled: g.stop != nil,
		Time:    g.time,
		Waves:   g.waves,
		Colors:  g.colors,
		Palette: g.palette,
	}
}

// Close stops the tick loop
func (g *Generator) Close() {
	g.SetEnabled(false)
}
