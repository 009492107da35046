package rain

import (
	"errors"
	"time"

	"punk_dash/internal/gfx"
)

// ParticleParams configures the free-falling particle rain.
type ParticleParams struct {
	Initial    int           // Particles created on the first resize
	Max        int           // No spawn while this many are alive
	SpawnEvery time.Duration // One new particle per interval
	FontMin    float64
	FontSpan   float64
	GreenMin   int
	GreenSpan  int
	AlphaMin   float64
	AlphaSpan  float64
	FallMin    time.Duration // Time to cross the screen
	FallSpan   time.Duration
	LifeMin    time.Duration // Time until removal, independent of the fall
	LifeSpan   time.Duration
	StartY     float64 // Pixels; negative starts above the top edge
	EndY       float64 // Fraction of the surface height
}

// DefaultParticleParams returns the page's particle settings.
func DefaultParticleParams() ParticleParams {
	return ParticleParams{
		Initial:    100,
		Max:        300,
		SpawnEvery: 500 * time.Millisecond,
		FontMin:    12,
		FontSpan:   18,
		GreenMin:   150,
		GreenSpan:  105,
		AlphaMin:   0.3,
		AlphaSpan:  0.7,
		FallMin:    3 * time.Second,
		FallSpan:   7 * time.Second,
		LifeMin:    3 * time.Second,
		LifeSpan:   7 * time.Second,
		StartY:     -20,
		EndY:       1.05,
	}
}

// Particle is one glyph falling on its own schedule.
type Particle struct {
	XFrac    float64 // Horizontal position as a fraction of the width
	FontSize float64
	Glyph    rune
	Color    gfx.RGBA
	Born     time.Time
	Fall     time.Duration
	Life     time.Duration
}

// y returns the particle's baseline at now for a surface of the given height.
func (p *Particle) y(now time.Time, height int, params ParticleParams) float64 {
	progress := 1.0
	if p.Fall > 0 {
		progress = min(1, float64(now.Sub(p.Born))/float64(p.Fall))
	}
	end := params.EndY * float64(height)
	return params.StartY + (end-params.StartY)*progress
}

// Particles is the particle variant of the rain. Particles keep their
// relative position across resizes.
type Particles struct {
	surface Surface
	palette Palette
	params  ParticleParams
	random  Rand
	now     func() time.Time

	particles     []Particle
	lastSpawn     time.Time
	seeded        bool
	width, height int
}

// NewParticles creates a particle rain. now defaults to time.Now.
func NewParticles(surface Surface, palette Palette, params ParticleParams, random Rand, now func() time.Time) (*Particles, error) {
	if surface == nil || random == nil {
		return nil, errors.New("particle rain needs a surface and a random source")
	}
	if params.Max <= 0 || params.Initial > params.Max || params.SpawnEvery <= 0 {
		return nil, errors.New("invalid particle limits")
	}
	if now == nil {
		now = time.Now
	}
	return &Particles{
		surface: surface,
		palette: palette,
		params:  params,
		random:  random,
		now:     now,
	}, nil
}

// Resize resizes the surface. The first call seeds the initial particles.
func (p *Particles) Resize(width, height int) {
	p.width, p.height = max(width, 0), max(height, 0)
	p.surface.SetSize(p.width, p.height)
	if p.seeded {
		return
	}
	now := p.now()
	for i := 0; i < p.params.Initial; i++ {
		p.spawn(now)
	}
	p.lastSpawn = now
	p.seeded = true
}

// Tick removes expired particles, spawns due ones and redraws the surface.
// It does nothing before the first Resize.
func (p *Particles) Tick() {
	if !p.seeded {
		return
	}
	now := p.now()

	alive := p.particles[:0]
	for _, pt := range p.particles {
		if now.Sub(pt.Born) < pt.Life {
			alive = append(alive, pt)
		}
	}
	p.particles = alive

	for now.Sub(p.lastSpawn) >= p.params.SpawnEvery {
		p.lastSpawn = p.lastSpawn.Add(p.params.SpawnEvery)
		if len(p.particles) < p.params.Max {
			p.spawn(p.lastSpawn)
		}
	}

	p.surface.Clear()
	for i := range p.particles {
		pt := &p.particles[i]
		x := pt.XFrac * float64(p.width)
		p.surface.FillText(pt.Glyph, x, pt.y(now, p.height, p.params), pt.FontSize, pt.Color)
	}
}

// Len returns the number of live particles.
func (p *Particles) Len() int {
	return len(p.particles)
}

func (p *Particles) spawn(at time.Time) {
	green := uint8(p.params.GreenMin + p.random.Intn(p.params.GreenSpan))
	p.particles = append(p.particles, Particle{
		Glyph:    p.palette.DrawGlyph(p.random),
		XFrac:    p.random.Float64(),
		FontSize: p.params.FontMin + p.random.Float64()*p.params.FontSpan,
		Color:    gfx.Color{G: green}.Alpha(p.params.AlphaMin + p.random.Float64()*p.params.AlphaSpan),
		Born:     at,
		Fall:     p.params.FallMin + time.Duration(p.random.Float64()*float64(p.params.FallSpan)),
		Life:     p.params.LifeMin + time.Duration(p.random.Float64()*float64(p.params.LifeSpan)),
	})
}

// SetPalette switches the glyph sets used by newly spawned particles.
func (p *Particles) SetPalette(palette Palette) {
	p.palette = palette
}
