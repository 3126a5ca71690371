// Package layout is a small velocity-Verlet force simulation for drawing the
// knowledge graph: link springs, many-body repulsion and centering, cooled by
// a decaying alpha.
package layout

import (
	"math"
	"math/rand/v2"
)

// Config holds the simulation parameters.
type Config struct {
	// WarmupTicks run before the first frame is shown.
	WarmupTicks int
	// CooldownTicks bounds the animated ticks after warm-up.
	CooldownTicks int

	AlphaDecay    float64
	AlphaMin      float64
	VelocityDecay float64

	LinkDistance   float64
	ChargeStrength float64
	// ChargeDistanceMin softens repulsion between overlapping nodes.
	ChargeDistanceMin float64

	CenterX float64
	CenterY float64

	// Seed makes the coincident-node jitter reproducible.
	Seed uint64
}

// DefaultConfig returns the parameters used by the explorers.
func DefaultConfig() Config {
	return Config{
		WarmupTicks:       80,
		CooldownTicks:     120,
		AlphaDecay:        0.02,
		AlphaMin:          0.001,
		VelocityDecay:     0.3,
		LinkDistance:      30,
		ChargeStrength:    -30,
		ChargeDistanceMin: 1,
		Seed:              1,
	}
}

// Point is a position in layout units.
type Point struct {
	X float64
	Y float64
}

// Edge connects two node ids. Edges naming unknown ids are ignored.
type Edge struct {
	Source string
	Target string
}

type body struct {
	x, y   float64
	vx, vy float64
}

type spring struct {
	source, target int
	strength       float64
	bias           float64
}

// Simulation owns the node positions. It is not safe for concurrent use; the
// renderer drives it from its event loop.
type Simulation struct {
	cfg    Config
	ids    []string
	index  map[string]int
	bodies []body
	links  []spring

	alpha    float64
	cooldown int
	rng      *rand.Rand
}

const (
	initialRadius = 10.0
	initialAngle  = math.Pi * 0.7639320225 // π(3-√5)
)

// New seeds ids on a phyllotaxis spiral around the center.
func New(cfg Config, ids []string, edges []Edge) *Simulation {
	s := &Simulation{
		cfg:    cfg,
		ids:    append([]string(nil), ids...),
		index:  make(map[string]int, len(ids)),
		bodies: make([]body, len(ids)),
		alpha:  1,
		rng:    rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
	}

	for i, id := range s.ids {
		s.index[id] = i
		r := initialRadius * math.Sqrt(0.5+float64(i))
		a := float64(i) * initialAngle
		s.bodies[i] = body{x: cfg.CenterX + r*math.Cos(a), y: cfg.CenterY + r*math.Sin(a)}
	}

	degree := make([]int, len(s.ids))
	for _, e := range edges {
		src, ok1 := s.index[e.Source]
		dst, ok2 := s.index[e.Target]
		if !ok1 || !ok2 || src == dst {
			continue
		}
		s.links = append(s.links, spring{source: src, target: dst})
		degree[src]++
		degree[dst]++
	}
	for i := range s.links {
		l := &s.links[i]
		ds, dt := degree[l.source], degree[l.target]
		l.strength = 1 / float64(min(ds, dt))
		l.bias = float64(ds) / float64(ds+dt)
	}

	return s
}

// Warmup runs the configured warm-up ticks without counting them against
// the cool-down budget.
func (s *Simulation) Warmup() {
	for i := 0; i < s.cfg.WarmupTicks; i++ {
		s.Tick()
	}
}

// Step advances one animated tick. It reports false once the simulation has
// cooled down, without moving anything.
func (s *Simulation) Step() bool {
	if !s.Active() {
		return false
	}
	s.Tick()
	s.cooldown++
	return true
}

// Active reports whether animated ticks remain.
func (s *Simulation) Active() bool {
	return s.cooldown < s.cfg.CooldownTicks && s.alpha >= s.cfg.AlphaMin
}

// Alpha returns the current temperature.
func (s *Simulation) Alpha() float64 {
	return s.alpha
}

// Tick applies one round of forces unconditionally.
func (s *Simulation) Tick() {
	s.alpha += -s.alpha * s.cfg.AlphaDecay

	s.applyLinks()
	s.applyCharge()

	decay := 1 - s.cfg.VelocityDecay
	for i := range s.bodies {
		b := &s.bodies[i]
		b.vx *= decay
		b.vy *= decay
		b.x += b.vx
		b.y += b.vy
	}

	s.applyCenter()
}

func (s *Simulation) jiggle() float64 {
	return (s.rng.Float64() - 0.5) * 1e-6
}

func (s *Simulation) applyLinks() {
	for _, l := range s.links {
		src, dst := &s.bodies[l.source], &s.bodies[l.target]
		x := dst.x + dst.vx - src.x - src.vx
		y := dst.y + dst.vy - src.y - src.vy
		if x == 0 {
			x = s.jiggle()
		}
		if y == 0 {
			y = s.jiggle()
		}
		d := math.Sqrt(x*x + y*y)
		k := (d - s.cfg.LinkDistance) / d * s.alpha * l.strength
		x *= k
		y *= k
		dst.vx -= x * l.bias
		dst.vy -= y * l.bias
		src.vx += x * (1 - l.bias)
		src.vy += y * (1 - l.bias)
	}
}

func (s *Simulation) applyCharge() {
	minDist2 := s.cfg.ChargeDistanceMin * s.cfg.ChargeDistanceMin
	for i := range s.bodies {
		bi := &s.bodies[i]
		for j := range s.bodies {
			if i == j {
				continue
			}
			bj := &s.bodies[j]
			x := bj.x - bi.x
			y := bj.y - bi.y
			if x == 0 {
				x = s.jiggle()
			}
			if y == 0 {
				y = s.jiggle()
			}
			l := x*x + y*y
			if l < minDist2 {
				l = math.Sqrt(minDist2 * l)
			}
			w := s.cfg.ChargeStrength * s.alpha / l
			bi.vx += x * w
			bi.vy += y * w
		}
	}
}

func (s *Simulation) applyCenter() {
	n := len(s.bodies)
	if n == 0 {
		return
	}
	var sx, sy float64
	for _, b := range s.bodies {
		sx += b.x
		sy += b.y
	}
	sx = sx/float64(n) - s.cfg.CenterX
	sy = sy/float64(n) - s.cfg.CenterY
	for i := range s.bodies {
		s.bodies[i].x -= sx
		s.bodies[i].y -= sy
	}
}

// Position returns the position of id.
func (s *Simulation) Position(id string) (Point, bool) {
	i, ok := s.index[id]
	if !ok {
		return Point{}, false
	}
	return Point{X: s.bodies[i].x, Y: s.bodies[i].y}, true
}

// Positions returns a copy of every position keyed by id.
func (s *Simulation) Positions() map[string]Point {
	out := make(map[string]Point, len(s.ids))
	for i, id := range s.ids {
		out[id] = Point{X: s.bodies[i].x, Y: s.bodies[i].y}
	}
	return out
}

// Bounds returns the bounding box of all nodes. Both corners are the center
// for an empty simulation.
func (s *Simulation) Bounds() (lo, hi Point) {
	if len(s.bodies) == 0 {
		c := Point{X: s.cfg.CenterX, Y: s.cfg.CenterY}
		return c, c
	}
	lo = Point{X: math.Inf(1), Y: math.Inf(1)}
	hi = Point{X: math.Inf(-1), Y: math.Inf(-1)}
	for _, b := range s.bodies {
		lo.X = math.Min(lo.X, b.x)
		lo.Y = math.Min(lo.Y, b.y)
		hi.X = math.Max(hi.X, b.x)
		hi.Y = math.Max(hi.Y, b.y)
	}
	return lo, hi
}

// Len returns the number of nodes.
func (s *Simulation) Len() int {
	return len(s.ids)
}
