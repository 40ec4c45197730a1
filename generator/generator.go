// Package generator evaluates the probability that an injector configuration
// produced a given event.
//
// The probability factorizes into independent terms: the number of events
// the configuration simulated, the energy spectrum, the direction range, the
// final state, the injection area and vertex position, and the kinematics
// drawn from the configuration's own cross-section tables. Ranged and volume
// injection differ only in the geometric terms.
package generator

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"

	"leptonweight.io/lw/earth"
	"leptonweight.io/lw/event"
	"leptonweight.io/lw/lic"
	"leptonweight.io/lw/particle"
	"leptonweight.io/lw/spline"
)

// Generator is the generation probability model of one injection block.
// Every method taking events returns one value per event, in order.
type Generator interface {
	Kind() lic.BlockKind
	Config() lic.InjectionConfig

	ProbStat() float64
	ProbE(events []event.Event) []float64
	ProbDir(events []event.Event) []float64
	ProbFinalState(events []event.Event) []float64
	ProbArea(events []event.Event) []float64
	ProbPos(events []event.Event) []float64
	ProbKinematics(events []event.Event) ([]float64, error)

	// ConsideredRange returns the path along which the generator could have
	// placed each event's vertex.
	ConsideredRange(events []event.Event) []earth.Path

	// Probability multiplies every factor.
	Probability(events []event.Event) ([]float64, error)
}

// Options carries the collaborators generators need.
type Options struct {
	// Cache evaluates the configuration's cross-section tables. Required.
	Cache *spline.Cache
	// Medium answers column-depth queries. Required for ranged injection.
	Medium earth.Medium
	// Classifier decides whether a final state scatters off electrons.
	// Nil means nucleons only.
	Classifier particle.Classifier
	// Logger is nil to discard.
	Logger *slog.Logger
}

var (
	ErrEnumBlock = errors.New("generator: enum blocks do not describe injection")
	ErrNoCache   = errors.New("generator: spline cache is required")
	ErrNoMedium  = errors.New("generator: ranged injection requires a medium")
)

// New builds the generator for an injection block.
func New(b lic.Block, opts Options) (Generator, error) {
	if opts.Cache == nil {
		return nil, ErrNoCache
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	switch v := b.(type) {
	case *lic.RangedConfig:
		if opts.Medium == nil {
			return nil, ErrNoMedium
		}
		cls := opts.Classifier
		if cls == nil {
			cls = particle.NucleonOnly
		}
		g := &Ranged{base: newBase(v.InjectionConfig, opts.Cache, log), length: v.Length, medium: opts.Medium, classifier: cls}
		log.Debug("ranged generator", "events", v.Events, "radius", v.Radius, "length", v.Length)
		return g, nil
	case *lic.VolumeConfig:
		g := &Volume{base: newBase(v.InjectionConfig, opts.Cache, log), height: v.Height}
		log.Debug("volume generator", "events", v.Events, "radius", v.Radius, "height", v.Height)
		return g, nil
	case *lic.EnumDef:
		return nil, ErrEnumBlock
	}
	return nil, fmt.Errorf("generator: unsupported block %T", b)
}

// FromBlocks builds a generator for every injection block, skipping enum
// definitions.
func FromBlocks(blocks []lic.Block, opts Options) ([]Generator, error) {
	var out []Generator
	for i, b := range blocks {
		if b.BlockKind() == lic.KindEnumDef {
			continue
		}
		g, err := New(b, opts)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		out = append(out, g)
	}
	return out, nil
}

// base implements the factors shared by every injection geometry.
type base struct {
	cfg   lic.InjectionConfig
	cache *spline.Cache
	log   *slog.Logger
}

func newBase(cfg lic.InjectionConfig, cache *spline.Cache, log *slog.Logger) base {
	return base{cfg: cfg, cache: cache, log: log}
}

func (b *base) Config() lic.InjectionConfig { return b.cfg }

// ProbStat is the number of events the configuration simulated.
func (b *base) ProbStat() float64 { return float64(b.cfg.Events) }

// ProbE is the normalized power-law density E^-γ on [EnergyMin, EnergyMax].
func (b *base) ProbE(events []event.Event) []float64 {
	c := b.cfg
	g := c.PowerlawIndex
	var norm float64
	if g == 1 {
		norm = 1 / math.Log(c.EnergyMax/c.EnergyMin)
	} else {
		norm = (1 - g) / (math.Pow(c.EnergyMax, 1-g) - math.Pow(c.EnergyMin, 1-g))
	}
	out := make([]float64, len(events))
	for i, e := range events {
		if e.Energy >= c.EnergyMin && e.Energy <= c.EnergyMax {
			out[i] = norm * math.Pow(e.Energy, -g)
		}
	}
	return out
}

// ProbDir is uniform in solid angle over the zenith and azimuth ranges.
func (b *base) ProbDir(events []event.Event) []float64 {
	c := b.cfg
	density := 1 / ((c.AzimuthMax - c.AzimuthMin) * (math.Cos(c.ZenithMin) - math.Cos(c.ZenithMax)))
	out := make([]float64, len(events))
	for i, e := range events {
		if e.Zenith >= c.ZenithMin && e.Zenith <= c.ZenithMax &&
			e.Azimuth >= c.AzimuthMin && e.Azimuth <= c.AzimuthMax {
			out[i] = density
		}
	}
	return out
}

// ProbFinalState is 1 when the event's final state is the configured pair,
// in either order.
func (b *base) ProbFinalState(events []event.Event) []float64 {
	f0, f1 := b.cfg.FinalType0, b.cfg.FinalType1
	out := make([]float64, len(events))
	for i, e := range events {
		a, c := e.FinalState[0], e.FinalState[1]
		if (a == f0 && c == f1) || (a == f1 && c == f0) {
			out[i] = 1
		}
	}
	return out
}

// ProbKinematics is the configuration's differential cross section at the
// event kinematics over its total cross section at the event energy.
func (b *base) ProbKinematics(events []event.Event) ([]float64, error) {
	kin := make([][]float64, len(events))
	energy := make([][]float64, len(events))
	for i, e := range events {
		le := math.Log10(e.Energy)
		kin[i] = []float64{le, math.Log10(e.BjorkenX), math.Log10(e.BjorkenY)}
		energy[i] = []float64{le}
	}
	diff, err := b.cache.Evaluate(b.cfg.DifferentialCrossSection.Name(), kin, 0)
	if err != nil {
		return nil, fmt.Errorf("generator: differential cross section: %w", err)
	}
	total, err := b.cache.Evaluate(b.cfg.TotalCrossSection.Name(), energy, 0)
	if err != nil {
		return nil, fmt.Errorf("generator: total cross section: %w", err)
	}
	out := make([]float64, len(events))
	for i := range events {
		out[i] = math.Pow(10, diff[i]-total[i])
	}
	return out, nil
}

// probability multiplies the factors of g, evaluating each factor only for
// events whose running product is still non-zero.
func probability(g Generator, events []event.Event) ([]float64, error) {
	plain := func(f func([]event.Event) []float64) func([]event.Event) ([]float64, error) {
		return func(ev []event.Event) ([]float64, error) { return f(ev), nil }
	}
	stages := []func([]event.Event) ([]float64, error){
		plain(g.ProbE),
		plain(g.ProbDir),
		plain(g.ProbFinalState),
		plain(g.ProbArea),
		plain(g.ProbPos),
		g.ProbKinematics,
	}

	out := make([]float64, len(events))
	idx := make([]int, len(events))
	stat := g.ProbStat()
	for i := range events {
		out[i] = stat
		idx[i] = i
	}
	if stat == 0 {
		return out, nil
	}
	for _, stage := range stages {
		if len(idx) == 0 {
			break
		}
		sub := make([]event.Event, len(idx))
		for j, i := range idx {
			sub[j] = events[i]
		}
		vals, err := stage(sub)
		if err != nil {
			return nil, err
		}
		next := make([]int, 0, len(idx))
		for j, i := range idx {
			out[i] *= vals[j]
			if out[i] != 0 {
				next = append(next, i)
			}
		}
		idx = next
	}
	return out, nil
}
