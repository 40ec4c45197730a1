// Package splinetest provides analytic tables and an in-memory backend for
// tests of spline consumers.
package splinetest

import (
	"fmt"
	"sync"
	"sync/atomic"

	"leptonweight.io/lw/spline"
)

// Func is a table defined by a function of its coordinates. Grad, when set,
// answers derivative requests; otherwise any non-zero mask is an error.
type Func struct {
	N    int
	F    func(coords []float64) float64
	Grad func(coords []float64, derivatives uint32) float64
}

func (f Func) Dims() int { return f.N }

func (f Func) Evaluate(coords []float64, derivatives uint32) (float64, error) {
	if derivatives != 0 {
		if f.Grad == nil {
			return 0, fmt.Errorf("table has no derivatives")
		}
		return f.Grad(coords, derivatives), nil
	}
	return f.F(coords), nil
}

// Const returns an n-dimensional table with the same value everywhere.
func Const(n int, v float64) Func {
	return Func{N: n, F: func([]float64) float64 { return v }}
}

// Backend serves tables from a map and counts loads per identifier.
type Backend struct {
	mu     sync.Mutex
	tables map[string]spline.Table
	loads  map[string]*atomic.Int64
}

// NewBackend returns a backend serving tables.
func NewBackend(tables map[string]spline.Table) *Backend {
	b := &Backend{tables: make(map[string]spline.Table), loads: make(map[string]*atomic.Int64)}
	for id, t := range tables {
		b.Add(id, t)
	}
	return b
}

// Add registers t under id.
func (b *Backend) Add(id string, t spline.Table) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tables[id] = t
	if b.loads[id] == nil {
		b.loads[id] = new(atomic.Int64)
	}
}

func (b *Backend) Load(id string) (spline.Table, error) {
	b.mu.Lock()
	t, ok := b.tables[id]
	n := b.loads[id]
	b.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("no table %q", id)
	}
	n.Add(1)
	return t, nil
}

// Loads returns how many times id has been loaded.
func (b *Backend) Loads(id string) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if n := b.loads[id]; n != nil {
		return n.Load()
	}
	return 0
}
