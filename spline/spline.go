// Package spline loads interpolation tables and shares them between the
// cross-section consumers that evaluate them.
//
// The table format and its evaluator live outside this module; Backend and
// Table are the narrow surface used here. A Cache is an explicit value: every
// consumer that should share loaded tables must be handed the same Cache.
package spline

import (
	"errors"
	"fmt"
)

// Table is a loaded multi-dimensional interpolation table.
type Table interface {
	// Dims returns the number of coordinates Evaluate expects.
	Dims() int
	// Evaluate returns the table value at coords. Bit i of derivatives
	// requests the partial derivative along coordinate i instead of the value.
	Evaluate(coords []float64, derivatives uint32) (float64, error)
}

// Backend loads tables by identifier.
type Backend interface {
	Load(id string) (Table, error)
}

// BackendFunc adapts a function to Backend.
type BackendFunc func(id string) (Table, error)

func (f BackendFunc) Load(id string) (Table, error) { return f(id) }

// Operations reported in Error.Op.
const (
	OpLoad     = "load"
	OpEvaluate = "evaluate"
)

var (
	// ErrLoad matches every load failure via errors.Is.
	ErrLoad = errors.New("spline: load failed")
	// ErrEvaluate matches every evaluation failure via errors.Is.
	ErrEvaluate = errors.New("spline: evaluation failed")
)

// Error reports a failed table load or evaluation. Tables are static
// resources; callers should not retry.
type Error struct {
	Table string
	Op    string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("spline: %s %s: %v", e.Op, e.Table, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	switch target {
	case ErrLoad:
		return e.Op == OpLoad
	case ErrEvaluate:
		return e.Op == OpEvaluate
	}
	return false
}

// Gradient returns the derivative mask selecting the given coordinates.
func Gradient(dims ...int) uint32 {
	var mask uint32
	for _, d := range dims {
		mask |= 1 << uint(d)
	}
	return mask
}

// EvaluateRows evaluates t at every row of coordinates.
func EvaluateRows(t Table, rows [][]float64, derivatives uint32) ([]float64, error) {
	n := t.Dims()
	if derivatives>>uint(n) != 0 {
		return nil, fmt.Errorf("derivative mask %#x exceeds %d dimensions", derivatives, n)
	}
	out := make([]float64, len(rows))
	for i, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("row %d has %d coordinates, table has %d dimensions", i, len(row), n)
		}
		v, err := t.Evaluate(row, derivatives)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}
