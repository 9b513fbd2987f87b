package optim

import (
	"fmt"
	"math"

	"github.com/emmt/tipi-go/internal/tipierr"
	"gonum.org/v1/gonum/floats"
)

// Task is a reverse-communication instruction returned to the caller
// driving the minimization loop.
type Task int

const (
	// ComputeFG asks the caller to evaluate (f, g) at the current x.
	ComputeFG Task = iota
	// NewX reports that x was updated to a new iterate; the caller
	// should evaluate (f, g) there and call Iterate again.
	NewX
	// FinalX reports convergence (or a stopping limit); x holds the
	// final iterate.
	FinalX
	// ErrorTask reports an unrecoverable error; Driver.Err holds it.
	ErrorTask
)

// Driver runs a reverse-communication minimization loop: the caller
// owns x, computes (f, g) at the caller's convenience, and calls
// Iterate to advance the loop. Convergence is governed by an absolute
// (GAtol) and relative (GRtol, relative to the initial gradient norm)
// tolerance on the gradient 2-norm; MaxIter and MaxEval, when
// positive, bound the loop independently of convergence. Optional box
// bounds are projected onto every new iterate.
type Driver struct {
	GAtol, GRtol     float64
	MaxIter, MaxEval int
	Lower, Upper     []float64

	step    float64
	g0norm  float64
	iter    int
	neval   int
	hasPrev bool
	prevF   float64
	task    Task
	err     error
}

// NewDriver validates the tolerances and builds a Driver with an
// initial step size of 1. Fails with InvalidArgument when gatol or
// grtol is negative.
func NewDriver(gatol, grtol float64, maxIter, maxEval int) (*Driver, error) {
	if gatol < 0 || grtol < 0 {
		return nil, optimErrorf("NewDriver", tipierr.InvalidArgument, fmt.Errorf("gatol and grtol must be non-negative"))
	}
	return &Driver{GAtol: gatol, GRtol: grtol, MaxIter: maxIter, MaxEval: maxEval, step: 1, task: ComputeFG}, nil
}

// SetBounds installs per-component box bounds; a nil slice, or a
// component set to +/-Inf, leaves that side unconstrained. Fails with
// InvalidArgument when both are non-nil and of different lengths.
func (d *Driver) SetBounds(lower, upper []float64) error {
	if lower != nil && upper != nil && len(lower) != len(upper) {
		return optimErrorf("SetBounds", tipierr.InvalidArgument, fmt.Errorf("lower/upper length mismatch: %d vs %d", len(lower), len(upper)))
	}
	d.Lower = lower
	d.Upper = upper
	return nil
}

// Task returns the last task the driver issued.
func (d *Driver) Task() Task { return d.task }

// Err returns the error recorded when Task() == ErrorTask.
func (d *Driver) Err() error { return d.err }

// Start resets the loop's counters, projects x onto the box bounds in
// place, and returns ComputeFG.
func (d *Driver) Start(x []float64) Task {
	d.iter, d.neval = 0, 0
	d.hasPrev = false
	d.step = 1
	d.projectBounds(x)
	d.task = ComputeFG
	return d.task
}

// Iterate advances the loop given the objective value f and gradient
// g evaluated at the caller's current x. On NewX, x has been updated
// in place (a box-projected steepest-descent step with simple
// backtracking against the previous evaluation) and the caller should
// evaluate (f, g) there before calling Iterate again.
func (d *Driver) Iterate(x []float64, f float64, g []float64) Task {
	if len(x) != len(g) {
		d.err = optimErrorf("Iterate", tipierr.ShapeMismatch, fmt.Errorf("x and g length mismatch: %d vs %d", len(x), len(g)))
		d.task = ErrorTask
		return d.task
	}
	d.neval++

	gnorm := floats.Norm(g, 2)
	if d.iter == 0 {
		d.g0norm = gnorm
	}
	if gnorm <= d.GAtol || (d.g0norm > 0 && gnorm <= d.GRtol*d.g0norm) {
		d.task = FinalX
		return d.task
	}
	if d.MaxEval > 0 && d.neval >= d.MaxEval {
		d.task = FinalX
		return d.task
	}
	if d.MaxIter > 0 && d.iter >= d.MaxIter {
		d.task = FinalX
		return d.task
	}

	if d.hasPrev && f > d.prevF {
		d.step /= 2
	} else if d.hasPrev {
		d.step *= 1.1
	}
	for i := range x {
		x[i] -= d.step * g[i]
	}
	d.projectBounds(x)

	d.prevF = f
	d.hasPrev = true
	d.iter++
	d.task = NewX
	return d.task
}

func (d *Driver) projectBounds(x []float64) {
	for i := range x {
		if d.Lower != nil && !math.IsInf(d.Lower[i], -1) && x[i] < d.Lower[i] {
			x[i] = d.Lower[i]
		}
		if d.Upper != nil && !math.IsInf(d.Upper[i], 1) && x[i] > d.Upper[i] {
			x[i] = d.Upper[i]
		}
	}
}
