package heat

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/heatsim/internal/dynamo"
)

// nodeSnap is the distance, in node spacings, under which a query
// coordinate is treated as lying on the node.
const nodeSnap = 1e-9

var errModelFinished = errors.New("heat: model is finished and read-only")

// Model is the continuous output of one solve: the dense interpolants of all
// accepted steps together with the boundary samples recorded while
// integrating. It is populated as a dynamo.StepHandler and BoundaryRecorder
// and becomes read-only once the last step arrives or Finish is called.
//
// A finished Model is safe for concurrent readers.
type Model struct {
	mesh    Mesh
	steps   []dynamo.StepInterpolator
	ends    []float64
	samples *sampleTree

	finished bool
	avgStep  float64
}

func NewModel(mesh Mesh) *Model {
	return &Model{mesh: mesh, samples: newSampleTree()}
}

func (m *Model) Mesh() Mesh { return m.mesh }

// HandleStep appends an accepted step. Steps must arrive in time order with
// no gap between them.
func (m *Model) HandleStep(interp dynamo.StepInterpolator, last bool) error {
	if m.finished {
		return errModelFinished
	}
	if n := len(m.ends); n > 0 && interp.PreviousTime() != m.ends[n-1] {
		return fmt.Errorf("heat: step starting at t=%g does not follow step ending at t=%g", interp.PreviousTime(), m.ends[n-1])
	}
	m.steps = append(m.steps, interp)
	m.ends = append(m.ends, interp.CurrentTime())
	if last {
		m.Finish()
	}
	return nil
}

// RecordBoundary stores the boundary values computed at time t. Samples
// arriving after Finish are dropped.
func (m *Model) RecordBoundary(t, left, right float64) {
	if m.finished {
		return
	}
	m.samples.record(BoundarySample{Time: t, Left: left, Right: right})
}

// Finish freezes the model.
func (m *Model) Finish() {
	if m.finished {
		return
	}
	m.finished = true
	m.avgStep = m.averageStepSize()
}

func (m *Model) Finished() bool { return m.finished }

// StartTime and EndTime bound the integrated interval. Both are zero for an
// empty model.
func (m *Model) StartTime() float64 {
	if len(m.steps) == 0 {
		return 0
	}
	return m.steps[0].PreviousTime()
}

func (m *Model) EndTime() float64 {
	if len(m.ends) == 0 {
		return 0
	}
	return m.ends[len(m.ends)-1]
}

func (m *Model) StepCount() int { return len(m.steps) }

// StepTimes returns a copy of the end time of every accepted step.
func (m *Model) StepTimes() []float64 {
	return append([]float64(nil), m.ends...)
}

// AverageStepSize is the mean spacing of consecutive step end times, zero
// when fewer than two steps were taken.
func (m *Model) AverageStepSize() float64 {
	if m.finished {
		return m.avgStep
	}
	return m.averageStepSize()
}

func (m *Model) averageStepSize() float64 {
	n := len(m.ends)
	if n < 2 {
		return 0
	}
	return (m.ends[n-1] - m.ends[0]) / float64(n-1)
}

// BoundarySamples returns every recorded sample in time order.
func (m *Model) BoundarySamples() []BoundarySample {
	return m.samples.all()
}

func (m *Model) checkTime(t float64) error {
	if len(m.steps) == 0 {
		return fmt.Errorf("%w: no steps recorded", ErrQueryOutOfRange)
	}
	if math.IsNaN(t) || t < m.StartTime() || t > m.EndTime() {
		return fmt.Errorf("%w: t=%g not in [%g, %g]", ErrQueryOutOfRange, t, m.StartTime(), m.EndTime())
	}
	return nil
}

// Sample returns the interior state at t.
func (m *Model) Sample(t float64) (dynamo.State, error) {
	u := make(dynamo.State, m.mesh.Interior())
	if err := m.SampleInto(t, u); err != nil {
		return nil, err
	}
	return u, nil
}

// SampleInto writes the interior state at t into dst, which must have
// length Mesh().Interior().
func (m *Model) SampleInto(t float64, dst dynamo.State) error {
	if err := m.checkTime(t); err != nil {
		return err
	}
	if len(dst) != m.mesh.Interior() {
		return fmt.Errorf("%w: destination has %d entries, want %d", dynamo.ErrDimensionMismatch, len(dst), m.mesh.Interior())
	}
	i := sort.Search(len(m.ends), func(i int) bool { return m.ends[i] >= t })
	m.steps[i].InterpolateInto(t, dst)
	return nil
}

// FullState returns the field at t on every node, boundaries included.
func (m *Model) FullState(t float64) ([]float64, error) {
	full := make([]float64, m.mesh.Points())
	if err := m.SampleInto(t, full[1:len(full)-1]); err != nil {
		return nil, err
	}
	left, right, ok := m.samples.at(t)
	if !ok {
		return nil, fmt.Errorf("%w: no boundary samples recorded", ErrQueryOutOfRange)
	}
	full[0] = left
	full[len(full)-1] = right
	return full, nil
}

// FieldAt returns u(x, t) by linear interpolation between mesh nodes.
func (m *Model) FieldAt(x, t float64) (float64, error) {
	if err := m.checkX(x); err != nil {
		return 0, err
	}
	full, err := m.FullState(t)
	if err != nil {
		return 0, err
	}
	return m.interpolate(full, x), nil
}

// Profile evaluates u(x, t) at every x in xs, sharing one state
// reconstruction.
func (m *Model) Profile(t float64, xs []float64) ([]float64, error) {
	for _, x := range xs {
		if err := m.checkX(x); err != nil {
			return nil, err
		}
	}
	full, err := m.FullState(t)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = m.interpolate(full, x)
	}
	return out, nil
}

func (m *Model) checkX(x float64) error {
	if math.IsNaN(x) || x < 0 || x > 1 {
		return fmt.Errorf("%w: x=%g not in [0, 1]", ErrQueryOutOfRange, x)
	}
	return nil
}

func (m *Model) interpolate(full []float64, x float64) float64 {
	last := len(full) - 1
	k := x / m.mesh.DeltaX()
	if r := math.Round(k); math.Abs(k-r) < nodeSnap {
		return full[min(int(r), last)]
	}
	i0 := min(int(math.Floor(k)), last)
	i1 := min(i0+1, last)
	w := k - float64(i0)
	return (1-w)*full[i0] + w*full[i1]
}
