package metrics

import (
	"math"

	"github.com/mjibson/go-dsp/fft"
)

// ModeDecay estimates the exponential decay rate of the fundamental sine
// mode sin(pi x) between the first and the latest observation. For the
// homogeneous fixed-value problem it tends to pi^2. Profiles must be sampled
// on evenly spaced x covering [0, 1].
type ModeDecay struct {
	name        string
	t0, a0      float64
	t, a        float64
	samples     int
	oddExtended []float64
}

func NewModeDecay() *ModeDecay {
	return &ModeDecay{name: "mode1_decay_rate"}
}

func (m *ModeDecay) Name() string { return m.name }

func (m *ModeDecay) Observe(t float64, x, u []float64) {
	if len(u) < 3 {
		return
	}
	a := m.fundamental(u)
	if m.samples == 0 {
		m.t0, m.a0 = t, a
	}
	m.t, m.a = t, a
	m.samples++
}

// fundamental returns the sine coefficient of mode 1, taken from the DFT of
// the odd extension of u to [-1, 1].
func (m *ModeDecay) fundamental(u []float64) float64 {
	n := len(u) - 1
	size := 2 * n
	if cap(m.oddExtended) < size {
		m.oddExtended = make([]float64, size)
	}
	v := m.oddExtended[:size]
	v[0], v[n] = 0, 0
	for i := 1; i < n; i++ {
		v[i] = u[i]
		v[size-i] = -u[i]
	}
	spectrum := fft.FFTReal(v)
	return -2 * imag(spectrum[1]) / float64(size)
}

// Value is zero until two observations with a non-vanishing fundamental
// have been made.
func (m *ModeDecay) Value() float64 {
	if m.samples < 2 || m.t == m.t0 || m.a0 == 0 || m.a == 0 {
		return 0
	}
	return -math.Log(math.Abs(m.a)/math.Abs(m.a0)) / (m.t - m.t0)
}

func (m *ModeDecay) Reset() {
	m.t0, m.a0, m.t, m.a = 0, 0, 0, 0
	m.samples = 0
}
