// Package integrators provides a minimal fourth-order Runge-Kutta
// stepper used only to cross-validate the propagator's closed-form
// harmonic-trap solution against direct numerical integration of the
// same equations of motion.
package integrators

// Field is the right-hand side of an ODE system: dx/dt = Field(x, t).
type Field func(x []float64, t float64) []float64

// RK4 is a fixed-step fourth-order Runge-Kutta integrator whose stage
// buffers are reused across Step calls on a fixed-size state vector;
// each Step still allocates the state slice it returns.
type RK4 struct {
	k1, k2, k3, k4 []float64
	scratch        []float64
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) ensureScratch(n int) {
	if len(r.k1) != n {
		r.k1 = make([]float64, n)
		r.k2 = make([]float64, n)
		r.k3 = make([]float64, n)
		r.k4 = make([]float64, n)
		r.scratch = make([]float64, n)
	}
}

// Step advances x by dt under field, evaluated at time t.
func (r *RK4) Step(field Field, x []float64, t, dt float64) []float64 {
	n := len(x)
	r.ensureScratch(n)

	copy(r.k1, field(x, t))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*r.k1[i]
	}
	copy(r.k2, field(r.scratch, t+dt*0.5))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*r.k2[i]
	}
	copy(r.k3, field(r.scratch, t+dt*0.5))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*r.k3[i]
	}
	copy(r.k4, field(r.scratch, t+dt))

	result := make([]float64, n)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		result[i] = x[i] + dt6*(r.k1[i]+2*r.k2[i]+2*r.k3[i]+r.k4[i])
	}
	return result
}
