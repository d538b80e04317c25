package propagator

import (
	"math"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestPropagatorSuite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "propagator")
}

func speed(v [3]float64) float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

func harmonicInvariant(x, v [3]float64, omega float64) float64 {
	return v[0]*v[0] + v[1]*v[1] + 2*omega*math.Abs(omega)*(x[0]*x[0]+x[1]*x[1])
}

// Describes the two closed-form stepping invariants from spec.md: a
// free (omega=0) flight conserves speed exactly, and a harmonic flight
// conserves v1^2+v2^2+2*omega^2*(x1^2+x2^2) (omega > 0) or
// v1^2+v2^2-2*omega^2*(x1^2+x2^2) (omega < 0) to floating-point precision.
var _ = Describe("Step", func() {
	DescribeTable("conserves |v| exactly under free flight",
		func(x, v [3]float64, t float64) {
			_, vNew := Step(x, v, 0, t)
			Expect(speed(vNew)).To(BeNumerically("~", speed(v), 1e-12))
		},
		Entry("radial only", [3]float64{0.1, -0.2, 0}, [3]float64{3, -1, 0}, 0.5),
		Entry("with axial component", [3]float64{0, 0, 1}, [3]float64{2, 2, 4}, 1.3),
		Entry("long duration", [3]float64{-0.5, 0.5, -2}, [3]float64{10, -10, 1}, 50.0),
	)

	DescribeTable("conserves the harmonic invariant under a trapped flight",
		func(x, v [3]float64, omega, t float64) {
			before := harmonicInvariant(x, v, omega)
			xNew, vNew := Step(x, v, omega, t)
			after := harmonicInvariant(xNew, vNew, omega)
			Expect(after).To(BeNumerically("~", before, 1e-9*before+1e-9))
		},
		Entry("positive omega, short step", [3]float64{0.05, -0.03, 0}, [3]float64{1, 2, 0}, 5.0, 0.01),
		Entry("positive omega, many periods", [3]float64{0.01, 0, 0}, [3]float64{0, 3, 0}, 2.0, 20.0),
		Entry("negative omega (unstable branch)", [3]float64{0.02, 0.01, 0}, [3]float64{0.5, -0.5, 0}, -1.5, 0.5),
	)

	It("no-ops below the minimum-speed threshold", func() {
		x := [3]float64{1, 2, 3}
		v := [3]float64{1e-9, 0, 0}
		xNew, vNew := Step(x, v, 3.0, 10.0)
		Expect(xNew).To(Equal(x))
		Expect(vNew).To(Equal(v))
	})
})

// Describes StepGated's axial trap-boundary semantics: a trajectory
// that stays inside the trap window behaves exactly like a trapped Step
// over the same duration, and the radial trap leaves the axial velocity
// component unchanged.
var _ = Describe("StepGated", func() {
	It("matches Step when the trajectory stays inside the trap window the whole time", func() {
		x := [3]float64{0.1, 0, -0.5}
		v := [3]float64{0.2, -0.1, 1.0}
		d := speed(v) * 0.3

		xGated, vGated := StepGated(x, v, 4.0, -1.0, 1.0, d)
		xPlain, vPlain := Step(x, v, 4.0, 0.3)

		Expect(xGated[2]).To(BeNumerically("~", xPlain[2], 1e-9))
		Expect(vGated).To(Equal(vPlain))
	})

	It("leaves the axial velocity component unaffected by radial trapping", func() {
		x := [3]float64{0.3, 0.1, -2.0}
		v := [3]float64{1.0, -0.5, 2.0}
		_, vNew := StepGated(x, v, 6.0, -1.0, 1.0, 5.0)
		Expect(vNew[2]).To(Equal(v[2]))
	})
})
