package flowfield

import (
	"math"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestFlowFieldSuite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "flowfield")
}

func sparseGridPoints() []FlowPoint {
	pts := make([]FlowPoint, 0, 36)
	for zi := 0; zi < 6; zi++ {
		for ri := 0; ri < 6; ri++ {
			pts = append(pts, FlowPoint{
				Z: float64(zi) * 0.1, R: float64(ri) * 0.1,
				VBulkAxial: 10 + float64(zi), T: 4.0, Rho: 1e19,
			})
		}
	}
	return pts
}

func bruteNearest(ff *FlowField, z, r float64) int {
	best, bestD := -1, math.Inf(1)
	for i, p := range ff.points {
		d := math.Hypot(p.Z-z, p.R-r)
		if d < bestD {
			bestD, best = d, i
		}
	}
	return best
}

// Describes the cached-interpolation tolerance property from spec.md:
// a query within the cached point's validity radius reuses the cache
// unchanged, and a query outside it re-queries the tree and lands on
// the point actually nearest to the new coordinate.
var _ = Describe("FlowField.Refresh", func() {
	var ff *FlowField

	BeforeEach(func() {
		var err error
		ff, err = New(sparseGridPoints())
		Expect(err).NotTo(HaveOccurred())
	})

	It("reuses the cached state when the query stays within the validity radius", func() {
		interp := &InterpState{
			ZRef: 0.3, RRef: 0.3, T: 4.0, Rho: 1e19, DMin: 0.5, valid: true,
		}
		// within DMin=0.5 of (0.3, 0.3)
		ff.Refresh(interp, [3]float64{0.32, 0.31, 0})
		Expect(interp.ZRef).To(Equal(0.3))
		Expect(interp.RRef).To(Equal(0.3))
	})

	It("re-queries and snaps to the true nearest sample once the query exceeds the validity radius", func() {
		interp := &InterpState{
			ZRef: 0.0, RRef: 0.0, T: 4.0, Rho: 1e19, DMin: 0.01, valid: true,
		}
		queryZ, queryR := 0.5, 0.4
		ff.Refresh(interp, [3]float64{queryR, 0, queryZ})

		wantIdx := bruteNearest(ff, queryZ, queryR)
		want := ff.points[wantIdx]
		Expect(interp.ZRef).To(Equal(want.Z))
		Expect(interp.RRef).To(Equal(want.R))
		Expect(interp.T).To(Equal(want.T))
	})

	It("rotates the cached bulk radial velocity into the query point's azimuth", func() {
		pts := []FlowPoint{{Z: 0, R: 1, VBulkRadial: 2, T: 4.0, Rho: 1e19}}
		field, err := New(pts)
		Expect(err).NotTo(HaveOccurred())

		interp := &InterpState{}
		field.Refresh(interp, [3]float64{1, 0, 0}) // azimuth 0
		Expect(interp.VGX).To(BeNumerically("~", 2, 1e-9))
		Expect(interp.VGY).To(BeNumerically("~", 0, 1e-9))

		interp2 := &InterpState{}
		field.Refresh(interp2, [3]float64{-1, 0, 0}) // azimuth pi
		Expect(interp2.VGX).To(BeNumerically("~", -2, 1e-9))
		Expect(interp2.VGY).To(BeNumerically("~", 0, 1e-9))
	})
})
