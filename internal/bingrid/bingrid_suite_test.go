package bingrid

import (
	"math"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestBingridSuite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "bingrid")
}

// Describes the clamp invariant from spec.md: CellIndex must return an
// in-range (rIdx, zIdx) for any coordinate, including values far
// outside [RMin,RMax] x [ZMin,ZMax] and non-finite inputs, since a
// trajectory sample must always land somewhere rather than being
// dropped or trapping the caller.
var _ = Describe("Grid.CellIndex", func() {
	g := New(0, 1, -2, 2, 5, 8)

	DescribeTable("always returns indices within range",
		func(r, z float64) {
			rIdx, zIdx := g.CellIndex(r, z)
			Expect(rIdx).To(BeNumerically(">=", 0))
			Expect(rIdx).To(BeNumerically("<", g.RBins))
			Expect(zIdx).To(BeNumerically(">=", 0))
			Expect(zIdx).To(BeNumerically("<", g.ZBins))
		},
		Entry("inside the grid", 0.5, 0.0),
		Entry("exactly at the lower corner", 0.0, -2.0),
		Entry("exactly at the upper corner", 1.0, 2.0),
		Entry("far below range", -1e9, -1e9),
		Entry("far above range", 1e9, 1e9),
		Entry("positive infinity", math.Inf(1), math.Inf(1)),
		Entry("negative infinity", math.Inf(-1), math.Inf(-1)),
	)

	It("clamps adversarial out-of-range coordinates to the boundary cell rather than panicking", func() {
		Expect(func() { g.CellIndex(-100, -100) }).NotTo(Panic())
		rIdx, zIdx := g.CellIndex(-100, -100)
		Expect(rIdx).To(Equal(0))
		Expect(zIdx).To(Equal(0))

		rIdx, zIdx = g.CellIndex(100, 100)
		Expect(rIdx).To(Equal(g.RBins - 1))
		Expect(zIdx).To(Equal(g.ZBins - 1))
	})

	It("never crashes Update on an adversarial off-axis or out-of-range sample", func() {
		Expect(func() {
			g.Update([3]float64{1e9, -1e9, 1e9}, [3]float64{1, 1, 1}, 0, 0, 0)
		}).NotTo(Panic())
	})
})

var _ = Describe("Grid.Merge", func() {
	It("rejects grids with mismatched geometry instead of corrupting cell data", func() {
		a := New(0, 1, 0, 1, 4, 4)
		b := New(0, 2, 0, 1, 4, 4)
		a.Update([3]float64{0.5, 0, 0}, [3]float64{1, 0, 0}, 1, 0, 1)
		before := a.Cell(2, 0).Count()

		err := a.Merge(b)
		Expect(err).To(HaveOccurred())
		Expect(a.Cell(2, 0).Count()).To(Equal(before))
	})
})
