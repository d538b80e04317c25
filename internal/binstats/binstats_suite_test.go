package binstats

import (
	"math/rand"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestBinstatsSuite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "binstats")
}

func randomSamples(n int, seed int64) [][5]float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([][5]float64, n)
	for i := range out {
		out[i] = [5]float64{
			rng.NormFloat64() * 5,
			rng.NormFloat64()*2 - 3,
			rng.Float64() * 50,
			float64(rng.Intn(8)),
			rng.Float64() * 10,
		}
	}
	return out
}

func fold(samples [][5]float64) *BinStats {
	b := New()
	for _, s := range samples {
		b.Observe(s[0], s[1], s[2], s[3], s[4])
	}
	return b
}

// Describes the merge invariant spec.md calls out for BinStats: merging
// partial accumulators must agree with one pass over their union,
// regardless of how the stream was split, across a spread of random
// partitionings rather than one fixed split.
var _ = Describe("BinStats merge", func() {
	DescribeTable("agrees with a one-pass accumulation",
		func(total, splitAt int, seed int64) {
			samples := randomSamples(total, seed)
			onePass := fold(samples)

			a := fold(samples[:splitAt])
			b := fold(samples[splitAt:])
			a.Merge(b)

			sa, sb := onePass.Snapshot(), a.Snapshot()
			Expect(sb.N).To(Equal(sa.N))
			Expect(sb.TMean).To(BeNumerically("~", sa.TMean, 1e-9))
			Expect(sb.VTangentialMean).To(BeNumerically("~", sa.VTangentialMean, 1e-9))
			Expect(sb.VAxialVar).To(BeNumerically("~", sa.VAxialVar, 1e-9*sa.VAxialVar+1e-9))
		},
		Entry("even split", 2000, 1000, int64(11)),
		Entry("lopsided split", 2000, 100, int64(12)),
		Entry("near-total split", 2000, 1950, int64(13)),
		Entry("tiny second half", 500, 499, int64(14)),
	)

	It("is associative under arbitrary groupings of three partitions", func() {
		samples := randomSamples(3000, 21)
		a, b, c := fold(samples[:900]), fold(samples[900:2100]), fold(samples[2100:])

		left := New()
		left.Merge(a)
		left.Merge(b)
		left.Merge(c)

		right := New()
		bc := New()
		bc.Merge(b)
		bc.Merge(c)
		right.Merge(a)
		right.Merge(bc)

		Expect(right.Snapshot().N).To(Equal(left.Snapshot().N))
		Expect(right.Snapshot().TMean).To(BeNumerically("~", left.Snapshot().TMean, 1e-9))
	})
})
