package binstats

import (
	"math"
	"math/rand"
	"testing"
)

func sampleStream(n int, seed int64) [][5]float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([][5]float64, n)
	for i := range out {
		out[i] = [5]float64{
			rng.NormFloat64() * 2,
			rng.NormFloat64()*3 + 1,
			rng.Float64() * 10,
			float64(rng.Intn(5)),
			rng.Float64() * 100,
		}
	}
	return out
}

func accumulate(samples [][5]float64) *BinStats {
	b := New()
	for _, s := range samples {
		b.Observe(s[0], s[1], s[2], s[3], s[4])
	}
	return b
}

func almostEqual(a, b, tol float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	d := math.Abs(a - b)
	if math.Abs(b) > 1 {
		return d/math.Abs(b) < tol
	}
	return d < tol
}

func TestMergeEquivalentToOnePass(t *testing.T) {
	samples := sampleStream(4000, 1)
	onePass := accumulate(samples)

	a := accumulate(samples[:1500])
	b := accumulate(samples[1500:2800])
	c := accumulate(samples[2800:])
	a.Merge(b)
	a.Merge(c)

	sa, sb := onePass.Snapshot(), a.Snapshot()
	if sa.N != sb.N {
		t.Fatalf("count mismatch: %d vs %d", sa.N, sb.N)
	}
	fields := []struct {
		name string
		x, y float64
	}{
		{"VTangentialMean", sa.VTangentialMean, sb.VTangentialMean},
		{"VAxialMean", sa.VAxialMean, sb.VAxialMean},
		{"VTangentialVar", sa.VTangentialVar, sb.VTangentialVar},
		{"VAxialVar", sa.VAxialVar, sb.VAxialVar},
		{"TMean", sa.TMean, sb.TMean},
		{"TVar", sa.TVar, sb.TVar},
	}
	for _, f := range fields {
		if !almostEqual(f.x, f.y, 1e-9) {
			t.Errorf("%s mismatch: onepass=%v merged=%v", f.name, f.x, f.y)
		}
	}
}

func TestMergeAssociative(t *testing.T) {
	samples := sampleStream(3000, 2)
	a := accumulate(samples[:1000])
	b := accumulate(samples[1000:2000])
	c := accumulate(samples[2000:])

	left := New()
	left.Merge(a)
	left.Merge(b)
	leftThenC := New()
	leftThenC.Merge(left)
	leftThenC.Merge(c)

	bc := New()
	bc.Merge(b)
	bc.Merge(c)
	aThenRight := New()
	aThenRight.Merge(a)
	aThenRight.Merge(bc)

	s1, s2 := leftThenC.Snapshot(), aThenRight.Snapshot()
	if s1.N != s2.N {
		t.Fatalf("count mismatch")
	}
	if !almostEqual(s1.TMean, s2.TMean, 1e-10) || !almostEqual(s1.VTangentialMean, s2.VTangentialMean, 1e-10) {
		t.Errorf("associativity violated: %+v vs %+v", s1, s2)
	}
}

func TestMergeWithEmptyIsIdentity(t *testing.T) {
	samples := sampleStream(200, 3)
	a := accumulate(samples)
	empty := New()

	merged := New()
	merged.Merge(a)
	merged.Merge(empty)

	if merged.Count() != a.Count() {
		t.Errorf("merging empty accumulator changed count")
	}
}

func TestResetZeroes(t *testing.T) {
	b := accumulate(sampleStream(10, 4))
	b.Reset()
	if b.Count() != 0 {
		t.Errorf("expected zero count after reset")
	}
}
