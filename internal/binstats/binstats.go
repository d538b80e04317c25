// Package binstats implements the mergeable online moment accumulator
// that every bin-grid cell is built from: a running 2-D mean and 2x2
// covariance over (v_tangential, v_axial), plus three scalar running
// mean/variance accumulators for time of flight, cumulative collision
// count, and free-path length.
//
// All updates use the Chan/Welford parallel moment formulas so that
// Merge applied to two partial accumulators equals one pass over their
// union, to within floating-point error. Grounded on the stateful
// Observe/Value/Reset accumulator shape of internal/metrics, generalized
// from a single scalar running mean to parallel-mergeable vector and
// scalar moments.
package binstats

// scalarMoment is a running count/mean/variance accumulator (Welford).
type scalarMoment struct {
	n    int64
	mean float64
	m2   float64 // sum of squared deviations from mean
}

func (s *scalarMoment) observe(x float64) {
	s.n++
	delta := x - s.mean
	s.mean += delta / float64(s.n)
	delta2 := x - s.mean
	s.m2 += delta * delta2
}

// merge combines two partial scalarMoments using Chan's parallel
// variance formula.
func (s *scalarMoment) merge(o scalarMoment) scalarMoment {
	if s.n == 0 {
		return o
	}
	if o.n == 0 {
		return *s
	}
	n := s.n + o.n
	delta := o.mean - s.mean
	mean := s.mean + delta*float64(o.n)/float64(n)
	m2 := s.m2 + o.m2 + delta*delta*float64(s.n)*float64(o.n)/float64(n)
	return scalarMoment{n: n, mean: mean, m2: m2}
}

func (s scalarMoment) variance() float64 {
	if s.n < 2 {
		return 0
	}
	return s.m2 / float64(s.n-1)
}

// vecMoment is a running mean and 2x2 covariance accumulator over a
// 2-D sample vector (v_tangential, v_axial).
type vecMoment struct {
	n       int64
	mean    [2]float64
	cov2sum [2][2]float64 // sum of outer products of deviations
}

func (v *vecMoment) observe(sample [2]float64) {
	v.n++
	var delta [2]float64
	for i := 0; i < 2; i++ {
		delta[i] = sample[i] - v.mean[i]
		v.mean[i] += delta[i] / float64(v.n)
	}
	var delta2 [2]float64
	for i := 0; i < 2; i++ {
		delta2[i] = sample[i] - v.mean[i]
	}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			v.cov2sum[i][j] += delta[i] * delta2[j]
		}
	}
}

func (v *vecMoment) merge(o vecMoment) vecMoment {
	if v.n == 0 {
		return o
	}
	if o.n == 0 {
		return *v
	}
	n := v.n + o.n
	var delta, mean [2]float64
	for i := 0; i < 2; i++ {
		delta[i] = o.mean[i] - v.mean[i]
		mean[i] = v.mean[i] + delta[i]*float64(o.n)/float64(n)
	}
	var cov [2][2]float64
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			cov[i][j] = v.cov2sum[i][j] + o.cov2sum[i][j] +
				delta[i]*delta[j]*float64(v.n)*float64(o.n)/float64(n)
		}
	}
	return vecMoment{n: n, mean: mean, cov2sum: cov}
}

func (v vecMoment) covariance() [2][2]float64 {
	var c [2][2]float64
	if v.n < 2 {
		return c
	}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			c[i][j] = v.cov2sum[i][j] / float64(v.n-1)
		}
	}
	return c
}

// BinStats is the tuple (V, T, C, L) described in the component design:
// velocity covariance, time-of-flight moments, collision-count moments,
// and free-path-length moments, all observed together per sample.
type BinStats struct {
	V vecMoment
	T scalarMoment
	C scalarMoment
	L scalarMoment
}

// New returns a zeroed accumulator.
func New() *BinStats { return &BinStats{} }

// Observe folds one trajectory sample into the accumulator.
func (b *BinStats) Observe(vTangential, vAxial, t, nColl, lFree float64) {
	b.V.observe([2]float64{vTangential, vAxial})
	b.T.observe(t)
	b.C.observe(nColl)
	b.L.observe(lFree)
}

// Merge combines another accumulator into b in place; the result is
// independent of which accumulator observed which samples (commutative)
// and independent of how a stream was partitioned before merging
// (associative), to within floating-point error.
func (b *BinStats) Merge(other *BinStats) {
	b.V = b.V.merge(other.V)
	b.T = b.T.merge(other.T)
	b.C = b.C.merge(other.C)
	b.L = b.L.merge(other.L)
}

// Reset zeroes the accumulator in place.
func (b *BinStats) Reset() { *b = BinStats{} }

// Count is the number of samples observed (same across V, T, C, L since
// Observe always updates all four together).
func (b *BinStats) Count() int64 { return b.T.n }

// Snapshot is the flattened, read-only view of the accumulator used for
// CSV export and for comparing merge results against a one-pass
// reference in tests.
type Snapshot struct {
	N                                   int64
	VTangentialMean, VAxialMean         float64
	VTangentialVar, VAxialVar, VTVAxCov float64
	TMean, TVar                         float64
	CMean, CVar                         float64
	LMean, LVar                         float64
}

// Snapshot flattens the accumulator's current moments.
func (b *BinStats) Snapshot() Snapshot {
	cov := b.V.covariance()
	return Snapshot{
		N:               b.T.n,
		VTangentialMean: b.V.mean[0],
		VAxialMean:      b.V.mean[1],
		VTangentialVar:  cov[0][0],
		VAxialVar:       cov[1][1],
		VTVAxCov:        cov[0][1],
		TMean:           b.T.mean,
		TVar:            b.T.variance(),
		CMean:           b.C.mean,
		CVar:            b.C.variance(),
		LMean:           b.L.mean,
		LVar:            b.L.variance(),
	}
}
