package flowfield

import (
	"sort"
)

// point2 is a single (z, r) sample location plus its index into the
// owning FlowField's point slice.
type point2 struct {
	z, r float64
	idx  int
}

// kdNode is a node of the 2-D k-d tree over (z, r). Construction is
// grounded on the recursive bounding-box tree build in
// other_examples/MarkCLewis-LLM-Code-Performance__NBodySimulationKD.go,
// adapted from a Barnes-Hut mass tree (bounding box + center of mass,
// used for force approximation) to an exact point k-d tree (bounding
// box only, used for nearest-neighbor query): there is no accumulated
// mass or opening-angle approximation here, just a median split cycled
// between the z and r axes.
type kdNode struct {
	points      []point2 // non-empty only for leaves
	left, right *kdNode
	axis        int // 0 = z, 1 = r; meaningless at a leaf
	splitVal    float64
}

const kdLeafSize = 8

func coord(p point2, axis int) float64 {
	if axis == 0 {
		return p.z
	}
	return p.r
}

// buildKDTree mirrors BuildKDTree's depth-cycled axis split and leaf
// threshold, specialized to two axes instead of three.
func buildKDTree(points []point2, depth int) *kdNode {
	if len(points) == 0 {
		return nil
	}
	if len(points) <= kdLeafSize {
		return &kdNode{points: points}
	}

	axis := depth % 2
	sorted := make([]point2, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool {
		return coord(sorted[i], axis) < coord(sorted[j], axis)
	})

	median := len(sorted) / 2
	node := &kdNode{
		axis:     axis,
		splitVal: coord(sorted[median], axis),
	}
	node.left = buildKDTree(sorted[:median], depth+1)
	node.right = buildKDTree(sorted[median:], depth+1)
	return node
}

func sqDist(z, r float64, p point2) float64 {
	dz := z - p.z
	dr := r - p.r
	return dz*dz + dr*dr
}

// candidate is an entry of the bounded, distance-sorted list used while
// accumulating the K nearest neighbors.
type candidate struct {
	sqd float64
	pt  point2
}

// kNearest walks the tree collecting the k closest points to (z, r),
// maintaining a simple sorted slice (k is small — 100 — so an
// insertion-sorted slice beats the bookkeeping of a heap).
func (n *kdNode) kNearest(z, r float64, k int, best []candidate) []candidate {
	if n == nil {
		return best
	}
	if n.points != nil {
		for _, p := range n.points {
			best = insertCandidate(best, candidate{sqDist(z, r, p), p}, k)
		}
		return best
	}

	var q float64
	if n.axis == 0 {
		q = z
	} else {
		q = r
	}
	near, far := n.left, n.right
	if q > n.splitVal {
		near, far = n.right, n.left
	}
	best = near.kNearest(z, r, k, best)

	// Only descend into far if it could still contain a closer point
	// than the current worst kept candidate.
	diff := q - n.splitVal
	if len(best) < k || diff*diff < best[len(best)-1].sqd {
		best = far.kNearest(z, r, k, best)
	}
	return best
}

func insertCandidate(best []candidate, c candidate, k int) []candidate {
	i := sort.Search(len(best), func(i int) bool { return best[i].sqd >= c.sqd })
	if i >= k {
		return best
	}
	if len(best) < k {
		best = append(best, candidate{})
	}
	copy(best[i+1:], best[i:len(best)-1])
	best[i] = c
	return best
}

// nearest returns the single closest point to (z, r).
func (n *kdNode) nearest(z, r float64) (point2, bool) {
	best := n.kNearest(z, r, 1, nil)
	if len(best) == 0 {
		return point2{}, false
	}
	return best[0].pt, true
}
