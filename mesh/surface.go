package mesh

import (
	"fmt"
	"sort"
)

// Surface tracks the boundary facets of a mesh: segments in 2D, triangles in
// 3D. Facets are stored flat in SENList with NDim vertex ids each, and each
// facet carries a boundary id so refined children inherit the patch their
// parent lay on.
type Surface struct {
	mesh *Mesh

	SENList    []int // NDim vertex ids per facet
	BoundaryID []int // one id per facet
}

// NewSurface extracts the boundary of m. A facet is on the boundary when it
// belongs to exactly one element; facets are found by counting the occurrences
// of each (NDim)-subset of element vertices over the element list. All facets
// of one extraction share boundary id 0 until a caller assigns ids.
func NewSurface(m *Mesh) (s *Surface) {
	s = &Surface{mesh: m}
	var (
		nloc  = m.NLoc()
		snloc = m.NDim
		count = make(map[string][]int)
	)
	for e := 0; e < m.NElements(); e++ {
		ele := m.Element(e)
		if ele[0] < 0 {
			continue
		}
		// Each facet of a simplex is the element with one vertex dropped.
		for drop := 0; drop < nloc; drop++ {
			facet := make([]int, 0, snloc)
			for i := 0; i < nloc; i++ {
				if i != drop {
					facet = append(facet, ele[i])
				}
			}
			sorted := append([]int(nil), facet...)
			sort.Ints(sorted)
			key := fmt.Sprint(sorted)
			if _, seen := count[key]; seen {
				count[key] = nil
			} else {
				count[key] = facet
			}
		}
	}
	keys := make([]string, 0, len(count))
	for key, facet := range count {
		if facet != nil {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		s.SENList = append(s.SENList, count[key]...)
		s.BoundaryID = append(s.BoundaryID, 0)
	}
	return
}

func (s *Surface) SNLoc() int   { return s.mesh.NDim }
func (s *Surface) NFacets() int { return len(s.BoundaryID) }
func (s *Surface) Facet(i int) []int {
	snloc := s.SNLoc()
	return s.SENList[i*snloc : (i+1)*snloc]
}

// Refine splits boundary facets whose edges were split during element
// refinement, reading midpoint ids from the refined-edge table. Children
// inherit the parent facet's boundary id. In 2D a facet is a segment and
// splits in two; in 3D the triangle templates mirror the volumetric 1:2, 1:3
// and 1:4 subdivisions, cutting the 1:3 quad along its metric-shorter
// diagonal.
func (s *Surface) Refine(refinedEdges [][]int, lnn2gnn []int) {
	if s.mesh.NDim == 2 {
		s.refineSegments(refinedEdges, lnn2gnn)
	} else {
		s.refineTriangles(refinedEdges, lnn2gnn)
	}
}

func (s *Surface) refineSegments(refinedEdges [][]int, lnn2gnn []int) {
	var (
		newSEN []int
		newBID []int
	)
	for i := 0; i < s.NFacets(); i++ {
		f := s.Facet(i)
		mid := s.mesh.NewVertexOn(f[0], f[1], refinedEdges, lnn2gnn)
		if mid < 0 {
			continue
		}
		s.SENList[2*i] = f[0]
		s.SENList[2*i+1] = mid
		newSEN = append(newSEN, mid, f[1])
		newBID = append(newBID, s.BoundaryID[i])
	}
	s.SENList = append(s.SENList, newSEN...)
	s.BoundaryID = append(s.BoundaryID, newBID...)
}

func (s *Surface) refineTriangles(refinedEdges [][]int, lnn2gnn []int) {
	var (
		newSEN []int
		newBID []int
		emit   = func(bid int, tri ...int) {
			newSEN = append(newSEN, tri...)
			newBID = append(newBID, bid)
		}
	)
	for i := 0; i < s.NFacets(); i++ {
		var (
			f   = s.Facet(i)
			bid = s.BoundaryID[i]
			// newVertex[k] is the midpoint of the edge opposite f[k].
			newVertex [3]int
			cnt       int
		)
		for k := 0; k < 3; k++ {
			newVertex[k] = s.mesh.NewVertexOn(f[(k+1)%3], f[(k+2)%3], refinedEdges, lnn2gnn)
			if newVertex[k] >= 0 {
				cnt++
			}
		}
		switch cnt {
		case 0:
			continue
		case 1:
			// Rotate so the split edge is opposite rot[0].
			var rot [3]int
			for j := 0; j < 3; j++ {
				if newVertex[j] >= 0 {
					rot[0], rot[1], rot[2] = f[j], f[(j+1)%3], f[(j+2)%3]
					s.replaceFacet(i, bid, rot[0], rot[1], newVertex[j])
					emit(bid, rot[0], newVertex[j], rot[2])
					break
				}
			}
		case 2:
			// Rotate so the unsplit edge is opposite rot[0]; the two
			// midpoints then sit on the edges leaving rot[0].
			for j := 0; j < 3; j++ {
				if newVertex[j] < 0 {
					var (
						rot    = [3]int{f[j], f[(j+1)%3], f[(j+2)%3]}
						v0     = newVertex[(j+1)%3]
						v1     = newVertex[(j+2)%3]
						ldiag0 = s.mesh.CalcEdgeLength(v0, rot[1])
						ldiag1 = s.mesh.CalcEdgeLength(v1, rot[2])
						offset = 1
					)
					if ldiag0 < ldiag1 {
						offset = 0
					}
					diag := [2]int{v0, v1}
					s.replaceFacet(i, bid, rot[0], v1, v0)
					emit(bid, diag[offset], rot[1], rot[2])
					emit(bid, v0, v1, rot[offset+1])
					break
				}
			}
		case 3:
			s.replaceFacet(i, bid, f[0], newVertex[2], newVertex[1])
			emit(bid, f[1], newVertex[0], newVertex[2])
			emit(bid, f[2], newVertex[1], newVertex[0])
			emit(bid, newVertex[0], newVertex[1], newVertex[2])
		}
	}
	s.SENList = append(s.SENList, newSEN...)
	s.BoundaryID = append(s.BoundaryID, newBID...)
}

func (s *Surface) replaceFacet(i, bid int, tri ...int) {
	copy(s.SENList[i*3:(i+1)*3], tri)
	s.BoundaryID[i] = bid
}
