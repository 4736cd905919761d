package refine

import (
	"sort"
	"testing"

	"github.com/meshadapt/goamr/geometry"
	"github.com/meshadapt/goamr/mesh"
	"github.com/stretchr/testify/assert"
)

func liveElements(m *mesh.Mesh) (live [][]int) {
	for e := 0; e < m.NElements(); e++ {
		n := m.Element(e)
		if n[0] >= 0 {
			live = append(live, n)
		}
	}
	return
}

// totalMeasure sums the signed areas or volumes of the live elements under
// the orientation sampled from the first of them.
func totalMeasure(m *mesh.Mesh) (total float64) {
	live := liveElements(m)
	if len(live) == 0 {
		return 0
	}
	if m.Dim() == 2 {
		p := geometry.NewProperty2D(m.NodeCoords(live[0][0]), m.NodeCoords(live[0][1]),
			m.NodeCoords(live[0][2]))
		for _, n := range live {
			total += p.Area(m.NodeCoords(n[0]), m.NodeCoords(n[1]), m.NodeCoords(n[2]))
		}
		return
	}
	p := geometry.NewProperty3D(m.NodeCoords(live[0][0]), m.NodeCoords(live[0][1]),
		m.NodeCoords(live[0][2]), m.NodeCoords(live[0][3]))
	for _, n := range live {
		total += p.Volume(m.NodeCoords(n[0]), m.NodeCoords(n[1]),
			m.NodeCoords(n[2]), m.NodeCoords(n[3]))
	}
	return
}

// checkConforming verifies every facet of the live elements is shared by at
// most two of them, and that each element's measure is strictly positive.
func checkConforming(t *testing.T, m *mesh.Mesh) {
	t.Helper()
	var (
		live   = liveElements(m)
		snloc  = m.Dim()
		facets = make(map[[3]int]int)
	)
	for _, n := range live {
		for drop := 0; drop < len(n); drop++ {
			var key [3]int
			pos := 0
			for i, v := range n {
				if i != drop {
					key[pos] = v
					pos++
				}
			}
			sort.Ints(key[:snloc])
			facets[key]++
		}
	}
	for key, cnt := range facets {
		assert.LessOrEqual(t, cnt, 2, "facet %v shared by %d elements", key, cnt)
	}

	if m.Dim() == 2 {
		p := geometry.NewProperty2D(m.NodeCoords(live[0][0]), m.NodeCoords(live[0][1]),
			m.NodeCoords(live[0][2]))
		for _, n := range live {
			assert.Greater(t, p.Area(m.NodeCoords(n[0]), m.NodeCoords(n[1]),
				m.NodeCoords(n[2])), 0.)
		}
	} else {
		p := geometry.NewProperty3D(m.NodeCoords(live[0][0]), m.NodeCoords(live[0][1]),
			m.NodeCoords(live[0][2]), m.NodeCoords(live[0][3]))
		for _, n := range live {
			assert.Greater(t, p.Volume(m.NodeCoords(n[0]), m.NodeCoords(n[1]),
				m.NodeCoords(n[2]), m.NodeCoords(n[3])), 0.)
		}
	}
}

// maxLiveEdgeLength is the longest metric-space edge over live elements.
func maxLiveEdgeLength(m *mesh.Mesh) (lmax float64) {
	for _, n := range liveElements(m) {
		for j := 0; j < len(n); j++ {
			for k := j + 1; k < len(n); k++ {
				if l := m.CalcEdgeLength(n[j], n[k]); l > lmax {
					lmax = l
				}
			}
		}
	}
	return
}

func hasVertexAt(m *mesh.Mesh, want []float64, tol float64) bool {
	for i := 0; i < m.NNodes(); i++ {
		x := m.NodeCoords(i)
		d := 0.
		for k := range want {
			d += (x[k] - want[k]) * (x[k] - want[k])
		}
		if d < tol*tol {
			return true
		}
	}
	return false
}
