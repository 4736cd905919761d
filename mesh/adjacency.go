package mesh

import (
	"sort"

	"github.com/james-bowman/sparse"
)

// CreateAdjacency rebuilds NNList and NEList from ENList. Erased elements are
// skipped. Vertex-vertex incidence is assembled through a DOK matrix so that
// repeated edges collapse; rows come out sorted by local id, which keeps the
// refined-edge table layout deterministic across runs.
func (m *Mesh) CreateAdjacency() {
	var (
		NNodes = m.NNodes()
		nloc   = m.NLoc()
	)
	dok := sparse.NewDOK(NNodes, NNodes)
	m.NEList = make([][]int, NNodes)
	for e := 0; e < m.NElements(); e++ {
		ele := m.Element(e)
		if ele[0] < 0 {
			continue
		}
		for i := 0; i < nloc; i++ {
			m.NEList[ele[i]] = append(m.NEList[ele[i]], e)
			for j := i + 1; j < nloc; j++ {
				dok.Set(ele[i], ele[j], 1)
				dok.Set(ele[j], ele[i], 1)
			}
		}
	}
	m.NNList = make([][]int, NNodes)
	csr := dok.ToCSR()
	for i := 0; i < NNodes; i++ {
		csr.DoRowNonZero(i, func(_, j int, _ float64) {
			m.NNList[i] = append(m.NNList[i], j)
		})
		sort.Ints(m.NNList[i])
	}
}
