package refine

import "fmt"

// createGlobalNumbering establishes a consistent global id per vertex. Every
// rank numbers its local vertices from an exclusive-scan offset, then the
// halo update overwrites halo copies with the owner's values, so both ends of
// every shared edge agree on which endpoint carries the lesser gnn.
func (r *Refiner) createGlobalNumbering() {
	var (
		m      = r.mesh
		NNodes = m.NNodes()
		offset = m.Comm().ExScan(NNodes)
	)
	r.lnn2gnn = make([]int, NNodes)
	for i := 0; i < NNodes; i++ {
		r.lnn2gnn[i] = offset + i
	}
	m.HaloUpdateInt(r.lnn2gnn, 1)

	r.gnn2lnn = make(map[int]int, NNodes)
	for i, gnn := range r.lnn2gnn {
		if prev, dup := r.gnn2lnn[gnn]; dup {
			panic(fmt.Sprintf("refine: vertices %d and %d share global id %d", prev, i, gnn))
		}
		r.gnn2lnn[gnn] = i
	}
}

// computeNodeOwnership records the owning rank of every vertex: local unless
// the vertex appears on a receive list.
func (r *Refiner) computeNodeOwnership() {
	m := r.mesh
	r.nodeOwner = make([]int, m.NNodes())
	for i := range r.nodeOwner {
		r.nodeOwner[i] = r.rank
	}
	for p := 0; p < r.nprocs; p++ {
		for _, v := range m.Recv[p] {
			r.nodeOwner[v] = p
		}
	}
}
