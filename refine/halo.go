package refine

import "sort"

// amendHalo extends the exchange lists with midpoint vertices minted on rank
// interfaces. A new vertex is owned by the lower-ranked owner of its parent
// edge's endpoints. Children replicated from interface parents that carry no
// locally owned vertex are erased; the survivors that straddle ranks
// contribute their new vertices to the pairwise send and receive sets, which
// are merged in parent-edge gnn order so both sides append identically.
func (r *Refiner) amendHalo(origNNodes, origNElements int, newVertices [][]DirectedEdge) {
	m := r.mesh

	lutNewVertices := make(map[int]DirectedEdge)
	for _, verts := range newVertices {
		for _, vert := range verts {
			lutNewVertices[vert.ID] = vert
			var (
				owner0 = r.nodeOwner[r.gnn2lnn[vert.First]]
				owner1 = r.nodeOwner[r.gnn2lnn[vert.Second]]
			)
			owner := owner0
			if owner1 < owner {
				owner = owner1
			}
			r.nodeOwner[vert.ID] = owner
		}
	}

	var (
		sendAdditional = make([]map[DirectedEdge]bool, r.nprocs)
		recvAdditional = make([]map[DirectedEdge]bool, r.nprocs)
	)
	for p := 0; p < r.nprocs; p++ {
		sendAdditional[p] = make(map[DirectedEdge]bool)
		recvAdditional[p] = make(map[DirectedEdge]bool)
	}

	for e := origNElements; e < m.NElements(); e++ {
		n := m.Element(e)
		if n[0] < 0 {
			continue
		}

		processes := make(map[int]bool)
		for _, v := range n {
			processes[r.nodeOwner[v]] = true
		}

		if !processes[r.rank] {
			m.EraseElement(e)
			continue
		}
		if len(processes) == 1 {
			continue
		}

		// The element straddles a halo.
		for _, v := range n {
			if v < origNNodes {
				continue
			}
			if r.nodeOwner[v] == r.rank {
				for p := range processes {
					if p != r.rank {
						sendAdditional[p][lutNewVertices[v]] = true
					}
				}
			} else {
				recvAdditional[r.nodeOwner[v]][lutNewVertices[v]] = true
			}
		}
	}

	for p := 0; p < r.nprocs; p++ {
		for _, de := range sortedEdges(sendAdditional[p]) {
			m.Send[p] = append(m.Send[p], de.ID)
			m.SendHalo[de.ID] = true
		}
		for _, de := range sortedEdges(recvAdditional[p]) {
			m.Recv[p] = append(m.Recv[p], de.ID)
			m.RecvHalo[de.ID] = true
		}
	}
}

func sortedEdges(set map[DirectedEdge]bool) (edges []DirectedEdge) {
	for de := range set {
		edges = append(edges, de)
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].Less(edges[j]) })
	return
}
