package refine

import "github.com/meshadapt/goamr/utils"

// collectClosureMarks inspects one tetrahedron's split set and posts the
// extra edge marks needed to land it on a subdivision template. Requests are
// addressed to the worker owning the table row of the lesser-gnn endpoint;
// duplicate requests for one edge collapse when the owner applies them.
func (r *Refiner) collectClosureMarks(e int, refinedEdges [][]int,
	marks *utils.MailBox[[2]int], vmap *utils.PartitionMap, tid int) {
	var (
		m = r.mesh
		n = m.Element(e)
	)
	if n[0] < 0 {
		return
	}

	var splitSet []Edge
	for j := 0; j < r.nloc; j++ {
		for k := j + 1; k < r.nloc; k++ {
			if m.NewVertexOn(n[j], n[k], refinedEdges, r.lnn2gnn) >= 0 {
				splitSet = append(splitSet, NewEdge(n[j], n[k]))
			}
		}
	}

	post := func(n0, n1 int) {
		if r.lnn2gnn[n0] > r.lnn2gnn[n1] {
			n0, n1 = n1, n0
		}
		dest, _, _ := vmap.GetBucket(n0)
		marks.PostMessage(tid, dest, [2]int{n0, n1})
	}
	markUnsplit := func() {
		for j := 0; j < r.nloc; j++ {
			for k := j + 1; k < r.nloc; k++ {
				test := NewEdge(n[j], n[k])
				split := false
				for _, s := range splitSet {
					if s == test {
						split = true
						break
					}
				}
				if !split {
					post(n[j], n[k])
				}
			}
		}
	}

	switch len(splitSet) {
	case 0, 1, 6:
		// Already a template.
	case 2:
		// Two split edges sharing a vertex would give an irregular 1:3
		// subdivision; split the edge joining their far ends. Opposite
		// edges are the 1:4 template and stand.
		if n0 := splitSet[0].Connected(splitSet[1]); n0 >= 0 {
			n1 := splitSet[0].Second
			if n0 == splitSet[0].Second {
				n1 = splitSet[0].First
			}
			n2 := splitSet[1].Second
			if n0 == splitSet[1].Second {
				n2 = splitSet[1].First
			}
			post(n1, n2)
		}
	case 3:
		// Only three splits bounding one face subdivide cleanly. Any other
		// arrangement escalates to the full 1:8.
		shared := make(map[int]bool)
		for j := 0; j < 3; j++ {
			for k := j + 1; k < 3; k++ {
				if nid := splitSet[j].Connected(splitSet[k]); nid >= 0 {
					shared[nid] = true
				}
			}
		}
		if len(shared) != 3 {
			markUnsplit()
		}
	case 4, 5:
		markUnsplit()
	}
}
