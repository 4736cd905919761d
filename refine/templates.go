package refine

// refineElement2D applies the triangle subdivision templates to element n and
// appends the children to thread tid's buffer, returning the child count.
// newVertex[j] is the midpoint of the edge opposite vertex j.
func (r *Refiner) refineElement2D(n []int, refinedEdges [][]int, tid int,
	newElements [][]int) (emitted int) {
	var (
		m         = r.mesh
		newVertex [3]int
		cnt       int
	)
	newVertex[0] = m.NewVertexOn(n[1], n[2], refinedEdges, r.lnn2gnn)
	newVertex[1] = m.NewVertexOn(n[2], n[0], refinedEdges, r.lnn2gnn)
	newVertex[2] = m.NewVertexOn(n[0], n[1], refinedEdges, r.lnn2gnn)
	for j := 0; j < 3; j++ {
		if newVertex[j] >= 0 {
			cnt++
		}
	}
	emit := func(tri ...int) {
		newElements[tid] = append(newElements[tid], tri...)
		emitted++
	}

	switch cnt {
	case 0:
		return 0
	case 1:
		// Bisect across the split edge.
		for j := 0; j < 3; j++ {
			if newVertex[j] >= 0 {
				var (
					vertexID   = newVertex[j]
					rotatedEle = [3]int{n[j], n[(j+1)%3], n[(j+2)%3]}
				)
				emit(rotatedEle[0], rotatedEle[1], vertexID)
				emit(rotatedEle[0], vertexID, rotatedEle[2])
				break
			}
		}
	case 2:
		// Corner triangle plus a quad cut along its shorter diagonal.
		for j := 0; j < 3; j++ {
			if newVertex[j] < 0 {
				var (
					vertexID   = [2]int{newVertex[(j+1)%3], newVertex[(j+2)%3]}
					rotatedEle = [3]int{n[j], n[(j+1)%3], n[(j+2)%3]}
					ldiag0     = r.edgeLength(vertexID[0], rotatedEle[1])
					ldiag1     = r.edgeLength(vertexID[1], rotatedEle[2])
					offset     = 1
				)
				if ldiag0 < ldiag1 {
					offset = 0
				}
				emit(rotatedEle[0], vertexID[1], vertexID[0])
				emit(vertexID[offset], rotatedEle[1], rotatedEle[2])
				emit(vertexID[0], vertexID[1], rotatedEle[offset+1])
				break
			}
		}
	case 3:
		// Regular 1:4.
		emit(n[0], newVertex[2], newVertex[1])
		emit(n[1], newVertex[0], newVertex[2])
		emit(n[2], newVertex[1], newVertex[0])
		emit(newVertex[0], newVertex[1], newVertex[2])
	}
	return
}

// refineElement3D applies the tetrahedron subdivision templates. Split edges
// are enumerated over vertex pairs (j,k), j<k, which fixes the newVertex
// ordering the 1:8 template relies on. Closure marking guarantees the split
// count is 0, 1, an opposite pair, a fully split face, or 6.
func (r *Refiner) refineElement3D(n []int, refinedEdges [][]int, tid int,
	newElements [][]int) (emitted int) {
	var (
		m          = r.mesh
		newVertex  []int
		splitEdges []Edge
	)
	for j := 0; j < 4; j++ {
		for k := j + 1; k < 4; k++ {
			if vertexID := m.NewVertexOn(n[j], n[k], refinedEdges, r.lnn2gnn); vertexID >= 0 {
				newVertex = append(newVertex, vertexID)
				splitEdges = append(splitEdges, NewEdge(n[j], n[k]))
			}
		}
	}
	emit := func(tet ...int) {
		newElements[tid] = append(newElements[tid], tet...)
		emitted++
	}

	switch len(newVertex) {
	case 0:
		return 0
	case 1:
		// 1:2 across the plane of the midpoint and the opposite edge.
		var oe [2]int
		for j, pos := 0, 0; j < 4; j++ {
			if !splitEdges[0].Contains(n[j]) {
				oe[pos] = n[j]
				pos++
			}
		}
		emit(splitEdges[0].First, newVertex[0], oe[0], oe[1])
		emit(splitEdges[0].Second, newVertex[0], oe[0], oe[1])
	case 2:
		// Opposite edges split: 1:4.
		emit(splitEdges[0].First, newVertex[0], splitEdges[1].First, newVertex[1])
		emit(splitEdges[0].First, newVertex[0], splitEdges[1].Second, newVertex[1])
		emit(splitEdges[0].Second, newVertex[0], splitEdges[1].First, newVertex[1])
		emit(splitEdges[0].Second, newVertex[0], splitEdges[1].Second, newVertex[1])
	case 3:
		// One face fully split: walk the face boundary through the three
		// midpoints, with the off-face vertex closing every child.
		mm := [7]int{-1, -1, -1, -1, -1, -1, -1}
		mm[0] = splitEdges[0].First
		mm[1] = newVertex[0]
		mm[2] = splitEdges[0].Second
		if splitEdges[1].Contains(mm[2]) {
			mm[3] = newVertex[1]
			if splitEdges[1].First != mm[2] {
				mm[4] = splitEdges[1].First
			} else {
				mm[4] = splitEdges[1].Second
			}
			mm[5] = newVertex[2]
		} else {
			mm[3] = newVertex[2]
			if splitEdges[2].First != mm[2] {
				mm[4] = splitEdges[2].First
			} else {
				mm[4] = splitEdges[2].Second
			}
			mm[5] = newVertex[1]
		}
		for j := 0; j < 4; j++ {
			if n[j] != mm[0] && n[j] != mm[2] && n[j] != mm[4] {
				mm[6] = n[j]
				break
			}
		}
		emit(mm[0], mm[1], mm[5], mm[6])
		emit(mm[1], mm[2], mm[3], mm[6])
		emit(mm[5], mm[3], mm[4], mm[6])
		emit(mm[1], mm[3], mm[5], mm[6])
	case 6:
		// Regular 1:8: four corner tets and four from the inner octahedron.
		emit(n[0], newVertex[0], newVertex[1], newVertex[2])
		emit(n[1], newVertex[3], newVertex[0], newVertex[4])
		emit(n[2], newVertex[1], newVertex[3], newVertex[5])
		emit(newVertex[0], newVertex[3], newVertex[1], newVertex[4])
		emit(newVertex[0], newVertex[4], newVertex[1], newVertex[2])
		emit(newVertex[1], newVertex[3], newVertex[5], newVertex[4])
		emit(newVertex[1], newVertex[4], newVertex[5], newVertex[2])
		emit(newVertex[2], newVertex[4], newVertex[5], n[3])
	}
	return
}
