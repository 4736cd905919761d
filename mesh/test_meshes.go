package mesh

// Canonical meshes used across the test suites and the command line demo.

// NewSingleTriangleMesh is the unit right triangle.
func NewSingleTriangleMesh() *Mesh {
	return NewMesh(2,
		[]float64{
			0, 0,
			1, 0,
			0, 1,
		},
		[]int{0, 1, 2})
}

// NewUnitSquareMesh is the unit square split along the main diagonal.
func NewUnitSquareMesh() *Mesh {
	return NewMesh(2,
		[]float64{
			0, 0,
			1, 0,
			1, 1,
			0, 1,
		},
		[]int{
			0, 1, 2,
			0, 2, 3,
		})
}

// NewBoxMesh2D is an nx by ny structured grid of squares, each split along
// its main diagonal, covering [0,1]^2.
func NewBoxMesh2D(nx, ny int) *Mesh {
	var (
		coords []float64
		enlist []int
		vid    = func(i, j int) int { return j*(nx+1) + i }
	)
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			coords = append(coords, float64(i)/float64(nx), float64(j)/float64(ny))
		}
	}
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			var (
				v00 = vid(i, j)
				v10 = vid(i+1, j)
				v11 = vid(i+1, j+1)
				v01 = vid(i, j+1)
			)
			enlist = append(enlist, v00, v10, v11)
			enlist = append(enlist, v00, v11, v01)
		}
	}
	return NewMesh(2, coords, enlist)
}

// NewSingleTetMesh is the unit right tetrahedron.
func NewSingleTetMesh() *Mesh {
	return NewMesh(3,
		[]float64{
			0, 0, 0,
			1, 0, 0,
			0, 1, 0,
			0, 0, 1,
		},
		[]int{0, 1, 2, 3})
}

// NewUnitCubeMesh is the unit cube split into six tetrahedra fanned around
// the main diagonal, all positively oriented.
func NewUnitCubeMesh() *Mesh {
	return NewMesh(3,
		[]float64{
			0, 0, 0,
			1, 0, 0,
			0, 1, 0,
			1, 1, 0,
			0, 0, 1,
			1, 0, 1,
			0, 1, 1,
			1, 1, 1,
		},
		[]int{
			0, 1, 3, 7,
			0, 3, 2, 7,
			0, 2, 6, 7,
			0, 6, 4, 7,
			0, 4, 5, 7,
			0, 5, 1, 7,
		})
}
