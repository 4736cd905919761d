package refine

import (
	"sync"
	"testing"

	"github.com/meshadapt/goamr/mesh"
	"github.com/stretchr/testify/assert"
)

// TestRefineAcrossHalo splits the unit square diagonal, which lies on the
// interface of a two rank decomposition. Both ranks must mint the shared
// midpoint, agree on its ownership, and extend their exchange lists in the
// same pairwise order.
func TestRefineAcrossHalo(t *testing.T) {
	global := mesh.NewUnitSquareMesh()
	global.SetUniformMetric(1)

	var (
		net      = mesh.NewNetwork(2)
		d        = mesh.Distribute(global, []int{0, 1}, net)
		refiners = make([]*Refiner, 2)
		wg       sync.WaitGroup
	)
	wg.Add(2)
	for r := 0; r < 2; r++ {
		go func(r int) {
			defer wg.Done()
			refiners[r] = NewRefiner(d.Meshes[r], nil, 2)
			if err := refiners[r].Refine(1); err != nil {
				t.Error(err)
			}
		}(r)
	}
	wg.Wait()

	var (
		m0 = d.Meshes[0]
		m1 = d.Meshes[1]
	)
	{ // Rank 0 holds both elements, rank 1 only the interface replica
		assert.Equal(t, 5, m0.NNodes())
		assert.Equal(t, 4, len(liveElements(m0)))
		assert.Equal(t, 4, m1.NNodes())
		assert.Equal(t, 2, len(liveElements(m1)))
		checkConforming(t, m0)
		checkConforming(t, m1)
		assert.InDelta(t, 1.0, totalMeasure(m0), 1.e-12)
		assert.InDelta(t, 0.5, totalMeasure(m1), 1.e-12)
	}
	{ // Both ranks place the midpoint at the same coordinates
		assert.True(t, hasVertexAt(m0, []float64{0.5, 0.5}, 1.e-12))
		assert.True(t, hasVertexAt(m1, []float64{0.5, 0.5}, 1.e-12))
	}
	{ // The midpoint inherits the lower endpoint owner, rank 0
		assert.Equal(t, []int{0, 0, 0, 1, 0}, refiners[0].nodeOwner)
		assert.Equal(t, []int{0, 0, 1, 0}, refiners[1].nodeOwner)
	}
	{ // Exchange lists grow by the minted vertex, pairwise aligned
		assert.Equal(t, []int{0, 2, 4}, m0.Send[1])
		assert.Equal(t, []int{3}, m0.Recv[1])
		assert.True(t, m0.SendHalo[4])
		assert.Equal(t, []int{0, 1, 3}, m1.Recv[0])
		assert.Equal(t, []int{2}, m1.Send[0])
		assert.True(t, m1.RecvHalo[3])
		assert.Equal(t, len(m0.Send[1]), len(m1.Recv[0]))
	}
	{ // A halo update over the amended lists reaches the new vertex
		wg.Add(2)
		bufs := [][]int{
			{100, 101, 102, 103, 104},
			{-1, -1, 200, -1},
		}
		for r := 0; r < 2; r++ {
			go func(r int) {
				defer wg.Done()
				d.Meshes[r].HaloUpdateInt(bufs[r], 1)
			}(r)
		}
		wg.Wait()
		assert.Equal(t, []int{100, 101, 102, 200, 104}, bufs[0])
		assert.Equal(t, []int{100, 102, 200, 104}, bufs[1])
	}
}

// TestRefineAcrossHaloCube distributes the Kuhn cube over two ranks and
// refines uniformly, exercising the cross-rank termination vote of the
// closure loop. Rank 0 owns the cube diagonal so it replicates every
// element; rank 1 holds the three tetrahedra fanned past its two vertices.
func TestRefineAcrossHaloCube(t *testing.T) {
	global := mesh.NewUnitCubeMesh()
	global.SetUniformMetric(0.5)

	var (
		net = mesh.NewNetwork(2)
		d   = mesh.Distribute(global, []int{0, 0, 0, 1, 1, 1}, net)
		wg  sync.WaitGroup
	)
	assert.Equal(t, 8, d.Meshes[0].NNodes())
	assert.Equal(t, 6, d.Meshes[1].NNodes())

	wg.Add(2)
	for r := 0; r < 2; r++ {
		go func(r int) {
			defer wg.Done()
			if err := NewRefiner(d.Meshes[r], nil, 2).Refine(1); err != nil {
				t.Error(err)
			}
		}(r)
	}
	wg.Wait()

	var (
		m0 = d.Meshes[0]
		m1 = d.Meshes[1]
	)
	{ // Rank 0 replicates the whole cube: the full 3x3x3 lattice survives
		assert.Equal(t, 27, m0.NNodes())
		assert.Equal(t, 48, len(liveElements(m0)))
		checkConforming(t, m0)
		assert.InDelta(t, 1.0, totalMeasure(m0), 1.e-12)
	}
	{ // Rank 1 refines its three tetrahedra and sheds remote-only children
		assert.Equal(t, 18, m1.NNodes())
		assert.Greater(t, len(liveElements(m1)), 0)
		assert.Less(t, len(liveElements(m1)), 24)
		checkConforming(t, m1)
	}
	{ // Pairwise exchange lists stay aligned after the amendment
		assert.Equal(t, len(m0.Send[1]), len(m1.Recv[0]))
		assert.Equal(t, len(m1.Send[0]), len(m0.Recv[1]))
	}
}
