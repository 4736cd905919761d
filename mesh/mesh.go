package mesh

import (
	"fmt"

	"github.com/meshadapt/goamr/geometry"
)

// Mesh is an unstructured simplicial mesh in two or three dimensions with
// flat backing storage. Vertices carry coordinates and an anisotropic metric
// tensor; elements are (NDim+1)-tuples of local vertex ids stored
// contiguously in ENList. A leading vertex id of -1 marks an erased element;
// erased elements keep their slot.
type Mesh struct {
	NDim int

	Coords []float64 // NDim reals per vertex
	Metric []float64 // NDim*NDim reals per vertex, row-major SPD tensor
	ENList []int     // NDim+1 vertex ids per element

	// Vertex-to-vertex and vertex-to-element incidence, rebuilt by
	// CreateAdjacency after bulk connectivity changes.
	NNList [][]int
	NEList [][]int

	// Per-rank exchange lists for the one-deep vertex halo. Send[p] holds
	// local ids of owned vertices rank p reads; Recv[p] holds local ids of
	// halo vertices owned by p. Pairwise order is consistent across ranks.
	Send     [][]int
	Recv     [][]int
	SendHalo map[int]bool
	RecvHalo map[int]bool

	comm *Comm
}

// NewMesh builds a mesh from flat coordinate and connectivity storage and
// constructs its adjacency. The metric is initialised to zero; callers attach
// a field before refining.
func NewMesh(ndim int, coords []float64, enlist []int) (m *Mesh) {
	if ndim != 2 && ndim != 3 {
		panic(fmt.Sprintf("mesh: unsupported dimension %d", ndim))
	}
	m = &Mesh{
		NDim:     ndim,
		Coords:   coords,
		Metric:   make([]float64, ndim*ndim*(len(coords)/ndim)),
		ENList:   enlist,
		SendHalo: make(map[int]bool),
		RecvHalo: make(map[int]bool),
	}
	m.SetComm(nil)
	m.CreateAdjacency()
	return
}

// SetComm attaches the rank communicator and sizes the exchange lists.
func (m *Mesh) SetComm(c *Comm) {
	m.comm = c
	NP := c.Size()
	if len(m.Send) != NP {
		m.Send = make([][]int, NP)
		m.Recv = make([][]int, NP)
	}
}

func (m *Mesh) Comm() *Comm { return m.comm }
func (m *Mesh) Rank() int   { return m.comm.Rank() }
func (m *Mesh) NProcs() int { return m.comm.Size() }

func (m *Mesh) Dim() int       { return m.NDim }
func (m *Mesh) NLoc() int      { return m.NDim + 1 }
func (m *Mesh) NNodes() int    { return len(m.Coords) / m.NDim }
func (m *Mesh) NElements() int { return len(m.ENList) / m.NLoc() }

// Element returns the vertex tuple of element i as a view into ENList.
func (m *Mesh) Element(i int) []int {
	nloc := m.NLoc()
	return m.ENList[i*nloc : (i+1)*nloc]
}

func (m *Mesh) NodeCoords(i int) []float64 {
	return m.Coords[i*m.NDim : (i+1)*m.NDim]
}

func (m *Mesh) NodeMetric(i int) []float64 {
	dd := m.NDim * m.NDim
	return m.Metric[i*dd : (i+1)*dd]
}

// CalcEdgeLength measures edge (u,v) in metric space using the mean of the
// endpoint tensors. The result is symmetric in exact arithmetic but not
// guaranteed bit-exact under argument swap; callers that need identical
// decisions across partitions order the arguments by global index.
func (m *Mesh) CalcEdgeLength(u, v int) float64 {
	var (
		d    = m.NDim
		mbuf [9]float64
		mu   = m.NodeMetric(u)
		mv   = m.NodeMetric(v)
	)
	for i := 0; i < d*d; i++ {
		mbuf[i] = 0.5 * (mu[i] + mv[i])
	}
	return geometry.Length(m.NodeCoords(u), m.NodeCoords(v), mbuf[:d*d])
}

// NewVertexOn looks up the midpoint vertex minted on edge (u,v) in the
// refined-edge table. The table is keyed by the lesser-gnn endpoint, aligned
// with that vertex's NNList row. Returns -1 when the edge is unrefined; a
// mark sentinel is returned as stored, so callers during closure see marked
// edges as split.
func (m *Mesh) NewVertexOn(u, v int, refinedEdges [][]int, lnn2gnn []int) int {
	if lnn2gnn[u] > lnn2gnn[v] {
		u, v = v, u
	}
	for k, nb := range m.NNList[u] {
		if nb == v {
			return refinedEdges[u][2*k]
		}
	}
	panic(fmt.Sprintf("mesh: edge (%d,%d) not present in NNList", u, v))
}

// EraseElement marks element i erased. Its slot is retained.
func (m *Mesh) EraseElement(i int) {
	m.ENList[i*m.NLoc()] = -1
}

// HaloUpdateInt synchronises an int-valued vertex buffer across the halo:
// owners push their entries, halo copies are overwritten. block is the number
// of entries per vertex.
func (m *Mesh) HaloUpdateInt(buf []int, block int) {
	NP := m.comm.Size()
	if NP == 1 {
		return
	}
	sendTo := make([][]int, NP)
	recvFrom := make([]bool, NP)
	for p := 0; p < NP; p++ {
		if len(m.Send[p]) > 0 {
			payload := make([]int, 0, block*len(m.Send[p]))
			for _, v := range m.Send[p] {
				payload = append(payload, buf[v*block:(v+1)*block]...)
			}
			sendTo[p] = payload
		}
		recvFrom[p] = len(m.Recv[p]) > 0
	}
	got := m.comm.SendRecv(sendTo, recvFrom)
	for p := 0; p < NP; p++ {
		if got[p] == nil {
			continue
		}
		if len(got[p]) != block*len(m.Recv[p]) {
			panic(fmt.Sprintf("mesh: halo update from rank %d carries %d entries, want %d",
				p, len(got[p]), block*len(m.Recv[p])))
		}
		for k, v := range m.Recv[p] {
			copy(buf[v*block:(v+1)*block], got[p][k*block:(k+1)*block])
		}
	}
}
