package mesh

import (
	"fmt"
	"log"
	"sort"

	metis "github.com/notargets/go-metis"
)

// PartitionConfig holds configuration for mesh partitioning
type PartitionConfig struct {
	NumPartitions   int32
	ImbalanceFactor float32 // e.g., 1.05 for 5% imbalance
	UseEdgeWeights  bool
	Objective       string // "cut" or "vol"
}

// DefaultPartitionConfig returns default partitioning configuration
func DefaultPartitionConfig(nparts int32) *PartitionConfig {
	return &PartitionConfig{
		NumPartitions:   nparts,
		ImbalanceFactor: 1.05,
		UseEdgeWeights:  true,
		Objective:       "vol", // minimize communication volume
	}
}

// PartitionElements assigns each element of m to one of cfg.NumPartitions
// parts with METIS, over the element adjacency graph in which two elements
// are connected when they share a facet. Edge weights are facet vertex
// counts, so the k-way objective tracks halo exchange volume.
func PartitionElements(m *Mesh, cfg *PartitionConfig) (etop []int, err error) {
	NE := m.NElements()
	etop = make([]int, NE)
	if cfg.NumPartitions <= 1 {
		return
	}

	xadj, adjncy, adjwgt := buildMetisGraph(m)

	opts := make([]int32, metis.NoOptions)
	if err = metis.SetDefaultOptions(opts); err != nil {
		return nil, fmt.Errorf("failed to set METIS options: %w", err)
	}
	if cfg.Objective == "vol" {
		opts[metis.OptionObjType] = metis.ObjTypeVol
	} else {
		opts[metis.OptionObjType] = metis.ObjTypeCut
	}
	ubvec := []float32{cfg.ImbalanceFactor}

	var adjwgtPtr []int32
	if cfg.UseEdgeWeights {
		adjwgtPtr = adjwgt
	}

	part, objval, err := metis.PartGraphKwayWeighted(
		xadj, adjncy, nil, adjwgtPtr,
		cfg.NumPartitions, nil, ubvec, opts,
	)
	if err != nil {
		return nil, fmt.Errorf("METIS partitioning failed: %w", err)
	}
	for i := 0; i < NE; i++ {
		etop[i] = int(part[i])
	}
	log.Printf("partitioned %d elements into %d parts, objective %d",
		NE, cfg.NumPartitions, objval)
	return
}

// buildMetisGraph converts the element facet adjacency to METIS CSR format.
func buildMetisGraph(m *Mesh) (xadj, adjncy, adjwgt []int32) {
	var (
		NE    = m.NElements()
		snloc = m.NDim // vertices per facet
	)
	xadj = make([]int32, NE+1)
	for e := 0; e < NE; e++ {
		var (
			shared = make(map[int]int)
			nbrs   []int
		)
		for _, v := range m.Element(e) {
			for _, e2 := range m.NEList[v] {
				if e2 != e {
					shared[e2]++
				}
			}
		}
		for e2, n := range shared {
			if n == snloc {
				nbrs = append(nbrs, e2)
			}
		}
		sort.Ints(nbrs)
		for _, e2 := range nbrs {
			adjncy = append(adjncy, int32(e2))
			adjwgt = append(adjwgt, int32(snloc))
		}
		xadj[e+1] = int32(len(adjncy))
	}
	return
}

// Distribution is the per-rank decomposition of a global mesh. Rank r keeps
// every element that touches a vertex it owns, so interface elements are
// replicated on each rank sharing them; the replicas carry the one-deep
// vertex halo the exchange lists describe.
type Distribution struct {
	Meshes []*Mesh
	Owner  [][]int // per rank: owning rank of each local vertex
	L2G    [][]int // per rank: local to global vertex id
}

// Distribute builds per-rank submeshes from an element partition. A vertex is
// owned by the lowest part among the elements touching it; local vertex ids
// are assigned in ascending global order on every rank, which makes the
// pairwise Send and Recv lists agree without negotiation.
func Distribute(m *Mesh, etop []int, net *Network) (d *Distribution) {
	NP := net.NP
	d = &Distribution{
		Meshes: make([]*Mesh, NP),
		Owner:  make([][]int, NP),
		L2G:    make([][]int, NP),
	}

	owner := make([]int, m.NNodes())
	for v := range owner {
		owner[v] = NP
		for _, e := range m.NEList[v] {
			if etop[e] < owner[v] {
				owner[v] = etop[e]
			}
		}
	}

	// keep[r] is the global vertex set of rank r: vertices of every element
	// with at least one vertex owned by r.
	keep := make([]map[int]bool, NP)
	elems := make([][]int, NP)
	for r := 0; r < NP; r++ {
		keep[r] = make(map[int]bool)
	}
	for e := 0; e < m.NElements(); e++ {
		ele := m.Element(e)
		touched := make(map[int]bool)
		for _, v := range ele {
			touched[owner[v]] = true
		}
		for r := range touched {
			elems[r] = append(elems[r], e)
			for _, v := range ele {
				keep[r][v] = true
			}
		}
	}

	for r := 0; r < NP; r++ {
		l2g := make([]int, 0, len(keep[r]))
		for v := range keep[r] {
			l2g = append(l2g, v)
		}
		sort.Ints(l2g)
		g2l := make(map[int]int, len(l2g))
		for l, g := range l2g {
			g2l[g] = l
		}

		var (
			nloc   = m.NLoc()
			coords = make([]float64, len(l2g)*m.NDim)
			metric = make([]float64, len(l2g)*m.NDim*m.NDim)
			enlist = make([]int, 0, len(elems[r])*nloc)
		)
		for l, g := range l2g {
			copy(coords[l*m.NDim:(l+1)*m.NDim], m.NodeCoords(g))
			copy(metric[l*m.NDim*m.NDim:(l+1)*m.NDim*m.NDim], m.NodeMetric(g))
		}
		for _, e := range elems[r] {
			for _, v := range m.Element(e) {
				enlist = append(enlist, g2l[v])
			}
		}

		sub := NewMesh(m.NDim, coords, enlist)
		copy(sub.Metric, metric)
		sub.SetComm(net.Comm(r))

		localOwner := make([]int, len(l2g))
		for l, g := range l2g {
			localOwner[l] = owner[g]
			if owner[g] != r {
				sub.RecvHalo[l] = true
			}
		}
		// Recv[p]: halo vertices owned by p, in ascending global order.
		for l, g := range l2g {
			if p := owner[g]; p != r {
				sub.Recv[p] = append(sub.Recv[p], l)
			}
		}
		// Send[p]: owned vertices present in p's vertex set, same order.
		for l, g := range l2g {
			if owner[g] != r {
				continue
			}
			for p := 0; p < NP; p++ {
				if p != r && keep[p][g] {
					sub.Send[p] = append(sub.Send[p], l)
					sub.SendHalo[l] = true
				}
			}
		}

		d.Meshes[r] = sub
		d.Owner[r] = localOwner
		d.L2G[r] = l2g
	}
	return
}
