package cmd

import (
	"fmt"
	"io/ioutil"
	"log"
	"os"

	"github.com/meshadapt/goamr/mesh"
	"github.com/meshadapt/goamr/params"
	"github.com/meshadapt/goamr/refine"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type ModelAdapt struct {
	ParamFile string
	MeshName  string
	BoxSize   int
}

// adaptCmd represents the adapt command
var adaptCmd = &cobra.Command{
	Use:   "adapt",
	Short: "Refine a mesh against a metric tensor field",
	Long: `Refine one of the built-in meshes against a metric field for Levels
sweeps, each bisecting every edge longer than LMax in metric space`,
	Run: func(cmd *cobra.Command, args []string) {
		defer startProfile(cmd).Stop()
		ma := &ModelAdapt{}
		ma.ParamFile, _ = cmd.Flags().GetString("inputParametersFile")
		ma.MeshName, _ = cmd.Flags().GetString("mesh")
		ma.BoxSize, _ = cmd.Flags().GetInt("boxSize")
		ap := processAdaptInput(ma)
		if err := RunAdapt(ma, ap); err != nil {
			log.Fatalf("adapt failed: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(adaptCmd)
	adaptCmd.Flags().StringP("inputParametersFile", "I", "", "YAML file for input parameters like:\n\t- LMax\n\t- Levels\n\t- MetricField")
	adaptCmd.Flags().StringP("mesh", "m", "square", "built-in mesh: triangle, square, box, tet, cube")
	adaptCmd.Flags().IntP("boxSize", "b", 4, "grid dimension for the box mesh")
}

func processAdaptInput(ma *ModelAdapt) (ap *params.AdaptParameters) {
	var err error
	ap = params.DefaultAdaptParameters()
	path := ma.ParamFile
	if len(path) == 0 {
		path = cfgFile
	}
	if len(path) == 0 {
		if path, err = defaultConfigPath(); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
		if _, err = os.Stat(path); err != nil {
			// No parameter file anywhere, run on defaults.
			return
		}
	}
	var data []byte
	if data, err = ioutil.ReadFile(path); err != nil {
		panic(err)
	}
	if err = ap.Parse(data); err != nil {
		fmt.Printf("error: %s\n", err.Error())
		exampleFile := `
########################################
Title: "Boundary layer"
LMax: 1.0
Levels: 2
NumPartitions: 2
Threads: 4
MetricField: boundary-layer
TargetH: 0.25
Anisotropy: 8
########################################
`
		fmt.Printf("Example File:%s\n", exampleFile)
		os.Exit(1)
	}
	return
}

func buildMesh(ma *ModelAdapt) (*mesh.Mesh, error) {
	switch ma.MeshName {
	case "triangle":
		return mesh.NewSingleTriangleMesh(), nil
	case "square":
		return mesh.NewUnitSquareMesh(), nil
	case "box":
		return mesh.NewBoxMesh2D(ma.BoxSize, ma.BoxSize), nil
	case "tet":
		return mesh.NewSingleTetMesh(), nil
	case "cube":
		return mesh.NewUnitCubeMesh(), nil
	}
	return nil, fmt.Errorf("unknown mesh %q", ma.MeshName)
}

func attachMetric(m *mesh.Mesh, ap *params.AdaptParameters) error {
	switch ap.MetricField {
	case "uniform":
		m.SetUniformMetric(ap.TargetH)
	case "boundary-layer":
		m.SetBoundaryLayerMetric(ap.TargetH, ap.Anisotropy)
	}
	return m.VerifyMetric()
}

func RunAdapt(ma *ModelAdapt, ap *params.AdaptParameters) error {
	ap.Print()
	global, err := buildMesh(ma)
	if err != nil {
		return err
	}
	if err = attachMetric(global, ap); err != nil {
		return err
	}
	log.Printf("initial mesh: %d vertices, %d elements", global.NNodes(), global.NElements())

	if ap.NumPartitions == 1 {
		if err = adaptRank(global, ap); err != nil {
			return err
		}
		log.Printf("refined mesh: %d vertices, %d live elements",
			global.NNodes(), countLive(global))
		return nil
	}

	etop, err := mesh.PartitionElements(global, mesh.DefaultPartitionConfig(int32(ap.NumPartitions)))
	if err != nil {
		return err
	}
	net := mesh.NewNetwork(ap.NumPartitions)
	dist := mesh.Distribute(global, etop, net)

	var g errgroup.Group
	for r := 0; r < ap.NumPartitions; r++ {
		sub := dist.Meshes[r]
		g.Go(func() error { return adaptRank(sub, ap) })
	}
	if err = g.Wait(); err != nil {
		return err
	}
	for r, sub := range dist.Meshes {
		log.Printf("rank %d refined mesh: %d vertices, %d live elements",
			r, sub.NNodes(), countLive(sub))
	}
	return nil
}

func adaptRank(m *mesh.Mesh, ap *params.AdaptParameters) error {
	s := mesh.NewSurface(m)
	for level := 0; level < ap.Levels; level++ {
		r := refine.NewRefiner(m, s, ap.Threads)
		if err := r.Refine(ap.LMax); err != nil {
			return err
		}
	}
	return nil
}

func countLive(m *mesh.Mesh) (live int) {
	for e := 0; e < m.NElements(); e++ {
		if m.Element(e)[0] >= 0 {
			live++
		}
	}
	return
}
