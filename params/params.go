package params

import (
	"fmt"

	"github.com/ghodss/yaml"
)

// Parameters obtained from the YAML input file
type AdaptParameters struct {
	Title         string  `yaml:"Title"`
	LMax          float64 `yaml:"LMax"`          // Edge length threshold in metric space
	Levels        int     `yaml:"Levels"`        // Number of refinement sweeps
	NumPartitions int     `yaml:"NumPartitions"` // In-process ranks
	Threads       int     `yaml:"Threads"`       // Workers per rank
	MetricField   string  `yaml:"MetricField"`   // "uniform" or "boundary-layer"
	TargetH       float64 `yaml:"TargetH"`       // Requested edge length for the metric field
	Anisotropy    float64 `yaml:"Anisotropy"`    // Wall-normal grading for boundary-layer
}

func DefaultAdaptParameters() *AdaptParameters {
	return &AdaptParameters{
		Title:         "adapt",
		LMax:          1.0,
		Levels:        1,
		NumPartitions: 1,
		Threads:       1,
		MetricField:   "uniform",
		TargetH:       0.5,
		Anisotropy:    1.0,
	}
}

func (ap *AdaptParameters) Parse(data []byte) error {
	if err := yaml.Unmarshal(data, ap); err != nil {
		return err
	}
	return ap.Validate()
}

func (ap *AdaptParameters) Validate() error {
	if !(ap.LMax > 0) {
		return fmt.Errorf("LMax must be positive, got %v", ap.LMax)
	}
	if ap.Levels < 1 {
		return fmt.Errorf("Levels must be at least 1, got %d", ap.Levels)
	}
	if ap.NumPartitions < 1 {
		return fmt.Errorf("NumPartitions must be at least 1, got %d", ap.NumPartitions)
	}
	if ap.Threads < 1 {
		return fmt.Errorf("Threads must be at least 1, got %d", ap.Threads)
	}
	switch ap.MetricField {
	case "uniform", "boundary-layer":
	default:
		return fmt.Errorf("unknown MetricField %q", ap.MetricField)
	}
	return nil
}

func (ap *AdaptParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ap.Title)
	fmt.Printf("%8.5f\t\t= LMax\n", ap.LMax)
	fmt.Printf("[%d]\t\t\t= Levels\n", ap.Levels)
	fmt.Printf("[%d]\t\t\t= NumPartitions\n", ap.NumPartitions)
	fmt.Printf("[%d]\t\t\t= Threads\n", ap.Threads)
	fmt.Printf("[%s]\t= MetricField\n", ap.MetricField)
	fmt.Printf("%8.5f\t\t= TargetH\n", ap.TargetH)
	fmt.Printf("%8.5f\t\t= Anisotropy\n", ap.Anisotropy)
}
