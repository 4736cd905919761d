package cmd

import (
	"fmt"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "goamr",
	Short: "Anisotropic refinement of unstructured simplicial meshes",
	Long: `
Refines two and three dimensional simplicial meshes against a per-vertex
metric tensor field, in parallel over shared-memory workers and in-process
partitions.

goamr adapt -I adapt.yaml`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen once
// to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is $HOME/.goamr.yaml)")
	rootCmd.PersistentFlags().Bool("cpuprofile", false, "write a CPU profile")
}

// defaultConfigPath expands the fallback parameter file location in the
// user's home directory.
func defaultConfigPath() (path string, err error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("unable to locate home directory: %w", err)
	}
	return home + "/.goamr.yaml", nil
}

// startProfile begins CPU profiling when requested; the returned stopper is
// a no-op otherwise.
func startProfile(cmd *cobra.Command) interface{ Stop() } {
	if on, _ := cmd.Flags().GetBool("cpuprofile"); on {
		return profile.Start(profile.CPUProfile, profile.ProfilePath("."))
	}
	return nopProfile{}
}

type nopProfile struct{}

func (nopProfile) Stop() {}
