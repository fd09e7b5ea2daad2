package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/probfit/gproc/params"
)

var verbose bool
var randomSeed int64
var trainCount int
var queryCount int

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gproc",
	Short: "Gaussian process regression and classification",
	Long: `gproc fits and queries Gaussian process models.
Among other features:

  - Exact conjugate regression with a Gaussian likelihood
  - Probit classification over a whitened latent function
  - Sparse-spectrum regression for larger training sets
`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var regressCmd = &cobra.Command{
	Use:   "regress",
	Short: "Exact GP regression on a noisy sine curve",
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunRegress()
	},
}

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Probit GP classification on thresholded sine data",
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunClassify()
	},
}

var spectralCmd = &cobra.Command{
	Use:   "spectral",
	Short: "Sparse-spectrum GP regression on a noisy sine curve",
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunSpectral()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging (default is much more parsimonious)")
	rootCmd.PersistentFlags().Int64VarP(&randomSeed, "seed", "r", 1, "Random seed to use")
	rootCmd.PersistentFlags().IntVarP(&trainCount, "train", "n", 40, "Number of training points")
	rootCmd.PersistentFlags().IntVarP(&queryCount, "query", "q", 9, "Number of query points")

	rootCmd.AddCommand(regressCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(spectralCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// printStore dumps scalar hyperparameters when verbose logging is on.
func printStore(p params.Store) {
	if !verbose {
		return
	}
	for _, k := range p.Keys() {
		if v, err := p.Float(k); err == nil {
			fmt.Printf("  %-12s %.4f\n", k, v)
		} else {
			fmt.Printf("  %-12s (non-scalar)\n", k)
		}
	}
}
