package cmd

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/probfit/gproc/gp"
	"github.com/probfit/gproc/kernel"
	"github.com/probfit/gproc/likelihood"
	"github.com/probfit/gproc/params"
	"github.com/probfit/gproc/rand"
)

var numBasis int

func init() {
	spectralCmd.Flags().IntVarP(&numBasis, "basis", "b", 32, "Number of spectral basis frequencies")
}

// RunSpectral fits a sparse-spectrum GP to noisy sine data. Training cost
// scales with the basis count rather than the training set size.
func RunSpectral() error {
	fmt.Printf("gproc spectral (seed %d, n %d, basis %d)\n", randomSeed, trainCount, numBasis)

	gen := rand.NewGenerator(randomSeed)
	d := sineDataset(gen, trainCount, 0.1)

	post, err := gp.Compose(
		gp.NewPrior(kernel.ToSpectral(kernel.NewRBF(), numBasis, 1)),
		likelihood.NewGaussian())
	if err != nil {
		return err
	}
	spec := post.(*gp.SpectralPosterior)

	store, err := gp.InitialiseSeeded(randomSeed, spec)
	if err != nil {
		return err
	}
	store = store.Add("obs_noise", params.Scalar(0.1))
	printStore(store)

	mll, err := gp.SpectralMLL(spec, store, d, params.Store{})
	if err != nil {
		return err
	}
	fmt.Printf("Log marginal likelihood: %.4f\n", mll)

	predict, err := spec.Predict(store, d, params.Store{})
	if err != nil {
		return err
	}

	xs := queryGrid(queryCount)
	rv, err := predict(xs)
	if err != nil {
		return err
	}

	mean := rv.Mean(nil)
	var cov mat.SymDense
	rv.CovarianceMatrix(&cov)
	fmt.Printf("%8s %10s %10s %10s\n", "x", "mean", "std", "truth")
	for i := 0; i < queryCount; i++ {
		xi := xs.At(i, 0)
		fmt.Printf("%8.3f %10.4f %10.4f %10.4f\n",
			xi, mean[i], math.Sqrt(cov.At(i, i)), math.Sin(xi))
	}
	return nil
}
