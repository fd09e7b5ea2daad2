package cmd

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/probfit/gproc/data"
	"github.com/probfit/gproc/gp"
	"github.com/probfit/gproc/kernel"
	"github.com/probfit/gproc/likelihood"
	"github.com/probfit/gproc/params"
	"github.com/probfit/gproc/rand"
)

// RunClassify fits a probit GP classifier to thresholded sine data. The
// whitened latent block is crudely set from the labels so the predictive
// probabilities track the class structure without an optimizer.
func RunClassify() error {
	fmt.Printf("gproc classify (seed %d, n %d)\n", randomSeed, trainCount)

	gen := rand.NewGenerator(randomSeed)
	raw := sineDataset(gen, trainCount, 0.05)

	y := mat.NewDense(trainCount, 1, nil)
	latent := mat.NewDense(trainCount, 1, nil)
	for i := 0; i < trainCount; i++ {
		if raw.Y.At(i, 0) > 0 {
			y.Set(i, 0, 1)
			latent.Set(i, 0, 1)
		} else {
			latent.Set(i, 0, -1)
		}
	}
	d := data.Dataset{X: raw.X, Y: y}

	post, err := gp.Compose(gp.NewPrior(kernel.NewRBF()), likelihood.NewBernoulli())
	if err != nil {
		return err
	}
	nc := post.(*gp.NonConjugatePosterior)

	store, dropped, err := gp.Complete(
		params.New(params.Pair{Key: gp.LatentKey, Val: params.Matrix(latent)}), nc, trainCount)
	if err != nil {
		return err
	}
	if verbose && len(dropped) > 0 {
		fmt.Printf("Dropped overrides: %v\n", dropped)
	}
	printStore(store)

	predict, err := nc.Predict(store, d, params.Store{})
	if err != nil {
		return err
	}

	xs := queryGrid(queryCount)
	rvs, err := predict(xs)
	if err != nil {
		return err
	}

	fmt.Printf("%8s %10s %8s\n", "x", "p(y=1)", "truth")
	for i, rv := range rvs {
		xi := xs.At(i, 0)
		truth := 0
		if math.Sin(xi) > 0 {
			truth = 1
		}
		fmt.Printf("%8.3f %10.4f %8d\n", xi, rv.P, truth)
	}
	return nil
}
