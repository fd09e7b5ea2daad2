package cmd

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/probfit/gproc/data"
	"github.com/probfit/gproc/gp"
	"github.com/probfit/gproc/kernel"
	"github.com/probfit/gproc/likelihood"
	"github.com/probfit/gproc/params"
	"github.com/probfit/gproc/rand"
)

// sineDataset draws n points on [-3, 3] with y = sin(x) + eps,
// eps ~ N(0, noise).
func sineDataset(gen *rand.Generator, n int, noise float64) data.Dataset {
	eps := distuv.Normal{Mu: 0, Sigma: math.Sqrt(noise), Src: gen}
	x := mat.NewDense(n, 1, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		xi := -3 + 6*float64(i)/float64(n-1)
		x.Set(i, 0, xi)
		y.Set(i, 0, math.Sin(xi)+eps.Rand())
	}
	return data.Dataset{X: x, Y: y}
}

// queryGrid builds an evenly spaced (q, 1) set of test inputs on [-3, 3].
func queryGrid(q int) *mat.Dense {
	xs := mat.NewDense(q, 1, nil)
	for i := 0; i < q; i++ {
		xs.Set(i, 0, -3+6*float64(i)/float64(q-1))
	}
	return xs
}

// RunRegress fits an exact conjugate GP to noisy sine data and prints the
// posterior predictive at a small grid of query points.
func RunRegress() error {
	fmt.Printf("gproc regress (seed %d, n %d)\n", randomSeed, trainCount)

	gen := rand.NewGenerator(randomSeed)
	d := sineDataset(gen, trainCount, 0.1)

	post, err := gp.Compose(gp.NewPrior(kernel.NewRBF()), likelihood.NewGaussian())
	if err != nil {
		return err
	}
	conj := post.(*gp.ConjugatePosterior)

	store, err := gp.Initialise(conj)
	if err != nil {
		return err
	}
	store = store.Add("obs_noise", params.Scalar(0.1))
	printStore(store)

	mll, err := gp.ConjugateMLL(conj, store, d, params.Store{})
	if err != nil {
		return err
	}
	fmt.Printf("Log marginal likelihood: %.4f\n", mll)

	predict, err := conj.Predict(store, d, params.Store{})
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
