package kernel

import (
	"math"

	"github.com/pkg/errors"

	"github.com/probfit/gproc/params"
	"github.com/probfit/gproc/rand"
)

var (
	rbf *RBF
	_   Kernel = rbf // Check that RBF respects the Kernel interface.
)

// RBF is the radial basis function (squared exponential) kernel with a shared
// lengthscale across input dimensions. Its parameters are "lengthscale" and
// "variance", both initialized to 1.
type RBF struct{}

// NewRBF creates an RBF kernel.
func NewRBF() *RBF {
	return &RBF{}
}

// Kind identifies RBF as an ordinary stationary kernel.
func (k *RBF) Kind() Kind {
	return Stationary
}

// Initialise returns the default RBF parameters. The generator is unused:
// RBF initialization is deterministic.
func (k *RBF) Initialise(gen *rand.Generator) (params.Store, error) {
	return params.New(
		params.Pair{Key: "lengthscale", Val: params.Scalar(1.0)},
		params.Pair{Key: "variance", Val: params.Scalar(1.0)},
	).Sort(), nil
}

// Cov evaluates variance * exp(-0.5 * ||x-y||^2 / lengthscale^2).
func (k *RBF) Cov(x, y []float64, p params.Store) (float64, error) {
	if len(x) != len(y) {
		return 0, errors.Errorf("Point dimensions differ: %d vs %d", len(x), len(y))
	}

	ell, err := p.Float("lengthscale")
	if err != nil {
		return 0, errors.Wrap(err, "RBF covariance")
	}
	variance, err := p.Float("variance")
	if err != nil {
		return 0, errors.Wrap(err, "RBF covariance")
	}

	sq := 0.0
	for i := range x {
		d := (x[i] - y[i]) / ell
		sq += d * d
	}
	return variance * math.Exp(-0.5*sq), nil
}
