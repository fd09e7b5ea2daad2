// Package kernel defines the covariance-function capability consumed by the
// model algebra, together with the two concrete members the toolkit ships:
// a stationary RBF kernel and its random-Fourier-feature spectral
// approximation.
package kernel

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/probfit/gproc/params"
	"github.com/probfit/gproc/rand"
)

// Kind is the closed set of kernel families the model algebra dispatches on.
type Kind int

const (
	// Stationary marks an ordinary covariance function.
	Stationary Kind = iota
	// Spectral marks a kernel approximated by a finite random
	// spectral-frequency basis, enabling low-rank posterior computation.
	Spectral
)

// ErrStochasticInit is returned when a kernel whose parameter sampling is
// stochastic is initialized without a seeded generator.
var ErrStochasticInit = errors.New("stochastic initialization requires a seeded generator")

// A Kernel evaluates covariance between input points given a parameter store.
type Kernel interface {
	// Kind distinguishes spectral kernels from ordinary ones.
	Kind() Kind

	// Initialise returns the kernel's initial parameters, already sorted.
	// Kernels with stochastic initialization (spectral frequency bases)
	// require a non-nil generator and fail with ErrStochasticInit otherwise;
	// deterministic kernels ignore the generator.
	Initialise(gen *rand.Generator) (params.Store, error)

	// Cov evaluates the covariance between two points.
	Cov(x, y []float64, p params.Store) (float64, error)
}

// Gram evaluates the kernel over all row pairs of x, producing the n x n
// covariance matrix.
func Gram(k Kernel, x *mat.Dense, p params.Store) (*mat.SymDense, error) {
	n, _ := x.Dims()
	out := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		xi := mat.Row(nil, i, x)
		for j := i; j < n; j++ {
			xj := mat.Row(nil, j, x)
			v, err := k.Cov(xi, xj, p)
			if err != nil {
				return nil, errors.Wrapf(err, "Gram entry (%d, %d)", i, j)
			}
			out.SetSym(i, j, v)
		}
	}
	return out, nil
}

// CrossCov evaluates the kernel between every row of x and every row of y,
// producing an len(x) x len(y) matrix.
func CrossCov(k Kernel, x, y *mat.Dense, p params.Store) (*mat.Dense, error) {
	n, _ := x.Dims()
	m, _ := y.Dims()
	out := mat.NewDense(n, m, nil)
	for i := 0; i < n; i++ {
		xi := mat.Row(nil, i, x)
		for j := 0; j < m; j++ {
			yj := mat.Row(nil, j, y)
			v, err := k.Cov(xi, yj, p)
			if err != nil {
				return nil, errors.Wrapf(err, "cross-covariance entry (%d, %d)", i, j)
			}
			out.Set(i, j, v)
		}
	}
	return out, nil
}
