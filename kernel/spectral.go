package kernel

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/probfit/gproc/params"
	"github.com/probfit/gproc/rand"
)

var (
	spectral *SpectralRBF
	_        Kernel = spectral // Check that SpectralRBF respects the Kernel interface.
)

// SpectralRBF approximates an RBF kernel with a finite basis of random
// spectral frequencies (the sparse-spectrum construction). Its parameter set
// is the base RBF's plus "basis_fns", an M x d matrix of frequencies drawn
// from a standard normal at initialization time. The frequencies are usually
// frozen via the parameter store's AsConstant partition while the
// lengthscale and variance stay trainable.
type SpectralRBF struct {
	base     *RBF
	numBasis int
	inputDim int
}

// ToSpectral wraps an RBF kernel in a spectral approximation with numBasis
// frequencies over inputDim-dimensional inputs.
func ToSpectral(base *RBF, numBasis, inputDim int) *SpectralRBF {
	return &SpectralRBF{
		base:     base,
		numBasis: numBasis,
		inputDim: inputDim,
	}
}

// NumBasis returns M, the number of spectral basis frequencies.
func (k *SpectralRBF) NumBasis() int {
	return k.numBasis
}

// InputDim returns the input dimensionality the basis was shaped for.
func (k *SpectralRBF) InputDim() int {
	return k.inputDim
}

// Kind identifies the kernel as spectral.
func (k *SpectralRBF) Kind() Kind {
	return Spectral
}

// Initialise draws the M x d frequency basis from a standard normal using
// the supplied generator and concatenates it with the base RBF parameters.
// The same generator seed always yields the same basis.
func (k *SpectralRBF) Initialise(gen *rand.Generator) (params.Store, error) {
	if gen == nil {
		return params.Store{}, errors.Wrapf(ErrStochasticInit,
			"spectral kernel with %d basis functions", k.numBasis)
	}

	norm := distuv.Normal{Mu: 0, Sigma: 1, Src: gen}
	freqs := mat.NewDense(k.numBasis, k.inputDim, nil)
	for i := 0; i < k.numBasis; i++ {
		for j := 0; j < k.inputDim; j++ {
			freqs.Set(i, j, norm.Rand())
		}
	}

	base, err := k.base.Initialise(gen)
	if err != nil {
		return params.Store{}, errors.Wrap(err, "spectral base kernel")
	}
	return base.Concat(params.New(
		params.Pair{Key: "basis_fns", Val: params.Matrix(freqs)},
	)).Sort(), nil
}

// Cov evaluates the sparse-spectrum approximation
// (variance/M) * sum_i cos(w_i . (x-y) / lengthscale).
func (k *SpectralRBF) Cov(x, y []float64, p params.Store) (float64, error) {
	if len(x) != len(y) {
		return 0, errors.Errorf("Point dimensions differ: %d vs %d", len(x), len(y))
	}

	ell, err := p.Float("lengthscale")
	if err != nil {
		return 0, errors.Wrap(err, "spectral covariance")
	}
	variance, err := p.Float("variance")
	if err != nil {
		return 0, errors.Wrap(err, "spectral covariance")
	}
	freqs, err := p.Dense("basis_fns")
	if err != nil {
		return 0, errors.Wrap(err, "spectral covariance")
	}

	m, d := freqs.Dims()
	if d != len(x) {
		return 0, errors.Errorf("Basis is %d-dimensional but points are %d-dimensional", d, len(x))
	}

	sum := 0.0
	for i := 0; i < m; i++ {
		arg := 0.0
		for j := 0; j < d; j++ {
			arg += freqs.At(i, j) * (x[j] - y[j]) / ell
		}
		sum += math.Cos(arg)
	}
	return variance * sum / float64(m), nil
}

// Features evaluates the 2M-column basis matrix for the rows of x:
// sqrt(variance/M) * [cos(x . w_i / ell) | sin(x . w_i / ell)]. The Gram
// matrix of the approximation factorizes as Phi * Phi', which is what makes
// the Woodbury-based posterior evaluation tractable.
func (k *SpectralRBF) Features(x *mat.Dense, p params.Store) (*mat.Dense, error) {
	ell, err := p.Float("lengthscale")
	if err != nil {
		return nil, errors.Wrap(err, "spectral features")
	}
	variance, err := p.Float("variance")
	if err != nil {
		return nil, errors.Wrap(err, "spectral features")
	}
	freqs, err := p.Dense("basis_fns")
	if err != nil {
		return nil, errors.Wrap(err, "spectral features")
	}

	n, d := x.Dims()
	m, fd := freqs.Dims()
	if fd != d {
		return nil, errors.Errorf("Basis is %d-dimensional but inputs are %d-dimensional", fd, d)
	}

	scale := math.Sqrt(variance / float64(m))
	out := mat.NewDense(n, 2*m, nil)
	for i := 0; i < n; i++ {
		for b := 0; b < m; b++ {
			arg := 0.0
			for j := 0; j < d; j++ {
				arg += x.At(i, j) * freqs.At(b, j) / ell
			}
			out.Set(i, b, scale*math.Cos(arg))
			out.Set(i, m+b, scale*math.Sin(arg))
		}
	}
	return out, nil
}
