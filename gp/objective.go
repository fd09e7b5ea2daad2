package gp

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/probfit/gproc/data"
	"github.com/probfit/gproc/kernel"
	"github.com/probfit/gproc/linalg"
	"github.com/probfit/gproc/params"
)

const log2Pi = 1.8378770664093453

// ConjugateMLL evaluates the exact log marginal likelihood of a conjugate
// model: -1/2 [ r' K^-1 r + log det K + n log 2pi ] with
// K = Kff + noise*I and r = y - m(X).
func ConjugateMLL(p *ConjugatePosterior, store params.Store, d data.Dataset, static params.Store) (float64, error) {
	if err := d.Check(); err != nil {
		return 0, errors.Wrap(err, "conjugate MLL")
	}
	full := store.Concat(static).Sort()

	obsNoise, err := full.Float("obs_noise")
	if err != nil {
		return 0, errors.Wrap(err, "conjugate MLL")
	}

	kff, err := kernel.Gram(p.Prior.Kernel, d.X, full)
	if err != nil {
		return 0, errors.Wrap(err, "training covariance")
	}
	addToDiag(kff, obsNoise+defaultJitter)

	var ch mat.Cholesky
	if ok := ch.Factorize(kff); !ok {
		return 0, errors.Wrap(linalg.ErrNumericalInstability, "training covariance is not positive definite")
	}

	resid, err := residual(p.Prior.Mean, d, full)
	if err != nil {
		return 0, errors.Wrap(err, "conjugate MLL")
	}

	var alpha mat.VecDense
	if err := ch.SolveVecTo(&alpha, resid); err != nil {
		return 0, errors.Wrap(linalg.ErrNumericalInstability, "training solve failed")
	}

	quad := mat.Dot(resid, &alpha)
	n := float64(d.N())
	return -0.5 * (quad + ch.LogDet() + n*log2Pi), nil
}

// SpectralMLL evaluates the log marginal likelihood of a sparse-spectrum
// model without forming the N x N covariance: the data-fit term
// r'(noise*I + Phi Phi')^-1 r goes through the Woodbury identity, and the
// log-determinant through the matrix determinant lemma,
// log det(noise*I + Phi Phi') = log det(I + Phi'Phi/noise) + n log noise.
func SpectralMLL(p *SpectralPosterior, store params.Store, d data.Dataset, static params.Store) (float64, error) {
	if err := d.Check(); err != nil {
		return 0, errors.Wrap(err, "spectral MLL")
	}
	full := store.Concat(static).Sort()

	sk, ok := p.Prior.Kernel.(*kernel.SpectralRBF)
	if !ok {
		return 0, errors.Wrapf(ErrUnsupportedComposition,
			"spectral evaluation needs a spectral kernel, got kind %d", p.Prior.Kernel.Kind())
	}

	obsNoise, err := full.Float("obs_noise")
	if err != nil {
		return 0, errors.Wrap(err, "spectral MLL")
	}

	phi, err := sk.Features(d.X, full)
	if err != nil {
		return 0, errors.Wrap(err, "training features")
	}
	n, twoM := phi.Dims()

	resid, err := residual(p.Prior.Mean, d, full)
	if err != nil {
		return 0, errors.Wrap(err, "spectral MLL")
	}

	// Data fit via Woodbury: A = noise*I (diagonal), B = Phi, C = Phi',
	// D = I, so only the 2M x 2M inner matrix is inverted.
	diag := mat.NewDiagDense(n, nil)
	for i := 0; i < n; i++ {
		diag.SetDiag(i, obsNoise)
	}
	quad, err := linalg.WoodburyIdentity(diag, phi, phi.T(), linalg.Eye(twoM), resid)
	if err != nil {
		return 0, errors.Wrap(err, "spectral data fit")
	}

	// Determinant lemma: inner = I + Phi'Phi / noise
	var ata mat.Dense
	ata.Mul(phi.T(), phi)
	inner := mat.NewSymDense(twoM, nil)
	for i := 0; i < twoM; i++ {
		for j := i; j < twoM; j++ {
			inner.SetSym(i, j, (ata.At(i, j)+ata.At(j, i))/(2*obsNoise))
		}
	}
	addToDiag(inner, 1.0)

	ld, err := linalg.CholLogDet(inner)
	if err != nil {
		return 0, errors.Wrap(err, "spectral log-determinant")
	}
	logDet := ld + float64(n)*math.Log(obsNoise)

	return -0.5 * (quad + logDet + float64(n)*log2Pi), nil
}
