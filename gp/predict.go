package gp

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/probfit/gproc/data"
	"github.com/probfit/gproc/kernel"
	"github.com/probfit/gproc/likelihood"
	"github.com/probfit/gproc/linalg"
	"github.com/probfit/gproc/meanfn"
	"github.com/probfit/gproc/params"
)

// defaultJitter stabilizes covariance factorizations. Kept small enough to
// be below observation-noise scale in any reasonable model.
const defaultJitter = 1e-6

// A GaussianProcessFunc maps query points to the Gaussian predictive
// distribution at those points.
type GaussianProcessFunc func(xstar *mat.Dense) (*distmv.Normal, error)

// A LinkProcessFunc maps query points to per-point observation-space
// distributions under a non-conjugate link.
type LinkProcessFunc func(xstar *mat.Dense) ([]distuv.Bernoulli, error)

// meanVector evaluates a mean function at every row of x.
func meanVector(m meanfn.MeanFunction, x *mat.Dense, p params.Store) (*mat.VecDense, error) {
	n, _ := x.Dims()
	out := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		xi := mat.Row(nil, i, x)
		v, err := m.Mean(xi, p)
		if err != nil {
			return nil, errors.Wrapf(err, "mean at point %d", i)
		}
		out.SetVec(i, v)
	}
	return out, nil
}

// addToDiag adds v to every diagonal entry of s in place.
func addToDiag(s *mat.SymDense, v float64) {
	n := s.SymmetricDim()
	for i := 0; i < n; i++ {
		s.SetSym(i, i, s.At(i, i)+v)
	}
}

// residual returns y - m(X) as a vector, requiring a single output column.
func residual(m meanfn.MeanFunction, d data.Dataset, p params.Store) (*mat.VecDense, error) {
	if d.Y == nil {
		return nil, errors.Errorf("Dataset has no outputs; posterior evaluation needs y")
	}
	if d.OutDim() != 1 {
		return nil, errors.Errorf("Outputs must have shape (n, 1), got %d columns", d.OutDim())
	}

	mu, err := meanVector(m, d.X, p)
	if err != nil {
		return nil, err
	}

	n := d.N()
	out := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		out.SetVec(i, d.Y.At(i, 0)-mu.AtVec(i))
	}
	return out, nil
}

// Predict evaluates the prior predictive at the given query points: a
// multivariate normal with the prior mean and the kernel's Gram matrix.
func (p Prior) Predict(store params.Store, xstar *mat.Dense) (*distmv.Normal, error) {
	kxx, err := kernel.Gram(p.Kernel, xstar, store)
	if err != nil {
		return nil, errors.Wrap(err, "prior covariance")
	}
	addToDiag(kxx, defaultJitter)

	mu, err := meanVector(p.Mean, xstar, store)
	if err != nil {
		return nil, errors.Wrap(err, "prior mean")
	}

	rv, ok := distmv.NewNormal(mu.RawVector().Data, kxx, nil)
	if !ok {
		return nil, errors.Wrap(linalg.ErrNumericalInstability, "prior covariance is not positive definite")
	}
	return rv, nil
}

// Predict returns the closed-form GP posterior predictive as a function of
// query points. The training covariance (regularized by the Gaussian noise
// variance) is factorized once, up front; each call of the returned closure
// costs only solves against that factorization.
//
// static carries parameters held out of fitting via AsConstant; they are
// concatenated back in before any covariance computation.
func (p *ConjugatePosterior) Predict(store params.Store, d data.Dataset, static params.Store) (GaussianProcessFunc, error) {
	if err := d.Check(); err != nil {
		return nil, errors.Wrap(err, "conjugate posterior")
	}
	full := store.Concat(static).Sort()

	obsNoise, err := full.Float("obs_noise")
	if err != nil {
		return nil, errors.Wrap(err, "conjugate posterior")
	}

	kff, err := kernel.Gram(p.Prior.Kernel, d.X, full)
	if err != nil {
		return nil, errors.Wrap(err, "training covariance")
	}
	addToDiag(kff, obsNoise+defaultJitter)

	var ch mat.Cholesky
	if ok := ch.Factorize(kff); !ok {
		return nil, errors.Wrap(linalg.ErrNumericalInstability, "training covariance is not positive definite")
	}

	resid, err := residual(p.Prior.Mean, d, full)
	if err != nil {
		return nil, errors.Wrap(err, "conjugate posterior")
	}

	// alpha = (Kff + noise*I)^-1 (y - m(X))
	var alpha mat.VecDense
	if err := ch.SolveVecTo(&alpha, resid); err != nil {
		return nil, errors.Wrap(linalg.ErrNumericalInstability, "training solve failed")
	}

	return func(xstar *mat.Dense) (*distmv.Normal, error) {
		t, _ := xstar.Dims()

		kfx, err := kernel.CrossCov(p.Prior.Kernel, xstar, d.X, full)
		if err != nil {
			return nil, errors.Wrap(err, "query cross-covariance")
		}
		kxx, err := kernel.Gram(p.Prior.Kernel, xstar, full)
		if err != nil {
			return nil, errors.Wrap(err, "query covariance")
		}

		mu, err := meanVector(p.Prior.Mean, xstar, full)
		if err != nil {
			return nil, errors.Wrap(err, "query mean")
		}
		mean := make([]float64, t)
		for i := 0; i < t; i++ {
			row := kfx.RawRowView(i)
			dot := 0.0
			for j, v := range row {
				dot += v * alpha.AtVec(j)
			}
			mean[i] = mu.AtVec(i) + dot
		}

		// cov = Kxx - Kfx (Kff + noise*I)^-1 Kfx'
		var v mat.Dense
		if err := ch.SolveTo(&v, kfx.T()); err != nil {
			return nil, errors.Wrap(linalg.ErrNumericalInstability, "query solve failed")
		}
		var red mat.Dense
		red.Mul(kfx, &v)

		cov := mat.NewSymDense(t, nil)
		for i := 0; i < t; i++ {
			for j := i; j < t; j++ {
				cov.SetSym(i, j, kxx.At(i, j)-(red.At(i, j)+red.At(j, i))/2)
			}
		}
		addToDiag(cov, defaultJitter)

		rv, ok := distmv.NewNormal(mean, cov, nil)
		if !ok {
			return nil, errors.Wrap(linalg.ErrNumericalInstability, "predictive covariance is not positive definite")
		}
		return rv, nil
	}, nil
}

// Predict returns the latent-function posterior approximation as a function
// of query points. The latent-process block under the reserved "latent" key
// is read in whitened coordinates; each query point's Gaussian latent is
// moment-matched through the likelihood's link, so the closure returns
// observation-space distributions, not a Gaussian.
func (p *NonConjugatePosterior) Predict(store params.Store, d data.Dataset, static params.Store) (LinkProcessFunc, error) {
	if err := d.Check(); err != nil {
		return nil, errors.Wrap(err, "non-conjugate posterior")
	}
	full := store.Concat(static).Sort()

	bern, ok := p.Likelihood.(*likelihood.Bernoulli)
	if !ok {
		return nil, errors.Wrapf(ErrUnsupportedComposition,
			"non-conjugate evaluation for likelihood kind %d", p.Likelihood.Kind())
	}

	latent, err := full.Dense(LatentKey)
	if err != nil {
		return nil, errors.Wrap(err, "non-conjugate posterior")
	}
	lr, lc := latent.Dims()
	if lr != d.N() || lc != 1 {
		return nil, errors.Errorf("Latent block is %d x %d, want %d x 1", lr, lc, d.N())
	}

	kff, err := kernel.Gram(p.Prior.Kernel, d.X, full)
	if err != nil {
		return nil, errors.Wrap(err, "training covariance")
	}
	addToDiag(kff, defaultJitter)

	var ch mat.Cholesky
	if ok := ch.Factorize(kff); !ok {
		return nil, errors.Wrap(linalg.ErrNumericalInstability, "training covariance is not positive definite")
	}
	var lower mat.TriDense
	ch.LTo(&lower)

	return func(xstar *mat.Dense) ([]distuv.Bernoulli, error) {
		t, _ := xstar.Dims()

		kfx, err := kernel.CrossCov(p.Prior.Kernel, d.X, xstar, full)
		if err != nil {
			return nil, errors.Wrap(err, "query cross-covariance")
		}

		// A = L^-1 Kfx, in whitened latent coordinates
		var a mat.Dense
		if err := a.Solve(&lower, kfx); err != nil {
			return nil, errors.Wrap(linalg.ErrNumericalInstability, "whitening solve failed")
		}

		out := make([]distuv.Bernoulli, t)
		for i := 0; i < t; i++ {
			xi := mat.Row(nil, i, xstar)
			kxx, err := p.Prior.Kernel.Cov(xi, xi, full)
			if err != nil {
				return nil, errors.Wrap(err, "query variance")
			}

			mean := 0.0
			sq := 0.0
			for r := 0; r < d.N(); r++ {
				ar := a.At(r, i)
				mean += ar * latent.At(r, 0)
				sq += ar * ar
			}
			variance := math.Max(kxx-sq, 0)
			out[i] = bern.Predictive(mean, variance)
		}
		return out, nil
	}, nil
}

// Predict returns the sparse-spectrum posterior predictive as a function of
// query points. Only the 2M x 2M basis-space matrix is ever factorized; the
// N x N training covariance is never formed, which is what keeps evaluation
// tractable when N >> M.
func (p *SpectralPosterior) Predict(store params.Store, d data.Dataset, static params.Store) (GaussianProcessFunc, error) {
	if err := d.Check(); err != nil {
		return nil, errors.Wrap(err, "spectral posterior")
	}
	full := store.Concat(static).Sort()

	sk, ok := p.Prior.Kernel.(*kernel.SpectralRBF)
	if !ok {
		return nil, errors.Wrapf(ErrUnsupportedComposition,
			"spectral evaluation needs a spectral kernel, got kind %d", p.Prior.Kernel.Kind())
	}

	obsNoise, err := full.Float("obs_noise")
	if err != nil {
		return nil, errors.Wrap(err, "spectral posterior")
	}

	phi, err := sk.Features(d.X, full)
	if err != nil {
		return nil, errors.Wrap(err, "training features")
	}
	_, twoM := phi.Dims()

	// A = Phi' Phi + noise * I, the only matrix ever factorized
	var ata mat.Dense
	ata.Mul(phi.T(), phi)
	a := mat.NewSymDense(twoM, nil)
	for i := 0; i < twoM; i++ {
		for j := i; j < twoM; j++ {
			a.SetSym(i, j, (ata.At(i, j)+ata.At(j, i))/2)
		}
	}
	addToDiag(a, obsNoise+defaultJitter)

	var ch mat.Cholesky
	if ok := ch.Factorize(a); !ok {
		return nil, errors.Wrap(linalg.ErrNumericalInstability, "basis-space matrix is not positive definite")
	}

	resid, err := residual(p.Prior.Mean, d, full)
	if err != nil {
		return nil, errors.Wrap(err, "spectral posterior")
	}

	// w = A^-1 Phi' (y - m(X))
	phity := mat.NewVecDense(twoM, nil)
	phity.MulVec(phi.T(), resid)
	var w mat.VecDense
	if err := ch.SolveVecTo(&w, phity); err != nil {
		return nil, errors.Wrap(linalg.ErrNumericalInstability, "basis-space solve failed")
	}

	return func(xstar *mat.Dense) (*distmv.Normal, error) {
		t, _ := xstar.Dims()

		phis, err := sk.Features(xstar, full)
		if err != nil {
			return nil, errors.Wrap(err, "query features")
		}

		mu, err := meanVector(p.Prior.Mean, xstar, full)
		if err != nil {
			return nil, errors.Wrap(err, "query mean")
		}
		mean := make([]float64, t)
		for i := 0; i < t; i++ {
			row := phis.RawRowView(i)
			dot := 0.0
			for j, v := range row {
				dot += v * w.AtVec(j)
			}
			mean[i] = mu.AtVec(i) + dot
		}

		// cov = noise * Phis A^-1 Phis'
		var v mat.Dense
		if err := ch.SolveTo(&v, phis.T()); err != nil {
			return nil, errors.Wrap(linalg.ErrNumericalInstability, "query solve failed")
		}
		var red mat.Dense
		red.Mul(phis, &v)

		cov := mat.NewSymDense(t, nil)
		for i := 0; i < t; i++ {
			for j := i; j < t; j++ {
				cov.SetSym(i, j, obsNoise*(red.At(i, j)+red.At(j, i))/2)
			}
		}
		addToDiag(cov, defaultJitter)

		rv, ok := distmv.NewNormal(mean, cov, nil)
		if !ok {
			return nil, errors.Wrap(linalg.ErrNumericalInstability, "predictive covariance is not positive definite")
		}
		return rv, nil
	}, nil
}
