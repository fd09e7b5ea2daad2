// Package likelihood defines the observation-model capability and its closed
// variant set: Gaussian noise (conjugate with a GP prior) and a probit-link
// Bernoulli (non-conjugate, requiring an explicit latent process).
package likelihood

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/probfit/gproc/params"
)

// Kind is the closed set of likelihood variants. The conjugate vs
// non-conjugate distinction is what selects the posterior family when a
// prior is composed with a likelihood.
type Kind int

const (
	// GaussianKind is the conjugate Gaussian observation-noise likelihood.
	GaussianKind Kind = iota
	// BernoulliKind is the probit-link Bernoulli likelihood.
	BernoulliKind
)

// Conjugate reports whether the kind admits a closed-form posterior.
func (k Kind) Conjugate() bool {
	return k == GaussianKind
}

// A Likelihood supplies its parameters and its link function.
type Likelihood interface {
	Kind() Kind

	// Initialise returns the likelihood's initial parameters, sorted.
	Initialise() params.Store

	// Link maps a latent function value into the observation space.
	Link(f float64) float64
}

var (
	gaussian  *Gaussian
	bernoulli *Bernoulli
	_         Likelihood = gaussian
	_         Likelihood = bernoulli
)

// Gaussian is i.i.d. Gaussian observation noise with parameter "obs_noise"
// (the noise variance), initialized to 1.
type Gaussian struct{}

// NewGaussian creates a Gaussian likelihood.
func NewGaussian() *Gaussian {
	return &Gaussian{}
}

// Kind identifies the likelihood as conjugate.
func (l *Gaussian) Kind() Kind {
	return GaussianKind
}

// Initialise returns the default noise variance.
func (l *Gaussian) Initialise() params.Store {
	return params.New(
		params.Pair{Key: "obs_noise", Val: params.Scalar(1.0)},
	).Sort()
}

// Link is the identity: Gaussian observations live on the latent scale.
func (l *Gaussian) Link(f float64) float64 {
	return f
}

// Bernoulli is a Bernoulli likelihood under a probit link. It carries no
// parameters of its own; a model using it instead carries a latent-process
// block with one value per training observation.
type Bernoulli struct{}

// NewBernoulli creates a probit-link Bernoulli likelihood.
func NewBernoulli() *Bernoulli {
	return &Bernoulli{}
}

// Kind identifies the likelihood as non-conjugate.
func (l *Bernoulli) Kind() Kind {
	return BernoulliKind
}

// Initialise returns an empty store: the Bernoulli has no hyperparameters.
func (l *Bernoulli) Initialise() params.Store {
	return params.New()
}

// Link is the probit function, the standard normal CDF.
func (l *Bernoulli) Link(f float64) float64 {
	return distuv.UnitNormal.CDF(f)
}

// Predictive moment-matches a Gaussian latent (mean, variance) through the
// probit link, yielding the observation-space Bernoulli with
// p = Phi(mean / sqrt(1 + variance)).
func (l *Bernoulli) Predictive(mean, variance float64) distuv.Bernoulli {
	return distuv.Bernoulli{
		P: distuv.UnitNormal.CDF(mean / math.Sqrt(1.0+variance)),
	}
}
