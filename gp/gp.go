// Package gp is the compositional core of the toolkit: it combines a GP
// prior with a likelihood to select the correct posterior family, manages
// hierarchical parameter initialization across the model's sub-components,
// and evaluates posterior predictive distributions.
package gp

import (
	"github.com/pkg/errors"

	"github.com/probfit/gproc/kernel"
	"github.com/probfit/gproc/likelihood"
	"github.com/probfit/gproc/meanfn"
)

// ErrUnsupportedComposition is returned when a prior is multiplied by a
// likelihood outside the closed variant set. This is a programmer error and
// is never retried.
var ErrUnsupportedComposition = errors.New("unsupported prior/likelihood composition")

// ErrNoMatchingInitializer is returned when an initialise call shape does
// not match the model: a seedless spectral model, a seeded non-conjugate
// model, or a non-conjugate model without a data size.
var ErrNoMatchingInitializer = errors.New("no matching initializer")

// Prior is a GP prior over functions: a kernel plus a mean function.
// Immutable once constructed.
type Prior struct {
	Kernel kernel.Kernel
	Mean   meanfn.MeanFunction
	Name   string
}

// NewPrior creates a prior with a fresh zero mean function. Each call builds
// its own default so independently constructed priors never alias.
func NewPrior(k kernel.Kernel) Prior {
	return Prior{
		Kernel: k,
		Mean:   meanfn.NewZero(),
		Name:   "Prior",
	}
}

// Kind is the closed set of posterior families a composition can produce.
type Kind int

const (
	// Conjugate is the closed-form Gaussian posterior.
	Conjugate Kind = iota
	// NonConjugate is the latent-process posterior for non-Gaussian links.
	NonConjugate
	// Spectral is the low-rank posterior over a spectral frequency basis.
	Spectral
)

func (k Kind) String() string {
	switch k {
	case Conjugate:
		return "ConjugatePosterior"
	case NonConjugate:
		return "NonConjugatePosterior"
	case Spectral:
		return "SpectralPosterior"
	}
	return "UnknownPosterior"
}

// Posterior is the tagged union over the three posterior variants. The
// mapping (kernel kind x likelihood kind) -> variant is total: Compose is
// the only constructor and every legal combination lands in exactly one
// case.
type Posterior interface {
	Kind() Kind
}

// ConjugatePosterior pairs a non-spectral prior with a Gaussian likelihood;
// the posterior is available in closed form.
type ConjugatePosterior struct {
	Prior      Prior
	Likelihood likelihood.Likelihood
	Name       string
}

// Kind returns Conjugate.
func (p *ConjugatePosterior) Kind() Kind { return Conjugate }

// NonConjugatePosterior pairs any prior with a non-conjugate likelihood. It
// carries an implicit latent-process parameter whose dimensionality equals
// the number of training observations (see InitialiseData).
type NonConjugatePosterior struct {
	Prior      Prior
	Likelihood likelihood.Likelihood
	Name       string
}

// Kind returns NonConjugate.
func (p *NonConjugatePosterior) Kind() Kind { return NonConjugate }

// SpectralPosterior pairs a spectral-kernel prior with a Gaussian
// likelihood; the posterior is evaluated over the M basis frequencies via
// the Woodbury identity instead of a full N x N factorization.
type SpectralPosterior struct {
	Prior      Prior
	Likelihood likelihood.Likelihood
	Name       string
}

// Kind returns Spectral.
func (p *SpectralPosterior) Kind() Kind { return Spectral }

// Compose multiplies a prior by a likelihood, resolving the posterior
// variant from the operand kinds:
//
//	Gaussian likelihood, spectral kernel  -> SpectralPosterior
//	Gaussian likelihood, ordinary kernel  -> ConjugatePosterior
//	non-conjugate likelihood, any kernel  -> NonConjugatePosterior
//
// Composition is pure construction: no parameter values are touched.
func Compose(prior Prior, lik likelihood.Likelihood) (Posterior, error) {
	if prior.Kernel == nil {
		return nil, errors.Wrap(ErrUnsupportedComposition, "prior has no kernel")
	}
	if lik == nil {
		return nil, errors.Wrap(ErrUnsupportedComposition, "no likelihood given")
	}

	switch lik.Kind() {
	case likelihood.GaussianKind:
		if prior.Kernel.Kind() == kernel.Spectral {
			return &SpectralPosterior{Prior: prior, Likelihood: lik, Name: "SpectralPosterior"}, nil
		}
		return &ConjugatePosterior{Prior: prior, Likelihood: lik, Name: "ConjugatePosterior"}, nil
	case likelihood.BernoulliKind:
		return &NonConjugatePosterior{Prior: prior, Likelihood: lik, Name: "NonConjugatePosterior"}, nil
	}
	return nil, errors.Wrapf(ErrUnsupportedComposition, "unrecognized likelihood kind %d", lik.Kind())
}

// Mul is composition sugar: prior.Mul(lik) == Compose(prior, lik).
func (p Prior) Mul(lik likelihood.Likelihood) (Posterior, error) {
	return Compose(p, lik)
}
