package gp

import (
	"github.com/pkg/errors"

	"github.com/probfit/gproc/kernel"
	"github.com/probfit/gproc/likelihood"
	"github.com/probfit/gproc/params"
	"github.com/probfit/gproc/rand"
)

// LatentKey is the reserved parameter name for a non-conjugate model's
// latent-process block. No kernel, mean function, or likelihood may claim it.
const LatentKey = "latent"

// hyperparams combines the prior's kernel and mean-function parameters with
// the likelihood's, in that order, then sorts. This is the shared spine of
// every initialise shape.
func hyperparams(pr Prior, gen *rand.Generator) (params.Store, error) {
	kp, err := pr.Kernel.Initialise(gen)
	if err != nil {
		if errors.Cause(err) == kernel.ErrStochasticInit {
			return params.Store{}, errors.Wrapf(ErrNoMatchingInitializer,
				"kernel initialization is stochastic; use InitialiseSeeded (%v)", err)
		}
		return params.Store{}, errors.Wrap(err, "kernel initialization")
	}

	all := kp.Concat(pr.Mean.Initialise())
	return all, nil
}

func initAll(pr Prior, lik likelihood.Likelihood, gen *rand.Generator) (params.Store, error) {
	hyper, err := hyperparams(pr, gen)
	if err != nil {
		return params.Store{}, err
	}
	return hyper.Concat(lik.Initialise()).Sort(), nil
}

// Initialise computes the full initial parameter set for a model whose
// component initializations are all deterministic. The result's key set is
// exactly the union of the keys contributed by the mean function, the
// kernel, and the likelihood, in ascending key order.
func Initialise(post Posterior) (params.Store, error) {
	switch p := post.(type) {
	case *ConjugatePosterior:
		return initAll(p.Prior, p.Likelihood, nil)
	case *SpectralPosterior:
		return initAll(p.Prior, p.Likelihood, nil)
	case *NonConjugatePosterior:
		return params.Store{}, errors.Wrap(ErrNoMatchingInitializer,
			"non-conjugate models allocate a latent block; use InitialiseData")
	}
	return params.Store{}, errors.Wrapf(ErrNoMatchingInitializer, "unknown posterior kind %v", post.Kind())
}

// InitialiseSeeded computes the full initial parameter set for a model with
// stochastic component initialization (spectral frequency bases). The same
// seed and model structure always produce identical parameter values.
func InitialiseSeeded(seed int64, post Posterior) (params.Store, error) {
	gen := rand.NewGenerator(seed)
	switch p := post.(type) {
	case *ConjugatePosterior:
		return initAll(p.Prior, p.Likelihood, gen)
	case *SpectralPosterior:
		return initAll(p.Prior, p.Likelihood, gen)
	case *NonConjugatePosterior:
		return params.Store{}, errors.Wrap(ErrNoMatchingInitializer,
			"seeded initialization is not defined for non-conjugate models")
	}
	return params.Store{}, errors.Wrapf(ErrNoMatchingInitializer, "unknown posterior kind %v", post.Kind())
}

// InitialiseData computes the full initial parameter set given the training
// data size. For conjugate and spectral models nData is accepted but unused
// (reserved for call-shape symmetry). For non-conjugate models it
// additionally allocates the zero-initialized (nData, 1) latent-process
// block under the reserved "latent" key.
func InitialiseData(post Posterior, nData int) (params.Store, error) {
	switch p := post.(type) {
	case *ConjugatePosterior, *SpectralPosterior:
		return Initialise(p)
	case *NonConjugatePosterior:
		if nData < 1 {
			return params.Store{}, errors.Wrapf(ErrNoMatchingInitializer,
				"non-conjugate model needs a positive data size, got %d", nData)
		}
		hyper, err := hyperparams(p.Prior, nil)
		if err != nil {
			return params.Store{}, err
		}
		all := hyper.Concat(p.Likelihood.Initialise())
		latent := params.New(params.Pair{Key: LatentKey, Val: params.Zeros(nData, 1)})
		return all.Concat(latent).Sort(), nil
	}
	return params.Store{}, errors.Wrapf(ErrNoMatchingInitializer, "unknown posterior kind %v", post.Kind())
}

// Complete computes the model's full initial parameter set and merges the
// partial store over it as an override: every key of the full set is
// retained, keys present in partial take partial's value. Override keys
// absent from the full set are deliberately dropped; they are returned so
// callers can surface the mismatch instead of losing it silently.
func Complete(partial params.Store, post Posterior, nData int) (full params.Store, dropped []string, err error) {
	base, err := InitialiseData(post, nData)
	if err != nil {
		return params.Store{}, nil, err
	}

	for _, k := range partial.Keys() {
		if _, ok := base.Get(k); !ok {
			dropped = append(dropped, k)
		}
	}
	return base.Merge(partial).Sort(), dropped, nil
}
