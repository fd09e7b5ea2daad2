package gp

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/probfit/gproc/kernel"
	"github.com/probfit/gproc/likelihood"
	"github.com/probfit/gproc/meanfn"
	"github.com/probfit/gproc/params"
)

func conjugateModel(t *testing.T) *ConjugatePosterior {
	post, err := Compose(NewPrior(kernel.NewRBF()), likelihood.NewGaussian())
	assert.NoError(t, err)
	return post.(*ConjugatePosterior)
}

func spectralModel(t *testing.T, m int) *SpectralPosterior {
	post, err := Compose(NewPrior(kernel.ToSpectral(kernel.NewRBF(), m, 1)), likelihood.NewGaussian())
	assert.NoError(t, err)
	return post.(*SpectralPosterior)
}

func nonConjugateModel(t *testing.T) *NonConjugatePosterior {
	post, err := Compose(NewPrior(kernel.NewRBF()), likelihood.NewBernoulli())
	assert.NoError(t, err)
	return post.(*NonConjugatePosterior)
}

func TestInitialiseConjugate(t *testing.T) {
	assert := assert.New(t)

	post := conjugateModel(t)
	p, err := Initialise(post)
	assert.NoError(err)
	assert.Equal([]string{"lengthscale", "obs_noise", "variance"}, p.Keys())

	// A constant mean function contributes its key to the union
	prior := NewPrior(kernel.NewRBF())
	prior.Mean = meanfn.NewConstant()
	post2, err := Compose(prior, likelihood.NewGaussian())
	assert.NoError(err)
	p2, err := Initialise(post2)
	assert.NoError(err)
	assert.Equal([]string{"constant", "lengthscale", "obs_noise", "variance"}, p2.Keys())
}

func TestInitialiseDataConjugateIgnoresN(t *testing.T) {
	assert := assert.New(t)

	post := conjugateModel(t)
	base, err := Initialise(post)
	assert.NoError(err)

	for _, n := range []int{0, 1, 100} {
		p, err := InitialiseData(post, n)
		assert.NoError(err)
		assert.True(base.Equal(p))
	}
}

func TestInitialiseNonConjugate(t *testing.T) {
	assert := assert.New(t)

	post := nonConjugateModel(t)

	// Without a data size there is no matching initializer
	_, err := Initialise(post)
	assert.Error(err)
	assert.Equal(ErrNoMatchingInitializer, errors.Cause(err))

	_, err = InitialiseData(post, 0)
	assert.Error(err)
	assert.Equal(ErrNoMatchingInitializer, errors.Cause(err))

	// With one, the latent block appears zero-initialized at (n, 1)
	p, err := InitialiseData(post, 4)
	assert.NoError(err)
	assert.Equal([]string{"latent", "lengthscale", "variance"}, p.Keys())

	lat, err := p.Dense(LatentKey)
	assert.NoError(err)
	r, c := lat.Dims()
	assert.Equal(4, r)
	assert.Equal(1, c)
	for i := 0; i < 4; i++ {
		assert.Equal(0.0, lat.At(i, 0))
	}
}

func TestInitialiseSeededSpectral(t *testing.T) {
	assert := assert.New(t)

	post := spectralModel(t, 8)

	// The spectral basis is stochastic: the seedless form is a dispatch failure
	_, err := Initialise(post)
	assert.Error(err)
	assert.Equal(ErrNoMatchingInitializer, errors.Cause(err))

	_, err = InitialiseData(post, 10)
	assert.Error(err)
	assert.Equal(ErrNoMatchingInitializer, errors.Cause(err))

	p, err := InitialiseSeeded(123, post)
	assert.NoError(err)
	assert.Equal([]string{"basis_fns", "lengthscale", "obs_noise", "variance"}, p.Keys())

	// Same seed, same model structure: identical values
	p2, err := InitialiseSeeded(123, post)
	assert.NoError(err)
	assert.True(p.Equal(p2))

	p3, err := InitialiseSeeded(124, post)
	assert.NoError(err)
	assert.False(p.Equal(p3))
}

func TestInitialiseSeededMismatches(t *testing.T) {
	assert := assert.New(t)

	// Seeded initialization of a non-conjugate model is not a supported shape
	_, err := InitialiseSeeded(1, nonConjugateModel(t))
	assert.Error(err)
	assert.Equal(ErrNoMatchingInitializer, errors.Cause(err))

	// Seeding a fully deterministic model is allowed and changes nothing
	post := conjugateModel(t)
	seeded, err := InitialiseSeeded(1, post)
	assert.NoError(err)
	plain, err := Initialise(post)
	assert.NoError(err)
	assert.True(seeded.Equal(plain))
}

func TestComplete(t *testing.T) {
	assert := assert.New(t)

	post := nonConjugateModel(t)
	partial := params.New(
		params.Pair{Key: "lengthscale", Val: params.Scalar(2.5)},
		params.Pair{Key: "not_a_param", Val: params.Scalar(9.0)},
	)

	full, dropped, err := Complete(partial, post, 3)
	assert.NoError(err)

	// Key set is exactly the model's, with the override value applied
	assert.Equal([]string{"latent", "lengthscale", "variance"}, full.Keys())
	ell, err := full.Float("lengthscale")
	assert.NoError(err)
	assert.Equal(2.5, ell)
	variance, err := full.Float("variance")
	assert.NoError(err)
	assert.Equal(1.0, variance)

	// The unknown override key is dropped but reported
	assert.Equal([]string{"not_a_param"}, dropped)

	// Initializer failures pass through
	_, _, err = Complete(partial, post, 0)
	assert.Error(err)
	assert.Equal(ErrNoMatchingInitializer, errors.Cause(err))
}
