package gp

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/probfit/gproc/kernel"
	"github.com/probfit/gproc/likelihood"
)

func TestComposeTotality(t *testing.T) {
	assert := assert.New(t)

	plain := NewPrior(kernel.NewRBF())
	spectral := NewPrior(kernel.ToSpectral(kernel.NewRBF(), 8, 1))

	cases := []struct {
		prior Prior
		lik   likelihood.Likelihood
		want  Kind
	}{
		{plain, likelihood.NewGaussian(), Conjugate},
		{spectral, likelihood.NewGaussian(), Spectral},
		{plain, likelihood.NewBernoulli(), NonConjugate},
		{spectral, likelihood.NewBernoulli(), NonConjugate},
	}

	for _, c := range cases {
		post, err := Compose(c.prior, c.lik)
		assert.NoError(err)
		assert.Equal(c.want, post.Kind())

		// Mul is the same operation
		post2, err := c.prior.Mul(c.lik)
		assert.NoError(err)
		assert.Equal(c.want, post2.Kind())
	}
}

func TestComposeVariantsCarryOperands(t *testing.T) {
	assert := assert.New(t)

	prior := NewPrior(kernel.NewRBF())
	lik := likelihood.NewGaussian()

	post, err := Compose(prior, lik)
	assert.NoError(err)

	cp, ok := post.(*ConjugatePosterior)
	assert.True(ok)
	assert.Equal(prior.Kernel, cp.Prior.Kernel)
	assert.Equal(lik, cp.Likelihood)
	assert.Equal("ConjugatePosterior", cp.Name)
	assert.Equal("ConjugatePosterior", cp.Kind().String())
}

func TestComposeFailures(t *testing.T) {
	assert := assert.New(t)

	_, err := Compose(Prior{}, likelihood.NewGaussian())
	assert.Error(err)
	assert.Equal(ErrUnsupportedComposition, errors.Cause(err))

	_, err = Compose(NewPrior(kernel.NewRBF()), nil)
	assert.Error(err)
	assert.Equal(ErrUnsupportedComposition, errors.Cause(err))
}

func TestNewPriorFreshDefaults(t *testing.T) {
	assert := assert.New(t)

	p1 := NewPrior(kernel.NewRBF())
	p2 := NewPrior(kernel.NewRBF())

	// Each prior owns its own default mean function - no shared instance
	assert.NotSame(p1.Mean, p2.Mean)
	assert.Equal("Prior", p1.Name)
}
