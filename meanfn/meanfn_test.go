package meanfn

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/probfit/gproc/params"
)

func TestZero(t *testing.T) {
	assert := assert.New(t)

	m := NewZero()
	assert.Equal(0, m.Initialise().Len())

	v, err := m.Mean([]float64{3.0, -1.0}, m.Initialise())
	assert.NoError(err)
	assert.Equal(0.0, v)
}

func TestConstant(t *testing.T) {
	assert := assert.New(t)

	m := NewConstant()
	p := m.Initialise()
	assert.Equal([]string{"constant"}, p.Keys())

	v, err := m.Mean([]float64{3.0}, p)
	assert.NoError(err)
	assert.Equal(1.0, v)

	v, err = m.Mean([]float64{-8.0}, p.Add("constant", params.Scalar(2.5)))
	assert.NoError(err)
	assert.Equal(2.5, v)

	// Missing parameter is an error
	free, _ := p.AsConstant("constant")
	_, err = m.Mean([]float64{0.0}, free)
	assert.Error(err)
}
