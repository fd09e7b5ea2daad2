package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"

	"github.com/probfit/gproc/rand"
)

func TestDatasetShapes(t *testing.T) {
	assert := assert.New(t)

	cases := []struct {
		n, ind, outd int
	}{
		{1, 1, 1},
		{10, 2, 1},
		{100, 10, 2},
	}

	for _, c := range cases {
		d := Dataset{
			X: mat.NewDense(c.n, c.ind, nil),
			Y: mat.NewDense(c.n, c.outd, nil),
		}
		assert.NoError(d.Check())
		assert.Equal(c.n, d.N())
		assert.Equal(c.ind, d.InDim())
		assert.Equal(c.outd, d.OutDim())
	}
}

func TestDatasetBadShapes(t *testing.T) {
	assert := assert.New(t)

	cases := []Dataset{
		{X: nil, Y: nil},
		{X: mat.NewDense(1, 1, nil), Y: mat.NewDense(2, 1, nil)},
		{X: mat.NewDense(10, 1, nil), Y: mat.NewDense(5, 1, nil)},
	}

	for _, d := range cases {
		assert.Error(d.Check())
	}
}

func TestDatasetNoY(t *testing.T) {
	assert := assert.New(t)

	d := Dataset{X: mat.NewDense(10, 1, nil)}
	assert.NoError(d.Check())
	assert.Equal(0, d.OutDim())
}

func TestSparseDataset(t *testing.T) {
	assert := assert.New(t)

	d := SparseDataset{
		Dataset: Dataset{
			X: mat.NewDense(20, 2, nil),
			Y: mat.NewDense(20, 1, nil),
		},
		Z: mat.NewDense(5, 2, nil),
	}
	assert.NoError(d.Check())
	assert.Equal(20, d.N())
	assert.Equal(5, d.NInducing())

	none := SparseDataset{Dataset: Dataset{X: mat.NewDense(3, 1, nil)}}
	assert.Equal(0, none.NInducing())
}

func TestSample(t *testing.T) {
	assert := assert.New(t)

	x := mat.NewDense(6, 2, []float64{
		0, 10,
		1, 11,
		2, 12,
		3, 13,
		4, 14,
		5, 15,
	})

	s, err := Sample(rand.NewGenerator(5), x, 4)
	assert.NoError(err)
	r, c := s.Dims()
	assert.Equal(4, r)
	assert.Equal(2, c)

	// Every sampled row must be one of the source rows
	for i := 0; i < r; i++ {
		first := s.At(i, 0)
		assert.True(first >= 0 && first <= 5)
		assert.Equal(first+10, s.At(i, 1))
	}

	// Same seed, same subsample
	s2, err := Sample(rand.NewGenerator(5), x, 4)
	assert.NoError(err)
	assert.True(mat.Equal(s, s2))

	_, err = Sample(nil, x, 4)
	assert.Error(err)
	_, err = Sample(rand.NewGenerator(5), x, 0)
	assert.Error(err)
}
