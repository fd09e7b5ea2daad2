package linalg

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestEye(t *testing.T) {
	assert := assert.New(t)

	for _, n := range []int{1, 10, 100} {
		id := Eye(n)
		r, c := id.Dims()
		assert.Equal(n, r)
		assert.Equal(n, c)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if i == j {
					assert.Equal(1.0, id.At(i, j))
				} else {
					assert.Equal(0.0, id.At(i, j))
				}
			}
		}
	}
}

func TestStandardiseRoundTrip(t *testing.T) {
	assert := assert.New(t)

	x := mat.NewDense(5, 2, []float64{
		1.0, 10.0,
		2.0, 14.0,
		3.0, 22.0,
		4.0, 8.0,
		5.0, 16.0,
	})

	z, mean, std := Standardise(x)

	// Column means of the result are ~0
	for j := 0; j < 2; j++ {
		sum := 0.0
		for i := 0; i < 5; i++ {
			sum += z.At(i, j)
		}
		assert.InDelta(0.0, sum/5.0, 1e-12)
	}

	// Applying the same statistics to the same data gives the same result
	z2 := StandardiseWith(x, mean, std)
	assert.True(mat.EqualApprox(z, z2, 1e-12))

	// Unstandardise inverts exactly (up to floating point)
	back := Unstandardise(z, mean, std)
	assert.True(mat.EqualApprox(x, back, 1e-12))
}

func TestCholLogDet(t *testing.T) {
	assert := assert.New(t)

	cases := []*mat.SymDense{
		mat.NewSymDense(2, []float64{
			2.0, 0.5,
			0.5, 1.0,
		}),
		mat.NewSymDense(3, []float64{
			4.0, 1.0, 0.5,
			1.0, 3.0, 0.2,
			0.5, 0.2, 2.0,
		}),
	}

	for _, a := range cases {
		got, err := CholLogDet(a)
		assert.NoError(err)

		// Compare against a direct determinant for these small matrices
		want := math.Log(mat.Det(a))
		assert.InDelta(want, got, 1e-10)
	}
}

func TestCholLogDetNotPD(t *testing.T) {
	assert := assert.New(t)

	// Negative eigenvalue: not positive definite
	a := mat.NewSymDense(2, []float64{
		1.0, 2.0,
		2.0, 1.0,
	})

	_, err := CholLogDet(a)
	assert.Error(err)
	assert.Equal(ErrNumericalInstability, errors.Cause(err))
}

func TestWoodburyMatchesDirect(t *testing.T) {
	assert := assert.New(t)

	const n, m = 5, 2

	a := mat.NewDiagDense(n, []float64{1.5, 2.0, 0.5, 3.0, 1.0})
	b := mat.NewDense(n, m, []float64{
		1.0, 0.2,
		0.3, 1.1,
		-0.5, 0.7,
		0.9, -0.4,
		0.1, 0.6,
	})
	c := mat.NewDense(m, n, []float64{
		0.4, -0.2, 0.8, 0.5, -0.1,
		1.2, 0.3, -0.6, 0.2, 0.9,
	})
	d := mat.NewDense(m, m, []float64{
		2.0, 0.1,
		0.3, 1.5,
	})
	y := mat.NewVecDense(n, []float64{0.5, -1.0, 2.0, 0.3, -0.7})

	got, err := WoodburyIdentity(a, b, c, d, y)
	assert.NoError(err)

	// Direct evaluation: y' (A + B D^-1 C)^-1 y
	var dinv mat.Dense
	assert.NoError(dinv.Inverse(d))
	var low mat.Dense
	low.Product(b, &dinv, c)
	var full mat.Dense
	full.Add(a, &low)
	var finv mat.Dense
	assert.NoError(finv.Inverse(&full))
	tmp := mat.NewVecDense(n, nil)
	tmp.MulVec(&finv, y)
	want := mat.Dot(y, tmp)

	assert.InDelta(want, got, 1e-10)
}

func TestWoodburySingularInner(t *testing.T) {
	assert := assert.New(t)

	const n, m = 3, 2

	a := mat.NewDiagDense(n, []float64{1, 1, 1})
	b := mat.NewDense(n, m, nil)
	c := mat.NewDense(m, n, nil)
	// With B and C zero, the inner matrix is exactly D - make D singular
	d := mat.NewDense(m, m, []float64{
		1.0, 2.0,
		2.0, 4.0,
	})
	y := mat.NewVecDense(n, []float64{1, 2, 3})

	_, err := WoodburyIdentity(a, b, c, d, y)
	assert.Error(err)
	assert.Equal(ErrNumericalInstability, errors.Cause(err))
}

func TestWoodburyBadShapes(t *testing.T) {
	assert := assert.New(t)

	a := mat.NewDiagDense(3, []float64{1, 1, 1})
	b := mat.NewDense(3, 2, nil)
	c := mat.NewDense(2, 3, nil)
	d := mat.NewDense(2, 2, []float64{1, 0, 0, 1})

	_, err := WoodburyIdentity(a, b, c, d, mat.NewVecDense(4, nil))
	assert.Error(err)

	_, err = WoodburyIdentity(a, mat.NewDense(2, 2, nil), c, d, mat.NewVecDense(3, nil))
	assert.Error(err)
}
