// Package linalg holds the small set of stateless numerical routines the
// modeling core relies on: identity construction, per-column standardisation,
// Cholesky-based log-determinants, and the Woodbury matrix identity for
// low-rank quadratic forms.
package linalg

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ErrNumericalInstability is the root cause for factorization failures: a
// Cholesky on a non-positive-definite matrix or a singular Woodbury inner
// matrix. It is surfaced to the caller rather than silently regularized,
// since hiding it would mask model misspecification.
var ErrNumericalInstability = errors.New("numerical instability")

// Eye returns the n x n identity matrix.
func Eye(n int) *mat.Dense {
	out := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		out.Set(i, i, 1)
	}
	return out
}

// Standardise z-scores x per column and returns the standardised matrix along
// with the column means and population standard deviations it computed. This
// is the training-set form; use StandardiseWith to apply the same statistics
// to held-out data.
func Standardise(x *mat.Dense) (z *mat.Dense, mean, std []float64) {
	_, c := x.Dims()
	mean = make([]float64, c)
	std = make([]float64, c)
	for j := 0; j < c; j++ {
		col := mat.Col(nil, j, x)
		mean[j] = stat.Mean(col, nil)
		std[j] = math.Sqrt(stat.PopVariance(col, nil))
	}
	return StandardiseWith(x, mean, std), mean, std
}

// StandardiseWith z-scores x per column using previously computed statistics.
func StandardiseWith(x *mat.Dense, mean, std []float64) *mat.Dense {
	r, c := x.Dims()
	out := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, (x.At(i, j)-mean[j])/std[j])
		}
	}
	return out
}

// Unstandardise inverts StandardiseWith exactly (up to floating point) when
// given the same mean and std, mapping a standardised matrix back onto its
// original scale.
func Unstandardise(x *mat.Dense, mean, std []float64) *mat.Dense {
	r, c := x.Dims()
	out := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, x.At(i, j)*std[j]+mean[j])
		}
	}
	return out
}

// CholLogDet computes log det(A) for a symmetric positive-definite A as
// 2*sum(log(diag(L))) over the lower Cholesky factor, avoiding the overflow
// of forming det(A) directly for large or ill-conditioned matrices.
func CholLogDet(a mat.Symmetric) (float64, error) {
	var ch mat.Cholesky
	if ok := ch.Factorize(a); !ok {
		return 0, errors.Wrapf(ErrNumericalInstability,
			"Cholesky failed: %d x %d matrix is not positive definite", a.SymmetricDim(), a.SymmetricDim())
	}
	return ch.LogDet(), nil
}

// WoodburyIdentity computes y'(A + B D^-1 C)^-1 y without forming the N x N
// inverse: only the M x M matrix D + C A^-1 B is inverted, dropping the cost
// from O(N^3) to O(N*M^2 + M^3) when N >> M.
//
// A must be diagonal (N x N), B is N x M, C is M x N, D is M x M invertible,
// and y has length N.
func WoodburyIdentity(a *mat.DiagDense, b, c, d mat.Matrix, y *mat.VecDense) (float64, error) {
	n := a.SymmetricDim()
	br, bc := b.Dims()
	cr, cc := c.Dims()
	dr, dc := d.Dims()
	m := dr

	switch {
	case y.Len() != n:
		return 0, errors.Errorf("Woodbury: y has length %d, want %d", y.Len(), n)
	case br != n || cc != n:
		return 0, errors.Errorf("Woodbury: B is %d x %d and C is %d x %d, want %d rows/cols", br, bc, cr, cc, n)
	case dr != dc || bc != m || cr != m:
		return 0, errors.Errorf("Woodbury: inner dimensions disagree (B %d x %d, C %d x %d, D %d x %d)",
			br, bc, cr, cc, dr, dc)
	}

	// A^-1 y and y' A^-1 y via the diagonal
	ainvY := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		ainvY.SetVec(i, y.AtVec(i)/a.At(i, i))
	}
	yAinvY := mat.Dot(y, ainvY)

	// C A^-1 (scale C's columns by the inverse diagonal)
	cAinv := mat.NewDense(m, n, nil)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			cAinv.Set(i, j, c.At(i, j)/a.At(j, j))
		}
	}

	// E = D + C A^-1 B
	var e mat.Dense
	e.Mul(cAinv, b)
	e.Add(&e, d)

	// z = E^-1 (C A^-1 y)
	cAinvY := mat.NewVecDense(m, nil)
	cAinvY.MulVec(c, ainvY)
	var z mat.VecDense
	if err := z.SolveVec(&e, cAinvY); err != nil {
		return 0, errors.Wrapf(ErrNumericalInstability, "Woodbury inner %d x %d matrix is singular", m, m)
	}

	// y' A^-1 B
	yAinvB := mat.NewVecDense(m, nil)
	yAinvB.MulVec(b.T(), ainvY)

	return yAinvY - mat.Dot(yAinvB, &z), nil
}
