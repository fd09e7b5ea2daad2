// Package data holds the read-only dataset containers consumed by posterior
// evaluation. A Dataset pairs an (n, d) input matrix with an optional (n, 1)
// output matrix; Y may be absent for prior-only evaluation.
package data

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/probfit/gproc/rand"
)

// Dataset is an immutable {X, Y} pair. Y may be nil.
type Dataset struct {
	X *mat.Dense
	Y *mat.Dense
}

// N returns the number of data points.
func (d Dataset) N() int {
	r, _ := d.X.Dims()
	return r
}

// InDim returns the input dimensionality.
func (d Dataset) InDim() int {
	_, c := d.X.Dims()
	return c
}

// OutDim returns the output dimensionality, or 0 when Y is absent.
func (d Dataset) OutDim() int {
	if d.Y == nil {
		return 0
	}
	_, c := d.Y.Dims()
	return c
}

// Check returns an error if the dataset's shapes are inconsistent.
func (d Dataset) Check() error {
	if d.X == nil {
		return errors.Errorf("Dataset has no input matrix")
	}
	if d.Y != nil {
		xr, _ := d.X.Dims()
		yr, _ := d.Y.Dims()
		if xr != yr {
			return errors.Errorf("Input count %d != output count %d", xr, yr)
		}
	}
	return nil
}

// SparseDataset extends a Dataset with the inducing inputs Z used by sparse
// GP schemes.
type SparseDataset struct {
	Dataset
	Z *mat.Dense
}

// NInducing returns the number of inducing points.
func (d SparseDataset) NInducing() int {
	if d.Z == nil {
		return 0
	}
	r, _ := d.Z.Dims()
	return r
}

// Sample draws n rows from x uniformly at random (with replacement) using the
// given generator, e.g. to pick initial inducing inputs for a sparse scheme.
func Sample(gen *rand.Generator, x *mat.Dense, n int) (*mat.Dense, error) {
	if gen == nil {
		return nil, errors.Errorf("Sample requires a seeded generator")
	}
	if n < 1 {
		return nil, errors.Errorf("Sample size must be positive, got %d", n)
	}

	rows, cols := x.Dims()
	out := mat.NewDense(n, cols, nil)
	for i := 0; i < n; i++ {
		src := int(gen.Int63n(int64(rows)))
		for j := 0; j < cols; j++ {
			out.Set(i, j, x.At(src, j))
		}
	}
	return out, nil
}
