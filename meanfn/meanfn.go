// Package meanfn defines the mean-function capability for GP priors. A
// prior defaults to the zero mean; Constant adds a single trainable offset.
package meanfn

import (
	"github.com/pkg/errors"

	"github.com/probfit/gproc/params"
)

// A MeanFunction supplies its parameters and evaluates a mean at a point.
type MeanFunction interface {
	// Initialise returns the mean function's initial parameters, sorted.
	Initialise() params.Store

	// Mean evaluates the prior mean at a point.
	Mean(x []float64, p params.Store) (float64, error)
}

var (
	zero     *Zero
	constant *Constant
	_        MeanFunction = zero
	_        MeanFunction = constant
)

// Zero is the zero-mean function. It has no parameters.
type Zero struct{}

// NewZero creates a zero-mean function.
func NewZero() *Zero {
	return &Zero{}
}

// Initialise returns an empty store.
func (m *Zero) Initialise() params.Store {
	return params.New()
}

// Mean is identically zero.
func (m *Zero) Mean(x []float64, p params.Store) (float64, error) {
	return 0.0, nil
}

// Constant is a constant-mean function with a single parameter "constant",
// initialized to 1.
type Constant struct{}

// NewConstant creates a constant-mean function.
func NewConstant() *Constant {
	return &Constant{}
}

// Initialise returns the default offset.
func (m *Constant) Initialise() params.Store {
	return params.New(
		params.Pair{Key: "constant", Val: params.Scalar(1.0)},
	).Sort()
}

// Mean returns the stored offset regardless of the point.
func (m *Constant) Mean(x []float64, p params.Store) (float64, error) {
	c, err := p.Float("constant")
	if err != nil {
		return 0, errors.Wrap(err, "constant mean")
	}
	return c, nil
}
