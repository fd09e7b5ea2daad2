package params

import (
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

type valueKind int

const (
	scalarKind valueKind = iota
	vectorKind
	matrixKind
)

// Value is a single named parameter's numerical content: a scalar, a vector,
// or a dense matrix. Values are treated as immutable - accessors hand back
// copies of slice/matrix content so a Store can never be mutated through a
// previously returned Value.
type Value struct {
	kind valueKind
	s    float64
	v    []float64
	m    *mat.Dense
}

// Scalar creates a scalar-valued parameter.
func Scalar(x float64) Value {
	return Value{kind: scalarKind, s: x}
}

// Vector creates a vector-valued parameter.
func Vector(xs ...float64) Value {
	cp := make([]float64, len(xs))
	copy(cp, xs)
	return Value{kind: vectorKind, v: cp}
}

// Matrix creates a matrix-valued parameter.
func Matrix(m *mat.Dense) Value {
	cp := mat.DenseCopyOf(m)
	return Value{kind: matrixKind, m: cp}
}

// Zeros creates an r x c matrix parameter of all zeros. This is the shape the
// latent-process block of a non-conjugate model takes: (n_data, 1).
func Zeros(r, c int) Value {
	return Value{kind: matrixKind, m: mat.NewDense(r, c, nil)}
}

// IsScalar reports whether the value holds a scalar.
func (v Value) IsScalar() bool { return v.kind == scalarKind }

// IsVector reports whether the value holds a vector.
func (v Value) IsVector() bool { return v.kind == vectorKind }

// IsMatrix reports whether the value holds a matrix.
func (v Value) IsMatrix() bool { return v.kind == matrixKind }

// Scalar returns the scalar content. Calling this on a non-scalar value is a
// programmer error and panics.
func (v Value) Scalar() float64 {
	if v.kind != scalarKind {
		panic("params: Scalar called on non-scalar value")
	}
	return v.s
}

// Vector returns a copy of the vector content.
func (v Value) Vector() []float64 {
	if v.kind != vectorKind {
		panic("params: Vector called on non-vector value")
	}
	cp := make([]float64, len(v.v))
	copy(cp, v.v)
	return cp
}

// Matrix returns a copy of the matrix content.
func (v Value) Matrix() *mat.Dense {
	if v.kind != matrixKind {
		panic("params: Matrix called on non-matrix value")
	}
	return mat.DenseCopyOf(v.m)
}

// Equal reports exact equality of kind and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case scalarKind:
		return v.s == o.s
	case vectorKind:
		if len(v.v) != len(o.v) {
			return false
		}
		for i := range v.v {
			if v.v[i] != o.v[i] {
				return false
			}
		}
		return true
	default:
		return mat.Equal(v.m, o.m)
	}
}

// Pair is a single key/value entry used to build a Store.
type Pair struct {
	Key string
	Val Value
}

// Store is a flat, order-aware mapping from parameter name to Value. All
// mutating operations are copy-on-write: they return a new Store and never
// touch the receiver, so stores can be shared freely across call sites.
//
// A Store remembers insertion order until Sort is applied; every construction
// path in the gp package normalizes with Sort so that two stores built from
// the same logical content vectorize identically.
type Store struct {
	keys []string
	vals map[string]Value
}

// New creates a Store from the given pairs, preserving their order. A
// duplicate key keeps its first position but takes the last value, matching
// concatenation semantics.
func New(pairs ...Pair) Store {
	s := Store{
		keys: make([]string, 0, len(pairs)),
		vals: make(map[string]Value, len(pairs)),
	}
	for _, p := range pairs {
		if _, ok := s.vals[p.Key]; !ok {
			s.keys = append(s.keys, p.Key)
		}
		s.vals[p.Key] = p.Val
	}
	return s
}

// Len returns the number of parameters held.
func (s Store) Len() int {
	return len(s.keys)
}

// Keys returns the parameter names in the store's current order.
func (s Store) Keys() []string {
	cp := make([]string, len(s.keys))
	copy(cp, s.keys)
	return cp
}

// Get looks up a parameter by name.
func (s Store) Get(key string) (Value, bool) {
	v, ok := s.vals[key]
	return v, ok
}

// Float returns the named scalar parameter, or an error if the key is absent
// or holds a non-scalar.
func (s Store) Float(key string) (float64, error) {
	v, ok := s.vals[key]
	if !ok {
		return 0, errors.Errorf("Parameter %q is missing", key)
	}
	if !v.IsScalar() {
		return 0, errors.Errorf("Parameter %q is not a scalar", key)
	}
	return v.Scalar(), nil
}

// Dense returns the named matrix parameter, or an error if the key is absent
// or holds a non-matrix.
func (s Store) Dense(key string) (*mat.Dense, error) {
	v, ok := s.vals[key]
	if !ok {
		return nil, errors.Errorf("Parameter %q is missing", key)
	}
	if !v.IsMatrix() {
		return nil, errors.Errorf("Parameter %q is not a matrix", key)
	}
	return v.Matrix(), nil
}

// Clone returns a deep-enough copy of the store (Values are immutable, so the
// key slice and map are all that need duplicating).
func (s Store) Clone() Store {
	cp := Store{
		keys: make([]string, len(s.keys)),
		vals: make(map[string]Value, len(s.keys)),
	}
	copy(cp.keys, s.keys)
	for k, v := range s.vals {
		cp.vals[k] = v
	}
	return cp
}

// Concat appends b below s: the result holds s's keys in order followed by
// b's unseen keys in order. On a key collision b's value wins but the key
// keeps s's position.
func (s Store) Concat(b Store) Store {
	out := s.Clone()
	if out.vals == nil {
		out.vals = make(map[string]Value, b.Len())
	}
	for _, k := range b.keys {
		if _, ok := out.vals[k]; !ok {
			out.keys = append(out.keys, k)
		}
		out.vals[k] = b.vals[k]
	}
	return out
}

// Merge completes s from an override: every key of s is retained, any key
// also present in override takes override's value, and keys unique to the
// override are dropped. The result's key set always equals s's key set.
func (s Store) Merge(override Store) Store {
	out := s.Clone()
	for _, k := range out.keys {
		if v, ok := override.vals[k]; ok {
			out.vals[k] = v
		}
	}
	return out
}

// Sort returns the store with its iteration order fixed to ascending key
// order. Sorting is idempotent.
func (s Store) Sort() Store {
	out := s.Clone()
	sort.Strings(out.keys)
	return out
}

// Add returns a new store equal to s plus the one parameter, sorted.
func (s Store) Add(key string, v Value) Store {
	out := s.Clone()
	if out.vals == nil {
		out.vals = make(map[string]Value, 1)
	}
	if _, ok := out.vals[key]; !ok {
		out.keys = append(out.keys, key)
	}
	out.vals[key] = v
	return out.Sort()
}

// AsConstant partitions s into (free, constant) where constant holds exactly
// the listed keys that exist in s and free holds the remainder. Both halves
// keep s's relative order. Freezing a parameter this way removes it from the
// trainable set without changing how it feeds covariance computation.
func (s Store) AsConstant(keys ...string) (free, constant Store) {
	held := make(map[string]bool, len(keys))
	for _, k := range keys {
		held[k] = true
	}

	free = New()
	constant = New()
	for _, k := range s.keys {
		if held[k] {
			constant.keys = append(constant.keys, k)
			constant.vals[k] = s.vals[k]
		} else {
			free.keys = append(free.keys, k)
			free.vals[k] = s.vals[k]
		}
	}
	return free, constant
}

// Equal reports whether two stores hold the same keys in the same order with
// equal values.
func (s Store) Equal(o Store) bool {
	if len(s.keys) != len(o.keys) {
		return false
	}
	for i, k := range s.keys {
		if o.keys[i] != k {
			return false
		}
		if !s.vals[k].Equal(o.vals[k]) {
			return false
		}
	}
	return true
}
