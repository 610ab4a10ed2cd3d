package buffer

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/batch2d"
)

// Scalar is the set of element types a buffer can hold.
type Scalar interface {
	float32 | uint16 | uint32
}

// Kind identifies the element type of a buffer.
type Kind uint8

const (
	Float32 Kind = iota
	Uint16
	Uint32
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Float32:
		return "float32"
	case Uint16:
		return "uint16"
	case Uint32:
		return "uint32"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Size returns the element size in bytes.
func (k Kind) Size() int {
	if k == Uint16 {
		return 2
	}
	return 4
}

// KindOf returns the Kind for T.
func KindOf[T Scalar]() Kind {
	var zero T
	switch any(zero).(type) {
	case uint16:
		return Uint16
	case uint32:
		return Uint32
	default:
		return Float32
	}
}

// Dynamic is a growable array of scalars.
//
// Len() <= Cap() always holds. Growth doubles the capacity until the
// request fits; Clear and Pop never release memory.
type Dynamic[T Scalar] struct {
	data    []T
	used    int
	grows   int
	scratch []byte
}

// NewDynamic returns a buffer with the given initial capacity.
func NewDynamic[T Scalar](capacity int) *Dynamic[T] {
	return &Dynamic[T]{data: make([]T, max(capacity, 0))}
}

// Len returns the number of scalars in use.
func (d *Dynamic[T]) Len() int { return d.used }

// Cap returns the allocated capacity in scalars.
func (d *Dynamic[T]) Cap() int { return len(d.data) }

// Kind returns the element type.
func (d *Dynamic[T]) Kind() Kind { return KindOf[T]() }

// Grows returns how many times the buffer reallocated.
func (d *Dynamic[T]) Grows() int { return d.grows }

// Resize makes room for extra more scalars without changing Len.
func (d *Dynamic[T]) Resize(extra int) {
	need := d.used + extra
	if need <= len(d.data) {
		return
	}
	newCap := max(len(d.data), 1)
	for newCap < need {
		newCap *= 2
	}
	data := make([]T, newCap)
	copy(data, d.data[:d.used])
	d.data = data
	d.grows++
	batch2d.Logger().Debug("buffer: grow",
		"kind", d.Kind().String(), "cap", newCap, "used", d.used)
}

// Push appends one scalar.
func (d *Dynamic[T]) Push(v T) {
	if d.used == len(d.data) {
		d.Resize(1)
	}
	d.data[d.used] = v
	d.used++
}

// PushN appends several scalars with a single capacity check.
func (d *Dynamic[T]) PushN(vs ...T) {
	d.Resize(len(vs))
	d.used += copy(d.data[d.used:], vs)
}

// Pop removes the last n scalars. Popping more than Len empties the buffer.
func (d *Dynamic[T]) Pop(n int) {
	d.used = max(d.used-max(n, 0), 0)
}

// Clear empties the buffer and keeps its capacity.
func (d *Dynamic[T]) Clear() { d.used = 0 }

// View returns the scalars in [begin, end), clamped to the used range.
// The slice aliases the buffer and is only valid until the next mutation.
func (d *Dynamic[T]) View(begin, end int) []T {
	begin = min(max(begin, 0), d.used)
	end = min(max(end, begin), d.used)
	return d.data[begin:end:end]
}

// ViewAll returns every scalar in use.
func (d *Dynamic[T]) ViewAll() []T {
	return d.View(0, d.used)
}

// Bytes returns the used range encoded little-endian. The slice is reused
// across calls.
func (d *Dynamic[T]) Bytes() []byte {
	n := d.used * d.Kind().Size()
	if cap(d.scratch) < n {
		d.scratch = make([]byte, n, len(d.data)*d.Kind().Size())
	}
	out := d.scratch[:n]
	le := binary.LittleEndian
	switch s := any(d.data[:d.used]).(type) {
	case []float32:
		for i, v := range s {
			le.PutUint32(out[i*4:], math.Float32bits(v))
		}
	case []uint16:
		for i, v := range s {
			le.PutUint16(out[i*2:], v)
		}
	case []uint32:
		for i, v := range s {
			le.PutUint32(out[i*4:], v)
		}
	}
	return out
}
