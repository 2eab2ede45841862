// Package runtime holds the interpreter's value model: width-aware
// slots, frames, the operand/local arrays, the call stack, and the
// heap (object pool). It does not import classfile; slot width is
// decided from each Value's own type tag.
package runtime

import "math"

// ValueType tags the kind of value held by a Value.
type ValueType int

const (
	TypeInt ValueType = iota
	TypeLong
	TypeFloat
	TypeDouble
	TypeRef
	// TypeReturnAddress is pushed by jsr/jsr_w and consumed by ret;
	// it carries a code offset rather than an object pool reference.
	TypeReturnAddress
)

// Value is a tagged, width-aware operand/local value. Category-1
// values (int, float, ref) occupy one Value; category-2 values (long,
// double) also occupy one Value here, but NumSlots reports 2 so
// callers can maintain the two-consecutive-slots invariant spec §3
// requires wherever slot counting (not just storage) matters.
type Value struct {
	Type ValueType
	i    int32
	l    int64
	f    float32
	d    float64
	ref  Ref
}

// IntValue creates an int-typed Value.
func IntValue(v int32) Value { return Value{Type: TypeInt, i: v} }

// LongValue creates a long-typed Value.
func LongValue(v int64) Value { return Value{Type: TypeLong, l: v} }

// FloatValue creates a float-typed Value.
func FloatValue(v float32) Value { return Value{Type: TypeFloat, f: v} }

// DoubleValue creates a double-typed Value.
func DoubleValue(v float64) Value { return Value{Type: TypeDouble, d: v} }

// RefValue creates a reference-typed Value. Use NullRef for null.
func RefValue(r Ref) Value { return Value{Type: TypeRef, ref: r} }

// NullValue creates the null reference Value.
func NullValue() Value { return Value{Type: TypeRef, ref: NullRef} }

// ReturnAddressValue creates a jsr return-address Value.
func ReturnAddressValue(pc int) Value { return Value{Type: TypeReturnAddress, i: int32(pc)} }

// Int returns the int32 payload.
func (v Value) Int() int32 { return v.i }

// Long returns the int64 payload.
func (v Value) Long() int64 { return v.l }

// Float returns the float32 payload.
func (v Value) Float() float32 { return v.f }

// Double returns the float64 payload.
func (v Value) Double() float64 { return v.d }

// RefVal returns the reference payload.
func (v Value) RefVal() Ref { return v.ref }

// ReturnPC returns the jsr return address payload.
func (v Value) ReturnPC() int { return int(v.i) }

// IsNull reports whether a reference-typed Value is the null sentinel.
func (v Value) IsNull() bool { return v.Type == TypeRef && v.ref == NullRef }

// NumSlots reports how many 32-bit slots this value's type occupies:
// 2 for long/double, 1 otherwise (spec §3).
func (v Value) NumSlots() int {
	if v.Type == TypeLong || v.Type == TypeDouble {
		return 2
	}
	return 1
}

// Bits64 reinterprets an int/float/ref/return-address Value as a raw
// 32-bit pattern, and a long/double Value as a raw 64-bit pattern, so
// callers can compare values bit for bit without caring about type
// (spec §8). dup/swap copy whole Values and do not call it.
func (v Value) Bits64() uint64 {
	switch v.Type {
	case TypeLong:
		return uint64(v.l)
	case TypeDouble:
		return math.Float64bits(v.d)
	case TypeFloat:
		return uint64(math.Float32bits(v.f))
	case TypeRef:
		return uint64(uint32(v.ref))
	default:
		return uint64(uint32(v.i))
	}
}

// Ref is a small integer identifying a Heap arena slot. Ref 0 is the
// null sentinel (spec §3, Design Note 9).
type Ref int32

// NullRef is the reserved null reference.
const NullRef Ref = 0
