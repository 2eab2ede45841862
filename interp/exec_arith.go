package interp

import (
	"math"

	"github.com/gojvm/gojvm/runtime"
)

// execArith handles the add/sub/mul/div/rem/neg family across all
// four numeric types (spec §4.6.3). Integer and long division/
// remainder by zero raise ErrDivideByZero; float/double division by
// zero follows IEEE 754 and produces Inf/NaN, matching the JVM.
func (vm *VM) execArith(frame *runtime.Frame, opcode byte) error {
	switch opcode {
	case OpIneg:
		v := frame.Pop()
		frame.Push(runtime.IntValue(-v.Int()))
		return nil
	case OpLneg:
		v := frame.Pop()
		frame.Push(runtime.LongValue(-v.Long()))
		return nil
	case OpFneg:
		v := frame.Pop()
		frame.Push(runtime.FloatValue(-v.Float()))
		return nil
	case OpDneg:
		v := frame.Pop()
		frame.Push(runtime.DoubleValue(-v.Double()))
		return nil
	}

	b := frame.Pop()
	a := frame.Pop()

	switch opcode {
	case OpIadd:
		frame.Push(runtime.IntValue(a.Int() + b.Int()))
	case OpLadd:
		frame.Push(runtime.LongValue(a.Long() + b.Long()))
	case OpFadd:
		frame.Push(runtime.FloatValue(a.Float() + b.Float()))
	case OpDadd:
		frame.Push(runtime.DoubleValue(a.Double() + b.Double()))

	case OpIsub:
		frame.Push(runtime.IntValue(a.Int() - b.Int()))
	case OpLsub:
		frame.Push(runtime.LongValue(a.Long() - b.Long()))
	case OpFsub:
		frame.Push(runtime.FloatValue(a.Float() - b.Float()))
	case OpDsub:
		frame.Push(runtime.DoubleValue(a.Double() - b.Double()))

	case OpImul:
		frame.Push(runtime.IntValue(a.Int() * b.Int()))
	case OpLmul:
		frame.Push(runtime.LongValue(a.Long() * b.Long()))
	case OpFmul:
		frame.Push(runtime.FloatValue(a.Float() * b.Float()))
	case OpDmul:
		frame.Push(runtime.DoubleValue(a.Double() * b.Double()))

	case OpIdiv:
		if b.Int() == 0 {
			return runtime.ErrDivideByZero
		}
		frame.Push(runtime.IntValue(a.Int() / b.Int()))
	case OpLdiv:
		if b.Long() == 0 {
			return runtime.ErrDivideByZero
		}
		frame.Push(runtime.LongValue(a.Long() / b.Long()))
	case OpFdiv:
		frame.Push(runtime.FloatValue(a.Float() / b.Float()))
	case OpDdiv:
		frame.Push(runtime.DoubleValue(a.Double() / b.Double()))

	case OpIrem:
		if b.Int() == 0 {
			return runtime.ErrDivideByZero
		}
		frame.Push(runtime.IntValue(a.Int() % b.Int()))
	case OpLrem:
		if b.Long() == 0 {
			return runtime.ErrDivideByZero
		}
		frame.Push(runtime.LongValue(a.Long() % b.Long()))
	case OpFrem:
		frame.Push(runtime.FloatValue(float32(fmod(float64(a.Float()), float64(b.Float())))))
	case OpDrem:
		frame.Push(runtime.DoubleValue(fmod(a.Double(), b.Double())))
	}
	return nil
}

func fmod(a, b float64) float64 {
	return math.Mod(a, b)
}

// execBitwise handles shifts and bitwise logical ops. Shift distances
// are masked to 0-31 for int, 0-63 for long (JVM shift semantics).
func (vm *VM) execBitwise(frame *runtime.Frame, opcode byte) {
	b := frame.Pop()
	a := frame.Pop()

	switch opcode {
	case OpIshl:
		frame.Push(runtime.IntValue(a.Int() << (uint32(b.Int()) & 0x1F)))
	case OpIshr:
		frame.Push(runtime.IntValue(a.Int() >> (uint32(b.Int()) & 0x1F)))
	case OpIushr:
		frame.Push(runtime.IntValue(int32(uint32(a.Int()) >> (uint32(b.Int()) & 0x1F))))
	case OpLshl:
		frame.Push(runtime.LongValue(a.Long() << (uint64(b.Int()) & 0x3F)))
	case OpLshr:
		frame.Push(runtime.LongValue(a.Long() >> (uint64(b.Int()) & 0x3F)))
	case OpLushr:
		frame.Push(runtime.LongValue(int64(uint64(a.Long()) >> (uint64(b.Int()) & 0x3F))))
	case OpIand:
		frame.Push(runtime.IntValue(a.Int() & b.Int()))
	case OpLand:
		frame.Push(runtime.LongValue(a.Long() & b.Long()))
	case OpIor:
		frame.Push(runtime.IntValue(a.Int() | b.Int()))
	case OpLor:
		frame.Push(runtime.LongValue(a.Long() | b.Long()))
	case OpIxor:
		frame.Push(runtime.IntValue(a.Int() ^ b.Int()))
	case OpLxor:
		frame.Push(runtime.LongValue(a.Long() ^ b.Long()))
	}
}

// execConvert handles the numeric conversion family.
func (vm *VM) execConvert(frame *runtime.Frame, opcode byte) {
	v := frame.Pop()
	switch opcode {
	case OpI2l:
		frame.Push(runtime.LongValue(int64(v.Int())))
	case OpI2f:
		frame.Push(runtime.FloatValue(float32(v.Int())))
	case OpI2d:
		frame.Push(runtime.DoubleValue(float64(v.Int())))
	case OpL2i:
		frame.Push(runtime.IntValue(int32(v.Long())))
	case OpL2f:
		frame.Push(runtime.FloatValue(float32(v.Long())))
	case OpL2d:
		frame.Push(runtime.DoubleValue(float64(v.Long())))
	case OpF2i:
		frame.Push(runtime.IntValue(int32(v.Float())))
	case OpF2l:
		frame.Push(runtime.LongValue(int64(v.Float())))
	case OpF2d:
		frame.Push(runtime.DoubleValue(float64(v.Float())))
	case OpD2i:
		frame.Push(runtime.IntValue(int32(v.Double())))
	case OpD2l:
		frame.Push(runtime.LongValue(int64(v.Double())))
	case OpD2f:
		frame.Push(runtime.FloatValue(float32(v.Double())))
	case OpI2b:
		frame.Push(runtime.IntValue(int32(int8(v.Int()))))
	case OpI2c:
		frame.Push(runtime.IntValue(int32(uint16(v.Int()))))
	case OpI2s:
		frame.Push(runtime.IntValue(int32(int16(v.Int()))))
	}
}

// execCompare handles lcmp/fcmpl/fcmpg/dcmpl/dcmpg, each pushing -1,
// 0 or 1. The l/g suffix on the float/double forms decides which
// sentinel an operand-is-NaN comparison produces (spec §4.6.3).
func (vm *VM) execCompare(frame *runtime.Frame, opcode byte) {
	b := frame.Pop()
	a := frame.Pop()

	switch opcode {
	case OpLcmp:
		frame.Push(runtime.IntValue(cmp3(a.Long() > b.Long(), a.Long() < b.Long())))
	case OpFcmpl:
		af, bf := a.Float(), b.Float()
		if isNaN32(af) || isNaN32(bf) {
			frame.Push(runtime.IntValue(-1))
			return
		}
		frame.Push(runtime.IntValue(cmp3(af > bf, af < bf)))
	case OpFcmpg:
		af, bf := a.Float(), b.Float()
		if isNaN32(af) || isNaN32(bf) {
			frame.Push(runtime.IntValue(1))
			return
		}
		frame.Push(runtime.IntValue(cmp3(af > bf, af < bf)))
	case OpDcmpl:
		ad, bd := a.Double(), b.Double()
		if isNaN64(ad) || isNaN64(bd) {
			frame.Push(runtime.IntValue(-1))
			return
		}
		frame.Push(runtime.IntValue(cmp3(ad > bd, ad < bd)))
	case OpDcmpg:
		ad, bd := a.Double(), b.Double()
		if isNaN64(ad) || isNaN64(bd) {
			frame.Push(runtime.IntValue(1))
			return
		}
		frame.Push(runtime.IntValue(cmp3(ad > bd, ad < bd)))
	}
}

func cmp3(gt, lt bool) int32 {
	switch {
	case gt:
		return 1
	case lt:
		return -1
	default:
		return 0
	}
}

func isNaN32(f float32) bool { return f != f }
func isNaN64(f float64) bool { return f != f }
