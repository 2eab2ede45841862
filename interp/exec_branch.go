package interp

import (
	"github.com/pkg/errors"

	"github.com/gojvm/gojvm/runtime"
)

// execIf handles every two-operand-or-fewer conditional branch. The
// branch offset is read relative to the opcode's own PC, not the PC
// after the 2-byte immediate: frame.PC has already advanced past the
// opcode byte when dispatch calls this, so opcodePC = frame.PC-1
// recovers it (spec §4.6.3, resolved Open Question on branch-offset
// arithmetic).
func (vm *VM) execIf(frame *runtime.Frame, opcode byte) {
	opcodePC := frame.PC - 1
	offset := int(frame.ReadI16())

	var taken bool
	switch opcode {
	case OpIfeq:
		taken = frame.Pop().Int() == 0
	case OpIfne:
		taken = frame.Pop().Int() != 0
	case OpIflt:
		taken = frame.Pop().Int() < 0
	case OpIfge:
		taken = frame.Pop().Int() >= 0
	case OpIfgt:
		taken = frame.Pop().Int() > 0
	case OpIfle:
		taken = frame.Pop().Int() <= 0
	case OpIfIcmpeq:
		b, a := frame.Pop(), frame.Pop()
		taken = a.Int() == b.Int()
	case OpIfIcmpne:
		b, a := frame.Pop(), frame.Pop()
		taken = a.Int() != b.Int()
	case OpIfIcmplt:
		b, a := frame.Pop(), frame.Pop()
		taken = a.Int() < b.Int()
	case OpIfIcmpge:
		b, a := frame.Pop(), frame.Pop()
		taken = a.Int() >= b.Int()
	case OpIfIcmpgt:
		b, a := frame.Pop(), frame.Pop()
		taken = a.Int() > b.Int()
	case OpIfIcmple:
		b, a := frame.Pop(), frame.Pop()
		taken = a.Int() <= b.Int()
	case OpIfAcmpeq:
		b, a := frame.Pop(), frame.Pop()
		taken = a.RefVal() == b.RefVal()
	case OpIfAcmpne:
		b, a := frame.Pop(), frame.Pop()
		taken = a.RefVal() != b.RefVal()
	case OpIfnull:
		taken = frame.Pop().IsNull()
	case OpIfnonnull:
		taken = !frame.Pop().IsNull()
	}

	if taken {
		frame.PC = opcodePC + offset
	}
}

// execTableswitch implements the tableswitch instruction: aligned
// padding to the next 4-byte boundary (relative to the start of
// method code), then default offset, low, high, and (high-low+1)
// jump offsets.
func (vm *VM) execTableswitch(frame *runtime.Frame) {
	opcodePC := frame.PC - 1
	for frame.PC%4 != 0 {
		frame.ReadU8()
	}
	defaultOffset := int(frame.ReadI32())
	low := frame.ReadI32()
	high := frame.ReadI32()

	offsets := make([]int32, high-low+1)
	for i := range offsets {
		offsets[i] = frame.ReadI32()
	}

	index := frame.Pop().Int()
	if index < low || index > high {
		frame.PC = opcodePC + defaultOffset
		return
	}
	frame.PC = opcodePC + int(offsets[index-low])
}

// execLookupswitch implements the lookupswitch instruction: aligned
// padding, default offset, npairs, then npairs sorted (match, offset)
// pairs.
func (vm *VM) execLookupswitch(frame *runtime.Frame) {
	opcodePC := frame.PC - 1
	for frame.PC%4 != 0 {
		frame.ReadU8()
	}
	defaultOffset := int(frame.ReadI32())
	npairs := frame.ReadI32()

	key := frame.Pop().Int()
	for i := int32(0); i < npairs; i++ {
		match := frame.ReadI32()
		offset := frame.ReadI32()
		if match == key {
			frame.PC = opcodePC + int(offset)
			return
		}
	}
	frame.PC = opcodePC + defaultOffset
}

// execWide handles the wide prefix: the next instruction's local
// index (and, for iinc, its constant) is read as a 16-bit value
// instead of 8-bit (spec §4.6.3). Supported forms: *load, *store,
// iinc and ret; any other sub-opcode is an error.
func (vm *VM) execWide(frame *runtime.Frame) error {
	sub := frame.ReadU8()
	idx := int(frame.ReadU16())

	switch sub {
	case OpIload, OpLload, OpFload, OpDload, OpAload:
		frame.Push(frame.GetLocal(idx))
	case OpIstore, OpLstore, OpFstore, OpDstore, OpAstore:
		frame.SetLocal(idx, frame.Pop())
	case OpIinc:
		delta := int32(frame.ReadI16())
		v := frame.GetLocal(idx)
		frame.SetLocal(idx, runtime.IntValue(v.Int()+delta))
	case OpRet:
		frame.PC = frame.GetLocal(idx).ReturnPC()
	default:
		return errors.Errorf("wide: unsupported sub-opcode 0x%02X", sub)
	}
	return nil
}
