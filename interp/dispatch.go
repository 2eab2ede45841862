package interp

import (
	"github.com/pkg/errors"

	"github.com/gojvm/gojvm/classfile"
	"github.com/gojvm/gojvm/runtime"
)

// dispatch executes a single decoded opcode against frame. It returns
// the method's return value and true when a return-family instruction
// fires; otherwise it returns a zero Value and false and the caller's
// loop continues at the (possibly branch-updated) PC (spec §4.6.2).
func (vm *VM) dispatch(cf *classfile.ClassFile, frame *runtime.Frame, opcode byte) (runtime.Value, bool, error) {
	switch opcode {
	case OpNop:
		// do nothing

	case OpAconstNull:
		frame.Push(runtime.NullValue())
	case OpIconstM1:
		frame.Push(runtime.IntValue(-1))
	case OpIconst0:
		frame.Push(runtime.IntValue(0))
	case OpIconst1:
		frame.Push(runtime.IntValue(1))
	case OpIconst2:
		frame.Push(runtime.IntValue(2))
	case OpIconst3:
		frame.Push(runtime.IntValue(3))
	case OpIconst4:
		frame.Push(runtime.IntValue(4))
	case OpIconst5:
		frame.Push(runtime.IntValue(5))
	case OpLconst0:
		frame.Push(runtime.LongValue(0))
	case OpLconst1:
		frame.Push(runtime.LongValue(1))
	case OpFconst0:
		frame.Push(runtime.FloatValue(0))
	case OpFconst1:
		frame.Push(runtime.FloatValue(1))
	case OpFconst2:
		frame.Push(runtime.FloatValue(2))
	case OpDconst0:
		frame.Push(runtime.DoubleValue(0))
	case OpDconst1:
		frame.Push(runtime.DoubleValue(1))

	case OpBipush:
		frame.Push(runtime.IntValue(int32(frame.ReadI8())))
	case OpSipush:
		frame.Push(runtime.IntValue(int32(frame.ReadI16())))

	case OpLdc:
		return runtime.Value{}, false, vm.execLdc(cf, frame, uint16(frame.ReadU8()))
	case OpLdcW:
		return runtime.Value{}, false, vm.execLdc(cf, frame, frame.ReadU16())
	case OpLdc2W:
		return runtime.Value{}, false, vm.execLdc2W(cf, frame, frame.ReadU16())

	// --- loads ---
	case OpIload:
		frame.Push(frame.GetLocal(int(frame.ReadU8())))
	case OpLload:
		frame.Push(frame.GetLocal(int(frame.ReadU8())))
	case OpFload:
		frame.Push(frame.GetLocal(int(frame.ReadU8())))
	case OpDload:
		frame.Push(frame.GetLocal(int(frame.ReadU8())))
	case OpAload:
		frame.Push(frame.GetLocal(int(frame.ReadU8())))
	case OpIload0, OpLload0, OpFload0, OpDload0, OpAload0:
		frame.Push(frame.GetLocal(0))
	case OpIload1, OpLload1, OpFload1, OpDload1, OpAload1:
		frame.Push(frame.GetLocal(1))
	case OpIload2, OpLload2, OpFload2, OpDload2, OpAload2:
		frame.Push(frame.GetLocal(2))
	case OpIload3, OpLload3, OpFload3, OpDload3, OpAload3:
		frame.Push(frame.GetLocal(3))

	case OpIaload, OpLaload, OpFaload, OpDaload, OpAaload, OpBaload, OpCaload, OpSaload:
		return runtime.Value{}, false, vm.execArrayLoad(frame)

	// --- stores ---
	case OpIstore, OpLstore, OpFstore, OpDstore, OpAstore:
		frame.SetLocal(int(frame.ReadU8()), frame.Pop())
	case OpIstore0, OpLstore0, OpFstore0, OpDstore0, OpAstore0:
		frame.SetLocal(0, frame.Pop())
	case OpIstore1, OpLstore1, OpFstore1, OpDstore1, OpAstore1:
		frame.SetLocal(1, frame.Pop())
	case OpIstore2, OpLstore2, OpFstore2, OpDstore2, OpAstore2:
		frame.SetLocal(2, frame.Pop())
	case OpIstore3, OpLstore3, OpFstore3, OpDstore3, OpAstore3:
		frame.SetLocal(3, frame.Pop())

	case OpIastore, OpLastore, OpFastore, OpDastore, OpAastore, OpBastore, OpCastore, OpSastore:
		return runtime.Value{}, false, vm.execArrayStore(frame)

	// --- stack manipulation ---
	case OpPop:
		frame.Pop()
	case OpPop2:
		if frame.Peek().NumSlots() == 2 {
			frame.Pop()
		} else {
			frame.Pop()
			frame.Pop()
		}
	case OpDup:
		v := frame.Peek()
		frame.Push(v)
	case OpDupX1:
		vm.execDupX1(frame)
	case OpDupX2:
		vm.execDupX2(frame)
	case OpDup2:
		vm.execDup2(frame)
	case OpDup2X1:
		vm.execDup2X1(frame)
	case OpDup2X2:
		vm.execDup2X2(frame)
	case OpSwap:
		a := frame.Pop()
		b := frame.Pop()
		frame.Push(a)
		frame.Push(b)

	// --- arithmetic, shifts, bitwise, conversions, compares ---
	case OpIadd, OpLadd, OpFadd, OpDadd,
		OpIsub, OpLsub, OpFsub, OpDsub,
		OpImul, OpLmul, OpFmul, OpDmul,
		OpIdiv, OpLdiv, OpFdiv, OpDdiv,
		OpIrem, OpLrem, OpFrem, OpDrem,
		OpIneg, OpLneg, OpFneg, OpDneg:
		return runtime.Value{}, false, vm.execArith(frame, opcode)

	case OpIshl, OpLshl, OpIshr, OpLshr, OpIushr, OpLushr,
		OpIand, OpLand, OpIor, OpLor, OpIxor, OpLxor:
		vm.execBitwise(frame, opcode)

	case OpIinc:
		idx := int(frame.ReadU8())
		delta := int32(frame.ReadI8())
		v := frame.GetLocal(idx)
		frame.SetLocal(idx, runtime.IntValue(v.Int()+delta))

	case OpI2l, OpI2f, OpI2d, OpL2i, OpL2f, OpL2d,
		OpF2i, OpF2l, OpF2d, OpD2i, OpD2l, OpD2f,
		OpI2b, OpI2c, OpI2s:
		vm.execConvert(frame, opcode)

	case OpLcmp, OpFcmpl, OpFcmpg, OpDcmpl, OpDcmpg:
		vm.execCompare(frame, opcode)

	// --- control flow ---
	case OpIfeq, OpIfne, OpIflt, OpIfge, OpIfgt, OpIfle,
		OpIfIcmpeq, OpIfIcmpne, OpIfIcmplt, OpIfIcmpge, OpIfIcmpgt, OpIfIcmple,
		OpIfAcmpeq, OpIfAcmpne, OpIfnull, OpIfnonnull:
		vm.execIf(frame, opcode)

	case OpGoto:
		opcodePC := frame.PC - 1
		offset := int(frame.ReadI16())
		frame.PC = opcodePC + offset
	case OpGotoW:
		opcodePC := frame.PC - 1
		offset := int(frame.ReadI32())
		frame.PC = opcodePC + offset

	case OpJsr:
		opcodePC := frame.PC - 1
		offset := int(frame.ReadI16())
		ret := frame.PC
		frame.PC = opcodePC + offset
		frame.Push(runtime.ReturnAddressValue(ret))
	case OpJsrW:
		opcodePC := frame.PC - 1
		offset := int(frame.ReadI32())
		ret := frame.PC
		frame.PC = opcodePC + offset
		frame.Push(runtime.ReturnAddressValue(ret))
	case OpRet:
		idx := int(frame.ReadU8())
		frame.PC = frame.GetLocal(idx).ReturnPC()

	case OpTableswitch:
		vm.execTableswitch(frame)
	case OpLookupswitch:
		vm.execLookupswitch(frame)

	case OpWide:
		return runtime.Value{}, false, vm.execWide(frame)

	// --- returns ---
	case OpIreturn, OpLreturn, OpFreturn, OpDreturn, OpAreturn:
		return frame.Pop(), true, nil
	case OpReturn:
		return runtime.Value{}, true, nil

	// --- fields ---
	case OpGetstatic:
		return runtime.Value{}, false, vm.execGetstatic(cf, frame)
	case OpPutstatic:
		return runtime.Value{}, false, vm.execPutstatic(cf, frame)
	case OpGetfield:
		return runtime.Value{}, false, vm.execGetfield(cf, frame)
	case OpPutfield:
		return runtime.Value{}, false, vm.execPutfield(cf, frame)

	// --- invocation ---
	case OpInvokevirtual:
		return vm.execInvokevirtual(cf, frame)
	case OpInvokespecial:
		return vm.execInvokespecial(cf, frame)
	case OpInvokestatic:
		return vm.execInvokestatic(cf, frame)
	case OpInvokeinterface:
		return vm.execInvokeinterface(cf, frame)
	case OpInvokedynamic:
		return runtime.Value{}, false, vm.execInvokedynamic(cf, frame)

	// --- object/array creation ---
	case OpNew:
		return runtime.Value{}, false, vm.execNew(cf, frame)
	case OpNewarray:
		vm.execNewarray(frame)
	case OpAnewarray:
		return runtime.Value{}, false, vm.execAnewarray(cf, frame)
	case OpMultianewarray:
		return runtime.Value{}, false, vm.execMultianewarray(cf, frame)
	case OpArraylength:
		return runtime.Value{}, false, vm.execArraylength(frame)

	case OpAthrow:
		return runtime.Value{}, false, vm.execAthrow(frame)
	case OpCheckcast:
		return runtime.Value{}, false, vm.execCheckcast(cf, frame)
	case OpInstanceof:
		return runtime.Value{}, false, vm.execInstanceof(cf, frame)

	case OpMonitorenter, OpMonitorexit:
		frame.Pop() // no-op: this interpreter is single-threaded (spec §5)

	default:
		return runtime.Value{}, false, errors.Errorf("unimplemented opcode 0x%02X", opcode)
	}

	return runtime.Value{}, false, nil
}
