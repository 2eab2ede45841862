package interp

import (
	"github.com/pkg/errors"

	"github.com/gojvm/gojvm/classfile"
	"github.com/gojvm/gojvm/runtime"
)

// execLdc handles ldc/ldc_w: push an Integer, Float or resolved String
// constant (spec §4.6.3 "ldc").
func (vm *VM) execLdc(cf *classfile.ClassFile, frame *runtime.Frame, index uint16) error {
	pool := cf.ConstantPool
	if int(index) >= len(pool) || pool[index] == nil {
		return errors.Errorf("ldc: invalid constant pool index %d", index)
	}
	switch c := pool[index].(type) {
	case *classfile.ConstantInteger:
		frame.Push(runtime.IntValue(c.Value))
	case *classfile.ConstantFloat:
		frame.Push(runtime.FloatValue(c.Value))
	case *classfile.ConstantString:
		str, err := classfile.GetUtf8(pool, c.StringIndex)
		if err != nil {
			return errors.Wrap(err, "ldc: resolving string")
		}
		frame.Push(runtime.RefValue(vm.internString(str)))
	default:
		return errors.Errorf("ldc: unsupported constant pool entry at index %d (tag=%d)", index, pool[index].Tag())
	}
	return nil
}

// execLdc2W handles ldc2_w: push a Long or Double constant.
func (vm *VM) execLdc2W(cf *classfile.ClassFile, frame *runtime.Frame, index uint16) error {
	pool := cf.ConstantPool
	if int(index) >= len(pool) || pool[index] == nil {
		return errors.Errorf("ldc2_w: invalid constant pool index %d", index)
	}
	switch c := pool[index].(type) {
	case *classfile.ConstantLong:
		frame.Push(runtime.LongValue(c.Value))
	case *classfile.ConstantDouble:
		frame.Push(runtime.DoubleValue(c.Value))
	default:
		return errors.Errorf("ldc2_w: unsupported constant pool entry at index %d (tag=%d)", index, pool[index].Tag())
	}
	return nil
}

// internString allocates a heap object for a string literal and stashes
// its Go string in Native, matching the convention natives.formatArg
// expects when printing (spec §4.6.6). Every ldc of the same literal
// allocates a fresh object: this interpreter does not intern strings,
// a deliberate Non-goal (string identity is not exercised by the test
// programs this VM targets).
func (vm *VM) internString(s string) runtime.Ref {
	ref := vm.heap.NewObject("java/lang/String")
	obj, err := vm.heap.Object(ref)
	if err != nil {
		panic("internString: just-allocated object is unreadable: " + err.Error())
	}
	obj.Native = s
	return ref
}

func (vm *VM) execArrayLoad(frame *runtime.Frame) error {
	index := frame.Pop().Int()
	arrRef := frame.Pop()
	if arrRef.IsNull() {
		return runtime.ErrNullReference
	}
	arr, err := vm.heap.Array(arrRef.RefVal())
	if err != nil {
		return err
	}
	if index < 0 || int(index) >= arr.Len() {
		return runtime.ErrIndexOutOfBounds
	}
	frame.Push(arr.Elements[index])
	return nil
}

func (vm *VM) execArrayStore(frame *runtime.Frame) error {
	value := frame.Pop()
	index := frame.Pop().Int()
	arrRef := frame.Pop()
	if arrRef.IsNull() {
		return runtime.ErrNullReference
	}
	arr, err := vm.heap.Array(arrRef.RefVal())
	if err != nil {
		return err
	}
	if index < 0 || int(index) >= arr.Len() {
		return runtime.ErrIndexOutOfBounds
	}
	arr.Elements[index] = value
	return nil
}

// execDupX1 implements dup_x1: duplicate the top value and insert it
// two slots down (spec §4.6.3).
func (vm *VM) execDupX1(frame *runtime.Frame) {
	a := frame.Pop()
	b := frame.Pop()
	frame.Push(a)
	frame.Push(b)
	frame.Push(a)
}

// execDupX2 implements dup_x2: form 1 inserts the top category-1 value
// three slots down, below two more category-1 values; form 2 inserts
// it two slots down, below a single category-2 long/double (spec
// §4.6.3, §8 category-2 width rule).
func (vm *VM) execDupX2(frame *runtime.Frame) {
	a := frame.Pop()
	second := frame.Peek()
	if second.NumSlots() == 2 {
		b := frame.Pop()
		frame.Push(a)
		frame.Push(b)
		frame.Push(a)
		return
	}
	b := frame.Pop()
	c := frame.Pop()
	frame.Push(a)
	frame.Push(c)
	frame.Push(b)
	frame.Push(a)
}

// execDup2 implements dup2. Frame stores one Value per JVM slot-width
// entry, so form 2 (the top is a single category-2 long/double) is
// just a plain dup; form 1 (two category-1 values) duplicates both as
// a pair (spec §4.6.3, §8 category-2 width rule).
func (vm *VM) execDup2(frame *runtime.Frame) {
	top := frame.Peek()
	if top.NumSlots() == 2 {
		frame.Push(top)
		return
	}
	a := frame.Pop()
	b := frame.Pop()
	frame.Push(b)
	frame.Push(a)
	frame.Push(b)
	frame.Push(a)
}

func (vm *VM) execDup2X1(frame *runtime.Frame) {
	top := frame.Peek()
	if top.NumSlots() == 2 {
		a := frame.Pop()
		b := frame.Pop()
		frame.Push(a)
		frame.Push(b)
		frame.Push(a)
		return
	}
	a := frame.Pop()
	b := frame.Pop()
	c := frame.Pop()
	frame.Push(b)
	frame.Push(a)
	frame.Push(c)
	frame.Push(b)
	frame.Push(a)
}

// execDup2X2 implements dup2_x2, covering all four category-1/
// category-2 combinations the JVM spec distinguishes by inspecting
// each candidate slot's width before deciding how deep to insert
// (spec §4.6.3, §8).
func (vm *VM) execDup2X2(frame *runtime.Frame) {
	v1 := frame.Peek()
	if v1.NumSlots() == 2 {
		v2 := frame.PeekAt(1)
		if v2.NumSlots() == 2 {
			// form 4: value1, value2 both category-2.
			a := frame.Pop()
			b := frame.Pop()
			frame.Push(a)
			frame.Push(b)
			frame.Push(a)
			return
		}
		// form 2: value1 category-2, value2/value3 category-1.
		a := frame.Pop()
		b := frame.Pop()
		c := frame.Pop()
		frame.Push(a)
		frame.Push(c)
		frame.Push(b)
		frame.Push(a)
		return
	}

	v3 := frame.PeekAt(2)
	if v3.NumSlots() == 2 {
		// form 3: value1, value2 category-1, value3 category-2.
		a := frame.Pop()
		b := frame.Pop()
		c := frame.Pop()
		frame.Push(b)
		frame.Push(a)
		frame.Push(c)
		frame.Push(b)
		frame.Push(a)
		return
	}

	// form 1: value1..value4 all category-1.
	a := frame.Pop()
	b := frame.Pop()
	c := frame.Pop()
	d := frame.Pop()
	frame.Push(b)
	frame.Push(a)
	frame.Push(d)
	frame.Push(c)
	frame.Push(b)
	frame.Push(a)
}
