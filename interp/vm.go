// Package interp implements the bytecode execution engine: method
// invocation, the fetch-decode-dispatch loop, and the opcode families
// of spec §4.6.
package interp

import (
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/gojvm/gojvm/classfile"
	"github.com/gojvm/gojvm/internal/jvmlog"
	"github.com/gojvm/gojvm/loader"
	"github.com/gojvm/gojvm/natives"
	"github.com/gojvm/gojvm/runtime"
)

// DefaultMaxFrameDepth bounds nested method calls (spec §7,
// "unbounded recursion is a StackOverflow error, not a crash").
const DefaultMaxFrameDepth = 1024

// VM ties together a class loader, heap, native method table and
// thread of execution. One VM runs one program to completion; it is
// not designed for concurrent reuse across programs (spec §5).
type VM struct {
	Loader        *loader.Loader
	Natives       *natives.Registry
	Stdout        io.Writer
	MaxFrameDepth int

	heap       *runtime.Heap
	thread     *runtime.Thread
	frameDepth int
	systemOut  runtime.Ref
}

// New creates a VM whose class loader searches dirs[0] (the entry
// directory holding the main class) followed by every direct child
// directory of $JDK_CLASSES, per the loader's documented search-path
// bootstrap (spec §6 External Interfaces). The loader's <clinit>
// callback is wired to this VM's own method execution, so loading a
// class transitively runs its static initializer exactly once, in
// superclass-first order (spec §4.3).
func New(dirs []string) *VM {
	vm := &VM{
		Natives:       natives.NewRegistry(),
		Stdout:        os.Stdout,
		MaxFrameDepth: DefaultMaxFrameDepth,
		heap:          runtime.NewHeap(),
		thread:        runtime.NewThread(),
	}
	var entryDir string
	if len(dirs) > 0 {
		entryDir = dirs[0]
	}
	vm.Loader = loader.NewFromEnv(entryDir, vm.runClinit)
	return vm
}

// Heap implements natives.Host.
func (vm *VM) Heap() *runtime.Heap { return vm.heap }

// classAdapter satisfies runtime.ClassRef without the runtime package
// importing classfile (would create an import cycle).
type classAdapter struct {
	cf *classfile.ClassFile
}

func (a classAdapter) Name() string {
	name, err := a.cf.ClassName()
	if err != nil {
		return ""
	}
	return name
}

// runClinit is installed as the loader's ClinitFunc. It runs the
// class's own <clinit> method, if present, with an empty argument
// list (spec §4.3 step 6). Static field defaults are already seeded
// by classfile.Parse from each field's ConstantValue attribute;
// <clinit> mutates them further via putstatic.
func (vm *VM) runClinit(cf *classfile.ClassFile) error {
	method := cf.FindMethod("<clinit>", "()V")
	if method == nil || method.Code == nil {
		return nil
	}
	_, err := vm.invokeDirect(cf, method, nil)
	return err
}

// RunMain loads mainClassName and executes its
// `public static void main(String[])` method (spec §4.6.1).
func (vm *VM) RunMain(mainClassName string) error {
	vm.systemOut = natives.NewSystemOut(vm.heap, vm.Stdout)

	cf, err := vm.Loader.Load(mainClassName)
	if err != nil {
		return errors.Wrapf(err, "loading main class %s", mainClassName)
	}
	method := cf.FindMethod("main", "([Ljava/lang/String;)V")
	if method == nil {
		return errors.Errorf("class %s has no main([Ljava/lang/String;)V method", mainClassName)
	}
	if method.Code == nil {
		return errors.Errorf("main method of %s has no Code attribute", mainClassName)
	}

	args := []runtime.Value{runtime.NullValue()}
	_, err = vm.invokeDirect(cf, method, args)
	return err
}

// invokeDirect runs method of cf with the given arguments already in
// call order (this first, for instance methods), enforcing the frame
// depth limit and dispatching to a native implementation when the
// method is declared native.
func (vm *VM) invokeDirect(cf *classfile.ClassFile, method *classfile.MethodInfo, args []runtime.Value) (runtime.Value, error) {
	if method.IsNative() {
		className := classAdapter{cf}.Name()
		fn, ok := vm.Natives.Lookup(className, method.Name, method.Descriptor)
		if !ok {
			return runtime.Value{}, errors.Errorf("no native implementation for %s.%s:%s", className, method.Name, method.Descriptor)
		}
		ret, err := fn(vm, args)
		if err != nil {
			return runtime.Value{}, err
		}
		if ret == nil {
			return runtime.Value{}, nil
		}
		return *ret, nil
	}

	if method.Code == nil {
		return runtime.Value{}, errors.Errorf("method %s:%s has no Code attribute", method.Name, method.Descriptor)
	}

	vm.frameDepth++
	if vm.frameDepth > vm.MaxFrameDepth {
		vm.frameDepth--
		return runtime.Value{}, runtime.ErrStackOverflow
	}
	defer func() { vm.frameDepth-- }()

	frame := runtime.NewFrame(method.Code.MaxLocals, method.Code.MaxStack, method.Code.Code, classAdapter{cf}, method.Name, method.Descriptor)

	slot := 0
	for _, a := range args {
		frame.SetLocal(slot, a)
		slot += a.NumSlots()
	}

	vm.thread.Push(frame)
	defer vm.thread.Pop()

	for frame.PC < len(frame.Code) {
		ret, hasReturn, err := vm.step(cf, frame)
		if err != nil {
			return runtime.Value{}, errors.Wrapf(err, "%s.%s:%s pc=%d", classAdapter{cf}.Name(), method.Name, method.Descriptor, frame.PC)
		}
		if hasReturn {
			return ret, nil
		}
	}

	return runtime.Value{}, nil
}

// resolveInstanceMethod walks cf's superclass chain and then its
// declared interfaces, returning the first class/method pair whose
// name and descriptor match (spec §4.5, extended to interfaces). A
// match that is itself abstract (an inherited placeholder with no
// Code) is skipped so the walk keeps looking for the concrete
// override further up the hierarchy or on an interface.
func (vm *VM) resolveInstanceMethod(cf *classfile.ClassFile, name, descriptor string) (*classfile.ClassFile, *classfile.MethodInfo, error) {
	cur := cf
	for cur != nil {
		if m := cur.FindMethod(name, descriptor); m != nil && !m.IsAbstract() {
			return cur, m, nil
		}
		super := cur.SuperClassName()
		if super == "" || super == "java/lang/Object" {
			break
		}
		next, err := vm.Loader.Load(super)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "resolving method %s:%s", name, descriptor)
		}
		cur = next
	}

	if m, ifaceCf, err := vm.resolveInterfaceMethod(cf, name, descriptor); err != nil {
		return nil, nil, err
	} else if m != nil {
		return ifaceCf, m, nil
	}

	return nil, nil, errors.Errorf("method %s:%s not found on %s or its ancestors", name, descriptor, classAdapter{cf}.Name())
}

func (vm *VM) resolveInterfaceMethod(cf *classfile.ClassFile, name, descriptor string) (*classfile.MethodInfo, *classfile.ClassFile, error) {
	for _, ifaceName := range cf.InterfaceNames() {
		ifaceCf, err := vm.Loader.Load(ifaceName)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "loading interface %s", ifaceName)
		}
		if m := ifaceCf.FindMethod(name, descriptor); m != nil {
			return m, ifaceCf, nil
		}
		if m, nested, err := vm.resolveInterfaceMethod(ifaceCf, name, descriptor); err != nil {
			return nil, nil, err
		} else if m != nil {
			return m, nested, nil
		}
	}
	return nil, nil, nil
}

// resolveStaticMethod looks up a static method starting at cf and
// walking superclasses only (interfaces cannot declare state-bearing
// static methods relevant to this interpreter's Non-goals).
func (vm *VM) resolveStaticMethod(cf *classfile.ClassFile, name, descriptor string) (*classfile.ClassFile, *classfile.MethodInfo, error) {
	cur := cf
	for cur != nil {
		if m := cur.FindMethod(name, descriptor); m != nil {
			return cur, m, nil
		}
		super := cur.SuperClassName()
		if super == "" || super == "java/lang/Object" {
			break
		}
		next, err := vm.Loader.Load(super)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "resolving static method %s:%s", name, descriptor)
		}
		cur = next
	}
	return nil, nil, errors.Errorf("static method %s:%s not found on %s or its ancestors", name, descriptor, classAdapter{cf}.Name())
}

// step executes a single instruction at frame.PC, returning the
// method's return value and whether a return instruction fired.
func (vm *VM) step(cf *classfile.ClassFile, frame *runtime.Frame) (runtime.Value, bool, error) {
	opcode := frame.ReadU8()
	jvmlog.L().Debugw("step", "class", classAdapter{cf}.Name(), "method", frame.MethodName, "opcode", opcode, "pc", frame.PC-1, "sp", frame.StackSize())
	return vm.dispatch(cf, frame, opcode)
}
