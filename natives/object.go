package natives

import "github.com/gojvm/gojvm/runtime"

// registerObjectNatives installs java/lang/Object's native methods
// (spec §4.4): hashCode, getClass, clone and the registerNatives
// no-op every core class declares.
func registerObjectNatives(r *Registry) {
	r.Register("java/lang/Object", "hashCode", "()I", objectHashCode)
	r.Register("java/lang/Object", "getClass", "()Ljava/lang/Class;", objectGetClass)
	r.Register("java/lang/Object", "clone", "()Ljava/lang/Object;", objectClone)
	r.Register("java/lang/Object", "registerNatives", "()V", noop)
	r.Register("java/lang/Object", "<init>", "()V", noop)
}

func noop(host Host, args []runtime.Value) (*runtime.Value, error) {
	return nil, nil
}

// objectHashCode returns the object's heap reference as its identity
// hash. References are small integers assigned once at allocation, so
// this is stable and unique for the object's lifetime (spec §4.4).
func objectHashCode(host Host, args []runtime.Value) (*runtime.Value, error) {
	this := args[0]
	v := runtime.IntValue(int32(this.RefVal()))
	return &v, nil
}

// objectGetClass returns a heap-allocated java/lang/Class object whose
// Native field carries the class name as a Go string, so callers that
// only care about object identity and println formatting have
// somewhere to anchor to (full reflection is out of scope, spec
// Non-goals).
func objectGetClass(host Host, args []runtime.Value) (*runtime.Value, error) {
	this := args[0]
	obj, err := host.Heap().Object(this.RefVal())
	if err != nil {
		return nil, err
	}
	classRef := host.Heap().NewObject("java/lang/Class")
	classObj, err := host.Heap().Object(classRef)
	if err != nil {
		return nil, err
	}
	classObj.Native = obj.ClassName
	v := runtime.RefValue(classRef)
	return &v, nil
}

func objectClone(host Host, args []runtime.Value) (*runtime.Value, error) {
	this := args[0]
	clone, err := host.Heap().Clone(this.RefVal())
	if err != nil {
		return nil, err
	}
	v := runtime.RefValue(clone)
	return &v, nil
}

// registerSystemNatives installs java/lang/System's native methods.
// registerNatives is the standard JVM bootstrap no-op; arraycopy is
// not wired (Non-goal: full java.lang.System surface).
func registerSystemNatives(r *Registry) {
	r.Register("java/lang/System", "registerNatives", "()V", noop)
}
