package natives

import "github.com/gojvm/gojvm/runtime"

// BoxedInt is the host-side companion for a boxed java/lang/Integer
// object (spec §4.4 supplement, grounded on the teacher's
// pkg/native.NativeInteger).
type BoxedInt struct {
	Value int32
}

// registerIntegerNatives installs java/lang/Integer's boxing natives.
// The teacher exercises these directly against a bare Go type; here
// valueOf allocates a real heap object so boxed integers participate
// in reference equality and getClass like any other object.
func registerIntegerNatives(r *Registry) {
	r.Register("java/lang/Integer", "valueOf", "(I)Ljava/lang/Integer;", integerValueOf)
	r.Register("java/lang/Integer", "intValue", "()I", integerIntValue)
}

func integerValueOf(host Host, args []runtime.Value) (*runtime.Value, error) {
	ref := host.Heap().NewObject("java/lang/Integer")
	obj, err := host.Heap().Object(ref)
	if err != nil {
		return nil, err
	}
	obj.Native = &BoxedInt{Value: args[0].Int()}
	v := runtime.RefValue(ref)
	return &v, nil
}

func integerIntValue(host Host, args []runtime.Value) (*runtime.Value, error) {
	this := args[0]
	obj, err := host.Heap().Object(this.RefVal())
	if err != nil {
		return nil, err
	}
	boxed, ok := obj.Native.(*BoxedInt)
	if !ok {
		return nil, runtime.ErrNotAnObject
	}
	v := runtime.IntValue(boxed.Value)
	return &v, nil
}
