package natives

import "github.com/gojvm/gojvm/runtime"

// HashMapData is the host-side companion for a java/util/HashMap
// object (spec §4.4 supplement, grounded on the teacher's
// pkg/native.NativeHashMap). Keys are normalized to a comparable Go
// value so boxed Integer keys compare by value, matching
// Integer.equals/hashCode semantics rather than reference identity.
type HashMapData struct {
	Data map[interface{}]runtime.Value
}

func registerHashMapNatives(r *Registry) {
	r.Register("java/util/HashMap", "get", "(Ljava/lang/Object;)Ljava/lang/Object;", hashMapGet)
	r.Register("java/util/HashMap", "put", "(Ljava/lang/Object;Ljava/lang/Object;)Ljava/lang/Object;", hashMapPut)
	r.Register("java/util/HashMap", "<init>", "()V", hashMapInit)
}

// hashMapInit backs the `new java/util/HashMap` + invokespecial <init>
// pair: the interpreter's `new` allocates a bare Object, so <init>
// is responsible for attaching the Native map (spec §4.4 supplement).
func hashMapInit(host Host, args []runtime.Value) (*runtime.Value, error) {
	obj, err := host.Heap().Object(args[0].RefVal())
	if err != nil {
		return nil, err
	}
	obj.Native = &HashMapData{Data: make(map[interface{}]runtime.Value)}
	return nil, nil
}

func mapDataOf(host Host, this runtime.Value) (*HashMapData, error) {
	obj, err := host.Heap().Object(this.RefVal())
	if err != nil {
		return nil, err
	}
	m, ok := obj.Native.(*HashMapData)
	if !ok {
		return nil, runtime.ErrNotAnObject
	}
	return m, nil
}

// normalizeKey unboxes a key that happens to be a boxed Integer so
// get/put key on its numeric value, falling back to the raw ref for
// any other object type.
func normalizeKey(host Host, key runtime.Value) interface{} {
	if key.Type == runtime.TypeRef && !key.IsNull() {
		if obj, err := host.Heap().Object(key.RefVal()); err == nil {
			if boxed, ok := obj.Native.(*BoxedInt); ok {
				return boxed.Value
			}
		}
	}
	return key.RefVal()
}

func hashMapGet(host Host, args []runtime.Value) (*runtime.Value, error) {
	m, err := mapDataOf(host, args[0])
	if err != nil {
		return nil, err
	}
	v, ok := m.Data[normalizeKey(host, args[1])]
	if !ok {
		v = runtime.NullValue()
	}
	return &v, nil
}

func hashMapPut(host Host, args []runtime.Value) (*runtime.Value, error) {
	m, err := mapDataOf(host, args[0])
	if err != nil {
		return nil, err
	}
	key := normalizeKey(host, args[1])
	old, ok := m.Data[key]
	if !ok {
		old = runtime.NullValue()
	}
	m.Data[key] = args[2]
	return &old, nil
}
