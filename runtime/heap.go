package runtime

import "sync"

// Object is a heap object instance: a class name and an ordered map
// from field name to slot value (spec §3). Go's map does not preserve
// insertion order, but JVM field layout order is not observable from
// bytecode (no reflection in this core), so an unordered map is
// sufficient and matches the teacher's JObject.
type Object struct {
	ClassName string
	Fields    map[string]Value
	// Native optionally holds a host-side companion value for objects
	// that wrap native state (java.io.PrintStream, boxed Integer,
	// HashMap, ...). nil for ordinary user objects.
	Native interface{}
}

// Array is a heap entry holding an element class name, element slot
// width, and one Value per element (spec §3). It is a separate type
// from Object, not a subtype: it has no class name or field map, and
// Heap.Object on an array reference returns ErrNotAnObject.
type Array struct {
	ElementClass string
	ElementWidth int
	Elements     []Value
}

// Len returns the number of elements (not slots).
func (a *Array) Len() int { return len(a.Elements) }

// Heap is the process-wide object pool: an arena of objects/arrays
// indexed by small integer Ref, guarded by a mutex so a host that
// generalizes to multiple threads can share one Heap safely (spec §5,
// Design Note 9). Ref 0 is never allocated; it is the null sentinel.
type Heap struct {
	mu      sync.Mutex
	entries []interface{} // entries[0] is always nil (unused)
}

// NewHeap creates an empty Heap with the null slot reserved.
func NewHeap() *Heap {
	return &Heap{entries: []interface{}{nil}}
}

// NewObject allocates a fresh Object with an empty field map and
// returns its reference. Fields are populated lazily by putfield;
// getfield on an absent field returns its default zero/null value
// (spec §4.6.5).
func (h *Heap) NewObject(className string) Ref {
	return h.alloc(&Object{ClassName: className, Fields: make(map[string]Value)})
}

// NewArray allocates a zero-filled array of the given length and
// element width (1 or 2 slots), and returns its reference.
func (h *Heap) NewArray(elementClass string, length, elementWidth int) Ref {
	elems := make([]Value, length)
	zero := IntValue(0)
	if elementWidth == 1 && isReferenceClass(elementClass) {
		zero = NullValue()
	}
	for i := range elems {
		elems[i] = zero
	}
	return h.alloc(&Array{ElementClass: elementClass, ElementWidth: elementWidth, Elements: elems})
}

func isReferenceClass(className string) bool {
	switch className {
	case "B", "C", "D", "F", "I", "J", "S", "Z":
		return false
	default:
		return true
	}
}

func (h *Heap) alloc(v interface{}) Ref {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, v)
	return Ref(len(h.entries) - 1)
}

// Get returns the entry at ref, or an error if ref is out of range or
// null (spec §3: "reference lookup outside the pool is an error").
func (h *Heap) Get(ref Ref) (interface{}, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ref == NullRef {
		return nil, ErrNullReference
	}
	if int(ref) < 0 || int(ref) >= len(h.entries) {
		return nil, ErrInvalidReference
	}
	return h.entries[ref], nil
}

// Object resolves ref and type-asserts it to *Object.
func (h *Heap) Object(ref Ref) (*Object, error) {
	v, err := h.Get(ref)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(*Object)
	if !ok {
		return nil, ErrNotAnObject
	}
	return obj, nil
}

// Array resolves ref and type-asserts it to *Array.
func (h *Heap) Array(ref Ref) (*Array, error) {
	v, err := h.Get(ref)
	if err != nil {
		return nil, err
	}
	arr, ok := v.(*Array)
	if !ok {
		return nil, ErrNotAnArray
	}
	return arr, nil
}

// Clone performs a shallow clone of the object at ref: a new heap
// entry with the same class name and a value-copy of the field map
// (spec §4.4, §8 scenario 5; Design Note 9).
func (h *Heap) Clone(ref Ref) (Ref, error) {
	obj, err := h.Object(ref)
	if err != nil {
		return NullRef, err
	}
	fields := make(map[string]Value, len(obj.Fields))
	for k, v := range obj.Fields {
		fields[k] = v
	}
	return h.alloc(&Object{ClassName: obj.ClassName, Fields: fields, Native: obj.Native}), nil
}
