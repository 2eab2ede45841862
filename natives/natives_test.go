package natives_test

import (
	"bytes"
	"testing"

	"github.com/gojvm/gojvm/natives"
	"github.com/gojvm/gojvm/runtime"
)

type fakeHost struct {
	heap *runtime.Heap
}

func (h fakeHost) Heap() *runtime.Heap { return h.heap }

func newHost() fakeHost {
	return fakeHost{heap: runtime.NewHeap()}
}

func TestObjectHashCodeIsStableIdentity(t *testing.T) {
	h := newHost()
	r := natives.NewRegistry()
	ref := h.heap.NewObject("com/example/Foo")

	fn, ok := r.Lookup("java/lang/Object", "hashCode", "()I")
	if !ok {
		t.Fatal("hashCode not registered")
	}
	v1, err := fn(h, []runtime.Value{runtime.RefValue(ref)})
	if err != nil {
		t.Fatal(err)
	}
	v2, err := fn(h, []runtime.Value{runtime.RefValue(ref)})
	if err != nil {
		t.Fatal(err)
	}
	if v1.Int() != v2.Int() {
		t.Error("hashCode should be stable across calls on the same object")
	}
}

func TestObjectClonePopulatesNewHeapEntry(t *testing.T) {
	h := newHost()
	r := natives.NewRegistry()
	ref := h.heap.NewObject("com/example/Foo")
	obj, _ := h.heap.Object(ref)
	obj.Fields["x"] = runtime.IntValue(7)

	fn, _ := r.Lookup("java/lang/Object", "clone", "()Ljava/lang/Object;")
	ret, err := fn(h, []runtime.Value{runtime.RefValue(ref)})
	if err != nil {
		t.Fatal(err)
	}
	if ret.RefVal() == ref {
		t.Fatal("clone must return a distinct reference")
	}
	clone, _ := h.heap.Object(ret.RefVal())
	if clone.Fields["x"].Int() != 7 {
		t.Error("clone should copy field values")
	}
}

func TestIntegerBoxingRoundTrip(t *testing.T) {
	h := newHost()
	r := natives.NewRegistry()

	valueOf, _ := r.Lookup("java/lang/Integer", "valueOf", "(I)Ljava/lang/Integer;")
	boxed, err := valueOf(h, []runtime.Value{runtime.IntValue(123)})
	if err != nil {
		t.Fatal(err)
	}

	intValue, _ := r.Lookup("java/lang/Integer", "intValue", "()I")
	unboxed, err := intValue(h, []runtime.Value{*boxed})
	if err != nil {
		t.Fatal(err)
	}
	if unboxed.Int() != 123 {
		t.Errorf("unboxed value = %d, want 123", unboxed.Int())
	}
}

func TestHashMapPutThenGet(t *testing.T) {
	h := newHost()
	r := natives.NewRegistry()

	initFn, _ := r.Lookup("java/util/HashMap", "<init>", "()V")
	mapRef := h.heap.NewObject("java/util/HashMap")
	if _, err := initFn(h, []runtime.Value{runtime.RefValue(mapRef)}); err != nil {
		t.Fatal(err)
	}

	valueOf, _ := r.Lookup("java/lang/Integer", "valueOf", "(I)Ljava/lang/Integer;")
	key, _ := valueOf(h, []runtime.Value{runtime.IntValue(1)})
	val, _ := valueOf(h, []runtime.Value{runtime.IntValue(100)})

	put, _ := r.Lookup("java/util/HashMap", "put", "(Ljava/lang/Object;Ljava/lang/Object;)Ljava/lang/Object;")
	if _, err := put(h, []runtime.Value{runtime.RefValue(mapRef), *key, *val}); err != nil {
		t.Fatal(err)
	}

	get, _ := r.Lookup("java/util/HashMap", "get", "(Ljava/lang/Object;)Ljava/lang/Object;")
	key2, _ := valueOf(h, []runtime.Value{runtime.IntValue(1)})
	got, err := get(h, []runtime.Value{runtime.RefValue(mapRef), *key2})
	if err != nil {
		t.Fatal(err)
	}
	if got.IsNull() {
		t.Fatal("expected a stored value, got null")
	}
	unboxFn, _ := r.Lookup("java/lang/Integer", "intValue", "()I")
	unboxed, _ := unboxFn(h, []runtime.Value{*got})
	if unboxed.Int() != 100 {
		t.Errorf("HashMap.get returned %d, want 100", unboxed.Int())
	}
}

func TestPrintStreamPrintln(t *testing.T) {
	h := newHost()
	r := natives.NewRegistry()
	var out bytes.Buffer
	ref := natives.NewSystemOut(h.heap, &out)

	println_, _ := r.Lookup("java/io/PrintStream", "println", "(I)V")
	if _, err := println_(h, []runtime.Value{runtime.RefValue(ref), runtime.IntValue(42)}); err != nil {
		t.Fatal(err)
	}
	if out.String() != "42\n" {
		t.Errorf("println output = %q, want %q", out.String(), "42\n")
	}
}
