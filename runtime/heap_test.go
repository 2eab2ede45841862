package runtime_test

import (
	"errors"
	"testing"

	"github.com/gojvm/gojvm/runtime"
)

func TestHeapNullRefIsReservedAndUnresolvable(t *testing.T) {
	h := runtime.NewHeap()
	_, err := h.Get(runtime.NullRef)
	if !errors.Is(err, runtime.ErrNullReference) {
		t.Fatalf("Get(NullRef) err = %v, want ErrNullReference", err)
	}
}

func TestHeapObjectRoundTrip(t *testing.T) {
	h := runtime.NewHeap()
	ref := h.NewObject("com/example/Point")
	obj, err := h.Object(ref)
	if err != nil {
		t.Fatalf("Object: %v", err)
	}
	obj.Fields["x"] = runtime.IntValue(3)

	again, err := h.Object(ref)
	if err != nil {
		t.Fatalf("Object (second lookup): %v", err)
	}
	if again.Fields["x"].Int() != 3 {
		t.Fatal("field mutation did not persist through the heap")
	}
}

func TestHeapArrayZeroFill(t *testing.T) {
	h := runtime.NewHeap()
	ref := h.NewArray("I", 5, 1)
	arr, err := h.Array(ref)
	if err != nil {
		t.Fatalf("Array: %v", err)
	}
	if arr.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", arr.Len())
	}
	for i, v := range arr.Elements {
		if v.Int() != 0 {
			t.Errorf("element %d = %d, want 0", i, v.Int())
		}
	}
}

func TestHeapArrayOfReferencesZeroesToNull(t *testing.T) {
	h := runtime.NewHeap()
	ref := h.NewArray("java/lang/Object", 3, 1)
	arr, _ := h.Array(ref)
	for i, v := range arr.Elements {
		if !v.IsNull() {
			t.Errorf("reference array element %d should default to null", i)
		}
	}
}

func TestHeapCloneIsIndependentCopy(t *testing.T) {
	h := runtime.NewHeap()
	ref := h.NewObject("com/example/Point")
	obj, _ := h.Object(ref)
	obj.Fields["x"] = runtime.IntValue(10)

	cloneRef, err := h.Clone(ref)
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}
	if cloneRef == ref {
		t.Fatal("clone must be a distinct reference")
	}

	clone, _ := h.Object(cloneRef)
	clone.Fields["x"] = runtime.IntValue(99)

	original, _ := h.Object(ref)
	if original.Fields["x"].Int() != 10 {
		t.Fatal("mutating the clone must not affect the original")
	}
}

func TestHeapInvalidReference(t *testing.T) {
	h := runtime.NewHeap()
	_, err := h.Get(runtime.Ref(999))
	if !errors.Is(err, runtime.ErrInvalidReference) {
		t.Fatalf("Get(999) err = %v, want ErrInvalidReference", err)
	}
}
