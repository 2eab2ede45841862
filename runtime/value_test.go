package runtime_test

import (
	"testing"

	"github.com/gojvm/gojvm/runtime"
)

func TestValueWidths(t *testing.T) {
	if runtime.IntValue(1).NumSlots() != 1 {
		t.Error("int should be 1 slot")
	}
	if runtime.LongValue(1).NumSlots() != 2 {
		t.Error("long should be 2 slots")
	}
	if runtime.DoubleValue(1).NumSlots() != 2 {
		t.Error("double should be 2 slots")
	}
	if runtime.RefValue(5).NumSlots() != 1 {
		t.Error("ref should be 1 slot")
	}
}

func TestNullValue(t *testing.T) {
	if !runtime.NullValue().IsNull() {
		t.Error("NullValue() should be null")
	}
	if runtime.RefValue(1).IsNull() {
		t.Error("non-zero ref should not be null")
	}
	if !runtime.RefValue(runtime.NullRef).IsNull() {
		t.Error("RefValue(NullRef) should be null")
	}
}

func TestBits64DistinguishesValues(t *testing.T) {
	a := runtime.DoubleValue(3.5)
	b := runtime.DoubleValue(3.5)
	c := runtime.DoubleValue(-3.5)
	if a.Bits64() != b.Bits64() {
		t.Error("equal doubles must have equal bit patterns")
	}
	if a.Bits64() == c.Bits64() {
		t.Error("different doubles must have different bit patterns")
	}
}

func TestReturnAddress(t *testing.T) {
	v := runtime.ReturnAddressValue(42)
	if v.ReturnPC() != 42 {
		t.Errorf("ReturnPC() = %d, want 42", v.ReturnPC())
	}
}
