package runtime_test

import (
	"testing"

	"github.com/gojvm/gojvm/runtime"
)

type fakeClass string

func (f fakeClass) Name() string { return string(f) }

func TestFramePushPop(t *testing.T) {
	f := runtime.NewFrame(4, 4, []byte{}, fakeClass("com/example/Foo"), "bar", "()V")
	f.Push(runtime.IntValue(1))
	f.Push(runtime.IntValue(2))
	if got := f.Pop().Int(); got != 2 {
		t.Errorf("Pop() = %d, want 2", got)
	}
	if got := f.Pop().Int(); got != 1 {
		t.Errorf("Pop() = %d, want 1", got)
	}
}

func TestFrameLocalsDefaultToZero(t *testing.T) {
	f := runtime.NewFrame(3, 2, []byte{}, fakeClass("com/example/Foo"), "bar", "()V")
	if f.GetLocal(0).Int() != 0 {
		t.Error("uninitialized local should default to int 0")
	}
}

func TestFrameOverflowPanics(t *testing.T) {
	f := runtime.NewFrame(1, 1, []byte{}, fakeClass("com/example/Foo"), "bar", "()V")
	f.Push(runtime.IntValue(1))
	defer func() {
		if recover() == nil {
			t.Error("pushing past MaxStack should panic")
		}
	}()
	f.Push(runtime.IntValue(2))
}

func TestFrameReadOperands(t *testing.T) {
	f := runtime.NewFrame(1, 1, []byte{0x01, 0xFF, 0x00, 0x02}, fakeClass("com/example/Foo"), "bar", "()V")
	if f.ReadU8() != 0x01 {
		t.Error("ReadU8 mismatch")
	}
	if f.ReadI8() != -1 {
		t.Error("ReadI8 mismatch for 0xFF")
	}
	if f.ReadU16() != 0x0002 {
		t.Error("ReadU16 mismatch")
	}
}
