package classfile_test

import (
	"reflect"
	"testing"

	"github.com/gojvm/gojvm/classfile"
)

func TestParseParams(t *testing.T) {
	cases := []struct {
		descriptor string
		want       []classfile.ParamKind
	}{
		{"()V", nil},
		{"(I)I", []classfile.ParamKind{classfile.KindInt}},
		{"(IJFD)V", []classfile.ParamKind{classfile.KindInt, classfile.KindLong, classfile.KindFloat, classfile.KindDouble}},
		{"(Ljava/lang/String;I)V", []classfile.ParamKind{classfile.KindRef, classfile.KindInt}},
		{"([I[Ljava/lang/String;)V", []classfile.ParamKind{classfile.KindRef, classfile.KindRef}},
	}
	for _, c := range cases {
		got, err := classfile.ParseParams(c.descriptor)
		if err != nil {
			t.Fatalf("ParseParams(%q): %v", c.descriptor, err)
		}
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("ParseParams(%q) = %v, want %v", c.descriptor, got, c.want)
		}
	}
}

func TestReturnKindAndVoid(t *testing.T) {
	if !classfile.IsVoidReturn("(I)V") {
		t.Error("(I)V should be void")
	}
	if classfile.IsVoidReturn("(I)I") {
		t.Error("(I)I should not be void")
	}
	kind, ok := classfile.ReturnKind("()J")
	if !ok || kind != classfile.KindLong {
		t.Errorf("ReturnKind(()J) = %v, %v, want KindLong, true", kind, ok)
	}
}

func TestParamKindSlots(t *testing.T) {
	if classfile.KindLong.Slots() != 2 || classfile.KindDouble.Slots() != 2 {
		t.Error("Long/Double should occupy 2 slots")
	}
	if classfile.KindInt.Slots() != 1 || classfile.KindRef.Slots() != 1 {
		t.Error("Int/Ref should occupy 1 slot")
	}
}
