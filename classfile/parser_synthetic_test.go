package classfile_test

import (
	"bytes"
	"testing"

	"github.com/gojvm/gojvm/classfile"
	"github.com/gojvm/gojvm/classfile/classfiletest"
)

func TestParseSyntheticClassMinimal(t *testing.T) {
	b := classfiletest.New("com/example/Simple", "java/lang/Object")
	b.AddMethod("main", "([Ljava/lang/String;)V", classfiletest.AccPublic|classfiletest.AccStatic, 2, 2, []byte{0xB1})

	cf, err := classfile.Parse(bytes.NewReader(b.Bytes()))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	name, err := cf.ClassName()
	if err != nil || name != "com/example/Simple" {
		t.Fatalf("ClassName() = %q, %v, want com/example/Simple", name, err)
	}
	if got := cf.SuperClassName(); got != "java/lang/Object" {
		t.Fatalf("SuperClassName() = %q, want java/lang/Object", got)
	}

	m := cf.FindMethod("main", "([Ljava/lang/String;)V")
	if m == nil {
		t.Fatal("main method not found")
	}
	if m.Code == nil || len(m.Code.Code) != 1 || m.Code.Code[0] != 0xB1 {
		t.Fatalf("unexpected code attribute: %+v", m.Code)
	}
}

func TestParseSyntheticClassStaticDefaults(t *testing.T) {
	b := classfiletest.New("com/example/Counter", "java/lang/Object")
	b.AddStaticIntField("total", 42)
	b.AddMethod("<clinit>", "()V", 0, 1, 0, []byte{0xB1})

	cf, err := classfile.Parse(bytes.NewReader(b.Bytes()))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	slot, ok := cf.StaticValues["total"]
	if !ok {
		t.Fatal("static field \"total\" missing from StaticValues")
	}
	if slot.Kind != classfile.StaticInt || slot.I != 42 {
		t.Fatalf("static slot = %+v, want Kind=StaticInt I=42", slot)
	}
}

func TestParseSyntheticClassInterfaces(t *testing.T) {
	b := classfiletest.New("com/example/Impl", "java/lang/Object")
	b.AddInterface("com/example/Greeter")

	cf, err := classfile.Parse(bytes.NewReader(b.Bytes()))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	names := cf.InterfaceNames()
	if len(names) != 1 || names[0] != "com/example/Greeter" {
		t.Fatalf("InterfaceNames() = %v, want [com/example/Greeter]", names)
	}
}
