package interp_test

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/gojvm/gojvm/classfile/classfiletest"
	"github.com/gojvm/gojvm/interp"
)

func u16(v uint16) []byte {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, v)
	return b
}

func writeClass(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	path := filepath.Join(dir, name+".class")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

// TestRunMainSumLoopPrintsResult builds a class whose main method sums
// 1..5 in a loop (exercising iload/istore/iinc/if_icmpgt/goto branch
// offset arithmetic) and prints the result via System.out.println(int),
// matching the loop-sum/println scenarios of spec §8.
func TestRunMainSumLoopPrintsResult(t *testing.T) {
	dir := t.TempDir()
	b := classfiletest.New("com/example/SumLoop", "java/lang/Object")

	sysOutRef := b.Fieldref("java/lang/System", "out", "Ljava/io/PrintStream;")
	printlnRef := b.Methodref("java/io/PrintStream", "println", "(I)V")

	var code []byte
	emit := func(bs ...byte) { code = append(code, bs...) }

	emit(0x03)       // iconst_0
	emit(0x3C)       // istore_1 (sum = 0)
	emit(0x04)       // iconst_1
	emit(0x3D)       // istore_2 (i = 1)

	loopStart := len(code) // 4
	emit(0x1C)              // iload_2 (i)
	emit(0x10, 0x05)        // bipush 5
	ifOpcodePC := len(code) // 7
	emit(0xA3)              // if_icmpgt
	emit(0x00, 0x00)        // offset placeholder, patched below
	emit(0x1B)              // iload_1 (sum)
	emit(0x1C)              // iload_2 (i)
	emit(0x60)              // iadd
	emit(0x3C)              // istore_1
	emit(0x84, 0x02, 0x01)  // iinc 2, 1
	gotoOpcodePC := len(code)
	emit(0xA7)              // goto
	emit(0x00, 0x00)        // offset placeholder, patched below
	endLabel := len(code)
	emit(0xB2)
	emit(u16(sysOutRef)...) // getstatic System.out
	emit(0x1B)              // iload_1 (sum)
	emit(0xB6)
	emit(u16(printlnRef)...) // invokevirtual println(I)V
	emit(0xB1)               // return

	ifOffset := int16(endLabel - ifOpcodePC)
	binary.BigEndian.PutUint16(code[ifOpcodePC+1:ifOpcodePC+3], uint16(ifOffset))
	gotoOffset := int16(loopStart - gotoOpcodePC)
	binary.BigEndian.PutUint16(code[gotoOpcodePC+1:gotoOpcodePC+3], uint16(gotoOffset))

	b.AddMethod("main", "([Ljava/lang/String;)V", classfiletest.AccPublic|classfiletest.AccStatic, 3, 3, code)
	writeClass(t, dir, "com/example/SumLoop", b.Bytes())

	vm := interp.New([]string{dir})
	var out bytes.Buffer
	vm.Stdout = &out

	if err := vm.RunMain("com/example/SumLoop"); err != nil {
		t.Fatalf("RunMain: %v", err)
	}
	if out.String() != "15\n" {
		t.Errorf("output = %q, want %q", out.String(), "15\n")
	}
}

// TestRunMainInstanceFieldRoundTrip exercises new/invokespecial
// <init>/putfield/getfield across a user-defined class.
func TestRunMainInstanceFieldRoundTrip(t *testing.T) {
	dir := t.TempDir()

	point := classfiletest.New("com/example/Point", "java/lang/Object")
	point.AddField("x", "I", classfiletest.AccPublic)
	objectInit := point.Methodref("java/lang/Object", "<init>", "()V")
	var ctorCode []byte
	ctorCode = append(ctorCode, 0x2A)             // aload_0
	ctorCode = append(ctorCode, 0xB7)             // invokespecial
	ctorCode = append(ctorCode, u16(objectInit)...)
	ctorCode = append(ctorCode, 0xB1) // return
	point.AddMethod("<init>", "()V", classfiletest.AccPublic, 1, 1, ctorCode)
	writeClass(t, dir, "com/example/Point", point.Bytes())

	main := classfiletest.New("com/example/FieldMain", "java/lang/Object")
	pointClassRef := main.Class("com/example/Point")
	pointInitRef := main.Methodref("com/example/Point", "<init>", "()V")
	xField := main.Fieldref("com/example/Point", "x", "I")
	sysOutRef := main.Fieldref("java/lang/System", "out", "Ljava/io/PrintStream;")
	printlnRef := main.Methodref("java/io/PrintStream", "println", "(I)V")

	var code []byte
	code = append(code, 0xBB)             // new
	code = append(code, u16(pointClassRef)...)
	code = append(code, 0x59)             // dup
	code = append(code, 0xB7)             // invokespecial <init>
	code = append(code, u16(pointInitRef)...)
	code = append(code, 0x4C) // astore_1 (p = new Point())
	code = append(code, 0x2B) // aload_1
	code = append(code, 0x10, 0x07) // bipush 7
	code = append(code, 0xB5) // putfield
	code = append(code, u16(xField)...)
	code = append(code, 0xB2) // getstatic System.out
	code = append(code, u16(sysOutRef)...)
	code = append(code, 0x2B) // aload_1
	code = append(code, 0xB4) // getfield
	code = append(code, u16(xField)...)
	code = append(code, 0xB6) // invokevirtual println(I)V
	code = append(code, u16(printlnRef)...)
	code = append(code, 0xB1) // return

	main.AddMethod("main", "([Ljava/lang/String;)V", classfiletest.AccPublic|classfiletest.AccStatic, 3, 2, code)
	writeClass(t, dir, "com/example/FieldMain", main.Bytes())

	vm := interp.New([]string{dir})
	var out bytes.Buffer
	vm.Stdout = &out

	if err := vm.RunMain("com/example/FieldMain"); err != nil {
		t.Fatalf("RunMain: %v", err)
	}
	if out.String() != "7\n" {
		t.Errorf("output = %q, want %q", out.String(), "7\n")
	}
}

// TestRunMainClassInitOrdering verifies that a class first touched by
// main's getstatic has its <clinit> run (overwriting the ConstantValue
// default 0 with 10 via putstatic) before the value is read (spec §4.3
// step 6). Superclass-before-subclass order is covered by the loader
// tests.
func TestRunMainClassInitOrdering(t *testing.T) {
	dir := t.TempDir()

	base := classfiletest.New("com/example/Base", "java/lang/Object")
	base.AddStaticIntField("value", 0)
	baseField := base.Fieldref("com/example/Base", "value", "I")
	var clinit []byte
	clinit = append(clinit, 0x10, 0x0A) // bipush 10
	clinit = append(clinit, 0xB3)       // putstatic
	clinit = append(clinit, u16(baseField)...)
	clinit = append(clinit, 0xB1) // return
	base.AddMethod("<clinit>", "()V", classfiletest.AccStatic, 1, 0, clinit)
	writeClass(t, dir, "com/example/Base", base.Bytes())

	main := classfiletest.New("com/example/InitMain", "java/lang/Object")
	valueField := main.Fieldref("com/example/Base", "value", "I")
	sysOutRef := main.Fieldref("java/lang/System", "out", "Ljava/io/PrintStream;")
	printlnRef := main.Methodref("java/io/PrintStream", "println", "(I)V")

	var code []byte
	code = append(code, 0xB2) // getstatic System.out
	code = append(code, u16(sysOutRef)...)
	code = append(code, 0xB2) // getstatic Base.value
	code = append(code, u16(valueField)...)
	code = append(code, 0xB6) // invokevirtual println(I)V
	code = append(code, u16(printlnRef)...)
	code = append(code, 0xB1)
	main.AddMethod("main", "([Ljava/lang/String;)V", classfiletest.AccPublic|classfiletest.AccStatic, 2, 1, code)
	writeClass(t, dir, "com/example/InitMain", main.Bytes())

	vm := interp.New([]string{dir})
	var out bytes.Buffer
	vm.Stdout = &out
	if err := vm.RunMain("com/example/InitMain"); err != nil {
		t.Fatalf("RunMain: %v", err)
	}
	if out.String() != "10\n" {
		t.Errorf("output = %q, want %q", out.String(), "10\n")
	}
}
