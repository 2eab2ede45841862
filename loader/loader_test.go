package loader_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gojvm/gojvm/classfile"
	"github.com/gojvm/gojvm/classfile/classfiletest"
	"github.com/gojvm/gojvm/loader"
)

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

func TestLoaderLoadsAndCaches(t *testing.T) {
	dir := t.TempDir()
	b := classfiletest.New("com/example/Leaf", "java/lang/Object")
	b.AddMethod("main", "([Ljava/lang/String;)V", classfiletest.AccPublic|classfiletest.AccStatic, 1, 1, []byte{0xB1})
	writeClass(t, dir, "com/example/Leaf", b.Bytes())

	var clinitCalls []string
	l := loader.New([]string{dir}, func(cf *classfile.ClassFile) error {
		name, _ := cf.ClassName()
		clinitCalls = append(clinitCalls, name)
		return nil
	})

	cf1, err := l.Load("com/example/Leaf")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cf2, err := l.Load("com/example/Leaf")
	if err != nil {
		t.Fatalf("Load (cached): %v", err)
	}
	if cf1 != cf2 {
		t.Error("Load should return the same cached *ClassFile on repeat calls")
	}
	if len(clinitCalls) != 1 {
		t.Errorf("<clinit> callback fired %d times, want 1", len(clinitCalls))
	}
}

func TestLoaderInitializesSuperBeforeSubclass(t *testing.T) {
	dir := t.TempDir()

	base := classfiletest.New("com/example/Base", "java/lang/Object")
	base.AddMethod("<clinit>", "()V", 0, 1, 0, []byte{0xB1})
	writeClass(t, dir, "com/example/Base", base.Bytes())

	derived := classfiletest.New("com/example/Derived", "com/example/Base")
	derived.AddMethod("<clinit>", "()V", 0, 1, 0, []byte{0xB1})
	writeClass(t, dir, "com/example/Derived", derived.Bytes())

	var order []string
	l := loader.New([]string{dir}, func(cf *classfile.ClassFile) error {
		name, _ := cf.ClassName()
		order = append(order, name)
		return nil
	})

	if _, err := l.Load("com/example/Derived"); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(order) != 2 || order[0] != "com/example/Base" || order[1] != "com/example/Derived" {
		t.Fatalf("initialization order = %v, want [com/example/Base com/example/Derived]", order)
	}
}

func TestLoaderMissingClass(t *testing.T) {
	dir := t.TempDir()
	l := loader.New([]string{dir}, nil)
	if _, err := l.Load("com/example/Missing"); err == nil {
		t.Fatal("expected an error loading a missing class")
	}
}
