package natives

import (
	"fmt"
	"io"

	"github.com/gojvm/gojvm/runtime"
)

// PrintStream is the host-side companion for a java.io.PrintStream
// object (spec §4.6.6: System.out is a genuine heap object, not the
// class-file magic number reused as a stack sentinel).
type PrintStream struct {
	Writer io.Writer
}

// NewSystemOut allocates a heap object wrapping a PrintStream over w
// and returns its reference. Called once at VM bootstrap to populate
// java/lang/System.out (spec §4.4).
func NewSystemOut(heap *runtime.Heap, w io.Writer) runtime.Ref {
	ref := heap.NewObject("java/io/PrintStream")
	obj, err := heap.Object(ref)
	if err != nil {
		panic("NewSystemOut: just-allocated object is unreadable: " + err.Error())
	}
	obj.Native = &PrintStream{Writer: w}
	return ref
}

func registerPrintStreamNatives(r *Registry) {
	r.Register("java/io/PrintStream", "println", "(I)V", printlnValue)
	r.Register("java/io/PrintStream", "println", "(J)V", printlnValue)
	r.Register("java/io/PrintStream", "println", "(Ljava/lang/String;)V", printlnValue)
	r.Register("java/io/PrintStream", "println", "()V", func(host Host, args []runtime.Value) (*runtime.Value, error) {
		ps, err := printStreamOf(host, args)
		if err != nil {
			return nil, err
		}
		fmt.Fprintln(ps.Writer)
		return nil, nil
	})
	r.Register("java/io/PrintStream", "print", "(I)V", printValue)
}

func printStreamOf(host Host, args []runtime.Value) (*PrintStream, error) {
	obj, err := host.Heap().Object(args[0].RefVal())
	if err != nil {
		return nil, err
	}
	ps, ok := obj.Native.(*PrintStream)
	if !ok {
		return nil, runtime.ErrNotAnObject
	}
	return ps, nil
}

func printlnValue(host Host, args []runtime.Value) (*runtime.Value, error) {
	ps, err := printStreamOf(host, args)
	if err != nil {
		return nil, err
	}
	fmt.Fprintln(ps.Writer, formatArg(host, args[1]))
	return nil, nil
}

func printValue(host Host, args []runtime.Value) (*runtime.Value, error) {
	ps, err := printStreamOf(host, args)
	if err != nil {
		return nil, err
	}
	fmt.Fprint(ps.Writer, formatArg(host, args[1]))
	return nil, nil
}

// formatArg renders an argument value for print/println. A reference
// prints as "null" when null, as the Go string in its Native field
// when it has one (java/lang/String literals, java/lang/Class names),
// and as "<object>" otherwise; primitives print as their numeric value.
func formatArg(host Host, v runtime.Value) interface{} {
	if v.Type == runtime.TypeRef {
		if v.IsNull() {
			return "null"
		}
		if obj, err := host.Heap().Object(v.RefVal()); err == nil {
			if s, ok := obj.Native.(string); ok {
				return s
			}
		}
		return "<object>"
	}
	switch v.Type {
	case runtime.TypeLong:
		return v.Long()
	case runtime.TypeFloat:
		return v.Float()
	case runtime.TypeDouble:
		return v.Double()
	default:
		return v.Int()
	}
}
