// Package natives implements the host-provided native method table
// (spec §4.4): a process-wide, read-only-after-bootstrap mapping from
// (owner class, method name, descriptor) to a Go function.
package natives

import (
	"fmt"

	"github.com/gojvm/gojvm/runtime"
)

// Key identifies a native method.
type Key struct {
	Class      string
	Method     string
	Descriptor string
}

func (k Key) String() string {
	return fmt.Sprintf("%s.%s:%s", k.Class, k.Method, k.Descriptor)
}

// Host is the minimal interpreter surface a native method needs: heap
// access. Arguments are passed separately as a slice (see Func).
// interp.VM implements this.
type Host interface {
	Heap() *runtime.Heap
}

// Func is a native method implementation. args holds the method's
// arguments in descriptor order, with `this` prepended for instance
// methods. A nil returned Value means a void return.
type Func func(host Host, args []runtime.Value) (*runtime.Value, error)

// Registry is the process-wide native method table. Registrations
// happen once at startup (NewRegistry); lookups are read-only
// thereafter (spec §4.4).
type Registry struct {
	table map[Key]Func
}

// NewRegistry builds a Registry with every built-in registration
// installed (spec §4.4): Object.hashCode/getClass/clone/registerNatives,
// System.registerNatives, plus the boxed Integer and HashMap natives
// the teacher's pkg/native exercises (§4.4 supplement, SPEC_FULL.md §4.4).
func NewRegistry() *Registry {
	r := &Registry{table: make(map[Key]Func)}
	registerObjectNatives(r)
	registerSystemNatives(r)
	registerPrintStreamNatives(r)
	registerIntegerNatives(r)
	registerHashMapNatives(r)
	return r
}

// Register installs a native method, overwriting any prior entry for
// the same key.
func (r *Registry) Register(owner, method, descriptor string, fn Func) {
	r.table[Key{Class: owner, Method: method, Descriptor: descriptor}] = fn
}

// Lookup finds a native method by exact key match.
func (r *Registry) Lookup(owner, method, descriptor string) (Func, bool) {
	fn, ok := r.table[Key{Class: owner, Method: method, Descriptor: descriptor}]
	return fn, ok
}
