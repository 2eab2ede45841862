// Package loader resolves class names to parsed class files and owns
// the one-class-loaded-at-most-once guarantee the rest of the VM
// depends on (spec §4.3).
package loader

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"github.com/gojvm/gojvm/classfile"
	"github.com/gojvm/gojvm/internal/jvmlog"
)

// ClinitFunc is invoked exactly once per class, after its superclass
// (if any) has already been initialized, and before Load returns the
// class to its first caller (spec §4.3 step 6). The loader package
// cannot import interp (which would create an import cycle), so the
// caller supplies class-initializer execution as a callback.
type ClinitFunc func(cf *classfile.ClassFile) error

// Loader searches an ordered list of directories for `<name>.class`
// files, caches parsed classes by name, and recursively loads
// superclasses before returning a class to the caller (spec §4.3).
type Loader struct {
	mu      sync.RWMutex
	dirs    []string
	cache   map[string]*classfile.ClassFile
	clinit  ClinitFunc
	loading map[string]bool // cycle guard while a Load() is in flight
}

// New creates a Loader that searches dirs in order, first match wins.
// onClinit is called post-order (superclass before subclass) the
// first time each class is loaded; pass a no-op if the caller handles
// initialization separately.
func New(dirs []string, onClinit ClinitFunc) *Loader {
	return &Loader{
		dirs:    append([]string{}, dirs...),
		cache:   make(map[string]*classfile.ClassFile),
		clinit:  onClinit,
		loading: make(map[string]bool),
	}
}

// NewFromEnv builds a Loader whose search path is entryDir followed by
// every direct child directory of $JDK_CLASSES (spec §4.3, "search
// path" note). entryDir is typically the directory holding the class
// the caller is about to run.
func NewFromEnv(entryDir string, onClinit ClinitFunc) *Loader {
	dirs := []string{entryDir}
	if root := os.Getenv("JDK_CLASSES"); root != "" {
		entries, err := os.ReadDir(root)
		if err == nil {
			for _, e := range entries {
				if e.IsDir() {
					dirs = append(dirs, filepath.Join(root, e.Name()))
				}
			}
		}
	}
	return New(dirs, onClinit)
}

// Load resolves name (internal form, e.g. "com/example/Foo") to a
// parsed ClassFile, loading and initializing its superclass chain
// first (spec §4.3 steps 1-6):
//  1. Return the cached class if present.
//  2. Otherwise probe each search directory for `<name>.class`.
//  3. Decode the bytes into a ClassFile.
//  4. Recursively Load the superclass, unless it is java/lang/Object.
//  5. Insert into the cache before running <clinit>, so a class that
//     references itself during initialization does not recurse forever.
//  6. Run the class's own <clinit> via the supplied callback, then
//     return.
func (l *Loader) Load(name string) (*classfile.ClassFile, error) {
	l.mu.RLock()
	if cf, ok := l.cache[name]; ok {
		l.mu.RUnlock()
		return cf, nil
	}
	l.mu.RUnlock()

	l.mu.Lock()
	if cf, ok := l.cache[name]; ok {
		l.mu.Unlock()
		return cf, nil
	}
	if l.loading[name] {
		l.mu.Unlock()
		return nil, errors.Errorf("loader: cyclic class load detected for %s", name)
	}
	l.loading[name] = true
	l.mu.Unlock()
	defer func() {
		l.mu.Lock()
		delete(l.loading, name)
		l.mu.Unlock()
	}()

	cf, err := l.readAndParse(name)
	if err != nil {
		return nil, err
	}
	jvmlog.L().Debugw("class decoded", "class", name)

	super := cf.SuperClassName()
	if super != "" && super != "java/lang/Object" {
		if _, err := l.Load(super); err != nil {
			return nil, errors.Wrapf(err, "loader: loading superclass %s of %s", super, name)
		}
	}

	l.mu.Lock()
	l.cache[name] = cf
	l.mu.Unlock()

	if l.clinit != nil {
		jvmlog.L().Debugw("running class initializer", "class", name)
		if err := l.clinit(cf); err != nil {
			return nil, errors.Wrapf(err, "loader: initializing %s", name)
		}
	}

	return cf, nil
}

func (l *Loader) readAndParse(name string) (*classfile.ClassFile, error) {
	var lastErr error
	for _, dir := range l.dirs {
		path := filepath.Join(dir, name+".class")
		f, err := os.Open(path)
		if err != nil {
			lastErr = err
			continue
		}
		cf, err := classfile.Parse(f)
		f.Close()
		if err != nil {
			return nil, errors.Wrapf(err, "loader: parsing %s", path)
		}
		return cf, nil
	}
	if cf, err := classfile.ParseFile(name + ".class"); err == nil {
		return cf, nil
	}
	return nil, errors.Wrapf(lastErr, "loader: class %s not found in search path", name)
}
