package classfile

// ClassFile is the in-memory model of a parsed .class file.
type ClassFile struct {
	MinorVersion uint16
	MajorVersion uint16
	ConstantPool []ConstantPoolEntry
	AccessFlags  uint16
	ThisClass    uint16
	SuperClass   uint16
	Interfaces   []uint16
	Fields       []FieldInfo
	Methods      []MethodInfo

	// StaticValues holds the per-class static variable map, keyed by
	// field name. It starts out holding each static field's zero/null
	// default and is mutated by putstatic and by <clinit>.
	StaticValues map[string]StaticSlot

	// BootstrapMethods is the class-level BootstrapMethods attribute,
	// parsed for invokedynamic link-error reporting only.
	BootstrapMethods []BootstrapMethod
}

// StaticSlot is a width-tagged static field value, used before the
// runtime package's richer Value type exists (classfile has no
// dependency on runtime, so statics are represented as a small,
// self-contained tagged union here and converted by the interpreter).
type StaticSlot struct {
	Kind StaticKind
	I    int32
	L    int64
	F    float32
	D    float64
	// Str holds the preset literal for ConstantValue-backed String
	// statics (the one reference-typed default the decoder can know
	// about without running <clinit>).
	Str string
}

// StaticKind distinguishes the primitive kind of a StaticSlot.
type StaticKind int

const (
	StaticInt StaticKind = iota
	StaticLong
	StaticFloat
	StaticDouble
	StaticRef
)

// SuperClassName returns the fully qualified name of the super class,
// or "" if this class is java/lang/Object (SuperClass == 0).
func (cf *ClassFile) SuperClassName() string {
	if cf.SuperClass == 0 {
		return ""
	}
	name, err := GetClassName(cf.ConstantPool, cf.SuperClass)
	if err != nil {
		return ""
	}
	return name
}

// InterfaceNames resolves the class's declared interfaces to names.
func (cf *ClassFile) InterfaceNames() []string {
	names := make([]string, 0, len(cf.Interfaces))
	for _, idx := range cf.Interfaces {
		name, err := GetClassName(cf.ConstantPool, idx)
		if err != nil {
			continue
		}
		names = append(names, name)
	}
	return names
}

// ConstantPoolEntry is implemented by every constant pool variant.
type ConstantPoolEntry interface {
	Tag() uint8
}

type ConstantUtf8 struct{ Value string }

func (c *ConstantUtf8) Tag() uint8 { return TagUtf8 }

type ConstantInteger struct{ Value int32 }

func (c *ConstantInteger) Tag() uint8 { return TagInteger }

type ConstantFloat struct{ Value float32 }

func (c *ConstantFloat) Tag() uint8 { return TagFloat }

type ConstantLong struct{ Value int64 }

func (c *ConstantLong) Tag() uint8 { return TagLong }

type ConstantDouble struct{ Value float64 }

func (c *ConstantDouble) Tag() uint8 { return TagDouble }

type ConstantClass struct{ NameIndex uint16 }

func (c *ConstantClass) Tag() uint8 { return TagClass }

type ConstantString struct{ StringIndex uint16 }

func (c *ConstantString) Tag() uint8 { return TagString }

type ConstantFieldref struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (c *ConstantFieldref) Tag() uint8 { return TagFieldref }

type ConstantMethodref struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (c *ConstantMethodref) Tag() uint8 { return TagMethodref }

type ConstantInterfaceMethodref struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (c *ConstantInterfaceMethodref) Tag() uint8 { return TagInterfaceMethodref }

type ConstantNameAndType struct {
	NameIndex       uint16
	DescriptorIndex uint16
}

func (c *ConstantNameAndType) Tag() uint8 { return TagNameAndType }

// ConstantMethodHandle retains the reference_kind/reference_index pair;
// the teacher discards these bytes after skipping them. Nothing in
// this interpreter resolves a MethodHandle to a callable, but keeping
// the fields means a link error naming them is possible instead of a
// bare "unsupported tag".
type ConstantMethodHandle struct {
	ReferenceKind  uint8
	ReferenceIndex uint16
}

func (c *ConstantMethodHandle) Tag() uint8 { return TagMethodHandle }

type ConstantMethodType struct{ DescriptorIndex uint16 }

func (c *ConstantMethodType) Tag() uint8 { return TagMethodType }

// ConstantInvokeDynamic retains bootstrap_method_attr_index and the
// name_and_type_index, the minimum needed to report which call site
// an unsupported invokedynamic belongs to.
type ConstantInvokeDynamic struct {
	BootstrapMethodAttrIndex uint16
	NameAndTypeIndex         uint16
}

func (c *ConstantInvokeDynamic) Tag() uint8 { return TagInvokeDynamic }

// MethodInfo is a parsed method_info entry.
type MethodInfo struct {
	AccessFlags uint16
	Name        string
	Descriptor  string
	Attributes  []AttributeInfo
	Code        *CodeAttribute
}

// IsStatic reports whether the method has the ACC_STATIC flag.
func (m *MethodInfo) IsStatic() bool { return m.AccessFlags&AccStatic != 0 }

// IsNative reports whether the method has the ACC_NATIVE flag.
func (m *MethodInfo) IsNative() bool { return m.AccessFlags&AccNative != 0 }

// IsAbstract reports whether the method has the ACC_ABSTRACT flag.
func (m *MethodInfo) IsAbstract() bool { return m.AccessFlags&AccAbstract != 0 }

// FieldInfo is a parsed field_info entry.
type FieldInfo struct {
	AccessFlags uint16
	Name        string
	Descriptor  string
	Attributes  []AttributeInfo
	// ConstantValueIndex is the constant pool index named by a
	// ConstantValue attribute, or 0 if the field has none.
	ConstantValueIndex uint16
}

// IsStatic reports whether the field has the ACC_STATIC flag.
func (f *FieldInfo) IsStatic() bool { return f.AccessFlags&AccStatic != 0 }

// AttributeInfo is a raw, unparsed attribute (except Code and
// BootstrapMethods, which are promoted to typed fields during parsing).
type AttributeInfo struct {
	Name string
	Data []byte
}

// ExceptionHandler is one entry of a Code attribute's exception table.
// The table is retained for decoder fidelity; the interpreter does not
// search it (athrow is terminal — see spec §7).
type ExceptionHandler struct {
	StartPC   uint16
	EndPC     uint16
	HandlerPC uint16
	CatchType uint16
}

// CodeAttribute is the parsed Code attribute of a method.
type CodeAttribute struct {
	MaxStack          uint16
	MaxLocals         uint16
	Code              []byte
	ExceptionHandlers []ExceptionHandler
}

// BootstrapMethod is one entry of the class-level BootstrapMethods
// attribute, consulted (but not executed) by invokedynamic's link
// error reporting.
type BootstrapMethod struct {
	MethodRef          uint16
	BootstrapArguments []uint16
}

// ClassName returns the fully qualified name of this class.
func (cf *ClassFile) ClassName() (string, error) {
	return GetClassName(cf.ConstantPool, cf.ThisClass)
}

// FindMethod finds a method by name and descriptor.
func (cf *ClassFile) FindMethod(name, descriptor string) *MethodInfo {
	for i := range cf.Methods {
		if cf.Methods[i].Name == name && cf.Methods[i].Descriptor == descriptor {
			return &cf.Methods[i]
		}
	}
	return nil
}

