// Package classfiletest builds minimal, valid .class file byte streams
// in memory, so the rest of the module's test suites never depend on
// a real javac/JDK toolchain or fixture files on disk.
package classfiletest

import (
	"bytes"
	"encoding/binary"
)

const (
	tagUtf8               = 1
	tagInteger            = 3
	tagFloat              = 4
	tagLong               = 5
	tagDouble             = 6
	tagClass              = 7
	tagString             = 8
	tagFieldref           = 9
	tagMethodref          = 10
	tagInterfaceMethodref = 11
	tagNameAndType        = 12
)

const (
	AccPublic = 0x0001
	AccStatic = 0x0008
	AccNative = 0x0100
)

type poolEntry struct {
	bytes []byte
	wide  bool // Long/Double occupy two pool slots
}

// Builder accumulates constant pool entries, fields and methods for
// one class, and serializes them into class-file bytes on Bytes().
type Builder struct {
	thisClass  string
	superClass string
	interfaces []string
	pool       []poolEntry
	utf8Index  map[string]uint16
	classIndex map[string]uint16
	fields     []fieldSpec
	methods    []methodSpec
}

type fieldSpec struct {
	name, descriptor string
	access           uint16
	constValueIndex  uint16
}

type methodSpec struct {
	name, descriptor string
	access           uint16
	code             []byte
	maxStack         uint16
	maxLocals        uint16
}

// New creates a Builder for a class named thisClass, extending
// superClass ("" means none — used only for java/lang/Object itself).
func New(thisClass, superClass string) *Builder {
	b := &Builder{
		thisClass:  thisClass,
		superClass: superClass,
		utf8Index:  make(map[string]uint16),
		classIndex: make(map[string]uint16),
	}
	b.pool = append(b.pool, poolEntry{}) // index 0 unused
	return b
}

func (b *Builder) add(data []byte, wide bool) uint16 {
	b.pool = append(b.pool, poolEntry{bytes: data, wide: wide})
	idx := uint16(len(b.pool) - 1)
	if wide {
		b.pool = append(b.pool, poolEntry{})
	}
	return idx
}

// Utf8 interns a Utf8 constant, returning its pool index.
func (b *Builder) Utf8(s string) uint16 {
	if idx, ok := b.utf8Index[s]; ok {
		return idx
	}
	buf := new(bytes.Buffer)
	buf.WriteByte(tagUtf8)
	binary.Write(buf, binary.BigEndian, uint16(len(s)))
	buf.WriteString(s)
	idx := b.add(buf.Bytes(), false)
	b.utf8Index[s] = idx
	return idx
}

// Class interns a CONSTANT_Class for name, returning its pool index.
func (b *Builder) Class(name string) uint16 {
	if idx, ok := b.classIndex[name]; ok {
		return idx
	}
	nameIdx := b.Utf8(name)
	buf := new(bytes.Buffer)
	buf.WriteByte(tagClass)
	binary.Write(buf, binary.BigEndian, nameIdx)
	idx := b.add(buf.Bytes(), false)
	b.classIndex[name] = idx
	return idx
}

// NameAndType interns a CONSTANT_NameAndType, returning its pool index.
func (b *Builder) NameAndType(name, descriptor string) uint16 {
	nameIdx := b.Utf8(name)
	descIdx := b.Utf8(descriptor)
	buf := new(bytes.Buffer)
	buf.WriteByte(tagNameAndType)
	binary.Write(buf, binary.BigEndian, nameIdx)
	binary.Write(buf, binary.BigEndian, descIdx)
	return b.add(buf.Bytes(), false)
}

// Methodref interns a CONSTANT_Methodref, returning its pool index.
func (b *Builder) Methodref(className, name, descriptor string) uint16 {
	classIdx := b.Class(className)
	natIdx := b.NameAndType(name, descriptor)
	buf := new(bytes.Buffer)
	buf.WriteByte(tagMethodref)
	binary.Write(buf, binary.BigEndian, classIdx)
	binary.Write(buf, binary.BigEndian, natIdx)
	return b.add(buf.Bytes(), false)
}

// InterfaceMethodref interns a CONSTANT_InterfaceMethodref.
func (b *Builder) InterfaceMethodref(className, name, descriptor string) uint16 {
	classIdx := b.Class(className)
	natIdx := b.NameAndType(name, descriptor)
	buf := new(bytes.Buffer)
	buf.WriteByte(tagInterfaceMethodref)
	binary.Write(buf, binary.BigEndian, classIdx)
	binary.Write(buf, binary.BigEndian, natIdx)
	return b.add(buf.Bytes(), false)
}

// Fieldref interns a CONSTANT_Fieldref, returning its pool index.
func (b *Builder) Fieldref(className, name, descriptor string) uint16 {
	classIdx := b.Class(className)
	natIdx := b.NameAndType(name, descriptor)
	buf := new(bytes.Buffer)
	buf.WriteByte(tagFieldref)
	binary.Write(buf, binary.BigEndian, classIdx)
	binary.Write(buf, binary.BigEndian, natIdx)
	return b.add(buf.Bytes(), false)
}

// Integer interns a CONSTANT_Integer, returning its pool index.
func (b *Builder) Integer(v int32) uint16 {
	buf := new(bytes.Buffer)
	buf.WriteByte(tagInteger)
	binary.Write(buf, binary.BigEndian, v)
	return b.add(buf.Bytes(), false)
}

// Long interns a CONSTANT_Long, returning its pool index.
func (b *Builder) Long(v int64) uint16 {
	buf := new(bytes.Buffer)
	buf.WriteByte(tagLong)
	binary.Write(buf, binary.BigEndian, v)
	return b.add(buf.Bytes(), true)
}

// Float interns a CONSTANT_Float, returning its pool index.
func (b *Builder) Float(v float32) uint16 {
	buf := new(bytes.Buffer)
	buf.WriteByte(tagFloat)
	binary.Write(buf, binary.BigEndian, v)
	return b.add(buf.Bytes(), false)
}

// Double interns a CONSTANT_Double, returning its pool index.
func (b *Builder) Double(v float64) uint16 {
	buf := new(bytes.Buffer)
	buf.WriteByte(tagDouble)
	binary.Write(buf, binary.BigEndian, v)
	return b.add(buf.Bytes(), true)
}

// String interns a CONSTANT_String referencing a Utf8 literal.
func (b *Builder) String(s string) uint16 {
	strIdx := b.Utf8(s)
	buf := new(bytes.Buffer)
	buf.WriteByte(tagString)
	binary.Write(buf, binary.BigEndian, strIdx)
	return b.add(buf.Bytes(), false)
}

// AddInterface declares an implemented interface by name.
func (b *Builder) AddInterface(name string) {
	b.interfaces = append(b.interfaces, name)
}

// AddField declares a field_info with no ConstantValue attribute.
func (b *Builder) AddField(name, descriptor string, access uint16) {
	b.fields = append(b.fields, fieldSpec{name: name, descriptor: descriptor, access: access})
}

// AddStaticIntField declares a static int field with a ConstantValue
// attribute, exercising the decoder's static-default seeding path.
func (b *Builder) AddStaticIntField(name string, value int32) {
	idx := b.Integer(value)
	b.fields = append(b.fields, fieldSpec{name: name, descriptor: "I", access: AccStatic | AccPublic, constValueIndex: idx})
}

// AddMethod declares a method with a Code attribute.
func (b *Builder) AddMethod(name, descriptor string, access uint16, maxStack, maxLocals uint16, code []byte) {
	b.methods = append(b.methods, methodSpec{name: name, descriptor: descriptor, access: access, code: code, maxStack: maxStack, maxLocals: maxLocals})
}

// AddNativeMethod declares a method with ACC_NATIVE and no Code
// attribute.
func (b *Builder) AddNativeMethod(name, descriptor string, access uint16) {
	b.methods = append(b.methods, methodSpec{name: name, descriptor: descriptor, access: access | AccNative})
}

// internAll ensures every Utf8/Class constant the serialized body
// will reference (this/super/interfaces, field and method names and
// descriptors, and the "Code"/"ConstantValue" attribute names) is
// already in the pool before the pool header is written.
func (b *Builder) internAll() {
	b.Class(b.thisClass)
	if b.superClass != "" {
		b.Class(b.superClass)
	}
	for _, iface := range b.interfaces {
		b.Class(iface)
	}
	for _, f := range b.fields {
		b.Utf8(f.name)
		b.Utf8(f.descriptor)
		if f.constValueIndex != 0 {
			b.Utf8("ConstantValue")
		}
	}
	for _, m := range b.methods {
		b.Utf8(m.name)
		b.Utf8(m.descriptor)
		if m.code != nil {
			b.Utf8("Code")
		}
	}
}

// Bytes serializes the accumulated class into a full .class byte
// stream: magic, versions, constant pool, access flags, this/super,
// interfaces, fields, methods, and an empty class attribute list.
func (b *Builder) Bytes() []byte {
	b.internAll()

	buf := new(bytes.Buffer)
	binary.Write(buf, binary.BigEndian, uint32(0xCAFEBABE))
	binary.Write(buf, binary.BigEndian, uint16(0))  // minor
	binary.Write(buf, binary.BigEndian, uint16(61)) // major (Java 17)

	binary.Write(buf, binary.BigEndian, uint16(len(b.pool)))
	for i := 1; i < len(b.pool); i++ {
		if b.pool[i].bytes == nil {
			continue // second slot of a wide entry
		}
		buf.Write(b.pool[i].bytes)
	}

	binary.Write(buf, binary.BigEndian, uint16(AccPublic))
	binary.Write(buf, binary.BigEndian, b.Class(b.thisClass))
	if b.superClass == "" {
		binary.Write(buf, binary.BigEndian, uint16(0))
	} else {
		binary.Write(buf, binary.BigEndian, b.Class(b.superClass))
	}

	binary.Write(buf, binary.BigEndian, uint16(len(b.interfaces)))
	for _, iface := range b.interfaces {
		binary.Write(buf, binary.BigEndian, b.Class(iface))
	}

	binary.Write(buf, binary.BigEndian, uint16(len(b.fields)))
	for _, f := range b.fields {
		binary.Write(buf, binary.BigEndian, f.access)
		binary.Write(buf, binary.BigEndian, b.Utf8(f.name))
		binary.Write(buf, binary.BigEndian, b.Utf8(f.descriptor))
		if f.constValueIndex != 0 {
			binary.Write(buf, binary.BigEndian, uint16(1))
			binary.Write(buf, binary.BigEndian, b.Utf8("ConstantValue"))
			binary.Write(buf, binary.BigEndian, uint32(2))
			binary.Write(buf, binary.BigEndian, f.constValueIndex)
		} else {
			binary.Write(buf, binary.BigEndian, uint16(0))
		}
	}

	binary.Write(buf, binary.BigEndian, uint16(len(b.methods)))
	for _, m := range b.methods {
		binary.Write(buf, binary.BigEndian, m.access)
		binary.Write(buf, binary.BigEndian, b.Utf8(m.name))
		binary.Write(buf, binary.BigEndian, b.Utf8(m.descriptor))
		if m.code == nil {
			binary.Write(buf, binary.BigEndian, uint16(0))
			continue
		}
		binary.Write(buf, binary.BigEndian, uint16(1))
		binary.Write(buf, binary.BigEndian, b.Utf8("Code"))

		codeBuf := new(bytes.Buffer)
		binary.Write(codeBuf, binary.BigEndian, m.maxStack)
		binary.Write(codeBuf, binary.BigEndian, m.maxLocals)
		binary.Write(codeBuf, binary.BigEndian, uint32(len(m.code)))
		codeBuf.Write(m.code)
		binary.Write(codeBuf, binary.BigEndian, uint16(0)) // exception table length
		binary.Write(codeBuf, binary.BigEndian, uint16(0)) // attributes count

		binary.Write(buf, binary.BigEndian, uint32(codeBuf.Len()))
		buf.Write(codeBuf.Bytes())
	}

	binary.Write(buf, binary.BigEndian, uint16(0)) // class attributes count

	return buf.Bytes()
}
