package classfile

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/pkg/errors"
)

// parseConstantPool reads constant_pool_count-1 entries from r. The
// returned slice is 1-indexed: index 0 is always nil. A Long or Double
// entry consumes two indices; the second is left nil (spec §3, §8).
func parseConstantPool(r io.Reader, count uint16) ([]ConstantPoolEntry, error) {
	pool := make([]ConstantPoolEntry, count)

	for i := uint16(1); i < count; i++ {
		var tag uint8
		if err := binary.Read(r, binary.BigEndian, &tag); err != nil {
			return nil, errors.Wrapf(err, "reading constant pool tag at index %d", i)
		}

		switch tag {
		case TagUtf8:
			var length uint16
			if err := binary.Read(r, binary.BigEndian, &length); err != nil {
				return nil, errors.Wrapf(err, "reading Utf8 length at index %d", i)
			}
			raw := make([]byte, length)
			if _, err := io.ReadFull(r, raw); err != nil {
				return nil, errors.Wrapf(err, "reading Utf8 bytes at index %d", i)
			}
			pool[i] = &ConstantUtf8{Value: string(raw)}

		case TagInteger:
			var v int32
			if err := binary.Read(r, binary.BigEndian, &v); err != nil {
				return nil, errors.Wrapf(err, "reading Integer at index %d", i)
			}
			pool[i] = &ConstantInteger{Value: v}

		case TagFloat:
			var bits uint32
			if err := binary.Read(r, binary.BigEndian, &bits); err != nil {
				return nil, errors.Wrapf(err, "reading Float at index %d", i)
			}
			pool[i] = &ConstantFloat{Value: math.Float32frombits(bits)}

		case TagLong:
			var v int64
			if err := binary.Read(r, binary.BigEndian, &v); err != nil {
				return nil, errors.Wrapf(err, "reading Long at index %d", i)
			}
			pool[i] = &ConstantLong{Value: v}
			i++ // occupies two slots

		case TagDouble:
			var bits uint64
			if err := binary.Read(r, binary.BigEndian, &bits); err != nil {
				return nil, errors.Wrapf(err, "reading Double at index %d", i)
			}
			pool[i] = &ConstantDouble{Value: math.Float64frombits(bits)}
			i++ // occupies two slots

		case TagClass:
			var nameIndex uint16
			if err := binary.Read(r, binary.BigEndian, &nameIndex); err != nil {
				return nil, errors.Wrapf(err, "reading Class at index %d", i)
			}
			pool[i] = &ConstantClass{NameIndex: nameIndex}

		case TagString:
			var stringIndex uint16
			if err := binary.Read(r, binary.BigEndian, &stringIndex); err != nil {
				return nil, errors.Wrapf(err, "reading String at index %d", i)
			}
			pool[i] = &ConstantString{StringIndex: stringIndex}

		case TagFieldref:
			classIndex, natIndex, err := readRefPair(r)
			if err != nil {
				return nil, errors.Wrapf(err, "reading Fieldref at index %d", i)
			}
			pool[i] = &ConstantFieldref{ClassIndex: classIndex, NameAndTypeIndex: natIndex}

		case TagMethodref:
			classIndex, natIndex, err := readRefPair(r)
			if err != nil {
				return nil, errors.Wrapf(err, "reading Methodref at index %d", i)
			}
			pool[i] = &ConstantMethodref{ClassIndex: classIndex, NameAndTypeIndex: natIndex}

		case TagInterfaceMethodref:
			classIndex, natIndex, err := readRefPair(r)
			if err != nil {
				return nil, errors.Wrapf(err, "reading InterfaceMethodref at index %d", i)
			}
			pool[i] = &ConstantInterfaceMethodref{ClassIndex: classIndex, NameAndTypeIndex: natIndex}

		case TagNameAndType:
			nameIndex, descIndex, err := readRefPair(r)
			if err != nil {
				return nil, errors.Wrapf(err, "reading NameAndType at index %d", i)
			}
			pool[i] = &ConstantNameAndType{NameIndex: nameIndex, DescriptorIndex: descIndex}

		case TagMethodHandle:
			var kind uint8
			if err := binary.Read(r, binary.BigEndian, &kind); err != nil {
				return nil, errors.Wrapf(err, "reading MethodHandle reference_kind at index %d", i)
			}
			var refIndex uint16
			if err := binary.Read(r, binary.BigEndian, &refIndex); err != nil {
				return nil, errors.Wrapf(err, "reading MethodHandle reference_index at index %d", i)
			}
			pool[i] = &ConstantMethodHandle{ReferenceKind: kind, ReferenceIndex: refIndex}

		case TagMethodType:
			var descIndex uint16
			if err := binary.Read(r, binary.BigEndian, &descIndex); err != nil {
				return nil, errors.Wrapf(err, "reading MethodType at index %d", i)
			}
			pool[i] = &ConstantMethodType{DescriptorIndex: descIndex}

		case TagDynamic, TagInvokeDynamic:
			bootstrapIndex, natIndex, err := readRefPair(r)
			if err != nil {
				return nil, errors.Wrapf(err, "reading Dynamic/InvokeDynamic at index %d", i)
			}
			pool[i] = &ConstantInvokeDynamic{BootstrapMethodAttrIndex: bootstrapIndex, NameAndTypeIndex: natIndex}

		default:
			return nil, errors.Errorf("unknown constant pool tag %d at index %d", tag, i)
		}
	}

	return pool, nil
}

func readRefPair(r io.Reader) (uint16, uint16, error) {
	var a, b uint16
	if err := binary.Read(r, binary.BigEndian, &a); err != nil {
		return 0, 0, err
	}
	if err := binary.Read(r, binary.BigEndian, &b); err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

func checkIndex(pool []ConstantPoolEntry, index uint16) (ConstantPoolEntry, error) {
	if int(index) >= len(pool) || pool[index] == nil {
		return nil, errors.Errorf("invalid constant pool index %d", index)
	}
	return pool[index], nil
}

// GetUtf8 returns the Utf8 string at the given constant pool index.
func GetUtf8(pool []ConstantPoolEntry, index uint16) (string, error) {
	entry, err := checkIndex(pool, index)
	if err != nil {
		return "", err
	}
	utf8, ok := entry.(*ConstantUtf8)
	if !ok {
		return "", errors.Errorf("constant pool index %d is not Utf8 (tag=%d)", index, entry.Tag())
	}
	return utf8.Value, nil
}

// GetClassName returns the class name referenced by a CONSTANT_Class entry.
func GetClassName(pool []ConstantPoolEntry, classIndex uint16) (string, error) {
	entry, err := checkIndex(pool, classIndex)
	if err != nil {
		return "", err
	}
	class, ok := entry.(*ConstantClass)
	if !ok {
		return "", errors.Errorf("constant pool index %d is not Class", classIndex)
	}
	return GetUtf8(pool, class.NameIndex)
}

// GetStringConstant resolves a CONSTANT_String entry to its Utf8 value.
func GetStringConstant(pool []ConstantPoolEntry, index uint16) (string, error) {
	entry, err := checkIndex(pool, index)
	if err != nil {
		return "", err
	}
	str, ok := entry.(*ConstantString)
	if !ok {
		return "", errors.Errorf("constant pool index %d is not String", index)
	}
	return GetUtf8(pool, str.StringIndex)
}

// NameAndType resolves a CONSTANT_NameAndType entry to its name/descriptor pair.
func NameAndType(pool []ConstantPoolEntry, index uint16) (name, descriptor string, err error) {
	entry, err := checkIndex(pool, index)
	if err != nil {
		return "", "", err
	}
	nat, ok := entry.(*ConstantNameAndType)
	if !ok {
		return "", "", errors.Errorf("constant pool index %d is not NameAndType", index)
	}
	name, err = GetUtf8(pool, nat.NameIndex)
	if err != nil {
		return "", "", errors.Wrap(err, "resolving name")
	}
	descriptor, err = GetUtf8(pool, nat.DescriptorIndex)
	if err != nil {
		return "", "", errors.Wrap(err, "resolving descriptor")
	}
	return name, descriptor, nil
}

// MethodRefInfo holds a resolved Methodref/InterfaceMethodref.
type MethodRefInfo struct {
	ClassName  string
	MethodName string
	Descriptor string
}

// ResolveMethodref resolves a CONSTANT_Methodref entry.
func ResolveMethodref(pool []ConstantPoolEntry, index uint16) (*MethodRefInfo, error) {
	entry, err := checkIndex(pool, index)
	if err != nil {
		return nil, err
	}
	mref, ok := entry.(*ConstantMethodref)
	if !ok {
		return nil, errors.Errorf("constant pool index %d is not Methodref", index)
	}
	return resolveMethodLike(pool, mref.ClassIndex, mref.NameAndTypeIndex)
}

// ResolveInterfaceMethodref resolves a CONSTANT_InterfaceMethodref entry.
func ResolveInterfaceMethodref(pool []ConstantPoolEntry, index uint16) (*MethodRefInfo, error) {
	entry, err := checkIndex(pool, index)
	if err != nil {
		return nil, err
	}
	mref, ok := entry.(*ConstantInterfaceMethodref)
	if !ok {
		return nil, errors.Errorf("constant pool index %d is not InterfaceMethodref", index)
	}
	return resolveMethodLike(pool, mref.ClassIndex, mref.NameAndTypeIndex)
}

func resolveMethodLike(pool []ConstantPoolEntry, classIndex, natIndex uint16) (*MethodRefInfo, error) {
	className, err := GetClassName(pool, classIndex)
	if err != nil {
		return nil, errors.Wrap(err, "resolving class")
	}
	name, descriptor, err := NameAndType(pool, natIndex)
	if err != nil {
		return nil, errors.Wrap(err, "resolving name_and_type")
	}
	return &MethodRefInfo{ClassName: className, MethodName: name, Descriptor: descriptor}, nil
}

// FieldRefInfo holds a resolved Fieldref.
type FieldRefInfo struct {
	ClassName  string
	FieldName  string
	Descriptor string
}

// ResolveFieldref resolves a CONSTANT_Fieldref entry.
func ResolveFieldref(pool []ConstantPoolEntry, index uint16) (*FieldRefInfo, error) {
	entry, err := checkIndex(pool, index)
	if err != nil {
		return nil, err
	}
	fref, ok := entry.(*ConstantFieldref)
	if !ok {
		return nil, errors.Errorf("constant pool index %d is not Fieldref", index)
	}
	className, err := GetClassName(pool, fref.ClassIndex)
	if err != nil {
		return nil, errors.Wrap(err, "resolving class")
	}
	name, descriptor, err := NameAndType(pool, fref.NameAndTypeIndex)
	if err != nil {
		return nil, errors.Wrap(err, "resolving name_and_type")
	}
	return &FieldRefInfo{ClassName: className, FieldName: name, Descriptor: descriptor}, nil
}
