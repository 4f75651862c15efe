package metadata

import "fmt"

// Handle is an opaque reference to one row of one metadata table.
// The high byte carries the table ID and the low three bytes a 1-based
// row index. The zero Handle is nil and refers to nothing.
type Handle uint32

// MakeHandle composes a handle from a table ID and a 1-based row index.
func MakeHandle(table byte, row uint32) Handle {
	return Handle(uint32(table)<<24 | row&0x00FFFFFF)
}

// TableID returns the table the handle points into.
func (h Handle) TableID() byte {
	return byte(h >> 24)
}

// Row returns the 1-based row index within the table.
func (h Handle) Row() uint32 {
	return uint32(h) & 0x00FFFFFF
}

// IsNil reports whether the handle refers to nothing.
func (h Handle) IsNil() bool {
	return h == 0
}

// String returns a display form such as "Field[3]".
func (h Handle) String() string {
	if h.IsNil() {
		return "nil"
	}
	return fmt.Sprintf("%s[%d]", tableName(h.TableID()), h.Row())
}

// StringHandle is an offset into the string heap. Offset 0 is the
// empty string.
type StringHandle uint32

// BlobHandle is an offset into the blob heap. Offset 0 is the empty blob.
type BlobHandle uint32

// TypeRefRow references a type defined outside the image.
type TypeRefRow struct {
	Name      StringHandle
	Namespace StringHandle
}

// TypeDefRow describes a type declared in the image. Its declared
// fields are the contiguous Field rows [FieldList, FieldList+FieldCount).
type TypeDefRow struct {
	Name       StringHandle
	Namespace  StringHandle
	FieldList  uint32 // 1-based first Field row, 0 when FieldCount is 0
	FieldCount uint32
}

// FieldRow describes one declared field.
type FieldRow struct {
	Flags     FieldAttributes
	Name      StringHandle
	Signature BlobHandle
}

// MethodDefRow describes one declared method. Only the pieces needed to
// learn a custom-attribute constructor's declaring type are modeled.
type MethodDefRow struct {
	Name          StringHandle
	DeclaringType Handle // TypeDef handle
}

// MemberRefRow references a member of an external type.
type MemberRefRow struct {
	Name  StringHandle
	Class Handle // TypeRef handle
}

// CustomAttributeRow attaches an annotation to a metadata entity.
// Ctor is a MethodDef or MemberRef handle.
type CustomAttributeRow struct {
	Parent Handle
	Ctor   Handle
}

// Image is a fully decoded metadata image. All tables and heaps are
// immutable once parsed; concurrent readers need no synchronization.
type Image struct {
	StringHeap []byte
	BlobHeap   []byte

	TypeRefs   []TypeRefRow
	TypeDefs   []TypeDefRow
	Fields     []FieldRow
	Methods    []MethodDefRow
	MemberRefs []MemberRefRow
	Attributes []CustomAttributeRow
}

// AddString appends a string to the string heap and returns its handle.
// The empty string always maps to handle 0.
func (m *Image) AddString(s string) StringHandle {
	if s == "" {
		return 0
	}
	if len(m.StringHeap) == 0 {
		m.StringHeap = append(m.StringHeap, 0)
	}
	h := StringHandle(len(m.StringHeap))
	m.StringHeap = append(m.StringHeap, s...)
	m.StringHeap = append(m.StringHeap, 0)
	return h
}

// AddBlob appends a blob to the blob heap and returns its handle.
// The empty blob always maps to handle 0.
func (m *Image) AddBlob(data []byte) BlobHandle {
	if len(data) == 0 {
		return 0
	}
	if len(m.BlobHeap) == 0 {
		m.BlobHeap = append(m.BlobHeap, 0)
	}
	h := BlobHandle(len(m.BlobHeap))
	m.BlobHeap = appendCompressed(m.BlobHeap, uint32(len(data)))
	m.BlobHeap = append(m.BlobHeap, data...)
	return h
}

// AddTypeRef appends a TypeRef row and returns its handle.
func (m *Image) AddTypeRef(namespace, name string) Handle {
	m.TypeRefs = append(m.TypeRefs, TypeRefRow{
		Name:      m.AddString(name),
		Namespace: m.AddString(namespace),
	})
	return MakeHandle(TableTypeRef, uint32(len(m.TypeRefs)))
}

// AddTypeDef appends a TypeDef row with no fields and returns its handle.
func (m *Image) AddTypeDef(namespace, name string) Handle {
	m.TypeDefs = append(m.TypeDefs, TypeDefRow{
		Name:      m.AddString(name),
		Namespace: m.AddString(namespace),
	})
	return MakeHandle(TableTypeDef, uint32(len(m.TypeDefs)))
}

// AddField appends a Field row to the given TypeDef and returns its
// handle. A type's fields occupy contiguous rows, so fields may only be
// added to a type whose field range still ends the Field table; adding
// out of order panics.
func (m *Image) AddField(typeDef Handle, name string, flags FieldAttributes, signature []byte) Handle {
	td := &m.TypeDefs[typeDef.Row()-1]
	if td.FieldCount == 0 {
		td.FieldList = uint32(len(m.Fields)) + 1
	} else if td.FieldList+td.FieldCount != uint32(len(m.Fields))+1 {
		panic(fmt.Sprintf("metadata: fields of %s are no longer the tail of the Field table", typeDef))
	}
	m.Fields = append(m.Fields, FieldRow{
		Flags:     flags,
		Name:      m.AddString(name),
		Signature: m.AddBlob(signature),
	})
	td.FieldCount++
	return MakeHandle(TableField, uint32(len(m.Fields)))
}

// AddMethod appends a MethodDef row and returns its handle.
func (m *Image) AddMethod(typeDef Handle, name string) Handle {
	m.Methods = append(m.Methods, MethodDefRow{
		Name:          m.AddString(name),
		DeclaringType: typeDef,
	})
	return MakeHandle(TableMethodDef, uint32(len(m.Methods)))
}

// AddMemberRef appends a MemberRef row and returns its handle.
func (m *Image) AddMemberRef(typeRef Handle, name string) Handle {
	m.MemberRefs = append(m.MemberRefs, MemberRefRow{
		Name:  m.AddString(name),
		Class: typeRef,
	})
	return MakeHandle(TableMemberRef, uint32(len(m.MemberRefs)))
}

// AddCustomAttribute attaches an annotation row to a parent entity.
func (m *Image) AddCustomAttribute(parent, ctor Handle) Handle {
	m.Attributes = append(m.Attributes, CustomAttributeRow{
		Parent: parent,
		Ctor:   ctor,
	})
	return MakeHandle(TableCustomAttribute, uint32(len(m.Attributes)))
}

func appendCompressed(dst []byte, v uint32) []byte {
	switch {
	case v <= 0x7F:
		return append(dst, byte(v))
	case v <= 0x3FFF:
		return append(dst, 0x80|byte(v>>8), byte(v))
	case v <= 0x1FFFFFFF:
		return append(dst, 0xC0|byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
	default:
		panic(fmt.Sprintf("metadata: value %#x exceeds compressed integer range", v))
	}
}
