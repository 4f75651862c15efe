package metadata

import (
	"bytes"
	"unicode/utf8"

	"github.com/storyge/corert/errors"
	"github.com/storyge/corert/metadata/internal/binary"
)

// ResolveString resolves a string heap handle. Handle 0 is the empty string.
func (m *Image) ResolveString(h StringHandle) (string, error) {
	if h == 0 {
		return "", nil
	}
	off := int(h)
	if off >= len(m.StringHeap) {
		return "", errors.OutOfBounds(errors.PhaseResolve, "Strings", off, len(m.StringHeap))
	}
	end := bytes.IndexByte(m.StringHeap[off:], 0)
	if end < 0 {
		return "", errors.New(errors.PhaseResolve, errors.KindInvalidData).
			Table("Strings").
			Detail("unterminated string at offset %d", off).
			Build()
	}
	s := m.StringHeap[off : off+end]
	if !utf8.Valid(s) {
		return "", errors.InvalidUTF8(errors.PhaseResolve, "Strings", s)
	}
	return string(s), nil
}

// ResolveBlob resolves a blob heap handle. Handle 0 is the empty blob.
func (m *Image) ResolveBlob(h BlobHandle) ([]byte, error) {
	if h == 0 {
		return nil, nil
	}
	off := int(h)
	if off >= len(m.BlobHeap) {
		return nil, errors.OutOfBounds(errors.PhaseResolve, "Blobs", off, len(m.BlobHeap))
	}
	r := binary.NewReader(bytes.NewReader(m.BlobHeap[off:]))
	data, err := r.ReadBlob()
	if err != nil {
		return nil, errors.MalformedBlob(errors.PhaseResolve, "truncated blob", err)
	}
	return data, nil
}

// ResolveTypeRef resolves a TypeRef handle to its row.
func (m *Image) ResolveTypeRef(h Handle) (TypeRefRow, error) {
	if h.TableID() != TableTypeRef || h.Row() == 0 || int(h.Row()) > len(m.TypeRefs) {
		return TypeRefRow{}, errors.InvalidHandle(errors.PhaseResolve, "TypeRef", uint32(h))
	}
	return m.TypeRefs[h.Row()-1], nil
}

// ResolveTypeDef resolves a TypeDef handle to its row.
func (m *Image) ResolveTypeDef(h Handle) (TypeDefRow, error) {
	if h.TableID() != TableTypeDef || h.Row() == 0 || int(h.Row()) > len(m.TypeDefs) {
		return TypeDefRow{}, errors.InvalidHandle(errors.PhaseResolve, "TypeDef", uint32(h))
	}
	return m.TypeDefs[h.Row()-1], nil
}

// ResolveField resolves a Field handle to its row.
func (m *Image) ResolveField(h Handle) (FieldRow, error) {
	if h.TableID() != TableField || h.Row() == 0 || int(h.Row()) > len(m.Fields) {
		return FieldRow{}, errors.InvalidHandle(errors.PhaseResolve, "Field", uint32(h))
	}
	return m.Fields[h.Row()-1], nil
}

// ResolveMethod resolves a MethodDef handle to its row.
func (m *Image) ResolveMethod(h Handle) (MethodDefRow, error) {
	if h.TableID() != TableMethodDef || h.Row() == 0 || int(h.Row()) > len(m.Methods) {
		return MethodDefRow{}, errors.InvalidHandle(errors.PhaseResolve, "MethodDef", uint32(h))
	}
	return m.Methods[h.Row()-1], nil
}

// ResolveMemberRef resolves a MemberRef handle to its row.
func (m *Image) ResolveMemberRef(h Handle) (MemberRefRow, error) {
	if h.TableID() != TableMemberRef || h.Row() == 0 || int(h.Row()) > len(m.MemberRefs) {
		return MemberRefRow{}, errors.InvalidHandle(errors.PhaseResolve, "MemberRef", uint32(h))
	}
	return m.MemberRefs[h.Row()-1], nil
}

// CustomAttributesFor returns all annotation rows attached to the given
// parent entity, in table order.
func (m *Image) CustomAttributesFor(parent Handle) []CustomAttributeRow {
	var rows []CustomAttributeRow
	for _, ca := range m.Attributes {
		if ca.Parent == parent {
			rows = append(rows, ca)
		}
	}
	return rows
}

// FullName composes "Namespace.Name" from two string handles; a nil
// namespace yields the bare name.
func (m *Image) FullName(namespace, name StringHandle) (string, error) {
	n, err := m.ResolveString(name)
	if err != nil {
		return "", err
	}
	ns, err := m.ResolveString(namespace)
	if err != nil {
		return "", err
	}
	if ns == "" {
		return n, nil
	}
	return ns + "." + n, nil
}

// FieldHandles returns the handles of the contiguous Field rows declared
// by the given TypeDef.
func (m *Image) FieldHandles(typeDef Handle) ([]Handle, error) {
	td, err := m.ResolveTypeDef(typeDef)
	if err != nil {
		return nil, err
	}
	if td.FieldCount == 0 {
		return nil, nil
	}
	handles := make([]Handle, 0, td.FieldCount)
	for row := td.FieldList; row < td.FieldList+td.FieldCount; row++ {
		handles = append(handles, MakeHandle(TableField, row))
	}
	return handles, nil
}
