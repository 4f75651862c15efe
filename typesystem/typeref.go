package typesystem

import "github.com/storyge/corert/metadata"

// TypeRef is the resolved type of a field. It is a plain value: two
// TypeRefs computed from the same signature blob are always Equal, so
// redundant resolution by racing readers is harmless.
type TypeRef struct {
	// Elem points to the element type for szarray and ptr kinds.
	Elem *TypeRef

	// FullName is the "Namespace.Name" of class and valuetype kinds.
	FullName string

	// Kind is the signature element type.
	Kind metadata.ElementType
}

// Equal reports whether two resolved types denote the same type.
func (t TypeRef) Equal(o TypeRef) bool {
	if t.Kind != o.Kind || t.FullName != o.FullName {
		return false
	}
	if (t.Elem == nil) != (o.Elem == nil) {
		return false
	}
	if t.Elem != nil {
		return t.Elem.Equal(*o.Elem)
	}
	return true
}

// String returns a display form: primitive names as-is, full names for
// class/valuetype, "T[]" for szarray and "T*" for ptr.
func (t TypeRef) String() string {
	switch t.Kind {
	case metadata.ElemClass, metadata.ElemValueType:
		return t.FullName
	case metadata.ElemSZArray:
		return t.Elem.String() + "[]"
	case metadata.ElemPtr:
		return t.Elem.String() + "*"
	default:
		return t.Kind.String()
	}
}
