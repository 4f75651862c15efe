package typesystem

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/storyge/corert/metadata"
)

// FieldDescriptor represents one declared field of one declared type.
// The handle and owner never change after construction; the flag cache
// and the resolved field type populate lazily on first relevant access.
// All accessors are safe for unsynchronized concurrent use.
type FieldDescriptor struct {
	owner  *TypeDescriptor
	handle metadata.Handle

	// fieldType is a single-assignment slot. Racing readers may resolve
	// redundantly; results are value-equal, and the first store wins.
	fieldType atomic.Pointer[TypeRef]

	flags flagCache
}

// Handle returns the Field handle of this descriptor.
func (f *FieldDescriptor) Handle() metadata.Handle {
	return f.handle
}

// OwningType returns the type that declared this field. The owner owns
// this descriptor's lifetime; the back reference is lookup-only.
func (f *FieldDescriptor) OwningType() *TypeDescriptor {
	return f.owner
}

// Name reads the field's name from the string heap. It is not cached;
// string heap indexing is a fixed-cost read.
func (f *FieldDescriptor) Name() (string, error) {
	row, err := f.row()
	if err != nil {
		return "", err
	}
	return f.owner.module.image.ResolveString(row.Name)
}

// Attributes re-reads the field's raw attribute bitmask. Not cached.
func (f *FieldDescriptor) Attributes() metadata.FieldAttributes {
	row, err := f.row()
	if err != nil {
		return 0
	}
	return row.Flags
}

// IsStatic reports whether the field is static.
func (f *FieldDescriptor) IsStatic() bool {
	return f.getFlags(fieldFlagBasicComputed|fieldFlagStatic)&fieldFlagStatic != 0
}

// IsInitOnly reports whether the field is init-only (readonly).
func (f *FieldDescriptor) IsInitOnly() bool {
	return f.getFlags(fieldFlagBasicComputed|fieldFlagInitOnly)&fieldFlagInitOnly != 0
}

// IsLiteral reports whether the field is a compile-time literal.
func (f *FieldDescriptor) IsLiteral() bool {
	return f.getFlags(fieldFlagBasicComputed|fieldFlagLiteral)&fieldFlagLiteral != 0
}

// IsThreadStatic reports whether the field is thread-local storage.
// Thread-local storage is a static-field concept, so non-static fields
// answer false without ever scanning custom attributes.
func (f *FieldDescriptor) IsThreadStatic() bool {
	if !f.IsStatic() {
		return false
	}
	return f.getFlags(fieldFlagAttrComputed|fieldFlagThreadStatic)&fieldFlagThreadStatic != 0
}

// HasRVA reports whether the field has a mapped data location. A single
// bit test on the raw bitmask; caching would buy nothing.
func (f *FieldDescriptor) HasRVA() bool {
	return f.Attributes()&metadata.FieldHasFieldRVA != 0
}

// FieldType resolves the field's signature blob to its type. The result
// is memoized; a malformed blob fails on every call without mutating
// shared state.
func (f *FieldDescriptor) FieldType() (TypeRef, error) {
	if t := f.fieldType.Load(); t != nil {
		return *t, nil
	}

	row, err := f.row()
	if err != nil {
		return TypeRef{}, err
	}
	blob, err := f.owner.module.image.ResolveBlob(row.Signature)
	if err != nil {
		return TypeRef{}, err
	}
	t, err := f.owner.module.ResolveFieldSignature(blob)
	if err != nil {
		return TypeRef{}, err
	}

	f.fieldType.CompareAndSwap(nil, &t)
	return *f.fieldType.Load(), nil
}

// String returns the display form "<OwningType>.<Name>".
func (f *FieldDescriptor) String() string {
	name, err := f.Name()
	if err != nil {
		name = f.handle.String()
	}
	return f.owner.FullName() + "." + name
}

func (f *FieldDescriptor) row() (metadata.FieldRow, error) {
	return f.owner.module.image.ResolveField(f.handle)
}

// getFlags answers a flag query through the cache. The mask carries the
// marker bit of each group it touches; on a miss the whole touched
// group is recomputed and published atomically.
func (f *FieldDescriptor) getFlags(mask uint32) uint32 {
	return f.flags.get(mask, func() uint32 { return f.computeFlags(mask) })
}

// computeFlags recomputes every group the mask touches from the
// immutable metadata. Marker bits are set unconditionally for computed
// groups, even when every data bit is false; the fast path depends on
// that to tell "computed empty" from "never computed".
func (f *FieldDescriptor) computeFlags(mask uint32) uint32 {
	var newBits uint32

	if mask&fieldFlagBasicMask != 0 {
		newBits |= fieldFlagBasicComputed
		attrs := f.Attributes()
		if attrs&metadata.FieldStatic != 0 {
			newBits |= fieldFlagStatic
		}
		if attrs&metadata.FieldInitOnly != 0 {
			newBits |= fieldFlagInitOnly
		}
		if attrs&metadata.FieldLiteral != 0 {
			newBits |= fieldFlagLiteral
		}
	}

	if mask&fieldFlagAttrMask != 0 {
		newBits |= fieldFlagAttrComputed | f.scanCustomAttributes()
		Logger().Debug("computed attribute flags",
			zap.Stringer("field", f.handle),
			zap.Uint32("bits", newBits))
	}

	return newBits
}
