package metadata

// Metadata image magic number and version.
const (
	// Magic is the metadata image magic number ("CDMT" in little-endian).
	Magic uint32 = 0x544D4443

	// Version is the supported metadata image format version.
	Version uint32 = 0x01
)

// Section IDs define the binary identifiers for each image section.
// Sections must appear in increasing order by ID.
const (
	SectionStrings          byte = 1 // String heap (null-terminated UTF-8)
	SectionBlobs            byte = 2 // Blob heap (compressed-length-prefixed)
	SectionTypeRefs         byte = 3 // TypeRef table (external type references)
	SectionTypeDefs         byte = 4 // TypeDef table
	SectionFields           byte = 5 // Field table
	SectionMethods          byte = 6 // MethodDef table
	SectionMemberRefs       byte = 7 // MemberRef table
	SectionCustomAttributes byte = 8 // CustomAttribute table
)

// Table IDs identify metadata tables inside handles, following the
// ECMA-335 table numbering.
const (
	TableTypeRef         byte = 0x01
	TableTypeDef         byte = 0x02
	TableField           byte = 0x04
	TableMethodDef       byte = 0x06
	TableMemberRef       byte = 0x0A
	TableCustomAttribute byte = 0x0C
)

// FieldAttributes is the raw attribute bitmask of a Field row
// (ECMA-335 II.23.1.5).
type FieldAttributes uint16

const (
	FieldAccessMask    FieldAttributes = 0x0007
	FieldStatic        FieldAttributes = 0x0010
	FieldInitOnly      FieldAttributes = 0x0020
	FieldLiteral       FieldAttributes = 0x0040
	FieldNotSerialized FieldAttributes = 0x0080
	FieldHasFieldRVA   FieldAttributes = 0x0100
	FieldSpecialName   FieldAttributes = 0x0200
	FieldRTSpecialName FieldAttributes = 0x0400
	FieldHasMarshal    FieldAttributes = 0x1000
	FieldPinvokeImpl   FieldAttributes = 0x2000
	FieldHasDefault    FieldAttributes = 0x8000
)

// ElementType encodings as used inside signature blobs (ECMA-335 II.23.1.16).
type ElementType byte

const (
	ElemEnd       ElementType = 0x00
	ElemVoid      ElementType = 0x01
	ElemBoolean   ElementType = 0x02
	ElemChar      ElementType = 0x03
	ElemI1        ElementType = 0x04
	ElemU1        ElementType = 0x05
	ElemI2        ElementType = 0x06
	ElemU2        ElementType = 0x07
	ElemI4        ElementType = 0x08
	ElemU4        ElementType = 0x09
	ElemI8        ElementType = 0x0A
	ElemU8        ElementType = 0x0B
	ElemR4        ElementType = 0x0C
	ElemR8        ElementType = 0x0D
	ElemString    ElementType = 0x0E
	ElemPtr       ElementType = 0x0F
	ElemByRef     ElementType = 0x10
	ElemValueType ElementType = 0x11
	ElemClass     ElementType = 0x12
	ElemObject    ElementType = 0x1C
	ElemSZArray   ElementType = 0x1D
	ElemCModReqd  ElementType = 0x1F
	ElemCModOpt   ElementType = 0x20
)

// SigField is the calling-convention byte opening a field signature blob
// (ECMA-335 II.23.2.4).
const SigField byte = 0x06

// String returns the display name for the element type.
func (e ElementType) String() string {
	switch e {
	case ElemVoid:
		return "void"
	case ElemBoolean:
		return "bool"
	case ElemChar:
		return "char"
	case ElemI1:
		return "int8"
	case ElemU1:
		return "uint8"
	case ElemI2:
		return "int16"
	case ElemU2:
		return "uint16"
	case ElemI4:
		return "int32"
	case ElemU4:
		return "uint32"
	case ElemI8:
		return "int64"
	case ElemU8:
		return "uint64"
	case ElemR4:
		return "float32"
	case ElemR8:
		return "float64"
	case ElemString:
		return "string"
	case ElemPtr:
		return "ptr"
	case ElemByRef:
		return "byref"
	case ElemValueType:
		return "valuetype"
	case ElemClass:
		return "class"
	case ElemObject:
		return "object"
	case ElemSZArray:
		return "szarray"
	default:
		return "unknown"
	}
}

// IsPrimitive reports whether the element type is a self-contained
// primitive (no trailing token or nested type in the signature).
func (e ElementType) IsPrimitive() bool {
	switch e {
	case ElemBoolean, ElemChar, ElemI1, ElemU1, ElemI2, ElemU2,
		ElemI4, ElemU4, ElemI8, ElemU8, ElemR4, ElemR8,
		ElemString, ElemObject:
		return true
	}
	return false
}

func tableName(table byte) string {
	switch table {
	case TableTypeRef:
		return "TypeRef"
	case TableTypeDef:
		return "TypeDef"
	case TableField:
		return "Field"
	case TableMethodDef:
		return "MethodDef"
	case TableMemberRef:
		return "MemberRef"
	case TableCustomAttribute:
		return "CustomAttribute"
	default:
		return "unknown"
	}
}
