package metadata

import (
	"bytes"
	"fmt"

	"github.com/storyge/corert/errors"
	"github.com/storyge/corert/metadata/internal/binary"
)

// maxSigDepth bounds type nesting in signature blobs so malformed input
// cannot recurse unboundedly.
const maxSigDepth = 64

// TypeSig describes a type encoding for building field signature blobs.
// Exactly one of the shapes applies: a primitive element, a token-bearing
// element (class/valuetype), or an element wrapping an inner type
// (szarray/ptr).
type TypeSig struct {
	Inner *TypeSig
	Token Handle
	Elem  ElementType
}

// PrimitiveSig returns the signature of a primitive element type.
func PrimitiveSig(e ElementType) TypeSig {
	return TypeSig{Elem: e}
}

// ClassSig returns the signature of a reference type given its
// TypeDef or TypeRef handle.
func ClassSig(h Handle) TypeSig {
	return TypeSig{Elem: ElemClass, Token: h}
}

// ValueTypeSig returns the signature of a value type given its
// TypeDef or TypeRef handle.
func ValueTypeSig(h Handle) TypeSig {
	return TypeSig{Elem: ElemValueType, Token: h}
}

// SZArraySig returns the signature of a single-dimension array of inner.
func SZArraySig(inner TypeSig) TypeSig {
	return TypeSig{Elem: ElemSZArray, Inner: &inner}
}

// PointerSig returns the signature of an unmanaged pointer to inner.
func PointerSig(inner TypeSig) TypeSig {
	return TypeSig{Elem: ElemPtr, Inner: &inner}
}

// FieldSig encodes a field signature blob for the given type.
func FieldSig(t TypeSig) []byte {
	w := binary.NewWriter()
	w.Byte(SigField)
	writeTypeSig(w, t)
	return w.Bytes()
}

func writeTypeSig(w *binary.Writer, t TypeSig) {
	w.Byte(byte(t.Elem))
	switch t.Elem {
	case ElemClass, ElemValueType:
		w.WriteCompressed(EncodeTypeToken(t.Token))
	case ElemSZArray, ElemPtr:
		writeTypeSig(w, *t.Inner)
	}
}

// DecodeFieldSig decodes a field signature blob into its TypeSig.
// Custom modifiers are validated and skipped. Malformed input yields a
// signature-phase error; trailing bytes after the encoded type are
// tolerated.
func DecodeFieldSig(blob []byte) (TypeSig, error) {
	r := binary.NewReader(bytes.NewReader(blob))

	cc, err := r.ReadByte()
	if err != nil {
		return TypeSig{}, errors.MalformedBlob(errors.PhaseSignature, "empty signature", err)
	}
	if cc != SigField {
		return TypeSig{}, errors.New(errors.PhaseSignature, errors.KindInvalidData).
			Detail("calling convention %#02x is not FIELD", cc).
			Build()
	}
	return readTypeSig(r, 0)
}

func readTypeSig(r *binary.Reader, depth int) (TypeSig, error) {
	if depth > maxSigDepth {
		return TypeSig{}, errors.MalformedBlob(errors.PhaseSignature, "type nesting too deep", nil)
	}

	b, err := r.ReadByte()
	if err != nil {
		return TypeSig{}, errors.MalformedBlob(errors.PhaseSignature, "truncated element type", err)
	}
	e := ElementType(b)

	// Skip custom modifiers preceding the actual type.
	for e == ElemCModReqd || e == ElemCModOpt {
		coded, err := r.ReadCompressed()
		if err != nil {
			return TypeSig{}, errors.MalformedBlob(errors.PhaseSignature, "truncated custom modifier", err)
		}
		if _, err := DecodeTypeToken(coded); err != nil {
			return TypeSig{}, err
		}
		b, err = r.ReadByte()
		if err != nil {
			return TypeSig{}, errors.MalformedBlob(errors.PhaseSignature, "truncated element type", err)
		}
		e = ElementType(b)
	}

	switch {
	case e.IsPrimitive():
		return TypeSig{Elem: e}, nil
	case e == ElemClass || e == ElemValueType:
		coded, err := r.ReadCompressed()
		if err != nil {
			return TypeSig{}, errors.MalformedBlob(errors.PhaseSignature, "truncated type token", err)
		}
		h, err := DecodeTypeToken(coded)
		if err != nil {
			return TypeSig{}, err
		}
		return TypeSig{Elem: e, Token: h}, nil
	case e == ElemSZArray || e == ElemPtr:
		inner, err := readTypeSig(r, depth+1)
		if err != nil {
			return TypeSig{}, err
		}
		return TypeSig{Elem: e, Inner: &inner}, nil
	default:
		return TypeSig{}, errors.New(errors.PhaseSignature, errors.KindUnsupported).
			Detail("element type %#02x in field signature", b).
			Value(b).
			Build()
	}
}

// TypeDefOrRef coded index tags (ECMA-335 II.24.2.6).
const (
	typeTokenTagTypeDef = 0
	typeTokenTagTypeRef = 1
)

// EncodeTypeToken encodes a TypeDef or TypeRef handle as a
// TypeDefOrRef coded index. Other tables panic; signatures cannot
// reference them.
func EncodeTypeToken(h Handle) uint32 {
	switch h.TableID() {
	case TableTypeDef:
		return h.Row()<<2 | typeTokenTagTypeDef
	case TableTypeRef:
		return h.Row()<<2 | typeTokenTagTypeRef
	default:
		panic(fmt.Sprintf("metadata: handle %s cannot appear in a signature", h))
	}
}

// DecodeTypeToken decodes a TypeDefOrRef coded index into a handle.
func DecodeTypeToken(coded uint32) (Handle, error) {
	row := coded >> 2
	if row == 0 {
		return 0, errors.New(errors.PhaseSignature, errors.KindInvalidData).
			Detail("type token with zero row").
			Build()
	}
	switch coded & 0x3 {
	case typeTokenTagTypeDef:
		return MakeHandle(TableTypeDef, row), nil
	case typeTokenTagTypeRef:
		return MakeHandle(TableTypeRef, row), nil
	default:
		return 0, errors.New(errors.PhaseSignature, errors.KindInvalidData).
			Detail("unsupported type token tag %d", coded&0x3).
			Build()
	}
}
