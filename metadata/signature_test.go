package metadata_test

import (
	"testing"

	"github.com/storyge/corert/metadata"
)

func TestDecodeFieldSigRoundTrip(t *testing.T) {
	typeDef := metadata.MakeHandle(metadata.TableTypeDef, 4)

	sigs := []metadata.TypeSig{
		metadata.PrimitiveSig(metadata.ElemBoolean),
		metadata.PrimitiveSig(metadata.ElemR8),
		metadata.ClassSig(typeDef),
		metadata.ValueTypeSig(metadata.MakeHandle(metadata.TableTypeRef, 2)),
		metadata.SZArraySig(metadata.ClassSig(typeDef)),
		metadata.PointerSig(metadata.SZArraySig(metadata.PrimitiveSig(metadata.ElemI4))),
	}

	for _, sig := range sigs {
		got, err := metadata.DecodeFieldSig(metadata.FieldSig(sig))
		if err != nil {
			t.Fatalf("DecodeFieldSig(% x): %v", metadata.FieldSig(sig), err)
		}
		if !typeSigEqual(got, sig) {
			t.Errorf("round trip mismatch: got %+v, want %+v", got, sig)
		}
	}
}

func typeSigEqual(a, b metadata.TypeSig) bool {
	if a.Elem != b.Elem || a.Token != b.Token {
		return false
	}
	if (a.Inner == nil) != (b.Inner == nil) {
		return false
	}
	if a.Inner != nil {
		return typeSigEqual(*a.Inner, *b.Inner)
	}
	return true
}

func TestDecodeFieldSigSkipsCustomModifiers(t *testing.T) {
	// FIELD, cmod opt (TypeRef[1]), cmod reqd (TypeDef[1]), int32
	blob := []byte{0x06, 0x20, 0x05, 0x1F, 0x04, 0x08}
	got, err := metadata.DecodeFieldSig(blob)
	if err != nil {
		t.Fatalf("DecodeFieldSig: %v", err)
	}
	if got.Elem != metadata.ElemI4 {
		t.Errorf("Elem = %v, want int32", got.Elem)
	}
}

func TestDecodeFieldSigMalformed(t *testing.T) {
	tests := []struct {
		name string
		blob []byte
	}{
		{"empty", nil},
		{"wrong callconv", []byte{0x07, 0x08}},
		{"truncated after callconv", []byte{0x06}},
		{"truncated token", []byte{0x06, 0x12}},
		{"zero-row token", []byte{0x06, 0x12, 0x00}},
		{"unsupported element", []byte{0x06, 0x15}},
		{"truncated szarray", []byte{0x06, 0x1D}},
		{"truncated modifier", []byte{0x06, 0x1F}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := metadata.DecodeFieldSig(tt.blob); err == nil {
				t.Errorf("expected error for % x", tt.blob)
			}
		})
	}
}

func TestDecodeFieldSigDepthLimit(t *testing.T) {
	blob := []byte{0x06}
	for i := 0; i < 200; i++ {
		blob = append(blob, byte(metadata.ElemSZArray))
	}
	blob = append(blob, byte(metadata.ElemI4))

	if _, err := metadata.DecodeFieldSig(blob); err == nil {
		t.Error("expected error for excessive nesting")
	}
}
