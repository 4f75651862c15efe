package metadata_test

import (
	"errors"
	"testing"

	"github.com/storyge/corert/metadata"
)

func buildTestImage() *metadata.Image {
	img := &metadata.Image{}

	attrRef := img.AddTypeRef("System", "ThreadStaticAttribute")
	img.AddMemberRef(attrRef, ".ctor")

	counter := img.AddTypeDef("Demo", "Counter")
	img.AddField(counter, "s_count", metadata.FieldStatic,
		metadata.FieldSig(metadata.PrimitiveSig(metadata.ElemI4)))
	img.AddField(counter, "m_name", 0,
		metadata.FieldSig(metadata.PrimitiveSig(metadata.ElemString)))

	widget := img.AddTypeDef("Demo", "Widget")
	img.AddField(widget, "s_shared", metadata.FieldStatic|metadata.FieldInitOnly,
		metadata.FieldSig(metadata.ClassSig(counter)))

	img.AddMethod(widget, "Reset")

	return img
}

func TestImageRoundTrip(t *testing.T) {
	img := buildTestImage()

	parsed, err := metadata.ParseImage(img.Encode())
	if err != nil {
		t.Fatalf("ParseImage: %v", err)
	}

	if len(parsed.TypeDefs) != 2 {
		t.Errorf("TypeDefs: got %d, want 2", len(parsed.TypeDefs))
	}
	if len(parsed.Fields) != 3 {
		t.Errorf("Fields: got %d, want 3", len(parsed.Fields))
	}
	if len(parsed.TypeRefs) != 1 {
		t.Errorf("TypeRefs: got %d, want 1", len(parsed.TypeRefs))
	}
	if len(parsed.MemberRefs) != 1 {
		t.Errorf("MemberRefs: got %d, want 1", len(parsed.MemberRefs))
	}
	if len(parsed.Methods) != 1 {
		t.Errorf("Methods: got %d, want 1", len(parsed.Methods))
	}

	counter := metadata.MakeHandle(metadata.TableTypeDef, 1)
	name, err := parsed.FullName(parsed.TypeDefs[0].Namespace, parsed.TypeDefs[0].Name)
	if err != nil {
		t.Fatalf("FullName: %v", err)
	}
	if name != "Demo.Counter" {
		t.Errorf("full name: got %q, want %q", name, "Demo.Counter")
	}

	fields, err := parsed.FieldHandles(counter)
	if err != nil {
		t.Fatalf("FieldHandles: %v", err)
	}
	if len(fields) != 2 {
		t.Fatalf("FieldHandles: got %d handles, want 2", len(fields))
	}

	row, err := parsed.ResolveField(fields[0])
	if err != nil {
		t.Fatalf("ResolveField: %v", err)
	}
	if row.Flags&metadata.FieldStatic == 0 {
		t.Error("s_count should be static")
	}
	fieldName, err := parsed.ResolveString(row.Name)
	if err != nil {
		t.Fatalf("ResolveString: %v", err)
	}
	if fieldName != "s_count" {
		t.Errorf("field name: got %q, want %q", fieldName, "s_count")
	}

	sig, err := parsed.ResolveBlob(row.Signature)
	if err != nil {
		t.Fatalf("ResolveBlob: %v", err)
	}
	want := metadata.FieldSig(metadata.PrimitiveSig(metadata.ElemI4))
	if len(sig) != len(want) || sig[0] != want[0] || sig[1] != want[1] {
		t.Errorf("signature blob: got % x, want % x", sig, want)
	}
}

func TestParseImageInvalidMagic(t *testing.T) {
	data := []byte{0x00, 0x01, 0x02, 0x03, 0x01, 0x00, 0x00, 0x00}
	_, err := metadata.ParseImage(data)
	if !errors.Is(err, metadata.ErrInvalidMagic) {
		t.Errorf("expected ErrInvalidMagic, got %v", err)
	}
}

func TestParseImageInvalidVersion(t *testing.T) {
	data := []byte{0x43, 0x44, 0x4D, 0x54, 0xFF, 0x00, 0x00, 0x00}
	_, err := metadata.ParseImage(data)
	if !errors.Is(err, metadata.ErrInvalidVersion) {
		t.Errorf("expected ErrInvalidVersion, got %v", err)
	}
}

func TestParseImageTruncatedHeader(t *testing.T) {
	_, err := metadata.ParseImage([]byte{0x43, 0x44})
	if err == nil {
		t.Error("expected error for truncated header")
	}
}

func TestParseImageEmpty(t *testing.T) {
	img := &metadata.Image{}
	parsed, err := metadata.ParseImage(img.Encode())
	if err != nil {
		t.Fatalf("ParseImage: %v", err)
	}
	if len(parsed.TypeDefs) != 0 || len(parsed.Fields) != 0 {
		t.Error("empty image should have no tables")
	}
}

func TestParseImageSectionOutOfOrder(t *testing.T) {
	img := buildTestImage()
	encoded := img.Encode()

	// Append an empty TypeRefs section after later sections.
	encoded = append(encoded, metadata.SectionTypeRefs, 0x01, 0x00)

	if _, err := metadata.ParseImage(encoded); err == nil {
		t.Error("expected error for out-of-order section")
	}
}

func TestParseImageDanglingFieldList(t *testing.T) {
	img := &metadata.Image{}
	td := img.AddTypeDef("Demo", "Broken")
	img.AddField(td, "f", 0, nil)
	img.TypeDefs[0].FieldCount = 9 // points past the Field table

	if _, err := metadata.ParseImage(img.Encode()); err == nil {
		t.Error("expected error for field range beyond Field table")
	}
}

func TestAddFieldNonContiguousPanics(t *testing.T) {
	img := &metadata.Image{}
	first := img.AddTypeDef("Demo", "First")
	img.AddField(first, "a", 0, nil)
	second := img.AddTypeDef("Demo", "Second")
	img.AddField(second, "b", 0, nil)

	defer func() {
		if recover() == nil {
			t.Error("expected panic for non-contiguous field rows")
		}
	}()
	img.AddField(first, "c", 0, nil)
}
