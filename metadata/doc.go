// Package metadata provides binary metadata image parsing and encoding.
//
// An image is an ECMA-335-style record store: two heaps (strings, blobs)
// and a set of row tables (TypeDef, Field, MethodDef, TypeRef, MemberRef,
// CustomAttribute) describing declared types and their members. Rows are
// addressed through opaque handles that pack a table ID with a 1-based
// row index.
//
// # Parsing
//
// Parse a metadata image from binary:
//
//	data, _ := os.ReadFile("app.cdmt")
//	img, err := metadata.ParseImage(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// A parsed Image is immutable; all resolution methods are safe for
// unsynchronized concurrent use.
//
// # Building
//
// Construct an image programmatically and encode it:
//
//	img := &metadata.Image{}
//	td := img.AddTypeDef("Demo", "Counter")
//	img.AddField(td, "s_count", metadata.FieldStatic,
//	    metadata.FieldSig(metadata.PrimitiveSig(metadata.ElemI4)))
//	encoded := img.Encode()
//
// Round-trip encoding preserves image semantics:
//
//	parsed, _ := metadata.ParseImage(img.Encode())
//
// # Resolution
//
// Handles resolve through the Image:
//
//	row, err := img.ResolveField(h)
//	name, err := img.ResolveString(row.Name)
//	blob, err := img.ResolveBlob(row.Signature)
//
// Resolution never mutates the image; invalid handles yield structured
// errors from the errors package.
package metadata
