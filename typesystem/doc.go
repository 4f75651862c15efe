// Package typesystem exposes a typed descriptor surface over parsed
// metadata images.
//
// A Module wraps one immutable metadata.Image and interns
// TypeDescriptors; each TypeDescriptor owns the FieldDescriptors of its
// declared fields. Descriptors live exactly as long as their module.
//
// # Field descriptors
//
// FieldDescriptor answers structural questions about one field:
//
//	mod, _ := typesystem.LoadModule(data)
//	t, _ := mod.TypeByName("Demo.Counter")
//	f := t.FieldByName("s_count")
//
//	f.IsStatic()       // from the raw attribute bitmask
//	f.IsThreadStatic() // from custom attribute scanning
//	f.FieldType()      // from the signature blob
//
// # Lazy flag caching
//
// Boolean attributes are cached in a single atomic word, partitioned
// into flag groups: a cheap group decoded from the attribute bitmask
// (static, init-only, literal) and an expensive group derived from
// custom attribute scanning (thread-static). Each group carries a
// marker bit published together with its data bits in one atomic
// union, so readers never lock and never see a partial group. Racing
// first accesses may compute a group redundantly; the computation is a
// pure function of the immutable image, and the compare-and-swap union
// publish makes the redundancy harmless.
//
// IsThreadStatic short-circuits on non-static fields: thread-local
// storage is a static-field concept, and the short circuit keeps the
// expensive attribute scan off fields that can never qualify.
//
// Name, Attributes and HasRVA deliberately bypass the cache; they are
// single fixed-cost reads against the image.
package typesystem
