// Package corert provides a Go reader and type system for ECMA-335-style
// binary metadata images.
//
// The library parses a compact metadata image format (heaps plus row
// tables describing types, fields, methods and custom attributes) and
// exposes a descriptor surface over it, with lock-free lazy caching of
// derived field attributes.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	corert/              Root package documentation
//	├── metadata/        Binary image parsing, encoding and handle resolution
//	├── typesystem/      Module, type and field descriptors with lazy caches
//	├── errors/          Structured error types for debugging
//	└── cmd/inspect/     CLI and TUI for browsing metadata images
//
// # Quick Start
//
// Load an image and query a field:
//
//	data, _ := os.ReadFile("app.cdmt")
//	mod, err := typesystem.LoadModule(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	t, _ := mod.TypeByName("Demo.Counter")
//	f := t.FieldByName("s_count")
//	fmt.Println(f, f.IsStatic(), f.IsThreadStatic())
//
// # Thread Safety
//
// Parsed images and every descriptor derived from them are safe for
// unsynchronized concurrent reads. Derived field attributes are cached
// in a monotone atomic bitset published with compare-and-swap unions;
// no accessor ever blocks.
//
// # Cache Model
//
// The flag cache only ever gains bits, never loses them. Once a flag
// group's marker bit is visible to any reader, that group's data bits
// are final. Redundant recomputation by racing first readers is
// possible and harmless; results are pure functions of the immutable
// image.
package corert
