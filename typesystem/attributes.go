package typesystem

// Recognized custom attribute declaring-type names and the flag bits
// they grant. Scanning is driven by this table; unrecognized or
// unresolvable attributes contribute nothing.
var recognizedAttributes = map[string]uint32{
	"System.ThreadStaticAttribute": fieldFlagThreadStatic,
}

// scanCustomAttributes walks the annotation rows attached to this field
// and returns the recognized flag bits found. Cost is linear in the
// number of attached rows, each needing one constructor-to-declaring-
// type resolution, which is why callers cache the result.
func (f *FieldDescriptor) scanCustomAttributes() uint32 {
	img := f.owner.module.image

	var bits uint32
	for _, ca := range img.CustomAttributesFor(f.handle) {
		name, ok := f.owner.module.attributeCtorTypeName(ca.Ctor)
		if !ok {
			continue
		}
		bits |= recognizedAttributes[name]
	}
	return bits
}
