package metadata

import (
	"github.com/storyge/corert/metadata/internal/binary"
)

// Encode encodes the image to its binary format. The result round-trips
// through ParseImage.
func (m *Image) Encode() []byte {
	w := binary.NewWriter()

	// Magic number and version
	w.WriteU32LE(Magic)
	w.WriteU32LE(Version)

	if len(m.StringHeap) > 0 {
		writeSection(w, SectionStrings, m.StringHeap)
	}

	if len(m.BlobHeap) > 0 {
		writeSection(w, SectionBlobs, m.BlobHeap)
	}

	if len(m.TypeRefs) > 0 {
		sec := binary.NewWriter()
		sec.WriteCompressed(uint32(len(m.TypeRefs)))
		for _, tr := range m.TypeRefs {
			sec.WriteCompressed(uint32(tr.Name))
			sec.WriteCompressed(uint32(tr.Namespace))
		}
		writeSection(w, SectionTypeRefs, sec.Bytes())
	}

	if len(m.TypeDefs) > 0 {
		sec := binary.NewWriter()
		sec.WriteCompressed(uint32(len(m.TypeDefs)))
		for _, td := range m.TypeDefs {
			sec.WriteCompressed(uint32(td.Name))
			sec.WriteCompressed(uint32(td.Namespace))
			sec.WriteCompressed(td.FieldList)
			sec.WriteCompressed(td.FieldCount)
		}
		writeSection(w, SectionTypeDefs, sec.Bytes())
	}

	if len(m.Fields) > 0 {
		sec := binary.NewWriter()
		sec.WriteCompressed(uint32(len(m.Fields)))
		for _, f := range m.Fields {
			sec.WriteU16LE(uint16(f.Flags))
			sec.WriteCompressed(uint32(f.Name))
			sec.WriteCompressed(uint32(f.Signature))
		}
		writeSection(w, SectionFields, sec.Bytes())
	}

	if len(m.Methods) > 0 {
		sec := binary.NewWriter()
		sec.WriteCompressed(uint32(len(m.Methods)))
		for _, md := range m.Methods {
			sec.WriteCompressed(uint32(md.Name))
			sec.WriteCompressed(uint32(md.DeclaringType))
		}
		writeSection(w, SectionMethods, sec.Bytes())
	}

	if len(m.MemberRefs) > 0 {
		sec := binary.NewWriter()
		sec.WriteCompressed(uint32(len(m.MemberRefs)))
		for _, mr := range m.MemberRefs {
			sec.WriteCompressed(uint32(mr.Name))
			sec.WriteCompressed(uint32(mr.Class))
		}
		writeSection(w, SectionMemberRefs, sec.Bytes())
	}

	if len(m.Attributes) > 0 {
		sec := binary.NewWriter()
		sec.WriteCompressed(uint32(len(m.Attributes)))
		for _, ca := range m.Attributes {
			sec.WriteCompressed(uint32(ca.Parent))
			sec.WriteCompressed(uint32(ca.Ctor))
		}
		writeSection(w, SectionCustomAttributes, sec.Bytes())
	}

	return w.Bytes()
}

func writeSection(w *binary.Writer, id byte, data []byte) {
	w.Byte(id)
	w.WriteCompressed(uint32(len(data)))
	w.WriteBytes(data)
}
