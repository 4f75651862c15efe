package metadata

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"

	"github.com/storyge/corert/errors"
	"github.com/storyge/corert/metadata/internal/binary"
)

// Parsing errors returned by ParseImage.
var (
	ErrInvalidMagic   = stderrors.New("invalid metadata magic number")
	ErrInvalidVersion = stderrors.New("invalid metadata format version")
)

// ParseImage parses a binary metadata image.
func ParseImage(data []byte) (*Image, error) {
	r := binary.NewReader(bytes.NewReader(data))

	// Check magic number
	magic, err := r.ReadU32LE()
	if err != nil {
		return nil, r.WrapError("header", err)
	}
	if magic != Magic {
		return nil, ErrInvalidMagic
	}

	// Check version
	version, err := r.ReadU32LE()
	if err != nil {
		return nil, r.WrapError("header", err)
	}
	if version != Version {
		return nil, ErrInvalidVersion
	}

	m := &Image{}

	// Parse sections, which must appear in increasing ID order
	var lastSectionID byte
	for {
		sectionID, err := r.ReadByte()
		if err != nil {
			if stderrors.Is(err, io.EOF) {
				break
			}
			return nil, r.WrapError("section header", err)
		}

		if sectionID <= lastSectionID {
			return nil, fmt.Errorf("section %d appears out of order", sectionID)
		}
		lastSectionID = sectionID

		sectionSize, err := r.ReadCompressed()
		if err != nil {
			return nil, r.WrapError("section size", err)
		}

		sectionData, err := r.ReadBytes(int(sectionSize))
		if err != nil {
			return nil, r.WrapError("section data", err)
		}

		sr := binary.NewReader(bytes.NewReader(sectionData))

		switch sectionID {
		case SectionStrings:
			m.StringHeap = sectionData
		case SectionBlobs:
			m.BlobHeap = sectionData
		case SectionTypeRefs:
			if err := parseTypeRefSection(sr, m); err != nil {
				return nil, fmt.Errorf("typeref section: %w", err)
			}
		case SectionTypeDefs:
			if err := parseTypeDefSection(sr, m); err != nil {
				return nil, fmt.Errorf("typedef section: %w", err)
			}
		case SectionFields:
			if err := parseFieldSection(sr, m); err != nil {
				return nil, fmt.Errorf("field section: %w", err)
			}
		case SectionMethods:
			if err := parseMethodSection(sr, m); err != nil {
				return nil, fmt.Errorf("method section: %w", err)
			}
		case SectionMemberRefs:
			if err := parseMemberRefSection(sr, m); err != nil {
				return nil, fmt.Errorf("memberref section: %w", err)
			}
		case SectionCustomAttributes:
			if err := parseCustomAttributeSection(sr, m); err != nil {
				return nil, fmt.Errorf("customattribute section: %w", err)
			}
		default:
			return nil, fmt.Errorf("unknown section ID %d", sectionID)
		}
	}

	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func parseTypeRefSection(r *binary.Reader, m *Image) error {
	count, err := r.ReadCompressed()
	if err != nil {
		return err
	}
	m.TypeRefs = make([]TypeRefRow, count)
	for i := range m.TypeRefs {
		name, err := r.ReadCompressed()
		if err != nil {
			return err
		}
		namespace, err := r.ReadCompressed()
		if err != nil {
			return err
		}
		m.TypeRefs[i] = TypeRefRow{Name: StringHandle(name), Namespace: StringHandle(namespace)}
	}
	return nil
}

func parseTypeDefSection(r *binary.Reader, m *Image) error {
	count, err := r.ReadCompressed()
	if err != nil {
		return err
	}
	m.TypeDefs = make([]TypeDefRow, count)
	for i := range m.TypeDefs {
		name, err := r.ReadCompressed()
		if err != nil {
			return err
		}
		namespace, err := r.ReadCompressed()
		if err != nil {
			return err
		}
		fieldList, err := r.ReadCompressed()
		if err != nil {
			return err
		}
		fieldCount, err := r.ReadCompressed()
		if err != nil {
			return err
		}
		m.TypeDefs[i] = TypeDefRow{
			Name:       StringHandle(name),
			Namespace:  StringHandle(namespace),
			FieldList:  fieldList,
			FieldCount: fieldCount,
		}
	}
	return nil
}

func parseFieldSection(r *binary.Reader, m *Image) error {
	count, err := r.ReadCompressed()
	if err != nil {
		return err
	}
	m.Fields = make([]FieldRow, count)
	for i := range m.Fields {
		flags, err := r.ReadU16LE()
		if err != nil {
			return err
		}
		name, err := r.ReadCompressed()
		if err != nil {
			return err
		}
		sig, err := r.ReadCompressed()
		if err != nil {
			return err
		}
		m.Fields[i] = FieldRow{
			Flags:     FieldAttributes(flags),
			Name:      StringHandle(name),
			Signature: BlobHandle(sig),
		}
	}
	return nil
}

func parseMethodSection(r *binary.Reader, m *Image) error {
	count, err := r.ReadCompressed()
	if err != nil {
		return err
	}
	m.Methods = make([]MethodDefRow, count)
	for i := range m.Methods {
		name, err := r.ReadCompressed()
		if err != nil {
			return err
		}
		declaring, err := r.ReadCompressed()
		if err != nil {
			return err
		}
		m.Methods[i] = MethodDefRow{
			Name:          StringHandle(name),
			DeclaringType: Handle(declaring),
		}
	}
	return nil
}

func parseMemberRefSection(r *binary.Reader, m *Image) error {
	count, err := r.ReadCompressed()
	if err != nil {
		return err
	}
	m.MemberRefs = make([]MemberRefRow, count)
	for i := range m.MemberRefs {
		name, err := r.ReadCompressed()
		if err != nil {
			return err
		}
		class, err := r.ReadCompressed()
		if err != nil {
			return err
		}
		m.MemberRefs[i] = MemberRefRow{
			Name:  StringHandle(name),
			Class: Handle(class),
		}
	}
	return nil
}

func parseCustomAttributeSection(r *binary.Reader, m *Image) error {
	count, err := r.ReadCompressed()
	if err != nil {
		return err
	}
	m.Attributes = make([]CustomAttributeRow, count)
	for i := range m.Attributes {
		parent, err := r.ReadCompressed()
		if err != nil {
			return err
		}
		ctor, err := r.ReadCompressed()
		if err != nil {
			return err
		}
		m.Attributes[i] = CustomAttributeRow{
			Parent: Handle(parent),
			Ctor:   Handle(ctor),
		}
	}
	return nil
}

// validate checks cross-table references after all sections are parsed.
func (m *Image) validate() error {
	for i, td := range m.TypeDefs {
		if td.FieldCount == 0 {
			continue
		}
		if td.FieldList == 0 || int(td.FieldList+td.FieldCount-1) > len(m.Fields) {
			return errors.New(errors.PhaseParse, errors.KindOutOfBounds).
				Table("TypeDef").
				Detail("type row %d declares fields [%d, %d) beyond Field table size %d",
					i+1, td.FieldList, td.FieldList+td.FieldCount, len(m.Fields)).
				Build()
		}
	}
	for i, md := range m.Methods {
		if md.DeclaringType.TableID() != TableTypeDef || int(md.DeclaringType.Row()) > len(m.TypeDefs) {
			return errors.New(errors.PhaseParse, errors.KindInvalidHandle).
				Table("MethodDef").
				Handle(uint32(md.DeclaringType)).
				Detail("method row %d has invalid declaring type", i+1).
				Build()
		}
	}
	return nil
}
