package typesystem

import (
	"sync"

	"go.uber.org/zap"

	"github.com/storyge/corert/errors"
	"github.com/storyge/corert/metadata"
)

// Module is the type-system view over one parsed metadata image. It
// interns TypeDescriptors per handle and owns the lifetime of every
// descriptor it hands out: types own their fields, the module owns its
// types, and nothing is ever destroyed before the module is.
type Module struct {
	image *metadata.Image

	mu    sync.RWMutex
	types map[metadata.Handle]*TypeDescriptor
}

// NewModule creates a Module over a parsed image. The image must not be
// mutated afterwards.
func NewModule(img *metadata.Image) *Module {
	return &Module{
		image: img,
		types: make(map[metadata.Handle]*TypeDescriptor),
	}
}

// LoadModule parses a binary metadata image and wraps it in a Module.
func LoadModule(data []byte) (*Module, error) {
	img, err := metadata.ParseImage(data)
	if err != nil {
		return nil, err
	}
	return NewModule(img), nil
}

// Image returns the underlying metadata image.
func (m *Module) Image() *metadata.Image {
	return m.image
}

// Type returns the interned TypeDescriptor for a TypeDef handle.
// Concurrent callers for the same handle receive the same descriptor.
func (m *Module) Type(h metadata.Handle) (*TypeDescriptor, error) {
	m.mu.RLock()
	t, ok := m.types[h]
	m.mu.RUnlock()
	if ok {
		return t, nil
	}

	row, err := m.image.ResolveTypeDef(h)
	if err != nil {
		return nil, err
	}
	fullName, err := m.image.FullName(row.Namespace, row.Name)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.types[h]; ok {
		return t, nil
	}
	t = &TypeDescriptor{module: m, handle: h, fullName: fullName}
	m.types[h] = t
	return t, nil
}

// Types returns descriptors for every TypeDef in the image, in row order.
func (m *Module) Types() ([]*TypeDescriptor, error) {
	out := make([]*TypeDescriptor, 0, len(m.image.TypeDefs))
	for row := uint32(1); row <= uint32(len(m.image.TypeDefs)); row++ {
		t, err := m.Type(metadata.MakeHandle(metadata.TableTypeDef, row))
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// TypeByName returns the TypeDef whose full name matches exactly.
func (m *Module) TypeByName(fullName string) (*TypeDescriptor, error) {
	for row := uint32(1); row <= uint32(len(m.image.TypeDefs)); row++ {
		t, err := m.Type(metadata.MakeHandle(metadata.TableTypeDef, row))
		if err != nil {
			return nil, err
		}
		if t.FullName() == fullName {
			return t, nil
		}
	}
	return nil, errors.NotFound(errors.PhaseResolve, "TypeDef", "type "+fullName)
}

// attributeCtorTypeName resolves a custom-attribute constructor handle
// to the full name of its declaring type. Handles that do not resolve
// report ok=false rather than an error; the attribute scanner treats
// them as non-matching.
func (m *Module) attributeCtorTypeName(ctor metadata.Handle) (string, bool) {
	switch ctor.TableID() {
	case metadata.TableMethodDef:
		method, err := m.image.ResolveMethod(ctor)
		if err != nil {
			Logger().Debug("unresolvable attribute ctor", zap.Stringer("ctor", ctor), zap.Error(err))
			return "", false
		}
		td, err := m.image.ResolveTypeDef(method.DeclaringType)
		if err != nil {
			return "", false
		}
		name, err := m.image.FullName(td.Namespace, td.Name)
		if err != nil {
			return "", false
		}
		return name, true
	case metadata.TableMemberRef:
		member, err := m.image.ResolveMemberRef(ctor)
		if err != nil {
			Logger().Debug("unresolvable attribute ctor", zap.Stringer("ctor", ctor), zap.Error(err))
			return "", false
		}
		tr, err := m.image.ResolveTypeRef(member.Class)
		if err != nil {
			return "", false
		}
		name, err := m.image.FullName(tr.Namespace, tr.Name)
		if err != nil {
			return "", false
		}
		return name, true
	default:
		return "", false
	}
}

// ResolveFieldSignature decodes a field signature blob against this
// module, yielding a value-comparable TypeRef. Decoding is pure and
// deterministic; malformed blobs fail with a signature-phase error.
func (m *Module) ResolveFieldSignature(blob []byte) (TypeRef, error) {
	sig, err := metadata.DecodeFieldSig(blob)
	if err != nil {
		return TypeRef{}, err
	}
	return m.resolveTypeSig(sig)
}

func (m *Module) resolveTypeSig(sig metadata.TypeSig) (TypeRef, error) {
	switch sig.Elem {
	case metadata.ElemClass, metadata.ElemValueType:
		name, err := m.typeTokenFullName(sig.Token)
		if err != nil {
			return TypeRef{}, err
		}
		return TypeRef{Kind: sig.Elem, FullName: name}, nil
	case metadata.ElemSZArray, metadata.ElemPtr:
		elem, err := m.resolveTypeSig(*sig.Inner)
		if err != nil {
			return TypeRef{}, err
		}
		return TypeRef{Kind: sig.Elem, Elem: &elem}, nil
	default:
		return TypeRef{Kind: sig.Elem}, nil
	}
}

func (m *Module) typeTokenFullName(h metadata.Handle) (string, error) {
	switch h.TableID() {
	case metadata.TableTypeDef:
		row, err := m.image.ResolveTypeDef(h)
		if err != nil {
			return "", err
		}
		return m.image.FullName(row.Namespace, row.Name)
	case metadata.TableTypeRef:
		row, err := m.image.ResolveTypeRef(h)
		if err != nil {
			return "", err
		}
		return m.image.FullName(row.Namespace, row.Name)
	default:
		return "", errors.InvalidHandle(errors.PhaseSignature, "TypeDefOrRef", uint32(h))
	}
}
