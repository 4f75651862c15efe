package typesystem

import (
	"sync"

	"go.uber.org/zap"

	"github.com/storyge/corert/metadata"
)

// TypeDescriptor represents one declared type. Descriptors are interned
// by their Module, so pointer equality implies handle equality.
type TypeDescriptor struct {
	module   *Module
	handle   metadata.Handle
	fullName string

	fieldsOnce sync.Once
	fields     []*FieldDescriptor
}

// Handle returns the TypeDef handle of this type.
func (t *TypeDescriptor) Handle() metadata.Handle {
	return t.handle
}

// Module returns the module that declared this type.
func (t *TypeDescriptor) Module() *Module {
	return t.module
}

// FullName returns the "Namespace.Name" of this type.
func (t *TypeDescriptor) FullName() string {
	return t.fullName
}

// String returns the type's full name.
func (t *TypeDescriptor) String() string {
	return t.fullName
}

// Fields returns descriptors for this type's declared fields, in table
// order. The slice is materialized on first call; the type owns every
// descriptor it returns.
func (t *TypeDescriptor) Fields() []*FieldDescriptor {
	t.fieldsOnce.Do(func() {
		handles, err := t.module.image.FieldHandles(t.handle)
		if err != nil {
			// The handle was validated when the descriptor was interned.
			Logger().Error("field enumeration failed", zap.Stringer("type", t.handle), zap.Error(err))
			return
		}
		t.fields = make([]*FieldDescriptor, len(handles))
		for i, h := range handles {
			t.fields[i] = &FieldDescriptor{owner: t, handle: h}
		}
	})
	return t.fields
}

// FieldByName returns the declared field with the given name, or nil.
func (t *TypeDescriptor) FieldByName(name string) *FieldDescriptor {
	for _, f := range t.Fields() {
		if n, err := f.Name(); err == nil && n == name {
			return f
		}
	}
	return nil
}
