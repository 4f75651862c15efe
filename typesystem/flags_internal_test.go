package typesystem

import (
	"sync"
	"testing"

	"github.com/storyge/corert/metadata"
)

func newTestModule(t *testing.T) *Module {
	t.Helper()

	img := &metadata.Image{}
	tlsRef := img.AddTypeRef("System", "ThreadStaticAttribute")
	tlsCtor := img.AddMemberRef(tlsRef, ".ctor")
	otherRef := img.AddTypeRef("Demo", "UnrelatedAttribute")
	otherCtor := img.AddMemberRef(otherRef, ".ctor")

	td := img.AddTypeDef("Demo", "State")
	i4 := metadata.FieldSig(metadata.PrimitiveSig(metadata.ElemI4))

	static := img.AddField(td, "s_plain", metadata.FieldStatic, i4)
	tls := img.AddField(td, "t_slot", metadata.FieldStatic, i4)
	inst := img.AddField(td, "m_slot", 0, i4)
	decorated := img.AddField(td, "s_decorated", metadata.FieldStatic, i4)

	img.AddCustomAttribute(tls, tlsCtor)
	img.AddCustomAttribute(inst, tlsCtor)
	img.AddCustomAttribute(decorated, otherCtor)
	// Dangling ctor handle: must be skipped, not fail.
	img.AddCustomAttribute(static, metadata.MakeHandle(metadata.TableMemberRef, 99))

	mod, err := LoadModule(img.Encode())
	if err != nil {
		t.Fatalf("LoadModule: %v", err)
	}
	return mod
}

func testField(t *testing.T, mod *Module, name string) *FieldDescriptor {
	t.Helper()
	typ, err := mod.Type(metadata.MakeHandle(metadata.TableTypeDef, 1))
	if err != nil {
		t.Fatalf("Type: %v", err)
	}
	f := typ.FieldByName(name)
	if f == nil {
		t.Fatalf("field %q not found", name)
	}
	return f
}

func TestFlagCacheFastPath(t *testing.T) {
	var c flagCache
	computes := 0
	compute := func() uint32 {
		computes++
		return fieldFlagBasicComputed // all data bits false
	}

	mask := fieldFlagBasicComputed | fieldFlagStatic
	for i := 0; i < 3; i++ {
		got := c.get(mask, compute)
		if got&fieldFlagStatic != 0 {
			t.Fatalf("call %d: static bit should be false", i)
		}
		if got&fieldFlagBasicComputed == 0 {
			t.Fatalf("call %d: marker bit missing from result", i)
		}
	}
	if computes != 1 {
		t.Errorf("compute ran %d times, want 1: the marker bit must make an all-false group hit the fast path", computes)
	}
}

func TestFlagCacheMergeIsUnion(t *testing.T) {
	var c flagCache

	const n = 16
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		bit := uint32(1) << (i % 10)
		wg.Add(1)
		go func(b uint32) {
			defer wg.Done()
			c.merge(b)
		}(bit)
	}
	wg.Wait()

	if got := c.load(); got != 0x3FF {
		t.Errorf("merged bits = %#x, want 0x3ff", got)
	}
}

func TestGroupIsolation(t *testing.T) {
	mod := newTestModule(t)
	f := testField(t, mod, "s_plain")

	if !f.IsStatic() {
		t.Fatal("s_plain should be static")
	}

	bits := f.flags.load()
	if bits&fieldFlagBasicComputed == 0 {
		t.Error("basic marker should be set after IsStatic")
	}
	if bits&fieldFlagAttrComputed != 0 {
		t.Error("IsStatic alone must not compute the attribute-derived group")
	}
}

func TestThreadStaticShortCircuit(t *testing.T) {
	mod := newTestModule(t)
	f := testField(t, mod, "m_slot")

	if f.IsThreadStatic() {
		t.Error("instance field reported thread-static")
	}

	bits := f.flags.load()
	if bits&fieldFlagBasicComputed == 0 {
		t.Error("basic group should have been computed for the static check")
	}
	if bits&fieldFlagAttrComputed != 0 {
		t.Error("attribute group must never be computed for a non-static field")
	}
}

func TestUnrecognizedAttributeIgnored(t *testing.T) {
	mod := newTestModule(t)
	f := testField(t, mod, "s_decorated")

	if f.IsThreadStatic() {
		t.Error("unrelated attribute should not grant thread-static")
	}
	if f.flags.load()&fieldFlagAttrComputed == 0 {
		t.Error("attribute group should be marked computed even when empty")
	}
}

func TestDanglingAttributeCtorIgnored(t *testing.T) {
	mod := newTestModule(t)
	f := testField(t, mod, "s_plain")

	// The dangling MemberRef row must degrade to non-matching.
	if f.IsThreadStatic() {
		t.Error("dangling ctor should not grant thread-static")
	}
}

func TestMonotonicity(t *testing.T) {
	mod := newTestModule(t)
	f := testField(t, mod, "t_slot")

	var prev uint32
	calls := []func() bool{f.IsStatic, f.IsInitOnly, f.IsThreadStatic, f.IsLiteral, f.IsThreadStatic}
	for i, call := range calls {
		call()
		bits := f.flags.load()
		if bits&prev != prev {
			t.Fatalf("call %d lost bits: had %#x, now %#x", i, prev, bits)
		}
		prev = bits
	}
}

func TestConcurrentThreadStatic(t *testing.T) {
	mod := newTestModule(t)
	f := testField(t, mod, "t_slot")

	const n = 32
	results := make([]bool, n)
	var start, done sync.WaitGroup
	start.Add(1)
	for i := 0; i < n; i++ {
		done.Add(1)
		go func(i int) {
			defer done.Done()
			start.Wait()
			results[i] = f.IsThreadStatic()
		}(i)
	}
	start.Done()
	done.Wait()

	for i, r := range results {
		if !r {
			t.Fatalf("caller %d: IsThreadStatic = false, want true", i)
		}
	}

	bits := f.flags.load()
	want := fieldFlagBasicComputed | fieldFlagStatic | fieldFlagAttrComputed | fieldFlagThreadStatic
	if bits != want {
		t.Errorf("final bits = %#x, want %#x", bits, want)
	}
}

func TestMarkerAccompaniesDataBits(t *testing.T) {
	mod := newTestModule(t)

	// A static field with no attributes: the attribute group computes to
	// all-false data bits, and the marker alone must be published.
	f := testField(t, mod, "s_plain")
	if f.IsThreadStatic() {
		t.Fatal("s_plain should not be thread-static")
	}
	bits := f.flags.load()
	if bits&fieldFlagAttrComputed == 0 {
		t.Error("attribute marker must be set after a thread-static query on a static field")
	}
	if bits&fieldFlagThreadStatic != 0 {
		t.Error("thread-static data bit should be false")
	}

}

func TestNoRescanOnceComputed(t *testing.T) {
	mod := newTestModule(t)
	f := testField(t, mod, "t_slot")

	if !f.IsThreadStatic() {
		t.Fatal("t_slot should be thread-static")
	}

	// Dropping the attribute rows would change a rescan's answer; the
	// cached group must hold.
	mod.image.Attributes = nil
	if !f.IsThreadStatic() {
		t.Error("group was recomputed after its marker bit was published")
	}
}
