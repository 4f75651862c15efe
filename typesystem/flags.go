package typesystem

import "sync/atomic"

// Field flag bits, partitioned into groups. Each group pairs one marker
// bit with the data bits it guards; the marker is set iff the group has
// been computed, so a zero query result is never ambiguous between
// "not yet computed" and "computed to all-false".
const (
	// Basic group, derived from the raw attribute bitmask in one read.
	fieldFlagBasicComputed uint32 = 0x0001 // marker
	fieldFlagStatic        uint32 = 0x0002
	fieldFlagInitOnly      uint32 = 0x0004
	fieldFlagLiteral       uint32 = 0x0008

	// Attribute-derived group, requires scanning custom attribute rows.
	fieldFlagAttrComputed uint32 = 0x0100 // marker
	fieldFlagThreadStatic uint32 = 0x0200

	fieldFlagBasicMask = fieldFlagBasicComputed | fieldFlagStatic | fieldFlagInitOnly | fieldFlagLiteral
	fieldFlagAttrMask  = fieldFlagAttrComputed | fieldFlagThreadStatic
)

// flagCache is a monotone, lock-free bit cache. Bits are only ever set,
// never cleared; a group's marker and data bits are published together
// in one atomic union, so no group is ever partially visible.
type flagCache struct {
	bits atomic.Uint32
}

// get returns the requested bits, computing them on first access.
// The mask must include the marker bit of every group it touches.
// compute must return whole groups, marker bits included even when all
// data bits are false. Racing callers may compute redundantly; the
// result is a pure function of immutable input, so the CAS union below
// makes redundancy wasted work rather than a hazard.
func (c *flagCache) get(mask uint32, compute func() uint32) uint32 {
	if bits := c.bits.Load() & mask; bits != 0 {
		return bits
	}
	newBits := compute()
	c.merge(newBits)
	return newBits & mask
}

// merge publishes newBits into the shared word with a compare-and-swap
// retry loop. The loop terminates: each failed swap means another
// writer succeeded, and the set of distinct contributions is finite.
func (c *flagCache) merge(newBits uint32) {
	for {
		old := c.bits.Load()
		if c.bits.CompareAndSwap(old, old|newBits) {
			return
		}
	}
}

// load returns the currently published bits without computing anything.
func (c *flagCache) load() uint32 {
	return c.bits.Load()
}
