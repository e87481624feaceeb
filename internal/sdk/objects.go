package sdk

import (
	"github.com/itsethra/uesdk/internal/offsets"
	"github.com/itsethra/uesdk/internal/rproc"
)

// ObjectTable is the flattened, order-preserving view over the
// target's chunked object array (spec.md §4.4, component C4). Torn-
// down slots (a null object pointer) are dropped; everything else
// keeps its original array order, since package assignment and
// dependency-graph construction both rely on stable iteration order
// for deterministic output.
type ObjectTable struct {
	addrs []rproc.Address
}

// chunkElements is the fixed element count of one GUObjectArray chunk.
const chunkElements = 64 * 1024

// itemSize is sizeof(FUObjectItem) on every target this module
// supports: an 8-byte object pointer plus 16 bytes of flags/cluster/
// serial-number bookkeeping the core never reads.
const itemSize = 0x18

// Layout of the chunked array header itself (FChunkedFixedUObjectArray).
// Like the name pool header, these are stable runtime bookkeeping, not
// per-target reflection data, so they aren't part of offsets.Config.
const (
	objectTableChunksOff      = 0x00 // pointer to the []*chunk array
	objectTableNumElementsOff = 0x0c // int32
	objectTableNumChunksOff   = 0x14 // int32
)

// ReadObjectTable reconstructs the table at base.
func ReadObjectTable(r rproc.MemoryReader, base rproc.Address, item offsets.FUObjectItem) (*ObjectTable, error) {
	numElements, err := rproc.ReadInt32(r, base.Add(objectTableNumElementsOff))
	if err != nil {
		return nil, err
	}
	numChunks, err := rproc.ReadInt32(r, base.Add(objectTableNumChunksOff))
	if err != nil {
		return nil, err
	}
	chunksPtr, err := rproc.ReadAddress(r, base.Add(objectTableChunksOff))
	if err != nil {
		return nil, err
	}

	t := &ObjectTable{addrs: make([]rproc.Address, 0, numElements)}
	remaining := int64(numElements)

	for c := int32(0); c < numChunks; c++ {
		chunkPtr, err := rproc.ReadAddress(r, chunksPtr.Add(int64(c)*offsets.PtrWidth))
		if err != nil {
			return nil, err
		}
		inChunk := int64(chunkElements)
		if remaining < inChunk {
			inChunk = remaining
		}
		for e := int64(0); e < inChunk; e++ {
			itemAddr := chunkPtr.Add(e*itemSize + int64(item.Object))
			objPtr, err := rproc.ReadAddress(r, itemAddr)
			if err != nil {
				return nil, err
			}
			if objPtr != 0 {
				t.addrs = append(t.addrs, objPtr)
			}
		}
		remaining -= inChunk
	}
	return t, nil
}

// Addrs returns every live object address, in array order.
func (t *ObjectTable) Addrs() []rproc.Address { return t.addrs }

// Len reports how many live objects the table holds.
func (t *ObjectTable) Len() int { return len(t.addrs) }
