package sdk

import (
	"unicode/utf16"

	"github.com/pkg/errors"

	"github.com/itsethra/uesdk/internal/offsets"
	"github.com/itsethra/uesdk/internal/rproc"
)

// NamePool is the interned-string store reconstructed from the
// target's paged name table (spec.md §4.3, component C3). It is
// populated once at pass start and is read-only afterward.
type NamePool struct {
	entries map[uint32]string
}

// nameEntryHeader is the 2-byte header preceding every name pool
// entry's payload: one bit for width (ANSI vs. wide), the rest for
// the character length.
type nameEntryHeader uint16

func (h nameEntryHeader) wide() bool    { return h&1 != 0 }
func (h nameEntryHeader) length() int64 { return int64(h >> 1) }

// Layout constants for the block header that precedes the block
// pointer array at pool_base. These describe the runtime's internal
// FNamePool bookkeeping, which - unlike the reflection offsets in
// offsets.Config - is stable across the targets this module supports
// and so isn't surfaced for override (spec.md §4.3: "implementation-
// dependent header").
const (
	poolCurrentBlockOff = 0x00 // int32: index of the last valid block
	poolCurrentByteOff  = 0x04 // int32: valid byte cursor within that block
	poolBlocksOff       = 0x08 // start of the []*byte block pointer array
)

// ReadNamePool reconstructs the pool at base, given the pool's
// fixed entry alignment stride (1 for ANSI-only, 2 for wide).
func ReadNamePool(r rproc.MemoryReader, base rproc.Address, stride uint32) (*NamePool, error) {
	if stride != 1 && stride != 2 {
		return nil, newConfigError("name pool stride must be 1 or 2, got %d", stride)
	}
	blockSize := int64(stride) * 65536

	currentBlock, err := rproc.ReadInt32(r, base.Add(poolCurrentBlockOff))
	if err != nil {
		return nil, err
	}
	currentByte, err := rproc.ReadInt32(r, base.Add(poolCurrentByteOff))
	if err != nil {
		return nil, err
	}

	pool := &NamePool{entries: make(map[uint32]string)}

	for b := int32(0); b <= currentBlock; b++ {
		blockPtr, err := rproc.ReadAddress(r, base.Add(poolBlocksOff+int64(b)*offsets.PtrWidth))
		if err != nil {
			return nil, err
		}
		validEnd := blockSize
		if b == currentBlock {
			validEnd = int64(currentByte)
		}
		block, err := rproc.ReadBytes(r, blockPtr, int(blockSize))
		if err != nil {
			return nil, err
		}
		if err := pool.parseBlock(block[:validEnd], uint32(b), int64(stride)); err != nil {
			return nil, err
		}
	}
	return pool, nil
}

func (p *NamePool) parseBlock(block []byte, blockIdx uint32, stride int64) error {
	off := int64(0)
	for off < int64(len(block)) {
		if off+2 > int64(len(block)) {
			return errors.Errorf("name pool block %d: truncated entry header at %d", blockIdx, off)
		}
		header := nameEntryHeader(uint16(block[off]) | uint16(block[off+1])<<8)
		charWidth := int64(1)
		if header.wide() {
			charWidth = 2
		}
		payloadBytes := header.length() * charWidth
		start := off + 2
		if start+payloadBytes > int64(len(block)) {
			return errors.Errorf("name pool block %d: truncated payload at %d", blockIdx, start)
		}
		var s string
		if header.wide() {
			s = decodeUTF16LE(block[start : start+payloadBytes])
		} else {
			s = string(block[start : start+payloadBytes])
		}
		id := (blockIdx << 16) | uint32(off/stride)
		p.entries[id] = s

		aligned := payloadBytes
		if rem := aligned % stride; rem != 0 {
			aligned += stride - rem
		}
		off = start + aligned
	}
	return nil
}

func decodeUTF16LE(b []byte) string {
	u16 := make([]uint16, len(b)/2)
	for i := range u16 {
		u16[i] = uint16(b[2*i]) | uint16(b[2*i+1])<<8
	}
	return string(utf16.Decode(u16))
}

// Get returns the interned string for id, if the pool has it.
func (p *NamePool) Get(id uint32) (string, bool) {
	s, ok := p.entries[id]
	return s, ok
}
