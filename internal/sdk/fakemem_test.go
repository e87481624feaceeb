package sdk

import (
	"encoding/binary"

	"github.com/itsethra/uesdk/internal/rproc"
)

// fakeMem is a sparse in-memory rproc.MemoryReader used to build
// fixtures for the indexer tests without a real attached process.
type fakeMem struct {
	data map[int64]byte
}

func newFakeMem() *fakeMem {
	return &fakeMem{data: make(map[int64]byte)}
}

func (m *fakeMem) Read(addr rproc.Address, out []byte) error {
	base := int64(addr)
	for i := range out {
		out[i] = m.data[base+int64(i)]
	}
	return nil
}

func (m *fakeMem) putBytes(addr rproc.Address, b []byte) {
	base := int64(addr)
	for i, c := range b {
		m.data[base+int64(i)] = c
	}
}

func (m *fakeMem) putU8(addr rproc.Address, v uint8) {
	m.putBytes(addr, []byte{v})
}

func (m *fakeMem) putU32(addr rproc.Address, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	m.putBytes(addr, b[:])
}

func (m *fakeMem) putI32(addr rproc.Address, v int32) {
	m.putU32(addr, uint32(v))
}

func (m *fakeMem) putU64(addr rproc.Address, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	m.putBytes(addr, b[:])
}

func (m *fakeMem) putI64(addr rproc.Address, v int64) {
	m.putU64(addr, uint64(v))
}

func (m *fakeMem) putAddr(addr rproc.Address, v rproc.Address) {
	m.putU64(addr, uint64(v))
}

func (m *fakeMem) putString(addr rproc.Address, s string) {
	m.putBytes(addr, []byte(s))
}
