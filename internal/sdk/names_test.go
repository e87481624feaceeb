package sdk

import (
	"testing"

	"github.com/itsethra/uesdk/internal/rproc"
)

func TestReadNamePoolSingleBlockAnsi(t *testing.T) {
	const poolBase rproc.Address = 0x1000
	const blockAddr rproc.Address = 0x2000

	mem := newFakeMem()
	mem.putI32(poolBase.Add(poolCurrentBlockOff), 0)
	mem.putI32(poolBase.Add(poolCurrentByteOff), 18)
	mem.putAddr(poolBase.Add(poolBlocksOff), blockAddr)

	putEntry := func(off int64, s string) {
		header := uint16(len(s))<<1 | 0 // ansi
		mem.putBytes(blockAddr.Add(off), []byte{byte(header), byte(header >> 8)})
		mem.putString(blockAddr.Add(off+2), s)
	}
	putEntry(0, "Foo")
	putEntry(5, "Barbaz")
	putEntry(13, "Qux")

	pool, err := ReadNamePool(mem, poolBase, 1)
	if err != nil {
		t.Fatalf("ReadNamePool: %v", err)
	}

	for id, want := range map[uint32]string{0: "Foo", 5: "Barbaz", 13: "Qux"} {
		got, ok := pool.Get(id)
		if !ok {
			t.Errorf("id %d: not found", id)
			continue
		}
		if got != want {
			t.Errorf("id %d: got %q, want %q", id, got, want)
		}
	}

	if _, ok := pool.Get(999); ok {
		t.Errorf("unexpected hit for unpopulated id 999")
	}
}

func TestReadNamePoolWideEntry(t *testing.T) {
	const poolBase rproc.Address = 0x3000
	const blockAddr rproc.Address = 0x4000
	const stride = 2

	mem := newFakeMem()
	mem.putI32(poolBase.Add(poolCurrentBlockOff), 0)
	mem.putI32(poolBase.Add(poolCurrentByteOff), 10) // header(2) + 4 chars * 2 bytes = 10
	mem.putAddr(poolBase.Add(poolBlocksOff), blockAddr)

	header := uint16(4)<<1 | 1 // wide, length 4
	mem.putBytes(blockAddr, []byte{byte(header), byte(header >> 8)})
	for i, c := range []uint16{'W', 'i', 'd', 'e'} {
		mem.putBytes(blockAddr.Add(int64(2+2*i)), []byte{byte(c), byte(c >> 8)})
	}

	pool, err := ReadNamePool(mem, poolBase, stride)
	if err != nil {
		t.Fatalf("ReadNamePool: %v", err)
	}
	got, ok := pool.Get(0)
	if !ok || got != "Wide" {
		t.Fatalf("got (%q, %v), want (\"Wide\", true)", got, ok)
	}
}

func TestReadNamePoolRejectsBadStride(t *testing.T) {
	if _, err := ReadNamePool(newFakeMem(), 0, 3); err == nil {
		t.Fatal("expected an error for stride=3")
	}
}
