package rproc

import (
	"encoding/binary"
	"unsafe"

	"github.com/pkg/errors"
)

// ReadErrorKind classifies why a MemoryReader.Read call failed.
type ReadErrorKind int

const (
	// InvalidAddress means the address is not mapped in the target.
	InvalidAddress ReadErrorKind = iota
	// PermissionDenied means the target refused the read (e.g. ptrace denied).
	PermissionDenied
	// ShortRead means fewer bytes were copied than requested.
	ShortRead
)

func (k ReadErrorKind) String() string {
	switch k {
	case InvalidAddress:
		return "invalid address"
	case PermissionDenied:
		return "permission denied"
	case ShortRead:
		return "short read"
	default:
		return "unknown read error"
	}
}

// ReadError is returned by a MemoryReader when it cannot satisfy a read.
// It is always fatal to the pass that triggered it (spec.md §7).
type ReadError struct {
	Kind ReadErrorKind
	Addr Address
	Size int
	Err  error
}

func (e *ReadError) Error() string {
	if e.Err != nil {
		return errors.Wrapf(e.Err, "read %d bytes at %s: %s", e.Size, e.Addr, e.Kind).Error()
	}
	return errors.Errorf("read %d bytes at %s: %s", e.Size, e.Addr, e.Kind).Error()
}

func (e *ReadError) Unwrap() error { return e.Err }

// MemoryReader is a capability: random access to bytes in a foreign
// process's address space. It is the only way the reflection-graph
// pipeline touches the outside world (spec.md §4.1).
type MemoryReader interface {
	// Read fills out with len(out) bytes starting at address.
	// A failed read returns a *ReadError and leaves out's contents
	// unspecified.
	Read(address Address, out []byte) error
}

// Read fills a POD value of type T by reading sizeof(T) bytes at address.
// T must be a fixed-layout type: a handle, primitive, fixed array, or a
// small struct of such things - never one containing a Go pointer,
// slice, string, interface, or map.
func Read[T any](r MemoryReader, address Address) (T, error) {
	var v T
	buf := unsafe.Slice((*byte)(unsafe.Pointer(&v)), unsafe.Sizeof(v))
	if err := r.Read(address, buf); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// ReadUint8 through ReadUint64 are small conveniences used throughout
// the indexers, where pulling in the generic Read[T] would be noisier
// than calling a named accessor.
func ReadUint8(r MemoryReader, a Address) (uint8, error) {
	var b [1]byte
	if err := r.Read(a, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func ReadUint16(r MemoryReader, a Address) (uint16, error) {
	var b [2]byte
	if err := r.Read(a, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}

func ReadUint32(r MemoryReader, a Address) (uint32, error) {
	var b [4]byte
	if err := r.Read(a, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func ReadUint64(r MemoryReader, a Address) (uint64, error) {
	var b [8]byte
	if err := r.Read(a, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

func ReadInt32(r MemoryReader, a Address) (int32, error) {
	v, err := ReadUint32(r, a)
	return int32(v), err
}

func ReadInt64(r MemoryReader, a Address) (int64, error) {
	v, err := ReadUint64(r, a)
	return int64(v), err
}

// ReadAddress reads a pointer-sized value and returns it as an Address.
// The target is always a 64-bit process in this implementation.
func ReadAddress(r MemoryReader, a Address) (Address, error) {
	v, err := ReadUint64(r, a)
	return Address(v), err
}

// ReadBytes reads n raw bytes at a.
func ReadBytes(r MemoryReader, a Address, n int) ([]byte, error) {
	buf := make([]byte, n)
	if err := r.Read(a, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
