// Package rproc defines the abstraction the reflection-graph pipeline
// uses to read bytes out of a foreign process's address space.
package rproc

import "fmt"

// Address is a location in the target process's address space.
type Address uint64

func (a Address) Add(n int64) Address {
	return Address(int64(a) + n)
}

// Sub returns a-b.
func (a Address) Sub(b Address) int64 {
	return int64(a) - int64(b)
}

func (a Address) String() string {
	return fmt.Sprintf("%#x", uint64(a))
}
