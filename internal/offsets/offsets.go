// Package offsets holds the byte-offset table that describes how the
// target runtime lays out its reflection structures in memory
// (spec.md §4.2, component C2). Everything here is data, not
// behavior: the indexers in internal/sdk are the only code that
// interprets these numbers.
package offsets

// FUObjectItem describes the element type of the chunked object array
// (spec.md §4.4).
type FUObjectItem struct {
	Object uint32 // offset of the object pointer within one element
}

// UObject describes the fields read off every reflected object
// (spec.md §3 "Object handle", §4.5 PtrWalkers).
type UObject struct {
	Class uint32 // pointer to the object's UClass
	Name  uint32 // FName of the object
	Outer uint32 // pointer to the enclosing object, or null
}

// UField describes the singly linked list UStruct.children hangs off.
type UField struct {
	Next uint32 // pointer to the next UField; the core walks properties via FField.Next and never reads this
}

// UStruct describes struct/class layout and inheritance fields.
type UStruct struct {
	SuperStruct   uint32 // pointer to the parent UStruct, or null
	ChildrenProps uint32 // pointer to the first FField in the property list
	PropsSize     uint32 // UStruct.props_size; min_align follows one word later
}

// UEnum describes the variant table of a reflected enum.
type UEnum struct {
	Names uint32 // pointer to the TArray<TPair<FName,int64>> of variants
}

// FField describes fields common to every property/field record.
type FField struct {
	Class uint32 // pointer to an FFieldClass; FFieldClass.Name is the classname string
	Name  uint32 // FName of this field
	Next  uint32 // pointer to the next FField
}

// FFieldClass describes the small record FField.Class points at.
type FFieldClass struct {
	Name uint32 // FName holding the classname, e.g. "BoolProperty"
}

// FProperty describes a single reflected property's layout metadata.
type FProperty struct {
	ElementSize uint32
	ArrayDim    uint32
	Offset      uint32
	PropFlags   uint32 // bitmask; bit OutParm marks a function out-parameter
	Size        uint32 // sizeof(FProperty), used to locate the inline payload that follows it

	// BoolVars is the offset, from the start of an FBoolProperty, of its
	// four single-byte vars: FieldSize, ByteOffset, ByteMask, FieldMask
	// (spec.md §4.8.4 step 4).
	BoolVars uint32
}

// UFunction describes a function object's flags and native function
// pointer slot.
type UFunction struct {
	Flags uint32
	Func  uint32 // native function pointer slot (not used, kept for completeness)
}

// Config is the full layout description for one target runtime.
// A zero Config is invalid; start from Default() and override fields
// from a parsed text config (internal/config).
type Config struct {
	// Stride is 1 for ANSI-only name pools, 2 for wide (UTF-16) pools.
	Stride uint32

	// ProcessEventVTableIndex is the vtable slot of UObject::ProcessEvent,
	// used by external callers that want to invoke reflected functions.
	// The core itself never calls through it.
	ProcessEventVTableIndex uint32

	// LevelActorsOffset, if non-zero, is the byte offset of ULevel::Actors
	// used to synthesize the Actors field (spec.md §4.8.5).
	LevelActorsOffset uint32

	FUObjectItem FUObjectItem
	UObject      UObject
	UField       UField
	UStruct      UStruct
	UEnum        UEnum
	FField       FField
	FFieldClass  FFieldClass
	FProperty    FProperty
	UFunction    UFunction
}

// Default returns the layout constants for a stock, unmodified engine
// build. Most targets need to override only a handful of these.
func Default() Config {
	return Config{
		Stride:                  2,
		ProcessEventVTableIndex: 67,
		LevelActorsOffset:       0,
		FUObjectItem: FUObjectItem{
			Object: 0x00,
		},
		UObject: UObject{
			Class: 0x10,
			Name:  0x18,
			Outer: 0x20,
		},
		UField: UField{
			Next: 0x28,
		},
		UStruct: UStruct{
			SuperStruct:   0x30,
			ChildrenProps: 0x48,
			PropsSize:     0x50,
		},
		UEnum: UEnum{
			Names: 0x40,
		},
		FField: FField{
			Class: 0x08,
			Name:  0x28,
			Next:  0x20,
		},
		FFieldClass: FFieldClass{
			Name: 0x00,
		},
		FProperty: FProperty{
			ElementSize: 0x3c,
			ArrayDim:    0x38,
			Offset:      0x4c,
			PropFlags:   0x50,
			Size:        0x78,
			BoolVars:    0x78,
		},
		UFunction: UFunction{
			Flags: 0xb8,
			Func:  0xd0,
		},
	}
}

// PtrWidth is the pointer size on every target this module supports.
// The original implementation is 64-bit-only; so is this one.
const PtrWidth = 8
