package sdk

import "fmt"

// FQN is a fully-qualified name: the unique identity of every
// reflected type (spec.md §3). Equality is pointwise, so FQN is a
// plain comparable struct and usable as a map key directly.
type FQN struct {
	Package string
	Name    string
}

func (f FQN) String() string {
	return fmt.Sprintf("%s.%s", f.Package, f.Name)
}

// RootObjectFQN is the FQN every reflected object ultimately derives
// from (spec.md §3).
var RootObjectFQN = FQN{Package: "CoreUObject", Name: "Object"}

// Kind discriminates the PropertyKind union (spec.md §3).
type Kind uint8

const (
	KindBool Kind = iota
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUInt8
	KindUInt16
	KindUInt32
	KindUInt64
	KindFloat32
	KindFloat64
	KindName
	KindString
	KindText
	KindPtr
	KindInline
	KindArray
	KindVec
	KindSet
	KindMap
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "Bool"
	case KindInt8:
		return "Int8"
	case KindInt16:
		return "Int16"
	case KindInt32:
		return "Int32"
	case KindInt64:
		return "Int64"
	case KindUInt8:
		return "UInt8"
	case KindUInt16:
		return "UInt16"
	case KindUInt32:
		return "UInt32"
	case KindUInt64:
		return "UInt64"
	case KindFloat32:
		return "Float32"
	case KindFloat64:
		return "Float64"
	case KindName:
		return "Name"
	case KindString:
		return "String"
	case KindText:
		return "Text"
	case KindPtr:
		return "Ptr"
	case KindInline:
		return "Inline"
	case KindArray:
		return "Array"
	case KindVec:
		return "Vec"
	case KindSet:
		return "Set"
	case KindMap:
		return "Map"
	default:
		return "Unknown"
	}
}

// PropertyKind is the tagged union from spec.md §3. Only the fields
// relevant to Kind are populated; the zero value of the others is
// ignored.
type PropertyKind struct {
	Kind Kind

	FQN FQN // Ptr, Inline

	Elem *PropertyKind // Array, Vec, Set
	Key  *PropertyKind // Map
	Val  *PropertyKind // Map

	ArrayLen int64 // Array
}

// Property is a contiguous-bytes field (spec.md §3).
type Property struct {
	Name       string
	Kind       PropertyKind
	Offset     int64
	ElemSize   int64
	ArrayDim   int64
}

// Size is the total number of bytes this property occupies.
func (p Property) Size() int64 { return p.ElemSize * p.ArrayDim }

// BitItem is one named bit-range inside a BitfieldGroup.
type BitItem struct {
	Name      string
	BitOffset uint8
	BitLen    uint8
}

// BitfieldGroup fuses consecutive single-bit boolean properties that
// share one host byte (spec.md §3, §4.9).
type BitfieldGroup struct {
	ByteOffset int64
	Items      []BitItem
}

// Field is either a Property or a BitfieldGroup (spec.md §3). Exactly
// one of the two pointers is non-nil.
type Field struct {
	Property *Property
	Bitfield *BitfieldGroup
}

// Offset returns the field's position for sort-by-offset purposes
// (spec.md invariant 4).
func (f Field) Offset() int64 {
	if f.Property != nil {
		return f.Property.Offset
	}
	return f.Bitfield.ByteOffset
}

// Arg is one function parameter or return value.
type Arg struct {
	Name  string
	Kind  PropertyKind
	Flags uint32
}

// Function is a reflected method, attached to its owning Struct
// (spec.md §3).
type Function struct {
	FQN         FQN
	Ident       string
	EngineIndex int
	Flags       uint32
	Args        []Arg
	Returns     []Arg
}

// Layout is a struct or enum's size/alignment.
type Layout struct {
	Size  int64
	Align int64
}

// Struct is a reflected UStruct/UClass (spec.md §3). Class is
// represented as a Struct with IsUObject set.
//
// Shrink and Functions are the two fields mutated after initial
// construction (spec.md §5 "Shared-resource policy"): Shrink by the
// package-graph shrink pass, Functions by the two-pass function
// indexer. Go's aliasing model makes the Cell<Option<usize>>/RefCell
// wrappers from spec.md §9 unnecessary - every Struct lives behind a
// single *Struct pointer shared by its Package and the SDK's FQN
// index, and all writes happen on the single indexing goroutine.
type Struct struct {
	FQN         FQN
	Ident       string
	EngineIndex int
	IsUObject   bool
	Parent      *FQN
	Layout      Layout

	// Shrink is the possibly-reduced base size inferred from a
	// subclass's first-field offset (spec.md §4.11). Nil means no
	// subclass has shrunk this struct yet.
	Shrink *int64

	// Fields is sorted by ascending offset (spec.md invariant 4).
	Fields []Field

	Functions []Function
}

// EffectiveSize is the size an emitter should lay subsequent fields
// out against: Shrink if set, else Layout.Size (spec.md §4.11,
// §6 "emitters compute their own effective base size").
func (s *Struct) EffectiveSize() int64 {
	if s.Shrink != nil {
		return *s.Shrink
	}
	return s.Layout.Size
}

// AlignedSize rounds Layout.Size up to Layout.Align.
func (s *Struct) AlignedSize() int64 {
	if s.Layout.Align == 0 {
		return s.Layout.Size
	}
	rem := s.Layout.Size % s.Layout.Align
	if rem == 0 {
		return s.Layout.Size
	}
	return s.Layout.Size + (s.Layout.Align - rem)
}

// EnumVariant is one (identifier, value) pair.
type EnumVariant struct {
	Ident string
	Value int64
}

// Enum is a reflected UEnum (spec.md §3).
type Enum struct {
	FQN      FQN
	Ident    string
	Layout   Layout
	Variants []EnumVariant
}

// ObjectKind discriminates the Object union.
type ObjectKind uint8

const (
	ObjectEnum ObjectKind = iota
	ObjectStruct
	ObjectClass
)

// Object is the tagged union Enum | Struct | Class (spec.md §3).
type Object struct {
	Enum   *Enum
	Struct *Struct // also used for Class; Struct.IsUObject distinguishes them
}

// Kind reports which union member is populated.
func (o *Object) Kind() ObjectKind {
	if o.Enum != nil {
		return ObjectEnum
	}
	if o.Struct.IsUObject {
		return ObjectClass
	}
	return ObjectStruct
}

// FQN returns the object's identity regardless of which union member
// is populated.
func (o *Object) FQN() FQN {
	if o.Enum != nil {
		return o.Enum.FQN
	}
	return o.Struct.FQN
}

// Package is a named bucket of objects (spec.md §3): the unit of the
// dependency graph.
type Package struct {
	Ident   string
	Objects []*Object
}
