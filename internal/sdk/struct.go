package sdk

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/itsethra/uesdk/internal/offsets"
	"github.com/itsethra/uesdk/internal/rproc"
)

// StructIndexer is component C8 (spec.md §4.8): the largest piece of
// the pipeline. It walks one UStruct/UClass's property linked list,
// classifies each FField into a PropertyKind, hands booleans to the
// BitfieldAccumulator, and computes the struct's identity and layout.
type StructIndexer struct {
	r    rproc.MemoryReader
	cfg  offsets.Config
	pool *NamePool
}

func NewStructIndexer(r rproc.MemoryReader, cfg offsets.Config, pool *NamePool) *StructIndexer {
	return &StructIndexer{r: r, cfg: cfg, pool: pool}
}

// engineActorFQN and RootObjectFQN anchor the §4.8.1 prefix rule.
var engineActorFQN = FQN{Package: "Engine", Name: "Actor"}
var engineLevelFQN = FQN{Package: "Engine", Name: "Level"}

var nonIdentChar = regexp.MustCompile(`[^A-Za-z0-9_]`)

// sanitizeIdent applies spec.md §4.8.3: non-identifier characters
// become underscores, and the reserved name Self is renamed This.
func sanitizeIdent(name string) string {
	if name == "Self" {
		return "This"
	}
	return nonIdentChar.ReplaceAllString(name, "_")
}

// Index reads and normalizes the struct/class at addr. engineIndex is
// the object's position in the flattened object table, supplied by
// the caller so this indexer never has to know about ObjectTable.
func (ix *StructIndexer) Index(addr rproc.Address, fqn FQN, isUObject bool, engineIndex int) (*Struct, []FQN, error) {
	obj := objectRef{r: ix.r, cfg: ix.cfg, addr: addr}
	sref := structRef{obj}

	propsSize, err := sref.propsSize()
	if err != nil {
		return nil, nil, err
	}
	align, err := rproc.ReadUint32(ix.r, addr.Add(int64(ix.cfg.UStruct.PropsSize)+4))
	if err != nil {
		return nil, nil, err
	}

	superAddr, err := sref.superStructAddr()
	if err != nil {
		return nil, nil, err
	}
	var parent *FQN
	var foreign []FQN
	if superAddr != 0 {
		pFQN, err := obj.withAddr(superAddr).fqn(ix.pool)
		if err != nil {
			return nil, nil, err
		}
		parent = &pFQN
		foreign = append(foreign, pFQN)
	}

	prefix, err := ix.identPrefix(addr)
	if err != nil {
		return nil, nil, err
	}
	ident := string(prefix) + sanitizeIdent(fqn.Name)

	fields, fieldForeign, err := ix.walkFields(sref)
	if err != nil {
		return nil, nil, err
	}
	foreign = append(foreign, fieldForeign...)

	if fqn == engineLevelFQN && ix.cfg.LevelActorsOffset != 0 {
		elem := PropertyKind{Kind: KindPtr, FQN: engineActorFQN}
		fields = append(fields, Field{Property: &Property{
			Name:     "Actors",
			Kind:     PropertyKind{Kind: KindVec, Elem: &elem},
			Offset:   int64(ix.cfg.LevelActorsOffset),
			ElemSize: 16,
			ArrayDim: 1,
		}})
		foreign = append(foreign, engineActorFQN)
	}

	sort.SliceStable(fields, func(i, j int) bool { return fields[i].Offset() < fields[j].Offset() })

	st := &Struct{
		FQN:         fqn,
		Ident:       ident,
		EngineIndex: engineIndex,
		IsUObject:   isUObject,
		Parent:      parent,
		Layout:      Layout{Size: int64(propsSize), Align: int64(align)},
		Fields:      fields,
	}
	return st, foreign, nil
}

// identPrefix implements spec.md §4.8.1: 'A' if the struct or any
// ancestor is Engine.Actor, else 'U' if it descends from
// CoreUObject.Object, else 'F'.
func (ix *StructIndexer) identPrefix(addr rproc.Address) (byte, error) {
	isObject := false
	cur := addr
	for cur != 0 {
		curStruct := structRef{objectRef{r: ix.r, cfg: ix.cfg, addr: cur}}
		curFQN, err := curStruct.fqn(ix.pool)
		if err != nil {
			return 0, err
		}
		if curFQN == engineActorFQN {
			return 'A', nil
		}
		if curFQN == RootObjectFQN {
			isObject = true
		}
		next, err := curStruct.superStructAddr()
		if err != nil {
			return 0, err
		}
		cur = next
	}
	if isObject {
		return 'U', nil
	}
	return 'F', nil
}

// walkFields is the §4.8.4 field walk plus the §4.9 bitfield fusion.
func (ix *StructIndexer) walkFields(sref structRef) ([]Field, []FQN, error) {
	var fields []Field
	var foreign []FQN
	nameCounts := make(map[string]int)
	acc := &bitfieldAccumulator{}

	cur, err := sref.childrenPropsAddr()
	if err != nil {
		return nil, nil, err
	}
	for cur != 0 {
		fr := fieldRef{r: ix.r, cfg: ix.cfg, addr: cur}

		rawName, err := fr.name(ix.pool)
		if err != nil {
			return nil, nil, err
		}
		nameCounts[rawName]++
		name := rawName
		if n := nameCounts[rawName]; n > 1 {
			name = fmt.Sprintf("%s_%d", rawName, n)
		}

		className, err := fr.className(ix.pool)
		if err != nil {
			return nil, nil, err
		}
		prop := propertyRef{fr}

		elemSize, err := prop.elementSize()
		if err != nil {
			return nil, nil, err
		}
		arrayDim, err := prop.arrayDim()
		if err != nil {
			return nil, nil, err
		}
		offset, err := prop.offset()
		if err != nil {
			return nil, nil, err
		}

		if className == "BoolProperty" {
			emitted, err := ix.handleBool(acc, prop, name, int64(offset), int64(elemSize), int64(arrayDim))
			if err != nil {
				return nil, nil, err
			}
			fields = append(fields, emitted...)
		} else {
			fields = append(fields, acc.pushNonBool()...)

			kind, err := ix.propertyKind(prop, className)
			if err != nil {
				return nil, nil, err
			}
			foreign = append(foreign, collectForeign(kind)...)

			if arrayDim > 1 {
				elem := kind
				kind = PropertyKind{Kind: KindArray, Elem: &elem, ArrayLen: int64(arrayDim)}
			}
			fields = append(fields, Field{Property: &Property{
				Name: name, Kind: kind, Offset: int64(offset), ElemSize: int64(elemSize), ArrayDim: int64(arrayDim),
			}})
		}

		next, err := fr.nextAddr()
		if err != nil {
			return nil, nil, err
		}
		cur = next
	}
	fields = append(fields, acc.finish()...)
	return fields, foreign, nil
}

// handleBool implements the §4.9 Bool branch: full-byte booleans pass
// through as a plain property; partial masks feed the accumulator.
func (ix *StructIndexer) handleBool(acc *bitfieldAccumulator, prop propertyRef, name string, offset, elemSize, arrayDim int64) ([]Field, error) {
	varsAddr := prop.boolVarsAddr()
	fieldSize, err := rproc.ReadUint8(ix.r, varsAddr)
	if err != nil {
		return nil, err
	}
	byteOffset, err := rproc.ReadUint8(ix.r, varsAddr.Add(1))
	if err != nil {
		return nil, err
	}
	byteMask, err := rproc.ReadUint8(ix.r, varsAddr.Add(2))
	if err != nil {
		return nil, err
	}
	fieldMask, err := rproc.ReadUint8(ix.r, varsAddr.Add(3))
	if err != nil {
		return nil, err
	}
	if byteOffset != 0 {
		return nil, newAssertionError(prop.addr, "FBoolProperty byte_offset must be 0, got %d", byteOffset)
	}
	if fieldSize != 1 {
		return nil, newAssertionError(prop.addr, "FBoolProperty field_size must be 1, got %d", fieldSize)
	}

	if fieldMask == 0xff {
		out := acc.pushFullByteBool()
		out = append(out, Field{Property: &Property{
			Name: name, Kind: PropertyKind{Kind: KindBool}, Offset: offset, ElemSize: elemSize, ArrayDim: arrayDim,
		}})
		return out, nil
	}

	bitOffset, bitLen := bitRangeFromMask(byteMask)
	return acc.pushBitfieldBit(offset, BitItem{Name: name, BitOffset: bitOffset, BitLen: bitLen}), nil
}

const ptrWidth = int64(offsets.PtrWidth)

// propertyKind implements the §4.8.4 classname → PropertyKind table.
func (ix *StructIndexer) propertyKind(p propertyRef, className string) (PropertyKind, error) {
	switch className {
	case "BoolProperty":
		return PropertyKind{Kind: KindBool}, nil
	case "NameProperty":
		return PropertyKind{Kind: KindName}, nil
	case "StrProperty":
		return PropertyKind{Kind: KindString}, nil
	case "TextProperty":
		return PropertyKind{Kind: KindText}, nil
	case "Int8Property":
		return PropertyKind{Kind: KindInt8}, nil
	case "Int16Property":
		return PropertyKind{Kind: KindInt16}, nil
	case "IntProperty":
		return PropertyKind{Kind: KindInt32}, nil
	case "Int64Property":
		return PropertyKind{Kind: KindInt64}, nil
	case "ByteProperty":
		return PropertyKind{Kind: KindUInt8}, nil
	case "UInt16Property":
		return PropertyKind{Kind: KindUInt16}, nil
	case "UInt32Property":
		return PropertyKind{Kind: KindUInt32}, nil
	case "UInt64Property":
		return PropertyKind{Kind: KindUInt64}, nil
	case "FloatProperty":
		return PropertyKind{Kind: KindFloat32}, nil
	case "DoubleProperty":
		return PropertyKind{Kind: KindFloat64}, nil

	case "ObjectProperty", "ClassProperty":
		fqn, err := ix.fqnAt(p.payloadAddr())
		if err != nil {
			return PropertyKind{}, err
		}
		return PropertyKind{Kind: KindPtr, FQN: fqn}, nil

	case "StructProperty":
		fqn, err := ix.fqnAt(p.payloadAddr())
		if err != nil {
			return PropertyKind{}, err
		}
		return PropertyKind{Kind: KindInline, FQN: fqn}, nil

	case "EnumProperty":
		fqn, err := ix.fqnAt(p.payloadAddr().Add(ptrWidth))
		if err != nil {
			return PropertyKind{}, err
		}
		return PropertyKind{Kind: KindInline, FQN: fqn}, nil

	case "ArrayProperty":
		elem, err := ix.recurseInner(p.payloadAddr())
		if err != nil {
			return PropertyKind{}, err
		}
		return PropertyKind{Kind: KindVec, Elem: &elem}, nil

	case "SetProperty":
		elem, err := ix.recurseInner(p.payloadAddr())
		if err != nil {
			return PropertyKind{}, err
		}
		return PropertyKind{Kind: KindSet, Elem: &elem}, nil

	case "MapProperty":
		key, err := ix.recurseInner(p.payloadAddr())
		if err != nil {
			return PropertyKind{}, err
		}
		val, err := ix.recurseInner(p.payloadAddr().Add(ptrWidth))
		if err != nil {
			return PropertyKind{}, err
		}
		return PropertyKind{Kind: KindMap, Key: &key, Val: &val}, nil

	case "ClassPtrProperty", "DelegateProperty", "FieldPathProperty", "InterfaceProperty",
		"LazyObjectProperty", "SoftClassProperty", "SoftObjectProperty", "WeakObjectProperty",
		"MulticastInlineDelegateProperty", "MulticastSparseDelegateProperty":
		return PropertyKind{Kind: KindUnknown}, nil

	default:
		return PropertyKind{}, newStructuralError(p.addr, FQN{}, "unknown property class %q", className)
	}
}

// fqnAt reads a pointer at addr and resolves the UObject it points to
// into an FQN - the "fqn_at" helper referenced throughout §4.8.4.
func (ix *StructIndexer) fqnAt(addr rproc.Address) (FQN, error) {
	ptr, err := rproc.ReadAddress(ix.r, addr)
	if err != nil {
		return FQN{}, err
	}
	if ptr == 0 {
		return FQN{}, newStructuralError(addr, FQN{}, "expected a non-null type pointer")
	}
	return objectRef{r: ix.r, cfg: ix.cfg, addr: ptr}.fqn(ix.pool)
}

// recurseInner reads a pointer-to-inner-FProperty at addr and
// classifies it, for Array/Set/Map container element kinds.
func (ix *StructIndexer) recurseInner(addr rproc.Address) (PropertyKind, error) {
	ptr, err := rproc.ReadAddress(ix.r, addr)
	if err != nil {
		return PropertyKind{}, err
	}
	if ptr == 0 {
		return PropertyKind{}, newStructuralError(addr, FQN{}, "expected a non-null inner property pointer")
	}
	inner := propertyRef{fieldRef{r: ix.r, cfg: ix.cfg, addr: ptr}}
	className, err := inner.className(ix.pool)
	if err != nil {
		return PropertyKind{}, err
	}
	return ix.propertyKind(inner, className)
}

// collectForeign flattens every FQN referenced by kind, recursing
// through container element/key/value kinds.
func collectForeign(kind PropertyKind) []FQN {
	var out []FQN
	switch kind.Kind {
	case KindPtr, KindInline:
		out = append(out, kind.FQN)
	case KindArray, KindVec, KindSet:
		if kind.Elem != nil {
			out = append(out, collectForeign(*kind.Elem)...)
		}
	case KindMap:
		if kind.Key != nil {
			out = append(out, collectForeign(*kind.Key)...)
		}
		if kind.Val != nil {
			out = append(out, collectForeign(*kind.Val)...)
		}
	}
	return out
}
