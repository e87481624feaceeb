package sdk

import (
	"strings"

	"github.com/itsethra/uesdk/internal/offsets"
	"github.com/itsethra/uesdk/internal/rproc"
)

// This file implements PtrWalkers (spec.md §4.5, component C5): thin,
// address-carrying views over the target's reflection structures.
// None of them cache anything - every accessor issues a fresh memory
// read - which mirrors the teacher's gocore Type/Field accessors
// reading straight off a core.Process rather than materializing a
// parsed tree up front.

// tArrayHeader is the layout TArray<T> shares across every instance
// the core reads: a data pointer followed by a live-element count.
type tArrayHeader struct {
	Data rproc.Address
	Num  int32
}

const (
	tArrayDataOff = 0x00
	tArrayNumOff  = 0x08
)

func readTArrayHeader(r rproc.MemoryReader, addr rproc.Address) (tArrayHeader, error) {
	data, err := rproc.ReadAddress(r, addr.Add(tArrayDataOff))
	if err != nil {
		return tArrayHeader{}, err
	}
	num, err := rproc.ReadInt32(r, addr.Add(tArrayNumOff))
	if err != nil {
		return tArrayHeader{}, err
	}
	return tArrayHeader{Data: data, Num: num}, nil
}

// objectRef is a view over any UObject-derived instance: a class, a
// struct, an enum, or a plain runtime object.
type objectRef struct {
	r    rproc.MemoryReader
	cfg  offsets.Config
	addr rproc.Address
}

func (o objectRef) nameID() (uint32, error) {
	v, err := rproc.ReadUint32(o.r, o.addr.Add(int64(o.cfg.UObject.Name)))
	return v, err
}

func (o objectRef) classAddr() (rproc.Address, error) {
	return rproc.ReadAddress(o.r, o.addr.Add(int64(o.cfg.UObject.Class)))
}

func (o objectRef) outerAddr() (rproc.Address, error) {
	return rproc.ReadAddress(o.r, o.addr.Add(int64(o.cfg.UObject.Outer)))
}

func (o objectRef) withAddr(addr rproc.Address) objectRef {
	return objectRef{r: o.r, cfg: o.cfg, addr: addr}
}

// shortName resolves this object's own FName against pool.
func (o objectRef) shortName(pool *NamePool) (string, error) {
	id, err := o.nameID()
	if err != nil {
		return "", err
	}
	name, ok := pool.Get(id)
	if !ok {
		return "", newStructuralError(o.addr, FQN{}, "name id %#x not present in name pool", id)
	}
	return name, nil
}

// fqn derives this object's fully qualified name by walking outer up
// to the package object that terminates the chain (spec.md §4.5: the
// fqn() derived helper), then pairing that package's name with this
// object's own short name. Package names are stored by the engine as
// "/Script/<Module>"; the core strips that prefix to get the package
// ident used throughout the model.
func (o objectRef) fqn(pool *NamePool) (FQN, error) {
	own, err := o.shortName(pool)
	if err != nil {
		return FQN{}, err
	}
	outerAddr, err := o.outerAddr()
	if err != nil {
		return FQN{}, err
	}
	if outerAddr == 0 {
		return FQN{}, newStructuralError(o.addr, FQN{}, "object has no outer")
	}
	cur := o.withAddr(outerAddr)
	for {
		curOuter, err := cur.outerAddr()
		if err != nil {
			return FQN{}, err
		}
		if curOuter == 0 {
			break
		}
		cur = cur.withAddr(curOuter)
	}
	pkgName, err := cur.shortName(pool)
	if err != nil {
		return FQN{}, err
	}
	pkg := strings.TrimPrefix(pkgName, "/Script/")
	return FQN{Package: pkg, Name: own}, nil
}

// isA walks this object's class hierarchy (via UStruct.SuperStruct),
// starting at its own class, looking for target (spec.md §4.6).
func (o objectRef) isA(pool *NamePool, target FQN) (bool, error) {
	cur, err := o.classAddr()
	if err != nil {
		return false, err
	}
	for cur != 0 {
		curObj := o.withAddr(cur)
		fqn, err := curObj.fqn(pool)
		if err != nil {
			return false, err
		}
		if fqn == target {
			return true, nil
		}
		super, err := structRef{curObj}.superStructAddr()
		if err != nil {
			return false, err
		}
		cur = super
	}
	return false, nil
}

// structRef views a UStruct (or UClass/UScriptStruct/UFunction, which
// all extend UStruct) at the same address as its embedded objectRef.
type structRef struct {
	objectRef
}

func (s structRef) superStructAddr() (rproc.Address, error) {
	return rproc.ReadAddress(s.r, s.addr.Add(int64(s.cfg.UStruct.SuperStruct)))
}

func (s structRef) childrenPropsAddr() (rproc.Address, error) {
	return rproc.ReadAddress(s.r, s.addr.Add(int64(s.cfg.UStruct.ChildrenProps)))
}

func (s structRef) propsSize() (uint32, error) {
	return rproc.ReadUint32(s.r, s.addr.Add(int64(s.cfg.UStruct.PropsSize)))
}

// enumRef views a UEnum.
type enumRef struct {
	objectRef
}

type enumVariantRaw struct {
	NameID uint32
	Value  int64
}

const enumVariantStride = 16 // name_id: u64 (low 32 bits are the pool id) + value: i64

func (e enumRef) variants() ([]enumVariantRaw, error) {
	arr, err := readTArrayHeader(e.r, e.addr.Add(int64(e.cfg.UEnum.Names)))
	if err != nil {
		return nil, err
	}
	out := make([]enumVariantRaw, 0, arr.Num)
	for i := int32(0); i < arr.Num; i++ {
		elemAddr := arr.Data.Add(int64(i) * enumVariantStride)
		rawID, err := rproc.ReadUint64(e.r, elemAddr)
		if err != nil {
			return nil, err
		}
		value, err := rproc.ReadInt64(e.r, elemAddr.Add(8))
		if err != nil {
			return nil, err
		}
		out = append(out, enumVariantRaw{NameID: uint32(rawID), Value: value})
	}
	return out, nil
}

// fieldRef views one FField-derived record (a property or function
// reached off UStruct.children_props). Unlike objectRef, this is not
// a UObject: it has no Outer.
type fieldRef struct {
	r    rproc.MemoryReader
	cfg  offsets.Config
	addr rproc.Address
}

func (f fieldRef) classAddr() (rproc.Address, error) {
	return rproc.ReadAddress(f.r, f.addr.Add(int64(f.cfg.FField.Class)))
}

func (f fieldRef) nameID() (uint32, error) {
	return rproc.ReadUint32(f.r, f.addr.Add(int64(f.cfg.FField.Name)))
}

func (f fieldRef) nextAddr() (rproc.Address, error) {
	return rproc.ReadAddress(f.r, f.addr.Add(int64(f.cfg.FField.Next)))
}

func (f fieldRef) name(pool *NamePool) (string, error) {
	id, err := f.nameID()
	if err != nil {
		return "", err
	}
	name, ok := pool.Get(id)
	if !ok {
		return "", newStructuralError(f.addr, FQN{}, "name id %#x not present in name pool", id)
	}
	return name, nil
}

// className resolves the classname string off this field's FFieldClass
// record (spec.md §4.8.4: the property-kind dispatch key).
func (f fieldRef) className(pool *NamePool) (string, error) {
	classAddr, err := f.classAddr()
	if err != nil {
		return "", err
	}
	if classAddr == 0 {
		return "", newStructuralError(f.addr, FQN{}, "field has a null FFieldClass")
	}
	nameID, err := rproc.ReadUint32(f.r, classAddr.Add(int64(f.cfg.FFieldClass.Name)))
	if err != nil {
		return "", err
	}
	name, ok := pool.Get(nameID)
	if !ok {
		return "", newStructuralError(f.addr, FQN{}, "field class name id %#x not present in name pool", nameID)
	}
	return name, nil
}

// propertyRef views an FProperty, laid out inline after fieldRef's
// common FField header at the same address.
type propertyRef struct {
	fieldRef
}

func (p propertyRef) elementSize() (uint32, error) {
	return rproc.ReadUint32(p.r, p.addr.Add(int64(p.cfg.FProperty.ElementSize)))
}

func (p propertyRef) arrayDim() (uint32, error) {
	return rproc.ReadUint32(p.r, p.addr.Add(int64(p.cfg.FProperty.ArrayDim)))
}

func (p propertyRef) offset() (uint32, error) {
	return rproc.ReadUint32(p.r, p.addr.Add(int64(p.cfg.FProperty.Offset)))
}

func (p propertyRef) flags() (uint32, error) {
	return rproc.ReadUint32(p.r, p.addr.Add(int64(p.cfg.FProperty.PropFlags)))
}

// boolVarsAddr returns the address of FBoolProperty's four trailing
// single-byte fields (spec.md §4.8.4 step 4, component C9).
func (p propertyRef) boolVarsAddr() rproc.Address {
	return p.addr.Add(int64(p.cfg.FProperty.BoolVars))
}

// payloadAddr returns the start of whatever follows the fixed
// FProperty header - the inner PropertyKind for Array/Set, the
// key/value PropertyKinds for Map, or the UScriptStruct pointer for a
// StructProperty (spec.md §4.8.4).
func (p propertyRef) payloadAddr() rproc.Address {
	return p.addr.Add(int64(p.cfg.FProperty.Size))
}

// functionRef views a UFunction, which extends UStruct.
type functionRef struct {
	structRef
}

func (f functionRef) flags() (uint32, error) {
	return rproc.ReadUint32(f.r, f.addr.Add(int64(f.cfg.UFunction.Flags)))
}
