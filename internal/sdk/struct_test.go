package sdk

import (
	"testing"

	"github.com/itsethra/uesdk/internal/offsets"
	"github.com/itsethra/uesdk/internal/rproc"
)

func TestSanitizeIdent(t *testing.T) {
	cases := map[string]string{
		"Self":      "This",
		"Plain":     "Plain",
		"Has Space": "Has_Space",
		"Weird!Name": "Weird_Name",
	}
	for in, want := range cases {
		if got := sanitizeIdent(in); got != want {
			t.Errorf("sanitizeIdent(%q) = %q, want %q", in, got, want)
		}
	}
}

// putPackageObject sets the UObject.Name/Outer fields used by fqn()
// resolution, for a node that is its own terminal package object
// (outer == 0).
func putPackageObject(mem *fakeMem, cfg offsets.Config, addr rproc.Address, nameID uint32) {
	mem.putU32(addr.Add(int64(cfg.UObject.Name)), nameID)
	mem.putAddr(addr.Add(int64(cfg.UObject.Outer)), 0)
}

func putObject(mem *fakeMem, cfg offsets.Config, addr, outer rproc.Address, nameID uint32) {
	mem.putU32(addr.Add(int64(cfg.UObject.Name)), nameID)
	mem.putAddr(addr.Add(int64(cfg.UObject.Outer)), outer)
}

func putField(mem *fakeMem, cfg offsets.Config, addr, classAddr, next rproc.Address, classNameID, fieldNameID uint32, elemSize, arrayDim, offset, flags uint32) {
	mem.putAddr(addr.Add(int64(cfg.FField.Class)), classAddr)
	mem.putU32(addr.Add(int64(cfg.FField.Name)), fieldNameID)
	mem.putAddr(addr.Add(int64(cfg.FField.Next)), next)
	mem.putU32(classAddr.Add(int64(cfg.FFieldClass.Name)), classNameID)
	mem.putU32(addr.Add(int64(cfg.FProperty.ElementSize)), elemSize)
	mem.putU32(addr.Add(int64(cfg.FProperty.ArrayDim)), arrayDim)
	mem.putU32(addr.Add(int64(cfg.FProperty.Offset)), offset)
	mem.putU32(addr.Add(int64(cfg.FProperty.PropFlags)), flags)
}

func TestStructIndexerActorPrefixAndFieldOrdering(t *testing.T) {
	cfg := offsets.Default()
	mem := newFakeMem()

	const pkgAddr rproc.Address = 0x9000
	const enginePkgAddr rproc.Address = 0xB100
	const engineActorAddr rproc.Address = 0xB000
	const structAddr rproc.Address = 0xA000
	const otherClassAddr rproc.Address = 0xD000

	const field1 rproc.Address = 0xC000
	const class1 rproc.Address = 0xC100
	const field2 rproc.Address = 0xC200
	const class2 rproc.Address = 0xC300
	const field3 rproc.Address = 0xC400
	const class3 rproc.Address = 0xC500

	putPackageObject(mem, cfg, enginePkgAddr, 13)
	putObject(mem, cfg, engineActorAddr, enginePkgAddr, 12)
	putObject(mem, cfg, pkgAddr, 0, 10) // "MyGame" acts as its own terminal package object
	putObject(mem, cfg, structAddr, pkgAddr, 11)
	putObject(mem, cfg, otherClassAddr, pkgAddr, 26)

	mem.putAddr(structAddr.Add(int64(cfg.UStruct.SuperStruct)), engineActorAddr)
	mem.putAddr(structAddr.Add(int64(cfg.UStruct.ChildrenProps)), field1)
	mem.putU32(structAddr.Add(int64(cfg.UStruct.PropsSize)), 16)
	mem.putU32(structAddr.Add(int64(cfg.UStruct.PropsSize)+4), 8)

	putField(mem, cfg, field1, class1, field2, 20, 21, 4, 1, 0, 0) // IntProperty Health @0
	putField(mem, cfg, field2, class2, field3, 22, 23, 1, 1, 4, 0) // BoolProperty bFlag @4
	boolVars := field2.Add(int64(cfg.FProperty.BoolVars))
	mem.putU8(boolVars, 1)
	mem.putU8(boolVars.Add(1), 0)
	mem.putU8(boolVars.Add(2), 0xff)
	mem.putU8(boolVars.Add(3), 0xff)
	putField(mem, cfg, field3, class3, 0, 24, 25, 8, 1, 8, 0) // ObjectProperty Target @8
	mem.putAddr(field3.Add(int64(cfg.FProperty.Size)), otherClassAddr)

	pool := &NamePool{entries: map[uint32]string{
		10: "MyGame",
		11: "MyActor",
		12: "Actor",
		13: "/Script/Engine",
		20: "IntProperty",
		21: "Health",
		22: "BoolProperty",
		23: "bFlag",
		24: "ObjectProperty",
		25: "Target",
		26: "OtherClass",
	}}

	ix := NewStructIndexer(mem, cfg, pool)
	fqn := FQN{Package: "MyGame", Name: "MyActor"}
	st, foreign, err := ix.Index(structAddr, fqn, true, 7)
	if err != nil {
		t.Fatalf("Index: %v", err)
	}

	if st.Ident != "AMyActor" {
		t.Errorf("Ident = %q, want AMyActor", st.Ident)
	}
	if st.Parent == nil || *st.Parent != engineActorFQN {
		t.Errorf("Parent = %v, want %v", st.Parent, engineActorFQN)
	}
	if st.Layout.Size != 16 || st.Layout.Align != 8 {
		t.Errorf("Layout = %+v, want {16 8}", st.Layout)
	}
	if len(st.Fields) != 3 {
		t.Fatalf("got %d fields, want 3: %+v", len(st.Fields), st.Fields)
	}
	if st.Fields[0].Property.Name != "Health" || st.Fields[0].Property.Kind.Kind != KindInt32 {
		t.Errorf("field[0] = %+v, want Health Int32", st.Fields[0].Property)
	}
	if st.Fields[1].Property.Name != "bFlag" || st.Fields[1].Property.Kind.Kind != KindBool {
		t.Errorf("field[1] = %+v, want bFlag Bool", st.Fields[1].Property)
	}
	if st.Fields[2].Property.Name != "Target" || st.Fields[2].Property.Kind.Kind != KindPtr {
		t.Fatalf("field[2] = %+v, want Target Ptr", st.Fields[2].Property)
	}
	wantTarget := FQN{Package: "MyGame", Name: "OtherClass"}
	if st.Fields[2].Property.Kind.FQN != wantTarget {
		t.Errorf("Target points to %v, want %v", st.Fields[2].Property.Kind.FQN, wantTarget)
	}

	foundParent, foundOther := false, false
	for _, f := range foreign {
		if f == engineActorFQN {
			foundParent = true
		}
		if f == wantTarget {
			foundOther = true
		}
	}
	if !foundParent || !foundOther {
		t.Errorf("foreign = %v, want to contain %v and %v", foreign, engineActorFQN, wantTarget)
	}
}

func TestStructIndexerPlainStructPrefix(t *testing.T) {
	cfg := offsets.Default()
	mem := newFakeMem()

	const pkgAddr rproc.Address = 0x1100
	const structAddr rproc.Address = 0x1200

	putPackageObject(mem, cfg, pkgAddr, 1)
	putObject(mem, cfg, structAddr, pkgAddr, 2)
	mem.putAddr(structAddr.Add(int64(cfg.UStruct.SuperStruct)), 0)
	mem.putAddr(structAddr.Add(int64(cfg.UStruct.ChildrenProps)), 0)
	mem.putU32(structAddr.Add(int64(cfg.UStruct.PropsSize)), 4)
	mem.putU32(structAddr.Add(int64(cfg.UStruct.PropsSize)+4), 4)

	pool := &NamePool{entries: map[uint32]string{1: "MyGame", 2: "FVector2D"}}
	ix := NewStructIndexer(mem, cfg, pool)
	fqn := FQN{Package: "MyGame", Name: "FVector2D"}
	st, _, err := ix.Index(structAddr, fqn, false, 0)
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	if st.Ident != "FFVector2D" {
		t.Errorf("Ident = %q, want FFVector2D", st.Ident)
	}
	if st.Parent != nil {
		t.Errorf("Parent = %v, want nil", st.Parent)
	}
}
