package sdk

import (
	"testing"

	"github.com/itsethra/uesdk/internal/offsets"
	"github.com/itsethra/uesdk/internal/rproc"
)

func TestFunctionIndexerPartitionsOutParams(t *testing.T) {
	cfg := offsets.Default()
	mem := newFakeMem()

	const pkgAddr rproc.Address = 0x2100
	const ownerAddr rproc.Address = 0x2200
	const fnAddr rproc.Address = 0x2300

	const arg1 rproc.Address = 0x2400
	const class1 rproc.Address = 0x2410
	const arg2 rproc.Address = 0x2500
	const class2 rproc.Address = 0x2510
	const arg3 rproc.Address = 0x2600
	const class3 rproc.Address = 0x2610

	putPackageObject(mem, cfg, pkgAddr, 1)
	putObject(mem, cfg, ownerAddr, pkgAddr, 2)
	putObject(mem, cfg, fnAddr, ownerAddr, 3)

	mem.putAddr(fnAddr.Add(int64(cfg.UStruct.ChildrenProps)), arg1)
	mem.putU32(fnAddr.Add(int64(cfg.UFunction.Flags)), 0x10)

	// CPF_Parm (0x80) is set on every function parameter, in or out;
	// only CPF_OutParm (0x100) distinguishes an out-param. Exercising
	// both bits together catches a regression to the wrong ABI value.
	const cpfParm = 1 << 7
	putField(mem, cfg, arg1, class1, arg2, 10, 11, 4, 1, 0, cpfParm)               // IntProperty A, not out
	putField(mem, cfg, arg2, class2, arg3, 20, 21, 4, 1, 4, cpfParm|cpfOutParm) // FloatProperty OutX
	putField(mem, cfg, arg3, class3, 0, 20, 22, 4, 1, 8, cpfParm|cpfOutParm)    // FloatProperty OutY

	pool := &NamePool{entries: map[uint32]string{
		1:  "MyGame",
		2:  "MyClass",
		3:  "DoThing",
		10: "IntProperty",
		11: "A",
		20: "FloatProperty",
		21: "OutX",
		22: "OutY",
	}}

	ix := NewFunctionIndexer(mem, cfg, pool)
	fqn := FQN{Package: "MyGame", Name: "DoThing"}
	fn, owner, _, err := ix.Index(fnAddr, fqn, 42)
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	if owner != (FQN{Package: "MyGame", Name: "MyClass"}) {
		t.Errorf("owner = %v, want MyGame.MyClass", owner)
	}
	if fn.Ident != "DoThing" {
		t.Errorf("Ident = %q, want DoThing", fn.Ident)
	}
	if fn.Flags != 0x10 {
		t.Errorf("Flags = %#x, want 0x10", fn.Flags)
	}
	if len(fn.Args) != 1 || fn.Args[0].Name != "A" {
		t.Fatalf("Args = %+v, want one arg named A", fn.Args)
	}
	if len(fn.Returns) != 2 {
		t.Fatalf("Returns = %+v, want 2 out params", fn.Returns)
	}
	if fn.Returns[0].Name != "OutX" || fn.Returns[1].Name != "OutY" {
		t.Errorf("Returns = %+v, want OutX then OutY in declared order", fn.Returns)
	}
}
