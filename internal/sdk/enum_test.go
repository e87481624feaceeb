package sdk

import (
	"testing"

	"github.com/itsethra/uesdk/internal/offsets"
	"github.com/itsethra/uesdk/internal/rproc"
)

// buildEnum lays out a UObject+UEnum instance at addr, with pkgAddr as
// its terminal outer, and writes its variant array at variantsAddr.
func buildEnum(mem *fakeMem, cfg offsets.Config, addr, pkgAddr, variantsAddr rproc.Address, nameID, pkgNameID uint32, variants []enumVariantRaw) {
	mem.putU32(addr.Add(int64(cfg.UObject.Name)), nameID)
	mem.putAddr(addr.Add(int64(cfg.UObject.Outer)), pkgAddr)
	mem.putAddr(addr.Add(int64(cfg.UEnum.Names)), variantsAddr)
	mem.putI32(addr.Add(int64(cfg.UEnum.Names)+tArrayNumOff), int32(len(variants)))

	mem.putU32(pkgAddr.Add(int64(cfg.UObject.Name)), pkgNameID)
	mem.putAddr(pkgAddr.Add(int64(cfg.UObject.Outer)), 0)

	for i, v := range variants {
		elem := variantsAddr.Add(int64(i) * enumVariantStride)
		mem.putU64(elem, uint64(v.NameID))
		mem.putI64(elem.Add(8), v.Value)
	}
}

func TestEnumIndexerDropsMaxAndStripsQualifiers(t *testing.T) {
	cfg := offsets.Default()
	mem := newFakeMem()

	const enumAddr rproc.Address = 0x5000
	const pkgAddr rproc.Address = 0x6000
	const variantsAddr rproc.Address = 0x7000

	buildEnum(mem, cfg, enumAddr, pkgAddr, variantsAddr, 1, 2, []enumVariantRaw{
		{NameID: 3, Value: 0},
		{NameID: 4, Value: 1},
		{NameID: 5, Value: 2},
		{NameID: 6, Value: 3},
	})

	pool := &NamePool{entries: map[uint32]string{
		1: "EMyEnum",
		2: "/Script/MyGame",
		3: "EMyEnum::Alpha",
		4: "EMyEnum::Beta",
		5: "EMyEnum::Gamma",
		6: "EMyEnum::EMyEnum_MAX",
	}}

	ix := NewEnumIndexer(mem, cfg, pool)
	fqn := FQN{Package: "MyGame", Name: "EMyEnum"}
	e, err := ix.Index(enumAddr, fqn)
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	if e.Ident != "EMyEnum" {
		t.Errorf("Ident = %q, want EMyEnum", e.Ident)
	}
	want := []EnumVariant{
		{Ident: "Alpha", Value: 0},
		{Ident: "Beta", Value: 1},
		{Ident: "Gamma", Value: 2},
	}
	if len(e.Variants) != len(want) {
		t.Fatalf("got %d variants, want %d: %+v", len(e.Variants), len(want), e.Variants)
	}
	for i, w := range want {
		if e.Variants[i] != w {
			t.Errorf("variant[%d] = %+v, want %+v", i, e.Variants[i], w)
		}
	}
	if e.Layout.Size != 1 {
		t.Errorf("Layout.Size = %d, want 1 (max value 2 fits in a byte)", e.Layout.Size)
	}
}

func TestEnumLayoutSizeMinimality(t *testing.T) {
	cases := []struct {
		name string
		vals []int64
		want int64
	}{
		{"negative one", []int64{-1}, 1},
		{"positive boundary 128", []int64{128}, 1},
		{"just past int8 boundary", []int64{-129}, 2},
		{"needs four bytes", []int64{70000}, 4},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			variants := make([]EnumVariant, len(c.vals))
			for i, v := range c.vals {
				variants[i] = EnumVariant{Ident: "V", Value: v}
			}
			got := enumLayout(variants)
			if got.Size != c.want {
				t.Errorf("enumLayout(%v).Size = %d, want %d", c.vals, got.Size, c.want)
			}
		})
	}
}
