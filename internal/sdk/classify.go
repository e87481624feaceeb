package sdk

import (
	"github.com/itsethra/uesdk/internal/offsets"
	"github.com/itsethra/uesdk/internal/rproc"
)

// Classifier is component C6 (spec.md §4.6): it walks the flattened
// object table once and buckets every address by what kind of
// reflection record it is, before any indexing happens. Structs and
// enums are indexed in the same pass that follows (C7/C8); functions
// are deferred to a second pass (C10) because a function's owner
// (the struct it is attached to) must already exist in the FQN index.
type Classifier struct {
	r        rproc.MemoryReader
	pool     *NamePool
	mergeMap map[string]string
}

func NewClassifier(r rproc.MemoryReader, pool *NamePool, mergeMap map[string]string) *Classifier {
	return &Classifier{r: r, pool: pool, mergeMap: mergeMap}
}

// StructEntry is one ScriptStruct or Class instance awaiting C8
// indexing; IsUObject distinguishes the two (spec.md §4.6 step 3).
type StructEntry struct {
	Addr      rproc.Address
	IsUObject bool
}

// Classification is the bucketed output of one classify pass.
type Classification struct {
	EnumAddrs     []rproc.Address
	StructAddrs   []StructEntry
	FunctionAddrs []rproc.Address
	Orphans       int // objects with no outer; skipped rather than indexed
}

var (
	enumClassFQN     = FQN{Package: "CoreUObject", Name: "Enum"}
	structClassFQN   = FQN{Package: "CoreUObject", Name: "ScriptStruct"}
	classClassFQN    = FQN{Package: "CoreUObject", Name: "Class"}
	functionClassFQN = FQN{Package: "CoreUObject", Name: "Function"}
)

// Classify buckets every address in addrs. Dispatch is by is_a
// (spec.md §4.6, §4.5): each object's own class is walked up its
// super_struct chain looking for one of the four well-known
// metaclasses, not compared for exact equality, since shipped engines
// classify most real objects (e.g. Blueprint-generated classes) under
// a subclass of Class/ScriptStruct/Enum/Function rather than the
// metaclass itself.
func (c *Classifier) Classify(cfg offsets.Config, addrs []rproc.Address) (*Classification, error) {
	out := &Classification{}
	for _, addr := range addrs {
		obj := objectRef{r: c.r, cfg: cfg, addr: addr}

		outer, err := obj.outerAddr()
		if err != nil {
			return nil, err
		}
		if outer == 0 {
			out.Orphans++
			continue
		}

		isEnum, err := obj.isA(c.pool, enumClassFQN)
		if err != nil {
			return nil, err
		}
		if isEnum {
			out.EnumAddrs = append(out.EnumAddrs, addr)
			continue
		}

		isStruct, err := obj.isA(c.pool, structClassFQN)
		if err != nil {
			return nil, err
		}
		if isStruct {
			out.StructAddrs = append(out.StructAddrs, StructEntry{Addr: addr, IsUObject: false})
			continue
		}

		isClass, err := obj.isA(c.pool, classClassFQN)
		if err != nil {
			return nil, err
		}
		if isClass {
			out.StructAddrs = append(out.StructAddrs, StructEntry{Addr: addr, IsUObject: true})
			continue
		}

		isFunction, err := obj.isA(c.pool, functionClassFQN)
		if err != nil {
			return nil, err
		}
		if isFunction {
			out.FunctionAddrs = append(out.FunctionAddrs, addr)
			continue
		}

		// Anything else (a property, a package, a plain instance)
		// isn't a reflected type and carries no FQN of its own.
	}
	return out, nil
}

// objectFQN computes obj's FQN. This is the object's un-merged
// identity: every Ptr/Inline/parent/owner reference elsewhere in the
// pipeline is also computed from the raw outer chain, so they always
// agree regardless of where the merge map later places the object's
// package node (SPEC_FULL.md supplemented feature #1; spec.md §4.11
// "Construction" merges node placement, not object identity).
func (c *Classifier) objectFQN(obj objectRef) (FQN, error) {
	return obj.fqn(c.pool)
}

// packageIdent sanitizes a package name into an identifier and then
// applies the merge-map rewrite (spec.md §6 DumperOptions.merge_map)
// to it, for node placement only.
func (c *Classifier) packageIdent(pkg string) string {
	ident := sanitizeIdent(pkg)
	if consumer, ok := c.mergeMap[ident]; ok {
		return consumer
	}
	return ident
}
