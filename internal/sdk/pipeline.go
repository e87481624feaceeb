package sdk

import (
	"github.com/itsethra/uesdk/internal/offsets"
	"github.com/itsethra/uesdk/internal/rproc"
)

// Options is DumperOptions (spec.md §6): the run-specific addresses
// and policy knobs an external collaborator supplies, as distinct
// from OffsetConfig's per-target layout constants.
type Options struct {
	// ImageBase is the address the two offsets below are resolved
	// against.
	ImageBase rproc.Address
	// NamesBaseOffset locates the name pool within the target image.
	NamesBaseOffset int64
	// ObjectsBaseOffset locates the object array within the target image.
	ObjectsBaseOffset int64
	// MergeMap rewrites a package ident to another at classify time
	// (spec.md §6, §4.11 "Construction").
	MergeMap map[string]string
	// AllowCycles, if true, skips §4.11 cycle elimination entirely.
	AllowCycles bool
}

// Result is everything Core produces: the immutable SDK plus the
// cycle-elimination log an external collaborator may want to surface
// (the core itself never logs - spec.md §6).
type Result struct {
	SDK        *SDK
	Cycles     []CycleElimination
	ObjectsRead int
	Orphans     int
}

// Core runs the full reflection-graph reconstruction pipeline in one
// pass (spec.md §2 "Control flow"): read names, read object pointers,
// classify and index types, index functions, assign packages,
// populate dependency edges, shrink bases, break cycles.
func Core(r rproc.MemoryReader, cfg offsets.Config, opts Options) (*Result, error) {
	namesBase := opts.ImageBase.Add(opts.NamesBaseOffset)
	objectsBase := opts.ImageBase.Add(opts.ObjectsBaseOffset)

	pool, err := ReadNamePool(r, namesBase, cfg.Stride)
	if err != nil {
		return nil, err
	}
	table, err := ReadObjectTable(r, objectsBase, cfg.FUObjectItem)
	if err != nil {
		return nil, err
	}

	indexOf := make(map[rproc.Address]int, table.Len())
	for i, a := range table.Addrs() {
		indexOf[a] = i
	}

	classifier := NewClassifier(r, pool, opts.MergeMap)
	classification, err := classifier.Classify(cfg, table.Addrs())
	if err != nil {
		return nil, err
	}

	enumIx := NewEnumIndexer(r, cfg, pool)
	structIx := NewStructIndexer(r, cfg, pool)
	functionIx := NewFunctionIndexer(r, cfg, pool)

	pg := NewPackageGraph()

	type pending struct {
		ident   string
		foreign []FQN
	}
	var pendingRefs []pending

	for _, addr := range classification.EnumAddrs {
		fqn, err := classifier.objectFQN(objectRef{r: r, cfg: cfg, addr: addr})
		if err != nil {
			return nil, err
		}
		e, err := enumIx.Index(addr, fqn)
		if err != nil {
			return nil, err
		}
		ident := classifier.packageIdent(fqn.Package)
		pg.AddObject(ident, &Object{Enum: e})
		pendingRefs = append(pendingRefs, pending{ident: ident})
	}

	// structsByFQN lets the second function pass resolve owners. Keyed
	// by the object's un-merged FQN, same as PackageGraph's own FQN
	// indices, so a function/parent/foreign reference computed from the
	// raw outer chain always finds its target regardless of which node
	// the merge map later placed it in.
	structsByFQN := make(map[FQN]*Struct, len(classification.StructAddrs))

	for _, entry := range classification.StructAddrs {
		fqn, err := classifier.objectFQN(objectRef{r: r, cfg: cfg, addr: entry.Addr})
		if err != nil {
			return nil, err
		}
		st, foreign, err := structIx.Index(entry.Addr, fqn, entry.IsUObject, indexOf[entry.Addr])
		if err != nil {
			return nil, err
		}
		structsByFQN[fqn] = st
		ident := classifier.packageIdent(fqn.Package)
		pg.AddObject(ident, &Object{Struct: st})
		pendingRefs = append(pendingRefs, pending{ident: ident, foreign: foreign})
	}

	// Second pass (spec.md §4.6, §4.10): functions attach to their
	// already-indexed owners.
	for _, addr := range classification.FunctionAddrs {
		fqn, err := classifier.objectFQN(objectRef{r: r, cfg: cfg, addr: addr})
		if err != nil {
			return nil, err
		}
		fn, owner, foreign, err := functionIx.Index(addr, fqn, indexOf[addr])
		if err != nil {
			return nil, err
		}
		ownerStruct, ok := structsByFQN[owner]
		if !ok {
			continue // owner was filtered out; drop the function
		}
		ownerStruct.Functions = append(ownerStruct.Functions, fn)
		ident := classifier.packageIdent(fqn.Package)
		pendingRefs = append(pendingRefs, pending{ident: ident, foreign: foreign})
	}

	for _, p := range pendingRefs {
		if len(p.foreign) > 0 {
			pg.AddReferences(p.ident, p.foreign)
		}
	}

	pg.Shrink()

	var cycles []CycleElimination
	if !opts.AllowCycles {
		cycles = pg.EliminateCycles()
	}

	return &Result{
		SDK:         &SDK{pg: pg},
		Cycles:      cycles,
		ObjectsRead: table.Len(),
		Orphans:     classification.Orphans,
	}, nil
}
