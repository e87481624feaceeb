package sdk

// SDK is the immutable facade handed out at pipeline completion
// (spec.md §4.12, component C12). Nothing in this repository mutates
// it after Core returns; the package graph it wraps is only ever
// touched during construction and cycle elimination, both of which
// have already happened by the time a caller sees this value.
type SDK struct {
	pg *PackageGraph
}

// Packages iterates every package in the SDK, in the order the
// packages were first created during indexing.
func (s *SDK) Packages() []*Package { return s.pg.Packages() }

// Lookup resolves fqn to its object and owning package ident.
func (s *SDK) Lookup(fqn FQN) (*Object, string, bool) { return s.pg.Lookup(fqn) }

// OutNeighbors returns the package idents ident's node has an edge
// to - the cross-package references an emitter needs to resolve
// import ordering (spec.md §4.12, §6).
func (s *SDK) OutNeighbors(ident string) []string {
	id, ok := s.pg.NodeID(ident)
	if !ok {
		return nil
	}
	it := s.pg.Graph().From(id)
	var out []string
	for it.Next() {
		if name, ok := s.pg.NodeIdent(it.Node().ID()); ok {
			out = append(out, name)
		}
	}
	return out
}

// Graph exposes the underlying dependency graph for collaborators
// that need to traverse or render it directly (e.g. a DOT exporter).
func (s *SDK) Graph() *PackageGraph { return s.pg }

// Stats is an object-kind tally summed over every package (SPEC_FULL.md supplemented
// feature #5), grounded on the original dumper's end-of-run summary
// counters. It costs nothing beyond the indexing pass already done,
// so the facade computes it on demand rather than maintaining running
// counters through the pipeline.
type Stats struct {
	Packages  int
	Structs   int
	Classes   int
	Enums     int
	Functions int
}

// Stats tallies every package's objects into one summary a caller (the
// CLI, or a future codegen collaborator) can log without walking the
// graph itself.
func (s *SDK) Stats() Stats {
	var st Stats
	for _, pkg := range s.pg.Packages() {
		st.Packages++
		for _, obj := range pkg.Objects {
			switch obj.Kind() {
			case ObjectEnum:
				st.Enums++
			case ObjectClass:
				st.Classes++
				st.Functions += len(obj.Struct.Functions)
			case ObjectStruct:
				st.Structs++
				st.Functions += len(obj.Struct.Functions)
			}
		}
	}
	return st
}
