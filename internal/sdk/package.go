package sdk

import (
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// pkgNode is one PackageGraph node. It satisfies graph.Node (via ID)
// and gonum's dot.Node (via DOTID) so the graph built here can be
// handed straight to graph/encoding/dot by an external collaborator
// without a second traversal.
type pkgNode struct {
	id      int64
	ident   string
	objects []*Object
}

func (n *pkgNode) ID() int64      { return n.id }
func (n *pkgNode) DOTID() string  { return n.ident }

// CycleElimination is one record of the §4.11 cycle-breaking loop,
// returned so an external collaborator can log it - the core itself
// never logs (spec.md §6: logging lies outside the core).
type CycleElimination struct {
	Chain    []string
	Consumer string
}

// PackageGraph is component C11 (spec.md §4.11): nodes are packages,
// edges are cross-package references discovered during indexing.
type PackageGraph struct {
	g         *simple.DirectedGraph
	byIdent   map[string]*pkgNode
	byID      map[int64]*pkgNode
	fqnNode   map[FQN]int64
	fqnObject map[FQN]*Object
	nextID    int64
}

func NewPackageGraph() *PackageGraph {
	return &PackageGraph{
		g:         simple.NewDirectedGraph(),
		byIdent:   make(map[string]*pkgNode),
		byID:      make(map[int64]*pkgNode),
		fqnNode:   make(map[FQN]int64),
		fqnObject: make(map[FQN]*Object),
	}
}

func (pg *PackageGraph) nodeFor(ident string) *pkgNode {
	if n, ok := pg.byIdent[ident]; ok {
		return n
	}
	n := &pkgNode{id: pg.nextID, ident: ident}
	pg.nextID++
	pg.byIdent[ident] = n
	pg.byID[n.id] = n
	pg.g.AddNode(n)
	return n
}

// AddObject places obj into the package node named ident, keyed by
// its outer's sanitized (and possibly merge-rewritten) name (spec.md
// §4.11 "Construction"). Call this for every indexed object before
// calling AddReferences.
func (pg *PackageGraph) AddObject(ident string, obj *Object) {
	n := pg.nodeFor(ident)
	n.objects = append(n.objects, obj)
	pg.fqnNode[obj.FQN()] = n.id
	pg.fqnObject[obj.FQN()] = obj
}

// AddReferences records the foreign FQNs collected while indexing the
// object(s) owned by ident, turning each into a directed edge toward
// the target's home node (spec.md §4.11 "Edges"). Call this only
// after every AddObject call has completed, so forward references
// resolve.
func (pg *PackageGraph) AddReferences(ident string, foreign []FQN) {
	n := pg.nodeFor(ident)
	for _, f := range foreign {
		targetID, ok := pg.fqnNode[f]
		if !ok || targetID == n.id {
			continue
		}
		if pg.g.HasEdgeFromTo(n.id, targetID) {
			continue
		}
		pg.g.SetEdge(pg.g.NewEdge(n, pg.byID[targetID]))
	}
}

// Shrink runs the §4.11 "Shrink pass": for every struct/class with a
// resolvable parent and a non-empty field list, it reduces the
// parent's effective size to the subclass's first field offset when
// that's tighter than the parent's own layout size.
func (pg *PackageGraph) Shrink() {
	for _, n := range pg.byID {
		for _, obj := range n.objects {
			if obj.Kind() == ObjectEnum {
				continue
			}
			st := obj.Struct
			if len(st.Fields) == 0 || st.Parent == nil {
				continue
			}
			parentObj, ok := pg.fqnObject[*st.Parent]
			if !ok {
				continue
			}
			parent := parentObj.Struct
			firstOffset := st.Fields[0].Offset()
			if firstOffset >= parent.Layout.Size {
				continue
			}
			if parent.Shrink == nil || firstOffset < *parent.Shrink {
				v := firstOffset
				parent.Shrink = &v
			}
		}
	}
}

// EliminateCycles runs the §4.11 cycle-elimination loop to
// completion: repeatedly find an SCC of size ≥2, find one cycle
// inside it, absorb all but one of its members into that one
// (the "consumer"), and repeat until the graph is a DAG.
func (pg *PackageGraph) EliminateCycles() []CycleElimination {
	var reports []CycleElimination
	for {
		sccs := topo.TarjanSCC(pg.g)
		absorbedAny := false
		for _, scc := range sccs {
			if len(scc) < 2 {
				continue
			}
			members := make(map[int64]bool, len(scc))
			for _, node := range scc {
				members[node.ID()] = true
			}
			cycle := pg.findCycle(members)
			if cycle == nil {
				continue
			}
			reports = append(reports, pg.absorb(cycle))
			absorbedAny = true
			break // graph mutated; recompute SCCs from scratch
		}
		if !absorbedAny {
			return reports
		}
	}
}

// findCycle runs a DFS restricted to members, recording each node's
// position on the current chain. The first time a neighbor is found
// already on the chain, the cycle is chain[i:] plus that neighbor
// (spec.md §4.11 step 2a).
func (pg *PackageGraph) findCycle(members map[int64]bool) []int64 {
	var start int64
	for id := range members {
		start = id
		break
	}

	var chain []int64
	onChain := make(map[int64]int)
	var found []int64

	var dfs func(id int64) bool
	dfs = func(id int64) bool {
		if pos, ok := onChain[id]; ok {
			found = append(append([]int64{}, chain[pos:]...), id)
			return true
		}
		onChain[id] = len(chain)
		chain = append(chain, id)

		it := pg.g.From(id)
		for it.Next() {
			nb := it.Node().ID()
			if !members[nb] {
				continue
			}
			if dfs(nb) {
				return true
			}
		}
		chain = chain[:len(chain)-1]
		delete(onChain, id)
		return false
	}
	dfs(start)
	return found
}

// absorb consumes cycle[1:len-1] into cycle[0] (spec.md §4.11 step
// 2b): cycle[0] and cycle[len-1] name the same node (the DFS closed
// the loop there), so the intermediates are strictly in between.
func (pg *PackageGraph) absorb(cycle []int64) CycleElimination {
	chainIdents := make([]string, len(cycle))
	for i, id := range cycle {
		chainIdents[i] = pg.byID[id].ident
	}

	consumer := cycle[0]
	consumerNode := pg.byID[consumer]

	for i := len(cycle) - 2; i >= 1; i-- {
		v := cycle[i]
		vNode := pg.byID[v]

		var inFrom []int64
		toV := pg.g.To(v)
		for toV.Next() {
			inFrom = append(inFrom, toV.Node().ID())
		}
		for _, from := range inFrom {
			pg.g.RemoveEdge(from, v)
			if from == consumer {
				continue
			}
			if !pg.g.HasEdgeFromTo(from, consumer) {
				pg.g.SetEdge(pg.g.NewEdge(pg.byID[from], consumerNode))
			}
		}

		var outTo []int64
		fromV := pg.g.From(v)
		for fromV.Next() {
			outTo = append(outTo, fromV.Node().ID())
		}
		for _, to := range outTo {
			pg.g.RemoveEdge(v, to)
			if to == consumer {
				continue
			}
			if !pg.g.HasEdgeFromTo(consumer, to) {
				pg.g.SetEdge(pg.g.NewEdge(consumerNode, pg.byID[to]))
			}
		}

		consumerNode.objects = append(consumerNode.objects, vNode.objects...)
		for _, obj := range vNode.objects {
			pg.fqnNode[obj.FQN()] = consumer
		}
		vNode.objects = nil

		pg.g.RemoveNode(v)
		delete(pg.byID, v)
		delete(pg.byIdent, vNode.ident)
	}

	return CycleElimination{Chain: chainIdents, Consumer: consumerNode.ident}
}

// Graph exposes the underlying directed graph for read-only
// traversal (import-order resolution, DOT export) by external
// collaborators; the core never mutates it again after pipeline
// completion.
func (pg *PackageGraph) Graph() graph.Directed { return pg.g }

// Packages returns every remaining package node in ascending node-id
// order, i.e. the order in which packages were first created during
// indexing.
func (pg *PackageGraph) Packages() []*Package {
	ids := make([]int64, 0, len(pg.byID))
	for id := range pg.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]*Package, 0, len(ids))
	for _, id := range ids {
		n := pg.byID[id]
		out = append(out, &Package{Ident: n.ident, Objects: n.objects})
	}
	return out
}

// NodeID resolves a package ident to its graph node id.
func (pg *PackageGraph) NodeID(ident string) (int64, bool) {
	n, ok := pg.byIdent[ident]
	if !ok {
		return 0, false
	}
	return n.id, true
}

// NodeIdent resolves a graph node id back to its package ident.
func (pg *PackageGraph) NodeIdent(id int64) (string, bool) {
	n, ok := pg.byID[id]
	if !ok {
		return "", false
	}
	return n.ident, true
}

// Lookup resolves fqn to its package ident and object, if present.
func (pg *PackageGraph) Lookup(fqn FQN) (*Object, string, bool) {
	id, ok := pg.fqnNode[fqn]
	if !ok {
		return nil, "", false
	}
	return pg.fqnObject[fqn], pg.byID[id].ident, true
}
