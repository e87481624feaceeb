package sdk

import (
	"testing"

	"gonum.org/v1/gonum/graph/topo"
)

func structObject(fqn FQN, parent *FQN, fields []Field) *Object {
	return &Object{Struct: &Struct{
		FQN:    fqn,
		Ident:  fqn.Name,
		Parent: parent,
		Layout: Layout{Size: 16, Align: 8},
		Fields: fields,
	}}
}

func TestPackageGraphEliminatesThreeWayCycle(t *testing.T) {
	pg := NewPackageGraph()

	aFQN := FQN{Package: "A", Name: "Thing"}
	bFQN := FQN{Package: "B", Name: "Thing"}
	cFQN := FQN{Package: "C", Name: "Thing"}

	pg.AddObject("A", structObject(aFQN, nil, nil))
	pg.AddObject("B", structObject(bFQN, nil, nil))
	pg.AddObject("C", structObject(cFQN, nil, nil))

	pg.AddReferences("A", []FQN{bFQN})
	pg.AddReferences("B", []FQN{cFQN})
	pg.AddReferences("C", []FQN{aFQN})

	sccs := topo.TarjanSCC(pg.Graph())
	foundCycle := false
	for _, scc := range sccs {
		if len(scc) >= 2 {
			foundCycle = true
		}
	}
	if !foundCycle {
		t.Fatal("expected a 3-way SCC before elimination")
	}

	reports := pg.EliminateCycles()
	if len(reports) != 1 {
		t.Fatalf("got %d elimination reports, want 1: %+v", len(reports), reports)
	}
	if len(reports[0].Chain) != 4 {
		t.Errorf("Chain = %v, want 3 packages plus the repeated start closing the loop", reports[0].Chain)
	}

	sccsAfter := topo.TarjanSCC(pg.Graph())
	for _, scc := range sccsAfter {
		if len(scc) >= 2 {
			t.Fatalf("cycle survived elimination: %v", scc)
		}
	}

	if len(pg.Packages()) != 1 {
		t.Errorf("got %d packages after absorption, want 1 (all three merged)", len(pg.Packages()))
	}
	merged := pg.Packages()[0]
	if len(merged.Objects) != 3 {
		t.Errorf("merged package has %d objects, want 3", len(merged.Objects))
	}
}

func TestPackageGraphAddReferencesSkipsSelfEdges(t *testing.T) {
	pg := NewPackageGraph()

	pluginFQN := FQN{Package: "Plugin", Name: "Helper"}
	gameFQN := FQN{Package: "Game", Name: "Main"}

	// Simulates a merge-map rewrite (spec.md §6 DumperOptions.merge_map):
	// the caller folds "Plugin" into "Game" before ever calling
	// AddObject/AddReferences, so both objects land in the same node.
	pg.AddObject("Game", structObject(pluginFQN, nil, nil))
	pg.AddObject("Game", structObject(gameFQN, nil, nil))

	pg.AddReferences("Game", []FQN{gameFQN, pluginFQN})

	id, ok := pg.NodeID("Game")
	if !ok {
		t.Fatal("Game node missing")
	}
	it := pg.Graph().From(id)
	if it.Next() {
		t.Errorf("expected no outgoing edges for a merged intra-package reference, found one to node %d", it.Node().ID())
	}
}

func TestPackageGraphShrinkReducesParentSize(t *testing.T) {
	pg := NewPackageGraph()

	parentFQN := FQN{Package: "Game", Name: "Base"}
	childFQN := FQN{Package: "Game", Name: "Derived"}

	parent := structObject(parentFQN, nil, nil)
	child := structObject(childFQN, &parentFQN, []Field{{Property: &Property{Name: "X", Offset: 8, ElemSize: 4, ArrayDim: 1}}})

	pg.AddObject("Game", parent)
	pg.AddObject("Game", child)
	pg.Shrink()

	if parent.Struct.Shrink == nil {
		t.Fatal("expected parent.Shrink to be set")
	}
	if *parent.Struct.Shrink != 8 {
		t.Errorf("Shrink = %d, want 8", *parent.Struct.Shrink)
	}
	if parent.Struct.EffectiveSize() != 8 {
		t.Errorf("EffectiveSize() = %d, want 8", parent.Struct.EffectiveSize())
	}
}
