package algorithm_test

import (
	"errors"
	"math"
	"testing"

	"github.com/sixop/sixop"
	"github.com/sixop/sixop/algorithm"
)

type countingOp struct {
	calls   int
	out     float64
	lastMod float64
}

func (o *countingOp) Process(mod float64) float64 {
	o.calls++
	o.lastMod = mod
	return o.out
}

func newOps(out float64) (*[6]algorithm.Operator, []*countingOp) {
	var ops [6]algorithm.Operator
	counters := make([]*countingOp, 6)
	for i := range ops {
		counters[i] = &countingOp{out: out}
		ops[i] = counters[i]
	}
	return &ops, counters
}

func TestEveryBuiltinAlgorithmEvaluatesEachOperatorOnce(t *testing.T) {
	lib := algorithm.Builtin()
	if lib.Len() < 32 {
		t.Fatalf("expected at least 32 algorithms, got %d", lib.Len())
	}
	for _, id := range lib.IDs() {
		topo := lib.Get(id)
		ops, counters := newOps(1)
		var outputs [6]float64
		sum := topo.Evaluate(ops, &outputs)
		for i, c := range counters {
			if c.calls != 1 {
				t.Errorf("algorithm %d: operator %d processed %d times, expected once", id, i+1, c.calls)
			}
		}
		if want := math.Sqrt(float64(topo.NumCarriers())); math.Abs(sum-want) > 1e-12 {
			t.Errorf("algorithm %d: carrier sum %v, expected %v", id, sum, want)
		}
	}
}

func TestCarrierGain(t *testing.T) {
	for _, k := range []int{1, 2, 3, 6} {
		if got, want := algorithm.CarrierGain(k), 1/math.Sqrt(float64(k)); math.Abs(got-want) > 1e-15 {
			t.Errorf("CarrierGain(%d) = %v, expected %v", k, got, want)
		}
	}
}

func TestModulationFlowsAlongConnections(t *testing.T) {
	topo, err := algorithm.Compile(sixop.AlgorithmDef{ID: 99, Carriers: []int{1}, Connections: [][]int{{2, 1}, {3, 2}, {4, 1}}})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	ops, counters := newOps(0.25)
	var outputs [6]float64
	sum := topo.Evaluate(ops, &outputs)
	if counters[0].lastMod != 0.5 {
		t.Errorf("operator 1 got modulation %v, expected 0.5 (operators 2 and 4)", counters[0].lastMod)
	}
	if counters[1].lastMod != 0.25 {
		t.Errorf("operator 2 got modulation %v, expected 0.25", counters[1].lastMod)
	}
	if counters[2].lastMod != 0 {
		t.Errorf("operator 3 got modulation %v, expected 0", counters[2].lastMod)
	}
	if sum != 0.25 {
		t.Errorf("carrier sum %v, expected 0.25", sum)
	}
	if topo.Cyclic() {
		t.Error("acyclic topology reported as cyclic")
	}
}

func TestCyclicTopologyDegradesGracefully(t *testing.T) {
	topo, err := algorithm.Compile(sixop.AlgorithmDef{ID: 40, Carriers: []int{1}, Connections: [][]int{{1, 2}, {2, 1}, {3, 1}}})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if !topo.Cyclic() {
		t.Fatal("expected a cyclic topology")
	}
	if got := topo.Unresolved(); len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Errorf("unresolved operators %v, expected [0 1]", got)
	}
	ops, counters := newOps(1)
	var outputs [6]float64
	topo.Evaluate(ops, &outputs)
	for i, c := range counters {
		if c.calls != 1 {
			t.Errorf("operator %d processed %d times", i+1, c.calls)
		}
	}
	if counters[0].lastMod != 0 || counters[1].lastMod != 0 {
		t.Error("operators on a cycle should be processed without modulation")
	}
	if !algorithm.Builtin().Get(35).Cyclic() {
		t.Error("algorithm 35 should be cyclic")
	}
}

func TestSelfFeedbackIsNotACycle(t *testing.T) {
	topo, err := algorithm.Compile(sixop.AlgorithmDef{ID: 41, Carriers: []int{1}, Connections: [][]int{{2, 1}, {2, 2}}})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if topo.Cyclic() || !topo.SelfFeedback(1) || topo.SelfFeedback(0) {
		t.Errorf("self feedback misdetected: cyclic %v, op2 %v, op1 %v", topo.Cyclic(), topo.SelfFeedback(1), topo.SelfFeedback(0))
	}
}

func TestMalformedDefinitionFallsBack(t *testing.T) {
	defs := []sixop.AlgorithmDef{
		{ID: 50, Carriers: []int{7}},
		{ID: 51, Carriers: nil},
		{ID: 52, Carriers: []int{1}, Connections: [][]int{{1}}},
		{ID: 53, Carriers: []int{1, 1}},
	}
	for _, def := range defs {
		topo, err := algorithm.Compile(def)
		if !errors.Is(err, sixop.ErrInvalidAlgorithm) {
			t.Errorf("algorithm %d: expected ErrInvalidAlgorithm, got %v", def.ID, err)
		}
		if topo == nil || topo.ID() != def.ID || topo.NumCarriers() != 6 || len(topo.Modulators(0)) != 0 {
			t.Errorf("algorithm %d: expected the all-carrier fallback", def.ID)
		}
	}
}

func TestLibrary(t *testing.T) {
	lib, err := algorithm.Parse([]byte(`
- id: 1
  name: "Stack"
  carriers: [1]
  connections: [[2, 1]]
- id: 2
  name: "Broken"
  carriers: [9]
`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if lib.Len() != 2 || !lib.Has(1) || !lib.Has(2) || lib.Has(3) {
		t.Fatalf("unexpected library ids %v", lib.IDs())
	}
	if lib.Get(2).NumCarriers() != 6 {
		t.Error("malformed definition should compile to the fallback")
	}
	unknown := lib.Get(3)
	if unknown == nil || unknown.NumCarriers() != 6 {
		t.Error("unknown id should give the fallback")
	}
	router := algorithm.NewRouter(lib)
	ops, _ := newOps(1)
	var outputs [6]float64
	if got := router.Route(1, ops, &outputs); got != 1 {
		t.Errorf("Route(1) = %v, expected 1", got)
	}
	if _, err := algorithm.Parse([]byte("- id: 1\n  carriers: [1]\n  color: red\n")); err == nil {
		t.Error("unknown field should be an error")
	}
	if _, err := algorithm.Parse([]byte("{{{")); err == nil {
		t.Error("invalid YAML should be an error")
	}
}
