package algorithm

import (
	"math"

	"github.com/sixop/sixop"
)

const numOps = sixop.NumOperators

// maxPasses bounds the fixed point pass that resolves the evaluation order.
const maxPasses = 2 * numOps

type (
	// Operator is anything the router can evaluate: it takes the summed phase
	// modulation of its modulators and returns its output for this sample.
	Operator interface {
		Process(modulation float64) float64
	}

	// Topology is a compiled AlgorithmDef. Operators are indexed 0-5 here.
	//
	// The evaluation order is resolved once, when the topology is compiled:
	// an operator is ready when all of its modulators have been evaluated;
	// the pass repeats until nothing new becomes ready or maxPasses is
	// reached. Operators that never become ready (they sit on a cycle, or
	// depend on one) are evaluated last with zero modulation, so cyclic
	// definitions degrade gracefully instead of looping.
	Topology struct {
		def         sixop.AlgorithmDef
		carriers    [numOps]bool
		numCarriers int
		carrierGain float64
		selfLoop    [numOps]bool
		preds       [numOps][]int
		order       []int
		unresolved  []int
	}
)

// Compile builds a topology from a definition. Malformed definitions compile
// to the all-carrier fallback with the same id.
func Compile(def sixop.AlgorithmDef) (*Topology, error) {
	err := def.Validate()
	if err != nil {
		def = sixop.DefaultAlgorithm(def.ID)
	}
	t := &Topology{def: def}
	for _, c := range def.Carriers {
		if !t.carriers[c-1] {
			t.carriers[c-1] = true
			t.numCarriers++
		}
	}
	t.carrierGain = CarrierGain(t.numCarriers)
	var edges [numOps][numOps]bool
	for _, conn := range def.Connections {
		from, to := conn[0]-1, conn[1]-1
		if from == to {
			t.selfLoop[from] = true
			continue
		}
		if edges[from][to] {
			continue
		}
		edges[from][to] = true
		t.preds[to] = append(t.preds[to], from)
	}
	t.resolve()
	return t, err
}

func (t *Topology) resolve() {
	var resolved [numOps]bool
	for pass := 0; pass < maxPasses; pass++ {
		progress := false
		for i := 0; i < numOps; i++ {
			if resolved[i] {
				continue
			}
			ready := true
			for _, p := range t.preds[i] {
				if !resolved[p] {
					ready = false
					break
				}
			}
			if ready {
				resolved[i] = true
				t.order = append(t.order, i)
				progress = true
			}
		}
		if !progress {
			break
		}
	}
	for i := 0; i < numOps; i++ {
		if !resolved[i] {
			t.unresolved = append(t.unresolved, i)
		}
	}
}

// CarrierGain is the mix gain for k carriers: 1/√k keeps the perceived
// loudness similar across algorithms.
func CarrierGain(k int) float64 {
	if k <= 1 {
		return 1
	}
	return 1 / math.Sqrt(float64(k))
}

// Evaluate processes every operator exactly once and returns the scaled sum
// of the carriers. outputs receives the output of each operator.
func (t *Topology) Evaluate(ops *[numOps]Operator, outputs *[numOps]float64) float64 {
	for _, i := range t.order {
		mod := 0.0
		for _, p := range t.preds[i] {
			mod += outputs[p]
		}
		outputs[i] = ops[i].Process(mod)
	}
	for _, i := range t.unresolved {
		outputs[i] = ops[i].Process(0)
	}
	sum := 0.0
	for i := 0; i < numOps; i++ {
		if t.carriers[i] {
			sum += outputs[i]
		}
	}
	return sum * t.carrierGain
}

func (t *Topology) ID() int                 { return t.def.ID }
func (t *Topology) Name() string            { return t.def.Name }
func (t *Topology) Def() sixop.AlgorithmDef { return t.def }
func (t *Topology) NumCarriers() int        { return t.numCarriers }
func (t *Topology) IsCarrier(op int) bool   { return op >= 0 && op < numOps && t.carriers[op] }
func (t *Topology) SelfFeedback(op int) bool {
	return op >= 0 && op < numOps && t.selfLoop[op]
}

// Modulators returns the operators (0-based) that modulate op.
func (t *Topology) Modulators(op int) []int { return t.preds[op] }

// Order returns the resolved evaluation order, 0-based.
func (t *Topology) Order() []int { return t.order }

// Unresolved returns the operators evaluated with zero modulation because
// they sit on or behind a modulation cycle.
func (t *Topology) Unresolved() []int { return t.unresolved }

// Cyclic reports whether the definition contains a modulation cycle other
// than self-feedback.
func (t *Topology) Cyclic() bool { return len(t.unresolved) > 0 }
