package sixop

import (
	"errors"
	"fmt"
)

// AlgorithmDef is one modulation topology. Operators are numbered 1-6 as on
// the DX7 panel. A connection [from, to] means that the output of operator
// "from" modulates the phase of operator "to"; from == to is self-feedback.
type AlgorithmDef struct {
	ID          int     `yaml:"id"`
	Name        string  `yaml:"name"`
	Carriers    []int   `yaml:"carriers,flow"`
	Connections [][]int `yaml:"connections,flow"`
}

var ErrInvalidAlgorithm = errors.New("invalid algorithm definition")

// Validate reports the first structural problem of the definition.
func (a *AlgorithmDef) Validate() error {
	if a.ID <= 0 {
		return fmt.Errorf("id %d is not positive: %w", a.ID, ErrInvalidAlgorithm)
	}
	if len(a.Carriers) == 0 {
		return fmt.Errorf("algorithm %d has no carriers: %w", a.ID, ErrInvalidAlgorithm)
	}
	var seen [NumOperators + 1]bool
	for _, c := range a.Carriers {
		if c < 1 || c > NumOperators {
			return fmt.Errorf("algorithm %d: carrier %d out of range: %w", a.ID, c, ErrInvalidAlgorithm)
		}
		if seen[c] {
			return fmt.Errorf("algorithm %d: carrier %d listed twice: %w", a.ID, c, ErrInvalidAlgorithm)
		}
		seen[c] = true
	}
	for _, conn := range a.Connections {
		if len(conn) != 2 {
			return fmt.Errorf("algorithm %d: connection %v is not a [from, to] pair: %w", a.ID, conn, ErrInvalidAlgorithm)
		}
		for _, op := range conn {
			if op < 1 || op > NumOperators {
				return fmt.Errorf("algorithm %d: connection %v out of range: %w", a.ID, conn, ErrInvalidAlgorithm)
			}
		}
	}
	return nil
}

// DefaultAlgorithm is the fallback used when a definition is missing or
// malformed: all six operators are carriers and nothing is modulated.
func DefaultAlgorithm(id int) AlgorithmDef {
	return AlgorithmDef{ID: id, Name: "All Carriers (fallback)", Carriers: []int{1, 2, 3, 4, 5, 6}}
}
