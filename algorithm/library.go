package algorithm

import (
	_ "embed"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/sixop/sixop"
	"gopkg.in/yaml.v2"
)

//go:embed algorithms.yml
var builtinYAML []byte

// Library holds the compiled topologies by id. It is built once at startup
// and only read afterwards, so it can be shared by any number of voices.
type Library struct {
	topologies map[int]*Topology
	ids        []int
	fallback   *Topology
}

// Builtin returns the library of the 32 DX7 algorithms plus the extra
// topologies shipped with the synth.
func Builtin() *Library {
	lib, err := Parse(builtinYAML)
	if err != nil {
		panic(fmt.Sprintf("builtin algorithm library is broken: %v", err))
	}
	return lib
}

// LoadFile reads a library from a YAML file.
func LoadFile(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read algorithm file: %w", err)
	}
	lib, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("algorithm file %v: %w", path, err)
	}
	return lib, nil
}

// Parse decodes a YAML list of algorithm definitions. Only a document that
// cannot be decoded at all is an error; a malformed definition is logged and
// replaced by the all-carrier fallback under the same id, and a definition
// without a usable id is skipped.
func Parse(data []byte) (*Library, error) {
	var defs []sixop.AlgorithmDef
	if err := yaml.UnmarshalStrict(data, &defs); err != nil {
		return nil, fmt.Errorf("could not decode algorithm definitions: %w", err)
	}
	return New(defs), nil
}

// New compiles the given definitions into a library. Later definitions with
// the same id replace earlier ones.
func New(defs []sixop.AlgorithmDef) *Library {
	lib := &Library{topologies: make(map[int]*Topology, len(defs))}
	lib.fallback, _ = Compile(sixop.DefaultAlgorithm(0))
	for _, def := range defs {
		if def.ID <= 0 {
			log.Printf("algorithm %q has no valid id (%d), skipped", def.Name, def.ID)
			continue
		}
		t, err := Compile(def)
		if err != nil {
			log.Printf("algorithm %d: %v; using the all-carrier fallback", def.ID, err)
		}
		if _, ok := lib.topologies[def.ID]; ok {
			log.Printf("algorithm %d defined twice, using the last definition", def.ID)
		} else {
			lib.ids = append(lib.ids, def.ID)
		}
		lib.topologies[def.ID] = t
	}
	sort.Ints(lib.ids)
	return lib
}

// Get returns the topology for id, or the all-carrier fallback when the id is
// unknown. It never returns nil and never allocates.
func (l *Library) Get(id int) *Topology {
	if t, ok := l.topologies[id]; ok {
		return t
	}
	return l.fallback
}

// Has reports whether id is defined in the library.
func (l *Library) Has(id int) bool {
	_, ok := l.topologies[id]
	return ok
}

// IDs returns the defined ids in ascending order.
func (l *Library) IDs() []int { return l.ids }

func (l *Library) Len() int { return len(l.ids) }
