package algorithm

// Router evaluates the operators of a voice with the topology selected by an
// algorithm id. The library is injected so that tests can route through
// synthetic topologies.
type Router struct {
	lib *Library
}

func NewRouter(lib *Library) *Router {
	if lib == nil {
		lib = New(nil)
	}
	return &Router{lib: lib}
}

func (r *Router) Library() *Library { return r.lib }

// Topology resolves an algorithm id; unknown ids give the fallback.
func (r *Router) Topology(id int) *Topology { return r.lib.Get(id) }

// Route evaluates one sample of the operators with the algorithm id and
// returns the carrier mix.
func (r *Router) Route(id int, ops *[numOps]Operator, outputs *[numOps]float64) float64 {
	return r.lib.Get(id).Evaluate(ops, outputs)
}
