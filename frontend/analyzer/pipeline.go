package analyzer

import "github.com/cottand/tenet/frontend/registry"

// DefaultPasses returns the full analysis pipeline, in order, using reg
// to look up the functions the schema calls
func DefaultPasses(reg *registry.Registry) []Pass {
	return []Pass{
		NameIndexer{},
		InputCollector{},
		DependencyResolver{},
		UnsatDetector{},
		Toposorter{},
		BroadcastDetector{Registry: reg},
		DimensionalResolver{},
		TypeInferencer{Registry: reg},
		TypeConsistencyChecker{},
		TypeChecker{Registry: reg},
	}
}
