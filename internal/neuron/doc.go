// Package neuron defines the records loaded from simulator output.
//
// A [Population] holds neuron records in load order together with an
// [Index] from simulator identifier to load position:
//
//   - [Record]: one neuron with position and optional area label
//   - [Edge]: a directed synapse between two identifiers
//   - [Segment]: an edge resolved to load positions, ready for drawing
//   - [ColorSample]: a scalar keyed by identifier or area for one timestep
//
// # Example
//
//	recs, _ := table.LoadPositions(path, table.DefaultPositionLayout())
//	pop, _ := neuron.NewPopulation(recs)
//	segs, dropped, err := pop.ResolveAll(edges, false)
//
// Populations are immutable after construction and safe to share.
package neuron
