// Package strategy defines the target-selection interface and the
// available algorithms:
//
//   - Round Robin: cyclic per-group selection in list order, the default
//   - Weighted, Sticky, Least Response Time: advertised but not yet
//     implemented; they return the first candidate until a real policy
//     lands
//
// Unrecognized algorithm names dispatch to round robin.
package strategy
