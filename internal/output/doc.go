// Package output stores metric outputs keyed by time window and threshold.
//
// A Map is an immutable grid of outputs for one metric. It is populated
// through a MapBuilder, which serializes inserts, and read through Get and
// the Slice methods once built. Slices return new Maps and compose in any
// order. MultiMap groups one Map per metric and component.
package output
