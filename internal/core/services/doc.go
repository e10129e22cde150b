// Package services implements the core of the annotation system: the three
// anchoring strategies (offset, node path, embedded span), the per-mutation
// synchronizer that keeps marker-based anchors current, the space
// normalization pass that protects text snapshots, the namespaced comment
// store, and the session that serializes the whole edit loop.
package services
