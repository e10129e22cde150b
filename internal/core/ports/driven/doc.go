// Package driven defines the outbound ports: interfaces the core depends
// on and adapters implement. Storage backends satisfy KVStore.
package driven
