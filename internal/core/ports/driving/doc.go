// Package driving defines the inbound ports: interfaces the CLI and TUI
// adapters call into the core through.
package driving
