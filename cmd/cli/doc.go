// Package cli constructs the giteactl command-line interface, wiring the
// Cobra command hierarchy, configuration loader, and structured logging
// primitives. It exposes helpers to build application instances and to map
// execution errors to process exit codes.
package cli
