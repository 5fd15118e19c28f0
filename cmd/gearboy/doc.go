// Package main hosts the Gearboy CLI entrypoint and command graph.
//
// The Cobra command tree maps terminal invocations onto the catalog, the
// library manager, and the title database. commandContext resolves
// configuration, logging, and the shared services once per invocation so
// subcommands only deal with presentation.
package main
