// Package preflight provides readiness checks for the filesystem paths and
// services Gearboy depends on.
//
// The CLI "gearboy doctor" command runs them to explain why a sync or import
// might fail before the user tries one. Each check is gated by its config
// toggle; disabled features are skipped.
package preflight
