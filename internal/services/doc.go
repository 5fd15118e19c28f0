// Package services defines shared utilities consumed by the library manager,
// the catalog store, and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp ROM identifiers, file names, scan IDs, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper so callers can classify
//     failures (configuration faults vs transient errors) with errors.Is.
//
// Use these helpers when wiring new components so error handling and
// observability stay uniform across the tool.
package services
