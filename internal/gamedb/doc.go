// Package gamedb resolves ROM checksums to display titles.
//
// The default table is a JSON list of {title, crc} records embedded in the
// binary. Larger sets can be loaded from a JSON file or from a SQLite index
// built out of No-Intro DAT files with ParseDAT and Index.Import. All
// implementations satisfy Resolver and return "" for unknown checksums.
package gamedb
