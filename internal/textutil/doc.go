// Package textutil holds title helpers shared by the game database and the
// box-art cache: thumbnail file naming, release-tag stripping, and
// token fingerprints for fuzzy title search.
package textutil
