// Package boxart fetches cover images for catalog entries and caches them.
//
// Images live in the database directory next to db.json, named after the
// entry title. A file already on disk is never fetched again; missing art is
// requested from the libretro thumbnail server either inline (bulk
// reconciliation) or in the background (single imports). Download problems
// are logged and otherwise ignored.
package boxart
