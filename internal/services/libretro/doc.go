// Package libretro provides the minimal client for the libretro thumbnail
// server used to fetch Game Boy box art.
//
// Thumbnails are addressed by system and No-Intro title, with the characters
// libretro cannot store in file names replaced by underscores. Options allow
// tests to supply custom HTTP clients.
package libretro
