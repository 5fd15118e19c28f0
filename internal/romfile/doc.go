// Package romfile identifies Game Boy ROM files on disk: it recognizes ROM
// extensions and computes the CRC32 checksum used as the key into the title
// database.
package romfile
