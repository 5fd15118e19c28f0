package romfile

import (
	"archive/zip"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrEmptyArchive is returned when a zip archive holds no files to checksum.
var ErrEmptyArchive = errors.New("zip archive is empty")

// Checksum computes the CRC32 (IEEE) of a ROM file and formats it as eight
// uppercase hex digits. Zip archives are checksummed by their first entry so
// the value matches No-Intro reference data.
func Checksum(path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".zip") {
		return zipChecksum(path)
	}

	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open rom %s: %w", path, err)
	}
	defer file.Close()

	sum, err := ChecksumReader(file)
	if err != nil {
		return "", fmt.Errorf("checksum rom %s: %w", path, err)
	}
	return sum, nil
}

// ChecksumReader computes the formatted CRC32 of everything read from r.
func ChecksumReader(r io.Reader) (string, error) {
	hasher := crc32.NewIEEE()
	if _, err := io.Copy(hasher, r); err != nil {
		return "", err
	}
	return FormatChecksum(hasher.Sum32()), nil
}

// FormatChecksum renders a CRC32 value the way the catalog stores it.
func FormatChecksum(sum uint32) string {
	return fmt.Sprintf("%08X", sum)
}

// NormalizeChecksum upper-cases and trims a checksum read from external data.
func NormalizeChecksum(value string) string {
	return strings.ToUpper(strings.TrimSpace(value))
}

func zipChecksum(path string) (string, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open zip %s: %w", path, err)
	}
	defer reader.Close()

	var entry *zip.File
	for _, f := range reader.File {
		if !f.FileInfo().IsDir() {
			entry = f
			break
		}
	}
	if entry == nil {
		return "", fmt.Errorf("%s: %w", path, ErrEmptyArchive)
	}

	rc, err := entry.Open()
	if err != nil {
		return "", fmt.Errorf("open %s within zip: %w", entry.Name, err)
	}
	defer rc.Close()

	sum, err := ChecksumReader(rc)
	if err != nil {
		return "", fmt.Errorf("checksum %s within zip: %w", entry.Name, err)
	}
	return sum, nil
}
