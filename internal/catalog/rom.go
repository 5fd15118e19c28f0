package catalog

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Rom is one catalog entry. The JSON field names are the on-disk format of
// db.json and must stay stable.
type Rom struct {
	ID         int       `json:"id"`
	File       string    `json:"file"`
	Title      string    `json:"title"`
	Checksum   string    `json:"crc"`
	IsFavorite bool      `json:"isFavorite"`
	UsedOn     time.Time `json:"usedOn,omitzero"`
	Image      string    `json:"image,omitempty"`
}

// DisplayName returns the title, falling back to the file name for ROMs the
// title database does not know.
func (r Rom) DisplayName() string {
	if t := strings.TrimSpace(r.Title); t != "" {
		return t
	}
	return r.File
}

func (r Rom) matches(other Rom) bool {
	if other.ID != 0 {
		return r.ID == other.ID
	}
	return other.File != "" && r.File == other.File
}

// View selects a subset of the catalog.
type View string

const (
	ViewAll       View = "all"
	ViewFavorites View = "favorites"
	ViewRecents   View = "recents"
)

// ParseView validates a view name. The empty string selects ViewAll.
func ParseView(value string) (View, error) {
	switch View(strings.ToLower(strings.TrimSpace(value))) {
	case "", ViewAll:
		return ViewAll, nil
	case ViewFavorites:
		return ViewFavorites, nil
	case ViewRecents:
		return ViewRecents, nil
	default:
		return "", fmt.Errorf("unknown view %q (want all, favorites, or recents)", value)
	}
}

// Filter applies view to roms. Recents keeps entries used within window of now,
// most recent first; the other views keep catalog order.
func Filter(roms []Rom, view View, now time.Time, window time.Duration) []Rom {
	out := make([]Rom, 0, len(roms))
	switch view {
	case ViewFavorites:
		for _, r := range roms {
			if r.IsFavorite {
				out = append(out, r)
			}
		}
	case ViewRecents:
		cutoff := now.Add(-window)
		for _, r := range roms {
			if !r.UsedOn.IsZero() && !r.UsedOn.Before(cutoff) {
				out = append(out, r)
			}
		}
		sort.SliceStable(out, func(i, j int) bool { return out[i].UsedOn.After(out[j].UsedOn) })
	default:
		out = append(out, roms...)
	}
	return out
}
