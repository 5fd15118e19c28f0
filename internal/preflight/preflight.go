package preflight

import (
	"context"

	"gearboy/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes all applicable preflight checks for the given config.
// The box art check only runs when box art is enabled.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("ROM folder", cfg.Paths.DataDir),
		CheckDirectoryAccess("Database directory", cfg.Paths.DatabaseDir),
		CheckCatalogFile(cfg.CatalogPath()),
		CheckTitleDatabase(cfg.GameDB.Path),
	}

	if cfg.BoxArt.Enabled {
		results = append(results, CheckBoxArtService(ctx, cfg.BoxArt.BaseURL, cfg.BoxArtTimeout()))
	}

	return results
}

// Passed reports whether every result passed.
func Passed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}
