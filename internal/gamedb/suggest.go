package gamedb

import (
	"sort"

	"gearboy/internal/textutil"
)

// minSuggestScore drops matches that only share a stray common word.
const minSuggestScore = 0.3

// Match is a reference record scored against a query.
type Match struct {
	Game
	Score float64 `json:"score"`
}

// Suggest ranks records by token similarity to query, ignoring release tags,
// and returns at most limit matches scoring above a minimum threshold.
func (db *DB) Suggest(query string, limit int) []Match {
	if db == nil || limit <= 0 {
		return nil
	}
	q := textutil.NewFingerprint(query)
	if q == nil {
		return nil
	}
	var out []Match
	for _, g := range db.games {
		score := textutil.CosineSimilarity(q, textutil.NewFingerprint(g.Title))
		if score < minSuggestScore {
			continue
		}
		out = append(out, Match{Game: g, Score: score})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Title < out[j].Title
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
