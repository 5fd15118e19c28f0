package textutil

import (
	"math"
	"testing"
)

func TestCosineSimilarityNil(t *testing.T) {
	tests := []struct {
		name string
		a    *Fingerprint
		b    *Fingerprint
		want float64
	}{
		{"both nil", nil, nil, 0},
		{"a nil", nil, NewFingerprint("Tetris"), 0},
		{"b nil", NewFingerprint("Tetris"), nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if got != tt.want {
				t.Errorf("CosineSimilarity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCosineSimilarityIgnoresReleaseTags(t *testing.T) {
	a := NewFingerprint("Tetris (World) (Rev 1)")
	b := NewFingerprint("tetris")

	got := CosineSimilarity(a, b)
	if math.Abs(got-1.0) > 1e-9 {
		t.Errorf("CosineSimilarity(tagged, bare) = %v, want 1.0", got)
	}
}

func TestCosineSimilarityRanksSequels(t *testing.T) {
	query := NewFingerprint("super mario land 2 golden coins")
	sequel := NewFingerprint("Super Mario Land 2 - 6 Golden Coins (USA, Europe)")
	original := NewFingerprint("Super Mario Land (World)")

	if CosineSimilarity(query, sequel) <= CosineSimilarity(query, original) {
		t.Fatal("expected numbered sequel to rank above original")
	}
}

func TestCosineSimilarityDisjoint(t *testing.T) {
	got := CosineSimilarity(NewFingerprint("Pokemon Red"), NewFingerprint("Kirby's Dream Land"))
	if got != 0 {
		t.Errorf("CosineSimilarity(disjoint) = %v, want 0", got)
	}
}

func TestTokenizeKeepsNumbers(t *testing.T) {
	got := Tokenize("Wario Land 3: A")
	want := []string{"wario", "land", "3"}
	if len(got) != len(want) {
		t.Fatalf("Tokenize() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Tokenize() = %v, want %v", got, want)
		}
	}
}

func TestStripTags(t *testing.T) {
	tests := map[string]string{
		"Pokemon - Red Version (USA, Europe)": "Pokemon - Red Version",
		"Tetris (World) (Rev 1) [!]":           "Tetris",
		"  Dr. Mario  ":                        "Dr. Mario",
	}
	for in, want := range tests {
		if got := StripTags(in); got != want {
			t.Errorf("StripTags(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestThumbnailName(t *testing.T) {
	if got := ThumbnailName(` Tom & Jerry: "Frantic" <1/2>? `); got != `Tom _ Jerry_ _Frantic_ _1_2__` {
		t.Errorf("ThumbnailName() = %q", got)
	}
	if got := ThumbnailName("   "); got != "" {
		t.Errorf("ThumbnailName(blank) = %q, want empty", got)
	}
}

func TestCosineSimilarityIsSymmetric(t *testing.T) {
	short := NewFingerprint("Tetris")
	long := NewFingerprint("Tetris Attack (USA, Europe) (SGB Enhanced)")

	ab := CosineSimilarity(short, long)
	ba := CosineSimilarity(long, short)
	if math.Abs(ab-ba) > 1e-9 {
		t.Fatalf("similarity not symmetric: %f vs %f", ab, ba)
	}
	if want := 1 / math.Sqrt2; math.Abs(ab-want) > 1e-9 {
		t.Fatalf("expected %f, got %f", want, ab)
	}
}
