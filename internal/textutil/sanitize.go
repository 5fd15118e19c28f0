package textutil

import "strings"

// thumbnailReplacer mirrors the characters libretro cannot store in thumbnail
// file names.
var thumbnailReplacer = strings.NewReplacer(
	"&", "_",
	"*", "_",
	"/", "_",
	":", "_",
	"`", "_",
	"<", "_",
	">", "_",
	"?", "_",
	"\\", "_",
	"|", "_",
	"\"", "_",
)

// ThumbnailName converts a game title into the name used for its box-art
// file, both on the thumbnail server and in the local cache. Unsafe
// characters become underscores and surrounding whitespace is trimmed.
func ThumbnailName(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return ""
	}
	return thumbnailReplacer.Replace(title)
}

// StripTags removes bracketed release tags such as "(USA, Europe)" or "[!]"
// from a title and collapses the remaining whitespace.
func StripTags(title string) string {
	var b strings.Builder
	depth := 0
	for _, r := range title {
		switch r {
		case '(', '[':
			depth++
			b.WriteByte(' ')
		case ')', ']':
			if depth > 0 {
				depth--
			}
			b.WriteByte(' ')
		default:
			if depth == 0 {
				b.WriteRune(r)
			}
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
