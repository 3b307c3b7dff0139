package layout

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/tsawler/docflip/model"
)

// bulletCharacters are the markers recognized at the start of a bullet item.
var bulletCharacters = []rune{'•', '●', '◦', '○', '▪', '■', '‣', '⁃', '-', '–', '*'}

var numberedPattern = regexp.MustCompile(`^(\d{1,3})[.)]\s+`)

// detectListMarker checks whether text starts with a list marker. It returns
// the list kind, the item number for numbered items and the text after the
// marker.
func detectListMarker(text string) (model.ListKind, int, string, bool) {
	if m := numberedPattern.FindStringSubmatch(text); m != nil {
		rest := strings.TrimSpace(text[len(m[0]):])
		if rest == "" {
			return model.ListNone, 0, text, false
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n == 0 {
			return model.ListNone, 0, text, false
		}
		return model.ListNumbered, n, rest, true
	}

	first, size := utf8.DecodeRuneInString(text)
	for _, bullet := range bulletCharacters {
		if first != bullet {
			continue
		}
		// A bullet must be followed by whitespace so "-5" or "*emphasis"
		// stay text.
		after := text[size:]
		rest := strings.TrimSpace(after)
		if rest == "" || after == rest {
			return model.ListNone, 0, text, false
		}
		return model.ListBullet, 0, rest, true
	}
	return model.ListNone, 0, text, false
}
