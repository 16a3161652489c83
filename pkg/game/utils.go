package game

import (
	"strings"
	"unicode"

	"github.com/cbodonnell/skirmish/pkg/game/constants"
)

// ShipName derives a display name from a prompt: whitespace is collapsed
// and the result is cut to ShipNameMaxLength runes, dropping a trailing
// space left by the cut.
func ShipName(prompt string) string {
	name := strings.Join(strings.Fields(prompt), " ")
	runes := []rune(name)
	if len(runes) > constants.ShipNameMaxLength {
		runes = runes[:constants.ShipNameMaxLength]
	}
	return strings.TrimSpace(string(runes))
}

// DefaultShipName names the ship of a pilot who did not prompt one.
func DefaultShipName(clientID string) string {
	short := clientID
	if len(short) > 4 {
		short = short[:4]
	}
	return "Pilot " + short
}

// ShipSlug turns a prompt into a lowercase path segment of letters, digits and dashes.
func ShipSlug(prompt string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(prompt) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if len(slug) > 64 {
		slug = strings.TrimSuffix(slug[:64], "-")
	}
	if slug == "" {
		return "ship"
	}
	return slug
}
