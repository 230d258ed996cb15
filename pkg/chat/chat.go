// Package chat sanitizes player-supplied text before it reaches peers.
package chat

import (
	"strings"
	"unicode"

	"github.com/TheFkingisback/deep-mine/pkg/game"
)

// Sanitize trims, strips control characters, and caps a chat message.
// Returns the cleaned message and whether anything sendable remains.
func Sanitize(msg string) (string, bool) {
	var b strings.Builder
	for _, r := range msg {
		if unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", false
	}
	if len(out) > game.MaxChatLength {
		out = truncate(out, game.MaxChatLength)
	}
	return out, true
}

// SanitizeName cleans a display name: printable runes only, bounded length.
// Returns false when nothing usable remains.
func SanitizeName(name string) (string, bool) {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsControl(r) || !unicode.IsPrint(r) {
			continue
		}
		b.WriteRune(r)
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", false
	}
	if len(out) > game.MaxDisplayNameLen {
		out = truncate(out, game.MaxDisplayNameLen)
	}
	return out, true
}

// truncate cuts at a rune boundary at or below max bytes.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8Start(s[cut]) {
		cut--
	}
	return s[:cut]
}

func utf8Start(b byte) bool {
	return b&0xC0 != 0x80
}
