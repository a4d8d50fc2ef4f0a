package session

import "strings"

const (
	echoPrefixLen = 60
	echoMinLen    = 15
)

// normalizeSpeech lowercases and collapses whitespace so transcript
// comparisons ignore casing and spacing differences
func normalizeSpeech(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// isEcho reports whether a transcript update is the system hearing its own
// synthesized speech. Exact normalized match, or either text's first-60-char
// prefix contained in the other; the 15-char floor avoids false positives on
// short strings
func isEcho(transcript, lastSpoken string) bool {
	t := normalizeSpeech(transcript)
	s := normalizeSpeech(lastSpoken)
	if t == "" || s == "" {
		return false
	}
	if t == s {
		return true
	}

	sp := speechPrefix(s)
	if len(sp) > echoMinLen && strings.Contains(t, sp) {
		return true
	}
	tp := speechPrefix(t)
	if len(tp) > echoMinLen && strings.Contains(s, tp) {
		return true
	}
	return false
}

func speechPrefix(s string) string {
	if len(s) > echoPrefixLen {
		return s[:echoPrefixLen]
	}
	return s
}
