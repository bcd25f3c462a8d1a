package jql

import "strings"

// escapePlaceholders lists, in order, the six characters quote() must hide
// from the dotted grammar and their textual stand-ins.
var escapePlaceholders = []struct {
	char string
	tag  string
}{
	{"'", "{{quot}}"},
	{",", "{{comm}}"},
	{".", "{{dot}}"},
	{"(", "{{pto}}"},
	{")", "{{ptc}}"},
	{";", "{{semi}}"},
}

// Quote escapes s so it can be embedded as a single-quoted JQL string
// literal without its content being mistaken for query syntax (§6.5).
func Quote(s string) string {
	escaped := s
	for _, p := range escapePlaceholders {
		escaped = strings.ReplaceAll(escaped, p.char, p.tag)
	}
	return "'" + escaped + "'"
}

// unquote reverses the placeholder substitutions inside the body of a
// single-quoted literal (the parser only does this in quoted contexts).
func unquote(body string) string {
	out := body
	for _, p := range escapePlaceholders {
		out = strings.ReplaceAll(out, p.tag, p.char)
	}
	return out
}
