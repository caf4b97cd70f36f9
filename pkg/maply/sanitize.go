package maply

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	acronymBoundary = regexp.MustCompile(`([A-Z]+)([A-Z][a-z])`)
	camelBoundary   = regexp.MustCompile(`([a-z\d])([A-Z])`)
)

// Variablize turns a container id into a lowercase, underscore separated
// JavaScript identifier: "my-map" -> "my_map", "MapID" -> "map_id".
func Variablize(raw string) string {
	s := strings.ReplaceAll(raw, "::", "_")
	s = acronymBoundary.ReplaceAllString(s, "${1}_${2}")
	s = camelBoundary.ReplaceAllString(s, "${1}_${2}")
	s = strings.ReplaceAll(s, "-", "_")
	return strings.ToLower(s)
}

// upper-cases the first rune only; names are already lowercase
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
