package classifier

import (
	"strings"
	"unicode/utf8"
)

const unknownBrand = "Unknown Brand"

const descriptionTags = 3

// ExtractBrand returns the first title word longer than two runes.
func ExtractBrand(title string) string {
	for _, w := range strings.Fields(title) {
		if utf8.RuneCountInString(w) > 2 {
			return w
		}
	}
	return unknownBrand
}

// ExtractTags builds lowercase tags from a "|" separated category path
// and the leading words of a description. Duplicates are dropped,
// first occurrence order is kept.
//
// For each path segment only the last "&" part is used,
// so "Beauty|Makeup & Lips" yields "beauty" and "lips".
func ExtractTags(path, description string) []string {
	var (
		tags []string
		seen = make(map[string]struct{})
	)
	add := func(tag string) {
		if tag == "" {
			return
		}
		if _, ok := seen[tag]; ok {
			return
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}

	for _, segment := range strings.Split(path, "|") {
		parts := strings.Split(segment, "&")
		tag := strings.ToLower(strings.TrimSpace(parts[len(parts)-1]))
		if tag == "clothing" {
			continue
		}
		add(tag)
	}

	n := 0
	for _, w := range strings.Fields(strings.ToLower(description)) {
		if n == descriptionTags {
			break
		}
		if utf8.RuneCountInString(w) > 3 {
			add(w)
			n++
		}
	}
	return tags
}
