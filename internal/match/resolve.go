// Package match maps free-text logo descriptions returned by the vision
// provider onto compact brand catalog keys.
package match

import "strings"

// minWordLength is the exclusive lower bound for words used by the fallback pass.
const minWordLength = 2

// Resolve returns the first brand key matching the logo description, walking
// keys in the supplied (catalog) order.
//
// The first pass looks for a key contained in the compact description. Only
// when no key matches does the second pass check whether any word longer than
// two characters is contained in a key. Short or generic words can produce
// false positives; that tradeoff is accepted for a small fixed catalog.
func Resolve(description string, keys []string) (string, bool) {
	profile := NormalizeLogo(description)
	if key, ok := resolveCompact(profile, keys); ok {
		return key, true
	}
	return resolveWords(profile, keys)
}

func resolveCompact(profile LogoProfile, keys []string) (string, bool) {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if strings.Contains(profile.Compact, key) {
			return key, true
		}
	}
	return "", false
}

func resolveWords(profile LogoProfile, keys []string) (string, bool) {
	words := profile.SignificantWords()
	if len(words) == 0 {
		return "", false
	}
	for _, key := range keys {
		for _, word := range words {
			if strings.Contains(key, word) {
				return key, true
			}
		}
	}
	return "", false
}
