package match

import (
	"strings"
	"unicode/utf8"
)

// LogoProfile captures the normalization output for a free-text logo description.
type LogoProfile struct {
	Original string
	Lower    string
	Compact  string
	Words    []string
}

var compactStripper = strings.NewReplacer("-", "", " ", "")

// NormalizeLogo lowercases the description and derives the compact and word views.
// The compact view drops hyphens and spaces so "The Coca-Cola Company" becomes
// "thecocacolacompany"; words treat hyphens as spaces.
func NormalizeLogo(description string) LogoProfile {
	lower := strings.ToLower(description)
	return LogoProfile{
		Original: description,
		Lower:    lower,
		Compact:  compactStripper.Replace(lower),
		Words:    strings.Fields(strings.ReplaceAll(lower, "-", " ")),
	}
}

// SignificantWords returns the words longer than minWordLength characters.
func (p LogoProfile) SignificantWords() []string {
	var out []string
	for _, word := range p.Words {
		if utf8.RuneCountInString(word) > minWordLength {
			out = append(out, word)
		}
	}
	return out
}
