// Package textutil provides the string helpers behind token features and
// input cleanup.
package textutil

import (
	"strings"
	"unicode"
)

// Ngrams returns the character n-grams of s for every n in [minN, maxN],
// shortest first.
func Ngrams(s string, minN, maxN int) []string {
	runes := []rune(s)
	var out []string
	for n := minN; n <= maxN && n <= len(runes); n++ {
		for i := 0; i+n <= len(runes); i++ {
			out = append(out, string(runes[i:i+n]))
		}
	}
	return out
}

// Shape maps a word to its case/digit skeleton with runs collapsed:
// "Kilimanjaro" -> "Xx", "K2" -> "Xd", "8,848" -> "d,d".
func Shape(word string) string {
	var buf strings.Builder
	var last rune
	for _, r := range word {
		c := shapeOf(r)
		if c != last {
			buf.WriteRune(c)
			last = c
		}
	}
	return buf.String()
}

func shapeOf(r rune) rune {
	switch {
	case unicode.IsUpper(r):
		return 'X'
	case unicode.IsLower(r):
		return 'x'
	case unicode.IsDigit(r):
		return 'd'
	}
	return r
}

// DigitPattern masks digits as 'X' and letters as 'C' when at least minRatio
// of the runes of word are digits, so "K2" -> "CX" and "4807m" -> "XXXXC".
// Words below the ratio yield "".
func DigitPattern(word string, minRatio float64) string {
	var buf strings.Builder
	runes, digits := 0, 0
	for _, r := range word {
		runes++
		switch {
		case unicode.IsDigit(r):
			digits++
			buf.WriteByte('X')
		case unicode.IsLetter(r):
			buf.WriteByte('C')
		default:
			buf.WriteRune(r)
		}
	}
	if runes == 0 || float64(digits)/float64(runes) < minRatio {
		return ""
	}
	return buf.String()
}

// CollapseSpace replaces every run of whitespace, newlines included, with a
// single space and trims both ends.
func CollapseSpace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
