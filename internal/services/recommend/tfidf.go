package recommend

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

// vector is a sparse row of the term matrix keyed by vocabulary index.
type vector map[int]float64

// tokenize lower-cases s and splits it into words of at least two letters, digits or underscores.
func tokenize(s string) []string {
	lower := cases.Lower(language.Und).String(s)

	words := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})

	tokens := words[:0]
	for _, w := range words {
		if utf8.RuneCountInString(w) >= 2 {
			tokens = append(tokens, w)
		}
	}
	return tokens
}

// tfidf fits a vocabulary over docs and returns one L2-normalized row per document.
// Weights are raw term counts times the smoothed idf ln((1+n)/(1+df)) + 1.
func tfidf(docs []string) []vector {
	vocab := make(map[string]int)
	counts := make([]map[int]int, len(docs))
	var df []int

	for i, doc := range docs {
		counts[i] = make(map[int]int)
		for _, tok := range tokenize(doc) {
			idx, ok := vocab[tok]
			if !ok {
				idx = len(vocab)
				vocab[tok] = idx
				df = append(df, 0)
			}
			if counts[i][idx] == 0 {
				df[idx]++
			}
			counts[i][idx]++
		}
	}

	n := float64(len(docs))
	idf := make([]float64, len(df))
	for idx, d := range df {
		idf[idx] = math.Log((1+n)/(1+float64(d))) + 1
	}

	rows := make([]vector, len(docs))
	for i, tf := range counts {
		row := make(vector, len(tf))
		var norm float64
		for idx, c := range tf {
			w := float64(c) * idf[idx]
			row[idx] = w
			norm += w * w
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for idx := range row {
				row[idx] /= norm
			}
		}
		rows[i] = row
	}

	return rows
}

// cosine of two normalized rows. Empty rows score 0.
func cosine(a, b vector) float64 {
	if len(a) > len(b) {
		a, b = b, a
	}
	var dot float64
	for idx, w := range a {
		dot += w * b[idx]
	}
	return dot
}
