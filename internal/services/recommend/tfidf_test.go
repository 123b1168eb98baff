package recommend

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Yo-kai Watch 4", []string{"yo", "kai", "watch"}},
		{"MARIO KART 8 Deluxe", []string{"mario", "kart", "deluxe"}},
		{"Pokémon Scarlet", []string{"pokémon", "scarlet"}},
		{"Fire_Emblem: Engage", []string{"fire_emblem", "engage"}},
		{"A", []string{}},
		{"", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := tokenize(tt.in)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTFIDFRowsAreNormalized(t *testing.T) {
	rows := tfidf([]string{"Mario Kart", "Mario Party", "Zelda"})
	require.Len(t, rows, 3)

	for i, row := range rows {
		assert.InDelta(t, 1.0, cosine(row, row), 1e-9, "row %d", i)
	}
}

func TestTFIDFWeighting(t *testing.T) {
	// "mario" occurs in two documents, "kart" and "party" in one: idf(kart) > idf(mario).
	rows := tfidf([]string{"Mario Kart", "Mario Party"})
	ref := tfidf([]string{"Mario Kart", "Mario Party", "Kart"})

	assert.Greater(t, cosine(ref[2], ref[0]), 0.0)
	assert.Zero(t, cosine(ref[2], ref[1]))
	assert.InDelta(t, cosine(rows[0], rows[1]), cosine(rows[1], rows[0]), 1e-12)
	assert.Less(t, cosine(rows[0], rows[1]), 1.0)
}

func TestCosineOfEmptyRow(t *testing.T) {
	rows := tfidf([]string{"4", "Mario"})

	assert.Empty(t, rows[0])
	assert.Zero(t, cosine(rows[0], rows[1]))
}

func TestCosineMatchesSmoothedIDF(t *testing.T) {
	// docs: "a1 b1", "a1 c1"; n=2, df(a1)=2, df(b1)=df(c1)=1
	// idf(a1) = ln(3/3)+1 = 1, idf(b1) = idf(c1) = ln(3/2)+1
	rows := tfidf([]string{"a1 b1", "a1 c1"})

	rare := 1.4054651081081644 // ln(1.5) + 1
	want := 1 / (1 + rare*rare)
	assert.InDelta(t, want, cosine(rows[0], rows[1]), 1e-9)
}
