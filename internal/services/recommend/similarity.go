package recommend

import "sort"

type scoredTitle struct {
	title string
	score float64
}

// rankBySimilarity fits TF-IDF over candidates plus reference and returns up to limit candidates
// by descending cosine similarity to reference. Equal scores keep candidate order.
func rankBySimilarity(reference string, candidates []string, limit int) []string {
	if len(candidates) == 0 {
		return []string{}
	}

	docs := make([]string, 0, len(candidates)+1)
	docs = append(docs, candidates...)
	docs = append(docs, reference)

	rows := tfidf(docs)
	ref := rows[len(rows)-1]

	scored := make([]scoredTitle, len(candidates))
	for i, title := range candidates {
		scored[i] = scoredTitle{title: title, score: cosine(ref, rows[i])}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	n := min(limit, len(scored))
	titles := make([]string, 0, n)
	for _, s := range scored[:n] {
		titles = append(titles, s.title)
	}
	return titles
}
