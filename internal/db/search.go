package db

// MaxFuzziness is the largest edit distance the search engine accepts for fuzzy terms.
const MaxFuzziness = 3

// FuzzyQuery is the input for a fuzzy full-text match over one or more TEXT fields.
type FuzzyQuery struct {
	IndexName    string
	Text         string
	Fields       []string
	Fuzziness    int
	Limit        int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
