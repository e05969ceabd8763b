package db

// TextQuery is the input for BM25 text search.
type TextQuery struct {
	IndexName string
	// Field is the TEXT field the query is scoped to.
	Field        string
	Query        string
	TopK         int
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
