package db

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	Vector       []float32
	K            int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single hit. Score is the engine's raw cosine distance;
// HasScore is false when the engine returned no parsable score for it.
type SearchEntry struct {
	Key      string
	Score    float64
	HasScore bool
	Fields   map[string]string
}
