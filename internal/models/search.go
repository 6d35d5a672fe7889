package models

// SearchResult is the envelope returned by the filter endpoints. Total is
// the number of matches before pagination was applied.
type SearchResult[T any] struct {
	Total  int `json:"total"`
	Items  []T `json:"items"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}
