package services

import "strings"

// tokenize splits a search query on whitespace. An empty query yields no
// tokens, which matches everything.
func tokenize(query string) []string {
	return strings.Fields(query)
}

// matchesAny reports whether any token is a case-insensitive substring of
// any of the fields. Tokens are ORed, per the filter endpoints' contract.
func matchesAny(tokens []string, fields ...string) bool {
	if len(tokens) == 0 {
		return true
	}
	for _, token := range tokens {
		token = strings.ToLower(token)
		for _, field := range fields {
			if strings.Contains(strings.ToLower(field), token) {
				return true
			}
		}
	}
	return false
}

// paginate slices items by offset/limit, after filtering has been applied.
func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
