package search

import "context"

// Result is one organic hit from the search provider.
type Result struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Client returns ranked candidate results for a query. Implementations must
// not retry: a failed search degrades the whole request and the caller
// decides what to do with that.
type Client interface {
	Search(ctx context.Context, query string, num int) ([]Result, error)
}
