package domain

import (
	"strings"
	"time"
)

// A SearchEvent records one text query that reached the catalog.
type SearchEvent struct {
	SessionID string
	Query     string
	Category  Category
	Results   int
	At        time.Time
}

// Key is the normalized query used to aggregate events:
// lowercase tokens joined by a single space.
func (e SearchEvent) Key() string {
	return NormalizeQuery(e.Query)
}

func NormalizeQuery(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}

// A TrendingSearch is an aggregated query counter.
type TrendingSearch struct {
	Query string
	Count int64
}
