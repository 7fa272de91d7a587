package model

import "strings"

// SortOrder is the direction history is listed in, by insertion id.
type SortOrder string

const (
	OrderAsc  SortOrder = "ASC"
	OrderDesc SortOrder = "DESC"
)

// ParseSortOrder accepts "asc"/"desc" in any case. Anything else yields DESC,
// the newest-first default of the history view.
func ParseSortOrder(s string) SortOrder {
	if strings.EqualFold(strings.TrimSpace(s), string(OrderAsc)) {
		return OrderAsc
	}
	return OrderDesc
}

// HistoryFilter selects records. Empty fields do not filter.
type HistoryFilter struct {
	// Machine matches any machine_id containing the value.
	Machine string
	// Risk matches risk_level exactly.
	Risk string
	// Date matches any timestamp containing the value, e.g. "2025-03" or "2025-03-14".
	Date string
}

// HistoryQuery is a filtered, ordered, paginated history request.
type HistoryQuery struct {
	Filter HistoryFilter
	Order  SortOrder
	Page   int
	Limit  int
}

// Offset returns the number of rows skipped before the page starts.
func (q HistoryQuery) Offset() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.Limit
}
