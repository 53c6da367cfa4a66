package core

import (
	"fmt"
	"sort"

	"github.com/jmylchreest/toastbox/internal/history"
	"github.com/jmylchreest/toastbox/internal/toast"
)

// SortField represents a field to sort by.
type SortField string

const (
	SortByCreated  SortField = "created"
	SortByLevel    SortField = "level"
	SortByDuration SortField = "duration"
)

// SortOrder represents ascending or descending order.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SortOptions specifies sorting criteria.
type SortOptions struct {
	Field SortField
	Order SortOrder
}

// DefaultSortOptions returns default sort options (newest first).
func DefaultSortOptions() SortOptions {
	return SortOptions{Field: SortByCreated, Order: SortDesc}
}

// Sort sorts records in place. Ties keep their existing order.
func Sort(records []history.Record, opts SortOptions) {
	key := func(r history.Record) int64 {
		switch opts.Field {
		case SortByLevel:
			l, _ := toast.ParseLevel(r.Level)
			return int64(l)
		case SortByDuration:
			return int64(r.Duration())
		default:
			return r.CreatedAt.UnixNano()
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		a, b := key(records[i]), key(records[j])
		if opts.Order == SortDesc {
			return a > b
		}
		return a < b
	})
}

// ParseSortField parses a sort field string.
func ParseSortField(s string) (SortField, error) {
	switch s {
	case "created", "time", "t", "":
		return SortByCreated, nil
	case "level", "l":
		return SortByLevel, nil
	case "duration", "d":
		return SortByDuration, nil
	default:
		return SortByCreated, fmt.Errorf("unknown sort field: %s", s)
	}
}

// ParseSortOrder parses a sort order string.
func ParseSortOrder(s string) (SortOrder, error) {
	switch s {
	case "asc", "ascending", "a":
		return SortAsc, nil
	case "desc", "descending", "d", "":
		return SortDesc, nil
	default:
		return SortDesc, fmt.Errorf("unknown sort order: %s", s)
	}
}
