package core

import (
	"strings"

	"github.com/jmylchreest/toastbox/internal/history"
)

// LookupByID finds a record by toast ID. A unique ID prefix (case-insensitive)
// also matches. Returns nil if nothing or more than one record matches.
func LookupByID(records []history.Record, id string) *history.Record {
	if id == "" {
		return nil
	}
	id = strings.ToUpper(id)

	var match *history.Record
	for i := range records {
		switch {
		case records[i].ID == id:
			return &records[i]
		case strings.HasPrefix(records[i].ID, id):
			if match != nil {
				return nil
			}
			match = &records[i]
		}
	}
	return match
}

// LookupByIndex finds a record by its 1-based index.
// Returns nil if index is out of bounds.
func LookupByIndex(records []history.Record, index int) *history.Record {
	idx := index - 1
	if idx < 0 || idx >= len(records) {
		return nil
	}
	return &records[idx]
}

// Search returns records whose message contains term, case-insensitively.
func Search(records []history.Record, term string) []history.Record {
	if term == "" {
		return records
	}
	term = strings.ToLower(term)

	var result []history.Record
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Message), term) {
			result = append(result, r)
		}
	}
	return result
}
