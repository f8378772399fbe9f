// Package view derives the displayed contact sequence from the active
// collection and the current search text.
package view

import (
	"sort"
	"strings"

	"contactbook/internal/model"
)

// Derive returns the filtered, sorted sequence for display. It is a pure
// function of its inputs: the input slice is never mutated and the result is
// recomputed in full on every call.
//
// Filtering: an empty (after trimming) search text keeps every contact;
// otherwise a contact is kept iff its name contains the search text as a
// case-insensitive substring. The text is matched as typed: aside from
// case-folding there is no whitespace normalization, so a padded needle
// only matches names that contain the padding.
//
// Ordering: favorites precede non-favorites; within each group contacts are
// ordered by case-insensitive name, with ties keeping their prior relative
// order.
func Derive(contacts []model.Contact, searchText string) []model.Contact {
	result := filter(contacts, searchText)

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].IsFavorite != result[j].IsFavorite {
			return result[i].IsFavorite
		}
		return strings.ToLower(result[i].Name) < strings.ToLower(result[j].Name)
	})

	return result
}

// filter copies the contacts whose name matches the search text.
func filter(contacts []model.Contact, searchText string) []model.Contact {
	result := make([]model.Contact, 0, len(contacts))

	// Only the emptiness check trims; a non-empty needle matches as typed.
	if strings.TrimSpace(searchText) == "" {
		return append(result, contacts...)
	}

	needle := strings.ToLower(searchText)
	for _, c := range contacts {
		if strings.Contains(strings.ToLower(c.Name), needle) {
			result = append(result, c)
		}
	}

	return result
}
