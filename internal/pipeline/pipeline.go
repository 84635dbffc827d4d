// Package pipeline derives the visible task list from the full snapshot.
// Both stages are pure and order-preserving; input slices are never
// mutated. The composition order is fixed: status filter first, then
// search within the filtered subset.
package pipeline

import (
	"fmt"
	"strings"

	"taskpad/internal/domain"
)

type FilterMode string

const (
	FilterAll      FilterMode = "all"
	FilterOpen     FilterMode = "open"
	FilterComplete FilterMode = "complete"
)

// ParseFilterMode maps a request value onto a filter mode. An empty value
// means "all".
func ParseFilterMode(s string) (FilterMode, error) {
	switch FilterMode(s) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterOpen:
		return FilterOpen, nil
	case FilterComplete:
		return FilterComplete, nil
	default:
		return "", fmt.Errorf("unknown filter mode %q", s)
	}
}

// ApplyStatusFilter returns the subsequence of tasks whose status matches
// the mode. FilterAll returns the input unchanged.
func ApplyStatusFilter(tasks []domain.Task, mode FilterMode) []domain.Task {
	if mode == FilterAll {
		return tasks
	}
	var out []domain.Task
	for _, t := range tasks {
		if t.Status == domain.Status(mode) {
			out = append(out, t)
		}
	}
	return out
}

// ApplySearch returns the subsequence whose title or description contains
// the query, case-insensitively. A trimmed-empty query returns the input
// unchanged. Tasks without a description never match on description.
func ApplySearch(tasks []domain.Task, query string) []domain.Task {
	if strings.TrimSpace(query) == "" {
		return tasks
	}
	q := strings.ToLower(query)
	var out []domain.Task
	for _, t := range tasks {
		if strings.Contains(strings.ToLower(t.Title), q) {
			out = append(out, t)
			continue
		}
		if t.Description != "" && strings.Contains(strings.ToLower(t.Description), q) {
			out = append(out, t)
		}
	}
	return out
}

// Visible runs the full derivation: filter, then search.
func Visible(tasks []domain.Task, mode FilterMode, query string) []domain.Task {
	return ApplySearch(ApplyStatusFilter(tasks, mode), query)
}
