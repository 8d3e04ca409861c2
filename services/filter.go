package services

import (
	"sort"
	"strings"

	"civicfix-be/models"
)

// Sort orders accepted by ApplyFilters.
const (
	SortLatest = "latest"
	SortOldest = "oldest"
)

// Filters are the optional, conjunctive predicates applied to an issue
// listing. Empty or "all" means the predicate is off.
type Filters struct {
	Status   string
	Category string
	Search   string
	Sort     string
}

// ApplyFilters narrows and orders an already-authorized issue collection.
//
// Pure and stateless: the input slice is not modified, the result depends
// only on the arguments, and re-applying the same filters to the output
// returns it unchanged. Search matches the title only, case-insensitively.
// Sorting compares createdAt and is stable, so equal timestamps keep the
// store order they arrived in.
func ApplyFilters(issues []models.Issue, f Filters) []models.Issue {
	out := make([]models.Issue, 0, len(issues))

	search := strings.ToLower(strings.TrimSpace(f.Search))
	for _, issue := range issues {
		if filterActive(f.Status) && string(issue.Status) != f.Status {
			continue
		}
		if filterActive(f.Category) && string(issue.Category) != f.Category {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(issue.Title), search) {
			continue
		}
		out = append(out, issue)
	}

	switch f.Sort {
	case SortLatest:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	case SortOldest:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		})
	}

	return out
}

func filterActive(value string) bool {
	return value != "" && value != "all"
}
