// Package aggregate derives feeds and dashboards from report snapshots.
// Every function is pure: it recomputes from the full input on each call
// and never touches the store.
package aggregate

import (
	"sort"
	"strings"

	"civichub-service/models"
)

// Filters are the feed predicates. Location is a case-insensitive
// substring match (empty matches all); Category and Status are exact
// matches with "" or "all" as wildcards. All three are ANDed.
type Filters struct {
	Location string
	Category string
	Status   string
}

// IsEmpty reports whether every predicate is a wildcard.
func (f Filters) IsEmpty() bool {
	return f.Location == "" &&
		(f.Category == "" || f.Category == "all") &&
		(f.Status == "" || f.Status == "all")
}

// FilterReports returns the reports satisfying all of f's predicates,
// preserving input order.
func FilterReports(reports []models.Report, f Filters) []models.Report {
	filtered := make([]models.Report, 0, len(reports))
	location := strings.ToLower(f.Location)
	for _, r := range reports {
		if location != "" && !strings.Contains(strings.ToLower(r.Location), location) {
			continue
		}
		if f.Category != "" && f.Category != "all" && r.Category != f.Category {
			continue
		}
		if f.Status != "" && f.Status != "all" && r.Status != f.Status {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered
}

// StatusCounts buckets reports by status. Every report falls into
// exactly one bucket and the buckets sum to Total.
func StatusCounts(reports []models.Report) models.StatusCounts {
	counts := models.StatusCounts{Total: len(reports)}
	for _, r := range reports {
		switch r.Status {
		case models.StatusReported:
			counts.Reported++
		case models.StatusUnderReview:
			counts.UnderReview++
		case models.StatusActionInitiated:
			counts.ActionInitiated++
		case models.StatusResolved:
			counts.Resolved++
		}
	}
	return counts
}

// TopByUpvotes returns the n reports with the highest upvote counts in
// descending order. Ties keep the input order.
func TopByUpvotes(reports []models.Report, n int) []models.Report {
	sorted := make([]models.Report, len(reports))
	copy(sorted, reports)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].UpvoteCount > sorted[j].UpvoteCount
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}
