package aggregate

import (
	"testing"

	"civichub-service/models"
)

func sampleReports() []models.Report {
	return []models.Report{
		{ID: "r-1", Location: "123 Main Street", Category: models.CategoryRoadsPotholes, Status: models.StatusReported, UpvoteCount: 4},
		{ID: "r-2", Location: "Oak Ave", Category: models.CategoryStreetLights, Status: models.StatusUnderReview, UpvoteCount: 9},
		{ID: "r-3", Location: "Main St & 5th", Category: models.CategoryStreetLights, Status: models.StatusResolved, UpvoteCount: 1},
		{ID: "r-4", Location: "Riverside Park", Category: models.CategoryParksRecreation, Status: models.StatusReported, UpvoteCount: 7},
		{ID: "r-5", Location: "Elm Street", Category: models.CategoryOther, Status: models.StatusActionInitiated, UpvoteCount: 2},
	}
}

func TestStatusCountsSumToTotal(t *testing.T) {
	testCases := []struct {
		name    string
		reports []models.Report
	}{
		{name: "empty", reports: nil},
		{name: "mixed", reports: sampleReports()},
	}

	for _, testCase := range testCases {
		counts := StatusCounts(testCase.reports)
		sum := counts.Reported + counts.UnderReview + counts.ActionInitiated + counts.Resolved
		if sum != counts.Total || counts.Total != len(testCase.reports) {
			t.Errorf("%s: buckets sum to %d, total %d, len %d",
				testCase.name, sum, counts.Total, len(testCase.reports))
		}
	}
}

func TestStatusCountsBuckets(t *testing.T) {
	counts := StatusCounts(sampleReports())
	if counts.Reported != 2 || counts.UnderReview != 1 || counts.ActionInitiated != 1 || counts.Resolved != 1 {
		t.Errorf("unexpected buckets: %+v", counts)
	}
}

func TestFilterWildcardsReturnInputUnchanged(t *testing.T) {
	reports := sampleReports()
	filtered := FilterReports(reports, Filters{Category: "all", Status: "all"})
	if len(filtered) != len(reports) {
		t.Fatalf("got %d reports, want %d", len(filtered), len(reports))
	}
	for i := range reports {
		if filtered[i].ID != reports[i].ID {
			t.Errorf("order changed at %d: got %q, want %q", i, filtered[i].ID, reports[i].ID)
		}
	}
}

func TestFilterLocationSubstring(t *testing.T) {
	filtered := FilterReports(sampleReports(), Filters{Location: "Main St"})
	if len(filtered) != 2 {
		t.Fatalf("got %d reports, want 2: %v", len(filtered), filtered)
	}
	// Case-insensitive substring: "123 Main Street" matches, "Oak Ave" does not.
	if filtered[0].ID != "r-1" || filtered[1].ID != "r-3" {
		t.Errorf("unexpected matches: %q, %q", filtered[0].ID, filtered[1].ID)
	}
}

func TestFilterPredicatesAreANDed(t *testing.T) {
	filtered := FilterReports(sampleReports(), Filters{
		Location: "main",
		Category: models.CategoryStreetLights,
		Status:   models.StatusResolved,
	})
	if len(filtered) != 1 || filtered[0].ID != "r-3" {
		t.Errorf("got %v, want only r-3", filtered)
	}
}

func TestTopByUpvotes(t *testing.T) {
	top := TopByUpvotes(sampleReports(), 3)
	if len(top) != 3 {
		t.Fatalf("got %d reports, want 3", len(top))
	}
	want := []string{"r-2", "r-4", "r-1"}
	for i, id := range want {
		if top[i].ID != id {
			t.Errorf("position %d: got %q, want %q", i, top[i].ID, id)
		}
	}
	for i := 1; i < len(top); i++ {
		if top[i].UpvoteCount > top[i-1].UpvoteCount {
			t.Errorf("not descending at %d: %d > %d", i, top[i].UpvoteCount, top[i-1].UpvoteCount)
		}
	}
}

func TestTopByUpvotesStableOnTies(t *testing.T) {
	reports := []models.Report{
		{ID: "first", UpvoteCount: 3},
		{ID: "second", UpvoteCount: 3},
		{ID: "third", UpvoteCount: 3},
	}
	top := TopByUpvotes(reports, 2)
	if top[0].ID != "first" || top[1].ID != "second" {
		t.Errorf("tie order not stable: %q, %q", top[0].ID, top[1].ID)
	}
}

func TestTopByUpvotesDoesNotMutateInput(t *testing.T) {
	reports := sampleReports()
	TopByUpvotes(reports, 3)
	if reports[0].ID != "r-1" {
		t.Errorf("input order mutated: first is %q", reports[0].ID)
	}
}

func TestTopByUpvotesShortInput(t *testing.T) {
	if got := TopByUpvotes(sampleReports()[:2], 10); len(got) != 2 {
		t.Errorf("got %d reports, want 2", len(got))
	}
}
