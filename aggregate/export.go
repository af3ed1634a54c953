package aggregate

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"civichub-service/models"
)

// exportDateLayout matches the date format the dashboard export has
// always used.
const exportDateLayout = "2006-01-02 15:04"

// ExportHeaders are the CSV column names, in order.
var ExportHeaders = []string{
	"Title", "Description", "Location", "Category", "Status",
	"Upvotes", "Comments", "Sentiment", "Reported By", "Date", "Photo URLs",
}

// ExportRows projects reports into flat export records for municipal
// authorities. Only open work is exported: reports in reported or
// under_review status. Categories and statuses are rendered as
// human-readable labels and photo URLs are comma-joined.
func ExportRows(reports []models.Report) [][]string {
	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		if r.Status != models.StatusReported && r.Status != models.StatusUnderReview {
			continue
		}
		sentiment := r.Sentiment
		if sentiment == "" {
			sentiment = models.SentimentNeutral
		}
		rows = append(rows, []string{
			r.Title,
			r.Description,
			r.Location,
			models.CategoryLabels[r.Category],
			strings.ReplaceAll(r.Status, "_", " "),
			strconv.Itoa(r.UpvoteCount),
			strconv.Itoa(r.CommentCount),
			sentiment,
			r.CreatedBy,
			r.CreatedDate.Format(exportDateLayout),
			strings.Join(r.PhotoURLs, ", "),
		})
	}
	return rows
}

// WriteCSV serializes export rows, header first. Fields containing
// commas or quotes are quoted with doubled inner quotes.
func WriteCSV(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeaders); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
