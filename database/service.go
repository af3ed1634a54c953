package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"civichub-service/models"

	"github.com/apex/log"
	"github.com/google/uuid"
)

// Classifier assigns a sentiment label to a report's text. It either
// succeeds with one of the four known labels or fails; the service never
// substitutes a default label.
type Classifier interface {
	Classify(ctx context.Context, title, description string) (string, error)
}

// ReportService owns the report lifecycle: creation, upvote toggling,
// status triage and comment attachment. Derived aggregates
// (upvote_count, comment_count) are recomputed inside the same
// transaction that mutates their underlying rows, so no state where a
// count and its set disagree is ever persisted.
type ReportService struct {
	db         *sql.DB
	classifier Classifier
}

// NewReportService creates a new report service instance.
func NewReportService(db *sql.DB, classifier Classifier) *ReportService {
	return &ReportService{
		db:         db,
		classifier: classifier,
	}
}

const reportColumns = "id, title, description, location, category, status, sentiment, upvote_count, comment_count, photo_urls, created_by, created_at"

// CreateReport validates the request, classifies its sentiment and
// persists a new report. A classifier failure fails the whole operation;
// no report row is written without a sentiment.
func (s *ReportService) CreateReport(ctx context.Context, user models.User, req models.CreateReportRequest) (*models.Report, error) {
	if user.Email == "" {
		return nil, models.ErrUnauthorized
	}
	if err := validateCreateRequest(req); err != nil {
		return nil, err
	}

	sentiment, err := s.classifier.Classify(ctx, req.Title, req.Description)
	if err != nil {
		log.Errorf("Sentiment classification failed for report by %s: %v", user.Email, err)
		return nil, fmt.Errorf("%w: %v", models.ErrClassification, err)
	}
	if !models.ValidSentiment(sentiment) {
		return nil, fmt.Errorf("%w: unknown label %q", models.ErrClassification, sentiment)
	}

	if req.PhotoURLs == nil {
		req.PhotoURLs = []string{}
	}
	photoURLs, err := json.Marshal(req.PhotoURLs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode photo URLs: %w", err)
	}

	report := &models.Report{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Category:    req.Category,
		Status:      models.StatusReported,
		Sentiment:   sentiment,
		Upvoters:    []string{},
		PhotoURLs:   req.PhotoURLs,
		CreatedBy:   user.Email,
		CreatedDate: time.Now().UTC(),
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO reports (id, title, description, location, category, status, sentiment, upvote_count, comment_count, photo_urls, created_by, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, 0, 0, ?, ?, ?)",
		report.ID, report.Title, report.Description, report.Location, report.Category,
		report.Status, report.Sentiment, string(photoURLs), report.CreatedBy, report.CreatedDate)
	if err != nil {
		return nil, fmt.Errorf("failed to insert report: %w", err)
	}

	log.Infof("Created report %s by %s with sentiment %s", report.ID, user.Email, sentiment)
	return report, nil
}

// ToggleUpvote flips the acting user's membership in the report's upvote
// set and recomputes upvote_count from the set, all in one transaction.
// The toggle is a server-side atomic set operation: concurrent toggles
// by different users cannot lose each other's votes.
func (s *ReportService) ToggleUpvote(ctx context.Context, user models.User, reportID string) (*models.Report, error) {
	if user.Email == "" {
		return nil, models.ErrUnauthorized
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"DELETE FROM report_upvotes WHERE report_id = ? AND email = ?",
		reportID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to remove upvote: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get affected rows: %w", err)
	}

	if removed == 0 {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO report_upvotes (report_id, email) VALUES (?, ?)",
			reportID, user.Email); err != nil {
			return nil, fmt.Errorf("failed to add upvote: %w", err)
		}
	}

	// Count and set change together or not at all.
	res, err = tx.ExecContext(ctx,
		"UPDATE reports SET upvote_count = (SELECT COUNT(*) FROM report_upvotes WHERE report_id = ?) WHERE id = ?",
		reportID, reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to update upvote count: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return nil, models.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Infof("Toggled upvote on report %s by %s (removed=%t)", reportID, user.Email, removed > 0)
	return s.GetReport(ctx, reportID)
}

// UpdateStatus sets a report's triage status. Admin only. Any valid
// status may be set from any status; transitions are not constrained.
func (s *ReportService) UpdateStatus(ctx context.Context, user models.User, reportID, status string) (*models.Report, error) {
	if user.Email == "" {
		return nil, models.ErrUnauthorized
	}
	if !user.IsAdmin() {
		return nil, models.ErrForbidden
	}
	if !models.ValidStatus(status) {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidStatus, status)
	}

	var id string
	err := s.db.QueryRowContext(ctx, "SELECT id FROM reports WHERE id = ?", reportID).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query report: %w", err)
	}

	if _, err := s.db.ExecContext(ctx,
		"UPDATE reports SET status = ? WHERE id = ?", status, reportID); err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}

	log.Infof("Report %s status set to %s by %s", reportID, status, user.Email)
	return s.GetReport(ctx, reportID)
}

// CreateComment attaches a comment to a report and bumps comment_count
// in the same transaction.
func (s *ReportService) CreateComment(ctx context.Context, user models.User, reportID, content string) (*models.Comment, error) {
	if user.Email == "" {
		return nil, models.ErrUnauthorized
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: content is required", models.ErrValidation)
	}

	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO report_comments (report_id, created_by, content, created_at) VALUES (?, ?, ?, ?)",
		reportID, user.Email, content, now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert comment: %w", err)
	}
	commentID, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get comment id: %w", err)
	}

	res, err = tx.ExecContext(ctx,
		"UPDATE reports SET comment_count = (SELECT COUNT(*) FROM report_comments WHERE report_id = ?) WHERE id = ?",
		reportID, reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to update comment count: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return nil, models.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.Comment{
		ID:          commentID,
		ReportID:    reportID,
		CreatedBy:   user.Email,
		Content:     content,
		CreatedDate: now,
	}, nil
}

// GetReport returns a single report snapshot including its upvote set.
func (s *ReportService) GetReport(ctx context.Context, reportID string) (*models.Report, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+reportColumns+" FROM reports WHERE id = ?", reportID)

	report, err := scanReport(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query report: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT email FROM report_upvotes WHERE report_id = ?", reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to query upvotes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("failed to scan upvote row: %w", err)
		}
		report.Upvoters = append(report.Upvoters, email)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate upvote rows: %w", err)
	}

	return report, nil
}

// ListReports returns all reports, most recent first.
func (s *ReportService) ListReports(ctx context.Context) ([]models.Report, error) {
	return s.listReports(ctx,
		"SELECT "+reportColumns+" FROM reports ORDER BY created_at DESC")
}

// ListReportsByCreator returns a user's reports, most recent first.
func (s *ReportService) ListReportsByCreator(ctx context.Context, email string) ([]models.Report, error) {
	return s.listReports(ctx,
		"SELECT "+reportColumns+" FROM reports WHERE created_by = ? ORDER BY created_at DESC", email)
}

// ListComments returns a report's comments, oldest first.
func (s *ReportService) ListComments(ctx context.Context, reportID string) ([]models.Comment, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, report_id, created_by, content, created_at FROM report_comments WHERE report_id = ? ORDER BY created_at ASC",
		reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.ReportID, &c.CreatedBy, &c.Content, &c.CreatedDate); err != nil {
			return nil, fmt.Errorf("failed to scan comment row: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate comment rows: %w", err)
	}
	return comments, nil
}

func (s *ReportService) listReports(ctx context.Context, query string, args ...interface{}) ([]models.Report, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	reports := []models.Report{}
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report row: %w", err)
		}
		reports = append(reports, *report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate report rows: %w", err)
	}

	if err := s.loadUpvoters(ctx, reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// loadUpvoters fills in the upvote sets for a batch of reports with a
// single IN query.
func (s *ReportService) loadUpvoters(ctx context.Context, reports []models.Report) error {
	if len(reports) == 0 {
		return nil
	}

	placeholders := make([]string, len(reports))
	args := make([]interface{}, len(reports))
	index := make(map[string]*models.Report, len(reports))
	for i := range reports {
		placeholders[i] = "?"
		args[i] = reports[i].ID
		index[reports[i].ID] = &reports[i]
	}

	query := fmt.Sprintf(
		"SELECT report_id, email FROM report_upvotes WHERE report_id IN (%s)",
		strings.Join(placeholders, ","))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to query upvotes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var reportID, email string
		if err := rows.Scan(&reportID, &email); err != nil {
			return fmt.Errorf("failed to scan upvote row: %w", err)
		}
		if r, ok := index[reportID]; ok {
			r.Upvoters = append(r.Upvoters, email)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate upvote rows: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReport(row rowScanner) (*models.Report, error) {
	var r models.Report
	var photoURLs sql.NullString

	err := row.Scan(&r.ID, &r.Title, &r.Description, &r.Location, &r.Category,
		&r.Status, &r.Sentiment, &r.UpvoteCount, &r.CommentCount,
		&photoURLs, &r.CreatedBy, &r.CreatedDate)
	if err != nil {
		return nil, err
	}

	r.Upvoters = []string{}
	r.PhotoURLs = []string{}
	if photoURLs.Valid && photoURLs.String != "" {
		if err := json.Unmarshal([]byte(photoURLs.String), &r.PhotoURLs); err != nil {
			return nil, fmt.Errorf("failed to decode photo URLs for report %s: %w", r.ID, err)
		}
		if r.PhotoURLs == nil {
			r.PhotoURLs = []string{}
		}
	}
	return &r, nil
}

func validateCreateRequest(req models.CreateReportRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return fmt.Errorf("%w: title is required", models.ErrValidation)
	}
	if strings.TrimSpace(req.Description) == "" {
		return fmt.Errorf("%w: description is required", models.ErrValidation)
	}
	if strings.TrimSpace(req.Location) == "" {
		return fmt.Errorf("%w: location is required", models.ErrValidation)
	}
	if req.Category == "" {
		return fmt.Errorf("%w: category is required", models.ErrValidation)
	}
	if !models.ValidCategory(req.Category) {
		return fmt.Errorf("%w: unknown category %q", models.ErrValidation, req.Category)
	}
	if len(req.PhotoURLs) > models.MaxPhotoURLs {
		return fmt.Errorf("%w: maximum %d photos allowed", models.ErrValidation, models.MaxPhotoURLs)
	}
	return nil
}
