package models

import "time"

// Report categories. The set is closed; the reporting clients render the
// label map below.
const (
	CategoryRoadsPotholes   = "roads_potholes"
	CategoryWaterSanitation = "water_sanitation"
	CategoryStreetLights    = "street_lights"
	CategoryGarbageWaste    = "garbage_waste"
	CategoryParksRecreation = "parks_recreation"
	CategoryPublicSafety    = "public_safety"
	CategoryOther           = "other"
)

// CategoryLabels maps a category value to its human-readable label.
var CategoryLabels = map[string]string{
	CategoryRoadsPotholes:   "Roads & Potholes",
	CategoryWaterSanitation: "Water & Sanitation",
	CategoryStreetLights:    "Street Lights",
	CategoryGarbageWaste:    "Garbage & Waste",
	CategoryParksRecreation: "Parks & Recreation",
	CategoryPublicSafety:    "Public Safety",
	CategoryOther:           "Other",
}

// Report triage statuses. Any admin may set any status; there is no
// forward-only constraint on transitions.
const (
	StatusReported        = "reported"
	StatusUnderReview     = "under_review"
	StatusActionInitiated = "action_initiated"
	StatusResolved        = "resolved"
)

// Statuses lists all valid statuses in triage order.
var Statuses = []string{
	StatusReported,
	StatusUnderReview,
	StatusActionInitiated,
	StatusResolved,
}

// Sentiment labels assigned by the classifier exactly once, at creation.
const (
	SentimentUrgent    = "urgent"
	SentimentConcerned = "concerned"
	SentimentNeutral   = "neutral"
	SentimentPositive  = "positive"
)

// Sentiments lists all labels the classifier may return.
var Sentiments = []string{
	SentimentUrgent,
	SentimentConcerned,
	SentimentNeutral,
	SentimentPositive,
}

// User roles.
const (
	RoleCitizen = "citizen"
	RoleAdmin   = "admin"
)

// MaxPhotoURLs is the per-report photo attachment cap.
const MaxPhotoURLs = 5

// ValidCategory reports whether c is a known report category.
func ValidCategory(c string) bool {
	_, ok := CategoryLabels[c]
	return ok
}

// ValidStatus reports whether s is a known report status.
func ValidStatus(s string) bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// ValidSentiment reports whether s is a label the classifier may emit.
func ValidSentiment(s string) bool {
	for _, v := range Sentiments {
		if v == s {
			return true
		}
	}
	return false
}

// User is the acting identity carried from the auth middleware into every
// service call. The service never mutates users; it only branches on Role.
type User struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// IsAdmin reports whether the user may triage reports.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Report is a single citizen-submitted civic issue record.
//
// UpvoteCount always equals len(Upvoters) and CommentCount always equals
// the number of comments on the report; both are maintained inside the
// same transaction that mutates the underlying rows.
type Report struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Location     string    `json:"location"`
	Category     string    `json:"category"`
	Status       string    `json:"status"`
	Sentiment    string    `json:"sentiment"`
	Upvoters     []string  `json:"upvotes"`
	UpvoteCount  int       `json:"upvote_count"`
	CommentCount int       `json:"comment_count"`
	PhotoURLs    []string  `json:"photo_urls"`
	CreatedBy    string    `json:"created_by"`
	CreatedDate  time.Time `json:"created_date"`
}

// HasUpvoted reports whether email is in the report's upvote set.
func (r *Report) HasUpvoted(email string) bool {
	for _, e := range r.Upvoters {
		if e == email {
			return true
		}
	}
	return false
}

// Comment is a citizen comment attached to a report.
type Comment struct {
	ID          int64     `json:"id"`
	ReportID    string    `json:"report_id"`
	CreatedBy   string    `json:"created_by"`
	Content     string    `json:"content"`
	CreatedDate time.Time `json:"created_date"`
}

// StatusCounts buckets a report collection by status. Buckets always sum
// to Total.
type StatusCounts struct {
	Total           int `json:"total"`
	Reported        int `json:"reported"`
	UnderReview     int `json:"under_review"`
	ActionInitiated int `json:"action_initiated"`
	Resolved        int `json:"resolved"`
}

// CreateReportRequest is the payload for submitting a new report.
type CreateReportRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Category    string   `json:"category"`
	PhotoURLs   []string `json:"photo_urls"`
}

// UpdateStatusRequest is the payload for an admin status change.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CreateCommentRequest is the payload for posting a comment.
type CreateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

// FeedResponse carries the filtered feed plus the most-supported issues.
type FeedResponse struct {
	Reports    []Report `json:"reports"`
	TopReports []Report `json:"top_reports,omitempty"`
}

// MyReportsResponse carries a user's own reports and their status tallies.
type MyReportsResponse struct {
	Reports      []Report     `json:"reports"`
	StatusCounts StatusCounts `json:"status_counts"`
}

// ReportDetailsResponse carries one report snapshot with its comments.
type ReportDetailsResponse struct {
	Report   Report    `json:"report"`
	Comments []Comment `json:"comments"`
}

// DashboardResponse carries the admin triage overview.
type DashboardResponse struct {
	Reports      []Report     `json:"reports"`
	StatusCounts StatusCounts `json:"status_counts"`
}

// ReportEvent is published to the message broker and broadcast to
// connected observers after every successful mutation.
type ReportEvent struct {
	Type      string    `json:"type"`
	ReportID  string    `json:"report_id"`
	Status    string    `json:"status,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Report event types.
const (
	EventReportCreated       = "report.created"
	EventReportUpvoted       = "report.upvoted"
	EventReportStatusChanged = "report.status_changed"
	EventReportCommented     = "report.commented"
)

// MessageResponse represents a simple message response
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}
