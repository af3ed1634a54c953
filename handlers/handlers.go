package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"civichub-service/aggregate"
	"civichub-service/database"
	"civichub-service/metrics"
	"civichub-service/middleware"
	"civichub-service/models"
	"civichub-service/rabbitmq"
	ws "civichub-service/websocket"

	"github.com/gin-gonic/gin"
)

// topReportCount is how many most-supported issues the feed highlights.
const topReportCount = 3

// Handlers handles HTTP requests for the CivicHub report service
type Handlers struct {
	service   *database.ReportService
	hub       *ws.Hub
	publisher *rabbitmq.Publisher
}

// NewHandlers creates a new handlers instance. publisher may be nil when
// event publishing is disabled.
func NewHandlers(service *database.ReportService, hub *ws.Hub, publisher *rabbitmq.Publisher) *Handlers {
	return &Handlers{
		service:   service,
		hub:       hub,
		publisher: publisher,
	}
}

// CreateReport handles POST /reports.
func (h *Handlers) CreateReport(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req models.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("ERROR: Invalid JSON in CreateReport request from %s: %v", user.Email, err)
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	report, err := h.service.CreateReport(c.Request.Context(), user, req)
	if err != nil {
		if errors.Is(err, models.ErrClassification) {
			metrics.ClassifierFailuresTotal.Inc()
		}
		h.respondError(c, user, "create report", err)
		return
	}

	metrics.ReportsCreatedTotal.WithLabelValues(report.Category).Inc()
	h.notify(models.EventReportCreated, report.ID, report.Status)

	log.Printf("INFO: Report %s created by %s", report.ID, user.Email)
	c.JSON(http.StatusCreated, report)
}

// GetFeed handles GET /reports. Reports come back most recent first;
// location/category/status query params filter them, and when no filter
// is active the response also carries the most-supported issues.
func (h *Handlers) GetFeed(c *gin.Context) {
	reports, err := h.service.ListReports(c.Request.Context())
	if err != nil {
		h.respondError(c, middleware.CurrentUser(c), "list reports", err)
		return
	}

	filters := aggregate.Filters{
		Location: c.Query("location"),
		Category: c.Query("category"),
		Status:   c.Query("status"),
	}
	filtered := aggregate.FilterReports(reports, filters)

	resp := models.FeedResponse{Reports: filtered}
	if filters.IsEmpty() {
		resp.TopReports = aggregate.TopByUpvotes(filtered, topReportCount)
	}

	c.JSON(http.StatusOK, resp)
}

// GetMyReports handles GET /reports/mine.
func (h *Handlers) GetMyReports(c *gin.Context) {
	user := middleware.CurrentUser(c)

	reports, err := h.service.ListReportsByCreator(c.Request.Context(), user.Email)
	if err != nil {
		h.respondError(c, user, "list own reports", err)
		return
	}

	c.JSON(http.StatusOK, models.MyReportsResponse{
		Reports:      reports,
		StatusCounts: aggregate.StatusCounts(reports),
	})
}

// GetReport handles GET /reports/:id.
func (h *Handlers) GetReport(c *gin.Context) {
	user := middleware.CurrentUser(c)
	reportID := c.Param("id")

	report, err := h.service.GetReport(c.Request.Context(), reportID)
	if err != nil {
		h.respondError(c, user, "get report", err)
		return
	}

	comments, err := h.service.ListComments(c.Request.Context(), reportID)
	if err != nil {
		h.respondError(c, user, "list comments", err)
		return
	}

	c.JSON(http.StatusOK, models.ReportDetailsResponse{
		Report:   *report,
		Comments: comments,
	})
}

// ToggleUpvote handles POST /reports/:id/upvote.
func (h *Handlers) ToggleUpvote(c *gin.Context) {
	user := middleware.CurrentUser(c)
	reportID := c.Param("id")

	report, err := h.service.ToggleUpvote(c.Request.Context(), user, reportID)
	if err != nil {
		h.respondError(c, user, "toggle upvote", err)
		return
	}

	direction := "removed"
	if report.HasUpvoted(user.Email) {
		direction = "added"
	}
	metrics.UpvoteTogglesTotal.WithLabelValues(direction).Inc()
	h.notify(models.EventReportUpvoted, report.ID, report.Status)

	c.JSON(http.StatusOK, report)
}

// UpdateStatus handles PUT /admin/reports/:id/status. The role check
// lives in the service, which receives the acting user explicitly.
func (h *Handlers) UpdateStatus(c *gin.Context) {
	user := middleware.CurrentUser(c)
	reportID := c.Param("id")

	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	report, err := h.service.UpdateStatus(c.Request.Context(), user, reportID, req.Status)
	if err != nil {
		h.respondError(c, user, "update status", err)
		return
	}

	metrics.StatusUpdatesTotal.WithLabelValues(report.Status).Inc()
	h.notify(models.EventReportStatusChanged, report.ID, report.Status)

	log.Printf("INFO: Report %s status set to %s by %s", report.ID, report.Status, user.Email)
	c.JSON(http.StatusOK, report)
}

// CreateComment handles POST /reports/:id/comments.
func (h *Handlers) CreateComment(c *gin.Context) {
	user := middleware.CurrentUser(c)
	reportID := c.Param("id")

	var req models.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	comment, err := h.service.CreateComment(c.Request.Context(), user, reportID, req.Content)
	if err != nil {
		h.respondError(c, user, "create comment", err)
		return
	}

	metrics.CommentsCreatedTotal.Inc()
	h.notify(models.EventReportCommented, reportID, "")

	c.JSON(http.StatusCreated, comment)
}

// ListComments handles GET /reports/:id/comments.
func (h *Handlers) ListComments(c *gin.Context) {
	comments, err := h.service.ListComments(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, middleware.CurrentUser(c), "list comments", err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

// AdminDashboard handles GET /admin/dashboard.
func (h *Handlers) AdminDashboard(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if !user.IsAdmin() {
		c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "admin role required"})
		return
	}

	reports, err := h.service.ListReports(c.Request.Context())
	if err != nil {
		h.respondError(c, user, "list reports", err)
		return
	}

	c.JSON(http.StatusOK, models.DashboardResponse{
		Reports:      reports,
		StatusCounts: aggregate.StatusCounts(reports),
	})
}

// ExportReports handles GET /admin/reports/export. Only open reports
// (reported, under_review) are exported, as CSV.
func (h *Handlers) ExportReports(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if !user.IsAdmin() {
		c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "admin role required"})
		return
	}

	reports, err := h.service.ListReports(c.Request.Context())
	if err != nil {
		h.respondError(c, user, "list reports", err)
		return
	}

	var buf bytes.Buffer
	if err := aggregate.WriteCSV(&buf, aggregate.ExportRows(reports)); err != nil {
		log.Printf("ERROR: Failed to write CSV export for %s: %v", user.Email, err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to generate export"})
		return
	}

	filename := fmt.Sprintf("civic-reports-%s.csv", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// HealthCheck returns the service health status
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, models.MessageResponse{
		Message: "CivicHub report service is healthy",
	})
}

// RootHealthCheck returns the service health status (root level)
func (h *Handlers) RootHealthCheck(c *gin.Context) {
	connected, broadcast := h.hub.GetStats()
	c.JSON(http.StatusOK, gin.H{
		"status":            "healthy",
		"service":           "civichub-service",
		"version":           "1.0.0",
		"connected_clients": connected,
		"events_broadcast":  broadcast,
	})
}

// notify pushes a mutation event to WebSocket observers and, when
// configured, to the message broker. Both are best-effort; failures
// never fail the user's operation.
func (h *Handlers) notify(eventType, reportID, status string) {
	event := models.ReportEvent{
		Type:      eventType,
		ReportID:  reportID,
		Status:    status,
		Timestamp: time.Now().UTC(),
	}

	h.hub.BroadcastEvent(event)

	if h.publisher != nil {
		if err := h.publisher.Publish(event); err != nil {
			log.Printf("ERROR: Failed to publish %s event for report %s: %v", eventType, reportID, err)
		}
	}
}

// respondError maps service failures onto HTTP status codes.
func (h *Handlers) respondError(c *gin.Context, user models.User, op string, err error) {
	log.Printf("ERROR: Failed to %s for user %s: %v", op, user.Email, err)

	switch {
	case errors.Is(err, models.ErrValidation), errors.Is(err, models.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrForbidden):
		c.JSON(http.StatusForbidden, models.ErrorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrClassification):
		c.JSON(http.StatusBadGateway, models.ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: fmt.Sprintf("failed to %s", op)})
	}
}
