package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rafflehq/raffle-backend/internal/models"
	"github.com/rafflehq/raffle-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SubmissionHandler handles submission-related HTTP requests
type SubmissionHandler struct {
	submissionService services.SubmissionService
}

// NewSubmissionHandler creates a new SubmissionHandler
func NewSubmissionHandler(submissionService services.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{
		submissionService: submissionService,
	}
}

// CreateSubmission handles POST /submissions
func (h *SubmissionHandler) CreateSubmission(c *gin.Context) {
	var request models.CreateSubmissionRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	submission, err := h.submissionService.Create(c.Request.Context(), &request)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, submission)
}

// ListSubmissions handles GET /submissions with optional status and
// raffleId filters
func (h *SubmissionHandler) ListSubmissions(c *gin.Context) {
	status := models.SubmissionStatus(c.Query("status"))

	var raffleID primitive.ObjectID
	if raw := c.Query("raffleId"); raw != "" {
		parsed, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid raffleId format"})
			return
		}
		raffleID = parsed
	}

	cursor, limit := pageQuery(c)
	page, err := h.submissionService.List(c.Request.Context(), status, raffleID, cursor, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"submissions": page.Items, "pagination": page.Pagination})
}

// GetSubmissionByID handles GET /submissions/:id, returning the submission
// together with its bound tickets
func (h *SubmissionHandler) GetSubmissionByID(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	submission, err := h.submissionService.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	tickets, err := h.submissionService.TicketsFor(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"submission": submission, "tickets": tickets})
}

// ReviewSubmission handles PATCH /submissions/:id. The target status picks
// the transition: APPROVED binds the proposed ticket numbers, REJECTED
// records the admin note. A retry against an already-reviewed submission
// fails with InvalidTransition rather than re-allocating tickets.
func (h *SubmissionHandler) ReviewSubmission(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	var request models.ReviewSubmissionRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var submission *models.Submission
	switch request.Status {
	case models.SubmissionStatusApproved:
		submission, err = h.submissionService.Approve(c.Request.Context(), id, request.TicketNumbers)
	case models.SubmissionStatusRejected:
		submission, err = h.submissionService.Reject(c.Request.Context(), id, request.AdminNotes)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be APPROVED or REJECTED"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, submission)
}
