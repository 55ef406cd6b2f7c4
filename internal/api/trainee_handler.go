package api

import (
	"alcyxob/coach-hub/internal/config"
	"alcyxob/coach-hub/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TraineeHandler struct {
	traineeService  service.TraineeService
	documentService service.DocumentService
	app             config.AppConfig
	loc             *time.Location
}

func NewTraineeHandler(traineeService service.TraineeService, documentService service.DocumentService, app config.AppConfig, loc *time.Location) *TraineeHandler {
	return &TraineeHandler{
		traineeService:  traineeService,
		documentService: documentService,
		app:             app,
		loc:             loc,
	}
}

// --- DTOs ---

type WorkoutEntryResponse struct {
	Assignment AssignmentResponse `json:"assignment"`
	Completion CompletionResponse `json:"completion"`
}

type MarkDoneRequest struct {
	TraineeID string `json:"traineeId" binding:"required"`
}

func mapEntryToResponse(e *service.WorkoutEntry) WorkoutEntryResponse {
	overview := service.AssignmentOverview{WorkoutAssignment: e.WorkoutAssignment}
	return WorkoutEntryResponse{
		Assignment: MapAssignmentOverviewToResponse(&overview),
		Completion: MapCompletionToResponse(&e.Completion),
	}
}

// --- Handlers ---

// GetTodaysWorkout returns the workout dated today in the reference
// timezone, or an empty body when none is scheduled.
func (h *TraineeHandler) GetTodaysWorkout(c *gin.Context) {
	identity, err := identityFromContext(c)
	if err != nil {
		redirectTo(c, h.app.LoginPath)
		return
	}

	entry, err := h.traineeService.TodaysAssignment(c.Request.Context(), identity)
	if err != nil {
		respondServiceError(c, h.app, identity, err)
		return
	}
	if entry == nil {
		c.JSON(http.StatusOK, gin.H{"workout": nil, "date": time.Now().In(h.loc).Format("2006-01-02")})
		return
	}
	c.JSON(http.StatusOK, mapEntryToResponse(entry))
}

// GetHistory returns the trainee's full workout history, newest first.
func (h *TraineeHandler) GetHistory(c *gin.Context) {
	identity, err := identityFromContext(c)
	if err != nil {
		redirectTo(c, h.app.LoginPath)
		return
	}

	entries, err := h.traineeService.History(c.Request.Context(), identity)
	if err != nil {
		respondServiceError(c, h.app, identity, err)
		return
	}

	resp := make([]WorkoutEntryResponse, 0, len(entries))
	for i := range entries {
		resp = append(resp, mapEntryToResponse(&entries[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// MarkDone flips the caller's completion row for an assignment to DONE.
// Repeated calls are a no-op and return the original completedAt.
func (h *TraineeHandler) MarkDone(c *gin.Context) {
	var req MarkDoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	assignmentID, err := primitive.ObjectIDFromHex(c.Param("assignmentId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid assignment ID format.")
		return
	}
	traineeID, err := primitive.ObjectIDFromHex(req.TraineeID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid trainee ID format.")
		return
	}

	identity, err := identityFromContext(c)
	if err != nil {
		redirectTo(c, h.app.LoginPath)
		return
	}

	completion, err := h.traineeService.MarkDone(c.Request.Context(), identity, assignmentID, traineeID)
	if err != nil {
		respondServiceError(c, h.app, identity, err)
		return
	}
	c.JSON(http.StatusOK, MapCompletionToResponse(completion))
}

// GetMyFeedback returns coach feedback addressed to the caller.
func (h *TraineeHandler) GetMyFeedback(c *gin.Context) {
	identity, err := identityFromContext(c)
	if err != nil {
		redirectTo(c, h.app.LoginPath)
		return
	}

	entries, err := h.traineeService.MyFeedback(c.Request.Context(), identity)
	if err != nil {
		respondServiceError(c, h.app, identity, err)
		return
	}

	resp := make([]FeedbackResponse, 0, len(entries))
	for i := range entries {
		resp = append(resp, MapFeedbackToResponse(&entries[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// GetMyDocuments lists documents distributed to the caller.
func (h *TraineeHandler) GetMyDocuments(c *gin.Context) {
	identity, err := identityFromContext(c)
	if err != nil {
		redirectTo(c, h.app.LoginPath)
		return
	}

	docs, err := h.documentService.MyDocuments(c.Request.Context(), identity)
	if err != nil {
		respondServiceError(c, h.app, identity, err)
		return
	}

	resp := make([]DocumentResponse, 0, len(docs))
	for i := range docs {
		resp = append(resp, MapDocumentToResponse(&docs[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// GetDocumentDownloadURL returns a presigned URL for a document the
// caller received.
func (h *TraineeHandler) GetDocumentDownloadURL(c *gin.Context) {
	documentID, err := primitive.ObjectIDFromHex(c.Param("documentId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid document ID format.")
		return
	}

	identity, err := identityFromContext(c)
	if err != nil {
		redirectTo(c, h.app.LoginPath)
		return
	}

	url, err := h.documentService.DownloadURL(c.Request.Context(), identity, documentID)
	if err != nil {
		respondServiceError(c, h.app, identity, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"downloadUrl": url})
}
