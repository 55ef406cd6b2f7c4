package api

import (
	"alcyxob/coach-hub/internal/config"
	"alcyxob/coach-hub/internal/domain"
	"alcyxob/coach-hub/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CoachHandler struct {
	coachService    service.CoachService
	documentService service.DocumentService
	app             config.AppConfig
	loc             *time.Location // reference timezone for parsing workout dates
}

func NewCoachHandler(coachService service.CoachService, documentService service.DocumentService, app config.AppConfig, loc *time.Location) *CoachHandler {
	return &CoachHandler{
		coachService:    coachService,
		documentService: documentService,
		app:             app,
		loc:             loc,
	}
}

// --- DTOs ---

type WorkoutContentRequest struct {
	Focus      string `json:"focus"`
	Mobility   string `json:"mobility"`
	WarmUp     string `json:"warmUp"`
	Skill      string `json:"skill"`
	WOD        string `json:"wod"`
	Stretching string `json:"stretching"`
	VideoURL   string `json:"videoUrl"`
}

func (r WorkoutContentRequest) toDomain() domain.WorkoutContent {
	return domain.WorkoutContent{
		Focus:      r.Focus,
		Mobility:   r.Mobility,
		WarmUp:     r.WarmUp,
		Skill:      r.Skill,
		WOD:        r.WOD,
		Stretching: r.Stretching,
		VideoURL:   r.VideoURL,
	}
}

type TemplateRequest struct {
	Title   string                `json:"title" binding:"required"`
	Content WorkoutContentRequest `json:"content"`
}

type TemplateResponse struct {
	ID        string                `json:"id"`
	Title     string                `json:"title"`
	Content   domain.WorkoutContent `json:"content"`
	CreatedAt time.Time             `json:"createdAt"`
	UpdatedAt time.Time             `json:"updatedAt"`
}

func MapTemplateToResponse(t *domain.WorkoutTemplate) TemplateResponse {
	return TemplateResponse{
		ID:        t.ID.Hex(),
		Title:     t.Title,
		Content:   t.Content,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

type AssignWorkoutRequest struct {
	// Date is a calendar day in the app's reference timezone.
	Date       string                 `json:"date" binding:"required"` // "2006-01-02"
	TemplateID *string                `json:"templateId,omitempty"`
	Title      string                 `json:"title"`
	Content    *WorkoutContentRequest `json:"content,omitempty"`
	TraineeIDs []string               `json:"traineeIds" binding:"required"`
}

type CompletionResponse struct {
	ID           string     `json:"id"`
	AssignmentID string     `json:"assignmentId"`
	TraineeID    string     `json:"traineeId"`
	Status       string     `json:"status"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
}

func MapCompletionToResponse(c *domain.WorkoutCompletion) CompletionResponse {
	return CompletionResponse{
		ID:           c.ID.Hex(),
		AssignmentID: c.AssignmentID.Hex(),
		TraineeID:    c.TraineeID.Hex(),
		Status:       string(c.Status()),
		CompletedAt:  c.CompletedAt,
	}
}

type AssignmentResponse struct {
	ID          string                `json:"id"`
	Date        time.Time             `json:"date"`
	Title       string                `json:"title"`
	Content     domain.WorkoutContent `json:"content"`
	TemplateID  *string               `json:"templateId,omitempty"`
	TraineeIDs  []string              `json:"traineeIds"`
	Completions []CompletionResponse  `json:"completions,omitempty"`
}

func MapAssignmentOverviewToResponse(o *service.AssignmentOverview) AssignmentResponse {
	resp := AssignmentResponse{
		ID:      o.ID.Hex(),
		Date:    o.Date,
		Title:   o.Title,
		Content: o.Content,
	}
	if o.TemplateID != nil {
		hex := o.TemplateID.Hex()
		resp.TemplateID = &hex
	}
	for _, id := range o.TraineeIDs {
		resp.TraineeIDs = append(resp.TraineeIDs, id.Hex())
	}
	for i := range o.Completions {
		resp.Completions = append(resp.Completions, MapCompletionToResponse(&o.Completions[i]))
	}
	return resp
}

type BlockRequest struct {
	Reason domain.BlockReason `json:"reason" binding:"required"`
}

type FeedbackRequest struct {
	CompletionID string `json:"completionId" binding:"required"`
	Body         string `json:"body" binding:"required"`
}

type FeedbackResponse struct {
	ID           string    `json:"id"`
	CompletionID string    `json:"completionId"`
	AssignmentID string    `json:"assignmentId"`
	TraineeID    string    `json:"traineeId"`
	Body         string    `json:"body"`
	SentAt       time.Time `json:"sentAt"`
}

func MapFeedbackToResponse(f *domain.Feedback) FeedbackResponse {
	return FeedbackResponse{
		ID:           f.ID.Hex(),
		CompletionID: f.CompletionID.Hex(),
		AssignmentID: f.AssignmentID.Hex(),
		TraineeID:    f.TraineeID.Hex(),
		Body:         f.Body,
		SentAt:       f.SentAt,
	}
}

type CreateDocumentRequest struct {
	Title       string `json:"title" binding:"required"`
	Slug        string `json:"slug" binding:"required"`
	Description string `json:"description"`
	ContentType string `json:"contentType"`
}

type DistributeRequest struct {
	RecipientIDs []string `json:"recipientIds" binding:"required"`
}

type DocumentResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	Recipients  []string  `json:"recipients"`
	CreatedAt   time.Time `json:"createdAt"`
}

func MapDocumentToResponse(d *domain.Document) DocumentResponse {
	resp := DocumentResponse{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Slug:        d.Slug,
		Description: d.Description,
		Recipients:  []string{},
		CreatedAt:   d.CreatedAt,
	}
	for _, id := range d.RecipientIDs {
		resp.Recipients = append(resp.Recipients, id.Hex())
	}
	return resp
}

// --- Workout Catalog ---

func (h *CoachHandler) CreateTemplate(c *gin.Context) {
	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	identity, err := identityFromContext(c)
	if err != nil {
		redirectTo(c, h.app.LoginPath)
		return
	}

	tpl, err := h.coachService.CreateTemplate(c.Request.Context(), identity, req.Title, req.Content.toDomain())
	if err != nil {
		respondServiceError(c, h.app, identity, err)
		return
	}
	c.JSON(http.StatusCreated, MapTemplateToResponse(tpl))
}

func (h *CoachHandler) UpdateTemplate(c *gin.Context) {
	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	templateID, err := primitive.ObjectIDFromHex(c.Param("templateId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid template ID format.")
		return
	}

	identity, err := identityFromContext(c)
	if err != nil {
		redirectTo(c, h.app.LoginPath)
		return
	}

	tpl, err := h.coachService.UpdateTemplate(c.Request.Context(), identity, templateID, req.Title, req.Content.toDomain())
	if err != nil {
		respondServiceError(c, h.app, identity, err)
		return
	}
	c.JSON(http.StatusOK, MapTemplateToResponse(tpl))
}

func (h *CoachHandler) ListTemplates(c *gin.Context) {
	identity, err := identityFromContext(c)
	if err != nil {
		redirectTo(c, h.app.LoginPath)
		return
	}

	templates, err := h.coachService.ListTemplates(c.Request.Context(), identity)
	if err != nil {
		respondServiceError(c, h.app, identity, err)
		return
	}

	resp := make([]TemplateResponse, 0, len(templates))
	for i := range templates {
		resp = append(resp, MapTemplateToResponse(&templates[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// --- Assignment Lifecycle ---

func (h *CoachHandler) AssignWorkout(c *gin.Context) {
	var req AssignWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	// Parse in the reference timezone so the stored day matches the one
	// the coach picked, wherever the server runs.
	date, err := time.ParseInLocation("2006-01-02", req.Date, h.loc)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD.")
		return
	}

	var templateID *primitive.ObjectID
	if req.TemplateID != nil {
		id, err := primitive.ObjectIDFromHex(*req.TemplateID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid template ID format.")
			return
		}
		templateID = &id
	}

	traineeIDs := make([]primitive.ObjectID, 0, len(req.TraineeIDs))
	for _, raw := range req.TraineeIDs {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid trainee ID format: "+raw)
			return
		}
		traineeIDs = append(traineeIDs, id)
	}

	var content domain.WorkoutContent
	if req.Content != nil {
		content = req.Content.toDomain()
	}

	identity, err := identityFromContext(c)
	if err != nil {
		redirectTo(c, h.app.LoginPath)
		return
	}

	assignment, err := h.coachService.AssignWorkout(c.Request.Context(), identity, date, req.Title, content, templateID, traineeIDs)
	if err != nil {
		respondServiceError(c, h.app, identity, err)
		return
	}

	overview := service.AssignmentOverview{WorkoutAssignment: *assignment}
	c.JSON(http.StatusCreated, MapAssignmentOverviewToResponse(&overview))
}

func (h *CoachHandler) ListAssignments(c *gin.Context) {
	identity, err := identityFromContext(c)
	if err != nil {
		redirectTo(c, h.app.LoginPath)
		return
	}

	overviews, err := h.coachService.ListAssignments(c.Request.Context(), identity)
	if err != nil {
		respondServiceError(c, h.app, identity, err)
		return
	}

	resp := make([]AssignmentResponse, 0, len(overviews))
	for i := range overviews {
		resp = append(resp, MapAssignmentOverviewToResponse(&overviews[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CoachHandler) GetAssignment(c *gin.Context) {
	assignmentID, err := primitive.ObjectIDFromHex(c.Param("assignmentId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid assignment ID format.")
		return
	}

	identity, err := identityFromContext(c)
	if err != nil {
		redirectTo(c, h.app.LoginPath)
		return
	}

	overview, err := h.coachService.AssignmentDetail(c.Request.Context(), identity, assignmentID)
	if err != nil {
		respondServiceError(c, h.app, identity, err)
		return
	}
	c.JSON(http.StatusOK, MapAssignmentOverviewToResponse(overview))
}

// --- Blocking State Machine ---

func (h *CoachHandler) SetBlockStatus(c *gin.Context) {
	var req BlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	traineeID, err := primitive.ObjectIDFromHex(c.Param("traineeId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid trainee ID format.")
		return
	}

	identity, err := identityFromContext(c)
	if err != nil {
		redirectTo(c, h.app.LoginPath)
		return
	}

	if err := h.coachService.SetBlockStatus(c.Request.Context(), identity, traineeID, req.Reason); err != nil {
		respondServiceError(c, h.app, identity, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"traineeId": traineeID.Hex(), "reason": req.Reason})
}

// --- Feedback Channel ---

func (h *CoachHandler) SendFeedback(c *gin.Context) {
	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	completionID, err := primitive.ObjectIDFromHex(req.CompletionID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid completion ID format.")
		return
	}

	identity, err := identityFromContext(c)
	if err != nil {
		redirectTo(c, h.app.LoginPath)
		return
	}

	fb, err := h.coachService.SendFeedback(c.Request.Context(), identity, completionID, req.Body)
	if err != nil {
		respondServiceError(c, h.app, identity, err)
		return
	}
	c.JSON(http.StatusCreated, MapFeedbackToResponse(fb))
}

func (h *CoachHandler) ListFeedback(c *gin.Context) {
	identity, err := identityFromContext(c)
	if err != nil {
		redirectTo(c, h.app.LoginPath)
		return
	}

	var filter service.FeedbackFilter
	if raw := c.Query("traineeId"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid trainee ID format.")
			return
		}
		filter.TraineeID = &id
	}
	if raw := c.Query("assignmentId"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid assignment ID format.")
			return
		}
		filter.AssignmentID = &id
	}

	entries, err := h.coachService.ListFeedback(c.Request.Context(), identity, filter)
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

// --- Roster & Audit ---

func (h *CoachHandler) ListTrainees(c *gin.Context) {
	identity, err := identityFromContext(c)
	if err != nil {
		redirectTo(c, h.app.LoginPath)
		return
	}

	trainees, err := h.coachService.ListTrainees(c.Request.Context(), identity)
	if err != nil {
		respondServiceError(c, h.app, identity, err)
		return
	}

	resp := make([]UserResponse, 0, len(trainees))
	for i := range trainees {
		resp = append(resp, MapUserToResponse(&trainees[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CoachHandler) ListAuditLog(c *gin.Context) {
	identity, err := identityFromContext(c)
	if err != nil {
		redirectTo(c, h.app.LoginPath)
		return
	}

	entries, err := h.coachService.ListAuditLog(c.Request.Context(), identity, 200)
	if err != nil {
		respondServiceError(c, h.app, identity, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// --- Document Distribution ---

func (h *CoachHandler) CreateDocument(c *gin.Context) {
	var req CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	identity, err := identityFromContext(c)
	if err != nil {
		redirectTo(c, h.app.LoginPath)
		return
	}

	upload, err := h.documentService.CreateDocument(c.Request.Context(), identity, req.Title, req.Slug, req.Description, req.ContentType)
	if err != nil {
		respondServiceError(c, h.app, identity, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"document":  MapDocumentToResponse(upload.Document),
		"uploadUrl": upload.UploadURL,
	})
}

func (h *CoachHandler) DistributeDocument(c *gin.Context) {
	var req DistributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	documentID, err := primitive.ObjectIDFromHex(c.Param("documentId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid document ID format.")
		return
	}

	recipientIDs := make([]primitive.ObjectID, 0, len(req.RecipientIDs))
	for _, raw := range req.RecipientIDs {
		// Malformed ids are dropped like unknown ones: best-effort.
		if id, err := primitive.ObjectIDFromHex(raw); err == nil {
			recipientIDs = append(recipientIDs, id)
		}
	}

	identity, err := identityFromContext(c)
	if err != nil {
		redirectTo(c, h.app.LoginPath)
		return
	}

	doc, err := h.documentService.Distribute(c.Request.Context(), identity, documentID, recipientIDs)
	if err != nil {
		respondServiceError(c, h.app, identity, err)
		return
	}

	names, err := h.documentService.ResolveRecipients(c.Request.Context(), doc.RecipientIDs)
	if err != nil {
		respondServiceError(c, h.app, identity, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"document":         MapDocumentToResponse(doc),
		"recipientSummary": service.SummarizeRecipients(names),
	})
}

func (h *CoachHandler) ListDocuments(c *gin.Context) {
	identity, err := identityFromContext(c)
	if err != nil {
		redirectTo(c, h.app.LoginPath)
		return
	}

	docs, err := h.documentService.ListDocuments(c.Request.Context(), identity)
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

// GetDocumentRecipients renders the recipient list the way the UI shows
// it: resolved names in stored order plus the fixed-format summary.
func (h *CoachHandler) GetDocumentRecipients(c *gin.Context) {
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

	docs, err := h.documentService.ListDocuments(c.Request.Context(), identity)
	if err != nil {
		respondServiceError(c, h.app, identity, err)
		return
	}
	for i := range docs {
		if docs[i].ID == documentID {
			names, err := h.documentService.ResolveRecipients(c.Request.Context(), docs[i].RecipientIDs)
			if err != nil {
				respondServiceError(c, h.app, identity, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{
				"recipients": names,
				"summary":    service.SummarizeRecipients(names),
			})
			return
		}
	}
	abortWithError(c, http.StatusNotFound, "document not found")
}

func (h *CoachHandler) GetDocumentDownloadURL(c *gin.Context) {
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
