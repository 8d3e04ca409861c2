package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicfix-be/models"
	"civicfix-be/services"
	"civicfix-be/store"
)

// IssueController exposes the citizen-facing issue endpoints on top of the
// issue service.
type IssueController struct {
	svc *services.IssueService
}

func NewIssueController(svc *services.IssueService) *IssueController {
	return &IssueController{svc: svc}
}

// CreateIssue handles the creation of a new issue. Status, assignment and
// creator are not bindable here; whatever a client smuggles in is dropped.
func (ic *IssueController) CreateIssue(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	var input struct {
		Title       string   `json:"title" binding:"required,max=200"`
		Description string   `json:"description" binding:"required,max=1000"`
		Category    string   `json:"category" binding:"required"`
		Latitude    *float64 `json:"latitude" binding:"required"`
		Longitude   *float64 `json:"longitude" binding:"required"`
		ImageRef    string   `json:"imageRef" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	issue, err := ic.svc.Create(c.Request.Context(), principal, services.CreateIssueInput{
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Latitude:    *input.Latitude,
		Longitude:   *input.Longitude,
		ImageRef:    input.ImageRef,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, issue)
}

// GetMyIssues returns the caller's issues with optional filters applied.
func (ic *IssueController) GetMyIssues(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	issues, err := ic.svc.ListOwn(c.Request.Context(), principal, filtersFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"issues": issues, "totalIssues": len(issues)})
}

// GetIssue retrieves a single issue by id, readable by its reporter or by
// admin/staff.
func (ic *IssueController) GetIssue(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	issueID, ok := issueIDParam(c)
	if !ok {
		return
	}

	issue, err := ic.svc.Get(c.Request.Context(), principal, issueID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, issue)
}

// GetAllIssues returns every issue with filters applied. Admin/staff only.
func (ic *IssueController) GetAllIssues(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	issues, err := ic.svc.ListAll(c.Request.Context(), principal, filtersFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"issues": issues, "totalIssues": len(issues)})
}

// UpdateIssue applies a triage patch: status, resolution notes and
// assignment only. Admin/staff only. Unknown fields in the body are ignored.
func (ic *IssueController) UpdateIssue(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	issueID, ok := issueIDParam(c)
	if !ok {
		return
	}

	var input struct {
		Status          *string `json:"status,omitempty"`
		ResolutionNotes *string `json:"resolutionNotes,omitempty"`
		AssignedTo      *string `json:"assignedTo,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patch := store.IssuePatch{
		ResolutionNotes: input.ResolutionNotes,
		AssignedTo:      input.AssignedTo,
	}
	if input.Status != nil {
		status := models.IssueStatus(*input.Status)
		patch.Status = &status
	}

	issue, err := ic.svc.Update(c.Request.Context(), principal, issueID, patch)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, issue)
}

// DeleteIssue removes an issue. Admin/staff only.
func (ic *IssueController) DeleteIssue(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	issueID, ok := issueIDParam(c)
	if !ok {
		return
	}

	if err := ic.svc.Remove(c.Request.Context(), principal, issueID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Issue deleted successfully"})
}

// GetSummary returns the status/category tallies for the admin dashboard.
func (ic *IssueController) GetSummary(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	summary, err := ic.svc.Summary(c.Request.Context(), principal)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func filtersFromQuery(c *gin.Context) services.Filters {
	return services.Filters{
		Status:   c.Query("status"),
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Sort:     c.DefaultQuery("sort", services.SortLatest),
	}
}

func issueIDParam(c *gin.Context) (primitive.ObjectID, bool) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return primitive.NilObjectID, false
	}
	return issueID, true
}
