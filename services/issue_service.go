package services

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicfix-be/apperrors"
	"civicfix-be/auth"
	"civicfix-be/models"
	"civicfix-be/store"
)

// CreateIssueInput holds the only fields a citizen controls at creation.
// Status, assignment and creator are set by the service; a client-supplied
// value for any of them has no representation here and is dropped.
type CreateIssueInput struct {
	Title       string
	Description string
	Category    string
	Latitude    float64
	Longitude   float64
	ImageRef    string
}

// IssueWithReporter is an issue with its reporter resolved to the
// display-safe user subset.
type IssueWithReporter struct {
	models.Issue
	CreatedBy models.ReporterSummary `json:"createdBy"`
}

// IssueSummary is the admin dashboard tally over the whole store.
type IssueSummary struct {
	TotalIssues int            `json:"totalIssues"`
	OpenIssues  int            `json:"openIssues"`
	ByStatus    map[string]int `json:"byStatus"`
	ByCategory  map[string]int `json:"byCategory"`
}

// IssueService enforces the issue lifecycle: who may create, read, mutate and
// delete issues, and which fields each operation may touch. Every operation
// takes the calling principal explicitly and checks the role gate before any
// store access.
type IssueService struct {
	issues store.IssueStore
	users  store.UserStore
	log    *slog.Logger
	now    func() time.Time
}

func NewIssueService(issues store.IssueStore, users store.UserStore, log *slog.Logger) *IssueService {
	if log == nil {
		log = slog.Default()
	}
	return &IssueService{
		issues: issues,
		users:  users,
		log:    log,
		now:    time.Now,
	}
}

// Create stores a new issue reported by the principal. The issue always
// starts Pending and unassigned, owned by the caller.
func (s *IssueService) Create(ctx context.Context, p auth.Principal, in CreateIssueInput) (*models.Issue, error) {
	if err := auth.Authorize(p, auth.CapReportIssue); err != nil {
		return nil, err
	}
	if err := validateCreateInput(in); err != nil {
		return nil, err
	}

	createdBy, err := primitive.ObjectIDFromHex(p.ID)
	if err != nil {
		return nil, apperrors.NewUnauthorizedError("invalid principal id")
	}

	now := s.now()
	issue := &models.Issue{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Category:    models.IssueCategory(in.Category),
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		ImageRef:    in.ImageRef,
		Status:      models.Pending,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := s.issues.Insert(ctx, issue); err != nil {
		return nil, err
	}

	s.log.Info("issue created",
		"issue_id", issue.ID.Hex(),
		"category", issue.Category,
		"created_by", p.ID,
	)
	return issue, nil
}

// ListAll returns every issue, filtered and sorted, with reporters resolved.
// Admin/staff only.
func (s *IssueService) ListAll(ctx context.Context, p auth.Principal, f Filters) ([]IssueWithReporter, error) {
	if err := auth.Authorize(p, auth.CapReadAllIssues); err != nil {
		return nil, err
	}

	issues, err := s.issues.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.resolveReporters(ctx, ApplyFilters(issues, f)), nil
}

// ListOwn returns the caller's issues, filtered and sorted. The owner scope
// is enforced by querying the store for the principal's id only, so there is
// no way to see another user's issues through this path.
func (s *IssueService) ListOwn(ctx context.Context, p auth.Principal, f Filters) ([]models.Issue, error) {
	if err := auth.Authorize(p, auth.CapReadOwnIssues, p.ID); err != nil {
		return nil, err
	}

	ownerID, err := primitive.ObjectIDFromHex(p.ID)
	if err != nil {
		return nil, apperrors.NewUnauthorizedError("invalid principal id")
	}

	issues, err := s.issues.FindByCreator(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return ApplyFilters(issues, f), nil
}

// Get returns a single issue. Admin/staff may read any issue, a citizen only
// their own.
func (s *IssueService) Get(ctx context.Context, p auth.Principal, id primitive.ObjectID) (*IssueWithReporter, error) {
	issue, err := s.issues.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.CanAccessIssue(p, issue.CreatedBy.Hex()) {
		return nil, apperrors.NewForbiddenError("not the owner of this resource")
	}

	resolved := s.resolveReporters(ctx, []models.Issue{*issue})
	return &resolved[0], nil
}

// Update applies a triage patch to an issue. Only status, resolution notes
// and assignment are mutable; only admin/staff may call this. Returns the
// updated issue as committed by the store.
func (s *IssueService) Update(ctx context.Context, p auth.Principal, id primitive.ObjectID, patch store.IssuePatch) (*models.Issue, error) {
	if err := auth.Authorize(p, auth.CapMutateIssue); err != nil {
		return nil, err
	}
	if patch.Status != nil && !patch.Status.IsValid() {
		return nil, apperrors.NewValidationError("invalid status", string(*patch.Status))
	}
	if patch.IsEmpty() {
		return nil, apperrors.NewValidationError("nothing to update")
	}

	updated, err := s.issues.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.log.Info("issue updated", "issue_id", id.Hex(), "updated_by", p.ID)
	return updated, nil
}

// Remove deletes an issue. Admin/staff only; reporters cannot delete their
// own issues.
func (s *IssueService) Remove(ctx context.Context, p auth.Principal, id primitive.ObjectID) error {
	if err := auth.Authorize(p, auth.CapDeleteIssue); err != nil {
		return err
	}
	if err := s.issues.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info("issue deleted", "issue_id", id.Hex(), "deleted_by", p.ID)
	return nil
}

// Summary tallies the store by status and category for the admin dashboard.
func (s *IssueService) Summary(ctx context.Context, p auth.Principal) (*IssueSummary, error) {
	if err := auth.Authorize(p, auth.CapReadAllIssues); err != nil {
		return nil, err
	}

	issues, err := s.issues.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	summary := &IssueSummary{
		TotalIssues: len(issues),
		ByStatus:    map[string]int{},
		ByCategory:  map[string]int{},
	}
	for _, issue := range issues {
		summary.ByStatus[string(issue.Status)]++
		summary.ByCategory[string(issue.Category)]++
		if issue.Status != models.Resolved {
			summary.OpenIssues++
		}
	}
	return summary, nil
}

func (s *IssueService) resolveReporters(ctx context.Context, issues []models.Issue) []IssueWithReporter {
	out := make([]IssueWithReporter, 0, len(issues))
	for _, issue := range issues {
		reporter := models.ReporterSummary{ID: issue.CreatedBy}
		if user, err := s.users.GetByID(ctx, issue.CreatedBy); err == nil {
			reporter = user.Summary()
		}
		out = append(out, IssueWithReporter{Issue: issue, CreatedBy: reporter})
	}
	return out
}

func validateCreateInput(in CreateIssueInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return apperrors.NewValidationError("title is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		return apperrors.NewValidationError("description is required")
	}
	if !models.IssueCategory(in.Category).IsValid() {
		return apperrors.NewValidationError("invalid category", in.Category)
	}
	if !isFinite(in.Latitude) || !isFinite(in.Longitude) {
		return apperrors.NewValidationError("latitude and longitude must be finite numbers")
	}
	if in.ImageRef == "" {
		return apperrors.NewValidationError("image reference is required")
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
