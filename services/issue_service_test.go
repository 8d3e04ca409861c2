package services

import (
	"context"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicfix-be/apperrors"
	"civicfix-be/auth"
	"civicfix-be/models"
	"civicfix-be/store"
)

type serviceFixture struct {
	svc    *IssueService
	issues *store.MemoryIssueStore
	users  *store.MemoryUserStore

	citizen auth.Principal
	other   auth.Principal
	admin   auth.Principal
	staff   auth.Principal
}

func newFixture(t *testing.T) *serviceFixture {
	t.Helper()

	issues := store.NewMemoryIssueStore()
	users := store.NewMemoryUserStore()
	svc := NewIssueService(issues, users, slog.Default())

	ctx := context.Background()
	newUser := func(name, email string, role auth.Role) auth.Principal {
		user := &models.User{Name: name, Email: email, Role: role}
		id, err := users.Insert(ctx, user)
		require.NoError(t, err)
		return auth.Principal{ID: id.Hex(), Role: role}
	}

	return &serviceFixture{
		svc:     svc,
		issues:  issues,
		users:   users,
		citizen: newUser("Uma", "uma@example.com", auth.RoleCitizen),
		other:   newUser("Omar", "omar@example.com", auth.RoleCitizen),
		admin:   newUser("Ada", "ada@example.com", auth.RoleAdmin),
		staff:   newUser("Sam", "sam@example.com", auth.RoleStaff),
	}
}

func validInput() CreateIssueInput {
	return CreateIssueInput{
		Title:       "Pothole on 5th",
		Description: "deep",
		Category:    "Pothole",
		Latitude:    12.9,
		Longitude:   77.6,
		ImageRef:    "img1",
	}
}

func TestCreateStartsPendingAndUnassigned(t *testing.T) {
	f := newFixture(t)

	issue, err := f.svc.Create(context.Background(), f.citizen, validInput())
	require.NoError(t, err)

	assert.Equal(t, models.Pending, issue.Status)
	assert.Empty(t, issue.AssignedTo)
	assert.Empty(t, issue.ResolutionNotes)
	assert.Equal(t, f.citizen.ID, issue.CreatedBy.Hex())
	assert.False(t, issue.CreatedAt.IsZero())

	stored, err := f.issues.Get(context.Background(), issue.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Pending, stored.Status)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*CreateIssueInput)
	}{
		{"missing title", func(in *CreateIssueInput) { in.Title = "  " }},
		{"missing description", func(in *CreateIssueInput) { in.Description = "" }},
		{"unknown category", func(in *CreateIssueInput) { in.Category = "Noise" }},
		{"missing image ref", func(in *CreateIssueInput) { in.ImageRef = "" }},
		{"nan latitude", func(in *CreateIssueInput) { in.Latitude = math.NaN() }},
		{"infinite longitude", func(in *CreateIssueInput) { in.Longitude = math.Inf(1) }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)

			_, err := f.svc.Create(ctx, f.citizen, in)
			require.Error(t, err)
			assert.True(t, apperrors.IsValidationError(err))
		})
	}

	// Nothing was stored for any rejected input.
	all, err := f.issues.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateRequiresAuthentication(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), auth.Principal{}, validInput())
	require.Error(t, err)
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrorTypeUnauthorized, appErr.Type)
}

func TestListAllRequiresStaffRole(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ListAll(context.Background(), f.citizen, Filters{})
	require.Error(t, err)
	assert.True(t, apperrors.IsForbiddenError(err))
}

func TestListAllResolvesReporterSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.citizen, validInput())
	require.NoError(t, err)

	listed, err := f.svc.ListAll(ctx, f.admin, Filters{})
	require.NoError(t, err)
	require.Len(t, listed, 1)

	reporter := listed[0].CreatedBy
	assert.Equal(t, "Uma", reporter.Name)
	assert.Equal(t, "uma@example.com", reporter.Email)
	assert.Equal(t, f.citizen.ID, reporter.ID.Hex())
}

func TestListOwnIsExactlyTheCallersSubsetOfListAll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		in := validInput()
		in.Title = "mine"
		_, err := f.svc.Create(ctx, f.citizen, in)
		require.NoError(t, err)
	}
	in := validInput()
	in.Title = "theirs"
	_, err := f.svc.Create(ctx, f.other, in)
	require.NoError(t, err)

	own, err := f.svc.ListOwn(ctx, f.citizen, Filters{})
	require.NoError(t, err)
	require.Len(t, own, 3)
	for _, issue := range own {
		assert.Equal(t, f.citizen.ID, issue.CreatedBy.Hex())
		assert.Equal(t, "mine", issue.Title)
	}

	all, err := f.svc.ListAll(ctx, f.admin, Filters{})
	require.NoError(t, err)

	ownOfAll := 0
	for _, issue := range all {
		if issue.Issue.CreatedBy.Hex() == f.citizen.ID {
			ownOfAll++
		}
	}
	assert.Equal(t, len(own), ownOfAll)
}

func TestGetOwnershipRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.citizen, validInput())
	require.NoError(t, err)

	// Owner, admin and staff may read it.
	for _, p := range []auth.Principal{f.citizen, f.admin, f.staff} {
		got, err := f.svc.Get(ctx, p, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.Issue.ID)
	}

	// Another citizen may not.
	_, err = f.svc.Get(ctx, f.other, created.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsForbiddenError(err))

	_, err = f.svc.Get(ctx, f.admin, primitive.NewObjectID())
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFoundError(err))
}

func TestAdminUpdateScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.citizen, validInput())
	require.NoError(t, err)

	status := models.Resolved
	notes := "Filled"
	assignee := "staff7"
	updated, err := f.svc.Update(ctx, f.admin, created.ID, store.IssuePatch{
		Status:          &status,
		ResolutionNotes: &notes,
		AssignedTo:      &assignee,
	})
	require.NoError(t, err)

	assert.Equal(t, models.Resolved, updated.Status)
	assert.Equal(t, "Filled", updated.ResolutionNotes)
	assert.Equal(t, "staff7", updated.AssignedTo)

	// Everything else unchanged.
	assert.Equal(t, created.Title, updated.Title)
	assert.Equal(t, created.Description, updated.Description)
	assert.Equal(t, created.Category, updated.Category)
	assert.Equal(t, created.Latitude, updated.Latitude)
	assert.Equal(t, created.Longitude, updated.Longitude)
	assert.Equal(t, created.ImageRef, updated.ImageRef)
	assert.Equal(t, created.CreatedBy, updated.CreatedBy)
	assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))
}

func TestUpdatePartialPatchLeavesOtherMutableFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.citizen, validInput())
	require.NoError(t, err)

	status := models.InProgress
	_, err = f.svc.Update(ctx, f.staff, created.ID, store.IssuePatch{Status: &status})
	require.NoError(t, err)

	notes := "crew dispatched"
	updated, err := f.svc.Update(ctx, f.staff, created.ID, store.IssuePatch{ResolutionNotes: &notes})
	require.NoError(t, err)

	assert.Equal(t, models.InProgress, updated.Status)
	assert.Equal(t, "crew dispatched", updated.ResolutionNotes)
}

func TestStatusMayMoveInAnyDirection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.citizen, validInput())
	require.NoError(t, err)

	// Resolved issues can be reopened; no transition is forbidden.
	for _, status := range []models.IssueStatus{models.Resolved, models.Pending, models.InProgress} {
		s := status
		updated, err := f.svc.Update(ctx, f.admin, created.ID, store.IssuePatch{Status: &s})
		require.NoError(t, err)
		assert.Equal(t, status, updated.Status)
	}
}

func TestCitizenUpdateIsForbiddenAndStoreUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.citizen, validInput())
	require.NoError(t, err)

	before, err := f.issues.Get(ctx, created.ID)
	require.NoError(t, err)

	status := models.Resolved
	notes := "done by myself"
	for _, p := range []auth.Principal{f.citizen, f.other} {
		_, err := f.svc.Update(ctx, p, created.ID, store.IssuePatch{
			Status:          &status,
			ResolutionNotes: &notes,
		})
		require.Error(t, err)
		assert.True(t, apperrors.IsForbiddenError(err))
	}

	after, err := f.issues.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestUpdateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.citizen, validInput())
	require.NoError(t, err)

	bad := models.IssueStatus("Closed")
	_, err = f.svc.Update(ctx, f.admin, created.ID, store.IssuePatch{Status: &bad})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidationError(err))

	_, err = f.svc.Update(ctx, f.admin, created.ID, store.IssuePatch{})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidationError(err))

	status := models.Resolved
	_, err = f.svc.Update(ctx, f.admin, primitive.NewObjectID(), store.IssuePatch{Status: &status})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFoundError(err))
}

func TestRemove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.citizen, validInput())
	require.NoError(t, err)

	// Reporters may not delete their own issues.
	err = f.svc.Remove(ctx, f.citizen, created.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsForbiddenError(err))

	// Deleting a nonexistent id is NotFound and mutates nothing.
	err = f.svc.Remove(ctx, f.admin, primitive.NewObjectID())
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFoundError(err))
	all, err := f.issues.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, f.svc.Remove(ctx, f.staff, created.ID))
	_, err = f.issues.Get(ctx, created.ID)
	assert.True(t, apperrors.IsNotFoundError(err))
}

func TestListAllAppliesFiltersAndSort(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := base
	f.svc.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	inputs := []CreateIssueInput{
		{Title: "Pothole on 5th", Description: "deep", Category: "Pothole", Latitude: 12.9, Longitude: 77.6, ImageRef: "img1"},
		{Title: "Dark street", Description: "no light", Category: "Streetlight", Latitude: 12.8, Longitude: 77.5, ImageRef: "img2"},
		{Title: "Pothole near school", Description: "wide", Category: "Pothole", Latitude: 12.7, Longitude: 77.4, ImageRef: "img3"},
	}
	for _, in := range inputs {
		_, err := f.svc.Create(ctx, f.citizen, in)
		require.NoError(t, err)
	}

	listed, err := f.svc.ListAll(ctx, f.admin, Filters{Category: "Pothole", Search: "pothole", Sort: SortLatest})
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "Pothole near school", listed[0].Issue.Title)
	assert.Equal(t, "Pothole on 5th", listed[1].Issue.Title)
}

func TestSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ids := make([]primitive.ObjectID, 0, 3)
	for _, category := range []string{"Pothole", "Pothole", "Garbage"} {
		in := validInput()
		in.Category = category
		created, err := f.svc.Create(ctx, f.citizen, in)
		require.NoError(t, err)
		ids = append(ids, created.ID)
	}

	status := models.Resolved
	_, err := f.svc.Update(ctx, f.admin, ids[0], store.IssuePatch{Status: &status})
	require.NoError(t, err)

	_, err = f.svc.Summary(ctx, f.citizen)
	require.Error(t, err)
	assert.True(t, apperrors.IsForbiddenError(err))

	summary, err := f.svc.Summary(ctx, f.admin)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalIssues)
	assert.Equal(t, 2, summary.OpenIssues)
	assert.Equal(t, 2, summary.ByStatus[string(models.Pending)])
	assert.Equal(t, 1, summary.ByStatus[string(models.Resolved)])
	assert.Equal(t, 2, summary.ByCategory[string(models.Pothole)])
	assert.Equal(t, 1, summary.ByCategory[string(models.Garbage)])
}
